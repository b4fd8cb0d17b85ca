package core

// CountsInSummary reports whether t contributes to period totals.
// Friends debts are not cash flow, card-paid spend is counted when the
// card bill is paid, and reinvestments only move existing money.
func CountsInSummary(t Transaction) bool {
	if t.IsFriendsDebt() || t.IsReinvestment {
		return false
	}
	if t.IsCreditCardPayment && traits[t.Type].hiddenWhenCard {
		return false
	}
	return true
}

// IsDebtRepayment reports whether t pays down a debt or loan.
func IsDebtRepayment(t Transaction) bool {
	return t.Type == Expense &&
		(t.Category == EMICategory || t.Subcategory == LoanRepaymentSubcategory || t.LinkedID != 0)
}

// InExpenseGroup reports whether t belongs to the combined Expense view.
func InExpenseGroup(t Transaction) bool {
	switch traits[t.Type].group {
	case groupAlways:
		return true
	case groupCashOnly:
		return !t.IsCreditCardPayment
	}
	return false
}

// TrendType is the type t is charted under in monthly trends.
func TrendType(t Transaction) TxType {
	if InExpenseGroup(t) {
		return Expense
	}
	return t.Type
}

// ReducesCash reports whether t is a lifetime cash outflow.
func ReducesCash(t TxType, paidByCard bool) bool {
	tr := traits[t]
	if !tr.outflow {
		return false
	}
	return !(paidByCard && tr.cardDeferred)
}
