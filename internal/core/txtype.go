package core

import (
	"fmt"
	"strings"
)

// TxType is the closed set of ledger entry types. Categories share it.
type TxType string

const (
	Income        TxType = "Income"
	Expense       TxType = "Expense"
	Investment    TxType = "Investment"
	CreditCard    TxType = "Credit Card"
	Debt          TxType = "Debt"
	Vehicle       TxType = "Vehicle"
	Banking       TxType = "Banking"
	Subscriptions TxType = "Subscriptions"
)

type expenseGrouping int

const (
	groupNone expenseGrouping = iota
	groupAlways
	groupCashOnly // only rows not paid by credit card
)

// typeTraits drives every rule that depends on the entry type.
type typeTraits struct {
	// outflow entries reduce cash and net savings.
	outflow bool
	// cardDeferred entries paid by credit card leave the pocket only when
	// the card bill is paid.
	cardDeferred bool
	// hiddenWhenCard drops card-paid entries from period totals.
	hiddenWhenCard bool
	group          expenseGrouping
}

var traits = map[TxType]typeTraits{
	Income:        {},
	Expense:       {outflow: true, cardDeferred: true, hiddenWhenCard: true, group: groupAlways},
	Investment:    {outflow: true},
	CreditCard:    {outflow: true},
	Debt:          {},
	Vehicle:       {outflow: true, cardDeferred: true, group: groupCashOnly},
	Banking:       {outflow: true, group: groupAlways},
	Subscriptions: {outflow: true, cardDeferred: true, hiddenWhenCard: true, group: groupCashOnly},
}

var allTypes = []TxType{Income, Expense, Investment, CreditCard, Debt, Vehicle, Banking, Subscriptions}

// AllTypes returns every transaction type in display order.
func AllTypes() []TxType {
	out := make([]TxType, len(allTypes))
	copy(out, allTypes)
	return out
}

func (t TxType) String() string {
	return string(t)
}

// IsValid reports whether t is one of the known types
func (t TxType) IsValid() bool {
	_, ok := traits[t]
	return ok
}

// IsOutflow reports whether entries of this type reduce cash.
func (t TxType) IsOutflow() bool {
	return traits[t].outflow
}

// ParseTxType matches s against the known types, ignoring case and
// surrounding space. "creditcard" and "credit-card" are accepted too.
func ParseTxType(s string) (TxType, error) {
	norm := normalizeType(s)
	for _, t := range allTypes {
		if normalizeType(string(t)) == norm {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
}

func normalizeType(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, "_", "")
	return strings.ReplaceAll(s, " ", "")
}
