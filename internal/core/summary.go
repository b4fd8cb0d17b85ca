package core

// Summary holds period totals per type plus derived figures.
type Summary struct {
	TotalIncome        float64
	TotalExpense       float64
	TotalInvestment    float64
	TotalCreditCard    float64
	TotalDebt          float64
	TotalVehicle       float64
	TotalBanking       float64
	TotalSubscriptions float64

	CombinedExpenses  float64 // expense + banking
	DebtRepayment     float64
	VehicleCreditCard float64
	NetSavings        float64
}

// Add accumulates t into the per-type total for its type.
func (s *Summary) Add(t TxType, amount float64) {
	switch t {
	case Income:
		s.TotalIncome += amount
	case Expense:
		s.TotalExpense += amount
	case Investment:
		s.TotalInvestment += amount
	case CreditCard:
		s.TotalCreditCard += amount
	case Debt:
		s.TotalDebt += amount
	case Vehicle:
		s.TotalVehicle += amount
	case Banking:
		s.TotalBanking += amount
	case Subscriptions:
		s.TotalSubscriptions += amount
	}
}

// Total returns the per-type total for t.
func (s Summary) Total(t TxType) float64 {
	switch t {
	case Income:
		return s.TotalIncome
	case Expense:
		return s.TotalExpense
	case Investment:
		return s.TotalInvestment
	case CreditCard:
		return s.TotalCreditCard
	case Debt:
		return s.TotalDebt
	case Vehicle:
		return s.TotalVehicle
	case Banking:
		return s.TotalBanking
	case Subscriptions:
		return s.TotalSubscriptions
	}
	return 0
}

// CategoryTotal is an amount aggregated by category name.
type CategoryTotal struct {
	Category string
	Total    float64
}

// TrendPoint is one (month, type) cell of the monthly trend.
type TrendPoint struct {
	Month string // YYYY-MM
	Type  TxType
	Total float64
}

// CategoryTrendPoint is one (month, category) cell for a fixed type.
type CategoryTrendPoint struct {
	Month    string
	Category string
	Total    float64
}

type Assets struct {
	Cash        float64
	Investments float64
}

func (a Assets) Total() float64 { return a.Cash + a.Investments }

type Liabilities struct {
	Loans       float64
	FriendsDebt float64
}

func (l Liabilities) Total() float64 { return l.Loans + l.FriendsDebt }

// Portfolio is a lifetime net-worth snapshot.
type Portfolio struct {
	Assets      Assets
	Liabilities Liabilities
	NetWorth    float64
}

// Comparison sets a current period against a base period. Deltas are
// current minus base.
type Comparison struct {
	BasePeriod    Period
	CurrentPeriod Period
	Base          Summary
	Current       Summary

	IncomeDelta  float64
	ExpenseDelta float64
	SavingsDelta float64
}

// Projection is the monthly outlook from active recurring items.
type Projection struct {
	ExpectedIncome   float64
	ExpectedOutflows float64
	ProjectedSavings float64
	Income           []RecurringItem
	Outflows         []RecurringItem
}

// ForecastPoint is one projected month.
type ForecastPoint struct {
	Month             string
	Income            float64
	Outflows          float64
	Savings           float64
	CumulativeSavings float64
}

// LoanStatus pairs an active loan with its repayment progress.
type LoanStatus struct {
	Loan          Transaction
	TotalPayable  float64
	TotalInterest float64
	BalanceLeft   float64
	MonthsPaid    float64
	MonthsLeft    float64
	ProgressRatio float64
}

// UndoEligibility reports whether the last repayment can still be reversed.
type UndoEligibility struct {
	Allowed     bool
	LastPayment Date
	DaysAgo     int
}

// SelfExpenseReport covers Expense rows flagged as personal.
type SelfExpenseReport struct {
	Transactions   []Transaction
	Total          float64
	MonthlyAverage float64 // over months with at least one row
	ByCategory     []CategoryTotal
	ByMonth        []TrendPoint
}
