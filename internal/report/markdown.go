package report

import (
	"fmt"
	"sort"
	"strings"

	"fintrack/internal/core"
)

func periodTitle(p core.Period) string {
	switch {
	case p.Start.IsZero() && p.End.IsZero():
		return "all time"
	case p.Start.IsZero():
		return "until " + p.End.String()
	case p.End.IsZero():
		return "since " + p.Start.String()
	}
	return p.Start.String() + " to " + p.End.String()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

// escape keeps user text from breaking table cells.
func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// SummaryMarkdown renders period totals and derived figures.
func SummaryMarkdown(s core.Summary, p core.Period, cur string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Summary (%s)\n\n", periodTitle(p))
	fmt.Fprintln(&b, "| Type | Total |")
	fmt.Fprintln(&b, "|:---|---:|")
	for _, t := range core.AllTypes() {
		fmt.Fprintf(&b, "| %s | %s |\n", t, Money(s.Total(t), cur))
	}
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "| Figure | Amount |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Combined expenses | %s |\n", Money(s.CombinedExpenses, cur))
	fmt.Fprintf(&b, "| Debt repayment | %s |\n", Money(s.DebtRepayment, cur))
	fmt.Fprintf(&b, "| Vehicle on credit card | %s |\n", Money(s.VehicleCreditCard, cur))
	fmt.Fprintf(&b, "| **Net savings** | **%s** |\n", Money(s.NetSavings, cur))
	return b.String()
}

// ComparisonMarkdown renders income, expense and net savings of two
// periods with the change from base to current.
func ComparisonMarkdown(c core.Comparison, cur string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Comparison\n\n")
	fmt.Fprintf(&b, "Base: %s\n\nCurrent: %s\n\n", periodTitle(c.BasePeriod), periodTitle(c.CurrentPeriod))
	fmt.Fprintln(&b, "| Figure | Base | Current | Change |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|")
	rows := []struct {
		name                 string
		base, current, delta float64
	}{
		{"Income", c.Base.TotalIncome, c.Current.TotalIncome, c.IncomeDelta},
		{"Expense", c.Base.TotalExpense, c.Current.TotalExpense, c.ExpenseDelta},
		{"Net savings", c.Base.NetSavings, c.Current.NetSavings, c.SavingsDelta},
	}
	for _, r := range rows {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", r.name, Money(r.base, cur), Money(r.current, cur), signed(r.delta, cur))
	}
	return b.String()
}

func signed(amount float64, cur string) string {
	if amount > 0 {
		return "+" + Money(amount, cur)
	}
	return Money(amount, cur)
}

// BreakdownMarkdown renders category totals, largest first as given.
func BreakdownMarkdown(typ core.TxType, totals []core.CategoryTotal, p core.Period, cur string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s by category (%s)\n\n", typ, periodTitle(p))
	if len(totals) == 0 {
		fmt.Fprintln(&b, "No transactions.")
		return b.String()
	}
	var sum float64
	fmt.Fprintln(&b, "| Category | Total |")
	fmt.Fprintln(&b, "|:---|---:|")
	for _, t := range totals {
		sum += t.Total
		fmt.Fprintf(&b, "| %s | %s |\n", escape(t.Category), Money(t.Total, cur))
	}
	fmt.Fprintf(&b, "| **Total** | **%s** |\n", Money(core.Round2(sum), cur))
	return b.String()
}

// TrendMarkdown pivots the monthly trend into one row per month and one
// column per type present.
func TrendMarkdown(points []core.TrendPoint, cur string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Monthly trend\n\n")
	if len(points) == 0 {
		fmt.Fprintln(&b, "No transactions.")
		return b.String()
	}

	present := make(map[core.TxType]bool)
	cells := make(map[string]map[core.TxType]float64)
	var months []string
	for _, p := range points {
		present[p.Type] = true
		row, ok := cells[p.Month]
		if !ok {
			row = make(map[core.TxType]float64)
			cells[p.Month] = row
			months = append(months, p.Month)
		}
		row[p.Type] += p.Total
	}
	sort.Strings(months)

	var cols []core.TxType
	for _, t := range core.AllTypes() {
		if present[t] {
			cols = append(cols, t)
		}
	}

	b.WriteString("| Month |")
	for _, c := range cols {
		fmt.Fprintf(&b, " %s |", c)
	}
	b.WriteString("\n|:---|")
	b.WriteString(strings.Repeat("---:|", len(cols)))
	b.WriteString("\n")
	for _, m := range months {
		fmt.Fprintf(&b, "| %s |", m)
		for _, c := range cols {
			fmt.Fprintf(&b, " %s |", Money(cells[m][c], cur))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// CategoryTrendMarkdown lists (month, category) totals for one type.
func CategoryTrendMarkdown(typ core.TxType, points []core.CategoryTrendPoint, cur string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s monthly trend by category\n\n", typ)
	if len(points) == 0 {
		fmt.Fprintln(&b, "No transactions.")
		return b.String()
	}
	fmt.Fprintln(&b, "| Month | Category | Total |")
	fmt.Fprintln(&b, "|:---|:---|---:|")
	for _, p := range points {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", p.Month, escape(p.Category), Money(p.Total, cur))
	}
	return b.String()
}

// PortfolioMarkdown renders the net-worth snapshot.
func PortfolioMarkdown(p core.Portfolio, cur string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Portfolio\n\n")
	fmt.Fprintln(&b, "| | Amount |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Cash | %s |\n", Money(p.Assets.Cash, cur))
	fmt.Fprintf(&b, "| Investments | %s |\n", Money(p.Assets.Investments, cur))
	fmt.Fprintf(&b, "| **Assets** | **%s** |\n", Money(p.Assets.Total(), cur))
	fmt.Fprintf(&b, "| Loans | %s |\n", Money(p.Liabilities.Loans, cur))
	fmt.Fprintf(&b, "| Friends debt | %s |\n", Money(p.Liabilities.FriendsDebt, cur))
	fmt.Fprintf(&b, "| **Liabilities** | **%s** |\n", Money(p.Liabilities.Total(), cur))
	fmt.Fprintf(&b, "\n**Net worth: %s**\n", Money(p.NetWorth, cur))
	return b.String()
}

// TransactionsMarkdown lists ledger rows in the order given.
func TransactionsMarkdown(title string, txs []core.Transaction, cur string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	if len(txs) == 0 {
		fmt.Fprintln(&b, "No transactions.")
		return b.String()
	}
	fmt.Fprintln(&b, "| ID | Date | Type | Category | Amount | Description | Account | Card |")
	fmt.Fprintln(&b, "|---:|:---|:---|:---|---:|:---|:---|:---:|")
	for _, t := range txs {
		category := t.Category
		if t.Subcategory != "" {
			category += " / " + t.Subcategory
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s | %s | %s |\n",
			t.ID, t.Date, t.Type, escape(category), Money(t.Amount, cur),
			escape(t.Description), escape(t.Account), yesNo(t.IsCreditCardPayment))
	}
	return b.String()
}

// FriendsDebtsMarkdown lists informal debts with what is still owed.
func FriendsDebtsMarkdown(debts []core.Transaction, cur string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Friends debts\n\n")
	if len(debts) == 0 {
		fmt.Fprintln(&b, "No debts.")
		return b.String()
	}
	fmt.Fprintln(&b, "| ID | Date | Who | Amount | Paid | Remaining | Status |")
	fmt.Fprintln(&b, "|---:|:---|:---|---:|---:|---:|:---|")
	for _, d := range debts {
		status := "open"
		if d.IsRepaid {
			status = "repaid"
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s | %s |\n",
			d.ID, d.Date, escape(d.Description), Money(d.Amount, cur), Money(d.PaidAmount, cur),
			Money(core.Round2(d.Amount-d.PaidAmount), cur), status)
	}
	return b.String()
}

// LoansMarkdown renders repayment progress per active loan.
func LoansMarkdown(loans []core.LoanStatus, cur string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Loans\n\n")
	if len(loans) == 0 {
		fmt.Fprintln(&b, "No active loans.")
		return b.String()
	}
	fmt.Fprintln(&b, "| ID | Loan | Lender | EMI | Payable | Interest | Balance | Months left | Progress |")
	fmt.Fprintln(&b, "|---:|:---|:---|---:|---:|---:|---:|---:|---:|")
	for _, l := range loans {
		var lender string
		var emi float64
		if l.Loan.Loan != nil {
			lender = l.Loan.Loan.LenderBank
			emi = l.Loan.Loan.EMI
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s | %s | %.1f | %.0f%% |\n",
			l.Loan.ID, escape(l.Loan.Category), escape(lender), Money(emi, cur),
			Money(l.TotalPayable, cur), Money(l.TotalInterest, cur), Money(l.BalanceLeft, cur),
			l.MonthsLeft, l.ProgressRatio*100)
	}
	return b.String()
}

// ProjectionMarkdown renders the recurring-item outlook.
func ProjectionMarkdown(p core.Projection, cur string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Monthly projection\n\n")
	writeItems := func(title string, items []core.RecurringItem) {
		fmt.Fprintf(&b, "## %s\n\n", title)
		if len(items) == 0 {
			fmt.Fprintln(&b, "None.")
			fmt.Fprintln(&b)
			return
		}
		fmt.Fprintln(&b, "| Name | Type | Category | Amount |")
		fmt.Fprintln(&b, "|:---|:---|:---|---:|")
		for _, it := range items {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", escape(it.Name), it.Type, escape(it.Category), Money(it.Amount, cur))
		}
		fmt.Fprintln(&b)
	}
	writeItems("Income", p.Income)
	writeItems("Outflows", p.Outflows)
	fmt.Fprintf(&b, "Expected income: %s\n\n", Money(p.ExpectedIncome, cur))
	fmt.Fprintf(&b, "Expected outflows: %s\n\n", Money(p.ExpectedOutflows, cur))
	fmt.Fprintf(&b, "**Projected savings: %s**\n", Money(p.ProjectedSavings, cur))
	return b.String()
}

// ForecastMarkdown renders projected months with cumulative savings.
func ForecastMarkdown(points []core.ForecastPoint, cur string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Forecast\n\n")
	if len(points) == 0 {
		fmt.Fprintln(&b, "Not enough history to forecast.")
		return b.String()
	}
	fmt.Fprintln(&b, "| Month | Income | Outflows | Savings | Cumulative |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|")
	for _, p := range points {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", p.Month,
			Money(p.Income, cur), Money(p.Outflows, cur), Money(p.Savings, cur), Money(p.CumulativeSavings, cur))
	}
	return b.String()
}

// SelfExpensesMarkdown renders personal spending by category and month.
func SelfExpensesMarkdown(r core.SelfExpenseReport, p core.Period, cur string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Personal expenses (%s)\n\n", periodTitle(p))
	fmt.Fprintf(&b, "Total: %s, monthly average: %s\n\n", Money(r.Total, cur), Money(r.MonthlyAverage, cur))
	if len(r.ByCategory) > 0 {
		fmt.Fprintln(&b, "| Category | Total |")
		fmt.Fprintln(&b, "|:---|---:|")
		for _, c := range r.ByCategory {
			fmt.Fprintf(&b, "| %s | %s |\n", escape(c.Category), Money(c.Total, cur))
		}
		fmt.Fprintln(&b)
	}
	if len(r.ByMonth) > 0 {
		fmt.Fprintln(&b, "| Month | Total |")
		fmt.Fprintln(&b, "|:---|---:|")
		for _, m := range r.ByMonth {
			fmt.Fprintf(&b, "| %s | %s |\n", m.Month, Money(m.Total, cur))
		}
	}
	return b.String()
}

// CategoriesMarkdown lists active categories grouped by type.
func CategoriesMarkdown(cats []core.Category) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Categories\n\n")
	if len(cats) == 0 {
		fmt.Fprintln(&b, "No categories.")
		return b.String()
	}
	fmt.Fprintln(&b, "| ID | Type | Name | Loan |")
	fmt.Fprintln(&b, "|---:|:---|:---|:---:|")
	for _, c := range cats {
		fmt.Fprintf(&b, "| %d | %s | %s | %s |\n", c.ID, c.Type, escape(c.Name), yesNo(c.IsLoan))
	}
	return b.String()
}

// RecurringItemsMarkdown lists recurring items with their state.
func RecurringItemsMarkdown(items []core.RecurringItem, cur string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Recurring items\n\n")
	if len(items) == 0 {
		fmt.Fprintln(&b, "No recurring items.")
		return b.String()
	}
	fmt.Fprintln(&b, "| ID | Name | Type | Category | Amount | Active |")
	fmt.Fprintln(&b, "|---:|:---|:---|:---|---:|:---:|")
	for _, it := range items {
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s |\n",
			it.ID, escape(it.Name), it.Type, escape(it.Category), Money(it.Amount, cur), yesNo(it.IsActive))
	}
	return b.String()
}

// UsersMarkdown lists accounts for administrators.
func UsersMarkdown(users []core.User, pending []core.PasswordResetRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Users\n\n")
	fmt.Fprintln(&b, "| ID | Username | Admin | Currency | Created |")
	fmt.Fprintln(&b, "|---:|:---|:---:|:---|:---|")
	for _, u := range users {
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n",
			u.ID, escape(u.Username), yesNo(u.IsAdmin), u.Currency, u.CreatedAt.Format(core.DateLayout))
	}
	if len(pending) > 0 {
		fmt.Fprintf(&b, "\n## Pending password resets\n\n")
		fmt.Fprintln(&b, "| Request | Username | Requested |")
		fmt.Fprintln(&b, "|---:|:---|:---|")
		for _, r := range pending {
			fmt.Fprintf(&b, "| %d | %s | %s |\n", r.ID, escape(r.Username), r.RequestDate.Format(core.DateLayout))
		}
	}
	return b.String()
}
