package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// AggregationEngine computes read-only projections over the ledger.
// Nothing is cached: every call reads the store.
type AggregationEngine struct {
	storage *storage.SQLiteRepository
}

func NewAggregationEngine(storage *storage.SQLiteRepository) *AggregationEngine {
	return &AggregationEngine{storage: storage}
}

func (e *AggregationEngine) transactions(ctx context.Context, sess core.Session, f core.Filter) ([]core.Transaction, error) {
	txs, err := e.storage.ListTransactions(ctx, sess.UserID, f)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	return txs, nil
}

// Summary totals the period by type and derives net savings.
func (e *AggregationEngine) Summary(ctx context.Context, sess core.Session, period core.Period) (core.Summary, error) {
	txs, err := e.transactions(ctx, sess, core.Filter{Period: period})
	if err != nil {
		return core.Summary{}, err
	}
	return summarize(txs), nil
}

// Compare summarizes base and current side by side.
func (e *AggregationEngine) Compare(ctx context.Context, sess core.Session, base, current core.Period) (core.Comparison, error) {
	c := core.Comparison{BasePeriod: base, CurrentPeriod: current}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		c.Base, err = e.Summary(gctx, sess, base)
		return err
	})
	g.Go(func() error {
		var err error
		c.Current, err = e.Summary(gctx, sess, current)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Comparison{}, err
	}

	c.IncomeDelta = core.Round2(c.Current.TotalIncome - c.Base.TotalIncome)
	c.ExpenseDelta = core.Round2(c.Current.TotalExpense - c.Base.TotalExpense)
	c.SavingsDelta = core.Round2(c.Current.NetSavings - c.Base.NetSavings)
	return c, nil
}

func summarize(txs []core.Transaction) core.Summary {
	var s core.Summary
	for _, t := range txs {
		if core.CountsInSummary(t) {
			s.Add(t.Type, t.Amount)
		}
		if core.IsDebtRepayment(t) {
			s.DebtRepayment += t.Amount
		}
		if t.Type == core.Vehicle && t.IsCreditCardPayment {
			s.VehicleCreditCard += t.Amount
		}
	}

	s.CombinedExpenses = s.TotalExpense + s.TotalBanking
	s.NetSavings = s.TotalIncome -
		s.TotalExpense -
		s.TotalBanking -
		s.TotalInvestment -
		s.TotalCreditCard -
		s.TotalSubscriptions -
		(s.TotalVehicle - s.VehicleCreditCard)

	for _, f := range []*float64{
		&s.TotalIncome, &s.TotalExpense, &s.TotalInvestment, &s.TotalCreditCard,
		&s.TotalDebt, &s.TotalVehicle, &s.TotalBanking, &s.TotalSubscriptions,
		&s.CombinedExpenses, &s.DebtRepayment, &s.VehicleCreditCard, &s.NetSavings,
	} {
		*f = core.Round2(*f)
	}
	return s
}

// CategoryBreakdown sums a type by category, largest first. Expense
// stands for the combined expense group.
func (e *AggregationEngine) CategoryBreakdown(ctx context.Context, sess core.Session, typ core.TxType, period core.Period) ([]core.CategoryTotal, error) {
	f := core.Filter{Period: period}
	if typ != core.Expense {
		f.Type = typ
	}
	txs, err := e.transactions(ctx, sess, f)
	if err != nil {
		return nil, err
	}

	sums := make(map[string]float64)
	for _, t := range txs {
		if typ == core.Expense && !core.InExpenseGroup(t) {
			continue
		}
		sums[t.Category] += t.Amount
	}
	return sortedCategoryTotals(sums), nil
}

func sortedCategoryTotals(sums map[string]float64) []core.CategoryTotal {
	out := make([]core.CategoryTotal, 0, len(sums))
	for name, total := range sums {
		out = append(out, core.CategoryTotal{Category: name, Total: core.Round2(total)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// MonthlyTrend totals each month by charted type. Months with no rows
// are absent.
func (e *AggregationEngine) MonthlyTrend(ctx context.Context, sess core.Session, period core.Period) ([]core.TrendPoint, error) {
	txs, err := e.transactions(ctx, sess, core.Filter{Period: period})
	if err != nil {
		return nil, err
	}
	return monthlyTrend(txs), nil
}

func monthlyTrend(txs []core.Transaction) []core.TrendPoint {
	type key struct {
		month string
		typ   core.TxType
	}
	sums := make(map[key]float64)
	for _, t := range txs {
		sums[key{t.Date.MonthKey(), core.TrendType(t)}] += t.Amount
	}

	out := make([]core.TrendPoint, 0, len(sums))
	for k, total := range sums {
		out = append(out, core.TrendPoint{Month: k.month, Type: k.typ, Total: core.Round2(total)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return out[i].Type < out[j].Type
	})
	return out
}

// MonthlyCategoryTrend totals one type per month and category.
func (e *AggregationEngine) MonthlyCategoryTrend(ctx context.Context, sess core.Session, typ core.TxType, period core.Period) ([]core.CategoryTrendPoint, error) {
	if !typ.IsValid() {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidType, typ)
	}
	txs, err := e.transactions(ctx, sess, core.Filter{Period: period, Type: typ})
	if err != nil {
		return nil, err
	}

	type key struct{ month, category string }
	sums := make(map[key]float64)
	for _, t := range txs {
		sums[key{t.Date.MonthKey(), t.Category}] += t.Amount
	}

	out := make([]core.CategoryTrendPoint, 0, len(sums))
	for k, total := range sums {
		out = append(out, core.CategoryTrendPoint{Month: k.month, Category: k.category, Total: core.Round2(total)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

// Projection is the expected month from active recurring items. Every
// type other than Income counts as an outflow.
func (e *AggregationEngine) Projection(ctx context.Context, sess core.Session) (core.Projection, error) {
	items, err := e.storage.ListRecurringItems(ctx, sess.UserID, true)
	if err != nil {
		return core.Projection{}, err
	}

	p := core.Projection{
		Income:   []core.RecurringItem{},
		Outflows: []core.RecurringItem{},
	}
	for _, it := range items {
		if it.Type == core.Income {
			p.ExpectedIncome += it.Amount
			p.Income = append(p.Income, it)
			continue
		}
		p.ExpectedOutflows += it.Amount
		p.Outflows = append(p.Outflows, it)
	}
	p.ExpectedIncome = core.Round2(p.ExpectedIncome)
	p.ExpectedOutflows = core.Round2(p.ExpectedOutflows)
	p.ProjectedSavings = core.Round2(p.ExpectedIncome - p.ExpectedOutflows)
	return p, nil
}

// Forecast projects the historical monthly averages of income and the
// expense group over the months after from. Each average only counts
// months in which that type appears.
func (e *AggregationEngine) Forecast(ctx context.Context, sess core.Session, from time.Time, months int) ([]core.ForecastPoint, error) {
	if months <= 0 {
		return []core.ForecastPoint{}, nil
	}
	txs, err := e.transactions(ctx, sess, core.Filter{})
	if err != nil {
		return nil, err
	}
	trend := monthlyTrend(txs)
	if len(trend) == 0 {
		return []core.ForecastPoint{}, nil
	}

	avgIncome := averageOf(trend, core.Income)
	avgOutflows := averageOf(trend, core.Expense)
	savings := core.Round2(avgIncome - avgOutflows)

	start := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	out := make([]core.ForecastPoint, months)
	for i := range out {
		out[i] = core.ForecastPoint{
			Month:             start.AddDate(0, i+1, 0).Format(core.MonthLayout),
			Income:            avgIncome,
			Outflows:          avgOutflows,
			Savings:           savings,
			CumulativeSavings: core.Round2(savings * float64(i+1)),
		}
	}
	return out, nil
}

func averageOf(trend []core.TrendPoint, typ core.TxType) float64 {
	var sum float64
	var n int
	for _, p := range trend {
		if p.Type == typ {
			sum += p.Total
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return core.Round2(sum / float64(n))
}

// SelfExpenses reports Expense rows flagged as personal in the period.
func (e *AggregationEngine) SelfExpenses(ctx context.Context, sess core.Session, period core.Period) (core.SelfExpenseReport, error) {
	txs, err := e.transactions(ctx, sess, core.Filter{Period: period, Type: core.Expense, OnlySelf: true})
	if err != nil {
		return core.SelfExpenseReport{}, err
	}

	r := core.SelfExpenseReport{Transactions: txs}
	byCategory := make(map[string]float64)
	byMonth := make(map[string]float64)
	for _, t := range txs {
		r.Total += t.Amount
		byCategory[t.Category] += t.Amount
		byMonth[t.Date.MonthKey()] += t.Amount
	}

	r.Total = core.Round2(r.Total)
	if len(byMonth) > 0 {
		r.MonthlyAverage = core.Round2(r.Total / float64(len(byMonth)))
	}
	r.ByCategory = sortedCategoryTotals(byCategory)
	r.ByMonth = make([]core.TrendPoint, 0, len(byMonth))
	for month, total := range byMonth {
		r.ByMonth = append(r.ByMonth, core.TrendPoint{Month: month, Type: core.Expense, Total: core.Round2(total)})
	}
	sort.Slice(r.ByMonth, func(i, j int) bool { return r.ByMonth[i].Month < r.ByMonth[j].Month })
	return r, nil
}
