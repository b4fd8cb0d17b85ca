package main

import (
	"context"
	"flag"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/report"
)

func reportCommands() []*command {
	var (
		period   periodFlags
		typeName string
		months   int
	)

	return []*command{
		{
			name:     "summary",
			synopsis: "totals per type and net savings",
			usage:    "fintrack summary [-from <date>] [-to <date>] [-month YYYY-MM]\n",
			flags:    period.register,
			run: func(ctx context.Context, e *env, f *flag.FlagSet) error {
				p, err := period.period()
				if err != nil {
					return err
				}
				a, sess, err := e.session(ctx)
				if err != nil {
					return err
				}
				s, err := a.Aggregation.Summary(ctx, sess, p)
				if err != nil {
					return err
				}
				e.printMarkdown(report.SummaryMarkdown(s, p, sess.Currency))
				return nil
			},
		},
		{
			name:     "breakdown",
			synopsis: "totals per category for one type",
			usage:    "fintrack breakdown [-type <type>] [period flags]\n\n  Expense includes banking and cash-paid vehicle and subscription spend.\n",
			flags: func(f *flag.FlagSet) {
				f.StringVar(&typeName, "type", string(core.Expense), "transaction type")
				period.register(f)
			},
			run: func(ctx context.Context, e *env, f *flag.FlagSet) error {
				p, err := period.period()
				if err != nil {
					return err
				}
				typ, err := core.ParseTxType(typeName)
				if err != nil {
					return err
				}
				a, sess, err := e.session(ctx)
				if err != nil {
					return err
				}
				totals, err := a.Aggregation.CategoryBreakdown(ctx, sess, typ, p)
				if err != nil {
					return err
				}
				e.printMarkdown(report.BreakdownMarkdown(typ, totals, p, sess.Currency))
				return nil
			},
		},
		{
			name:     "trend",
			synopsis: "monthly totals per type, or per category with -type",
			usage:    "fintrack trend [-type <type>] [period flags]\n",
			flags: func(f *flag.FlagSet) {
				f.StringVar(&typeName, "type", "", "break one type down by category")
				period.register(f)
			},
			run: func(ctx context.Context, e *env, f *flag.FlagSet) error {
				p, err := period.period()
				if err != nil {
					return err
				}
				typ, err := parseType(typeName)
				if err != nil {
					return err
				}
				a, sess, err := e.session(ctx)
				if err != nil {
					return err
				}
				if typ != "" {
					points, err := a.Aggregation.MonthlyCategoryTrend(ctx, sess, typ, p)
					if err != nil {
						return err
					}
					e.printMarkdown(report.CategoryTrendMarkdown(typ, points, sess.Currency))
					return nil
				}
				points, err := a.Aggregation.MonthlyTrend(ctx, sess, p)
				if err != nil {
					return err
				}
				e.printMarkdown(report.TrendMarkdown(points, sess.Currency))
				return nil
			},
		},
		{
			name:     "self",
			synopsis: "personal expenses by category and month",
			usage:    "fintrack self [period flags]\n",
			flags:    period.register,
			run: func(ctx context.Context, e *env, f *flag.FlagSet) error {
				p, err := period.period()
				if err != nil {
					return err
				}
				a, sess, err := e.session(ctx)
				if err != nil {
					return err
				}
				r, err := a.Aggregation.SelfExpenses(ctx, sess, p)
				if err != nil {
					return err
				}
				e.printMarkdown(report.SelfExpensesMarkdown(r, p, sess.Currency))
				return nil
			},
		},
		{
			name:     "compare",
			synopsis: "income, expense and savings of two months or years",
			usage:    "fintrack compare [<base> <current>]\n\n  Periods are YYYY-MM or YYYY. Without arguments last month is compared with this month.\n",
			run: func(ctx context.Context, e *env, f *flag.FlagSet) error {
				base, current, err := comparePeriods(f.Args(), time.Now())
				if err != nil {
					return err
				}
				a, sess, err := e.session(ctx)
				if err != nil {
					return err
				}
				c, err := a.Aggregation.Compare(ctx, sess, base, current)
				if err != nil {
					return err
				}
				e.printMarkdown(report.ComparisonMarkdown(c, sess.Currency))
				return nil
			},
		},
		{
			name:     "portfolio",
			synopsis: "cash, investments, liabilities and net worth",
			usage:    "fintrack portfolio\n",
			run: func(ctx context.Context, e *env, f *flag.FlagSet) error {
				a, sess, err := e.session(ctx)
				if err != nil {
					return err
				}
				p, err := a.Portfolio.Status(ctx, sess)
				if err != nil {
					return err
				}
				e.printMarkdown(report.PortfolioMarkdown(p, sess.Currency))
				return nil
			},
		},
		{
			name:     "projection",
			synopsis: "monthly outlook from active recurring items",
			usage:    "fintrack projection\n",
			run: func(ctx context.Context, e *env, f *flag.FlagSet) error {
				a, sess, err := e.session(ctx)
				if err != nil {
					return err
				}
				p, err := a.Aggregation.Projection(ctx, sess)
				if err != nil {
					return err
				}
				e.printMarkdown(report.ProjectionMarkdown(p, sess.Currency))
				return nil
			},
		},
		{
			name:     "forecast",
			synopsis: "project savings from historical monthly averages",
			usage:    "fintrack forecast [-months N]\n",
			flags: func(f *flag.FlagSet) {
				f.IntVar(&months, "months", 12, "months to project")
			},
			run: func(ctx context.Context, e *env, f *flag.FlagSet) error {
				if months <= 0 {
					return usageErr("-months must be positive")
				}
				a, sess, err := e.session(ctx)
				if err != nil {
					return err
				}
				points, err := a.Aggregation.Forecast(ctx, sess, time.Now(), months)
				if err != nil {
					return err
				}
				e.printMarkdown(report.ForecastMarkdown(points, sess.Currency))
				return nil
			},
		},
	}
}
