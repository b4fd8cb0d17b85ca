package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// PortfolioCalculator derives net worth from lifetime history.
type PortfolioCalculator struct {
	storage *storage.SQLiteRepository
}

func NewPortfolioCalculator(storage *storage.SQLiteRepository) *PortfolioCalculator {
	return &PortfolioCalculator{storage: storage}
}

// Status returns assets, liabilities and net worth. Cash is not clamped
// and may be negative.
func (c *PortfolioCalculator) Status(ctx context.Context, sess core.Session) (core.Portfolio, error) {
	var (
		totals    []storage.TypeCardTotal
		openDebts []core.Transaction
		loanNames []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		totals, err = c.storage.LifetimeTotals(gctx, sess.UserID)
		return err
	})
	g.Go(func() error {
		var err error
		openDebts, err = c.storage.ListTransactions(gctx, sess.UserID, core.Filter{Type: core.Debt, OnlyOpen: true})
		return err
	})
	g.Go(func() error {
		var err error
		loanNames, err = c.storage.LoanCategoryNames(gctx, sess.UserID)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Portfolio{}, err
	}

	return portfolio(totals, openDebts, loanNames), nil
}

func portfolio(totals []storage.TypeCardTotal, openDebts []core.Transaction, loanNames []string) core.Portfolio {
	var assets core.Assets
	for _, t := range totals {
		switch {
		case t.Type == core.Income:
			assets.Cash += t.Total
		case core.ReducesCash(t.Type, t.PaidByCard):
			assets.Cash -= t.Total
		}
		if t.Type == core.Investment {
			assets.Investments += t.Total
		}
	}

	isLoan := make(map[string]bool, len(loanNames))
	for _, n := range loanNames {
		isLoan[n] = true
	}

	var liabilities core.Liabilities
	for _, d := range openDebts {
		if isLoan[d.Category] {
			liabilities.Loans += d.Outstanding()
		} else {
			liabilities.FriendsDebt += d.Amount - d.PaidAmount
		}
	}

	assets.Cash = core.Round2(assets.Cash)
	assets.Investments = core.Round2(assets.Investments)
	liabilities.Loans = core.Round2(liabilities.Loans)
	liabilities.FriendsDebt = core.Round2(liabilities.FriendsDebt)

	return core.Portfolio{
		Assets:      assets,
		Liabilities: liabilities,
		NetWorth:    core.Round2(assets.Total() - liabilities.Total()),
	}
}
