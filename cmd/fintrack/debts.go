package main

import (
	"context"
	"flag"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/report"
)

// paymentFlags are shared by repay and pay-emi.
type paymentFlags struct {
	account, date string
}

func (p *paymentFlags) register(f *flag.FlagSet) {
	f.StringVar(&p.account, "account", "", "account the payment comes from")
	f.StringVar(&p.date, "date", "", "payment date YYYY-MM-DD, default today")
}

// idAndAmount parses the "<id> <amount>" arguments.
func idAndAmount(f *flag.FlagSet) (int64, float64, error) {
	rest, err := args(f, 2, "<id> <amount>")
	if err != nil {
		return 0, 0, err
	}
	id, err := parseID(rest[0])
	if err != nil {
		return 0, 0, err
	}
	amount, err := core.ParseAmount(rest[1])
	if err != nil {
		return 0, 0, err
	}
	return id, amount, nil
}

func debtCommands() []*command {
	var (
		repay paymentFlags
		emi   paymentFlags
	)

	idArg := func(f *flag.FlagSet) (int64, error) {
		rest, err := args(f, 1, "<id>")
		if err != nil {
			return 0, err
		}
		return parseID(rest[0])
	}

	return []*command{
		{
			name:     "debts",
			synopsis: "list debts to friends",
			usage:    "fintrack debts\n",
			run: func(ctx context.Context, e *env, f *flag.FlagSet) error {
				a, sess, err := e.session(ctx)
				if err != nil {
					return err
				}
				debts, err := a.Debts.FriendsDebts(ctx, sess)
				if err != nil {
					return err
				}
				e.printMarkdown(report.FriendsDebtsMarkdown(debts, sess.Currency))
				return nil
			},
		},
		{
			name:     "repay",
			synopsis: "record a repayment against a debt",
			usage:    "fintrack repay [-account <name>] [-date <date>] <debt-id> <amount>\n",
			flags:    repay.register,
			run: func(ctx context.Context, e *env, f *flag.FlagSet) error {
				id, amount, err := idAndAmount(f)
				if err != nil {
					return err
				}
				date, err := core.ParseDate(repay.date)
				if err != nil {
					return err
				}
				a, sess, err := e.session(ctx)
				if err != nil {
					return err
				}
				txID, err := a.Debts.RepayDebt(ctx, sess, id, amount, repay.account, date)
				if err != nil {
					return err
				}
				return printDebtState(ctx, e, a.Ledger.Transaction, sess, id, txID)
			},
		},
		{
			name:     "pay-emi",
			synopsis: "record an installment against a loan",
			usage:    "fintrack pay-emi [-account <name>] [-date <date>] <loan-id> <amount>\n",
			flags:    emi.register,
			run: func(ctx context.Context, e *env, f *flag.FlagSet) error {
				id, amount, err := idAndAmount(f)
				if err != nil {
					return err
				}
				date, err := core.ParseDate(emi.date)
				if err != nil {
					return err
				}
				a, sess, err := e.session(ctx)
				if err != nil {
					return err
				}
				txID, err := a.Debts.PayEMI(ctx, sess, id, amount, emi.account, date)
				if err != nil {
					return err
				}
				return printDebtState(ctx, e, a.Ledger.Transaction, sess, id, txID)
			},
		},
		{
			name:     "undo-repay",
			synopsis: "reverse the repayments of a debt within the undo window",
			usage:    fmt.Sprintf("fintrack undo-repay <debt-id>\n\n  Allowed while the latest repayment is at most %d days old.\n  Removes every repayment linked to the debt.\n", core.UndoWindowDays),
			run: func(ctx context.Context, e *env, f *flag.FlagSet) error {
				id, err := idArg(f)
				if err != nil {
					return err
				}
				a, sess, err := e.session(ctx)
				if err != nil {
					return err
				}
				n, err := a.Debts.UndoRepayment(ctx, sess, id)
				if err != nil {
					return err
				}
				e.printf("Removed %d repayment(s) from debt %d\n", n, id)
				return nil
			},
		},
		{
			name:     "toggle-repaid",
			synopsis: "flip the repaid flag of a debt",
			usage:    "fintrack toggle-repaid <debt-id>\n",
			run: func(ctx context.Context, e *env, f *flag.FlagSet) error {
				id, err := idArg(f)
				if err != nil {
					return err
				}
				a, sess, err := e.session(ctx)
				if err != nil {
					return err
				}
				repaid, err := a.Debts.ToggleRepaid(ctx, sess, id)
				if err != nil {
					return err
				}
				e.printf("Debt %d repaid: %t\n", id, repaid)
				return nil
			},
		},
		{
			name:     "history",
			synopsis: "repayments made against a debt",
			usage:    "fintrack history <debt-id>\n",
			run: func(ctx context.Context, e *env, f *flag.FlagSet) error {
				id, err := idArg(f)
				if err != nil {
					return err
				}
				a, sess, err := e.session(ctx)
				if err != nil {
					return err
				}
				txs, err := a.Debts.RepaymentHistory(ctx, sess, id)
				if err != nil {
					return err
				}
				e.printMarkdown(report.TransactionsMarkdown(fmt.Sprintf("Repayments for %d", id), txs, sess.Currency))

				el, err := a.Debts.UndoEligibility(ctx, sess, id)
				switch {
				case err == nil && el.Allowed:
					e.printf("Last payment %s (%d days ago) can still be undone\n", el.LastPayment, el.DaysAgo)
				case err != nil && !core.IsRejection(err):
					return err
				}
				return nil
			},
		},
		{
			name:     "loans",
			synopsis: "active loans with repayment progress",
			usage:    "fintrack loans\n",
			run: func(ctx context.Context, e *env, f *flag.FlagSet) error {
				a, sess, err := e.session(ctx)
				if err != nil {
					return err
				}
				loans, err := a.Debts.Loans(ctx, sess)
				if err != nil {
					return err
				}
				e.printMarkdown(report.LoansMarkdown(loans, sess.Currency))
				return nil
			},
		},
	}
}

type transactionGetter func(ctx context.Context, sess core.Session, id int64) (core.Transaction, error)

func printDebtState(ctx context.Context, e *env, get transactionGetter, sess core.Session, debtID, paymentID int64) error {
	d, err := get(ctx, sess, debtID)
	if err != nil {
		return err
	}
	e.printf("Recorded payment %d. Debt %d: paid %s of %s",
		paymentID, debtID, report.Money(d.PaidAmount, sess.Currency), report.Money(d.TotalPayable(), sess.Currency))
	if d.IsRepaid {
		e.printf(", closed")
	}
	e.printf("\n")
	return nil
}
