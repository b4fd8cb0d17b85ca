package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/report"
)

// txFlags are the transaction fields settable from the command line.
type txFlags struct {
	typ, category, sub, amount, date, desc, account string
	card, self, reinvest                            bool
}

func (t *txFlags) register(f *flag.FlagSet) {
	f.StringVar(&t.typ, "type", "", "transaction type: "+typeList())
	f.StringVar(&t.category, "category", "", "category name")
	f.StringVar(&t.sub, "sub", "", "subcategory")
	f.StringVar(&t.amount, "amount", "", "positive amount, e.g. 1250.50")
	f.StringVar(&t.date, "date", "", "date YYYY-MM-DD, default today")
	f.StringVar(&t.desc, "desc", "", "description")
	f.StringVar(&t.account, "account", "", "account the money moved through")
	f.BoolVar(&t.card, "card", false, "paid by credit card")
	f.BoolVar(&t.self, "self", false, "personal expense")
	f.BoolVar(&t.reinvest, "reinvest", false, "investment funded by returns")
}

func typeList() string {
	var names []string
	for _, t := range core.AllTypes() {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}

// loanFlags turn a Debt entry into a formal loan.
type loanFlags struct {
	rate, emi     float64
	tenure        int
	lender, start string
}

func (l *loanFlags) register(f *flag.FlagSet) {
	f.Float64Var(&l.rate, "rate", 0, "loan: annual interest rate in percent")
	f.IntVar(&l.tenure, "tenure", 0, "loan: tenure in months")
	f.Float64Var(&l.emi, "emi", 0, "loan: monthly installment, computed when omitted")
	f.StringVar(&l.lender, "lender", "", "loan: lending bank")
	f.StringVar(&l.start, "start", "", "loan: start date YYYY-MM-DD, default the transaction date")
}

func (l *loanFlags) terms() (*core.LoanTerms, error) {
	if l.rate == 0 && l.tenure == 0 && l.emi == 0 && l.lender == "" && l.start == "" {
		return nil, nil
	}
	start, err := core.ParseDate(l.start)
	if err != nil {
		return nil, err
	}
	return &core.LoanTerms{
		InterestRate: l.rate,
		TenureMonths: l.tenure,
		EMI:          l.emi,
		StartDate:    start,
		LenderBank:   l.lender,
	}, nil
}

var loanFlagNames = map[string]bool{"rate": true, "tenure": true, "emi": true, "lender": true, "start": true}

// merge overlays the loan flags the user passed on the stored terms.
// Changing rate, tenure, start or amount without -emi clears the
// installment so it is recomputed. It returns nil when nothing
// loan-related changed.
func (l *loanFlags) merge(f *flag.FlagSet, current *core.LoanTerms) (*core.LoanTerms, error) {
	var terms core.LoanTerms
	if current != nil {
		terms = *current
	}
	var (
		touched, reprice, emiSet bool
		err                      error
	)
	f.Visit(func(fl *flag.Flag) {
		if fl.Name == "amount" && current != nil {
			reprice = true
			touched = true
		}
		if !loanFlagNames[fl.Name] || err != nil {
			return
		}
		touched = true
		switch fl.Name {
		case "rate":
			terms.InterestRate = l.rate
			reprice = true
		case "tenure":
			terms.TenureMonths = l.tenure
			reprice = true
		case "emi":
			terms.EMI = l.emi
			emiSet = true
		case "lender":
			terms.LenderBank = l.lender
		case "start":
			terms.StartDate, err = core.ParseDate(l.start)
			terms.EndDate = core.Date{}
		}
	})
	if err != nil || !touched {
		return nil, err
	}
	if reprice && !emiSet {
		terms.EMI = 0
		terms.EndDate = core.Date{}
	}
	return &terms, nil
}

func today() core.Date {
	return core.DateOf(time.Now())
}

func dateOrToday(s string) (core.Date, error) {
	if strings.TrimSpace(s) == "" {
		return today(), nil
	}
	return core.ParseDate(s)
}

func (t *txFlags) transaction() (core.Transaction, error) {
	typ, err := core.ParseTxType(t.typ)
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := core.ParseAmount(t.amount)
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := dateOrToday(t.date)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		Date:                date,
		Type:                typ,
		Category:            t.category,
		Subcategory:         t.sub,
		Amount:              amount,
		Description:         t.desc,
		Account:             t.account,
		IsCreditCardPayment: t.card,
		IsSelf:              t.self,
		IsReinvestment:      t.reinvest,
	}, nil
}

// patch builds an update from the flags the user actually passed.
func (t *txFlags) patch(f *flag.FlagSet, repaid *bool, paid string) (core.TransactionPatch, error) {
	var p core.TransactionPatch
	var err error
	f.Visit(func(fl *flag.Flag) {
		if err != nil {
			return
		}
		switch fl.Name {
		case "type":
			var typ core.TxType
			if typ, err = core.ParseTxType(t.typ); err == nil {
				p.Type = &typ
			}
		case "category":
			p.Category = &t.category
		case "sub":
			p.Subcategory = &t.sub
		case "amount":
			var amt float64
			if amt, err = core.ParseAmount(t.amount); err == nil {
				p.Amount = &amt
			}
		case "date":
			var d core.Date
			if d, err = core.ParseDate(t.date); err == nil {
				p.Date = &d
			}
		case "desc":
			p.Description = &t.desc
		case "account":
			p.Account = &t.account
		case "card":
			p.IsCreditCardPayment = &t.card
		case "self":
			p.IsSelf = &t.self
		case "reinvest":
			p.IsReinvestment = &t.reinvest
		case "repaid":
			p.IsRepaid = repaid
		case "paid":
			var amt float64
			if amt, err = core.ParseAmount(paid); err == nil {
				p.PaidAmount = &amt
			}
		}
	})
	return p, err
}

func ledgerCommands() []*command {
	var (
		add      txFlags
		loan     loanFlags
		edit     txFlags
		editLoan loanFlags
		repaid   bool
		paid     string
		period   periodFlags
		listType string
		listCat  string
		onlySelf bool
		onlyOpen bool
		catType  string
		catLoan  bool
		catName  string
		recType  string
		recCat   string
		recAmt   string
		recAll   bool
	)

	return []*command{
		{
			name:     "add",
			synopsis: "record a transaction",
			usage:    "fintrack add -type <type> -category <name> -amount <amount> [flags]\n\n  Debt entries become loans when any loan flag is given.\n",
			flags: func(f *flag.FlagSet) {
				add.register(f)
				loan.register(f)
			},
			run: func(ctx context.Context, e *env, f *flag.FlagSet) error {
				t, err := add.transaction()
				if err != nil {
					return err
				}
				if t.Loan, err = loan.terms(); err != nil {
					return err
				}
				a, sess, err := e.session(ctx)
				if err != nil {
					return err
				}
				id, err := a.Ledger.AddTransaction(ctx, sess, t)
				if err != nil {
					return err
				}
				e.printf("Added transaction %d\n", id)
				return nil
			},
		},
		{
			name:     "list",
			synopsis: "list transactions, newest first",
			usage:    "fintrack list [-type <type>] [-category <name>] [-from <date>] [-to <date>] [-month YYYY-MM] [-self] [-open]\n",
			flags: func(f *flag.FlagSet) {
				f.StringVar(&listType, "type", "", "only this type")
				f.StringVar(&listCat, "category", "", "only this category")
				f.BoolVar(&onlySelf, "self", false, "only personal entries")
				f.BoolVar(&onlyOpen, "open", false, "only debts not yet repaid")
				period.register(f)
			},
			run: func(ctx context.Context, e *env, f *flag.FlagSet) error {
				p, err := period.period()
				if err != nil {
					return err
				}
				typ, err := parseType(listType)
				if err != nil {
					return err
				}
				a, sess, err := e.session(ctx)
				if err != nil {
					return err
				}
				txs, err := a.Ledger.Transactions(ctx, sess, core.Filter{
					Period:   p,
					Type:     typ,
					Category: listCat,
					OnlySelf: onlySelf,
					OnlyOpen: onlyOpen,
				})
				if err != nil {
					return err
				}
				e.printMarkdown(report.TransactionsMarkdown("Transactions", txs, sess.Currency))
				return nil
			},
		},
		{
			name:     "edit",
			synopsis: "change fields of a transaction",
			usage:    "fintrack edit [flags] <id>\n\n  Only the flags given are changed. Loan flags recompute the installment unless -emi is given.\n",
			flags: func(f *flag.FlagSet) {
				edit.register(f)
				editLoan.register(f)
				f.BoolVar(&repaid, "repaid", false, "debt: mark repaid")
				f.StringVar(&paid, "paid", "", "debt: amount repaid so far")
			},
			run: func(ctx context.Context, e *env, f *flag.FlagSet) error {
				rest, err := args(f, 1, "<id>")
				if err != nil {
					return err
				}
				id, err := parseID(rest[0])
				if err != nil {
					return err
				}
				patch, err := edit.patch(f, &repaid, paid)
				if err != nil {
					return err
				}
				a, sess, err := e.session(ctx)
				if err != nil {
					return err
				}
				current, err := a.Ledger.Transaction(ctx, sess, id)
				if err != nil {
					return err
				}
				if patch.Loan, err = editLoan.merge(f, current.Loan); err != nil {
					return err
				}
				if err := a.Ledger.UpdateTransaction(ctx, sess, id, patch); err != nil {
					return err
				}
				e.printf("Updated transaction %d\n", id)
				return nil
			},
		},
		{
			name:     "delete",
			synopsis: "delete a transaction",
			usage:    "fintrack delete <id>\n",
			run: func(ctx context.Context, e *env, f *flag.FlagSet) error {
				rest, err := args(f, 1, "<id>")
				if err != nil {
					return err
				}
				id, err := parseID(rest[0])
				if err != nil {
					return err
				}
				a, sess, err := e.session(ctx)
				if err != nil {
					return err
				}
				if err := a.Ledger.DeleteTransaction(ctx, sess, id); err != nil {
					return err
				}
				e.printf("Deleted transaction %d\n", id)
				return nil
			},
		},
		{
			name:     "categories",
			synopsis: "list active categories",
			usage:    "fintrack categories [-type <type>]\n",
			flags: func(f *flag.FlagSet) {
				f.StringVar(&catType, "type", "", "only this type")
			},
			run: func(ctx context.Context, e *env, f *flag.FlagSet) error {
				typ, err := parseType(catType)
				if err != nil {
					return err
				}
				a, sess, err := e.session(ctx)
				if err != nil {
					return err
				}
				cats, err := a.Ledger.Categories(ctx, sess, typ)
				if err != nil {
					return err
				}
				e.printMarkdown(report.CategoriesMarkdown(cats))
				return nil
			},
		},
		{
			name:     "category-add",
			synopsis: "add a category, or restore a deleted one",
			usage:    "fintrack category-add -type <type> [-loan] <name>\n",
			flags: func(f *flag.FlagSet) {
				f.StringVar(&catType, "type", "", "category type")
				f.BoolVar(&catLoan, "loan", false, "debt category for formal loans")
			},
			run: func(ctx context.Context, e *env, f *flag.FlagSet) error {
				if f.NArg() == 0 {
					return usageErr("expected <name>")
				}
				typ, err := core.ParseTxType(catType)
				if err != nil {
					return err
				}
				a, sess, err := e.session(ctx)
				if err != nil {
					return err
				}
				name := strings.Join(f.Args(), " ")
				id, err := a.Ledger.AddCategory(ctx, sess, core.Category{Name: name, Type: typ, IsLoan: catLoan, IsActive: true})
				if err != nil {
					return err
				}
				e.printf("Category %q is %d\n", name, id)
				return nil
			},
		},
		{
			name:     "category-edit",
			synopsis: "rename or retype a category",
			usage:    "fintrack category-edit -type <type> -name <name> [-loan] <id>\n",
			flags: func(f *flag.FlagSet) {
				f.StringVar(&catType, "type", "", "category type")
				f.StringVar(&catName, "name", "", "new name")
				f.BoolVar(&catLoan, "loan", false, "debt category for formal loans")
			},
			run: func(ctx context.Context, e *env, f *flag.FlagSet) error {
				rest, err := args(f, 1, "<id>")
				if err != nil {
					return err
				}
				id, err := parseID(rest[0])
				if err != nil {
					return err
				}
				typ, err := core.ParseTxType(catType)
				if err != nil {
					return err
				}
				a, sess, err := e.session(ctx)
				if err != nil {
					return err
				}
				c := core.Category{ID: id, Name: catName, Type: typ, IsLoan: catLoan, IsActive: true}
				if err := a.Ledger.UpdateCategory(ctx, sess, c); err != nil {
					return err
				}
				e.printf("Updated category %d\n", id)
				return nil
			},
		},
		{
			name:     "category-delete",
			synopsis: "hide a category; existing transactions keep it",
			usage:    "fintrack category-delete <id>\n",
			run: func(ctx context.Context, e *env, f *flag.FlagSet) error {
				rest, err := args(f, 1, "<id>")
				if err != nil {
					return err
				}
				id, err := parseID(rest[0])
				if err != nil {
					return err
				}
				a, sess, err := e.session(ctx)
				if err != nil {
					return err
				}
				if err := a.Ledger.DeleteCategory(ctx, sess, id); err != nil {
					return err
				}
				e.printf("Deleted category %d\n", id)
				return nil
			},
		},
		{
			name:     "recurring-add",
			synopsis: "add a recurring monthly item",
			usage:    "fintrack recurring-add -type <type> -amount <amount> [-category <name>] <name>\n",
			flags: func(f *flag.FlagSet) {
				f.StringVar(&recType, "type", "", "item type")
				f.StringVar(&recCat, "category", "", "category name")
				f.StringVar(&recAmt, "amount", "", "monthly amount")
			},
			run: func(ctx context.Context, e *env, f *flag.FlagSet) error {
				if f.NArg() == 0 {
					return usageErr("expected <name>")
				}
				typ, err := core.ParseTxType(recType)
				if err != nil {
					return err
				}
				amount, err := core.ParseAmount(recAmt)
				if err != nil {
					return err
				}
				a, sess, err := e.session(ctx)
				if err != nil {
					return err
				}
				id, err := a.Ledger.AddRecurringItem(ctx, sess, core.RecurringItem{
					Name:     strings.Join(f.Args(), " "),
					Type:     typ,
					Category: recCat,
					Amount:   amount,
					IsActive: true,
				})
				if err != nil {
					return err
				}
				e.printf("Added recurring item %d\n", id)
				return nil
			},
		},
		{
			name:     "recurring",
			synopsis: "list recurring items",
			usage:    "fintrack recurring [-all]\n",
			flags: func(f *flag.FlagSet) {
				f.BoolVar(&recAll, "all", false, "include paused items")
			},
			run: func(ctx context.Context, e *env, f *flag.FlagSet) error {
				a, sess, err := e.session(ctx)
				if err != nil {
					return err
				}
				items, err := a.Ledger.RecurringItems(ctx, sess, !recAll)
				if err != nil {
					return err
				}
				e.printMarkdown(report.RecurringItemsMarkdown(items, sess.Currency))
				return nil
			},
		},
		{
			name:     "recurring-toggle",
			synopsis: "pause or resume a recurring item",
			usage:    "fintrack recurring-toggle <id>\n",
			run: func(ctx context.Context, e *env, f *flag.FlagSet) error {
				rest, err := args(f, 1, "<id>")
				if err != nil {
					return err
				}
				id, err := parseID(rest[0])
				if err != nil {
					return err
				}
				a, sess, err := e.session(ctx)
				if err != nil {
					return err
				}
				items, err := a.Ledger.RecurringItems(ctx, sess, false)
				if err != nil {
					return err
				}
				for _, it := range items {
					if it.ID != id {
						continue
					}
					it.IsActive = !it.IsActive
					if err := a.Ledger.UpdateRecurringItem(ctx, sess, it); err != nil {
						return err
					}
					state := "paused"
					if it.IsActive {
						state = "active"
					}
					e.printf("Recurring item %d is %s\n", id, state)
					return nil
				}
				return fmt.Errorf("recurring item %d: %w", id, core.ErrNotFound)
			},
		},
		{
			name:     "recurring-delete",
			synopsis: "delete a recurring item",
			usage:    "fintrack recurring-delete <id>\n",
			run: func(ctx context.Context, e *env, f *flag.FlagSet) error {
				rest, err := args(f, 1, "<id>")
				if err != nil {
					return err
				}
				id, err := parseID(rest[0])
				if err != nil {
					return err
				}
				a, sess, err := e.session(ctx)
				if err != nil {
					return err
				}
				if err := a.Ledger.DeleteRecurringItem(ctx, sess, id); err != nil {
					return err
				}
				e.printf("Deleted recurring item %d\n", id)
				return nil
			},
		},
	}
}
