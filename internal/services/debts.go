package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/loan"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// Clock returns the current time.
type Clock func() time.Time

// DebtManager moves debts and loans from open to closed and back. Each
// mutation commits in one SQL transaction.
type DebtManager struct {
	storage   *storage.SQLiteRepository
	publisher EventPublisher
	now       Clock
}

// NewDebtManager uses time.Now when clock is nil.
func NewDebtManager(storage *storage.SQLiteRepository, publisher EventPublisher, clock Clock) *DebtManager {
	if clock == nil {
		clock = time.Now
	}
	return &DebtManager{
		storage:   storage,
		publisher: publisher,
		now:       clock,
	}
}

func (m *DebtManager) today() core.Date {
	return core.DateOf(m.now())
}

// payment describes one installment against a debt.
type payment struct {
	op          string
	kind        string
	target      func(core.Transaction) float64
	category    string
	subcategory string
	description func(debt core.Transaction, final bool) string
}

var (
	friendsRepayment = payment{
		op:          log.OpRepay,
		kind:        amqp.KindDebtRepaid,
		target:      func(t core.Transaction) float64 { return t.Amount },
		category:    core.FriendsPaymentCategory,
		subcategory: core.RepaymentSubcategory,
		description: func(debt core.Transaction, final bool) string {
			if final {
				return fmt.Sprintf("Repayment to %s (Final)", debt.Description)
			}
			return fmt.Sprintf("Repayment to %s (Part)", debt.Description)
		},
	}

	emiPayment = payment{
		op:          log.OpPayEMI,
		kind:        amqp.KindLoanEMIPaid,
		target:      core.Transaction.TotalPayable,
		category:    core.EMICategory,
		subcategory: core.LoanRepaymentSubcategory,
		description: func(debt core.Transaction, _ bool) string {
			if debt.Loan == nil || debt.Loan.LenderBank == "" {
				return fmt.Sprintf("EMI for %s", debt.Category)
			}
			return fmt.Sprintf("EMI for %s (%s)", debt.Category, debt.Loan.LenderBank)
		},
	}
)

// RepayDebt records a repayment of amount against an informal debt and
// closes it once the remaining balance is within core.Epsilon.
func (m *DebtManager) RepayDebt(ctx context.Context, sess core.Session, debtID int64, amount float64, account string, date core.Date) (int64, error) {
	return m.pay(ctx, sess, friendsRepayment, debtID, amount, account, date)
}

// PayEMI records an installment against a loan. The loan closes when the
// total payable is reached.
func (m *DebtManager) PayEMI(ctx context.Context, sess core.Session, loanID int64, amount float64, account string, date core.Date) (int64, error) {
	return m.pay(ctx, sess, emiPayment, loanID, amount, account, date)
}

func (m *DebtManager) pay(ctx context.Context, sess core.Session, p payment, debtID int64, amount float64, account string, date core.Date) (int64, error) {
	if date.IsZero() {
		date = m.today()
	}

	var (
		repaymentID int64
		newPaid     float64
		closed      bool
	)
	err := m.storage.InTx(ctx, func(tx *storage.SQLiteRepository) error {
		debt, err := tx.GetTransaction(ctx, sess.UserID, debtID)
		if err != nil {
			return err
		}
		if debt.Type != core.Debt {
			return fmt.Errorf("transaction %d: %w", debtID, core.ErrNotADebt)
		}

		target := p.target(debt)
		remaining := target - debt.PaidAmount
		if amount <= 0 || amount > remaining+core.Epsilon {
			return fmt.Errorf("%w: %.2f with %.2f remaining", core.ErrRepayAmountOutOfRange, amount, remaining)
		}

		repaymentID, err = tx.AddTransaction(ctx, core.Transaction{
			UserID:      sess.UserID,
			Date:        date,
			Type:        core.Expense,
			Category:    p.category,
			Subcategory: p.subcategory,
			Amount:      amount,
			Description: p.description(debt, amount >= remaining-core.Epsilon),
			Account:     account,
			LinkedID:    debtID,
		})
		if err != nil {
			return err
		}

		newPaid = core.Round2(debt.PaidAmount + amount)
		closed = newPaid >= target-core.Epsilon
		return tx.SetRepayment(ctx, sess.UserID, debtID, newPaid, closed)
	})
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "Debt payment recorded",
		log.NewFields().
			WithOperation(p.op).
			WithUser(sess.UserID, sess.Username).
			WithRepayment(debtID, amount, newPaid, closed).
			ToSlice()...)

	publishEvent(ctx, m.publisher, p.kind, sess.UserID, debtID, amount)
	return repaymentID, nil
}

// UndoEligibility reports whether the latest repayment of debtID is
// recent enough to reverse. Repayments dated after today are not.
func (m *DebtManager) UndoEligibility(ctx context.Context, sess core.Session, debtID int64) (core.UndoEligibility, error) {
	if _, err := m.storage.GetTransaction(ctx, sess.UserID, debtID); err != nil {
		return core.UndoEligibility{}, err
	}
	last, err := m.storage.LatestRepayment(ctx, sess.UserID, debtID)
	if err != nil {
		return core.UndoEligibility{}, err
	}
	return m.eligibility(last), nil
}

func (m *DebtManager) eligibility(last core.Transaction) core.UndoEligibility {
	days := m.today().DaysSince(last.Date)
	return core.UndoEligibility{
		Allowed:     days >= 0 && days <= core.UndoWindowDays,
		LastPayment: last.Date,
		DaysAgo:     days,
	}
}

// UndoRepayment reverses every payment against debtID if the latest one
// is at most core.UndoWindowDays old. All linked rows are deleted and the
// debt reopens with nothing paid.
func (m *DebtManager) UndoRepayment(ctx context.Context, sess core.Session, debtID int64) (int64, error) {
	var removed int64
	err := m.storage.InTx(ctx, func(tx *storage.SQLiteRepository) error {
		debt, err := tx.GetTransaction(ctx, sess.UserID, debtID)
		if err != nil {
			return err
		}
		if debt.Type != core.Debt {
			return fmt.Errorf("transaction %d: %w", debtID, core.ErrNotADebt)
		}

		last, err := tx.LatestRepayment(ctx, sess.UserID, debtID)
		if err != nil {
			return err
		}
		if el := m.eligibility(last); !el.Allowed {
			return fmt.Errorf("%w: last payment %s is %d days old", core.ErrUndoWindowExpired, el.LastPayment, el.DaysAgo)
		}

		removed, err = tx.DeleteTransactionsByLink(ctx, sess.UserID, debtID)
		if err != nil {
			return err
		}
		return tx.SetRepayment(ctx, sess.UserID, debtID, 0, false)
	})
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "Repayment undone",
		log.FieldOperation, log.OpUndo,
		log.FieldDebtID, debtID,
		log.FieldDeleteCount, removed)

	publishEvent(ctx, m.publisher, amqp.KindRepaymentUndone, sess.UserID, debtID, 0)
	return removed, nil
}

// ToggleRepaid flips the repaid flag of an owned transaction and returns
// the new value.
func (m *DebtManager) ToggleRepaid(ctx context.Context, sess core.Session, id int64) (bool, error) {
	var repaid bool
	err := m.storage.InTx(ctx, func(tx *storage.SQLiteRepository) error {
		t, err := tx.GetTransaction(ctx, sess.UserID, id)
		if err != nil {
			return err
		}
		repaid = !t.IsRepaid
		return tx.SetRepaid(ctx, sess.UserID, id, repaid)
	})
	if err != nil {
		return false, err
	}
	publishEvent(ctx, m.publisher, amqp.KindTransactionUpdated, sess.UserID, id, 0)
	return repaid, nil
}

// FriendsDebts lists informal debts, newest first.
func (m *DebtManager) FriendsDebts(ctx context.Context, sess core.Session) ([]core.Transaction, error) {
	return m.storage.ListTransactions(ctx, sess.UserID, core.Filter{
		Type:     core.Debt,
		Category: core.FriendsCategory,
	})
}

// Loans lists debts filed under a loan category with their progress,
// newest first.
func (m *DebtManager) Loans(ctx context.Context, sess core.Session) ([]core.LoanStatus, error) {
	names, err := m.storage.LoanCategoryNames(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	isLoan := make(map[string]bool, len(names))
	for _, n := range names {
		isLoan[n] = true
	}

	debts, err := m.storage.ListTransactions(ctx, sess.UserID, core.Filter{Type: core.Debt})
	if err != nil {
		return nil, err
	}

	out := make([]core.LoanStatus, 0, len(debts))
	for _, d := range debts {
		if isLoan[d.Category] {
			out = append(out, loan.Progress(d))
		}
	}
	return out, nil
}

// RepaymentHistory lists the rows linked to debtID, newest first.
func (m *DebtManager) RepaymentHistory(ctx context.Context, sess core.Session, debtID int64) ([]core.Transaction, error) {
	if _, err := m.storage.GetTransaction(ctx, sess.UserID, debtID); err != nil {
		return nil, err
	}
	return m.storage.ListTransactions(ctx, sess.UserID, core.Filter{LinkedID: debtID})
}
