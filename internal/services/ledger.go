package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/loan"
	"fintrack/internal/storage"
)

// LedgerService records transactions, categories and recurring items for
// the session user.
type LedgerService struct {
	storage   *storage.SQLiteRepository
	publisher EventPublisher
}

func NewLedgerService(storage *storage.SQLiteRepository, publisher EventPublisher) *LedgerService {
	return &LedgerService{
		storage:   storage,
		publisher: publisher,
	}
}

// AddTransaction validates and stores t for the session user. A Debt that
// carries a rate and tenure without an installment gets its EMI and end
// date computed.
func (s *LedgerService) AddTransaction(ctx context.Context, sess core.Session, t core.Transaction) (int64, error) {
	t.ID = 0
	t.UserID = sess.UserID
	t.Category = strings.TrimSpace(t.Category)
	t.Subcategory = strings.TrimSpace(t.Subcategory)
	t.Description = strings.TrimSpace(t.Description)

	if t.Loan != nil {
		if err := fillLoan(&t); err != nil {
			return 0, err
		}
	}

	if err := t.Validate(); err != nil {
		return 0, err
	}

	id, err := s.storage.AddTransaction(ctx, t)
	if err != nil {
		return 0, fmt.Errorf("save transaction: %w", err)
	}

	publishEvent(ctx, s.publisher, amqp.KindTransactionCreated, sess.UserID, id, t.Amount)
	return id, nil
}

// fillLoan defaults the loan start to the entry date and computes a
// missing installment and end date.
func fillLoan(t *core.Transaction) error {
	if t.Type != core.Debt {
		return fmt.Errorf("%w: loan terms on a %s entry", core.ErrInvalidLoanTerm, t.Type)
	}
	terms := *t.Loan
	if terms.StartDate.IsZero() {
		terms.StartDate = t.Date
	}
	terms = loan.Fill(t.Amount, terms)
	t.Loan = &terms
	return nil
}

// Transactions lists the session user's transactions, newest first.
func (s *LedgerService) Transactions(ctx context.Context, sess core.Session, f core.Filter) ([]core.Transaction, error) {
	return s.storage.ListTransactions(ctx, sess.UserID, f)
}

func (s *LedgerService) Transaction(ctx context.Context, sess core.Session, id int64) (core.Transaction, error) {
	return s.storage.GetTransaction(ctx, sess.UserID, id)
}

// UpdateTransaction applies a partial update to an owned transaction.
// Loan terms in the patch replace the stored ones and are completed the
// same way AddTransaction completes them.
func (s *LedgerService) UpdateTransaction(ctx context.Context, sess core.Session, id int64, patch core.TransactionPatch) error {
	if patch.IsEmpty() {
		return nil
	}

	current, err := s.storage.GetTransaction(ctx, sess.UserID, id)
	if err != nil {
		return err
	}

	updated := patch.Apply(current)
	updated.Category = strings.TrimSpace(updated.Category)
	updated.Description = strings.TrimSpace(updated.Description)
	if patch.Loan != nil {
		if err := fillLoan(&updated); err != nil {
			return err
		}
	}
	if err := updated.Validate(); err != nil {
		return err
	}

	if err := s.storage.UpdateTransaction(ctx, updated); err != nil {
		return err
	}

	publishEvent(ctx, s.publisher, amqp.KindTransactionUpdated, sess.UserID, id, updated.Amount)
	return nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, sess core.Session, id int64) error {
	if err := s.storage.DeleteTransaction(ctx, sess.UserID, id); err != nil {
		return err
	}
	publishEvent(ctx, s.publisher, amqp.KindTransactionDeleted, sess.UserID, id, 0)
	return nil
}

// DeleteTransactionsByLink removes every row linked to linkedID and
// returns how many went.
func (s *LedgerService) DeleteTransactionsByLink(ctx context.Context, sess core.Session, linkedID int64) (int64, error) {
	n, err := s.storage.DeleteTransactionsByLink(ctx, sess.UserID, linkedID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		publishEvent(ctx, s.publisher, amqp.KindTransactionDeleted, sess.UserID, linkedID, 0)
	}
	return n, nil
}

// Categories lists active categories by type then name. An empty typ
// lists all of them.
func (s *LedgerService) Categories(ctx context.Context, sess core.Session, typ core.TxType) ([]core.Category, error) {
	return s.storage.ListCategories(ctx, sess.UserID, typ)
}

// AddCategory creates a category, or reactivates a soft-deleted one with
// the same name and type so its id is kept.
func (s *LedgerService) AddCategory(ctx context.Context, sess core.Session, c core.Category) (int64, error) {
	c.UserID = sess.UserID
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return 0, err
	}

	var id int64
	err := s.storage.InTx(ctx, func(tx *storage.SQLiteRepository) error {
		existing, err := tx.FindCategory(ctx, sess.UserID, c.Name, c.Type)
		switch {
		case errors.Is(err, core.ErrNotFound):
			id, err = tx.AddCategory(ctx, c)
			return err
		case err != nil:
			return err
		case existing.IsActive:
			return fmt.Errorf("%w: %s (%s)", core.ErrDuplicateCategory, c.Name, c.Type)
		}
		id = existing.ID
		return tx.ReactivateCategory(ctx, sess.UserID, existing.ID, c.IsLoan)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateCategory renames or retypes an owned active category.
func (s *LedgerService) UpdateCategory(ctx context.Context, sess core.Session, c core.Category) error {
	c.UserID = sess.UserID
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return err
	}

	return s.storage.InTx(ctx, func(tx *storage.SQLiteRepository) error {
		current, err := tx.GetCategory(ctx, sess.UserID, c.ID)
		if err != nil {
			return err
		}
		if !current.IsActive {
			return fmt.Errorf("category %d: %w", c.ID, core.ErrNotFound)
		}
		clash, err := tx.FindCategory(ctx, sess.UserID, c.Name, c.Type)
		if err == nil && clash.ID != c.ID && clash.IsActive {
			return fmt.Errorf("%w: %s (%s)", core.ErrDuplicateCategory, c.Name, c.Type)
		}
		if err != nil && !errors.Is(err, core.ErrNotFound) {
			return err
		}
		return tx.UpdateCategory(ctx, c)
	})
}

// DeleteCategory soft-deletes a category. Existing transactions keep
// their category name.
func (s *LedgerService) DeleteCategory(ctx context.Context, sess core.Session, id int64) error {
	return s.storage.DeactivateCategory(ctx, sess.UserID, id)
}

func (s *LedgerService) AddRecurringItem(ctx context.Context, sess core.Session, it core.RecurringItem) (int64, error) {
	it.UserID = sess.UserID
	it.Name = strings.TrimSpace(it.Name)
	it.Category = strings.TrimSpace(it.Category)
	if err := it.Validate(); err != nil {
		return 0, err
	}
	return s.storage.AddRecurringItem(ctx, it)
}

// RecurringItems lists items by type then amount descending.
func (s *LedgerService) RecurringItems(ctx context.Context, sess core.Session, onlyActive bool) ([]core.RecurringItem, error) {
	return s.storage.ListRecurringItems(ctx, sess.UserID, onlyActive)
}

func (s *LedgerService) UpdateRecurringItem(ctx context.Context, sess core.Session, it core.RecurringItem) error {
	it.UserID = sess.UserID
	it.Name = strings.TrimSpace(it.Name)
	if err := it.Validate(); err != nil {
		return err
	}
	return s.storage.UpdateRecurringItem(ctx, it)
}

func (s *LedgerService) DeleteRecurringItem(ctx context.Context, sess core.Session, id int64) error {
	if err := s.storage.DeleteRecurringItem(ctx, sess.UserID, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Recurring item deleted", "id", id, "user_id", sess.UserID)
	return nil
}
