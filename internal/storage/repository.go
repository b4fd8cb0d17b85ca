package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

const timestampLayout = "2006-01-02 15:04:05"

// SQLiteRepository is the ledger store. All reads and writes are scoped
// by the owning user id.
type SQLiteRepository struct {
	db      *sql.DB
	path    string
	queries *Queries
	inTx    bool
}

// DSN adds the connection pragmas to a database file path.
func DSN(dbPath string) string {
	return dbPath + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", DSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(DSN(dbPath)); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		path:    dbPath,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil && !r.inTx {
		return r.db.Close()
	}
	return nil
}

// Path is the database file on disk.
func (r *SQLiteRepository) Path() string {
	return r.path
}

// InTx runs fn against a repository bound to one SQL transaction. The
// transaction commits when fn returns nil. Nested calls join the outer
// transaction.
func (r *SQLiteRepository) InTx(ctx context.Context, fn func(tx *SQLiteRepository) error) error {
	if r.inTx {
		return fn(r)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	txRepo := &SQLiteRepository{db: r.db, path: r.path, queries: r.queries.WithTx(tx), inTx: true}
	if err := fn(txRepo); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.ErrorContext(ctx, "Rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// CheckIntegrity runs PRAGMA integrity_check and reports whether the
// store answered "ok".
func (r *SQLiteRepository) CheckIntegrity(ctx context.Context) (bool, error) {
	var result string
	if err := r.db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return false, fmt.Errorf("integrity check: %w", err)
	}
	return result == "ok", nil
}

// Transactions

func (r *SQLiteRepository) AddTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	row, err := r.queries.CreateTransaction(ctx, toTransactionRow(t))
	if err != nil {
		return 0, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", row.ID,
		"user_id", row.UserID,
		"type", row.Type,
		"category", row.Category,
		"amount", row.Amount,
		"date", row.Date)

	return row.ID, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction by id: %w", err)
	}
	return fromTransactionRow(row), nil
}

// ListTransactions returns matching transactions, newest first.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID int64, f core.Filter) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx, ListTransactionsParams{
		UserID:   userID,
		Start:    f.Period.Start.String(),
		End:      f.Period.End.String(),
		Type:     string(f.Type),
		Category: f.Category,
		LinkedID: f.LinkedID,
		OnlySelf: f.OnlySelf,
		OnlyOpen: f.OnlyOpen,
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	out := make([]core.Transaction, len(rows))
	for i, row := range rows {
		out[i] = fromTransactionRow(row)
	}
	return out, nil
}

// LatestRepayment returns the newest Expense linked to debtID.
func (r *SQLiteRepository) LatestRepayment(ctx context.Context, userID, debtID int64) (core.Transaction, error) {
	row, err := r.queries.LatestRepayment(ctx, userID, debtID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNoRepayment
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get latest repayment: %w", err)
	}
	return fromTransactionRow(row), nil
}

// UpdateTransaction overwrites the editable columns of an owned row.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	n, err := r.queries.UpdateTransaction(ctx, toTransactionRow(t))
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %d: %w", t.ID, core.ErrNotFound)
	}
	slog.InfoContext(ctx, "Transaction updated", "id", t.ID, "user_id", t.UserID)
	return nil
}

func (r *SQLiteRepository) SetRepayment(ctx context.Context, userID, id int64, paid float64, repaid bool) error {
	n, err := r.queries.SetRepayment(ctx, paid, repaid, id, userID)
	if err != nil {
		return fmt.Errorf("set repayment: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) SetRepaid(ctx context.Context, userID, id int64, repaid bool) error {
	n, err := r.queries.SetRepaid(ctx, repaid, id, userID)
	if err != nil {
		return fmt.Errorf("set repaid: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id int64) error {
	n, err := r.queries.DeleteTransaction(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	slog.InfoContext(ctx, "Transaction deleted", "id", id, "user_id", userID)
	return nil
}

// DeleteTransactionsByLink removes every row linked to linkedID and
// returns how many were removed.
func (r *SQLiteRepository) DeleteTransactionsByLink(ctx context.Context, userID, linkedID int64) (int64, error) {
	n, err := r.queries.DeleteTransactionsByLink(ctx, linkedID, userID)
	if err != nil {
		return 0, fmt.Errorf("delete linked transactions: %w", err)
	}
	slog.InfoContext(ctx, "Linked transactions deleted", "linked_id", linkedID, "user_id", userID, "count", n)
	return n, nil
}

// TypeCardTotal is a lifetime sum for one (type, paid-by-card) pair.
type TypeCardTotal struct {
	Type       core.TxType
	PaidByCard bool
	Total      float64
}

func (r *SQLiteRepository) LifetimeTotals(ctx context.Context, userID int64) ([]TypeCardTotal, error) {
	rows, err := r.queries.SumByTypeAndCard(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("sum by type and card: %w", err)
	}
	out := make([]TypeCardTotal, len(rows))
	for i, row := range rows {
		out[i] = TypeCardTotal{Type: core.TxType(row.Type), PaidByCard: row.IsCreditCardPayment, Total: row.Total}
	}
	return out, nil
}

// Categories

// FindCategory looks up a category by name and type in either state.
func (r *SQLiteRepository) FindCategory(ctx context.Context, userID int64, name string, typ core.TxType) (core.Category, error) {
	row, err := r.queries.FindCategory(ctx, userID, name, string(typ))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("category %q: %w", name, core.ErrNotFound)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("find category: %w", err)
	}
	return fromCategoryRow(row), nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, userID, id int64) (core.Category, error) {
	row, err := r.queries.GetCategory(ctx, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("category %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return fromCategoryRow(row), nil
}

func (r *SQLiteRepository) AddCategory(ctx context.Context, c core.Category) (int64, error) {
	id, err := r.queries.CreateCategory(ctx, c.UserID, c.Name, string(c.Type), c.IsLoan)
	if err != nil {
		return 0, fmt.Errorf("create category: %w", err)
	}
	slog.InfoContext(ctx, "Category created", "id", id, "name", c.Name, "type", c.Type)
	return id, nil
}

func (r *SQLiteRepository) ReactivateCategory(ctx context.Context, userID, id int64, isLoan bool) error {
	n, err := r.queries.ReactivateCategory(ctx, isLoan, id, userID)
	if err != nil {
		return fmt.Errorf("reactivate category: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("category %d: %w", id, core.ErrNotFound)
	}
	slog.InfoContext(ctx, "Category reactivated", "id", id)
	return nil
}

// ListCategories returns active categories sorted by type then name. An
// empty typ lists every type.
func (r *SQLiteRepository) ListCategories(ctx context.Context, userID int64, typ core.TxType) ([]core.Category, error) {
	rows, err := r.queries.ListCategories(ctx, userID, string(typ))
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]core.Category, len(rows))
	for i, row := range rows {
		out[i] = fromCategoryRow(row)
	}
	return out, nil
}

func (r *SQLiteRepository) LoanCategoryNames(ctx context.Context, userID int64) ([]string, error) {
	names, err := r.queries.ListLoanCategoryNames(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list loan categories: %w", err)
	}
	return names, nil
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) error {
	n, err := r.queries.UpdateCategory(ctx, Category{
		ID:     c.ID,
		UserID: c.UserID,
		Name:   c.Name,
		Type:   string(c.Type),
		IsLoan: c.IsLoan,
	})
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("category %d: %w", c.ID, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) DeactivateCategory(ctx context.Context, userID, id int64) error {
	n, err := r.queries.DeactivateCategory(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("deactivate category: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("category %d: %w", id, core.ErrNotFound)
	}
	slog.InfoContext(ctx, "Category deactivated", "id", id)
	return nil
}

// Recurring items

func (r *SQLiteRepository) AddRecurringItem(ctx context.Context, it core.RecurringItem) (int64, error) {
	id, err := r.queries.CreateRecurringItem(ctx, RecurringItem{
		UserID:   it.UserID,
		Name:     it.Name,
		Type:     string(it.Type),
		Category: it.Category,
		Amount:   it.Amount,
		IsActive: it.IsActive,
	})
	if err != nil {
		return 0, fmt.Errorf("create recurring item: %w", err)
	}
	slog.InfoContext(ctx, "Recurring item created", "id", id, "name", it.Name, "amount", it.Amount)
	return id, nil
}

// ListRecurringItems returns items ordered by type then amount descending.
func (r *SQLiteRepository) ListRecurringItems(ctx context.Context, userID int64, onlyActive bool) ([]core.RecurringItem, error) {
	rows, err := r.queries.ListRecurringItems(ctx, userID, onlyActive)
	if err != nil {
		return nil, fmt.Errorf("list recurring items: %w", err)
	}
	out := make([]core.RecurringItem, len(rows))
	for i, row := range rows {
		out[i] = core.RecurringItem{
			ID:        row.ID,
			UserID:    row.UserID,
			Name:      row.Name,
			Type:      core.TxType(row.Type),
			Category:  row.Category,
			Amount:    row.Amount,
			IsActive:  row.IsActive,
			CreatedAt: parseTimestamp(row.CreatedAt),
		}
	}
	return out, nil
}

func (r *SQLiteRepository) UpdateRecurringItem(ctx context.Context, it core.RecurringItem) error {
	n, err := r.queries.UpdateRecurringItem(ctx, RecurringItem{
		ID:       it.ID,
		UserID:   it.UserID,
		Name:     it.Name,
		Type:     string(it.Type),
		Category: it.Category,
		Amount:   it.Amount,
		IsActive: it.IsActive,
	})
	if err != nil {
		return fmt.Errorf("update recurring item: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("recurring item %d: %w", it.ID, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) DeleteRecurringItem(ctx context.Context, userID, id int64) error {
	n, err := r.queries.DeleteRecurringItem(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("delete recurring item: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("recurring item %d: %w", id, core.ErrNotFound)
	}
	return nil
}

// Users

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	row, err := r.queries.CreateUser(ctx, u.Username, u.PasswordHash, u.IsAdmin, u.Currency)
	if err != nil {
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	slog.InfoContext(ctx, "User created", "id", row.ID, "username", row.Username, "is_admin", row.IsAdmin)
	return fromUserRow(row), nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id int64) (core.User, error) {
	row, err := r.queries.GetUser(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, fmt.Errorf("user %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return fromUserRow(row), nil
}

func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	row, err := r.queries.GetUserByUsername(ctx, username)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, fmt.Errorf("user %q: %w", username, core.ErrNotFound)
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user by username: %w", err)
	}
	return fromUserRow(row), nil
}

func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]core.User, error) {
	rows, err := r.queries.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]core.User, len(rows))
	for i, row := range rows {
		out[i] = fromUserRow(row)
	}
	return out, nil
}

func (r *SQLiteRepository) UpdatePasswordHash(ctx context.Context, userID int64, hash string) error {
	n, err := r.queries.UpdatePasswordHash(ctx, hash, userID)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user %d: %w", userID, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) UpdateCurrency(ctx context.Context, userID int64, currency string) error {
	n, err := r.queries.UpdateCurrency(ctx, currency, userID)
	if err != nil {
		return fmt.Errorf("update currency: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user %d: %w", userID, core.ErrNotFound)
	}
	return nil
}

// DeleteUser removes a user with all owned rows.
func (r *SQLiteRepository) DeleteUser(ctx context.Context, userID int64) error {
	n, err := r.queries.DeleteUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user %d: %w", userID, core.ErrNotFound)
	}
	slog.InfoContext(ctx, "User deleted", "id", userID)
	return nil
}

// Password reset requests

func (r *SQLiteRepository) PendingRequestForUser(ctx context.Context, userID int64) (core.PasswordResetRequest, error) {
	row, err := r.queries.GetPendingRequestForUser(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.PasswordResetRequest{}, core.ErrNotFound
	}
	if err != nil {
		return core.PasswordResetRequest{}, fmt.Errorf("get pending request: %w", err)
	}
	return fromPasswordRequestRow(row), nil
}

func (r *SQLiteRepository) CreatePasswordRequest(ctx context.Context, u core.User, at time.Time) (core.PasswordResetRequest, error) {
	row, err := r.queries.CreatePasswordRequest(ctx, u.ID, u.Username, at.UTC().Format(timestampLayout))
	if err != nil {
		return core.PasswordResetRequest{}, fmt.Errorf("create password request: %w", err)
	}
	slog.InfoContext(ctx, "Password reset requested", "id", row.ID, "username", row.Username)
	return fromPasswordRequestRow(row), nil
}

func (r *SQLiteRepository) GetPasswordRequest(ctx context.Context, id int64) (core.PasswordResetRequest, error) {
	row, err := r.queries.GetPasswordRequest(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.PasswordResetRequest{}, fmt.Errorf("password request %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.PasswordResetRequest{}, fmt.Errorf("get password request: %w", err)
	}
	return fromPasswordRequestRow(row), nil
}

func (r *SQLiteRepository) ListPendingRequests(ctx context.Context) ([]core.PasswordResetRequest, error) {
	rows, err := r.queries.ListPendingRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	out := make([]core.PasswordResetRequest, len(rows))
	for i, row := range rows {
		out[i] = fromPasswordRequestRow(row)
	}
	return out, nil
}

func (r *SQLiteRepository) ResolvePasswordRequest(ctx context.Context, id int64) error {
	n, err := r.queries.ResolvePasswordRequest(ctx, id)
	if err != nil {
		return fmt.Errorf("resolve password request: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("password request %d: %w", id, core.ErrNotFound)
	}
	return nil
}
