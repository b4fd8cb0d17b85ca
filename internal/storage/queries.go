package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{
		db: tx,
	}
}

// Row models mirror the tables one to one.

type Transaction struct {
	ID                  int64
	UserID              int64
	Date                string
	Type                string
	Category            string
	Subcategory         string
	Amount              float64
	Description         string
	Account             string
	IsCreditCardPayment bool
	IsReinvestment      bool
	IsSelf              bool
	IsRepaid            bool
	PaidAmount          float64
	LinkedID            sql.NullInt64
	LoanInterestRate    sql.NullFloat64
	LoanTenureMonths    sql.NullInt64
	LoanEmi             sql.NullFloat64
	LoanStartDate       sql.NullString
	LoanEndDate         sql.NullString
	LoanLenderBank      sql.NullString
	CreatedAt           string
}

type Category struct {
	ID       int64
	UserID   int64
	Name     string
	Type     string
	IsActive bool
	IsLoan   bool
}

type RecurringItem struct {
	ID        int64
	UserID    int64
	Name      string
	Type      string
	Category  string
	Amount    float64
	IsActive  bool
	CreatedAt string
}

type User struct {
	ID           int64
	Username     string
	PasswordHash string
	IsAdmin      bool
	Currency     string
	CreatedAt    string
}

type PasswordRequest struct {
	ID          int64
	UserID      int64
	Username    string
	Status      string
	RequestDate string
}
