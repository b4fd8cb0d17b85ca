package storage

import (
	"context"
	"database/sql"
)

const transactionColumns = `id, user_id, date, type, category, subcategory, amount, description, account,
    is_credit_card_payment, is_reinvestment, is_self, is_repaid, paid_amount, linked_id,
    loan_interest_rate, loan_tenure_months, loan_emi, loan_start_date, loan_end_date, loan_lender_bank,
    created_at`

func scanTransaction(row interface{ Scan(...any) error }) (Transaction, error) {
	var i Transaction
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Date,
		&i.Type,
		&i.Category,
		&i.Subcategory,
		&i.Amount,
		&i.Description,
		&i.Account,
		&i.IsCreditCardPayment,
		&i.IsReinvestment,
		&i.IsSelf,
		&i.IsRepaid,
		&i.PaidAmount,
		&i.LinkedID,
		&i.LoanInterestRate,
		&i.LoanTenureMonths,
		&i.LoanEmi,
		&i.LoanStartDate,
		&i.LoanEndDate,
		&i.LoanLenderBank,
		&i.CreatedAt,
	)
	return i, err
}

func scanTransactions(rows *sql.Rows) ([]Transaction, error) {
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		i, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createTransaction = `-- name: CreateTransaction :one
INSERT INTO transactions (
    user_id, date, type, category, subcategory, amount, description, account,
    is_credit_card_payment, is_reinvestment, is_self, is_repaid, paid_amount, linked_id,
    loan_interest_rate, loan_tenure_months, loan_emi, loan_start_date, loan_end_date, loan_lender_bank
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + transactionColumns

func (q *Queries) CreateTransaction(ctx context.Context, arg Transaction) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, createTransaction,
		arg.UserID,
		arg.Date,
		arg.Type,
		arg.Category,
		arg.Subcategory,
		arg.Amount,
		arg.Description,
		arg.Account,
		arg.IsCreditCardPayment,
		arg.IsReinvestment,
		arg.IsSelf,
		arg.IsRepaid,
		arg.PaidAmount,
		arg.LinkedID,
		arg.LoanInterestRate,
		arg.LoanTenureMonths,
		arg.LoanEmi,
		arg.LoanStartDate,
		arg.LoanEndDate,
		arg.LoanLenderBank,
	)
	return scanTransaction(row)
}

const getTransaction = `-- name: GetTransaction :one
SELECT ` + transactionColumns + `
FROM transactions
WHERE id = ? AND user_id = ?`

func (q *Queries) GetTransaction(ctx context.Context, id, userID int64) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, getTransaction, id, userID)
	return scanTransaction(row)
}

const listTransactions = `-- name: ListTransactions :many
SELECT ` + transactionColumns + `
FROM transactions
WHERE user_id = ?
  AND (? = '' OR date >= ?)
  AND (? = '' OR date <= ?)
  AND (? = '' OR type = ?)
  AND (? = '' OR category = ?)
  AND (? = 0 OR linked_id = ?)
  AND (? = 0 OR is_self = 1)
  AND (? = 0 OR is_repaid = 0)
ORDER BY date DESC, id DESC`

type ListTransactionsParams struct {
	UserID   int64
	Start    string
	End      string
	Type     string
	Category string
	LinkedID int64
	OnlySelf bool
	OnlyOpen bool
}

func (q *Queries) ListTransactions(ctx context.Context, arg ListTransactionsParams) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions,
		arg.UserID,
		arg.Start, arg.Start,
		arg.End, arg.End,
		arg.Type, arg.Type,
		arg.Category, arg.Category,
		arg.LinkedID, arg.LinkedID,
		arg.OnlySelf,
		arg.OnlyOpen,
	)
	if err != nil {
		return nil, err
	}
	return scanTransactions(rows)
}

const latestRepayment = `-- name: LatestRepayment :one
SELECT ` + transactionColumns + `
FROM transactions
WHERE user_id = ? AND linked_id = ? AND type = 'Expense'
ORDER BY date DESC, id DESC
LIMIT 1`

func (q *Queries) LatestRepayment(ctx context.Context, userID, debtID int64) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, latestRepayment, userID, debtID)
	return scanTransaction(row)
}

const updateTransaction = `-- name: UpdateTransaction :execrows
UPDATE transactions
SET date = ?, type = ?, category = ?, subcategory = ?, amount = ?, description = ?, account = ?,
    is_credit_card_payment = ?, is_reinvestment = ?, is_self = ?, is_repaid = ?, paid_amount = ?,
    loan_interest_rate = ?, loan_tenure_months = ?, loan_emi = ?, loan_start_date = ?, loan_end_date = ?,
    loan_lender_bank = ?
WHERE id = ? AND user_id = ?`

func (q *Queries) UpdateTransaction(ctx context.Context, arg Transaction) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateTransaction,
		arg.Date,
		arg.Type,
		arg.Category,
		arg.Subcategory,
		arg.Amount,
		arg.Description,
		arg.Account,
		arg.IsCreditCardPayment,
		arg.IsReinvestment,
		arg.IsSelf,
		arg.IsRepaid,
		arg.PaidAmount,
		arg.LoanInterestRate,
		arg.LoanTenureMonths,
		arg.LoanEmi,
		arg.LoanStartDate,
		arg.LoanEndDate,
		arg.LoanLenderBank,
		arg.ID,
		arg.UserID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const setRepayment = `-- name: SetRepayment :execrows
UPDATE transactions
SET paid_amount = ?, is_repaid = ?
WHERE id = ? AND user_id = ?`

func (q *Queries) SetRepayment(ctx context.Context, paid float64, repaid bool, id, userID int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, setRepayment, paid, repaid, id, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const setRepaid = `-- name: SetRepaid :execrows
UPDATE transactions SET is_repaid = ? WHERE id = ? AND user_id = ?`

func (q *Queries) SetRepaid(ctx context.Context, repaid bool, id, userID int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, setRepaid, repaid, id, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteTransaction = `-- name: DeleteTransaction :execrows
DELETE FROM transactions WHERE id = ? AND user_id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, id, userID int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTransaction, id, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteTransactionsByLink = `-- name: DeleteTransactionsByLink :execrows
DELETE FROM transactions WHERE linked_id = ? AND user_id = ?`

func (q *Queries) DeleteTransactionsByLink(ctx context.Context, linkedID, userID int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTransactionsByLink, linkedID, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const sumByTypeAndCard = `-- name: SumByTypeAndCard :many
SELECT type, is_credit_card_payment, CAST(COALESCE(SUM(amount), 0) AS REAL) AS total
FROM transactions
WHERE user_id = ?
GROUP BY type, is_credit_card_payment`

type SumByTypeAndCardRow struct {
	Type                string
	IsCreditCardPayment bool
	Total               float64
}

func (q *Queries) SumByTypeAndCard(ctx context.Context, userID int64) ([]SumByTypeAndCardRow, error) {
	rows, err := q.db.QueryContext(ctx, sumByTypeAndCard, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SumByTypeAndCardRow
	for rows.Next() {
		var i SumByTypeAndCardRow
		if err := rows.Scan(&i.Type, &i.IsCreditCardPayment, &i.Total); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
