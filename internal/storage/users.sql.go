package storage

import (
	"context"
	"database/sql"
)

const createUser = `-- name: CreateUser :one
INSERT INTO users (username, password_hash, is_admin, currency)
VALUES (?, ?, ?, ?)
RETURNING id, username, password_hash, is_admin, currency, created_at`

func (q *Queries) CreateUser(ctx context.Context, username, hash string, isAdmin bool, currency string) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser, username, hash, isAdmin, currency)
	var i User
	err := row.Scan(&i.ID, &i.Username, &i.PasswordHash, &i.IsAdmin, &i.Currency, &i.CreatedAt)
	return i, err
}

const getUser = `-- name: GetUser :one
SELECT id, username, password_hash, is_admin, currency, created_at
FROM users WHERE id = ?`

func (q *Queries) GetUser(ctx context.Context, id int64) (User, error) {
	row := q.db.QueryRowContext(ctx, getUser, id)
	var i User
	err := row.Scan(&i.ID, &i.Username, &i.PasswordHash, &i.IsAdmin, &i.Currency, &i.CreatedAt)
	return i, err
}

const getUserByUsername = `-- name: GetUserByUsername :one
SELECT id, username, password_hash, is_admin, currency, created_at
FROM users WHERE username = ?`

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByUsername, username)
	var i User
	err := row.Scan(&i.ID, &i.Username, &i.PasswordHash, &i.IsAdmin, &i.Currency, &i.CreatedAt)
	return i, err
}

const listUsers = `-- name: ListUsers :many
SELECT id, username, password_hash, is_admin, currency, created_at
FROM users ORDER BY id`

func (q *Queries) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, listUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []User
	for rows.Next() {
		var i User
		if err := rows.Scan(&i.ID, &i.Username, &i.PasswordHash, &i.IsAdmin, &i.Currency, &i.CreatedAt); err != nil {
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

const updatePasswordHash = `-- name: UpdatePasswordHash :execrows
UPDATE users SET password_hash = ? WHERE id = ?`

func (q *Queries) UpdatePasswordHash(ctx context.Context, hash string, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, updatePasswordHash, hash, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const updateCurrency = `-- name: UpdateCurrency :execrows
UPDATE users SET currency = ? WHERE id = ?`

func (q *Queries) UpdateCurrency(ctx context.Context, currency string, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateCurrency, currency, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Owned rows are removed explicitly so the cascade does not depend on
// the foreign_keys pragma being on.
const (
	deleteUserTransactions     = `DELETE FROM transactions WHERE user_id = ?`
	deleteUserCategories       = `DELETE FROM categories WHERE user_id = ?`
	deleteUserRecurringItems   = `DELETE FROM recurring_items WHERE user_id = ?`
	deleteUserPasswordRequests = `DELETE FROM password_requests WHERE user_id = ?`
	deleteUser                 = `DELETE FROM users WHERE id = ?`
)

// DeleteUser removes the user and everything it owns. Callers run it in
// a transaction.
func (q *Queries) DeleteUser(ctx context.Context, id int64) (int64, error) {
	for _, stmt := range []string{
		deleteUserTransactions,
		deleteUserCategories,
		deleteUserRecurringItems,
		deleteUserPasswordRequests,
	} {
		if _, err := q.db.ExecContext(ctx, stmt, id); err != nil {
			return 0, err
		}
	}
	result, err := q.db.ExecContext(ctx, deleteUser, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const createPasswordRequest = `-- name: CreatePasswordRequest :one
INSERT INTO password_requests (user_id, username, status, request_date)
VALUES (?, ?, 'PENDING', ?)
RETURNING id, user_id, username, status, request_date`

func (q *Queries) CreatePasswordRequest(ctx context.Context, userID int64, username, requestDate string) (PasswordRequest, error) {
	row := q.db.QueryRowContext(ctx, createPasswordRequest, userID, username, requestDate)
	var i PasswordRequest
	err := row.Scan(&i.ID, &i.UserID, &i.Username, &i.Status, &i.RequestDate)
	return i, err
}

const getPendingRequestForUser = `-- name: GetPendingRequestForUser :one
SELECT id, user_id, username, status, request_date
FROM password_requests
WHERE user_id = ? AND status = 'PENDING'
LIMIT 1`

func (q *Queries) GetPendingRequestForUser(ctx context.Context, userID int64) (PasswordRequest, error) {
	row := q.db.QueryRowContext(ctx, getPendingRequestForUser, userID)
	var i PasswordRequest
	err := row.Scan(&i.ID, &i.UserID, &i.Username, &i.Status, &i.RequestDate)
	return i, err
}

const getPasswordRequest = `-- name: GetPasswordRequest :one
SELECT id, user_id, username, status, request_date
FROM password_requests WHERE id = ?`

func (q *Queries) GetPasswordRequest(ctx context.Context, id int64) (PasswordRequest, error) {
	row := q.db.QueryRowContext(ctx, getPasswordRequest, id)
	var i PasswordRequest
	err := row.Scan(&i.ID, &i.UserID, &i.Username, &i.Status, &i.RequestDate)
	return i, err
}

const listPendingRequests = `-- name: ListPendingRequests :many
SELECT id, user_id, username, status, request_date
FROM password_requests
WHERE status = 'PENDING'
ORDER BY request_date DESC, id DESC`

func (q *Queries) ListPendingRequests(ctx context.Context) ([]PasswordRequest, error) {
	rows, err := q.db.QueryContext(ctx, listPendingRequests)
	if err != nil {
		return nil, err
	}
	return scanPasswordRequests(rows)
}

func scanPasswordRequests(rows *sql.Rows) ([]PasswordRequest, error) {
	defer rows.Close()
	var items []PasswordRequest
	for rows.Next() {
		var i PasswordRequest
		if err := rows.Scan(&i.ID, &i.UserID, &i.Username, &i.Status, &i.RequestDate); err != nil {
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

const resolvePasswordRequest = `-- name: ResolvePasswordRequest :execrows
UPDATE password_requests SET status = 'RESOLVED' WHERE id = ?`

func (q *Queries) ResolvePasswordRequest(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, resolvePasswordRequest, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
