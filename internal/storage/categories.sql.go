package storage

import (
	"context"
	"database/sql"
)

func scanCategories(rows *sql.Rows) ([]Category, error) {
	defer rows.Close()
	var items []Category
	for rows.Next() {
		var i Category
		if err := rows.Scan(&i.ID, &i.UserID, &i.Name, &i.Type, &i.IsActive, &i.IsLoan); err != nil {
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

const createCategory = `-- name: CreateCategory :one
INSERT INTO categories (user_id, name, type, is_active, is_loan)
VALUES (?, ?, ?, 1, ?)
RETURNING id`

func (q *Queries) CreateCategory(ctx context.Context, userID int64, name, typ string, isLoan bool) (int64, error) {
	row := q.db.QueryRowContext(ctx, createCategory, userID, name, typ, isLoan)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const findCategory = `-- name: FindCategory :one
SELECT id, user_id, name, type, is_active, is_loan
FROM categories
WHERE user_id = ? AND name = ? AND type = ?
ORDER BY is_active DESC, id
LIMIT 1`

// FindCategory prefers the active row when both states exist.
func (q *Queries) FindCategory(ctx context.Context, userID int64, name, typ string) (Category, error) {
	row := q.db.QueryRowContext(ctx, findCategory, userID, name, typ)
	var i Category
	err := row.Scan(&i.ID, &i.UserID, &i.Name, &i.Type, &i.IsActive, &i.IsLoan)
	return i, err
}

const getCategory = `-- name: GetCategory :one
SELECT id, user_id, name, type, is_active, is_loan
FROM categories
WHERE id = ? AND user_id = ?`

func (q *Queries) GetCategory(ctx context.Context, id, userID int64) (Category, error) {
	row := q.db.QueryRowContext(ctx, getCategory, id, userID)
	var i Category
	err := row.Scan(&i.ID, &i.UserID, &i.Name, &i.Type, &i.IsActive, &i.IsLoan)
	return i, err
}

const listCategories = `-- name: ListCategories :many
SELECT id, user_id, name, type, is_active, is_loan
FROM categories
WHERE user_id = ? AND is_active = 1 AND (? = '' OR type = ?)
ORDER BY type, name`

func (q *Queries) ListCategories(ctx context.Context, userID int64, typ string) ([]Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategories, userID, typ, typ)
	if err != nil {
		return nil, err
	}
	return scanCategories(rows)
}

const listLoanCategoryNames = `-- name: ListLoanCategoryNames :many
SELECT DISTINCT name FROM categories
WHERE user_id = ? AND type = 'Debt' AND is_loan = 1`

func (q *Queries) ListLoanCategoryNames(ctx context.Context, userID int64) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listLoanCategoryNames, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		items = append(items, name)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const reactivateCategory = `-- name: ReactivateCategory :execrows
UPDATE categories SET is_active = 1, is_loan = ? WHERE id = ? AND user_id = ?`

func (q *Queries) ReactivateCategory(ctx context.Context, isLoan bool, id, userID int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, reactivateCategory, isLoan, id, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const updateCategory = `-- name: UpdateCategory :execrows
UPDATE categories SET name = ?, type = ?, is_loan = ? WHERE id = ? AND user_id = ?`

func (q *Queries) UpdateCategory(ctx context.Context, arg Category) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateCategory, arg.Name, arg.Type, arg.IsLoan, arg.ID, arg.UserID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deactivateCategory = `-- name: DeactivateCategory :execrows
UPDATE categories SET is_active = 0 WHERE id = ? AND user_id = ?`

func (q *Queries) DeactivateCategory(ctx context.Context, id, userID int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deactivateCategory, id, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
