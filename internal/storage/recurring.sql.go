package storage

import "context"

const createRecurringItem = `-- name: CreateRecurringItem :one
INSERT INTO recurring_items (user_id, name, type, category, amount, is_active)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id`

func (q *Queries) CreateRecurringItem(ctx context.Context, arg RecurringItem) (int64, error) {
	row := q.db.QueryRowContext(ctx, createRecurringItem,
		arg.UserID, arg.Name, arg.Type, arg.Category, arg.Amount, arg.IsActive)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const listRecurringItems = `-- name: ListRecurringItems :many
SELECT id, user_id, name, type, category, amount, is_active, created_at
FROM recurring_items
WHERE user_id = ? AND (? = 0 OR is_active = 1)
ORDER BY type, amount DESC`

func (q *Queries) ListRecurringItems(ctx context.Context, userID int64, onlyActive bool) ([]RecurringItem, error) {
	rows, err := q.db.QueryContext(ctx, listRecurringItems, userID, onlyActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RecurringItem
	for rows.Next() {
		var i RecurringItem
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.Name,
			&i.Type,
			&i.Category,
			&i.Amount,
			&i.IsActive,
			&i.CreatedAt,
		); err != nil {
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

const updateRecurringItem = `-- name: UpdateRecurringItem :execrows
UPDATE recurring_items
SET name = ?, type = ?, category = ?, amount = ?, is_active = ?
WHERE id = ? AND user_id = ?`

func (q *Queries) UpdateRecurringItem(ctx context.Context, arg RecurringItem) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateRecurringItem,
		arg.Name, arg.Type, arg.Category, arg.Amount, arg.IsActive, arg.ID, arg.UserID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteRecurringItem = `-- name: DeleteRecurringItem :execrows
DELETE FROM recurring_items WHERE id = ? AND user_id = ?`

func (q *Queries) DeleteRecurringItem(ctx context.Context, id, userID int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteRecurringItem, id, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
