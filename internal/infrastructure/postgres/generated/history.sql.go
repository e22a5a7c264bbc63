package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createHistoryEntry = `-- name: CreateHistoryEntry :exec
INSERT INTO history (invoice_number, user_id, transaction_type, description, total_amount, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
`

type CreateHistoryEntryParams struct {
	InvoiceNumber   string             `json:"invoice_number"`
	UserID          string             `json:"user_id"`
	TransactionType string             `json:"transaction_type"`
	Description     string             `json:"description"`
	TotalAmount     int64              `json:"total_amount"`
	CreatedAt       pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateHistoryEntry(ctx context.Context, arg CreateHistoryEntryParams) error {
	_, err := q.db.Exec(ctx, createHistoryEntry,
		arg.InvoiceNumber,
		arg.UserID,
		arg.TransactionType,
		arg.Description,
		arg.TotalAmount,
		arg.CreatedAt,
	)
	return err
}

const getLastInvoiceNumber = `-- name: GetLastInvoiceNumber :one
SELECT invoice_number FROM history
WHERE created_at >= $1 AND created_at <= $2
ORDER BY length(invoice_number) DESC, invoice_number DESC
LIMIT 1
`

type GetLastInvoiceNumberParams struct {
	FromTime pgtype.Timestamptz `json:"from_time"`
	ToTime   pgtype.Timestamptz `json:"to_time"`
}

func (q *Queries) GetLastInvoiceNumber(ctx context.Context, arg GetLastInvoiceNumberParams) (string, error) {
	row := q.db.QueryRow(ctx, getLastInvoiceNumber, arg.FromTime, arg.ToTime)
	var invoice_number string
	err := row.Scan(&invoice_number)
	return invoice_number, err
}

const listHistoryByUser = `-- name: ListHistoryByUser :many
SELECT id, invoice_number, user_id, transaction_type, description, total_amount, created_at FROM history
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
OFFSET $2
LIMIT $3
`

type ListHistoryByUserParams struct {
	UserID string      `json:"user_id"`
	Offset int64       `json:"offset"`
	Limit  pgtype.Int8 `json:"limit"`
}

func (q *Queries) ListHistoryByUser(ctx context.Context, arg ListHistoryByUserParams) ([]History, error) {
	rows, err := q.db.Query(ctx, listHistoryByUser, arg.UserID, arg.Offset, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []History{}
	for rows.Next() {
		var i History
		if err := rows.Scan(
			&i.ID,
			&i.InvoiceNumber,
			&i.UserID,
			&i.TransactionType,
			&i.Description,
			&i.TotalAmount,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const lockInvoiceDay = `-- name: LockInvoiceDay :exec
SELECT pg_advisory_xact_lock($1::int4, $2::int4)
`

type LockInvoiceDayParams struct {
	Namespace int32 `json:"namespace"`
	DayKey    int32 `json:"day_key"`
}

func (q *Queries) LockInvoiceDay(ctx context.Context, arg LockInvoiceDayParams) error {
	_, err := q.db.Exec(ctx, lockInvoiceDay, arg.Namespace, arg.DayKey)
	return err
}
