package generated

import (
	"context"
)

const countAccounts = `-- name: CountAccounts :one
SELECT COUNT(*) FROM users
`

func (q *Queries) CountAccounts(ctx context.Context) (int64, error) {
	row := q.db.QueryRow(ctx, countAccounts)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const findBalanceMismatches = `-- name: FindBalanceMismatches :many
SELECT u.id, u.balance,
       COALESCE(SUM(CASE h.transaction_type WHEN 'TOPUP' THEN h.total_amount ELSE -h.total_amount END), 0)::BIGINT AS history_balance
FROM users u
LEFT JOIN history h ON h.user_id = u.id
GROUP BY u.id, u.balance
HAVING u.balance <> COALESCE(SUM(CASE h.transaction_type WHEN 'TOPUP' THEN h.total_amount ELSE -h.total_amount END), 0)
ORDER BY u.id
`

type FindBalanceMismatchesRow struct {
	ID             string `json:"id"`
	Balance        int64  `json:"balance"`
	HistoryBalance int64  `json:"history_balance"`
}

func (q *Queries) FindBalanceMismatches(ctx context.Context) ([]FindBalanceMismatchesRow, error) {
	rows, err := q.db.Query(ctx, findBalanceMismatches)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []FindBalanceMismatchesRow{}
	for rows.Next() {
		var i FindBalanceMismatchesRow
		if err := rows.Scan(&i.ID, &i.Balance, &i.HistoryBalance); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
