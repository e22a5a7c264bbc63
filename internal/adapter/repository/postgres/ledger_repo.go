package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/goppob/internal/infrastructure/postgres/generated"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	pool pgxPool
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return newLedgerRepository(pool)
}

func newLedgerRepository(pool pgxPool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// FindBalanceMismatches reconciles every balance with its history inside one
// read-only snapshot.
func (r *LedgerRepository) FindBalanceMismatches(ctx context.Context) (int64, []string, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return 0, nil, err
	}
	defer tx.Rollback(ctx)

	q := generated.New(tx)

	checked, err := q.CountAccounts(ctx)
	if err != nil {
		return 0, nil, err
	}

	rows, err := q.FindBalanceMismatches(ctx)
	if err != nil {
		return 0, nil, err
	}

	mismatched := make([]string, 0, len(rows))
	for _, row := range rows {
		mismatched = append(mismatched, row.ID)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, nil, err
	}

	return checked, mismatched, nil
}
