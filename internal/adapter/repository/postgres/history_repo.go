package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/goppob/internal/domain"
	"github.com/iho/goppob/internal/infrastructure/postgres/generated"
	"github.com/iho/goppob/internal/usecase"
)

// invoiceLockNamespace is the first key of the per-day advisory lock.
const invoiceLockNamespace int32 = 0x50504f42 // "PPOB"

// HistoryRepository implements usecase.HistoryRepository.
type HistoryRepository struct {
	queries *generated.Queries
}

// NewHistoryRepository creates a new HistoryRepository.
func NewHistoryRepository(pool *pgxpool.Pool) *HistoryRepository {
	return newHistoryRepository(pool)
}

func newHistoryRepository(db generated.DBTX) *HistoryRepository {
	return &HistoryRepository{queries: generated.New(db)}
}

// LockInvoiceDay takes a transaction-scoped advisory lock for the day.
func (r *HistoryRepository) LockInvoiceDay(ctx context.Context, tx usecase.Transaction, day time.Time) error {
	return queriesFor(tx).LockInvoiceDay(ctx, generated.LockInvoiceDayParams{
		Namespace: invoiceLockNamespace,
		DayKey:    domain.InvoiceDayKey(day),
	})
}

// LastInvoiceNumber returns the highest invoice created in [from, to], or "".
func (r *HistoryRepository) LastInvoiceNumber(ctx context.Context, tx usecase.Transaction, from, to time.Time) (string, error) {
	invoice, err := queriesFor(tx).GetLastInvoiceNumber(ctx, generated.GetLastInvoiceNumberParams{
		FromTime: timeToPgTimestamptz(from),
		ToTime:   timeToPgTimestamptz(to),
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}

	return invoice, err
}

// Create inserts a history entry within a transaction.
func (r *HistoryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.HistoryEntry) error {
	err := queriesFor(tx).CreateHistoryEntry(ctx, generated.CreateHistoryEntryParams{
		InvoiceNumber:   entry.InvoiceNumber,
		UserID:          entry.UserID,
		TransactionType: string(entry.TransactionType),
		Description:     entry.Description,
		TotalAmount:     entry.TotalAmount,
		CreatedAt:       timeToPgTimestamptz(entry.CreatedAt),
	})
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return fmt.Errorf("%s: %w", entry.InvoiceNumber, domain.ErrInvoiceConflict)
	case isForeignKeyViolation(err):
		return domain.ErrAccountNotFound
	default:
		return err
	}
}

// ListByUser returns the user's entries newest first. Ties on created_at are
// broken by insertion order. A nil limit returns every row after offset.
func (r *HistoryRepository) ListByUser(ctx context.Context, userID string, offset int, limit *int) ([]*domain.HistoryEntry, error) {
	params := generated.ListHistoryByUserParams{
		UserID: userID,
		Offset: int64(offset),
	}
	if limit != nil {
		params.Limit = pgtype.Int8{Int64: int64(*limit), Valid: true}
	}

	rows, err := r.queries.ListHistoryByUser(ctx, params)
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.HistoryEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, &domain.HistoryEntry{
			InvoiceNumber:   row.InvoiceNumber,
			UserID:          row.UserID,
			TransactionType: domain.TransactionType(row.TransactionType),
			Description:     row.Description,
			TotalAmount:     row.TotalAmount,
			CreatedAt:       row.CreatedAt.Time,
		})
	}

	return entries, nil
}
