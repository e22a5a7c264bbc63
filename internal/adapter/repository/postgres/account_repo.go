package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/goppob/internal/domain"
	"github.com/iho/goppob/internal/infrastructure/postgres/generated"
	"github.com/iho/goppob/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository on the users table.
type AccountRepository struct {
	queries *generated.Queries
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return newAccountRepository(pool)
}

func newAccountRepository(db generated.DBTX) *AccountRepository {
	return &AccountRepository{
		queries: generated.New(db),
	}
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	row, err := r.queries.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return &domain.Account{
		ID:        row.ID,
		Balance:   row.Balance,
		UpdatedAt: row.UpdatedAt.Time,
	}, nil
}

// Credit adds amount to the balance and returns the new balance.
func (r *AccountRepository) Credit(ctx context.Context, tx usecase.Transaction, id string, amount int64, updatedAt time.Time) (int64, error) {
	balance, err := queriesFor(tx).CreditBalance(ctx, generated.CreditBalanceParams{
		ID:        id,
		Amount:    amount,
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrAccountNotFound
		}

		return 0, err
	}

	return balance, nil
}

// Debit subtracts amount when the balance covers it. The check and the update
// are one statement, so the row lock it takes makes concurrent debits queue
// and re-evaluate against the committed balance.
func (r *AccountRepository) Debit(ctx context.Context, tx usecase.Transaction, id string, amount int64, updatedAt time.Time) (int64, error) {
	queries := queriesFor(tx)

	balance, err := queries.DebitBalance(ctx, generated.DebitBalanceParams{
		ID:        id,
		Amount:    amount,
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	exists, err := queries.AccountExists(ctx, id)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, domain.ErrAccountNotFound
	}

	return 0, domain.ErrInsufficientBalance
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}
