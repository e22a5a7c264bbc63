package usecase

import (
	"context"
	"time"

	"github.com/iho/goppob/internal/domain"
)

// AccountRepository defines data access for account balances.
type AccountRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	// Credit adds amount to the balance and returns the new balance.
	Credit(ctx context.Context, tx Transaction, id string, amount int64, updatedAt time.Time) (int64, error)
	// Debit subtracts amount only when the balance covers it and returns the
	// new balance. It fails with domain.ErrInsufficientBalance otherwise.
	Debit(ctx context.Context, tx Transaction, id string, amount int64, updatedAt time.Time) (int64, error)
}

// UserRepository defines data access for members.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id, firstName, lastName string, updatedAt time.Time) (*domain.User, error)
}

// ServiceRepository defines data access for the payable service catalog.
type ServiceRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.Service, error)
	List(ctx context.Context) ([]*domain.Service, error)
}

// BannerRepository defines data access for banners.
type BannerRepository interface {
	List(ctx context.Context) ([]*domain.Banner, error)
}

// HistoryRepository defines data access for transaction history.
type HistoryRepository interface {
	// LockInvoiceDay serializes invoice allocation for the day until tx ends.
	LockInvoiceDay(ctx context.Context, tx Transaction, day time.Time) error
	// LastInvoiceNumber returns the highest invoice created in [from, to], or "".
	LastInvoiceNumber(ctx context.Context, tx Transaction, from, to time.Time) (string, error)
	Create(ctx context.Context, tx Transaction, entry *domain.HistoryEntry) error
	ListByUser(ctx context.Context, userID string, offset int, limit *int) ([]*domain.HistoryEntry, error)
}

// LedgerRepository defines data access for ledger-wide operations.
type LedgerRepository interface {
	// FindBalanceMismatches compares every balance with its history and returns
	// the number of accounts checked and the IDs that do not reconcile.
	FindBalanceMismatches(ctx context.Context) (checked int64, mismatched []string, err error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier replays an operation while it fails with a transient error.
type Retrier interface {
	Retry(ctx context.Context, op func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// TokenIssuer issues access tokens for authenticated members.
type TokenIssuer interface {
	Generate(user *domain.User) (string, error)
}

// LedgerMetrics records business outcomes of ledger operations.
type LedgerMetrics interface {
	TopUpSucceeded(amount int64)
	PaymentSucceeded(serviceCode string, amount int64)
	OperationFailed(operation string, err error)
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release forgets key so the request can be retried.
	Release(ctx context.Context, key string) error
}
