package integration

import (
	"sync"
	"testing"
	"time"

	"github.com/iho/goppob/internal/adapter/repository/postgres"
	"github.com/iho/goppob/internal/usecase"
	"github.com/iho/goppob/tests/testutil"
)

// stack is the ledger wired against a real database.
type stack struct {
	db      *testutil.TestDB
	ledger  *usecase.LedgerUseCase
	outbox  *postgres.OutboxRepository
	ledgerR *postgres.LedgerRepository
}

func newStack(t *testing.T, opts ...usecase.LedgerOption) *stack {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db := testutil.NewTestDB(t)
	t.Cleanup(db.Cleanup)

	pool := db.Pool
	outboxRepo := postgres.NewOutboxRepository(pool)

	ledger := usecase.NewLedgerUseCase(
		postgres.NewTxManager(pool),
		postgres.NewRetrier(postgres.WithMaxRetries(10)),
		postgres.NewAccountRepository(pool),
		postgres.NewServiceRepository(pool),
		postgres.NewHistoryRepository(pool),
		outboxRepo,
		postgres.NewULIDGenerator(),
		opts...,
	)

	return &stack{
		db:      db,
		ledger:  ledger,
		outbox:  outboxRepo,
		ledgerR: postgres.NewLedgerRepository(pool),
	}
}

// steppingClock returns strictly increasing instants, one millisecond apart.
func steppingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := next
		next = next.Add(time.Millisecond)
		return now
	}
}

func intPtr(v int) *int { return &v }
