package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/goppob/internal/domain"
	"github.com/iho/goppob/internal/infrastructure/eventpublisher"
	"github.com/iho/goppob/internal/usecase"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*domain.OutboxEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func TestLedgerOperationsWriteOutboxEvents(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	s.db.TruncateAll(ctx)

	user := s.db.CreateTestUser(ctx, "events@example.com", 0)
	_, err := s.ledger.TopUp(ctx, user.ID, 100000)
	require.NoError(t, err)
	payment, err := s.ledger.Pay(ctx, user.ID, "PLN")
	require.NoError(t, err)

	events, err := s.outbox.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)

	byType := make(map[string]*domain.OutboxEvent)
	for _, e := range events {
		assert.Equal(t, user.ID, e.AggregateID)
		assert.Equal(t, domain.AggregateTypeAccount, e.AggregateType)
		byType[e.EventType] = e
	}

	require.Contains(t, byType, domain.EventTypeTopUp)
	require.Contains(t, byType, domain.EventTypePayment)
	assert.Equal(t, payment.InvoiceNumber, byType[domain.EventTypePayment].Payload["invoice_number"])
	assert.Equal(t, "PLN", byType[domain.EventTypePayment].Payload["service_code"])
	assert.EqualValues(t, 90000, byType[domain.EventTypePayment].Payload["balance"])
}

func TestFailedPaymentWritesNoEvent(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	s.db.TruncateAll(ctx)

	user := s.db.CreateTestUser(ctx, "noevent@example.com", 0)
	_, err := s.ledger.Pay(ctx, user.ID, "PLN")
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	events, err := s.outbox.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEventPublisherDrainsOutbox(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	s.db.TruncateAll(ctx)

	user := s.db.CreateTestUser(ctx, "drain@example.com", 0)
	for range 3 {
		_, err := s.ledger.TopUp(ctx, user.ID, 1000)
		require.NoError(t, err)
	}

	publisher := &recordingPublisher{}
	logger := zerolog.Nop()
	worker := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: s.outbox,
		Publisher:  publisher,
		Logger:     &logger,
		BatchSize:  10,
		Interval:   20 * time.Millisecond,
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() { _ = worker.Start(runCtx) }()

	require.Eventually(t, func() bool { return publisher.count() == 3 }, 5*time.Second, 20*time.Millisecond)
	require.Eventually(t, func() bool {
		events, err := s.outbox.GetUnpublished(ctx, 10)
		return err == nil && len(events) == 0
	}, 5*time.Second, 20*time.Millisecond)
}

func TestConsistencyDetectsTamperedBalance(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	s.db.TruncateAll(ctx)

	honest := s.db.CreateTestUser(ctx, "honest@example.com", 0)
	tampered := s.db.CreateTestUser(ctx, "tampered@example.com", 0)
	for _, u := range []*domain.User{honest, tampered} {
		_, err := s.ledger.TopUp(ctx, u.ID, 50000)
		require.NoError(t, err)
	}
	_, err := s.ledger.Pay(ctx, honest.ID, "PLN")
	require.NoError(t, err)

	checker := usecase.NewConsistencyUseCase(s.ledgerR, nil)

	report, err := checker.CheckConsistency(ctx)
	require.NoError(t, err)
	assert.True(t, report.Consistent())
	assert.Equal(t, int64(2), report.AccountsChecked)

	_, err = s.db.Pool.Exec(ctx, `UPDATE users SET balance = balance + 1 WHERE id = $1`, tampered.ID)
	require.NoError(t, err)

	report, err = checker.CheckConsistency(ctx)
	require.ErrorIs(t, err, usecase.ErrInconsistentLedger)
	require.NotNil(t, report)
	assert.Equal(t, []string{tampered.ID}, report.MismatchedAccounts)
}
