package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/iho/goppob/internal/domain"
)

// LedgerUseCase owns balance mutation and the transaction history.
// Every top-up and payment runs as one atomic unit: balance change, history
// row with a fresh invoice number, and outbox event commit together or not at all.
type LedgerUseCase struct {
	txManager   TransactionManager
	retrier     Retrier
	accountRepo AccountRepository
	serviceRepo ServiceRepository
	historyRepo HistoryRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator

	metrics   LedgerMetrics
	now       func() time.Time
	location  *time.Location
	txTimeout time.Duration
}

// LedgerOption configures a LedgerUseCase.
type LedgerOption func(*LedgerUseCase)

// WithClock overrides the time source used for timestamps and invoice days.
func WithClock(now func() time.Time) LedgerOption {
	return func(uc *LedgerUseCase) {
		uc.now = now
	}
}

// WithInvoiceLocation sets the time zone that defines an invoice day.
func WithInvoiceLocation(loc *time.Location) LedgerOption {
	return func(uc *LedgerUseCase) {
		if loc != nil {
			uc.location = loc
		}
	}
}

// WithLedgerMetrics reports operation outcomes to m.
func WithLedgerMetrics(m LedgerMetrics) LedgerOption {
	return func(uc *LedgerUseCase) {
		if m != nil {
			uc.metrics = m
		}
	}
}

// WithTransactionTimeout bounds each transaction attempt.
func WithTransactionTimeout(d time.Duration) LedgerOption {
	return func(uc *LedgerUseCase) {
		if d > 0 {
			uc.txTimeout = d
		}
	}
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TransactionManager,
	retrier Retrier,
	accountRepo AccountRepository,
	serviceRepo ServiceRepository,
	historyRepo HistoryRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	opts ...LedgerOption,
) *LedgerUseCase {
	uc := &LedgerUseCase{
		txManager:   txManager,
		retrier:     retrier,
		accountRepo: accountRepo,
		serviceRepo: serviceRepo,
		historyRepo: historyRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		metrics:     noopLedgerMetrics{},
		now:         time.Now,
		location:    time.UTC,
		txTimeout:   DefaultTransactionTimeout,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// PaymentResult describes a committed payment.
type PaymentResult struct {
	InvoiceNumber   string
	ServiceCode     string
	ServiceName     string
	TransactionType domain.TransactionType
	TotalAmount     int64
	Balance         int64
	CreatedAt       time.Time
}

// HistoryInput selects a page of a member's history.
// A nil Limit returns every row after Offset.
type HistoryInput struct {
	UserID string
	Offset int
	Limit  *int
}

// Balance returns the current balance of the account.
func (uc *LedgerUseCase) Balance(ctx context.Context, userID string) (int64, error) {
	account, err := uc.accountRepo.GetByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("account %s: %w", userID, err)
	}
	return account.Balance, nil
}

// TopUp credits amount to the account and records a TOPUP history entry.
// It returns the balance after the credit.
func (uc *LedgerUseCase) TopUp(ctx context.Context, userID string, amount int64) (int64, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		uc.metrics.OperationFailed(OperationTopUp, err)
		return 0, err
	}

	var balance int64
	err := uc.retrier.Retry(ctx, func() error {
		var err error
		balance, err = uc.topUp(ctx, userID, amount)
		return err
	})
	if err != nil {
		uc.metrics.OperationFailed(OperationTopUp, err)
		return 0, fmt.Errorf("top up account %s: %w", userID, err)
	}

	uc.metrics.TopUpSucceeded(amount)
	return balance, nil
}

func (uc *LedgerUseCase) topUp(ctx context.Context, userID string, amount int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.txTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	now := uc.now().UTC()

	balance, err := uc.accountRepo.Credit(ctx, tx, userID, amount, now)
	if err != nil {
		return 0, err
	}

	entry := &domain.HistoryEntry{
		UserID:          userID,
		TransactionType: domain.TransactionTypeTopUp,
		Description:     domain.TopUpDescription,
		TotalAmount:     amount,
		CreatedAt:       now,
	}
	if err := uc.appendHistory(ctx, tx, entry); err != nil {
		return 0, err
	}

	event := domain.TopUpEvent{
		InvoiceNumber: entry.InvoiceNumber,
		UserID:        userID,
		Amount:        amount,
		Balance:       balance,
		CreatedAt:     now.Format(time.RFC3339Nano),
	}
	if err := uc.recordEvent(ctx, tx, userID, domain.EventTypeTopUp, event, now); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return balance, nil
}

// Pay debits the tariff of the service from the account and records a
// PAYMENT history entry. The balance check and the debit are one statement,
// so concurrent payments can never drive the balance below zero.
func (uc *LedgerUseCase) Pay(ctx context.Context, userID, serviceCode string) (*PaymentResult, error) {
	service, err := uc.serviceRepo.GetByCode(ctx, serviceCode)
	if err != nil {
		uc.metrics.OperationFailed(OperationPayment, err)
		return nil, fmt.Errorf("service %q: %w", serviceCode, err)
	}
	if service.Tariff <= 0 {
		uc.metrics.OperationFailed(OperationPayment, domain.ErrInvalidAmount)
		return nil, fmt.Errorf("service %q tariff %d: %w", serviceCode, service.Tariff, domain.ErrInvalidAmount)
	}

	var result *PaymentResult
	err = uc.retrier.Retry(ctx, func() error {
		var err error
		result, err = uc.pay(ctx, userID, service)
		return err
	})
	if err != nil {
		uc.metrics.OperationFailed(OperationPayment, err)
		return nil, fmt.Errorf("pay %q from account %s: %w", serviceCode, userID, err)
	}

	uc.metrics.PaymentSucceeded(service.Code, service.Tariff)
	return result, nil
}

func (uc *LedgerUseCase) pay(ctx context.Context, userID string, service *domain.Service) (*PaymentResult, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.txTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	now := uc.now().UTC()

	balance, err := uc.accountRepo.Debit(ctx, tx, userID, service.Tariff, now)
	if err != nil {
		return nil, err
	}

	entry := &domain.HistoryEntry{
		UserID:          userID,
		TransactionType: domain.TransactionTypePayment,
		Description:     service.Name,
		TotalAmount:     service.Tariff,
		CreatedAt:       now,
	}
	if err := uc.appendHistory(ctx, tx, entry); err != nil {
		return nil, err
	}

	event := domain.PaymentEvent{
		InvoiceNumber: entry.InvoiceNumber,
		UserID:        userID,
		ServiceCode:   service.Code,
		ServiceName:   service.Name,
		Amount:        service.Tariff,
		Balance:       balance,
		CreatedAt:     now.Format(time.RFC3339Nano),
	}
	if err := uc.recordEvent(ctx, tx, userID, domain.EventTypePayment, event, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &PaymentResult{
		InvoiceNumber:   entry.InvoiceNumber,
		ServiceCode:     service.Code,
		ServiceName:     service.Name,
		TransactionType: domain.TransactionTypePayment,
		TotalAmount:     service.Tariff,
		Balance:         balance,
		CreatedAt:       now,
	}, nil
}

// History returns the member's entries, newest first.
func (uc *LedgerUseCase) History(ctx context.Context, input HistoryInput) ([]*domain.HistoryEntry, error) {
	offset, limit := domain.NormalizePagination(input.Offset, input.Limit)
	return uc.historyRepo.ListByUser(ctx, input.UserID, offset, limit)
}

// appendHistory allocates the next invoice number of the entry's day and
// inserts the entry. The day lock is held until tx ends, after the account
// row lock taken by the balance update.
func (uc *LedgerUseCase) appendHistory(ctx context.Context, tx Transaction, entry *domain.HistoryEntry) error {
	day, end := domain.InvoiceDay(entry.CreatedAt, uc.location)

	if err := uc.historyRepo.LockInvoiceDay(ctx, tx, day); err != nil {
		return err
	}

	last, err := uc.historyRepo.LastInvoiceNumber(ctx, tx, day, end)
	if err != nil {
		return err
	}

	invoice, err := domain.NextInvoiceNumber(day, last)
	if err != nil {
		return err
	}
	entry.InvoiceNumber = invoice

	if err := entry.Validate(); err != nil {
		return err
	}
	return uc.historyRepo.Create(ctx, tx, entry)
}

func (uc *LedgerUseCase) recordEvent(ctx context.Context, tx Transaction, aggregateID, eventType string, payload any, now time.Time) error {
	return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   aggregateID,
		AggregateType: domain.AggregateTypeAccount,
		EventType:     eventType,
		Payload:       domain.EventPayload(payload),
		CreatedAt:     now,
	})
}

type noopLedgerMetrics struct{}

func (noopLedgerMetrics) TopUpSucceeded(int64)           {}
func (noopLedgerMetrics) PaymentSucceeded(string, int64) {}
func (noopLedgerMetrics) OperationFailed(string, error)  {}
