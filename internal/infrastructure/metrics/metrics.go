package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/goppob/internal/domain"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	TopUps         prometheus.Counter
	TopUpAmount    prometheus.Histogram
	Payments       *prometheus.CounterVec
	PaymentAmount  prometheus.Histogram
	LedgerErrors   *prometheus.CounterVec
	LedgerRetries  *prometheus.CounterVec
	InvoicesIssued prometheus.Counter
	LedgerMismatch prometheus.Gauge

	// Idempotency metrics
	IdempotencyHits *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits prometheus.Counter

	// Outbox metrics
	EventsPublished *prometheus.CounterVec
	PublishErrors   *prometheus.CounterVec
}

// New creates all Prometheus metrics and registers them with reg.
// A nil reg registers with the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		// Ledger metrics
		TopUps: factory.NewCounter(prometheus.CounterOpts{
			Name: "goppob_topups_total",
			Help: "Total number of committed top-ups",
		}),
		TopUpAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "goppob_topup_amount",
			Help:    "Top-up amounts",
			Buckets: []float64{10000, 50000, 100000, 500000, 1000000, 10000000},
		}),
		Payments: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goppob_payments_total",
				Help: "Total number of committed payments by service",
			},
			[]string{"service_code"},
		),
		PaymentAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "goppob_payment_amount",
			Help:    "Payment amounts",
			Buckets: []float64{10000, 25000, 50000, 100000, 250000, 1000000},
		}),
		LedgerErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goppob_ledger_errors_total",
				Help: "Total failed ledger operations by operation and reason",
			},
			[]string{"operation", "reason"},
		),
		LedgerRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goppob_ledger_retries_total",
				Help: "Total transaction retries by reason",
			},
			[]string{"reason"},
		),
		InvoicesIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "goppob_invoices_issued_total",
			Help: "Total invoice numbers issued",
		}),
		LedgerMismatch: factory.NewGauge(prometheus.GaugeOpts{
			Name: "goppob_ledger_mismatched_accounts",
			Help: "Accounts whose balance disagreed with their history at the last check",
		}),

		IdempotencyHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goppob_idempotency_hits_total",
				Help: "Requests answered from the idempotency store by outcome",
			},
			[]string{"outcome"},
		),

		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "goppob_rate_limit_hits_total",
			Help: "Total rate limit hits",
		}),

		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goppob_events_published_total",
				Help: "Total outbox events published by type",
			},
			[]string{"event_type"},
		),
		PublishErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goppob_event_publish_errors_total",
				Help: "Total outbox publish failures by type",
			},
			[]string{"event_type"},
		),
	}
}

// TopUpSucceeded records a committed top-up.
func (m *Metrics) TopUpSucceeded(amount int64) {
	m.TopUps.Inc()
	m.TopUpAmount.Observe(float64(amount))
	m.InvoicesIssued.Inc()
}

// PaymentSucceeded records a committed payment.
func (m *Metrics) PaymentSucceeded(serviceCode string, amount int64) {
	m.Payments.WithLabelValues(serviceCode).Inc()
	m.PaymentAmount.Observe(float64(amount))
	m.InvoicesIssued.Inc()
}

// OperationFailed records a failed ledger operation.
func (m *Metrics) OperationFailed(operation string, err error) {
	m.LedgerErrors.WithLabelValues(operation, errorReason(err)).Inc()
}

// Retried records a transaction retry.
func (m *Metrics) Retried(reason string) {
	m.LedgerRetries.WithLabelValues(reason).Inc()
}

// ConsistencyChecked records the result of a ledger consistency check.
func (m *Metrics) ConsistencyChecked(mismatched int) {
	m.LedgerMismatch.Set(float64(mismatched))
}

// errorReason keeps the reason label bounded.
func errorReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(err, domain.ErrServiceNotFound):
		return "service_not_found"
	case errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, domain.ErrAmountTooLarge):
		return "invalid_amount"
	case errors.Is(err, domain.ErrInvoiceConflict):
		return "invoice_conflict"
	default:
		return "internal"
	}
}

// EventPublished records an outbox event handed to the broker.
func (m *Metrics) EventPublished(eventType string) {
	m.EventsPublished.WithLabelValues(eventType).Inc()
}

// PublishFailed records an outbox event the broker refused.
func (m *Metrics) PublishFailed(eventType string) {
	m.PublishErrors.WithLabelValues(eventType).Inc()
}

// IdempotencyOutcome records how the idempotency middleware answered a keyed request.
func (m *Metrics) IdempotencyOutcome(outcome string) {
	m.IdempotencyHits.WithLabelValues(outcome).Inc()
}

// RateLimited records a request rejected by the rate limiter.
func (m *Metrics) RateLimited() {
	m.RateLimitHits.Inc()
}
