package domain

import (
	"encoding/json"
	"time"
)

// Event types
const (
	EventTypeTopUp   = "ledger.topup"
	EventTypePayment = "ledger.payment"
)

// Aggregate types
const (
	AggregateTypeAccount = "account"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// TopUpEvent payload
type TopUpEvent struct {
	InvoiceNumber string `json:"invoice_number"`
	UserID        string `json:"user_id"`
	Amount        int64  `json:"amount"`
	Balance       int64  `json:"balance"`
	CreatedAt     string `json:"created_at"`
}

// PaymentEvent payload
type PaymentEvent struct {
	InvoiceNumber string `json:"invoice_number"`
	UserID        string `json:"user_id"`
	ServiceCode   string `json:"service_code"`
	ServiceName   string `json:"service_name"`
	Amount        int64  `json:"amount"`
	Balance       int64  `json:"balance"`
	CreatedAt     string `json:"created_at"`
}

// EventPayload converts a typed event into the generic outbox payload.
func EventPayload(v any) map[string]any {
	data, err := json.Marshal(v)
	if err != nil {
		return map[string]any{"error": "failed to marshal payload"}
	}

	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		return map[string]any{"error": "failed to unmarshal payload"}
	}

	return result
}
