package domain

import "time"

// TransactionType classifies a history entry.
type TransactionType string

const (
	TransactionTypeTopUp   TransactionType = "TOPUP"
	TransactionTypePayment TransactionType = "PAYMENT"
)

// TopUpDescription is the description recorded for every top-up.
const TopUpDescription = "Top Up Balance"

// IsValid checks if the transaction type is known.
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeTopUp, TransactionTypePayment:
		return true
	default:
		return false
	}
}

// HistoryEntry is an immutable record of one balance-affecting operation.
type HistoryEntry struct {
	InvoiceNumber   string
	UserID          string
	TransactionType TransactionType
	Description     string
	TotalAmount     int64
	CreatedAt       time.Time
}

// Validate checks the entry before it is written.
func (e *HistoryEntry) Validate() error {
	if !e.TransactionType.IsValid() {
		return ErrInvalidTransactionType
	}

	if e.TotalAmount <= 0 {
		return ErrInvalidAmount
	}

	return nil
}
