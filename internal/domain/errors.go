package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound        = errors.New("account not found")
	ErrInsufficientBalance    = errors.New("insufficient balance")
	ErrUserNotFound           = errors.New("user not found")
	ErrEmailAlreadyRegistered = errors.New("email already registered")

	// Catalog errors
	ErrServiceNotFound = errors.New("service not found")

	// Ledger errors
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvoiceConflict        = errors.New("invoice number already taken")
	ErrCorruptInvoiceNumber   = errors.New("corrupt invoice number")
)
