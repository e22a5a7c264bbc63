package domain

import "time"

// Account is the ledger's view of a user: an identifier and a balance in minor units.
type Account struct {
	ID        string
	Balance   int64
	UpdatedAt time.Time
}

// CanDebit reports whether amount can be taken without the balance going negative.
func (a *Account) CanDebit(amount int64) bool {
	return amount > 0 && a.Balance >= amount
}
