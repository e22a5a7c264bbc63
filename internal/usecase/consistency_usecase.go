package usecase

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInconsistentLedger is returned when a balance does not equal its history.
	ErrInconsistentLedger = errors.New("ledger is inconsistent: balances do not match history")
)

// ConsistencyReport summarizes a consistency check.
type ConsistencyReport struct {
	AccountsChecked    int64
	MismatchedAccounts []string
}

// Consistent reports whether every checked account reconciled.
func (r *ConsistencyReport) Consistent() bool {
	return len(r.MismatchedAccounts) == 0
}

// ConsistencyUseCase verifies that every balance equals the sum of its
// top-ups minus the sum of its payments.
type ConsistencyUseCase struct {
	ledgerRepo LedgerRepository
	observer   ConsistencyObserver
}

// ConsistencyObserver receives the mismatch count of every completed check.
type ConsistencyObserver interface {
	ConsistencyChecked(mismatched int)
}

// NewConsistencyUseCase creates a new ConsistencyUseCase. observer may be nil.
func NewConsistencyUseCase(ledgerRepo LedgerRepository, observer ConsistencyObserver) *ConsistencyUseCase {
	return &ConsistencyUseCase{
		ledgerRepo: ledgerRepo,
		observer:   observer,
	}
}

// CheckConsistency verifies the ledger. The report is returned even when the
// ledger is inconsistent so callers can list the offending accounts.
func (uc *ConsistencyUseCase) CheckConsistency(ctx context.Context) (*ConsistencyReport, error) {
	checked, mismatched, err := uc.ledgerRepo.FindBalanceMismatches(ctx)
	if err != nil {
		return nil, err
	}

	report := &ConsistencyReport{
		AccountsChecked:    checked,
		MismatchedAccounts: mismatched,
	}
	if uc.observer != nil {
		uc.observer.ConsistencyChecked(len(mismatched))
	}
	if !report.Consistent() {
		return report, fmt.Errorf("%w: %d of %d accounts", ErrInconsistentLedger, len(mismatched), checked)
	}
	return report, nil
}
