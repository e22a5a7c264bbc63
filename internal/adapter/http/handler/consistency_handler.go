package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/iho/goppob/internal/adapter/http/dto"
	"github.com/iho/goppob/internal/usecase"
)

// ConsistencyChecker defines the behavior needed by ConsistencyHandler.
type ConsistencyChecker interface {
	CheckConsistency(ctx context.Context) (*usecase.ConsistencyReport, error)
}

// ConsistencyHandler handles ledger-wide checks.
type ConsistencyHandler struct {
	consistencyUC ConsistencyChecker
}

// NewConsistencyHandler creates a new ConsistencyHandler.
func NewConsistencyHandler(consistencyUC ConsistencyChecker) *ConsistencyHandler {
	return &ConsistencyHandler{consistencyUC: consistencyUC}
}

// CheckConsistency checks if every balance matches its history.
func (h *ConsistencyHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	report, err := h.consistencyUC.CheckConsistency(r.Context())
	if err != nil {
		if errors.Is(err, usecase.ErrInconsistentLedger) && report != nil {
			writeJSON(w, http.StatusConflict, dto.Envelope{
				Status:  http.StatusConflict,
				Message: "inconsistent",
				Data:    dto.ConsistencyFromReport(report),
			})
			return
		}
		writeDomainError(w, r, err)
		return
	}

	writeSuccess(w, "consistent", dto.ConsistencyFromReport(report))
}
