package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/iho/goppob/internal/adapter/http/dto"
	"github.com/iho/goppob/internal/adapter/http/middleware"
	"github.com/iho/goppob/internal/domain"
	"github.com/iho/goppob/internal/usecase"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	Balance(ctx context.Context, userID string) (int64, error)
	TopUp(ctx context.Context, userID string, amount int64) (int64, error)
	Pay(ctx context.Context, userID, serviceCode string) (*usecase.PaymentResult, error)
	History(ctx context.Context, input usecase.HistoryInput) ([]*domain.HistoryEntry, error)
}

// LedgerHandler handles balance, top-up, payment and history requests.
type LedgerHandler struct {
	ledgerUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// Balance returns the current balance.
func (h *LedgerHandler) Balance(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeDomainError(w, r, domain.ErrUnauthorized)
		return
	}

	balance, err := h.ledgerUC.Balance(r.Context(), userID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeSuccess(w, "Get Balance berhasil", dto.BalanceResponse{Balance: balance})
}

// TopUp credits the balance.
func (h *LedgerHandler) TopUp(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeDomainError(w, r, domain.ErrUnauthorized)
		return
	}

	var req dto.TopUpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, domain.ErrInvalidAmount)
		return
	}
	amount, err := req.Amount()
	if errors.Is(err, dto.ErrMissingAmount) {
		writeError(w, http.StatusBadRequest, statusInvalidParameter, "Parameter amount wajib diisi")
		return
	}
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	balance, err := h.ledgerUC.TopUp(r.Context(), userID, amount)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeSuccess(w, "Top Up Balance berhasil", dto.BalanceResponse{Balance: balance})
}

// Pay debits the tariff of a service.
func (h *LedgerHandler) Pay(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeDomainError(w, r, domain.ErrUnauthorized)
		return
	}

	var req dto.PaymentRequest
	if err := decodeJSON(r, &req); err != nil || dto.Validate(&req) != nil {
		writeError(w, http.StatusBadRequest, statusMissingParameter, "Parameter service_code wajib diisi")
		return
	}

	result, err := h.ledgerUC.Pay(r.Context(), userID, req.ServiceCode)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeSuccess(w, "Transaksi berhasil", dto.PaymentFromResult(result))
}

// History lists the member's entries, newest first. A missing or
// non-positive limit returns every entry after offset.
func (h *LedgerHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeDomainError(w, r, domain.ErrUnauthorized)
		return
	}

	offset, limit := domain.NormalizePagination(parseIntQuery(r, "offset", 0), parseOptionalIntQuery(r, "limit"))

	entries, err := h.ledgerUC.History(r.Context(), usecase.HistoryInput{
		UserID: userID,
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if len(entries) == 0 {
		writeJSON(w, http.StatusNotFound, dto.Envelope{Status: statusNoRecords, Message: "Data transaksi tidak ditemukan", Data: []any{}})
		return
	}

	writeSuccess(w, "Get History berhasil", dto.HistoryFromDomain(offset, limit, entries))
}
