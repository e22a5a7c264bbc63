package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/iho/goppob/internal/adapter/http/dto"
	"github.com/iho/goppob/internal/domain"
)

// Envelope status codes. 0 is success; the rest are per-endpoint
// validation and business failures.
const (
	statusSuccess              = 0
	statusMissingParameter     = 101
	statusInvalidParameter     = 102
	statusRejected             = 103
	statusDuplicateEmail       = 104
	statusProfileNamesMissing  = 104
	statusProfileNamesTooShort = 105
	statusNoRecords            = 105
	statusUserNotFound         = 107
	statusUnauthorized         = 108
	statusServerError          = 500
)

const messageServerError = "Terjadi kesalahan pada server"

// apiError is the response a domain error maps to.
type apiError struct {
	HTTPStatus int
	Status     int
	Message    string
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeSuccess writes a 200 envelope with status 0.
func writeSuccess(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, dto.Envelope{Status: statusSuccess, Message: message, Data: data})
}

// writeError writes an error envelope.
func writeError(w http.ResponseWriter, httpStatus, status int, message string) {
	writeJSON(w, httpStatus, dto.Envelope{Status: status, Message: message})
}

// writeDomainError maps err and writes it. Unmapped errors are logged and
// reported without detail.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := mapDomainError(err)
	if apiErr.HTTPStatus == http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
	}
	writeError(w, apiErr.HTTPStatus, apiErr.Status, apiErr.Message)
}

// mapDomainError maps domain errors to HTTP status codes and envelope statuses.
func mapDomainError(err error) apiError {
	switch {
	case errors.Is(err, domain.ErrInvalidEmail):
		return apiError{http.StatusBadRequest, statusInvalidParameter, "Parameter email tidak sesuai format"}
	case errors.Is(err, domain.ErrPasswordTooWeak):
		return apiError{http.StatusBadRequest, statusRejected, "Password minimal 8 karakter"}
	case errors.Is(err, domain.ErrInvalidName):
		return apiError{http.StatusBadRequest, statusInvalidParameter, "Parameter nama tidak valid"}
	case errors.Is(err, domain.ErrEmailAlreadyRegistered):
		return apiError{http.StatusBadRequest, statusDuplicateEmail, "Email sudah terdaftar"}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return apiError{http.StatusUnauthorized, statusRejected, "Email atau password salah"}
	case errors.Is(err, domain.ErrExpiredToken):
		return apiError{http.StatusUnauthorized, statusUnauthorized, "Token sudah kadaluwarsa"}
	case errors.Is(err, domain.ErrInvalidToken), errors.Is(err, domain.ErrUnauthorized):
		return apiError{http.StatusUnauthorized, statusUnauthorized, "Token tidak valid atau kadaluwarsa"}
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrAccountNotFound):
		return apiError{http.StatusNotFound, statusUserNotFound, "User tidak ditemukan"}
	case errors.Is(err, domain.ErrServiceNotFound):
		return apiError{http.StatusBadRequest, statusInvalidParameter, "Service atau Layanan tidak ditemukan"}
	case errors.Is(err, domain.ErrInsufficientBalance):
		return apiError{http.StatusBadRequest, statusRejected, "Saldo tidak mencukupi untuk melakukan transaksi"}
	case errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, domain.ErrAmountTooLarge):
		return apiError{http.StatusBadRequest, statusInvalidParameter, "Parameter amount hanya boleh angka dan tidak boleh lebih kecil dari 0"}
	default:
		return apiError{http.StatusInternalServerError, statusServerError, messageServerError}
	}
}

// decodeJSON decodes the request body into v.
func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// parseOptionalIntQuery parses an integer query parameter. Missing or
// malformed values yield nil.
func parseOptionalIntQuery(r *http.Request, key string) *int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return nil
	}
	return &i
}
