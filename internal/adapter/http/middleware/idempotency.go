package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iho/goppob/internal/usecase"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency keys.
	IdempotencyKeyHeader = "Idempotency-Key"

	processingMarker = "processing"
)

// Idempotency outcomes reported to the observer.
const (
	IdempotencyFirst      = "first"
	IdempotencyReplayed   = "replayed"
	IdempotencyInProgress = "in_progress"
)

// IdempotencyObserver is told how each keyed request was answered.
type IdempotencyObserver interface {
	IdempotencyOutcome(outcome string)
}

// IdempotencyMiddleware replays the stored response of a repeated mutating
// request. Keys are scoped to the authenticated member, so it must run after
// AuthMiddleware.
type IdempotencyMiddleware struct {
	store    usecase.IdempotencyStore
	ttl      time.Duration
	observer IdempotencyObserver
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware.
func NewIdempotencyMiddleware(store usecase.IdempotencyStore, ttl time.Duration, observer IdempotencyObserver) *IdempotencyMiddleware {
	if ttl <= 0 {
		ttl = usecase.IdempotencyKeyTTL
	}
	return &IdempotencyMiddleware{store: store, ttl: ttl, observer: observer}
}

// Wrap wraps an http.Handler with idempotency checking.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodPut {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(IdempotencyKeyHeader)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}
		userID, _ := UserIDFromContext(r.Context())
		key = userID + ":" + r.URL.Path + ":" + key

		exists, cachedResponse, err := m.store.CheckAndSet(r.Context(), key, nil, m.ttl)
		if err != nil {
			log.Error().Err(err).Str("path", r.URL.Path).Msg("idempotency check failed")
			writeEnvelope(w, http.StatusInternalServerError, 500, "Terjadi kesalahan pada server")
			return
		}

		if exists {
			if cachedResponse == nil || string(cachedResponse) == processingMarker {
				m.observe(IdempotencyInProgress)
				writeEnvelope(w, http.StatusConflict, 409, "Request dengan Idempotency-Key yang sama sedang diproses")
				return
			}
			m.observe(IdempotencyReplayed)
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Idempotency-Replay", "true")
			w.Write(cachedResponse)
			return
		}
		m.observe(IdempotencyFirst)

		recorder := &responseRecorder{
			ResponseWriter: w,
			body:           &bytes.Buffer{},
			statusCode:     http.StatusOK,
		}
		next.ServeHTTP(recorder, r)

		// Only successes are replayed; a failed request may be sent again.
		if recorder.statusCode >= 200 && recorder.statusCode < 300 {
			if err := m.store.Update(r.Context(), key, recorder.body.Bytes(), m.ttl); err != nil {
				log.Warn().Err(err).Str("path", r.URL.Path).Msg("failed to store idempotent response")
			}
			return
		}
		if err := m.store.Release(r.Context(), key); err != nil {
			log.Warn().Err(err).Str("path", r.URL.Path).Msg("failed to release idempotency key")
		}
	})
}

func (m *IdempotencyMiddleware) observe(outcome string) {
	if m.observer != nil {
		m.observer.IdempotencyOutcome(outcome)
	}
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
