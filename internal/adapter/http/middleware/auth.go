package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/iho/goppob/internal/domain"
	"github.com/iho/goppob/internal/infrastructure/auth"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// UserIDContextKey is the context key for the authenticated member ID
	UserIDContextKey ContextKey = "user_id"

	statusUnauthorized = 108
)

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// AuthMiddleware rejects requests without a valid bearer token and puts the
// member ID from the token subject into the request context.
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeEnvelope(w, http.StatusUnauthorized, statusUnauthorized, "Token tidak valid atau kadaluwarsa")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				writeEnvelope(w, http.StatusUnauthorized, statusUnauthorized, "Token tidak valid atau kadaluwarsa")
				return
			}

			claims, err := verifier.Verify(parts[1])
			if err != nil {
				message := "Token tidak valid"
				if errors.Is(err, domain.ErrExpiredToken) {
					message = "Token sudah kadaluwarsa"
				}
				writeEnvelope(w, http.StatusUnauthorized, statusUnauthorized, message)
				return
			}

			ctx := WithUserID(r.Context(), claims.UserID())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithUserID returns a copy of ctx carrying the member ID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDContextKey, userID)
}

// UserIDFromContext extracts the authenticated member ID from context
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDContextKey).(string)
	return userID, ok && userID != ""
}
