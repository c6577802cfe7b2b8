package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	h "giftr/internal/delivery/http/helpers"
	"giftr/internal/domain"
)

type contextKey string

const userIDKey contextKey = "userID"

// SetUserID returns a context with the local user ID set. Used by auth middleware.
func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated local user ID from the context, if present.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}

// RequireAuth returns a wrapper that validates the identity provider's Bearer
// token and resolves the provider subject to a local user, whose ID is set in
// the request context. A valid token whose subject has not been synced yet is
// rejected; the user webhook creates the local row on signup.
func RequireAuth(verifier domain.TokenVerifier, users domain.UserService, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing authorization header")
				return
			}
			const prefix = "Bearer "
			if !strings.HasPrefix(auth, prefix) {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid authorization format")
				return
			}
			token := strings.TrimSpace(auth[len(prefix):])
			if token == "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing token")
				return
			}
			externalID, err := verifier.Verify(token)
			if err != nil {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or expired token")
				return
			}
			user, err := users.GetByExternalID(r.Context(), externalID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unknown user")
					return
				}
				logger.ErrorContext(r.Context(), "auth user lookup failed", "err", err)
				h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "internal error")
				return
			}
			r = r.WithContext(SetUserID(r.Context(), user.ID))
			next(w, r)
		}
	}
}

// RequireCallbackToken returns a wrapper for internal routes invoked by the
// external scheduler. The static token is shared with the scheduler's target
// configuration.
func RequireCallbackToken(token string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if token == "" || r.Header.Get("X-Callback-Token") != token {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid callback token")
				return
			}
			next(w, r)
		}
	}
}
