package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"giftr/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeVerifier implements domain.TokenVerifier.
type fakeVerifier struct {
	externalID string
	err        error
}

func (f *fakeVerifier) Verify(token string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.externalID, nil
}

// fakeUserService implements domain.UserService; only GetByExternalID matters here.
type fakeUserService struct {
	user *domain.User
	err  error
}

func (f *fakeUserService) SyncFromProvider(ctx context.Context, externalID, email, name string) (*domain.User, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeUserService) RemoveFromProvider(ctx context.Context, externalID string) error {
	return errors.New("not implemented")
}

func (f *fakeUserService) GetByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func (f *fakeUserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return nil, domain.ErrNotFound
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name        string
		authHeader  string
		verifier    *fakeVerifier
		users       *fakeUserService
		wantStatus  int
		wantUserID  string
		wantReached bool
	}{
		{
			name:        "valid token resolves local user",
			authHeader:  "Bearer good-token",
			verifier:    &fakeVerifier{externalID: "ext-1"},
			users:       &fakeUserService{user: &domain.User{ID: "u-1", ExternalID: "ext-1"}},
			wantStatus:  http.StatusOK,
			wantUserID:  "u-1",
			wantReached: true,
		},
		{
			name:       "missing header",
			authHeader: "",
			verifier:   &fakeVerifier{externalID: "ext-1"},
			users:      &fakeUserService{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "not bearer scheme",
			authHeader: "Basic dXNlcjpwYXNz",
			verifier:   &fakeVerifier{externalID: "ext-1"},
			users:      &fakeUserService{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "empty token",
			authHeader: "Bearer ",
			verifier:   &fakeVerifier{externalID: "ext-1"},
			users:      &fakeUserService{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "invalid token",
			authHeader: "Bearer bad-token",
			verifier:   &fakeVerifier{err: errors.New("signature mismatch")},
			users:      &fakeUserService{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "token valid but user never synced",
			authHeader: "Bearer good-token",
			verifier:   &fakeVerifier{externalID: "ext-unsynced"},
			users:      &fakeUserService{err: domain.ErrNotFound},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "user lookup failure",
			authHeader: "Bearer good-token",
			verifier:   &fakeVerifier{externalID: "ext-1"},
			users:      &fakeUserService{err: errors.New("db down")},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var reached bool
			var gotUserID string
			handler := RequireAuth(tt.verifier, tt.users, testLogger)(func(w http.ResponseWriter, r *http.Request) {
				reached = true
				gotUserID, _ = UserIDFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/events/me", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()

			handler(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			assert.Equal(t, tt.wantReached, reached, "handler reached")
			if tt.wantUserID != "" {
				assert.Equal(t, tt.wantUserID, gotUserID, "local user ID in context")
			}
		})
	}
}

func TestRequireCallbackToken(t *testing.T) {
	tests := []struct {
		name        string
		configured  string
		sent        string
		wantStatus  int
		wantReached bool
	}{
		{name: "matching token", configured: "cb-secret", sent: "cb-secret", wantStatus: http.StatusOK, wantReached: true},
		{name: "wrong token", configured: "cb-secret", sent: "nope", wantStatus: http.StatusUnauthorized},
		{name: "missing token", configured: "cb-secret", sent: "", wantStatus: http.StatusUnauthorized},
		{name: "unset config rejects everything", configured: "", sent: "", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var reached bool
			handler := RequireCallbackToken(tt.configured)(func(w http.ResponseWriter, r *http.Request) {
				reached = true
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/internal/events/ev-1/draw", nil)
			if tt.sent != "" {
				req.Header.Set("X-Callback-Token", tt.sent)
			}
			rr := httptest.NewRecorder()

			handler(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantReached, reached)
		})
	}
}
