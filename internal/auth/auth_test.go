package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vibelearner/internal/config"
	"vibelearner/internal/testutil"
)

func newTestHandlers() *AuthHandlers {
	return NewAuthHandlers(&testutil.MockStore{}, &config.AuthConfig{
		JWTSecret:       []byte("0123456789abcdef0123456789abcdef"),
		TokenExpiration: time.Hour,
	})
}

func TestTokenRoundTrip(t *testing.T) {
	h := newTestHandlers()

	token, err := h.GenerateToken("user-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := h.ValidateToken(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != "user-123" {
		t.Errorf("expected user-123, got %q", claims.UserID)
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	h := newTestHandlers()

	other := NewAuthHandlers(&testutil.MockStore{}, &config.AuthConfig{
		JWTSecret:       []byte("ffffffffffffffffffffffffffffffff"),
		TokenExpiration: time.Hour,
	})

	token, err := other.GenerateToken("user-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := h.ValidateToken(token); err == nil {
		t.Error("expected validation to fail for a token signed with another secret")
	}
}

func TestMiddleware(t *testing.T) {
	h := newTestHandlers()

	token, err := h.GenerateToken("user-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var gotUserID string
	protected := h.Middleware(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "valid token", header: "Bearer " + token, wantStatus: http.StatusOK},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "malformed header", header: "Token " + token, wantStatus: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer not-a-token", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUserID = ""
			req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			protected(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantStatus == http.StatusOK && gotUserID != "user-123" {
				t.Errorf("expected user id in context, got %q", gotUserID)
			}
		})
	}
}
