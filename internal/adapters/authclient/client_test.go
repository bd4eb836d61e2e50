package authclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Fvicente04/ca1-real-estate-app/internal/contextkeys"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/domain"
	"github.com/golang-jwt/jwt/v5"
)

func newServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", srv.Client())
}

func TestLoginSuccess(t *testing.T) {
	expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	var gotTrace string
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/auth/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotTrace = r.Header.Get("X-Trace-ID")
		var req credentialsRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(authResponse{Token: "t", UserID: "u1", Email: req.Email, ExpiresAt: expires})
	})

	ctx := contextkeys.ContextWithTraceID(context.Background(), "trace-1")
	id, err := c.Login(ctx, "a@b.c", "secret1")
	if err != nil {
		t.Fatal(err)
	}
	if id.Email != "a@b.c" || id.Token != "t" || !id.ExpiresAt.Equal(expires) {
		t.Errorf("identity: %+v", id)
	}
	if gotTrace != "trace-1" {
		t.Errorf("trace header: got %q", gotTrace)
	}
}

func TestAuthErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   domain.AuthReason
	}{
		{"code wins", http.StatusUnauthorized, `{"error":"x","code":"auth/wrong-password"}`, domain.AuthReasonWrongPassword},
		{"bare code", http.StatusBadRequest, `{"error":"x","code":"weak-password"}`, domain.AuthReasonWeakPassword},
		{"401 without code", http.StatusUnauthorized, `{}`, domain.AuthReasonInvalidCredential},
		{"429", http.StatusTooManyRequests, ``, domain.AuthReasonTooManyRequests},
		{"409", http.StatusConflict, `{}`, domain.AuthReasonEmailAlreadyInUse},
		{"500", http.StatusInternalServerError, `oops`, domain.AuthReasonUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.Register(context.Background(), "a@b.c", "secret1")
			reason, ok := domain.AuthReasonOf(err)
			if !ok || reason != tt.want {
				t.Errorf("got %v (%v), want %s", reason, err, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		status  int
		wantErr error
	}{
		{http.StatusOK, nil},
		{http.StatusNoContent, nil},
		{http.StatusUnauthorized, domain.ErrTokenInvalid},
	}
	for _, tt := range tests {
		c := newServer(t, func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(tt.status) })
		if err := c.Validate(context.Background(), "t"); !errors.Is(err, tt.wantErr) {
			t.Errorf("status %d: got %v, want %v", tt.status, err, tt.wantErr)
		}
	}

	c := newServer(t, func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) })
	err := c.Validate(context.Background(), "t")
	if err == nil || errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("502 must be a transport error, got %v", err)
	}
}

func TestRevokeToleratesUnknownToken(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusUnauthorized) })
	if err := c.Revoke(context.Background(), "t"); err != nil {
		t.Errorf("got %v", err)
	}
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Date(2031, 6, 1, 12, 0, 0, 0, time.UTC)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("k"))
	if err != nil {
		t.Fatal(err)
	}
	if got := TokenExpiry(token); !got.Equal(exp) {
		t.Errorf("got %v, want %v", got, exp)
	}
	if got := TokenExpiry("garbage"); !got.IsZero() {
		t.Errorf("garbage token: got %v", got)
	}
}

func TestEmptyTokenIsAnError(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"user_id":"u1"}`))
	})
	if _, err := c.Login(context.Background(), "a@b.c", "secret1"); err == nil {
		t.Fatal("expected error for empty token")
	}
}
