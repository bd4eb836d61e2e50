package rest

import (
	"time"

	"github.com/Fvicente04/ca1-real-estate-app/internal/core/shell"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// OpenVisitRequest - тело POST /api/v1/visits. Path необязателен.
type OpenVisitRequest struct {
	Path string `json:"path"`
}

type NavigateRequest struct {
	Path string `json:"path"`
}

// ActionRequest - поля формы, отправляемые вместе с действием.
type ActionRequest struct {
	Fields map[string]string `json:"fields"`
}

type VisitResponse struct {
	VisitID string           `json:"visit_id"`
	State   shell.VisitState `json:"state"`
}

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenRequest struct {
	Token string `json:"token"`
}

type AuthResponse struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}
