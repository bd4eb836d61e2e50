package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Fvicente04/ca1-real-estate-app/internal/contextkeys"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/domain"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/port"
)

var authReasonStatus = map[domain.AuthReason]int{
	domain.AuthReasonInvalidEmail:        http.StatusBadRequest,
	domain.AuthReasonWeakPassword:        http.StatusBadRequest,
	domain.AuthReasonUserNotFound:        http.StatusUnauthorized,
	domain.AuthReasonWrongPassword:       http.StatusUnauthorized,
	domain.AuthReasonInvalidCredential:   http.StatusUnauthorized,
	domain.AuthReasonTooManyRequests:     http.StatusTooManyRequests,
	domain.AuthReasonUserDisabled:        http.StatusForbidden,
	domain.AuthReasonOperationNotAllowed: http.StatusForbidden,
	domain.AuthReasonEmailAlreadyInUse:   http.StatusConflict,
}

// AuthHandler отдает встроенный бэкенд аутентификации по HTTP в том же
// формате, который ожидает authclient.
type AuthHandler struct {
	backend port.AuthBackendPort
}

func NewAuthHandler(backend port.AuthBackendPort) *AuthHandler {
	return &AuthHandler{backend: backend}
}

// Register обрабатывает POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	h.authenticate(w, r, "Register", http.StatusCreated, h.backend.Register)
}

// Login обрабатывает POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.authenticate(w, r, "Login", http.StatusOK, h.backend.Login)
}

// Validate обрабатывает POST /api/v1/auth/validate
func (h *AuthHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		WriteJSONError(w, http.StatusBadRequest, "Request body must contain a token")
		return
	}

	err := h.backend.Validate(r.Context(), req.Token)
	if errors.Is(err, domain.ErrTokenInvalid) {
		WriteJSONError(w, http.StatusUnauthorized, "Token is invalid or expired")
		return
	}
	if err != nil {
		contextkeys.LoggerFromContext(r.Context()).Error("Token validation failed", err, port.Fields{"handler": "Validate"})
		WriteJSONError(w, http.StatusInternalServerError, "Failed to validate token")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Logout обрабатывает POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		WriteJSONError(w, http.StatusBadRequest, "Request body must contain a token")
		return
	}
	if err := h.backend.Revoke(r.Context(), req.Token); err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) {
			WriteJSONError(w, http.StatusUnauthorized, "Token is invalid or expired")
			return
		}
		contextkeys.LoggerFromContext(r.Context()).Error("Token revocation failed", err, port.Fields{"handler": "Logout"})
		WriteJSONError(w, http.StatusInternalServerError, "Failed to revoke token")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) authenticate(
	w http.ResponseWriter,
	r *http.Request,
	handler string,
	successStatus int,
	call func(ctx context.Context, email, password string) (*domain.Identity, error),
) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": handler})

	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Failed to decode credentials", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	identity, err := call(r.Context(), req.Email, req.Password)
	if err != nil {
		var authErr *domain.AuthError
		if !errors.As(err, &authErr) {
			logger.Error("Authentication backend failed", err, nil)
			WriteJSONError(w, http.StatusInternalServerError, "Authentication failed")
			return
		}
		status, ok := authReasonStatus[authErr.Reason]
		if !ok {
			status = http.StatusInternalServerError
		}
		logger.Info("Authentication rejected", port.Fields{"reason": authErr.Reason.Code()})
		WriteAuthError(w, status, authErr.Error(), authErr.Reason.Code())
		return
	}

	logger.Info("Authentication succeeded", port.Fields{"user_id": identity.UserID})
	RespondWithJSON(w, successStatus, AuthResponse{
		Token:     identity.Token,
		UserID:    identity.UserID,
		Email:     identity.Email,
		ExpiresAt: identity.ExpiresAt,
	})
}
