package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Fvicente04/ca1-real-estate-app/internal/contextkeys"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/domain"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/port"
	"github.com/golang-jwt/jwt/v5"
)

const apiPrefix = "/api/v1/auth"

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

type authResponse struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Client - клиент удаленного сервиса аутентификации.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ port.AuthBackendPort = (*Client)(nil)

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) Register(ctx context.Context, email, password string) (*domain.Identity, error) {
	return c.authenticate(ctx, "/register", credentialsRequest{Email: email, Password: password})
}

func (c *Client) Login(ctx context.Context, email, password string) (*domain.Identity, error) {
	return c.authenticate(ctx, "/login", credentialsRequest{Email: email, Password: password})
}

// Validate: 401 от сервиса означает, что токен больше не действует.
func (c *Client) Validate(ctx context.Context, token string) error {
	resp, err := c.post(ctx, "/validate", tokenRequest{Token: token})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusUnauthorized:
		return domain.ErrTokenInvalid
	}
	body, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("auth service returned non-200 status: %d, body: %s", resp.StatusCode, string(body))
}

func (c *Client) Revoke(ctx context.Context, token string) error {
	resp, err := c.post(ctx, "/logout", tokenRequest{Token: token})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusUnauthorized {
		return nil
	}
	return fmt.Errorf("auth service returned status %d on logout", resp.StatusCode)
}

func (c *Client) authenticate(ctx context.Context, path string, body credentialsRequest) (*domain.Identity, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"component": "AuthClient", "path": path})

	resp, err := c.post(ctx, path, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		authErr := decodeAuthError(resp)
		logger.Info("Auth service rejected request", port.Fields{"status_code": resp.StatusCode, "error": authErr.Error()})
		return nil, authErr
	}

	var out authResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode auth response: %w", err)
	}
	if out.Token == "" {
		return nil, errors.New("auth service returned an empty token")
	}

	identity := &domain.Identity{
		UserID:    out.UserID,
		Email:     out.Email,
		Token:     out.Token,
		ExpiresAt: out.ExpiresAt,
	}
	if identity.ExpiresAt.IsZero() {
		identity.ExpiresAt = TokenExpiry(out.Token)
	}
	return identity, nil
}

func (c *Client) post(ctx context.Context, path string, body any) (*http.Response, error) {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal auth request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+apiPrefix+path, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		req.Header.Set("X-Trace-ID", traceID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to auth service: %w", err)
	}
	return resp, nil
}

// decodeAuthError переводит ответ сервиса в *domain.AuthError. Код из тела
// важнее HTTP-статуса; без кода причина выводится из статуса.
func decodeAuthError(resp *http.Response) *domain.AuthError {
	var body errorResponse
	_ = json.NewDecoder(resp.Body).Decode(&body)

	cause := fmt.Errorf("auth service returned status %d: %s", resp.StatusCode, body.Error)
	if body.Code != "" {
		return domain.NewAuthError(domain.ParseAuthReason(body.Code), cause)
	}

	reason := domain.AuthReasonUnknown
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		reason = domain.AuthReasonInvalidCredential
	case http.StatusTooManyRequests:
		reason = domain.AuthReasonTooManyRequests
	case http.StatusForbidden:
		reason = domain.AuthReasonUserDisabled
	case http.StatusConflict:
		reason = domain.AuthReasonEmailAlreadyInUse
	}
	return domain.NewAuthError(reason, cause)
}

// TokenExpiry читает exp из токена без проверки подписи. Нулевое время - если exp нет.
func TokenExpiry(token string) time.Time {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
