package localauth

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/Fvicente04/ca1-real-estate-app/internal/contextkeys"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/domain"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/port"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	SigningKey string
	TokenTTL   time.Duration
	BcryptCost int
	// после MaxFailedAttempts неудачных входов подряд вход блокируется на LockoutWindow
	MaxFailedAttempts    int
	LockoutWindow        time.Duration
	RegistrationDisabled bool
}

func (c Config) withDefaults() Config {
	if c.TokenTTL <= 0 {
		c.TokenTTL = time.Hour
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = bcrypt.DefaultCost
	}
	if c.MaxFailedAttempts <= 0 {
		c.MaxFailedAttempts = 5
	}
	if c.LockoutWindow <= 0 {
		c.LockoutWindow = 15 * time.Minute
	}
	return c
}

type failures struct {
	count       int
	lockedUntil time.Time
}

// Backend - встроенный бэкенд аутентификации: пользователи в памяти,
// пароли в bcrypt, сессии - JWT. Отказы возвращаются как *domain.AuthError.
type Backend struct {
	cfg    Config
	tokens *TokenService
	now    func() time.Time

	mu       sync.Mutex
	users    map[string]*user
	failures map[string]*failures
}

var _ port.AuthBackendPort = (*Backend)(nil)

func NewBackend(cfg Config) (*Backend, error) {
	cfg = cfg.withDefaults()
	tokens, err := NewTokenService(cfg.SigningKey)
	if err != nil {
		return nil, err
	}
	return &Backend{
		cfg:      cfg,
		tokens:   tokens,
		now:      time.Now,
		users:    make(map[string]*user),
		failures: make(map[string]*failures),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func (b *Backend) Register(ctx context.Context, email, password string) (*domain.Identity, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"component": "LocalAuth", "method": "Register"})

	if b.cfg.RegistrationDisabled {
		return nil, domain.NewAuthError(domain.AuthReasonOperationNotAllowed, nil)
	}
	key := normalizeEmail(email)
	if !validEmail(key) {
		return nil, domain.NewAuthError(domain.AuthReasonInvalidEmail, nil)
	}
	if len(password) < domain.MinPasswordLength {
		return nil, domain.NewAuthError(domain.AuthReasonWeakPassword, nil)
	}

	u, err := newUser(key, password, b.cfg.BcryptCost)
	if err != nil {
		logger.Error("Failed to hash password", err, nil)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	b.mu.Lock()
	if _, exists := b.users[key]; exists {
		b.mu.Unlock()
		logger.Info("Registration rejected: email already in use", nil)
		return nil, domain.NewAuthError(domain.AuthReasonEmailAlreadyInUse, nil)
	}
	b.users[key] = u
	b.mu.Unlock()

	logger.Info("User registered", port.Fields{"user_id": u.ID.String()})
	return b.issue(ctx, u)
}

func (b *Backend) Login(ctx context.Context, email, password string) (*domain.Identity, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"component": "LocalAuth", "method": "Login"})

	key := normalizeEmail(email)
	if !validEmail(key) {
		return nil, domain.NewAuthError(domain.AuthReasonInvalidEmail, nil)
	}

	b.mu.Lock()
	if f := b.failures[key]; f != nil && b.now().Before(f.lockedUntil) {
		b.mu.Unlock()
		return nil, domain.NewAuthError(domain.AuthReasonTooManyRequests, nil)
	}
	u := b.users[key]
	disabled := u != nil && u.Disabled
	b.mu.Unlock()

	if u == nil {
		return nil, domain.NewAuthError(domain.AuthReasonUserNotFound, nil)
	}
	if disabled {
		return nil, domain.NewAuthError(domain.AuthReasonUserDisabled, nil)
	}
	if !u.checkPassword(password) {
		b.recordFailure(key)
		logger.Info("Login rejected: wrong password", port.Fields{"user_id": u.ID.String()})
		return nil, domain.NewAuthError(domain.AuthReasonWrongPassword, nil)
	}

	b.mu.Lock()
	delete(b.failures, key)
	b.mu.Unlock()

	return b.issue(ctx, u)
}

func (b *Backend) recordFailure(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	f := b.failures[key]
	if f == nil {
		f = &failures{}
		b.failures[key] = f
	}
	f.count++
	if f.count >= b.cfg.MaxFailedAttempts {
		f.count = 0
		f.lockedUntil = b.now().Add(b.cfg.LockoutWindow)
	}
}

func (b *Backend) Validate(ctx context.Context, token string) error {
	claims, err := b.tokens.ValidateToken(ctx, token)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	u := b.users[normalizeEmail(claims.Email)]
	if u == nil || u.Disabled || u.ID != claims.UserID {
		return domain.ErrTokenInvalid
	}
	return nil
}

func (b *Backend) Revoke(_ context.Context, token string) error {
	return b.tokens.Revoke(token)
}

// DisableUser блокирует учетную запись: вход и проверка токенов начинают отказывать.
func (b *Backend) DisableUser(email string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[normalizeEmail(email)]
	if ok {
		u.Disabled = true
	}
	return ok
}

func (b *Backend) issue(ctx context.Context, u *user) (*domain.Identity, error) {
	token, expiresAt, err := b.tokens.GenerateToken(ctx, u, b.cfg.TokenTTL)
	if err != nil {
		return nil, err
	}
	return &domain.Identity{
		UserID:    u.ID.String(),
		Email:     u.Email,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}
