package port

import (
	"context"

	"github.com/Fvicente04/ca1-real-estate-app/internal/core/domain"
	"github.com/Fvicente04/ca1-real-estate-app/internal/stream"
)

// SessionProviderPort - единственный владелец сессии визита.
type SessionProviderPort interface {
	// CurrentSession сразу отдает текущее значение (nil - нет сессии), затем каждое изменение.
	CurrentSession() *stream.Subscription[*domain.Identity]
	SignUp(ctx context.Context, email, password string) error
	SignIn(ctx context.Context, email, password string) error
	// SignOut - best effort: сессия локально сбрасывается даже при ошибке бэкенда.
	SignOut(ctx context.Context) error
}

// AuthBackendPort - контракт внешнего бэкенда аутентификации.
// Отказы возвращаются как *domain.AuthError.
type AuthBackendPort interface {
	Register(ctx context.Context, email, password string) (*domain.Identity, error)
	Login(ctx context.Context, email, password string) (*domain.Identity, error)
	// Validate проверяет, что токен все еще действителен. domain.ErrTokenInvalid - если нет.
	Validate(ctx context.Context, token string) error
	Revoke(ctx context.Context, token string) error
}
