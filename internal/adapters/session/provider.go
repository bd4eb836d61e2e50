package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Fvicente04/ca1-real-estate-app/internal/core/domain"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/port"
	"github.com/Fvicente04/ca1-real-estate-app/internal/stream"
)

type Config struct {
	// RevalidateInterval - как часто проверять токен у бэкенда. 0 - не проверять.
	RevalidateInterval time.Duration
}

// Provider - владелец сессии одного визита. Сессия меняется только через
// SignUp/SignIn/SignOut, а также сбрасывается, когда истекает срок токена
// или бэкенд перестает его признавать (выход из другой вкладки или устройства).
type Provider struct {
	backend port.AuthBackendPort
	logger  port.LoggerPort
	feed    *stream.Feed[*domain.Identity]

	mu          sync.Mutex
	identity    *domain.Identity
	stopExpiry  func() bool
	closed      bool
	stopRefresh context.CancelFunc
	refreshDone chan struct{}
}

var _ port.SessionProviderPort = (*Provider)(nil)

func NewProvider(backend port.AuthBackendPort, cfg Config, logger port.LoggerPort) *Provider {
	p := &Provider{
		backend: backend,
		logger:  logger.WithFields(port.Fields{"component": "session_provider"}),
		feed:    stream.NewFeed[*domain.Identity](),
	}
	// подписчик всегда сразу получает текущее значение, даже если это "нет сессии"
	p.feed.Publish(nil)

	if cfg.RevalidateInterval > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		p.stopRefresh = cancel
		p.refreshDone = make(chan struct{})
		go p.revalidateLoop(ctx, cfg.RevalidateInterval)
	}
	return p
}

func (p *Provider) CurrentSession() *stream.Subscription[*domain.Identity] {
	return p.feed.Subscribe()
}

// Identity возвращает текущую сессию или nil.
func (p *Provider) Identity() *domain.Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.identity
}

func (p *Provider) SignUp(ctx context.Context, email, password string) error {
	identity, err := p.backend.Register(ctx, email, password)
	if err != nil {
		return err
	}
	p.logger.Info("Signed up", port.Fields{"user_id": identity.UserID})
	p.set(identity)
	return nil
}

func (p *Provider) SignIn(ctx context.Context, email, password string) error {
	identity, err := p.backend.Login(ctx, email, password)
	if err != nil {
		return err
	}
	p.logger.Info("Signed in", port.Fields{"user_id": identity.UserID})
	p.set(identity)
	return nil
}

// SignOut сбрасывает сессию локально до обращения к бэкенду. Ошибка отзыва
// токена возвращается, но сессия все равно уже сброшена.
func (p *Provider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	identity := p.identity
	p.mu.Unlock()
	if identity == nil {
		return nil
	}

	p.clear(identity, "sign_out")
	if err := p.backend.Revoke(ctx, identity.Token); err != nil {
		return err
	}
	return nil
}

// set заменяет сессию и перезапускает таймер истечения. Публикация идет под
// мьютексом, чтобы подписчики видели изменения в том же порядке.
func (p *Provider) set(identity *domain.Identity) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}

	p.resetExpiryLocked()
	p.identity = identity
	if identity != nil && !identity.ExpiresAt.IsZero() {
		p.stopExpiry = time.AfterFunc(time.Until(identity.ExpiresAt), func() {
			p.clear(identity, "expired")
		}).Stop
	}
	p.feed.Publish(identity)
}

// clear сбрасывает сессию, только если она все еще та же самая.
func (p *Provider) clear(identity *domain.Identity, reason string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.identity != identity {
		return
	}

	p.resetExpiryLocked()
	p.identity = nil
	p.feed.Publish(nil)
	p.logger.Info("Session ended", port.Fields{"user_id": identity.UserID, "reason": reason})
}

func (p *Provider) resetExpiryLocked() {
	if p.stopExpiry != nil {
		p.stopExpiry()
		p.stopExpiry = nil
	}
}

func (p *Provider) revalidateLoop(ctx context.Context, interval time.Duration) {
	defer close(p.refreshDone)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.revalidate(ctx)
		}
	}
}

func (p *Provider) revalidate(ctx context.Context) {
	identity := p.Identity()
	if identity == nil {
		return
	}

	err := p.backend.Validate(ctx, identity.Token)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrTokenInvalid):
		p.clear(identity, "revoked")
	case ctx.Err() != nil:
	default:
		// бэкенд недоступен: сессию не трогаем до следующей проверки
		p.logger.Warn("Session revalidation failed", port.Fields{"error": err.Error()})
	}
}

// Close останавливает фоновые проверки и закрывает все подписки.
func (p *Provider) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.resetExpiryLocked()
	p.mu.Unlock()

	if p.stopRefresh != nil {
		p.stopRefresh()
		<-p.refreshDone
	}
	p.feed.Close()
}
