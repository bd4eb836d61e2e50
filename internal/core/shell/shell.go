package shell

import (
	"context"
	"sync"

	"github.com/Fvicente04/ca1-real-estate-app/internal/core/domain"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/port"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/view"
	"github.com/Fvicente04/ca1-real-estate-app/internal/stream"
)

// ActionSignOut обрабатывается самим shell, а не экраном.
const ActionSignOut = "sign-out"

// SessionInfo - то, что слой отрисовки знает о текущем пользователе.
type SessionInfo struct {
	Email string `json:"email"`
}

// VisitState - полный снимок состояния визита для отрисовки.
type VisitState struct {
	Version  uint64        `json:"version"`
	Route    string        `json:"route"`
	Replace  bool          `json:"replace"`
	View     string        `json:"view"`
	State    any           `json:"state"`
	Manifest *ViewManifest `json:"manifest,omitempty"`
	Session  *SessionInfo  `json:"session,omitempty"`
}

// Shell связывает маршруты визита с контроллерами: проверяет доступ,
// закрывает предыдущий экран и открывает новый.
type Shell struct {
	ctx       context.Context
	deps      view.Deps
	session   port.SessionProviderPort
	guard     *RouteGuard
	manifests Manifests
	logger    port.LoggerPort

	// navMu сериализует переходы целиком, mu защищает поля ниже
	navMu sync.Mutex
	mu    sync.Mutex

	route    domain.Route
	viewName string
	current  view.Controller
	identity *domain.Identity
	version  uint64
	closed   bool

	sessionSub *stream.Subscription[*domain.Identity]
	feed       *stream.Feed[VisitState]
}

type Config struct {
	Listings  port.ListingRepositoryPort
	Viewings  port.ViewingRepositoryPort
	Session   port.SessionProviderPort
	Scheduler port.SchedulerPort
	Manifests Manifests
	Logger    port.LoggerPort
}

// New создает shell визита. Первый экран нужно открыть через Navigate.
func New(ctx context.Context, cfg Config) *Shell {
	s := &Shell{
		ctx:       ctx,
		session:   cfg.Session,
		guard:     NewRouteGuard(cfg.Session, domain.PathCreateProperty),
		manifests: cfg.Manifests,
		logger:    cfg.Logger.WithFields(port.Fields{"component": "shell"}),
		current:   staticView{},
		feed:      stream.NewFeed[VisitState](),
	}
	s.deps = view.Deps{
		Listings:  cfg.Listings,
		Viewings:  cfg.Viewings,
		Session:   cfg.Session,
		Navigator: s,
		Scheduler: cfg.Scheduler,
		Logger:    cfg.Logger,
		OnChange:  s.publish,
	}

	s.sessionSub = cfg.Session.CurrentSession()
	go s.watchSession(s.sessionSub)
	return s
}

// Navigate переходит на маршрут. Реализует port.NavigatorPort для контроллеров.
func (s *Shell) Navigate(route domain.Route) {
	s.navMu.Lock()
	defer s.navMu.Unlock()

	route, entry, param := resolveRoute(route)
	if decision, target := s.guard.Check(route); decision == GuardRedirect {
		s.logger.Info("Route guard redirected navigation", port.Fields{"from": route.String(), "to": target.String()})
		route, entry, param = resolveRoute(target)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	previous := s.current
	s.current = entry.build(s.ctx, s.deps, route, param)
	s.route = route
	s.viewName = entry.view
	s.mu.Unlock()

	previous.Close()
	s.logger.Debug("View activated", port.Fields{"view": entry.view, "route": route.String()})
	s.publish()
}

// Handle передает действие активному экрану.
func (s *Shell) Handle(ctx context.Context, action view.Action) error {
	if action.Name == ActionSignOut {
		if err := s.session.SignOut(ctx); err != nil {
			s.logger.Warn("Sign out failed", port.Fields{"error": err.Error()})
		}
		s.Navigate(domain.NewRoute(domain.PathLogin))
		return nil
	}

	s.mu.Lock()
	current := s.current
	s.mu.Unlock()
	return current.Handle(ctx, action)
}

// State возвращает последний опубликованный снимок визита.
func (s *Shell) State() VisitState {
	if st, ok := s.feed.Latest(); ok {
		return st
	}
	return VisitState{}
}

// Subscribe подписывает на снимки визита. Текущий снимок приходит сразу.
func (s *Shell) Subscribe() *stream.Subscription[VisitState] {
	return s.feed.Subscribe()
}

func (s *Shell) publish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.version++
	st := VisitState{
		Version:  s.version,
		Route:    s.route.String(),
		Replace:  s.route.Replace,
		View:     s.viewName,
		State:    s.current.Snapshot(),
		Manifest: s.manifests.For(s.viewName),
	}
	if s.identity != nil {
		st.Session = &SessionInfo{Email: s.identity.Email}
	}
	s.feed.Publish(st)
}

func (s *Shell) watchSession(sub *stream.Subscription[*domain.Identity]) {
	for identity := range sub.C() {
		s.mu.Lock()
		s.identity = identity
		s.mu.Unlock()
		s.publish()
	}
}

// Close закрывает активный экран и все подписки визита.
func (s *Shell) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	current := s.current
	s.mu.Unlock()

	current.Close()
	s.sessionSub.Close()
	s.feed.Close()
}
