package visit

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Fvicente04/ca1-real-estate-app/internal/contextkeys"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/domain"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/port"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/shell"
	"github.com/google/uuid"
)

var ErrRegistryClosed = errors.New("visit registry is closed")

// Session - провайдер сессии одного визита, которым владеет реестр.
type Session interface {
	port.SessionProviderPort
	Close()
}

type Config struct {
	Listings   port.ListingRepositoryPort
	Viewings   port.ViewingRepositoryPort
	NewSession func() Session
	Scheduler  port.SchedulerPort
	Manifests  shell.Manifests
	Logger     port.LoggerPort
	// IdleTTL - через сколько без обращений визит закрывается. 0 - никогда.
	IdleTTL time.Duration
}

// Visit - один открытый визит: своя сессия и свой shell.
type Visit struct {
	ID    string
	Shell *shell.Shell

	session  Session
	mu       sync.Mutex
	lastSeen time.Time
	streams  int
}

func (v *Visit) touch(now time.Time) {
	v.mu.Lock()
	v.lastSeen = now
	v.mu.Unlock()
}

func (v *Visit) idleSince(now time.Time, ttl time.Duration) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.streams == 0 && now.Sub(v.lastSeen) >= ttl
}

func (v *Visit) close() {
	v.Shell.Close()
	v.session.Close()
}

// Registry хранит открытые визиты по идентификатору.
type Registry struct {
	cfg    Config
	ctx    context.Context
	logger port.LoggerPort
	now    func() time.Time

	mu     sync.Mutex
	visits map[string]*Visit
	closed bool
}

// NewRegistry создает реестр. ctx - родитель контекстов всех визитов.
func NewRegistry(ctx context.Context, cfg Config) *Registry {
	if cfg.Logger == nil {
		cfg.Logger = contextkeys.NoopLogger()
	}
	return &Registry{
		cfg:    cfg,
		ctx:    context.WithoutCancel(ctx),
		logger: cfg.Logger.WithFields(port.Fields{"component": "VisitRegistry"}),
		now:    time.Now,
		visits: make(map[string]*Visit),
	}
}

// Open создает визит и открывает на нем маршрут route.
func (r *Registry) Open(route domain.Route) (*Visit, error) {
	id := uuid.NewString()
	logger := r.cfg.Logger.WithFields(port.Fields{"visit_id": id})
	ctx := contextkeys.ContextWithVisitID(contextkeys.ContextWithLogger(r.ctx, logger), id)

	session := r.cfg.NewSession()
	v := &Visit{
		ID: id,
		Shell: shell.New(ctx, shell.Config{
			Listings:  r.cfg.Listings,
			Viewings:  r.cfg.Viewings,
			Session:   session,
			Scheduler: r.cfg.Scheduler,
			Manifests: r.cfg.Manifests,
			Logger:    logger,
		}),
		session:  session,
		lastSeen: r.now(),
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		v.close()
		return nil, ErrRegistryClosed
	}
	r.visits[id] = v
	r.mu.Unlock()

	v.Shell.Navigate(route)
	r.logger.Info("Visit opened", port.Fields{"visit_id": id, "route": route.String()})
	return v, nil
}

// Get возвращает визит и продлевает его жизнь.
func (r *Registry) Get(id string) (*Visit, bool) {
	r.mu.Lock()
	v, ok := r.visits[id]
	r.mu.Unlock()
	if ok {
		v.touch(r.now())
	}
	return v, ok
}

// Close закрывает визит. false - если такого визита нет.
func (r *Registry) Close(id string) bool {
	r.mu.Lock()
	v, ok := r.visits[id]
	delete(r.visits, id)
	r.mu.Unlock()

	if ok {
		v.close()
		r.logger.Info("Visit closed", port.Fields{"visit_id": id})
	}
	return ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.visits)
}

// Sweep закрывает визиты, простаивающие дольше IdleTTL, и возвращает их число.
func (r *Registry) Sweep() int {
	if r.cfg.IdleTTL <= 0 {
		return 0
	}
	now := r.now()

	r.mu.Lock()
	var idle []*Visit
	for id, v := range r.visits {
		if v.idleSince(now, r.cfg.IdleTTL) {
			idle = append(idle, v)
			delete(r.visits, id)
		}
	}
	r.mu.Unlock()

	for _, v := range idle {
		v.close()
	}
	if len(idle) > 0 {
		r.logger.Info("Idle visits closed", port.Fields{"count": len(idle)})
	}
	return len(idle)
}

// RunSweeper вызывает Sweep каждые IdleTTL/2 до отмены ctx.
func (r *Registry) RunSweeper(ctx context.Context) {
	if r.cfg.IdleTTL <= 0 {
		return
	}
	ticker := time.NewTicker(r.cfg.IdleTTL / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Shutdown закрывает все визиты; новые после этого не открываются.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	r.closed = true
	visits := r.visits
	r.visits = make(map[string]*Visit)
	r.mu.Unlock()

	for _, v := range visits {
		v.close()
	}
}

// Hold помечает визит занятым потоком событий: пока release не вызван,
// визит не считается простаивающим.
func (r *Registry) Hold(v *Visit) (release func()) {
	v.mu.Lock()
	v.streams++
	v.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			v.mu.Lock()
			v.streams--
			v.lastSeen = r.now()
			v.mu.Unlock()
		})
	}
}
