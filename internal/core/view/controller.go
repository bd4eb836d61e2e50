package view

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Fvicente04/ca1-real-estate-app/internal/contextkeys"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/port"
	"github.com/Fvicente04/ca1-real-estate-app/internal/stream"
)

// Действия, которые слой отрисовки может отправить активному экрану.
const (
	ActionSubmit      = "submit"
	ActionCancel      = "cancel"
	ActionBookViewing = "book-viewing"
	ActionOpenRelated = "open-related"
	ActionMarkerClick = "marker-click"
	ActionCloseInfo   = "close-info"
)

var ErrUnsupportedAction = errors.New("action is not supported by this view")

// Action - пользовательское действие с полями формы.
type Action struct {
	Name   string
	Fields map[string]string
}

func (a Action) Field(name string) string {
	if a.Fields == nil {
		return ""
	}
	return a.Fields[name]
}

// Controller - локальное состояние одного экрана.
// Snapshot возвращает копию состояния, пригодную для сериализации в JSON.
type Controller interface {
	Snapshot() any
	Handle(ctx context.Context, action Action) error
	Close()
}

// Deps - зависимости контроллеров. OnChange вызывается после каждого изменения
// состояния, вне мьютекса контроллера.
type Deps struct {
	Listings  port.ListingRepositoryPort
	Viewings  port.ViewingRepositoryPort
	Session   port.SessionProviderPort
	Navigator port.NavigatorPort
	Scheduler port.SchedulerPort
	Logger    port.LoggerPort
	OnChange  func()
}

func (d Deps) withDefaults() Deps {
	if d.Scheduler == nil {
		d.Scheduler = RealScheduler{}
	}
	if d.Logger == nil {
		d.Logger = contextkeys.NoopLogger()
	}
	if d.OnChange == nil {
		d.OnChange = func() {}
	}
	return d
}

// RealScheduler - SchedulerPort на time.AfterFunc.
type RealScheduler struct{}

func (RealScheduler) AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// base - общий жизненный цикл контроллера: мьютекс состояния, закрытие,
// подписки и контекст, который отменяется при закрытии экрана.
type base struct {
	mu     sync.Mutex
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
	subs   []func()

	onChange func()
	logger   port.LoggerPort
}

func newBase(parent context.Context, deps Deps, component string) *base {
	ctx, cancel := context.WithCancel(parent)
	logger := deps.Logger.WithFields(port.Fields{"component": component})
	return &base{
		ctx:      contextkeys.ContextWithLogger(ctx, logger),
		cancel:   cancel,
		onChange: deps.OnChange,
		logger:   logger,
	}
}

// mutate применяет fn к состоянию под мьютексом и уведомляет об изменении.
// На закрытом контроллере ничего не делает и возвращает false.
func (b *base) mutate(fn func()) bool {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return false
	}
	fn()
	b.mu.Unlock()

	b.onChange()
	return true
}

// track регистрирует освобождение ресурса при закрытии. Если контроллер
// уже закрыт, ресурс освобождается сразу.
func (b *base) track(release func()) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		release()
		return
	}
	b.subs = append(b.subs, release)
	b.mu.Unlock()
}

func (b *base) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

func (b *base) close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	subs := b.subs
	b.subs = nil
	b.mu.Unlock()

	b.cancel()
	for _, release := range subs {
		release()
	}
}

// follow читает подписку до ее закрытия и применяет каждый снимок через mutate.
// onEnd вызывается, если лента закрылась сама, а не из-за закрытия контроллера.
func follow[T any](b *base, sub *stream.Subscription[T], apply func(T), onEnd func()) {
	b.track(sub.Close)
	go func() {
		for v := range sub.C() {
			if !b.mutate(func() { apply(v) }) {
				return
			}
		}
		if onEnd != nil && !b.isClosed() {
			b.mutate(onEnd)
		}
	}()
}
