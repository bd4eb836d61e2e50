package stream

import "sync"

// Feed раздает снимки подписчикам.
//
// Новый подписчик сразу получает последний опубликованный снимок (если он есть),
// затем все последующие. Каждый снимок - полная замена предыдущего, поэтому
// медленный подписчик видит только самый свежий: у канала подписки буфер 1,
// и непрочитанное значение вытесняется новым.
type Feed[T any] struct {
	mu      sync.Mutex
	subs    map[*Subscription[T]]struct{}
	last    T
	hasLast bool
	closed  bool

	// onIdle вызывается, когда отписывается последний подписчик
	onIdle func()
}

// NewFeed создает пустую ленту.
func NewFeed[T any]() *Feed[T] {
	return &Feed[T]{subs: make(map[*Subscription[T]]struct{})}
}

// OnIdle регистрирует обработчик ухода последнего подписчика.
func (f *Feed[T]) OnIdle(fn func()) {
	f.mu.Lock()
	f.onIdle = fn
	f.mu.Unlock()
}

// Publish запоминает снимок и доставляет его всем подписчикам без блокировки.
func (f *Feed[T]) Publish(v T) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}
	f.last = v
	f.hasLast = true
	for s := range f.subs {
		s.offer(v)
	}
}

// Latest возвращает последний опубликованный снимок.
func (f *Feed[T]) Latest() (T, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last, f.hasLast
}

// Subscribe открывает новую подписку. На закрытой ленте подписка сразу закрыта.
func (f *Feed[T]) Subscribe() *Subscription[T] {
	s := &Subscription[T]{feed: f, ch: make(chan T, 1)}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		s.done = true
		close(s.ch)
		return s
	}
	f.subs[s] = struct{}{}
	if f.hasLast {
		s.ch <- f.last
	}
	return s
}

// Len - число активных подписчиков.
func (f *Feed[T]) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// Close закрывает ленту и все ее подписки.
func (f *Feed[T]) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}
	f.closed = true
	for s := range f.subs {
		s.done = true
		close(s.ch)
	}
	f.subs = nil
}

func (f *Feed[T]) unsubscribe(s *Subscription[T]) {
	f.mu.Lock()
	if s.done {
		f.mu.Unlock()
		return
	}
	s.done = true
	delete(f.subs, s)
	close(s.ch)

	var idle func()
	if len(f.subs) == 0 && !f.closed {
		idle = f.onIdle
	}
	f.mu.Unlock()

	// вне мьютекса: обработчик может снова обратиться к ленте
	if idle != nil {
		idle()
	}
}

// Subscription - подписка на ленту. Должна быть закрыта владельцем.
type Subscription[T any] struct {
	feed *Feed[T]
	ch   chan T
	done bool // защищено feed.mu
}

// C возвращает канал снимков. Канал закрывается при Close подписки или ленты.
func (s *Subscription[T]) C() <-chan T {
	return s.ch
}

// Close прекращает доставку и освобождает ресурсы. Повторный вызов безопасен.
func (s *Subscription[T]) Close() {
	s.feed.unsubscribe(s)
}

// offer кладет значение в канал, вытесняя непрочитанное. Вызывается под feed.mu.
func (s *Subscription[T]) offer(v T) {
	select {
	case s.ch <- v:
		return
	default:
	}
	select {
	case <-s.ch:
	default:
	}
	s.ch <- v
}
