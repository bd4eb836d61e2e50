package stream

import (
	"context"
	"sync"
)

// Fetcher выполняет запрос к хранилищу и возвращает полный снимок результата.
type Fetcher[T any] func(ctx context.Context) (T, error)

// Hub держит "живые" запросы по ключу: подписчики одного и того же запроса
// делят одну ленту, а Invalidate перезапрашивает все запросы, на которые
// кто-то подписан. Запрос без подписчиков удаляется.
type Hub[T any] struct {
	mu      sync.Mutex
	queries map[string]*liveQuery[T]
	onError func(key string, err error)
}

type liveQuery[T any] struct {
	feed  *Feed[T]
	fetch Fetcher[T]
	// сериализует fetch+publish, чтобы снимки не обгоняли друг друга
	mu sync.Mutex
}

// NewHub создает хаб. onError получает ошибки фоновых перезапросов; может быть nil.
func NewHub[T any](onError func(key string, err error)) *Hub[T] {
	if onError == nil {
		onError = func(string, error) {}
	}
	return &Hub[T]{
		queries: make(map[string]*liveQuery[T]),
		onError: onError,
	}
}

// Subscribe подписывает на запрос key. Если запрос новый, первый снимок
// получается синхронно, и его ошибка возвращается вызывающему. Если первый
// снимок не получен, подписки, присоединившиеся к запросу, закрываются.
func (h *Hub[T]) Subscribe(ctx context.Context, key string, fetch Fetcher[T]) (*Subscription[T], error) {
	h.mu.Lock()
	if q, ok := h.queries[key]; ok {
		sub := q.feed.Subscribe()
		h.mu.Unlock()
		return sub, nil
	}

	q := &liveQuery[T]{feed: NewFeed[T](), fetch: fetch}
	q.feed.OnIdle(func() { h.release(key, q) })
	h.queries[key] = q
	h.mu.Unlock()

	if err := q.refresh(ctx); err != nil {
		h.discard(key, q)
		return nil, err
	}

	h.mu.Lock()
	if cur, ok := h.queries[key]; !ok || cur != q {
		// все присоединившиеся ушли во время запроса, и запрос уже снят
		h.mu.Unlock()
		return h.Subscribe(ctx, key, fetch)
	}
	defer h.mu.Unlock()
	return q.feed.Subscribe(), nil
}

// Invalidate перезапрашивает все активные запросы и публикует новые снимки.
// При ошибке подписчики сохраняют предыдущий снимок.
func (h *Hub[T]) Invalidate(ctx context.Context) {
	h.mu.Lock()
	active := make(map[string]*liveQuery[T], len(h.queries))
	for k, q := range h.queries {
		active[k] = q
	}
	h.mu.Unlock()

	for key, q := range active {
		if err := q.refresh(ctx); err != nil {
			h.onError(key, err)
		}
	}
}

// Len - число активных запросов.
func (h *Hub[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.queries)
}

// Close закрывает все запросы и их подписки.
func (h *Hub[T]) Close() {
	h.mu.Lock()
	queries := h.queries
	h.queries = make(map[string]*liveQuery[T])
	h.mu.Unlock()

	for _, q := range queries {
		q.feed.Close()
	}
}

func (h *Hub[T]) release(key string, q *liveQuery[T]) {
	h.mu.Lock()
	if cur, ok := h.queries[key]; !ok || cur != q || q.feed.Len() > 0 {
		h.mu.Unlock()
		return
	}
	delete(h.queries, key)
	h.mu.Unlock()

	q.feed.Close()
}

// discard снимает запрос, первый снимок которого не получен. Подписчики,
// успевшие присоединиться во время запроса, видят закрытый канал.
func (h *Hub[T]) discard(key string, q *liveQuery[T]) {
	h.mu.Lock()
	if cur, ok := h.queries[key]; ok && cur == q {
		delete(h.queries, key)
	}
	h.mu.Unlock()

	q.feed.Close()
}

func (q *liveQuery[T]) refresh(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	v, err := q.fetch(ctx)
	if err != nil {
		return err
	}
	q.feed.Publish(v)
	return nil
}
