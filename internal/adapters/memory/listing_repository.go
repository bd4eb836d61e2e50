package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Fvicente04/ca1-real-estate-app/internal/contextkeys"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/domain"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/port"
	"github.com/Fvicente04/ca1-real-estate-app/internal/stream"
	"github.com/google/uuid"
)

const (
	queryAll      = "all"
	queryFeatured = "featured"
)

// ListingRepository хранит объявления в памяти процесса. Каждая запись
// перезапрашивает активные живые запросы, как это делает документное хранилище.
type ListingRepository struct {
	mu       sync.RWMutex
	listings map[string]domain.Listing
	now      func() time.Time
	lastTime time.Time

	lists *stream.Hub[[]domain.Listing]
	items *stream.Hub[*domain.Listing]
}

var _ port.ListingRepositoryPort = (*ListingRepository)(nil)

func NewListingRepository(logger port.LoggerPort) *ListingRepository {
	repoLogger := logger.WithFields(port.Fields{"component": "MemoryListingRepository"})
	onError := func(key string, err error) {
		repoLogger.Error("Failed to refresh live query", err, port.Fields{"query": key})
	}
	return &ListingRepository{
		listings: make(map[string]domain.Listing),
		now:      time.Now,
		lists:    stream.NewHub[[]domain.Listing](onError),
		items:    stream.NewHub[*domain.Listing](onError),
	}
}

func (r *ListingRepository) ListAll(ctx context.Context) (*stream.Subscription[[]domain.Listing], error) {
	return r.lists.Subscribe(ctx, queryAll, func(context.Context) ([]domain.Listing, error) {
		return r.snapshot(func(domain.Listing) bool { return true }), nil
	})
}

func (r *ListingRepository) ListFeatured(ctx context.Context) (*stream.Subscription[[]domain.Listing], error) {
	return r.lists.Subscribe(ctx, queryFeatured, func(context.Context) ([]domain.Listing, error) {
		return r.snapshot(func(l domain.Listing) bool { return l.IsFeatured() }), nil
	})
}

func (r *ListingRepository) GetByID(ctx context.Context, id string) (*stream.Subscription[*domain.Listing], error) {
	return r.items.Subscribe(ctx, id, func(context.Context) (*domain.Listing, error) {
		r.mu.RLock()
		defer r.mu.RUnlock()
		l, ok := r.listings[id]
		if !ok {
			return nil, nil
		}
		clone := l.Clone()
		return &clone, nil
	})
}

func (r *ListingRepository) Create(ctx context.Context, draft domain.ListingDraft) (*domain.Listing, error) {
	r.mu.Lock()
	listing := domain.Listing{
		ID:           uuid.NewString(),
		CreatedAt:    r.nextTimeLocked(),
		ListingDraft: draft,
	}.Clone()
	r.listings[listing.ID] = listing
	r.mu.Unlock()

	contextkeys.LoggerFromContext(ctx).Debug("Listing stored in memory", port.Fields{"listing_id": listing.ID})

	r.invalidate(ctx)
	created := listing.Clone()
	return &created, nil
}

// Seed добавляет готовые объявления; пустые ID и CreatedAt заполняются.
func (r *ListingRepository) Seed(listings ...domain.Listing) {
	r.mu.Lock()
	for _, l := range listings {
		if l.ID == "" {
			l.ID = uuid.NewString()
		}
		if l.CreatedAt.IsZero() {
			l.CreatedAt = r.nextTimeLocked()
		}
		r.listings[l.ID] = l.Clone()
	}
	r.mu.Unlock()

	r.invalidate(context.Background())
}

// Close закрывает все живые запросы.
func (r *ListingRepository) Close() {
	r.lists.Close()
	r.items.Close()
}

func (r *ListingRepository) invalidate(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	r.lists.Invalidate(ctx)
	r.items.Invalidate(ctx)
}

// nextTimeLocked гарантирует строго возрастающее время создания.
func (r *ListingRepository) nextTimeLocked() time.Time {
	t := r.now().UTC()
	if !t.After(r.lastTime) {
		t = r.lastTime.Add(time.Microsecond)
	}
	r.lastTime = t
	return t
}

func (r *ListingRepository) snapshot(keep func(domain.Listing) bool) []domain.Listing {
	r.mu.RLock()
	out := make([]domain.Listing, 0, len(r.listings))
	for _, l := range r.listings {
		if keep(l) {
			out = append(out, l.Clone())
		}
	}
	r.mu.RUnlock()

	domain.SortListings(out)
	return out
}
