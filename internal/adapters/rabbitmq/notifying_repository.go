package rabbitmq

import (
	"context"
	"sync"

	"github.com/Fvicente04/ca1-real-estate-app/internal/contextkeys"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/domain"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/port"
)

// backgroundPublisher отправляет событие после записи, не задерживая ответ.
// Ошибка публикации только логируется: запись уже состоялась.
type backgroundPublisher struct {
	wg sync.WaitGroup
}

func (p *backgroundPublisher) publish(ctx context.Context, failure string, fields port.Fields, send func(ctx context.Context) error) {
	// подтверждение брокера может прийти уже после ответа пользователю
	ctx = context.WithoutCancel(ctx)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := send(ctx); err != nil {
			fields["error"] = err.Error()
			contextkeys.LoggerFromContext(ctx).Warn(failure, fields)
		}
	}()
}

// Wait ждет завершения начатых публикаций.
func (p *backgroundPublisher) Wait() {
	p.wg.Wait()
}

// NotifyingListingRepository публикует ListingCreated после успешного Create.
type NotifyingListingRepository struct {
	port.ListingRepositoryPort
	backgroundPublisher
	events port.EventPublisherPort
}

func NewNotifyingListingRepository(next port.ListingRepositoryPort, events port.EventPublisherPort) *NotifyingListingRepository {
	return &NotifyingListingRepository{ListingRepositoryPort: next, events: events}
}

func (r *NotifyingListingRepository) Create(ctx context.Context, draft domain.ListingDraft) (*domain.Listing, error) {
	listing, err := r.ListingRepositoryPort.Create(ctx, draft)
	if err != nil {
		return nil, err
	}
	event := listing.Clone()
	r.publish(ctx, "Listing created but event was not published", port.Fields{"listing_id": listing.ID},
		func(ctx context.Context) error { return r.events.PublishListingCreated(ctx, event) })
	return listing, nil
}

type NotifyingViewingRepository struct {
	backgroundPublisher
	next   port.ViewingRepositoryPort
	events port.EventPublisherPort
}

func NewNotifyingViewingRepository(next port.ViewingRepositoryPort, events port.EventPublisherPort) *NotifyingViewingRepository {
	return &NotifyingViewingRepository{next: next, events: events}
}

func (r *NotifyingViewingRepository) Create(ctx context.Context, draft domain.ViewingRequestDraft) (*domain.ViewingRequest, error) {
	viewing, err := r.next.Create(ctx, draft)
	if err != nil {
		return nil, err
	}
	event := *viewing
	r.publish(ctx, "Viewing request saved but event was not published", port.Fields{"viewing_id": viewing.ID},
		func(ctx context.Context) error { return r.events.PublishViewingRequested(ctx, event) })
	return viewing, nil
}
