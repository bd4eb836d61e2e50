package port

import (
	"context"

	"github.com/Fvicente04/ca1-real-estate-app/internal/core/domain"
)

// EventPublisherPort публикует интеграционные события после успешной записи.
type EventPublisherPort interface {
	PublishListingCreated(ctx context.Context, listing domain.Listing) error
	PublishViewingRequested(ctx context.Context, viewing domain.ViewingRequest) error
}
