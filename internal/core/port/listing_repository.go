package port

import (
	"context"

	"github.com/Fvicente04/ca1-real-estate-app/internal/core/domain"
	"github.com/Fvicente04/ca1-real-estate-app/internal/stream"
)

// ListingRepositoryPort - доступ к коллекции объявлений.
//
// Методы чтения возвращают живую подписку: текущий снимок приходит сразу,
// затем полная замена при каждом изменении коллекции. Подписку закрывает вызывающий.
type ListingRepositoryPort interface {
	// ListAll - все объявления по убыванию цены, при равной цене - по времени создания.
	ListAll(ctx context.Context) (*stream.Subscription[[]domain.Listing], error)
	// ListFeatured - то же самое, но только объявления с Featured = true.
	ListFeatured(ctx context.Context) (*stream.Subscription[[]domain.Listing], error)
	// GetByID - живой поток одного объявления. nil в потоке означает "не найдено".
	GetByID(ctx context.Context, id string) (*stream.Subscription[*domain.Listing], error)
	// Create сохраняет черновик. Валидацию выполняет вызывающий.
	Create(ctx context.Context, draft domain.ListingDraft) (*domain.Listing, error)
}
