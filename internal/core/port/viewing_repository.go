package port

import (
	"context"

	"github.com/Fvicente04/ca1-real-estate-app/internal/core/domain"
)

// ViewingRepositoryPort - хранилище заявок на просмотр. Только запись.
type ViewingRepositoryPort interface {
	Create(ctx context.Context, draft domain.ViewingRequestDraft) (*domain.ViewingRequest, error)
}
