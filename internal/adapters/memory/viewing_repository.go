package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Fvicente04/ca1-real-estate-app/internal/core/domain"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/port"
	"github.com/google/uuid"
)

type ViewingRepository struct {
	mu       sync.Mutex
	viewings []domain.ViewingRequest
}

var _ port.ViewingRepositoryPort = (*ViewingRepository)(nil)

func NewViewingRepository() *ViewingRepository {
	return &ViewingRepository{}
}

func (r *ViewingRepository) Create(_ context.Context, draft domain.ViewingRequestDraft) (*domain.ViewingRequest, error) {
	v := domain.ViewingRequest{
		ID:                  uuid.NewString(),
		CreatedAt:           time.Now().UTC(),
		ViewingRequestDraft: draft,
	}

	r.mu.Lock()
	r.viewings = append(r.viewings, v)
	r.mu.Unlock()

	return &v, nil
}

// All возвращает сохраненные заявки в порядке поступления.
func (r *ViewingRepository) All() []domain.ViewingRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.ViewingRequest(nil), r.viewings...)
}
