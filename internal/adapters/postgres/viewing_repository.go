package postgres

import (
	"context"
	"fmt"

	"github.com/Fvicente04/ca1-real-estate-app/internal/core/domain"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/port"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ViewingRepository struct {
	pool *pgxpool.Pool
}

var _ port.ViewingRepositoryPort = (*ViewingRepository)(nil)

func NewViewingRepository(pool *pgxpool.Pool) (*ViewingRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &ViewingRepository{pool: pool}, nil
}

func (r *ViewingRepository) Create(ctx context.Context, draft domain.ViewingRequestDraft) (*domain.ViewingRequest, error) {
	v := domain.ViewingRequest{ID: uuid.NewString(), ViewingRequestDraft: draft}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO viewings (id, name, email, date, time, property, notes, "createdAt")
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		RETURNING "createdAt"`,
		v.ID, draft.Name, draft.Email, draft.Date, draft.Time, draft.Property, draft.Notes,
	).Scan(&v.CreatedAt)
	if err != nil {
		return nil, domain.NewStoreError(domain.StoreWrite, "CreateViewing", err)
	}
	v.CreatedAt = v.CreatedAt.UTC()
	return &v, nil
}
