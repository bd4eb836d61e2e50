package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/Fvicente04/ca1-real-estate-app/internal/core/domain"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/port"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type ViewingRepository struct {
	coll *mongo.Collection
}

var _ port.ViewingRepositoryPort = (*ViewingRepository)(nil)

func NewViewingRepository(db *mongo.Database) (*ViewingRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("mongo.Database cannot be nil")
	}
	return &ViewingRepository{coll: db.Collection(viewingsCollection)}, nil
}

func (r *ViewingRepository) Create(ctx context.Context, draft domain.ViewingRequestDraft) (*domain.ViewingRequest, error) {
	doc := viewingDocument{
		ID:        primitive.NewObjectID(),
		Name:      draft.Name,
		Email:     draft.Email,
		Date:      draft.Date,
		Time:      draft.Time,
		Property:  draft.Property,
		Notes:     draft.Notes,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, domain.NewStoreError(domain.StoreWrite, "CreateViewing", err)
	}
	return &domain.ViewingRequest{
		ID:                  doc.ID.Hex(),
		CreatedAt:           doc.CreatedAt,
		ViewingRequestDraft: draft,
	}, nil
}
