package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Fvicente04/ca1-real-estate-app/internal/contextkeys"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/domain"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/port"
	"github.com/Fvicente04/ca1-real-estate-app/internal/stream"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	queryAll      = "all"
	queryFeatured = "featured"

	watchRetryDelay = 2 * time.Second
)

var listingSort = bson.D{{Key: "Price", Value: -1}, {Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}

// ListingRepository хранит объявления в коллекции properties. Живые запросы
// перезапрашиваются после собственной записи и по событиям change stream.
type ListingRepository struct {
	coll   *mongo.Collection
	logger port.LoggerPort
	now    func() time.Time

	lists *stream.Hub[[]domain.Listing]
	items *stream.Hub[*domain.Listing]
}

var _ port.ListingRepositoryPort = (*ListingRepository)(nil)

func NewListingRepository(db *mongo.Database, logger port.LoggerPort) (*ListingRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("mongo.Database cannot be nil")
	}
	repoLogger := logger.WithFields(port.Fields{"component": "MongoListingRepository"})
	onError := func(key string, err error) {
		repoLogger.Error("Failed to refresh live query", err, port.Fields{"query": key})
	}
	return &ListingRepository{
		coll:   db.Collection(propertiesCollection),
		logger: repoLogger,
		now:    time.Now,
		lists:  stream.NewHub[[]domain.Listing](onError),
		items:  stream.NewHub[*domain.Listing](onError),
	}, nil
}

func (r *ListingRepository) ListAll(ctx context.Context) (*stream.Subscription[[]domain.Listing], error) {
	return r.lists.Subscribe(ctx, queryAll, func(ctx context.Context) ([]domain.Listing, error) {
		return r.find(ctx, "ListAll", bson.D{})
	})
}

func (r *ListingRepository) ListFeatured(ctx context.Context) (*stream.Subscription[[]domain.Listing], error) {
	return r.lists.Subscribe(ctx, queryFeatured, func(ctx context.Context) ([]domain.Listing, error) {
		return r.find(ctx, "ListFeatured", bson.D{{Key: "Featured", Value: true}})
	})
}

func (r *ListingRepository) GetByID(ctx context.Context, id string) (*stream.Subscription[*domain.Listing], error) {
	return r.items.Subscribe(ctx, id, func(ctx context.Context) (*domain.Listing, error) {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, nil
		}
		var doc listingDocument
		err = r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		if err != nil {
			return nil, domain.NewStoreError(domain.StoreRead, "GetByID", err)
		}
		l := doc.toDomain()
		return &l, nil
	})
}

func (r *ListingRepository) Create(ctx context.Context, draft domain.ListingDraft) (*domain.Listing, error) {
	images := draft.Images
	if images == nil {
		images = []string{}
	}
	doc := listingDocument{
		ID:          primitive.NewObjectID(),
		Title:       draft.Title,
		Price:       draft.Price,
		Location:    draft.Location,
		Bedrooms:    draft.Bedrooms,
		Bathrooms:   draft.Bathrooms,
		Area:        draft.Area,
		Description: draft.Description,
		Images:      images,
		Featured:    draft.Featured,
		// точность BSON date - миллисекунды
		CreatedAt: r.now().UTC().Truncate(time.Millisecond),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Failed to insert listing", err, port.Fields{"component": "MongoListingRepository"})
		return nil, domain.NewStoreError(domain.StoreWrite, "Create", err)
	}

	r.invalidate(ctx)
	l := doc.toDomain()
	return &l, nil
}

// EnsureIndexes создает индекс под порядок выдачи.
func (r *ListingRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "Price", Value: -1}, {Key: "createdAt", Value: 1}},
		Options: options.Index().SetName("price_created_idx"),
	})
	if err != nil {
		return fmt.Errorf("failed to create properties index: %w", err)
	}
	return nil
}

// Watch читает change stream коллекции и перезапрашивает живые запросы.
// Change stream требует replica set; без него Watch повторяет попытки до отмены ctx.
func (r *ListingRepository) Watch(ctx context.Context) error {
	for {
		err := r.watchOnce(ctx)
		if ctx.Err() != nil {
			return nil
		}
		r.logger.Warn("Change stream stopped, reopening", port.Fields{"error": fmt.Sprint(err)})

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(watchRetryDelay):
		}
		r.invalidate(ctx)
	}
}

func (r *ListingRepository) watchOnce(ctx context.Context) error {
	cs, err := r.coll.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return fmt.Errorf("failed to open change stream: %w", err)
	}
	defer cs.Close(context.Background())

	r.logger.Info("Watching listing changes", port.Fields{"collection": propertiesCollection})
	for cs.Next(ctx) {
		r.invalidate(ctx)
	}
	return cs.Err()
}

func (r *ListingRepository) Close() {
	r.lists.Close()
	r.items.Close()
}

func (r *ListingRepository) invalidate(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	r.lists.Invalidate(ctx)
	r.items.Invalidate(ctx)
}

func (r *ListingRepository) find(ctx context.Context, op string, filter bson.D) ([]domain.Listing, error) {
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(listingSort))
	if err != nil {
		return nil, domain.NewStoreError(domain.StoreRead, op, err)
	}
	defer cursor.Close(ctx)

	listings := make([]domain.Listing, 0)
	for cursor.Next(ctx) {
		var doc listingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, domain.NewStoreError(domain.StoreRead, op, fmt.Errorf("failed to decode listing: %w", err))
		}
		listings = append(listings, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, domain.NewStoreError(domain.StoreRead, op, err)
	}
	return listings, nil
}
