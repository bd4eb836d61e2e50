package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Fvicente04/ca1-real-estate-app/internal/contextkeys"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/domain"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/port"
	"github.com/Fvicente04/ca1-real-estate-app/internal/stream"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ChangesChannel - канал LISTEN/NOTIFY, в который пишется каждое изменение properties.
const ChangesChannel = "properties_changed"

const (
	queryAll      = "all"
	queryFeatured = "featured"

	listingColumns = `id, "Title", "Price", "Location", "Bedrooms", "Bathrooms", "Area",
		"Description", "Images", "Featured", "createdAt"`
	listingOrder = `ORDER BY "Price" DESC, "createdAt" ASC, id ASC`

	watchRetryDelay = 2 * time.Second
)

// ListingRepository хранит объявления в таблице properties. Живые запросы
// перезапрашиваются после собственной записи и по уведомлениям ChangesChannel.
type ListingRepository struct {
	pool   *pgxpool.Pool
	logger port.LoggerPort

	lists *stream.Hub[[]domain.Listing]
	items *stream.Hub[*domain.Listing]
}

var _ port.ListingRepositoryPort = (*ListingRepository)(nil)

func NewListingRepository(pool *pgxpool.Pool, logger port.LoggerPort) (*ListingRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	repoLogger := logger.WithFields(port.Fields{"component": "PostgresListingRepository"})
	onError := func(key string, err error) {
		repoLogger.Error("Failed to refresh live query", err, port.Fields{"query": key})
	}
	return &ListingRepository{
		pool:   pool,
		logger: repoLogger,
		lists:  stream.NewHub[[]domain.Listing](onError),
		items:  stream.NewHub[*domain.Listing](onError),
	}, nil
}

func (r *ListingRepository) ListAll(ctx context.Context) (*stream.Subscription[[]domain.Listing], error) {
	return r.lists.Subscribe(ctx, queryAll, func(ctx context.Context) ([]domain.Listing, error) {
		return r.query(ctx, "ListAll", `SELECT `+listingColumns+` FROM properties `+listingOrder)
	})
}

func (r *ListingRepository) ListFeatured(ctx context.Context) (*stream.Subscription[[]domain.Listing], error) {
	return r.lists.Subscribe(ctx, queryFeatured, func(ctx context.Context) ([]domain.Listing, error) {
		return r.query(ctx, "ListFeatured", `SELECT `+listingColumns+` FROM properties WHERE "Featured" IS TRUE `+listingOrder)
	})
}

func (r *ListingRepository) GetByID(ctx context.Context, id string) (*stream.Subscription[*domain.Listing], error) {
	return r.items.Subscribe(ctx, id, func(ctx context.Context) (*domain.Listing, error) {
		// чужой формат id - просто "не найдено", а не ошибка хранилища
		if _, err := uuid.Parse(id); err != nil {
			return nil, nil
		}
		row := r.pool.QueryRow(ctx, `SELECT `+listingColumns+` FROM properties WHERE id = $1`, id)
		l, err := scanListing(row)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, domain.NewStoreError(domain.StoreRead, "GetByID", err)
		}
		return &l, nil
	})
}

// Create вставляет объявление и уведомляет ChangesChannel в той же транзакции.
func (r *ListingRepository) Create(ctx context.Context, draft domain.ListingDraft) (*domain.Listing, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresListingRepository",
		"method":    "Create",
	})

	images := draft.Images
	if images == nil {
		images = []string{}
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, domain.NewStoreError(domain.StoreWrite, "Create", fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback(ctx)

	listing := domain.Listing{ID: uuid.NewString(), ListingDraft: draft}
	listing.Images = images
	err = tx.QueryRow(ctx, `
		INSERT INTO properties (id, "Title", "Price", "Location", "Bedrooms", "Bathrooms", "Area",
			"Description", "Images", "Featured", "createdAt")
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, clock_timestamp())
		RETURNING "createdAt"`,
		listing.ID, draft.Title, draft.Price, draft.Location, draft.Bedrooms, draft.Bathrooms, draft.Area,
		draft.Description, images, draft.Featured,
	).Scan(&listing.CreatedAt)
	if err != nil {
		logger.Error("Failed to insert listing", err, nil)
		return nil, domain.NewStoreError(domain.StoreWrite, "Create", err)
	}

	if _, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, ChangesChannel, listing.ID); err != nil {
		return nil, domain.NewStoreError(domain.StoreWrite, "Create", fmt.Errorf("failed to notify: %w", err))
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, domain.NewStoreError(domain.StoreWrite, "Create", fmt.Errorf("failed to commit transaction: %w", err))
	}

	logger.Info("Listing created", port.Fields{"listing_id": listing.ID})
	listing.CreatedAt = listing.CreatedAt.UTC()

	r.invalidate(ctx)
	return &listing, nil
}

// Watch слушает ChangesChannel и перезапрашивает живые запросы при каждом
// уведомлении. Блокирует до отмены ctx; при обрыве соединения переподключается.
func (r *ListingRepository) Watch(ctx context.Context) error {
	for {
		err := r.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		r.logger.Warn("Change listener stopped, reconnecting", port.Fields{"error": fmt.Sprint(err)})

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(watchRetryDelay):
		}
		// за время переподключения могли пропустить изменения
		r.invalidate(ctx)
	}
}

func (r *ListingRepository) listen(ctx context.Context) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{ChangesChannel}.Sanitize()); err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	r.logger.Info("Listening for listing changes", port.Fields{"channel": ChangesChannel})

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		r.logger.Debug("Listing change notification", port.Fields{"payload": n.Payload})
		r.invalidate(ctx)
	}
}

// Close закрывает живые запросы. Пул закрывает владелец.
func (r *ListingRepository) Close() {
	r.lists.Close()
	r.items.Close()
}

func (r *ListingRepository) invalidate(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	r.lists.Invalidate(ctx)
	r.items.Invalidate(ctx)
}

func (r *ListingRepository) query(ctx context.Context, op, sql string) ([]domain.Listing, error) {
	rows, err := r.pool.Query(ctx, sql)
	if err != nil {
		return nil, domain.NewStoreError(domain.StoreRead, op, err)
	}
	defer rows.Close()

	listings := make([]domain.Listing, 0)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, domain.NewStoreError(domain.StoreRead, op, fmt.Errorf("failed to scan listing: %w", err))
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError(domain.StoreRead, op, err)
	}
	return listings, nil
}

func scanListing(row pgx.Row) (domain.Listing, error) {
	var l domain.Listing
	err := row.Scan(
		&l.ID, &l.Title, &l.Price, &l.Location, &l.Bedrooms, &l.Bathrooms, &l.Area,
		&l.Description, &l.Images, &l.Featured, &l.CreatedAt,
	)
	l.CreatedAt = l.CreatedAt.UTC()
	return l, err
}
