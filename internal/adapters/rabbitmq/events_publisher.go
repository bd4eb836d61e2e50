package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Fvicente04/ca1-real-estate-app/internal/constants"
	"github.com/Fvicente04/ca1-real-estate-app/internal/contextkeys"
	"github.com/Fvicente04/ca1-real-estate-app/internal/contracts"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/domain"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/port"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 10 * time.Second

// MessagePublisher - то, что адаптеру нужно от rabbitmq_producer.Publisher.
type MessagePublisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

// ListingDTO - объявление в теле события, имена полей как в хранилище.
type ListingDTO struct {
	ID          string    `json:"id"`
	Title       string    `json:"Title"`
	Price       float64   `json:"Price"`
	Location    string    `json:"Location"`
	Bedrooms    int       `json:"Bedrooms"`
	Bathrooms   int       `json:"Bathrooms"`
	Area        float64   `json:"Area"`
	Description string    `json:"Description"`
	Images      []string  `json:"Images"`
	Featured    *bool     `json:"Featured,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type ViewingDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Property  string    `json:"property"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type ListingCreatedEventDTO struct {
	EventID    uuid.UUID  `json:"event_id"`
	OccurredAt time.Time  `json:"occurred_at"`
	Listing    ListingDTO `json:"listing"`
}

type ViewingRequestedEventDTO struct {
	EventID    uuid.UUID  `json:"event_id"`
	OccurredAt time.Time  `json:"occurred_at"`
	Viewing    ViewingDTO `json:"viewing"`
}

// EventsPublisherAdapter публикует события о созданных объявлениях и заявках.
// Тело каждого события проверяется по JSON-схеме до отправки.
type EventsPublisherAdapter struct {
	producer MessagePublisher
	schemas  *contracts.Registry
	now      func() time.Time
}

var _ port.EventPublisherPort = (*EventsPublisherAdapter)(nil)

func NewEventsPublisherAdapter(producer MessagePublisher, schemas *contracts.Registry) (*EventsPublisherAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	if schemas == nil {
		return nil, fmt.Errorf("rabbitmq adapter: schema registry cannot be nil")
	}
	return &EventsPublisherAdapter{producer: producer, schemas: schemas, now: time.Now}, nil
}

func (a *EventsPublisherAdapter) PublishListingCreated(ctx context.Context, listing domain.Listing) error {
	dto := ListingCreatedEventDTO{
		EventID:    uuid.New(),
		OccurredAt: a.now().UTC(),
		Listing:    NewListingDTO(listing),
	}
	return a.publish(ctx, constants.RoutingKeyListingCreated, contracts.ListingCreatedEvent, dto)
}

func (a *EventsPublisherAdapter) PublishViewingRequested(ctx context.Context, viewing domain.ViewingRequest) error {
	dto := ViewingRequestedEventDTO{
		EventID:    uuid.New(),
		OccurredAt: a.now().UTC(),
		Viewing:    NewViewingDTO(viewing),
	}
	return a.publish(ctx, constants.RoutingKeyViewingRequested, contracts.ViewingRequestedEvent, dto)
}

func (a *EventsPublisherAdapter) publish(ctx context.Context, routingKey, eventType string, dto any) error {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "EventsPublisherAdapter",
		"routing_key": routingKey,
		"event_type":  eventType,
	})

	body, err := json.Marshal(dto)
	if err != nil {
		return fmt.Errorf("rabbitmq adapter: failed to marshal %s: %w", eventType, err)
	}
	if err := a.schemas.Validate(eventType, contracts.EventVersion1, body); err != nil {
		logger.Error("Event does not match its schema, not published", err, nil)
		return fmt.Errorf("rabbitmq adapter: %s: %w", eventType, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    a.now(),
		Type:         eventType,
		Headers: amqp.Table{
			constants.HeaderEventType:    eventType,
			constants.HeaderEventVersion: contracts.EventVersion1,
		},
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		msg.Headers[constants.HeaderTraceID] = traceID
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := a.producer.Publish(publishCtx, routingKey, msg); err != nil {
		logger.Error("Failed to publish event", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to publish %s: %w", eventType, err)
	}
	logger.Debug("Event published", nil)
	return nil
}

func NewListingDTO(l domain.Listing) ListingDTO {
	images := l.Images
	if images == nil {
		images = []string{}
	}
	return ListingDTO{
		ID:          l.ID,
		Title:       l.Title,
		Price:       l.Price,
		Location:    l.Location,
		Bedrooms:    l.Bedrooms,
		Bathrooms:   l.Bathrooms,
		Area:        l.Area,
		Description: l.Description,
		Images:      images,
		Featured:    l.Featured,
		CreatedAt:   l.CreatedAt.UTC(),
	}
}

func NewViewingDTO(v domain.ViewingRequest) ViewingDTO {
	return ViewingDTO{
		ID:        v.ID,
		Name:      v.Name,
		Email:     v.Email,
		Date:      v.Date,
		Time:      v.Time,
		Property:  v.Property,
		Notes:     v.Notes,
		CreatedAt: v.CreatedAt.UTC(),
	}
}
