package constants

// Обменник и ключи маршрутизации интеграционных событий.
const (
	EventsExchange     = "listing_browser_events"
	EventsExchangeType = "topic"

	RoutingKeyListingCreated   = "listing.created"
	RoutingKeyViewingRequested = "viewing.requested"
)

// Заголовки сообщений.
const (
	HeaderTraceID      = "x-trace-id"
	HeaderEventType    = "x-event-type"
	HeaderEventVersion = "x-event-version"
)
