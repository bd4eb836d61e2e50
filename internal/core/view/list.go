package view

import (
	"context"

	"github.com/Fvicente04/ca1-real-estate-app/internal/core/domain"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/port"
	"github.com/Fvicente04/ca1-real-estate-app/internal/stream"
)

// ActionOpenListing открывает карточку объявления из списка.
const ActionOpenListing = "open-listing"

const msgListingsUnavailable = "Unable to load properties. Please try again later."

type ListPhase string

const (
	ListLoading   ListPhase = "loading"
	ListPopulated ListPhase = "populated"
	ListEmpty     ListPhase = "empty"
	ListFailed    ListPhase = "failed"
)

// ListState - состояние списка. Featured заполняется только на /home.
type ListState struct {
	Phase    ListPhase     `json:"phase"`
	Listings []ListingCard `json:"listings"`
	Featured []ListingCard `json:"featured,omitempty"`
	Message  string        `json:"message,omitempty"`
}

// ListController показывает живой список всех объявлений (/properties, /home).
// Остается подписанным, пока экран открыт.
type ListController struct {
	*base
	navigator port.NavigatorPort
	state     ListState
	// featured хранится отдельно: снимок списка заменяет state целиком
	featured []ListingCard
}

type listQuery func(ctx context.Context) (*stream.Subscription[[]domain.Listing], error)

// NewIndexController - экран /properties.
func NewIndexController(ctx context.Context, deps Deps) *ListController {
	deps = deps.withDefaults()
	c := newListController(ctx, deps, "index_view")
	go c.start(deps.Listings.ListAll)
	return c
}

// NewHomeController - экран /home: все объявления и отдельная полоса избранных.
func NewHomeController(ctx context.Context, deps Deps) *ListController {
	deps = deps.withDefaults()
	c := newListController(ctx, deps, "home_view")
	go c.start(deps.Listings.ListAll)
	go c.startFeatured(deps.Listings.ListFeatured)
	return c
}

func newListController(ctx context.Context, deps Deps, component string) *ListController {
	return &ListController{
		base:      newBase(ctx, deps, component),
		navigator: deps.Navigator,
		state:     ListState{Phase: ListLoading, Listings: []ListingCard{}},
	}
}

func (c *ListController) start(query listQuery) {
	sub, err := query(c.ctx)
	if err != nil {
		if c.ctx.Err() == nil {
			c.logger.Error("Failed to subscribe to listings", err, nil)
		}
		c.mutate(c.markFailed)
		return
	}
	follow(c.base, sub, c.apply, func() {
		if c.state.Phase == ListLoading {
			c.markFailed()
		}
	})
}

// startFeatured подписывает полосу избранных. Ее сбой не влияет на основной список.
func (c *ListController) startFeatured(query listQuery) {
	sub, err := query(c.ctx)
	if err != nil {
		if c.ctx.Err() == nil {
			c.logger.Warn("Failed to subscribe to featured listings", port.Fields{"error": err.Error()})
		}
		return
	}
	follow(c.base, sub, func(snapshot []domain.Listing) {
		c.featured = newListingCards(snapshot)
		c.state.Featured = c.featured
	}, nil)
}

func (c *ListController) markFailed() {
	c.state = ListState{Phase: ListFailed, Listings: []ListingCard{}, Featured: c.featured, Message: msgListingsUnavailable}
}

// apply заменяет список целиком новым снимком.
func (c *ListController) apply(snapshot []domain.Listing) {
	if len(snapshot) == 0 {
		c.state = ListState{Phase: ListEmpty, Listings: []ListingCard{}, Featured: c.featured}
		return
	}
	c.state = ListState{Phase: ListPopulated, Listings: newListingCards(snapshot), Featured: c.featured}
}

func (c *ListController) State() ListState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *ListController) Snapshot() any { return c.State() }

func (c *ListController) Handle(_ context.Context, action Action) error {
	if action.Name != ActionOpenListing {
		return ErrUnsupportedAction
	}
	id := action.Field("id")
	if id == "" {
		return &domain.ValidationError{Field: "id", Message: "listing id is required"}
	}
	c.navigator.Navigate(domain.PropertyDetailRoute(id))
	return nil
}

func (c *ListController) Close() { c.close() }
