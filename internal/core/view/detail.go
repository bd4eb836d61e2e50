package view

import (
	"context"

	"github.com/Fvicente04/ca1-real-estate-app/internal/core/domain"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/port"
)

// RelatedListingsLimit - сколько похожих объявлений показывать на карточке.
const RelatedListingsLimit = 6

type DetailPhase string

const (
	DetailLoading   DetailPhase = "loading"
	DetailPopulated DetailPhase = "populated"
	DetailNotFound  DetailPhase = "not_found"
)

type DetailState struct {
	Phase   DetailPhase   `json:"phase"`
	Listing *ListingCard  `json:"listing,omitempty"`
	Map     *MapView      `json:"map,omitempty"`
	Related []ListingCard `json:"related"`
}

// DetailController - экран /property-detail/:id.
type DetailController struct {
	*base
	deps  Deps
	id    string
	state DetailState

	current        *domain.Listing
	relatedStarted bool
}

func NewDetailController(ctx context.Context, deps Deps, id string) *DetailController {
	deps = deps.withDefaults()
	c := &DetailController{
		base:  newBase(ctx, deps, "detail_view"),
		deps:  deps,
		id:    id,
		state: DetailState{Phase: DetailLoading, Related: []ListingCard{}},
	}
	c.logger = c.logger.WithFields(port.Fields{"listing_id": id})

	if id == "" {
		c.state.Phase = DetailNotFound
		return c
	}
	go c.start()
	return c
}

func (c *DetailController) start() {
	sub, err := c.deps.Listings.GetByID(c.ctx, c.id)
	if err != nil {
		if c.ctx.Err() == nil {
			c.logger.Error("Failed to load listing", err, nil)
		}
		c.mutate(c.markNotFound)
		return
	}
	follow(c.base, sub, c.applyListing, func() {
		if c.state.Phase == DetailLoading {
			c.markNotFound()
		}
	})
}

func (c *DetailController) markNotFound() {
	c.current = nil
	c.state.Phase = DetailNotFound
	c.state.Listing = nil
	c.state.Map = nil
}

func (c *DetailController) applyListing(l *domain.Listing) {
	if l == nil {
		c.markNotFound()
		return
	}

	infoOpen := true
	if c.state.Map != nil {
		infoOpen = c.state.Map.InfoOpen
	}
	card := NewListingCard(*l)
	mv := NewMapView(*l)
	mv.InfoOpen = infoOpen

	c.current = l
	c.state.Phase = DetailPopulated
	c.state.Listing = &card
	c.state.Map = &mv

	// похожие объявления загружаются только для найденного объявления
	if !c.relatedStarted {
		c.relatedStarted = true
		go c.startRelated()
	}
}

func (c *DetailController) startRelated() {
	sub, err := c.deps.Listings.ListAll(c.ctx)
	if err != nil {
		if c.ctx.Err() == nil {
			c.logger.Warn("Failed to load related listings", port.Fields{"error": err.Error()})
		}
		return
	}
	follow(c.base, sub, c.applyRelated, nil)
}

func (c *DetailController) applyRelated(snapshot []domain.Listing) {
	c.state.Related = newListingCards(domain.ExcludeListing(snapshot, c.id, RelatedListingsLimit))
}

func (c *DetailController) State() DetailState {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.state
	if st.Map != nil {
		mv := *st.Map
		st.Map = &mv
	}
	return st
}

func (c *DetailController) Snapshot() any { return c.State() }

func (c *DetailController) Handle(_ context.Context, action Action) error {
	switch action.Name {
	case ActionMarkerClick, ActionCloseInfo:
		open := action.Name == ActionMarkerClick
		c.mutate(func() {
			if c.state.Map != nil {
				mv := *c.state.Map
				mv.InfoOpen = open
				c.state.Map = &mv
			}
		})
		return nil

	case ActionBookViewing:
		c.mu.Lock()
		current := c.current
		c.mu.Unlock()
		if current == nil {
			return nil
		}
		c.deps.Navigator.Navigate(domain.NewRoute(domain.PathContact).WithQuery("property", current.Title))
		return nil

	case ActionOpenRelated, ActionOpenListing:
		id := action.Field("id")
		if id == "" {
			return &domain.ValidationError{Field: "id", Message: "listing id is required"}
		}
		c.deps.Navigator.Navigate(domain.PropertyDetailRoute(id))
		return nil
	}
	return ErrUnsupportedAction
}

func (c *DetailController) Close() { c.close() }
