package view

import (
	"context"
	"strconv"
	"strings"

	"github.com/Fvicente04/ca1-real-estate-app/internal/core/domain"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/port"
)

// CreateListingFields - поля формы в том виде, в котором их ввел пользователь.
// Images - URL через запятую.
type CreateListingFields struct {
	Title       string `json:"title"`
	Price       string `json:"price"`
	Location    string `json:"location"`
	Bedrooms    string `json:"bedrooms"`
	Bathrooms   string `json:"bathrooms"`
	Area        string `json:"area"`
	Description string `json:"description"`
	Images      string `json:"images"`
	Featured    string `json:"featured"`
}

type CreateListingState struct {
	Form   FormStatus          `json:"form"`
	Fields CreateListingFields `json:"fields"`
}

// CreateListingController - защищенный экран /create-property.
type CreateListingController struct {
	*base
	deps   Deps
	form   *form
	fields CreateListingFields
}

func NewCreateListingController(ctx context.Context, deps Deps) *CreateListingController {
	deps = deps.withDefaults()
	c := &CreateListingController{
		base: newBase(ctx, deps, "create_listing_view"),
		deps: deps,
	}
	c.form = newForm(c.base, deps.Scheduler, createListingTimings)
	return c
}

// Draft собирает черновик из полей формы.
func (f CreateListingFields) Draft() (domain.ListingDraft, error) {
	price, okPrice := parseNumber(f.Price)
	area, okArea := parseNumber(f.Area)
	bedrooms, okBedrooms := parseCount(f.Bedrooms)
	bathrooms, okBathrooms := parseCount(f.Bathrooms)
	if !okPrice || !okArea || !okBedrooms || !okBathrooms {
		return domain.ListingDraft{}, &domain.ValidationError{Message: "numeric fields must be numbers"}
	}

	draft := domain.ListingDraft{
		Title:       strings.TrimSpace(f.Title),
		Price:       price,
		Location:    strings.TrimSpace(f.Location),
		Bedrooms:    bedrooms,
		Bathrooms:   bathrooms,
		Area:        area,
		Description: strings.TrimSpace(f.Description),
		Images:      domain.ParseImageList(f.Images),
	}
	if raw := strings.TrimSpace(f.Featured); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			return domain.ListingDraft{}, &domain.ValidationError{Field: "featured", Message: "featured must be true or false"}
		}
		draft.Featured = &featured
	}
	return draft, draft.Validate()
}

func (c *CreateListingController) State() CreateListingState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CreateListingState{Form: c.form.status, Fields: c.fields}
}

func (c *CreateListingController) Snapshot() any { return c.State() }

func (c *CreateListingController) Handle(_ context.Context, action Action) error {
	switch action.Name {
	case ActionSubmit:
		c.form.submit(func() (*submission, string) {
			c.merge(action.Fields)
			draft, err := c.fields.Draft()
			if err != nil {
				c.logger.Debug("Listing form rejected", port.Fields{"reason": err.Error()})
				return nil, msgInvalidListing
			}
			return &submission{
				call: func(ctx context.Context) error {
					_, err := c.deps.Listings.Create(ctx, draft)
					return err
				},
				successMessage: msgListingCreated,
				afterSuccessDisplay: func() {
					c.deps.Navigator.Navigate(domain.NewRoute(domain.PathProperties))
				},
				failureMessage: storeMessage(msgCreateListingFailed),
			}, ""
		})
		return nil

	case ActionCancel:
		c.deps.Navigator.Navigate(domain.NewRoute(domain.PathProperties))
		return nil
	}
	return ErrUnsupportedAction
}

func (c *CreateListingController) merge(fields map[string]string) {
	setField(&c.fields.Title, fields, "title")
	setField(&c.fields.Price, fields, "price")
	setField(&c.fields.Location, fields, "location")
	setField(&c.fields.Bedrooms, fields, "bedrooms")
	setField(&c.fields.Bathrooms, fields, "bathrooms")
	setField(&c.fields.Area, fields, "area")
	setField(&c.fields.Description, fields, "description")
	setField(&c.fields.Images, fields, "images")
	setField(&c.fields.Featured, fields, "featured")
}

func (c *CreateListingController) Close() { c.close() }
