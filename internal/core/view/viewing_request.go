package view

import (
	"context"
	"strings"

	"github.com/Fvicente04/ca1-real-estate-app/internal/core/domain"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/port"
)

const msgInvalidViewing = "Please fill in all required fields correctly."

type ViewingRequestFields struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Property string `json:"property"`
	Notes    string `json:"notes"`
}

func (f ViewingRequestFields) Draft() domain.ViewingRequestDraft {
	return domain.ViewingRequestDraft{
		Name:     strings.TrimSpace(f.Name),
		Email:    strings.TrimSpace(f.Email),
		Date:     strings.TrimSpace(f.Date),
		Time:     strings.TrimSpace(f.Time),
		Property: strings.TrimSpace(f.Property),
		Notes:    strings.TrimSpace(f.Notes),
	}
}

type ViewingRequestState struct {
	Form   FormStatus           `json:"form"`
	Fields ViewingRequestFields `json:"fields"`
}

// ViewingRequestController - экран /contact. Параметр property маршрута
// предзаполняет поле объекта.
type ViewingRequestController struct {
	*base
	deps   Deps
	form   *form
	fields ViewingRequestFields
}

func NewViewingRequestController(ctx context.Context, deps Deps, route domain.Route) *ViewingRequestController {
	deps = deps.withDefaults()
	c := &ViewingRequestController{
		base: newBase(ctx, deps, "viewing_request_view"),
		deps: deps,
	}
	c.form = newForm(c.base, deps.Scheduler, viewingRequestTimings)
	if property := route.Query["property"]; property != "" {
		c.fields.Property = property
	}
	return c
}

func (c *ViewingRequestController) State() ViewingRequestState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ViewingRequestState{Form: c.form.status, Fields: c.fields}
}

func (c *ViewingRequestController) Snapshot() any { return c.State() }

func (c *ViewingRequestController) Handle(_ context.Context, action Action) error {
	if action.Name != ActionSubmit {
		return ErrUnsupportedAction
	}

	c.form.submit(func() (*submission, string) {
		c.merge(action.Fields)
		draft := c.fields.Draft()
		if err := draft.Validate(); err != nil {
			c.logger.Debug("Viewing request rejected", port.Fields{"reason": err.Error()})
			return nil, msgInvalidViewing
		}
		return &submission{
			call: func(ctx context.Context) error {
				_, err := c.deps.Viewings.Create(ctx, draft)
				return err
			},
			successMessage: msgViewingRequestSent,
			onSuccess: func() {
				c.fields = ViewingRequestFields{}
			},
			failureMessage: storeMessage(msgViewingRequestFailed),
		}, ""
	})
	return nil
}

func (c *ViewingRequestController) merge(fields map[string]string) {
	setField(&c.fields.Name, fields, "name")
	setField(&c.fields.Email, fields, "email")
	setField(&c.fields.Date, fields, "date")
	setField(&c.fields.Time, fields, "time")
	setField(&c.fields.Property, fields, "property")
	setField(&c.fields.Notes, fields, "notes")
}

func (c *ViewingRequestController) Close() { c.close() }
