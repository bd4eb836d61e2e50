package view

import (
	"context"
	"strings"

	"github.com/Fvicente04/ca1-real-estate-app/internal/core/domain"
)

// SignInState не содержит пароль: он хранится только внутри контроллера.
type SignInState struct {
	Form  FormStatus `json:"form"`
	Email string     `json:"email"`
}

// SignInController - экран /login.
type SignInController struct {
	*base
	deps     Deps
	form     *form
	email    string
	password string
}

func NewSignInController(ctx context.Context, deps Deps) *SignInController {
	deps = deps.withDefaults()
	c := &SignInController{
		base: newBase(ctx, deps, "sign_in_view"),
		deps: deps,
	}
	c.form = newForm(c.base, deps.Scheduler, signInTimings)
	return c
}

func (c *SignInController) State() SignInState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return SignInState{Form: c.form.status, Email: c.email}
}

func (c *SignInController) Snapshot() any { return c.State() }

func (c *SignInController) Handle(_ context.Context, action Action) error {
	if action.Name != ActionSubmit {
		return ErrUnsupportedAction
	}

	c.form.submit(func() (*submission, string) {
		setField(&c.email, action.Fields, "email")
		setField(&c.password, action.Fields, "password")
		email := strings.TrimSpace(c.email)
		password := c.password
		if email == "" || password == "" {
			return nil, msgSignInMissingFields
		}
		return &submission{
			call: func(ctx context.Context) error {
				return c.deps.Session.SignIn(ctx, email, password)
			},
			successMessage: msgSignedIn,
			onSuccess: func() {
				c.password = ""
			},
			afterSuccess: func(context.Context) {
				c.deps.Navigator.Navigate(domain.Route{Path: domain.PathHome, Replace: true})
			},
			failureMessage: SignInErrorMessage,
		}, ""
	})
	return nil
}

func (c *SignInController) Close() { c.close() }
