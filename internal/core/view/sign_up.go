package view

import (
	"context"
	"strings"

	"github.com/Fvicente04/ca1-real-estate-app/internal/core/domain"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/port"
)

type SignUpState struct {
	Form  FormStatus `json:"form"`
	Email string     `json:"email"`
}

// SignUpController - экран /register. После регистрации сессия сразу
// закрывается, и пользователь входит явно через /login.
type SignUpController struct {
	*base
	deps            Deps
	form            *form
	email           string
	password        string
	confirmPassword string
}

func NewSignUpController(ctx context.Context, deps Deps) *SignUpController {
	deps = deps.withDefaults()
	c := &SignUpController{
		base: newBase(ctx, deps, "sign_up_view"),
		deps: deps,
	}
	c.form = newForm(c.base, deps.Scheduler, signUpTimings)
	return c
}

// validateSignUp проверяет поля до обращения к провайдеру сессии.
func validateSignUp(email, password, confirm string) *domain.ValidationError {
	switch {
	case email == "" || password == "" || confirm == "":
		return &domain.ValidationError{Message: msgSignUpMissingFields}
	case len(password) < domain.MinPasswordLength:
		return &domain.ValidationError{Field: "password", Message: msgPasswordTooShort}
	case password != confirm:
		return &domain.ValidationError{Field: "confirm_password", Message: msgPasswordMismatch}
	}
	return nil
}

func (c *SignUpController) State() SignUpState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return SignUpState{Form: c.form.status, Email: c.email}
}

func (c *SignUpController) Snapshot() any { return c.State() }

func (c *SignUpController) Handle(_ context.Context, action Action) error {
	if action.Name != ActionSubmit {
		return ErrUnsupportedAction
	}

	c.form.submit(func() (*submission, string) {
		setField(&c.email, action.Fields, "email")
		setField(&c.password, action.Fields, "password")
		setField(&c.confirmPassword, action.Fields, "confirm_password")
		email := strings.TrimSpace(c.email)
		password := c.password
		if verr := validateSignUp(email, password, c.confirmPassword); verr != nil {
			return nil, verr.Message
		}
		return &submission{
			call: func(ctx context.Context) error {
				return c.deps.Session.SignUp(ctx, email, password)
			},
			successMessage: msgSignedUp,
			onSuccess: func() {
				c.password = ""
				c.confirmPassword = ""
			},
			afterSuccess: func(ctx context.Context) {
				if err := c.deps.Session.SignOut(ctx); err != nil {
					c.logger.Warn("Sign out after registration failed", port.Fields{"error": err.Error()})
				}
				c.deps.Navigator.Navigate(domain.NewRoute(domain.PathLogin))
			},
			failureMessage: SignUpErrorMessage,
		}, ""
	})
	return nil
}

func (c *SignUpController) Close() { c.close() }
