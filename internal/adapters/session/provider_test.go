package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Fvicente04/ca1-real-estate-app/internal/contextkeys"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/domain"
	"github.com/Fvicente04/ca1-real-estate-app/internal/stream"
)

// fakeBackend выдает сессии без проверки пароля.
type fakeBackend struct {
	mu          sync.Mutex
	loginErr    error
	validateErr error
	revoked     []string
	ttl         time.Duration
}

func (b *fakeBackend) issue(email string) *domain.Identity {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := &domain.Identity{UserID: "u-" + email, Email: email, Token: "token-" + email}
	if b.ttl > 0 {
		id.ExpiresAt = time.Now().Add(b.ttl)
	}
	return id
}

func (b *fakeBackend) Register(_ context.Context, email, _ string) (*domain.Identity, error) {
	return b.issue(email), nil
}

func (b *fakeBackend) Login(_ context.Context, email, _ string) (*domain.Identity, error) {
	b.mu.Lock()
	err := b.loginErr
	b.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return b.issue(email), nil
}

func (b *fakeBackend) Validate(context.Context, string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.validateErr
}

func (b *fakeBackend) Revoke(_ context.Context, token string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revoked = append(b.revoked, token)
	return nil
}

func (b *fakeBackend) setValidateErr(err error) {
	b.mu.Lock()
	b.validateErr = err
	b.mu.Unlock()
}

func next(t *testing.T, sub *stream.Subscription[*domain.Identity]) *domain.Identity {
	t.Helper()
	select {
	case v, ok := <-sub.C():
		if !ok {
			t.Fatal("subscription closed")
		}
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("no session value received")
	}
	return nil
}

func TestCurrentSessionStartsSignedOut(t *testing.T) {
	p := NewProvider(&fakeBackend{}, Config{}, contextkeys.NoopLogger())
	defer p.Close()

	sub := p.CurrentSession()
	defer sub.Close()
	if got := next(t, sub); got != nil {
		t.Errorf("got %+v, want no session", got)
	}
}

func TestSignInSignOut(t *testing.T) {
	backend := &fakeBackend{}
	p := NewProvider(backend, Config{}, contextkeys.NoopLogger())
	defer p.Close()

	sub := p.CurrentSession()
	defer sub.Close()
	next(t, sub)

	if err := p.SignIn(context.Background(), "a@b.c", "secret1"); err != nil {
		t.Fatal(err)
	}
	if got := next(t, sub); got == nil || got.Email != "a@b.c" {
		t.Fatalf("after sign in: got %+v", got)
	}

	if err := p.SignOut(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := next(t, sub); got != nil {
		t.Errorf("after sign out: got %+v", got)
	}
	if len(backend.revoked) != 1 || backend.revoked[0] != "token-a@b.c" {
		t.Errorf("revoked: %v", backend.revoked)
	}

	// повторный выход ничего не делает
	if err := p.SignOut(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(backend.revoked) != 1 {
		t.Errorf("second sign out revoked again: %v", backend.revoked)
	}
}

func TestSignInFailureKeepsSession(t *testing.T) {
	backend := &fakeBackend{loginErr: domain.NewAuthError(domain.AuthReasonWrongPassword, nil)}
	p := NewProvider(backend, Config{}, contextkeys.NoopLogger())
	defer p.Close()

	err := p.SignIn(context.Background(), "a@b.c", "bad")
	if reason, _ := domain.AuthReasonOf(err); reason != domain.AuthReasonWrongPassword {
		t.Errorf("got %v", err)
	}
	if p.Identity() != nil {
		t.Error("failed sign in must not set a session")
	}
}

func TestSessionExpires(t *testing.T) {
	p := NewProvider(&fakeBackend{ttl: 30 * time.Millisecond}, Config{}, contextkeys.NoopLogger())
	defer p.Close()

	sub := p.CurrentSession()
	defer sub.Close()
	next(t, sub)

	if err := p.SignUp(context.Background(), "a@b.c", "secret1"); err != nil {
		t.Fatal(err)
	}
	if got := next(t, sub); got == nil {
		t.Fatal("expected session after sign up")
	}
	if got := next(t, sub); got != nil {
		t.Errorf("expected session to expire, got %+v", got)
	}
}

func TestRevalidationClearsRevokedSession(t *testing.T) {
	backend := &fakeBackend{}
	p := NewProvider(backend, Config{RevalidateInterval: 10 * time.Millisecond}, contextkeys.NoopLogger())
	defer p.Close()

	if err := p.SignIn(context.Background(), "a@b.c", "secret1"); err != nil {
		t.Fatal(err)
	}

	// недоступный бэкенд не сбрасывает сессию
	backend.setValidateErr(errors.New("connection refused"))
	time.Sleep(40 * time.Millisecond)
	if p.Identity() == nil {
		t.Fatal("session dropped on transient backend failure")
	}

	backend.setValidateErr(domain.ErrTokenInvalid)
	deadline := time.Now().Add(2 * time.Second)
	for p.Identity() != nil {
		if time.Now().After(deadline) {
			t.Fatal("revoked session was not cleared")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestCloseEndsSubscriptions(t *testing.T) {
	p := NewProvider(&fakeBackend{}, Config{}, contextkeys.NoopLogger())
	sub := p.CurrentSession()
	next(t, sub)
	p.Close()

	select {
	case _, ok := <-sub.C():
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("subscription not closed")
	}
}
