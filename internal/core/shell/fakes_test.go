package shell

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Fvicente04/ca1-real-estate-app/internal/adapters/memory"
	"github.com/Fvicente04/ca1-real-estate-app/internal/contextkeys"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/domain"
	"github.com/Fvicente04/ca1-real-estate-app/internal/stream"
)

// fakeSession - сессия, которой управляет тест.
type fakeSession struct {
	feed *stream.Feed[*domain.Identity]

	mu       sync.Mutex
	signOuts int
}

func newFakeSession(identity *domain.Identity) *fakeSession {
	s := &fakeSession{feed: stream.NewFeed[*domain.Identity]()}
	s.feed.Publish(identity)
	return s
}

func (s *fakeSession) CurrentSession() *stream.Subscription[*domain.Identity] {
	return s.feed.Subscribe()
}

func (s *fakeSession) SignIn(_ context.Context, email, _ string) error {
	s.feed.Publish(&domain.Identity{UserID: "u1", Email: email})
	return nil
}

func (s *fakeSession) SignUp(ctx context.Context, email, password string) error {
	return s.SignIn(ctx, email, password)
}

func (s *fakeSession) SignOut(context.Context) error {
	s.mu.Lock()
	s.signOuts++
	s.mu.Unlock()
	s.feed.Publish(nil)
	return nil
}

func (s *fakeSession) SignOuts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signOuts
}

func newTestShell(t *testing.T, session *fakeSession) *Shell {
	t.Helper()
	manifests, err := LoadManifests()
	if err != nil {
		t.Fatal(err)
	}
	listings := memory.NewListingRepository(contextkeys.NoopLogger())
	t.Cleanup(listings.Close)

	s := New(context.Background(), Config{
		Listings:  listings,
		Viewings:  memory.NewViewingRepository(),
		Session:   session,
		Manifests: manifests,
		Logger:    contextkeys.NoopLogger(),
	})
	t.Cleanup(s.Close)
	return s
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
