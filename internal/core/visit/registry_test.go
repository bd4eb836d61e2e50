package visit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Fvicente04/ca1-real-estate-app/internal/adapters/memory"
	"github.com/Fvicente04/ca1-real-estate-app/internal/contextkeys"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/domain"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/shell"
	"github.com/Fvicente04/ca1-real-estate-app/internal/stream"
)

type fakeSession struct {
	feed *stream.Feed[*domain.Identity]

	mu     sync.Mutex
	closed bool
}

func newFakeSession() *fakeSession {
	s := &fakeSession{feed: stream.NewFeed[*domain.Identity]()}
	s.feed.Publish(nil)
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
	s.feed.Publish(nil)
	return nil
}

func (s *fakeSession) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.feed.Close()
}

func (s *fakeSession) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type testRegistry struct {
	*Registry
	mu       sync.Mutex
	sessions []*fakeSession
	now      time.Time
}

func newTestRegistry(t *testing.T, idleTTL time.Duration) *testRegistry {
	t.Helper()
	manifests, err := shell.LoadManifests()
	if err != nil {
		t.Fatal(err)
	}
	listings := memory.NewListingRepository(contextkeys.NoopLogger())
	t.Cleanup(listings.Close)

	tr := &testRegistry{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	tr.Registry = NewRegistry(context.Background(), Config{
		Listings: listings,
		Viewings: memory.NewViewingRepository(),
		NewSession: func() Session {
			s := newFakeSession()
			tr.mu.Lock()
			tr.sessions = append(tr.sessions, s)
			tr.mu.Unlock()
			return s
		},
		Manifests: manifests,
		IdleTTL:   idleTTL,
	})
	tr.Registry.now = func() time.Time {
		tr.mu.Lock()
		defer tr.mu.Unlock()
		return tr.now
	}
	t.Cleanup(tr.Shutdown)
	return tr
}

func (tr *testRegistry) advance(d time.Duration) {
	tr.mu.Lock()
	tr.now = tr.now.Add(d)
	tr.mu.Unlock()
}

func TestOpenNavigatesToRoute(t *testing.T) {
	r := newTestRegistry(t, 0)

	v, err := r.Open(domain.NewRoute(domain.PathAbout))
	if err != nil {
		t.Fatal(err)
	}
	if v.ID == "" {
		t.Error("empty visit id")
	}
	if st := v.Shell.State(); st.View != shell.ViewAbout {
		t.Errorf("view: got %s", st.View)
	}
	if got, ok := r.Get(v.ID); !ok || got != v {
		t.Error("visit not found by id")
	}
	if r.Len() != 1 {
		t.Errorf("len: got %d", r.Len())
	}
}

func TestVisitsHaveIndependentSessions(t *testing.T) {
	r := newTestRegistry(t, 0)

	a, _ := r.Open(domain.NewRoute(domain.PathHome))
	b, _ := r.Open(domain.NewRoute(domain.PathHome))
	if a.ID == b.ID {
		t.Fatal("visit ids collide")
	}

	_ = r.sessions[0].SignIn(context.Background(), "a@b.c", "secret1")
	a.Shell.Navigate(domain.NewRoute(domain.PathCreateProperty))
	b.Shell.Navigate(domain.NewRoute(domain.PathCreateProperty))

	if st := a.Shell.State(); st.View != shell.ViewCreateProperty {
		t.Errorf("signed-in visit: got %s", st.View)
	}
	if st := b.Shell.State(); st.View != shell.ViewLogin {
		t.Errorf("anonymous visit: got %s", st.View)
	}
}

func TestCloseReleasesSession(t *testing.T) {
	r := newTestRegistry(t, 0)
	v, _ := r.Open(domain.NewRoute(domain.PathHome))

	if !r.Close(v.ID) {
		t.Fatal("close returned false")
	}
	if !r.sessions[0].IsClosed() {
		t.Error("session not closed with visit")
	}
	if r.Close(v.ID) {
		t.Error("second close returned true")
	}
	if _, ok := r.Get(v.ID); ok {
		t.Error("closed visit still reachable")
	}
}

func TestSweepClosesIdleVisits(t *testing.T) {
	r := newTestRegistry(t, time.Minute)
	idle, _ := r.Open(domain.NewRoute(domain.PathHome))
	active, _ := r.Open(domain.NewRoute(domain.PathHome))
	held, _ := r.Open(domain.NewRoute(domain.PathHome))

	release := r.Hold(held)
	r.advance(50 * time.Second)
	r.Get(active.ID)
	r.advance(20 * time.Second)

	if n := r.Sweep(); n != 1 {
		t.Fatalf("swept %d, want 1", n)
	}
	if _, ok := r.Get(idle.ID); ok {
		t.Error("idle visit survived sweep")
	}
	if _, ok := r.Get(held.ID); !ok {
		t.Error("visit with an open stream was swept")
	}

	// после отпускания отсчет простоя начинается заново
	release()
	release()
	r.advance(30 * time.Second)
	if n := r.Sweep(); n != 0 {
		t.Errorf("swept %d right after release", n)
	}
	r.advance(2 * time.Minute)
	if n := r.Sweep(); n != 2 {
		t.Errorf("swept %d, want 2", n)
	}
}

func TestSweepDisabledWithoutTTL(t *testing.T) {
	r := newTestRegistry(t, 0)
	_, _ = r.Open(domain.NewRoute(domain.PathHome))
	r.advance(24 * time.Hour)
	if n := r.Sweep(); n != 0 {
		t.Errorf("swept %d with TTL disabled", n)
	}
}

func TestShutdownRejectsNewVisits(t *testing.T) {
	r := newTestRegistry(t, 0)
	v, _ := r.Open(domain.NewRoute(domain.PathHome))
	sub := v.Shell.Subscribe()

	r.Shutdown()

	if _, err := r.Open(domain.NewRoute(domain.PathHome)); !errors.Is(err, ErrRegistryClosed) {
		t.Errorf("got %v, want ErrRegistryClosed", err)
	}
	if r.Len() != 0 {
		t.Errorf("len after shutdown: %d", r.Len())
	}

	// подписка на закрытый визит заканчивается
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-sub.C():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("visit stream not closed on shutdown")
		}
	}
}
