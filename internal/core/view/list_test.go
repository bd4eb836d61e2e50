package view

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/Fvicente04/ca1-real-estate-app/internal/core/domain"
)

func TestIndexControllerFollowsSnapshots(t *testing.T) {
	h := newHarness()
	c := NewIndexController(context.Background(), h.deps())
	defer c.Close()

	if got := c.State().Phase; got != ListLoading {
		t.Fatalf("initial phase: got %s, want loading", got)
	}

	h.listings.all.Publish([]domain.Listing{
		listing("a", "Penthouse", 900000, "Dublin 2"),
		listing("b", "Cottage", 300000, "Howth"),
	})
	waitFor(t, "populated list", func() bool { return c.State().Phase == ListPopulated })

	st := c.State()
	if len(st.Listings) != 2 || st.Listings[0].ID != "a" || st.Listings[1].ID != "b" {
		t.Errorf("listings: got %+v", st.Listings)
	}
	if st.Listings[0].FormattedPrice != "€900,000" {
		t.Errorf("formatted price: got %q", st.Listings[0].FormattedPrice)
	}

	// следующий снимок полностью заменяет предыдущий
	h.listings.all.Publish([]domain.Listing{})
	waitFor(t, "empty list", func() bool { return c.State().Phase == ListEmpty })
}

func TestHomeControllerShowsAllListings(t *testing.T) {
	h := newHarness()
	c := NewHomeController(context.Background(), h.deps())
	defer c.Close()

	// без избранных главная все равно показывает весь каталог
	h.listings.all.Publish([]domain.Listing{
		listing("a", "Penthouse", 900000, "Dublin 2"),
		listing("b", "Cottage", 300000, "Howth"),
	})
	waitFor(t, "populated home", func() bool { return c.State().Phase == ListPopulated })

	if got := len(c.State().Listings); got != 2 {
		t.Errorf("listings: got %d, want 2", got)
	}
	if len(c.State().Featured) != 0 {
		t.Errorf("featured: got %+v, want none", c.State().Featured)
	}

	h.listings.featured.Publish([]domain.Listing{listing("f", "Villa", 1200000, "Malahide")})
	waitFor(t, "featured strip", func() bool { return len(c.State().Featured) == 1 })

	st := c.State()
	if st.Featured[0].ID != "f" || len(st.Listings) != 2 {
		t.Errorf("state after featured snapshot: %+v", st)
	}

	// новый снимок каталога не теряет полосу избранных
	h.listings.all.Publish([]domain.Listing{listing("c", "Flat", 200000, "Dublin 8")})
	waitFor(t, "replaced listings", func() bool { return len(c.State().Listings) == 1 })
	if len(c.State().Featured) != 1 {
		t.Error("featured strip lost after a new listings snapshot")
	}
}

func TestListControllerClosedFeedFails(t *testing.T) {
	h := newHarness()
	c := NewIndexController(context.Background(), h.deps())
	defer c.Close()

	// лента закрылась, не отдав ни одного снимка
	h.listings.all.Close()
	waitFor(t, "failed list", func() bool { return c.State().Phase == ListFailed })
	if c.State().Message != msgListingsUnavailable {
		t.Errorf("message: got %q", c.State().Message)
	}
}

func TestListControllerSubscribeFailure(t *testing.T) {
	h := newHarness()
	h.listings.listErr = domain.NewStoreError(domain.StoreRead, "ListAll", errors.New("down"))

	c := NewIndexController(context.Background(), h.deps())
	defer c.Close()

	waitFor(t, "failed list", func() bool { return c.State().Phase == ListFailed })
	if c.State().Message == "" {
		t.Error("failed list should carry a message")
	}
}

func TestListControllerOpenListing(t *testing.T) {
	h := newHarness()
	c := NewIndexController(context.Background(), h.deps())
	defer c.Close()

	if err := c.Handle(context.Background(), Action{Name: ActionOpenListing, Fields: map[string]string{"id": "abc"}}); err != nil {
		t.Fatal(err)
	}
	routes := h.navigator.Routes()
	if len(routes) != 1 || routes[0].Path != "/property-detail/abc" {
		t.Errorf("routes: got %+v", routes)
	}

	if err := c.Handle(context.Background(), Action{Name: ActionSubmit}); !errors.Is(err, ErrUnsupportedAction) {
		t.Errorf("submit on a list: got %v, want ErrUnsupportedAction", err)
	}
}

func TestListControllerStopsAfterClose(t *testing.T) {
	h := newHarness()
	var changes atomic.Int32
	deps := h.deps()
	deps.OnChange = func() { changes.Add(1) }

	c := NewIndexController(context.Background(), deps)
	waitFor(t, "subscription", func() bool { return h.listings.all.Len() == 1 })
	c.Close()

	waitFor(t, "unsubscribe", func() bool { return h.listings.all.Len() == 0 })
	before := changes.Load()
	h.listings.all.Publish([]domain.Listing{listing("a", "A", 1, "x")})
	if changes.Load() != before {
		t.Error("closed controller must not change state")
	}
}
