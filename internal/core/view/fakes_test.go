package view

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/Fvicente04/ca1-real-estate-app/internal/core/domain"
	"github.com/Fvicente04/ca1-real-estate-app/internal/stream"
)

// fakeListings - репозиторий на лентах, которыми управляет тест.
type fakeListings struct {
	mu       sync.Mutex
	all      *stream.Feed[[]domain.Listing]
	featured *stream.Feed[[]domain.Listing]
	items    map[string]*stream.Feed[*domain.Listing]

	listAllCalls int
	listErr      error
	getErr       error

	created   []domain.ListingDraft
	createErr error
	// если не nil, Create ждет значения из канала
	release chan struct{}
}

func newFakeListings() *fakeListings {
	return &fakeListings{
		all:      stream.NewFeed[[]domain.Listing](),
		featured: stream.NewFeed[[]domain.Listing](),
		items:    make(map[string]*stream.Feed[*domain.Listing]),
	}
}

func (f *fakeListings) ListAll(context.Context) (*stream.Subscription[[]domain.Listing], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listAllCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.all.Subscribe(), nil
}

func (f *fakeListings) ListFeatured(context.Context) (*stream.Subscription[[]domain.Listing], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.featured.Subscribe(), nil
}

func (f *fakeListings) GetByID(_ context.Context, id string) (*stream.Subscription[*domain.Listing], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.item(id).Subscribe(), nil
}

// item вызывается под f.mu
func (f *fakeListings) item(id string) *stream.Feed[*domain.Listing] {
	feed, ok := f.items[id]
	if !ok {
		feed = stream.NewFeed[*domain.Listing]()
		f.items[id] = feed
	}
	return feed
}

func (f *fakeListings) publishItem(id string, l *domain.Listing) {
	f.mu.Lock()
	feed := f.item(id)
	f.mu.Unlock()
	feed.Publish(l)
}

func (f *fakeListings) Create(_ context.Context, draft domain.ListingDraft) (*domain.Listing, error) {
	f.mu.Lock()
	f.created = append(f.created, draft)
	release, err := f.release, f.createErr
	f.mu.Unlock()

	if release != nil {
		<-release
	}
	if err != nil {
		return nil, err
	}
	return &domain.Listing{ID: "new", CreatedAt: time.Now(), ListingDraft: draft}, nil
}

func (f *fakeListings) ListAllCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listAllCalls
}

func (f *fakeListings) CreatedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

type fakeViewings struct {
	mu        sync.Mutex
	created   []domain.ViewingRequestDraft
	createErr error
	// если не nil, Create ждет значения из канала
	release chan struct{}
}

func (f *fakeViewings) Create(_ context.Context, draft domain.ViewingRequestDraft) (*domain.ViewingRequest, error) {
	f.mu.Lock()
	f.created = append(f.created, draft)
	release, err := f.release, f.createErr
	f.mu.Unlock()

	if release != nil {
		<-release
	}
	if err != nil {
		return nil, err
	}
	return &domain.ViewingRequest{ID: "v1", ViewingRequestDraft: draft}, nil
}

func (f *fakeViewings) CreatedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

type fakeSession struct {
	feed *stream.Feed[*domain.Identity]

	mu          sync.Mutex
	signInErr   error
	signUpErr   error
	signInCalls int
	signUpCalls int
	signOuts    int
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
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signInCalls++
	if s.signInErr != nil {
		return s.signInErr
	}
	s.feed.Publish(&domain.Identity{UserID: "u1", Email: email})
	return nil
}

func (s *fakeSession) SignUp(_ context.Context, email, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signUpCalls++
	if s.signUpErr != nil {
		return s.signUpErr
	}
	s.feed.Publish(&domain.Identity{UserID: "u1", Email: email})
	return nil
}

func (s *fakeSession) SignOut(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signOuts++
	s.feed.Publish(nil)
	return nil
}

func (s *fakeSession) counts() (signIn, signUp, signOut int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signInCalls, s.signUpCalls, s.signOuts
}

type fakeNavigator struct {
	mu     sync.Mutex
	routes []domain.Route
}

func (n *fakeNavigator) Navigate(route domain.Route) {
	n.mu.Lock()
	n.routes = append(n.routes, route)
	n.mu.Unlock()
}

func (n *fakeNavigator) Routes() []domain.Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.Route(nil), n.routes...)
}

// manualScheduler срабатывает только по команде теста.
type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) func() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{d: d, f: f}
	s.timers = append(s.timers, t)
	return func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		if t.stopped || t.fired {
			return false
		}
		t.stopped = true
		return true
	}
}

// Pending возвращает длительности активных таймеров по возрастанию.
func (s *manualScheduler) Pending() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []time.Duration
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			out = append(out, t.d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// FireAll вызывает все активные таймеры и возвращает их число.
func (s *manualScheduler) FireAll() int {
	s.mu.Lock()
	var due []*manualTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()

	for _, t := range due {
		t.f()
	}
	return len(due)
}

type harness struct {
	listings  *fakeListings
	viewings  *fakeViewings
	session   *fakeSession
	navigator *fakeNavigator
	scheduler *manualScheduler
}

func newHarness() *harness {
	return &harness{
		listings:  newFakeListings(),
		viewings:  &fakeViewings{},
		session:   newFakeSession(),
		navigator: &fakeNavigator{},
		scheduler: &manualScheduler{},
	}
}

func (h *harness) deps() Deps {
	return Deps{
		Listings:  h.listings,
		Viewings:  h.viewings,
		Session:   h.session,
		Navigator: h.navigator,
		Scheduler: h.scheduler,
	}
}

// waitFor опрашивает cond, пока оно не станет истинным.
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

func listing(id, title string, price float64, location string) domain.Listing {
	return domain.Listing{
		ID:        id,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		ListingDraft: domain.ListingDraft{
			Title:       title,
			Price:       price,
			Location:    location,
			Bedrooms:    2,
			Bathrooms:   1,
			Area:        80,
			Description: "desc",
			Images:      []string{domain.DefaultListingImage},
		},
	}
}
