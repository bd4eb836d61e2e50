package shell

import (
	"context"
	"errors"
	"testing"

	"github.com/Fvicente04/ca1-real-estate-app/internal/core/domain"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/view"
)

func TestNavigateResolvesRoutes(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		wantView    string
		wantRoute   string
		wantReplace bool
	}{
		{"root", "/", ViewHome, domain.PathHome, true},
		{"empty", "", ViewHome, domain.PathHome, true},
		{"unknown", "/no-such-page", ViewHome, domain.PathHome, true},
		{"trailing slash", "/properties/", ViewProperties, domain.PathProperties, false},
		{"detail", "/property-detail/abc", ViewPropertyDetail, "/property-detail/abc", false},
		{"detail without id", "/property-detail/", ViewPropertyDetail, domain.PathPropertyDetail, false},
		{"detail nested", "/property-detail/a/b", ViewHome, domain.PathHome, true},
		{"about", "/about", ViewAbout, domain.PathAbout, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestShell(t, newFakeSession(nil))
			s.Navigate(domain.NewRoute(tt.path))

			st := s.State()
			if st.View != tt.wantView || st.Route != tt.wantRoute || st.Replace != tt.wantReplace {
				t.Errorf("got view=%s route=%s replace=%t", st.View, st.Route, st.Replace)
			}
			if st.Manifest == nil {
				t.Error("manifest missing from state")
			}
		})
	}
}

func TestNavigateProtectedRouteRedirectsToLogin(t *testing.T) {
	s := newTestShell(t, newFakeSession(nil))
	s.Navigate(domain.NewRoute(domain.PathCreateProperty))

	if st := s.State(); st.View != ViewLogin || st.Route != domain.PathLogin {
		t.Errorf("got view=%s route=%s, want login", st.View, st.Route)
	}
}

func TestSignOutDoesNotEvictProtectedView(t *testing.T) {
	session := newFakeSession(&domain.Identity{UserID: "u1", Email: "a@b.c"})
	s := newTestShell(t, session)
	s.Navigate(domain.NewRoute(domain.PathCreateProperty))

	if st := s.State(); st.View != ViewCreateProperty {
		t.Fatalf("got view %s, want create-property", st.View)
	}
	waitFor(t, "session in state", func() bool { return s.State().Session != nil })

	// сессия пропала уже после перехода: экран остается открытым
	session.feed.Publish(nil)
	waitFor(t, "session cleared", func() bool { return s.State().Session == nil })

	if st := s.State(); st.View != ViewCreateProperty {
		t.Errorf("got view %s after session loss, want create-property", st.View)
	}

	// следующий переход уже проверяется заново
	s.Navigate(domain.NewRoute(domain.PathCreateProperty))
	if st := s.State(); st.View != ViewLogin {
		t.Errorf("got view %s, want login", st.View)
	}
}

func TestSignOutAction(t *testing.T) {
	session := newFakeSession(&domain.Identity{UserID: "u1", Email: "a@b.c"})
	s := newTestShell(t, session)
	s.Navigate(domain.NewRoute(domain.PathHome))

	if err := s.Handle(context.Background(), view.Action{Name: ActionSignOut}); err != nil {
		t.Fatal(err)
	}
	if session.SignOuts() != 1 {
		t.Errorf("sign outs: got %d", session.SignOuts())
	}
	if st := s.State(); st.View != ViewLogin {
		t.Errorf("got view %s, want login", st.View)
	}
}

func TestHandleForwardsToActiveView(t *testing.T) {
	s := newTestShell(t, newFakeSession(nil))
	s.Navigate(domain.NewRoute(domain.PathAbout))

	err := s.Handle(context.Background(), view.Action{Name: view.ActionSubmit})
	if !errors.Is(err, view.ErrUnsupportedAction) {
		t.Errorf("got %v, want ErrUnsupportedAction", err)
	}
}

func TestStateVersionIncreases(t *testing.T) {
	s := newTestShell(t, newFakeSession(nil))
	s.Navigate(domain.NewRoute(domain.PathAbout))
	first := s.State().Version
	s.Navigate(domain.NewRoute(domain.PathLogin))

	if second := s.State().Version; second <= first {
		t.Errorf("version did not grow: %d -> %d", first, second)
	}
}

func TestNavigateAfterCloseIsIgnored(t *testing.T) {
	s := newTestShell(t, newFakeSession(nil))
	s.Navigate(domain.NewRoute(domain.PathAbout))
	s.Close()
	s.Navigate(domain.NewRoute(domain.PathLogin))

	if st := s.State(); st.View != ViewAbout {
		t.Errorf("got view %s after close", st.View)
	}
}
