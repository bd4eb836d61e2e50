package shell

import (
	"testing"

	"github.com/Fvicente04/ca1-real-estate-app/internal/core/domain"
	"github.com/Fvicente04/ca1-real-estate-app/internal/stream"
)

func TestRouteGuardCheck(t *testing.T) {
	signedIn := &domain.Identity{UserID: "u1", Email: "a@b.c"}

	tests := []struct {
		name     string
		identity *domain.Identity
		path     string
		want     GuardDecision
		wantPath string
	}{
		{"protected with session", signedIn, domain.PathCreateProperty, GuardAllow, domain.PathCreateProperty},
		{"protected without session", nil, domain.PathCreateProperty, GuardRedirect, domain.PathLogin},
		{"public without session", nil, domain.PathProperties, GuardAllow, domain.PathProperties},
		{"public with session", signedIn, domain.PathHome, GuardAllow, domain.PathHome},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewRouteGuard(newFakeSession(tt.identity), domain.PathCreateProperty)
			decision, target := g.Check(domain.NewRoute(tt.path))
			if decision != tt.want || target.Path != tt.wantPath {
				t.Errorf("got %s -> %s, want %s -> %s", decision, target.Path, tt.want, tt.wantPath)
			}
		})
	}
}

func TestRouteGuardUnknownSessionIsSignedOut(t *testing.T) {
	// лента без единого значения: состояние сессии еще не известно
	session := &fakeSession{feed: stream.NewFeed[*domain.Identity]()}
	g := NewRouteGuard(session, domain.PathCreateProperty)

	if decision, target := g.Check(domain.NewRoute(domain.PathCreateProperty)); decision != GuardRedirect || target.Path != domain.PathLogin {
		t.Errorf("got %s -> %s, want redirect to login", decision, target.Path)
	}
}
