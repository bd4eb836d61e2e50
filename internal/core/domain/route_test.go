package domain

import "testing"

func TestParseRouteRoundTrip(t *testing.T) {
	r, err := ParseRoute("/contact?property=Modern%20Apartment")
	if err != nil {
		t.Fatal(err)
	}
	if r.Path != PathContact {
		t.Errorf("path: got %q", r.Path)
	}
	if r.Query["property"] != "Modern Apartment" {
		t.Errorf("query: got %q", r.Query["property"])
	}
	if got := r.String(); got != "/contact?property=Modern+Apartment" {
		t.Errorf("String: got %q", got)
	}
}

func TestWithQueryDoesNotMutateOriginal(t *testing.T) {
	base := NewRoute(PathContact)
	withProp := base.WithQuery("property", "Cottage")

	if base.Query != nil {
		t.Error("original route was mutated")
	}
	if withProp.Query["property"] != "Cottage" {
		t.Errorf("got %v", withProp.Query)
	}
}

func TestPropertyDetailRouteEscapesID(t *testing.T) {
	if got := PropertyDetailRoute("a b").Path; got != "/property-detail/a%20b" {
		t.Errorf("got %q", got)
	}
}
