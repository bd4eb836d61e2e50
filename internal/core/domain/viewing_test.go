package domain

import (
	"errors"
	"testing"
	"time"
)

func TestViewingRequestDraftValidate(t *testing.T) {
	valid := ViewingRequestDraft{
		Name:     "Aoife Byrne",
		Email:    "aoife@example.com",
		Date:     "2025-03-14",
		Time:     "10:30",
		Property: "Modern Apartment",
	}

	tests := []struct {
		name   string
		mutate func(*ViewingRequestDraft)
		field  string
	}{
		{"valid", func(*ViewingRequestDraft) {}, ""},
		{"notes optional", func(v *ViewingRequestDraft) { v.Notes = "" }, ""},
		{"missing name", func(v *ViewingRequestDraft) { v.Name = "" }, "name"},
		{"missing property", func(v *ViewingRequestDraft) { v.Property = " " }, "property"},
		{"bad email", func(v *ViewingRequestDraft) { v.Email = "not-an-email" }, "email"},
		{"bad date", func(v *ViewingRequestDraft) { v.Date = "14/03/2025" }, "date"},
		{"bad time", func(v *ViewingRequestDraft) { v.Time = "25:00" }, "time"},
	}

	for _, tt := range tests {
		v := valid
		tt.mutate(&v)
		err := v.Validate()

		var vErr *ValidationError
		switch {
		case tt.field == "" && err != nil:
			t.Errorf("%s: unexpected error %v", tt.name, err)
		case tt.field != "" && !errors.As(err, &vErr):
			t.Errorf("%s: got %v, want *ValidationError", tt.name, err)
		case tt.field != "" && vErr.Field != tt.field:
			t.Errorf("%s: field = %q, want %q", tt.name, vErr.Field, tt.field)
		}
	}
}

func TestIdentityExpired(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	var none *Identity
	if !none.Expired(now) {
		t.Error("nil identity should be expired")
	}
	if (&Identity{}).Expired(now) {
		t.Error("identity without expiry should not expire")
	}
	if !(&Identity{ExpiresAt: now}).Expired(now) {
		t.Error("identity should be expired at its expiry instant")
	}
	if (&Identity{ExpiresAt: now.Add(time.Minute)}).Expired(now) {
		t.Error("identity should be valid before expiry")
	}
}
