package domain

import (
	"net/mail"
	"strings"
	"time"
)

const (
	ViewingDateLayout = "2006-01-02"
	ViewingTimeLayout = "15:04"
)

// ViewingRequestDraft - заявка на просмотр до сохранения.
// Property - свободный текст (название или id объявления), существование не проверяется.
type ViewingRequestDraft struct {
	Name     string
	Email    string
	Date     string
	Time     string
	Property string
	Notes    string
}

// ViewingRequest - сохраненная заявка. Клиент ее никогда не перечитывает.
type ViewingRequest struct {
	ID        string
	CreatedAt time.Time
	ViewingRequestDraft
}

func (v ViewingRequestDraft) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"name", v.Name},
		{"email", v.Email},
		{"date", v.Date},
		{"time", v.Time},
		{"property", v.Property},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &ValidationError{Field: r.field, Message: r.field + " is required"}
		}
	}

	if _, err := mail.ParseAddress(v.Email); err != nil {
		return &ValidationError{Field: "email", Message: "email address is not valid"}
	}
	if _, err := time.Parse(ViewingDateLayout, v.Date); err != nil {
		return &ValidationError{Field: "date", Message: "date must be in YYYY-MM-DD format"}
	}
	if _, err := time.Parse(ViewingTimeLayout, v.Time); err != nil {
		return &ValidationError{Field: "time", Message: "time must be in HH:MM format"}
	}
	return nil
}
