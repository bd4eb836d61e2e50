package memory

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/Fvicente04/ca1-real-estate-app/internal/core/domain"
)

//go:embed sample_listings.json
var sampleListingsJSON []byte

type sampleListing struct {
	Title       string   `json:"Title"`
	Price       float64  `json:"Price"`
	Location    string   `json:"Location"`
	Bedrooms    int      `json:"Bedrooms"`
	Bathrooms   int      `json:"Bathrooms"`
	Area        float64  `json:"Area"`
	Description string   `json:"Description"`
	Images      []string `json:"Images"`
	Featured    *bool    `json:"Featured,omitempty"`
}

// SampleListings - демонстрационные объявления для режима без внешнего хранилища.
func SampleListings() ([]domain.Listing, error) {
	var raw []sampleListing
	if err := json.Unmarshal(sampleListingsJSON, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode sample listings: %w", err)
	}

	listings := make([]domain.Listing, 0, len(raw))
	for _, s := range raw {
		listings = append(listings, domain.Listing{ListingDraft: domain.ListingDraft{
			Title:       s.Title,
			Price:       s.Price,
			Location:    s.Location,
			Bedrooms:    s.Bedrooms,
			Bathrooms:   s.Bathrooms,
			Area:        s.Area,
			Description: s.Description,
			Images:      s.Images,
			Featured:    s.Featured,
		}})
	}
	return listings, nil
}
