package view

import "github.com/Fvicente04/ca1-real-estate-app/internal/core/domain"

// ListingCard - объявление в виде, готовом для отрисовки.
type ListingCard struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Price          float64  `json:"price"`
	FormattedPrice string   `json:"formatted_price"`
	Currency       string   `json:"currency"`
	Location       string   `json:"location"`
	Bedrooms       int      `json:"bedrooms"`
	Bathrooms      int      `json:"bathrooms"`
	Area           float64  `json:"area"`
	Description    string   `json:"description,omitempty"`
	Images         []string `json:"images"`
	Featured       bool     `json:"featured"`
}

func NewListingCard(l domain.Listing) ListingCard {
	images := l.Images
	if images == nil {
		images = []string{}
	}
	return ListingCard{
		ID:             l.ID,
		Title:          l.Title,
		Price:          l.Price,
		FormattedPrice: FormatPrice(l.Price),
		Currency:       priceCurrency.String(),
		Location:       l.Location,
		Bedrooms:       l.Bedrooms,
		Bathrooms:      l.Bathrooms,
		Area:           l.Area,
		Description:    l.Description,
		Images:         images,
		Featured:       l.IsFeatured(),
	}
}

func newListingCards(listings []domain.Listing) []ListingCard {
	cards := make([]ListingCard, 0, len(listings))
	for _, l := range listings {
		cards = append(cards, NewListingCard(l))
	}
	return cards
}
