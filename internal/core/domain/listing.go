package domain

import (
	"sort"
	"strings"
	"time"
)

// DefaultListingImage подставляется, когда при создании объявления не передано ни одного URL.
const DefaultListingImage = "https://images.unsplash.com/photo-1560518883-ce09059eeffa?w=800&q=80"

// ListingDraft - объявление до сохранения: ни идентификатора, ни времени создания.
type ListingDraft struct {
	Title       string
	Price       float64
	Location    string
	Bedrooms    int
	Bathrooms   int
	Area        float64
	Description string
	Images      []string
	Featured    *bool
}

// Listing - сохраненное объявление. ID и CreatedAt назначает хранилище.
type Listing struct {
	ID        string
	CreatedAt time.Time
	ListingDraft
}

// IsFeatured трактует незаданный флаг как false.
func (l ListingDraft) IsFeatured() bool {
	return l.Featured != nil && *l.Featured
}

// Validate проверяет инварианты создания. Возвращает *ValidationError для первого нарушения.
func (l ListingDraft) Validate() error {
	switch {
	case strings.TrimSpace(l.Title) == "":
		return &ValidationError{Field: "title", Message: "title is required"}
	case strings.TrimSpace(l.Location) == "":
		return &ValidationError{Field: "location", Message: "location is required"}
	case l.Price <= 0:
		return &ValidationError{Field: "price", Message: "price must be greater than zero"}
	case l.Bedrooms < 0:
		return &ValidationError{Field: "bedrooms", Message: "bedrooms cannot be negative"}
	case l.Bathrooms < 0:
		return &ValidationError{Field: "bathrooms", Message: "bathrooms cannot be negative"}
	case l.Area <= 0:
		return &ValidationError{Field: "area", Message: "area must be greater than zero"}
	case strings.TrimSpace(l.Description) == "":
		return &ValidationError{Field: "description", Message: "description is required"}
	}
	return nil
}

// ParseImageList разбирает строку URL через запятую.
// Пустые элементы отбрасываются; если не осталось ничего, возвращается картинка по умолчанию.
func ParseImageList(raw string) []string {
	images := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if url := strings.TrimSpace(part); url != "" {
			images = append(images, url)
		}
	}
	if len(images) == 0 {
		return []string{DefaultListingImage}
	}
	return images
}

// ExcludeListing возвращает до limit объявлений из snapshot без объявления с id.
// Порядок исходного снимка сохраняется.
func ExcludeListing(snapshot []Listing, id string, limit int) []Listing {
	related := make([]Listing, 0, limit)
	for _, l := range snapshot {
		if len(related) == limit {
			break
		}
		if l.ID == id {
			continue
		}
		related = append(related, l)
	}
	return related
}

// Clone возвращает копию, не разделяющую срез картинок и флаг Featured с оригиналом.
func (l Listing) Clone() Listing {
	if l.Images != nil {
		l.Images = append([]string(nil), l.Images...)
	}
	if l.Featured != nil {
		featured := *l.Featured
		l.Featured = &featured
	}
	return l
}

// SortListings упорядочивает по убыванию цены; при равной цене раньше созданное идет первым.
func SortListings(listings []Listing) {
	sort.SliceStable(listings, func(i, j int) bool {
		a, b := listings[i], listings[j]
		if a.Price != b.Price {
			return a.Price > b.Price
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
