package mongo

import (
	"time"

	"github.com/Fvicente04/ca1-real-estate-app/internal/core/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	propertiesCollection = "properties"
	viewingsCollection   = "viewings"
)

// listingDocument - документ коллекции properties.
type listingDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"Title"`
	Price       float64            `bson:"Price"`
	Location    string             `bson:"Location"`
	Bedrooms    int                `bson:"Bedrooms"`
	Bathrooms   int                `bson:"Bathrooms"`
	Area        float64            `bson:"Area"`
	Description string             `bson:"Description"`
	Images      []string           `bson:"Images"`
	Featured    *bool              `bson:"Featured,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func (d listingDocument) toDomain() domain.Listing {
	images := d.Images
	if images == nil {
		images = []string{}
	}
	return domain.Listing{
		ID:        d.ID.Hex(),
		CreatedAt: d.CreatedAt.UTC(),
		ListingDraft: domain.ListingDraft{
			Title:       d.Title,
			Price:       d.Price,
			Location:    d.Location,
			Bedrooms:    d.Bedrooms,
			Bathrooms:   d.Bathrooms,
			Area:        d.Area,
			Description: d.Description,
			Images:      images,
			Featured:    d.Featured,
		},
	}
}

type viewingDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Date      string             `bson:"date"`
	Time      string             `bson:"time"`
	Property  string             `bson:"property"`
	Notes     string             `bson:"notes"`
	CreatedAt time.Time          `bson:"createdAt"`
}
