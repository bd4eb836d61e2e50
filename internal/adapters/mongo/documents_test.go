package mongo

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestListingDocumentToDomain(t *testing.T) {
	id := primitive.NewObjectID()
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.FixedZone("IST", 3600))

	l := listingDocument{ID: id, Title: "Loft", Price: 300000, CreatedAt: created}.toDomain()

	if l.ID != id.Hex() {
		t.Errorf("id: got %s", l.ID)
	}
	if l.CreatedAt.Location() != time.UTC || !l.CreatedAt.Equal(created) {
		t.Errorf("created at: got %v", l.CreatedAt)
	}
	if l.Images == nil {
		t.Error("nil images should become an empty list")
	}
	if l.IsFeatured() {
		t.Error("missing Featured must read as false")
	}
}

// Имена полей документа совпадают с уже существующими данными коллекции.
func TestListingDocumentFieldNames(t *testing.T) {
	featured := true
	raw, err := bson.Marshal(listingDocument{Title: "Loft", Featured: &featured, CreatedAt: time.Now()})
	if err != nil {
		t.Fatal(err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"Title", "Price", "Location", "Images", "Featured", "createdAt"} {
		if _, ok := m[key]; !ok {
			t.Errorf("field %q missing from document", key)
		}
	}
	if _, ok := m["_id"]; ok {
		t.Error("zero _id must be omitted so the server assigns one")
	}
}
