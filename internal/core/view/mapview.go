package view

import (
	"hash/fnv"
	"strings"

	"github.com/Fvicente04/ca1-real-estate-app/internal/core/domain"
	"github.com/mmcloughlin/geohash"
)

const (
	mapZoom = 15
	// полный размах смещения маркера, градусы (±0.0025)
	jitterSpan = 0.005
	// точность ячейки geohash: около 5 км
	markerCellPrecision = 5
)

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type MarkerStyle string

const (
	MarkerFeatured MarkerStyle = "featured"
	MarkerStandard MarkerStyle = "standard"
)

type Marker struct {
	Position LatLng      `json:"position"`
	Style    MarkerStyle `json:"style"`
	Title    string      `json:"title"`
	Cell     string      `json:"cell"`
}

// InfoWindow - содержимое всплывающей подсказки маркера.
type InfoWindow struct {
	Title    string `json:"title"`
	Location string `json:"location"`
	Price    string `json:"price"`
}

// MapView - параметры для виджета карты.
type MapView struct {
	Center   LatLng     `json:"center"`
	Zoom     int        `json:"zoom"`
	Marker   Marker     `json:"marker"`
	Info     InfoWindow `json:"info"`
	InfoOpen bool       `json:"info_open"`
}

var dublinCentre = LatLng{Lat: 53.3498, Lng: -6.2603}

// порядок важен: берется первое совпадение
var knownLocations = []struct {
	name string
	pos  LatLng
}{
	{"Dublin 1", LatLng{53.3521, -6.2602}},
	{"Dublin 2", LatLng{53.3381, -6.2592}},
	{"Dublin 3", LatLng{53.3566, -6.2180}},
	{"Dublin 4", LatLng{53.3311, -6.2297}},
	{"Dublin 6", LatLng{53.3198, -6.2603}},
	{"Dublin 7", LatLng{53.3555, -6.2847}},
	{"Dublin 8", LatLng{53.3368, -6.2826}},
	{"Clontarf", LatLng{53.3661, -6.2003}},
	{"Malahide", LatLng{53.4509, -6.1543}},
	{"Howth", LatLng{53.3884, -6.0658}},
}

// LocateListing ищет в тексте адреса известный район и смещает точку на
// величину, зависящую только от id объявления. Неизвестный адрес - центр Дублина без смещения.
func LocateListing(id, location string) LatLng {
	for _, known := range knownLocations {
		if strings.Contains(location, known.name) {
			dLat, dLng := jitter(id)
			return LatLng{Lat: known.pos.Lat + dLat, Lng: known.pos.Lng + dLng}
		}
	}
	return dublinCentre
}

// jitter дает два смещения в диапазоне [-0.0025, 0.0025).
func jitter(id string) (float64, float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	sum := h.Sum64()

	a := float64(sum>>32) / float64(1<<32)
	b := float64(sum&0xffffffff) / float64(1<<32)
	return (a - 0.5) * jitterSpan, (b - 0.5) * jitterSpan
}

// NewMapView строит параметры карты для объявления. Подсказка открыта сразу.
func NewMapView(l domain.Listing) MapView {
	pos := LocateListing(l.ID, l.Location)
	style := MarkerStandard
	if l.IsFeatured() {
		style = MarkerFeatured
	}
	return MapView{
		Center: pos,
		Zoom:   mapZoom,
		Marker: Marker{
			Position: pos,
			Style:    style,
			Title:    l.Title,
			Cell:     geohash.EncodeWithPrecision(pos.Lat, pos.Lng, markerCellPrecision),
		},
		Info: InfoWindow{
			Title:    l.Title,
			Location: l.Location,
			Price:    FormatPrice(l.Price),
		},
		InfoOpen: true,
	}
}
