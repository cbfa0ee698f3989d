// Package geocode turns a free-form delivery address into coordinates for the
// radius gate.
package geocode

import (
	"context"
	"strings"
)

// Location is the first match for an address.
type Location struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	PlaceName string  `json:"place_name"`
}

type Geocoder interface {
	Geocode(ctx context.Context, address string) (*Location, error)
}

// normalize trims and lowercases an address and collapses inner whitespace.
func normalize(address string) string {
	return strings.ToLower(strings.Join(strings.Fields(address), " "))
}
