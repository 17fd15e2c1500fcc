package domain

import (
	"context"
	"slices"
)

// AddressComponent is one administrative level of a geocoded address.
type AddressComponent struct {
	LongName  string
	ShortName string
	Types     []string
}

// HasType reports whether the component is classified as t.
func (c AddressComponent) HasType(t string) bool {
	return slices.Contains(c.Types, t)
}

// GeocodeResult is the primary match returned by a geocoding provider.
// Found is false when the provider had no match for the address.
type GeocodeResult struct {
	Found      bool
	Lat        float64
	Lon        float64
	Types      []string // classification tags of the match itself
	Components []AddressComponent
}

// Component returns the first address component classified as t.
func (r GeocodeResult) Component(t string) (AddressComponent, bool) {
	for _, c := range r.Components {
		if c.HasType(t) {
			return c, true
		}
	}
	return AddressComponent{}, false
}

// Geocoder resolves a free-text address.
type Geocoder interface {
	// Geocode returns the best match for address. A result with Found=false
	// and a nil error means the provider has no match.
	Geocode(ctx context.Context, address string) (GeocodeResult, error)
}
