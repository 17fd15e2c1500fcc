package domain

import (
	"context"
	"errors"
	"fmt"
)

// Resolver turns raw location strings into LocationRecords, consulting the
// geocoder at most once per distinct raw string for the lifetime of state.
type Resolver struct {
	geocoder Geocoder
	state    *RunState
}

// NewResolver creates a Resolver caching into state.
func NewResolver(geocoder Geocoder, state *RunState) *Resolver {
	return &Resolver{geocoder: geocoder, state: state}
}

// Resolve geocodes raw. It returns ErrLocationNotFound when the geocoder has
// no match, ErrGeocoderRejected unchanged when the provider refused the
// request, and ErrGeocodeFailed (wrapping the cause) for any other failure. Only definitive outcomes are cached; a failed lookup is retried the
// next time the same raw string is seen.
func (r *Resolver) Resolve(ctx context.Context, raw string) (LocationRecord, error) {
	if e, ok := r.state.lookupLocation(raw); ok {
		return entryResult(e)
	}

	res, err := r.geocoder.Geocode(ctx, GeoQuery(raw))
	if errors.Is(err, ErrGeocoderRejected) {
		return LocationRecord{}, fmt.Errorf("%q: %w", raw, err)
	}
	if err != nil {
		return LocationRecord{}, fmt.Errorf("%w: %q: %w", ErrGeocodeFailed, raw, err)
	}

	e := locationEntry{found: res.Found}
	if res.Found {
		e.record = NewLocationRecord(raw, res)
	}
	return entryResult(r.state.storeLocation(raw, e))
}

func entryResult(e locationEntry) (LocationRecord, error) {
	if !e.found {
		return LocationRecord{}, ErrLocationNotFound
	}
	return e.record, nil
}
