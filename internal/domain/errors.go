package domain

import "errors"

// ErrGeocoderRejected means the geocoding provider refused the request itself
// (bad key, disabled API, malformed request). Retrying other records cannot
// succeed, so it aborts the run instead of skipping the record.
var ErrGeocoderRejected = errors.New("geocoding request rejected")

// Reasons a record is skipped. None of them abort a run.
var (
	ErrNoLocation       = errors.New("record has no location")
	ErrLocationNotFound = errors.New("location not found by geocoder")
	ErrGeocodeFailed    = errors.New("geocoding request failed")
	ErrUnparsableDate   = errors.New("missing or unparsable collection date")
	ErrDuplicateStrain  = errors.New("strain already emitted")
)

// SkipReason returns a short metric label for a skip error, or "other".
func SkipReason(err error) string {
	switch {
	case errors.Is(err, ErrNoLocation):
		return "no_location"
	case errors.Is(err, ErrLocationNotFound):
		return "location_not_found"
	case errors.Is(err, ErrGeocodeFailed):
		return "geocode_failed"
	case errors.Is(err, ErrUnparsableDate):
		return "unparsable_date"
	case errors.Is(err, ErrDuplicateStrain):
		return "duplicate_strain"
	default:
		return "other"
	}
}
