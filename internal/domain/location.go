package domain

import (
	"slices"
	"strings"
)

// Precision is the granularity of a geocoded location.
type Precision struct {
	Level string `json:"level,omitempty"` // geocoder type tag, e.g. "locality"
	Rank  int    `json:"rank,omitempty"`  // higher is more precise
}

// precisionRanks ranks geocoder type tags by granularity. Ranks are relative
// only; several tags share a rank.
var precisionRanks = map[string]int{
	"country":                     1,
	"administrative_area_level_1": 2, // ~state
	"administrative_area_level_2": 3, // ~county
	"administrative_area_level_3": 4,
	"administrative_area_level_4": 5,
	"administrative_area_level_5": 6,
	"locality":                    4,
	"sublocality":                 5,
	"sublocality_level_1":         6,
	"sublocality_level_2":         7,
	"sublocality_level_3":         8,
	"sublocality_level_4":         9,
	"sublocality_level_5":         10,
}

// highlightShortNames are short names reported in the geocat column instead
// of the continent.
var highlightShortNames = []string{"MA", "NY", "WA"}

// LocationRecord is the canonical location derived from one geocode result.
type LocationRecord struct {
	Raw         string    `json:"raw"`
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
	Continent   string    `json:"continent"`
	Country     string    `json:"country,omitempty"`
	CountryCode string    `json:"country_code,omitempty"`
	Division    string    `json:"division,omitempty"`
	Location    string    `json:"location,omitempty"`
	Precision   Precision `json:"precision"`
	Category    string    `json:"category"`
}

// GeoQuery converts a colon-delimited, least-specific-first location such as
// "USA: Massachusetts: Boston" into the comma-joined, most-specific-first
// address a geocoder expects: "Boston, Massachusetts, USA". Empty segments are
// kept, so "USA::Boston" becomes "Boston, , USA".
func GeoQuery(raw string) string {
	parts := strings.Split(raw, ":")
	slices.Reverse(parts)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	// Segments may carry their own comma lists ("Hubei,Wuhan"); every comma
	// gets exactly one following space.
	q := strings.ReplaceAll(strings.Join(parts, ","), ", ", ",")
	return strings.ReplaceAll(q, ",", ", ")
}

// PrecisionOf picks the most granular recognized tag from types. The
// "political" tag carries no granularity and is ignored. Equal ranks resolve
// to the lexicographically smaller tag.
func PrecisionOf(types []string) (Precision, bool) {
	var best Precision
	found := false
	for _, t := range types {
		if t == "political" {
			continue
		}
		rank, ok := precisionRanks[t]
		if !ok {
			continue
		}
		if !found || rank > best.Rank || (rank == best.Rank && t < best.Level) {
			best = Precision{Level: t, Rank: rank}
			found = true
		}
	}
	return best, found
}

// NewLocationRecord derives a LocationRecord from a geocode result for raw.
// The result must have Found set.
func NewLocationRecord(raw string, res GeocodeResult) LocationRecord {
	rec := LocationRecord{
		Raw: raw,
		Lat: res.Lat,
		Lon: res.Lon,
	}

	if c, ok := res.Component("country"); ok {
		rec.Country = c.LongName
		rec.CountryCode = c.ShortName
	}
	rec.Continent = ContinentForCode(rec.CountryCode)

	rec.Division = rec.Country
	if c, ok := res.Component("administrative_area_level_1"); ok && c.LongName != "" {
		rec.Division = c.LongName
	}

	rec.Location = rec.Division
	if p, ok := PrecisionOf(res.Types); ok {
		rec.Precision = p
		if c, ok := res.Component(p.Level); ok && c.LongName != "" {
			rec.Location = c.LongName
		}
	}

	rec.Category = rec.Continent
	if name, ok := highlightedName(res.Components); ok {
		rec.Category = name
	}

	return rec
}

func highlightedName(components []AddressComponent) (string, bool) {
	for _, c := range components {
		for _, short := range highlightShortNames {
			if c.ShortName == short {
				return c.LongName, true
			}
		}
	}
	return "", false
}
