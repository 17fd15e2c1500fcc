package domain

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Curator turns raw records into curated output records. A record either
// yields an OutputRecord or one of the skip errors in errors.go; there is no
// partial result.
type Curator struct {
	resolver *Resolver
	canon    *Canonicalizer
	state    *RunState
}

// NewCurator wires a Curator. resolver and the curator must share state.
func NewCurator(resolver *Resolver, canon *Canonicalizer, state *RunState) *Curator {
	return &Curator{resolver: resolver, canon: canon, state: state}
}

// Curate resolves, canonicalizes and deduplicates one record. The strain ID is
// claimed in the run state only when every earlier step has succeeded.
func (c *Curator) Curate(ctx context.Context, raw RawRecord) (OutputRecord, error) {
	if strings.TrimSpace(raw.Location) == "" {
		return OutputRecord{}, ErrNoLocation
	}

	loc, err := c.resolver.Resolve(ctx, raw.Location)
	if err != nil {
		return OutputRecord{}, err
	}

	country := c.canon.Country(loc)
	geolocale := c.canon.Geolocale(loc)

	collected, err := ParseDate(raw.Collected)
	if err != nil {
		return OutputRecord{}, fmt.Errorf("accession %s: %w", raw.Accession, err)
	}
	year := strconv.Itoa(collected.Year())

	strain := c.canon.StrainID(raw.Strain, geolocale, year, raw.Accession)
	if !c.state.Claim(strain) {
		return OutputRecord{}, fmt.Errorf("%w: %s", ErrDuplicateStrain, strain)
	}

	out := OutputRecord{
		Strain:             strain,
		Virus:              Virus,
		Accession:          raw.Accession,
		Database:           raw.Database,
		Date:               FormatDate(collected),
		Region:             loc.Continent,
		Country:            country,
		Division:           loc.Division,
		Location:           loc.Location,
		RawLocation:        raw.Location,
		GeocodePrecision:   loc.Precision.Level,
		RegionExposure:     loc.Continent,
		CountryExposure:    loc.Country,
		DivisionExposure:   loc.Location,
		Length:             len(raw.Sequence),
		Host:               c.normalizeHost(raw.Host),
		BioSampleAccession: raw.BioSampleAccession,
		GeoCategory:        loc.Category,
		Authors:            raw.Authors,
		Title:              raw.Title,
		Sequence:           raw.Sequence,
	}
	if submitted, err := ParseDate(raw.Submitted); err == nil {
		out.DateSubmitted = FormatDate(submitted)
	}
	return out, nil
}

func (c *Curator) normalizeHost(host string) string {
	if c.canon.Normalization().Host && host == "Homo sapiens" {
		return "Human"
	}
	return strings.ReplaceAll(host, " ", "-")
}
