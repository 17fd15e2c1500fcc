package domain

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/pariz/gountries"
)

// Normalization switches for partner-style output. All three are enabled in
// production runs.
type Normalization struct {
	Host    bool // "Homo sapiens" → "Human"
	Country bool // country aliases and China/UK geolocale refinement
	Strain  bool // replace the country prefix of submitted strain names
}

// FullNormalization enables every normalization.
func FullNormalization() Normalization {
	return Normalization{Host: true, Country: true, Strain: true}
}

// countryAliases maps source country names (spaces removed) to the names the
// partner database uses.
var countryAliases = map[string]string{
	"UnitedStates":      "USA",
	"Myanmar(Burma)":    "Myanmar",
	"U.S.VirginIslands": "USA",
	"Czechia":           "Czech Republic",
	"Bahrein":           "Bahrain",
	"Macedonia":         "NorthMacedonia",
}

// countryIndex is the ISO 3166-1 table used to expand alpha-3 strain
// prefixes. Loading it parses the embedded dataset, so it is built once.
var countryIndex = sync.OnceValue(gountries.New)

// alpha3Name returns the common English name of an ISO 3166-1 alpha-3 code
// with spaces removed ("NZL" → "NewZealand").
func alpha3Name(code string) (string, bool) {
	if len(code) != 3 {
		return "", false
	}
	country, err := countryIndex().FindCountryByAlpha(strings.ToUpper(code))
	if err != nil || country.Name.Common == "" {
		return "", false
	}
	return strings.ReplaceAll(country.Name.Common, " ", ""), true
}

// referenceRenames fixes the name of the Wuhan reference genome, which
// downstream tooling hard-codes.
var referenceRenames = strings.NewReplacer("China/Wuhan-Hu-1/2019", "Wuhan/Hu-1/2019")

// strainPrefixRe splits "<prefix>/<isolate>/<year...>" at the last two
// slash-separated segments; the year segment starts with 2.
var strainPrefixRe = regexp.MustCompile(`([^/]+)/([^/]+/2\S*)$`)

// Canonicalizer builds canonical strain identifiers and geolocales.
type Canonicalizer struct {
	norm Normalization

	mu      sync.Mutex
	aliases map[string]string
}

// NewCanonicalizer creates a Canonicalizer applying norm.
func NewCanonicalizer(norm Normalization) *Canonicalizer {
	return &Canonicalizer{
		norm:    norm,
		aliases: make(map[string]string),
	}
}

// Normalization returns the switches the canonicalizer was built with.
func (c *Canonicalizer) Normalization() Normalization {
	return c.norm
}

// CountryAlias returns the partner-database name for country, or country
// unchanged when there is no alias. Results are memoized per input.
func (c *Canonicalizer) CountryAlias(country string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.aliases[country]; ok {
		return v
	}
	v := country
	if alias, ok := countryAliases[strings.ReplaceAll(country, " ", "")]; ok {
		v = alias
	}
	c.aliases[country] = v
	return v
}

// Country returns the country name as written to the country column.
func (c *Canonicalizer) Country(loc LocationRecord) string {
	if c.norm.Country && loc.Country != "" {
		return c.CountryAlias(loc.Country)
	}
	return loc.Country
}

// Geolocale returns the first strain-ID segment for loc. With country
// normalization, China uses its province (or finer location) and the United
// Kingdom uses its constituent country.
func (c *Canonicalizer) Geolocale(loc LocationRecord) string {
	geo := c.Country(loc)
	if !c.norm.Country || geo == "" {
		return geo
	}

	if geo == "China" && len(loc.Division) > 1 && loc.Division != geo {
		geo = loc.Division
		if len(loc.Location) > 1 && loc.Location != geo {
			geo = loc.Location
		}
	}
	if strings.ReplaceAll(geo, " ", "") == "UnitedKingdom" && len(loc.Division) > 1 && loc.Division != geo {
		geo = loc.Division
	}
	return geo
}

// StrainID builds the canonical "<geolocale>/<isolate>/<year>" identifier.
// A submitted strain name is kept when it already has three segments (after
// its country prefix is replaced); otherwise the ID is rebuilt around it, or
// around the accession when no strain was submitted. Whitespace is removed.
func (c *Canonicalizer) StrainID(strain, geolocale, year, accession string) string {
	if geolocale == "" {
		geolocale = Placeholder
	}

	var id string
	if strain = strings.TrimSpace(strain); strain != "" {
		id = strain
		if c.norm.Strain {
			id = c.replaceStrainPrefix(id, geolocale)
		}
		if strings.Count(id, "/") < 2 {
			id = fmt.Sprintf("%s/%s/%s", geolocale, id, year)
		}
	} else {
		id = fmt.Sprintf("%s/%s/%s", geolocale, accession, year)
	}

	id = strings.Join(strings.Fields(id), "")
	return referenceRenames.Replace(id)
}

// replaceStrainPrefix swaps the segment before "<isolate>/<year>" for the
// geolocale. Without a geolocale the segment is read as an alpha-3 country
// code. Strains that do not end in "<isolate>/<year>" pass through unchanged.
func (c *Canonicalizer) replaceStrainPrefix(strain, geolocale string) string {
	m := strainPrefixRe.FindStringSubmatch(strain)
	if m == nil {
		return strain
	}

	prefix := geolocale
	if prefix == Placeholder {
		prefix = m[1]
		if name, ok := alpha3Name(m[1]); ok {
			prefix = name
		}
	}
	if c.norm.Country {
		prefix = c.CountryAlias(prefix)
	}
	return prefix + "/" + m[2]
}
