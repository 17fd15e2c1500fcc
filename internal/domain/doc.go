// Package domain curates NCBI Virus (GenBank) sequence records into the
// metadata conventions used by Nextstrain/GISAID-style analysis pipelines.
//
// # Data Source
//
// Records come from the NCBI Virus "vvsearch2" download endpoint as a CSV
// table, one row per nucleotide record. The location column is free text that
// submitters enter at varying precision, colon-delimited from least to most
// specific:
//
//	"USA: Massachusetts"          country, state
//	"China: Hubei, Wuhan"         country, then free-text locality
//	"Australia:Victoria"          spacing is not consistent
//
// # Location Resolution
//
// The raw string is reversed to most-specific-first ("Massachusetts, USA")
// and sent to a geocoder. From the first result we derive:
//
//	continent   ISO 3166-1 alpha-2 of the country component → 7 continents, "NA" otherwise
//	precision   most granular administrative type tag attached to the result
//	division    administrative_area_level_1 long name, else the country
//	location    long name at the precision level, collapsed to division when equal
//	category    long name of a highlighted short name (MA, NY, WA), else continent
//
// Each distinct raw string is geocoded at most once per run; see [RunState].
//
// # Strain Identifiers
//
// Output strain IDs follow "<geolocale>/<isolate>/<year>", e.g.
// "USA/MA-1/2020". Partner-style normalization renames a handful of
// countries (Czechia → Czech Republic), uses provinces for China and
// constituent countries for the United Kingdom, and renames the Wuhan
// reference genome to "Wuhan/Hu-1/2019". Strain IDs are unique within a run;
// the first record wins. See [Canonicalizer].
//
// # Missing Values
//
// Every output cell that would be empty is written as "NA" ([Placeholder]).
package domain
