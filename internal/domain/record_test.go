package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputRecord_Row_Placeholders(t *testing.T) {
	row := OutputRecord{}.Row()

	require.Len(t, row, len(MetadataColumns))
	for i, v := range row {
		if MetadataColumns[i] == "length" {
			assert.Equal(t, "0", v)
			continue
		}
		assert.Equal(t, Placeholder, v, "column %s", MetadataColumns[i])
	}
}

func TestOutputRecord_Row_KeepsValues(t *testing.T) {
	rec := OutputRecord{
		Strain:      "USA/MA-1/2020",
		Virus:       Virus,
		Accession:   "MT039888",
		Date:        "2020-01-29",
		Country:     "USA",
		Length:      29882,
		Host:        "Human",
		GeoCategory: "Massachusetts",
		Title:       "Severe acute respiratory syndrome coronavirus 2 isolate SARS-CoV-2/human/USA/MA1/2020",
	}
	row := rec.Row()

	col := func(name string) string {
		for i, c := range MetadataColumns {
			if c == name {
				return row[i]
			}
		}
		t.Fatalf("unknown column %s", name)
		return ""
	}

	assert.Equal(t, "USA/MA-1/2020", col("strain"))
	assert.Equal(t, "ncov", col("virus"))
	assert.Equal(t, "MT039888", col("genbank_accession"))
	assert.Equal(t, "2020-01-29", col("date"))
	assert.Equal(t, "29882", col("length"))
	assert.Equal(t, "Human", col("host"))
	assert.Equal(t, "Massachusetts", col("geocat"))
	assert.Equal(t, rec.Title, col("title"))
	assert.Equal(t, Placeholder, col("gisaid_epi_isl"))
	assert.Equal(t, Placeholder, col("url"))
}

func TestMetadataColumns(t *testing.T) {
	assert.Len(t, MetadataColumns, 27)
	assert.Equal(t, "strain", MetadataColumns[0])
	assert.Equal(t, "title", MetadataColumns[26])
}

func TestContinentForCode(t *testing.T) {
	assert.Equal(t, NorthAmerica, ContinentForCode("US"))
	assert.Equal(t, Asia, ContinentForCode("CN"))
	assert.Equal(t, Europe, ContinentForCode("gb"))
	assert.Equal(t, Africa, ContinentForCode("NA"), "Namibia")
	assert.Equal(t, Oceania, ContinentForCode("NZ"))
	assert.Equal(t, SouthAmerica, ContinentForCode("BR"))
	assert.Equal(t, Antarctica, ContinentForCode("AQ"))
	assert.Equal(t, UnknownContinent, ContinentForCode("XK"))
	assert.Equal(t, UnknownContinent, ContinentForCode(""))
}
