package domain

import "strconv"

// Placeholder is written for every empty output value.
const Placeholder = "NA"

// Virus is the value of the virus column.
const Virus = "ncov"

// RawRecord is one row of the NCBI Virus download table.
type RawRecord struct {
	Accession          string
	Database           string
	Strain             string
	Region             string
	Location           string // colon-delimited, e.g. "USA: Massachusetts"
	Collected          string
	Submitted          string
	Length             string
	Host               string
	IsolationSource    string
	BioSampleAccession string
	Title              string
	Authors            string
	Publications       string
	Sequence           string
}

// MetadataColumns is the header of the metadata table, in output order.
var MetadataColumns = []string{
	"strain",
	"virus",
	"gisaid_epi_isl",
	"genbank_accession",
	"database",
	"date",
	"region",
	"country",
	"division",
	"location",
	"gb_raw_location",
	"geocode_precision",
	"region_exposure",
	"country_exposure",
	"division_exposure",
	"length",
	"host",
	"age",
	"sex",
	"originating_lab",
	"submitting_lab",
	"date_submitted",
	"biosample_accession",
	"geocat",
	"authors",
	"url",
	"title",
}

// OutputRecord is a curated record. Empty fields are rendered as Placeholder
// by Row; the struct itself keeps them empty.
type OutputRecord struct {
	Strain             string `json:"strain"`
	Virus              string `json:"virus"`
	GisaidEpiIsl       string `json:"gisaid_epi_isl,omitempty"`
	Accession          string `json:"genbank_accession"`
	Database           string `json:"database,omitempty"`
	Date               string `json:"date"`
	Region             string `json:"region,omitempty"`
	Country            string `json:"country,omitempty"`
	Division           string `json:"division,omitempty"`
	Location           string `json:"location,omitempty"`
	RawLocation        string `json:"gb_raw_location,omitempty"`
	GeocodePrecision   string `json:"geocode_precision,omitempty"`
	RegionExposure     string `json:"region_exposure,omitempty"`
	CountryExposure    string `json:"country_exposure,omitempty"`
	DivisionExposure   string `json:"division_exposure,omitempty"`
	Length             int    `json:"length"`
	Host               string `json:"host,omitempty"`
	Age                string `json:"age,omitempty"`
	Sex                string `json:"sex,omitempty"`
	OriginatingLab     string `json:"originating_lab,omitempty"`
	SubmittingLab      string `json:"submitting_lab,omitempty"`
	DateSubmitted      string `json:"date_submitted,omitempty"`
	BioSampleAccession string `json:"biosample_accession,omitempty"`
	GeoCategory        string `json:"geocat,omitempty"`
	Authors            string `json:"authors,omitempty"`
	URL                string `json:"url,omitempty"`
	Title              string `json:"title,omitempty"`

	Sequence string `json:"-"`
}

// Row renders the record in MetadataColumns order with empty values replaced
// by Placeholder. No other value is altered.
func (r OutputRecord) Row() []string {
	row := []string{
		r.Strain,
		r.Virus,
		r.GisaidEpiIsl,
		r.Accession,
		r.Database,
		r.Date,
		r.Region,
		r.Country,
		r.Division,
		r.Location,
		r.RawLocation,
		r.GeocodePrecision,
		r.RegionExposure,
		r.CountryExposure,
		r.DivisionExposure,
		strconv.Itoa(r.Length),
		r.Host,
		r.Age,
		r.Sex,
		r.OriginatingLab,
		r.SubmittingLab,
		r.DateSubmitted,
		r.BioSampleAccession,
		r.GeoCategory,
		r.Authors,
		r.URL,
		r.Title,
	}
	for i, v := range row {
		if v == "" {
			row[i] = Placeholder
		}
	}
	return row
}
