package ncbi

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const defaultBaseURL = "https://www.ncbi.nlm.nih.gov/genomes/VirusVariation/vvsearch2/"

// columns pairs each output column with the NCBI Virus source field it is
// filled from.
var columns = [][2]string{
	{"genbank_accession", "id"},
	{"database", "SourceDB_s"},
	{"strain", "Isolate_s"},
	{"region", "Region_s"},
	{"location", "CountryFull_s"},
	{"collected", "CollectionDate_s"},
	{"submitted", "CreateDate_dt"},
	{"length", "SLen_i"},
	{"host", "Host_s"},
	{"isolation_source", "Isolation_csv"},
	{"biosample_accession", "BioSample_s"},
	{"title", "Definition_s"},
	{"authors", "Authors_csv"},
	{"publications", "PubMed_csv"},
	{"sequence", "Nucleotide_seq"},
}

// Client downloads nucleotide records from the NCBI Virus search endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	email      string
	taxonID    string
	logger     *slog.Logger
}

// NewClient creates an NCBI Virus client. email is sent both as a query
// parameter and in the User-Agent, as NCBI asks of API consumers.
func NewClient(email, taxonID string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    defaultBaseURL,
		email:      email,
		taxonID:    taxonID,
		logger:     logger,
	}
}

// Open issues the download request and returns a streaming Source over the
// response. The caller must Close the Source.
func (c *Client) Open(ctx context.Context) (*Source, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+c.query().Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", fmt.Sprintf("https://github.com/broadinstitute/viral-pipelines (%s)", c.email))

	c.logger.Info("requesting ncbi records", "taxon_id", c.taxonID)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ncbi request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("ncbi API error: status %d: %s", resp.StatusCode, body)
	}

	src, err := NewSource(resp.Body)
	if err != nil {
		resp.Body.Close()
		return nil, err
	}
	return src, nil
}

// OpenFile returns a Source over a previously saved download.
func OpenFile(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ncbi response: %w", err)
	}
	src, err := NewSource(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return src, nil
}

func (c *Client) query() url.Values {
	fields := make([]string, len(columns))
	for i, col := range columns {
		fields[i] = col[0] + ":" + col[1]
	}
	return url.Values{
		"fq": {
			`{!tag=SeqType_s}SeqType_s:("Nucleotide")`,
			fmt.Sprintf("VirusLineageId_ss:(%s)", c.taxonID),
		},
		"q":     {"*:*"},
		"cmd":   {"download"},
		"dlfmt": {"csv"},
		"fl":    {strings.Join(fields, ",")},
		"sort":  {"SourceDB_s desc, CollectionDate_s asc, id asc"},
		"email": {c.email},
	}
}
