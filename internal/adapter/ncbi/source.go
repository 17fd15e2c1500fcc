package ncbi

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/couchcryptid/genbank-curate/internal/domain"
)

// Source streams RawRecords from an NCBI Virus CSV download.
// It implements pipeline.Extractor.
type Source struct {
	body   io.ReadCloser
	reader *csv.Reader
	index  map[string]int
	line   int
}

// NewSource reads the header row from r and returns a Source positioned at
// the first record. Source takes ownership of r.
func NewSource(r io.ReadCloser) (*Source, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("ncbi response is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read ncbi header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	if _, ok := index["genbank_accession"]; !ok {
		return nil, fmt.Errorf("ncbi header missing genbank_accession column: %v", header)
	}

	return &Source{body: r, reader: reader, index: index, line: 1}, nil
}

// Next returns the next record, or io.EOF when the download is exhausted.
func (s *Source) Next(ctx context.Context) (domain.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.RawRecord{}, err
	}

	row, err := s.reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return domain.RawRecord{}, io.EOF
		}
		return domain.RawRecord{}, fmt.Errorf("read ncbi record after line %d: %w", s.line, err)
	}
	s.line++

	get := func(col string) string {
		i, ok := s.index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	return domain.RawRecord{
		Accession:          get("genbank_accession"),
		Database:           get("database"),
		Strain:             get("strain"),
		Region:             get("region"),
		Location:           get("location"),
		Collected:          get("collected"),
		Submitted:          get("submitted"),
		Length:             get("length"),
		Host:               get("host"),
		IsolationSource:    get("isolation_source"),
		BioSampleAccession: get("biosample_accession"),
		Title:              get("title"),
		Authors:            get("authors"),
		Publications:       get("publications"),
		Sequence:           get("sequence"),
	}, nil
}

// Close releases the underlying response body or file.
func (s *Source) Close() error {
	return s.body.Close()
}
