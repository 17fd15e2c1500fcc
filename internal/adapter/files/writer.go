package files

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/couchcryptid/genbank-curate/internal/domain"
)

// Output file names, relative to the output directory.
const (
	MetadataFile     = "genbank_seq_metadata.tsv"
	SequencesFile    = "genbank_seqs.fasta"
	LocationsMapFile = "genbank_locations_map.tsv"
)

// LocationsMapColumns is the header of the locations map.
var LocationsMapColumns = []string{"name", "lat", "lon", "precision"}

// Writer writes curated records to the metadata table and the FASTA file,
// and the resolved locations to the locations map.
// It implements pipeline.Loader and pipeline.LocationWriter.
type Writer struct {
	dir      string
	metaFile *os.File
	meta     *csv.Writer
	seqFile  *os.File
	seqs     *bufio.Writer
}

// Create opens both record outputs in dir and writes the metadata header, so
// a run that accepts no records still leaves well-formed files behind.
func Create(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	metaFile, err := os.Create(filepath.Join(dir, MetadataFile))
	if err != nil {
		return nil, fmt.Errorf("create metadata file: %w", err)
	}
	seqFile, err := os.Create(filepath.Join(dir, SequencesFile))
	if err != nil {
		metaFile.Close()
		return nil, fmt.Errorf("create sequences file: %w", err)
	}

	w := &Writer{
		dir:      dir,
		metaFile: metaFile,
		meta:     newTSVWriter(metaFile),
		seqFile:  seqFile,
		seqs:     bufio.NewWriter(seqFile),
	}
	if err := w.meta.Write(domain.MetadataColumns); err != nil {
		w.Close()
		return nil, fmt.Errorf("write metadata header: %w", err)
	}
	return w, nil
}

// Load appends one metadata row and one FASTA record.
func (w *Writer) Load(_ context.Context, rec domain.OutputRecord) error {
	if err := w.meta.Write(rec.Row()); err != nil {
		return fmt.Errorf("write metadata row %s: %w", rec.Strain, err)
	}
	if _, err := fmt.Fprintf(w.seqs, ">%s\n%s\n\n", rec.Strain, rec.Sequence); err != nil {
		return fmt.Errorf("write sequence %s: %w", rec.Strain, err)
	}
	return nil
}

// WriteLocations writes the locations map, one row per resolved raw location.
// Callers pass the locations already sorted by raw string.
func (w *Writer) WriteLocations(locs []domain.LocationRecord) error {
	return WriteLocationsMap(filepath.Join(w.dir, LocationsMapFile), locs)
}

// Close flushes and closes the record outputs.
func (w *Writer) Close() error {
	w.meta.Flush()
	errs := []error{w.meta.Error(), w.seqs.Flush(), w.metaFile.Close(), w.seqFile.Close()}
	return errors.Join(errs...)
}

// WriteLocationsMap writes locs to path with the LocationsMapColumns header.
func WriteLocationsMap(path string, locs []domain.LocationRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create locations map: %w", err)
	}

	if err := errors.Join(writeLocationRows(newTSVWriter(f), locs), f.Close()); err != nil {
		return fmt.Errorf("write locations map: %w", err)
	}
	return nil
}

func writeLocationRows(tw *csv.Writer, locs []domain.LocationRecord) error {
	if err := tw.Write(LocationsMapColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, loc := range locs {
		precision := loc.Precision.Level
		if precision == "" {
			precision = domain.Placeholder
		}
		err := tw.Write([]string{
			loc.Raw,
			strconv.FormatFloat(loc.Lat, 'f', -1, 64),
			strconv.FormatFloat(loc.Lon, 'f', -1, 64),
			precision,
		})
		if err != nil {
			return fmt.Errorf("write location %q: %w", loc.Raw, err)
		}
	}
	tw.Flush()
	return tw.Error()
}

func newTSVWriter(w io.Writer) *csv.Writer {
	tw := csv.NewWriter(w)
	tw.Comma = '\t'
	return tw
}
