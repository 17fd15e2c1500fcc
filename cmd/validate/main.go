// Command validate performs integrity checks across the three files written
// by a genbank-curate run: the metadata table, the FASTA file and the
// locations map. It verifies column shape, placeholder filling, strain
// uniqueness, sequence/metadata alignment and location map consistency.
//
// Usage:
//
//	go run ./cmd/validate -dir ./out
package main

import (
	"bufio"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/genbank-curate/internal/adapter/files"
	"github.com/couchcryptid/genbank-curate/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dir := flag.String("dir", "", "output directory of a genbank-curate run")
	flag.Parse()

	if *dir == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*dir, os.Stdout); code != 0 {
		os.Exit(code)
	}
}

func run(dir string, out io.Writer) int {
	fmt.Fprintln(out, "=== GenBank Curation Output Validation ===")
	fmt.Fprintln(out)

	meta, err := loadTSV(filepath.Join(dir, files.MetadataFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load metadata: %v\n", err)
		return 1
	}
	seqs, err := loadFASTA(filepath.Join(dir, files.SequencesFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load sequences: %v\n", err)
		return 1
	}
	locs, err := loadTSV(filepath.Join(dir, files.LocationsMapFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load locations map: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateMetadata(meta),
		validateSequences(meta, seqs),
		validateLocationsMap(locs, meta),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Records: %d metadata rows, %d sequences, %d locations\n",
		max(len(meta)-1, 0), len(seqs), max(len(locs)-1, 0))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// ── Data loading ──

// loadTSV returns every row of a tab-separated file, header included.
func loadTSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '\t'
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no header in %s", path)
	}
	return rows, nil
}

type fastaRecord struct {
	name     string
	sequence string
}

func loadFASTA(path string) ([]fastaRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var recs []fastaRecord
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, ">"):
			recs = append(recs, fastaRecord{name: line[1:]})
		case line == "":
		case len(recs) == 0:
			return nil, fmt.Errorf("sequence data before first header in %s", path)
		default:
			recs[len(recs)-1].sequence += line
		}
	}
	return recs, sc.Err()
}

// ── Phase 1: Metadata Table ──
// Header matches the column list, every row is complete and strains are unique.

func validateMetadata(meta [][]string) *phase {
	p := &phase{name: "Phase 1: Metadata Table"}
	if !slices.Equal(meta[0], domain.MetadataColumns) {
		p.errorf("header mismatch: got %v", meta[0])
		return p
	}

	strains := make(map[string]int)
	for i, row := range meta[1:] {
		line := i + 2
		if len(row) != len(domain.MetadataColumns) {
			p.errorf("line %d: %d columns, want %d", line, len(row), len(domain.MetadataColumns))
			continue
		}
		for j, v := range row {
			if v == "" {
				p.errorf("line %d: empty %s (want %q)", line, domain.MetadataColumns[j], domain.Placeholder)
			}
		}

		strain := row[0]
		if prev, ok := strains[strain]; ok {
			p.errorf("line %d: strain %s already on line %d", line, strain, prev)
		}
		strains[strain] = line
		if strings.Count(strain, "/") < 2 || strings.ContainsAny(strain, " \t") {
			p.errorf("line %d: malformed strain %q", line, strain)
		}

		if row[1] != domain.Virus {
			p.errorf("line %d: virus %q, want %q", line, row[1], domain.Virus)
		}
		if _, err := time.Parse(time.DateOnly, row[5]); err != nil {
			p.errorf("line %d: date %q is not YYYY-MM-DD", line, row[5])
		}
		if _, err := strconv.Atoi(row[15]); err != nil {
			p.errorf("line %d: length %q is not an integer", line, row[15])
		}
	}
	return p
}

// ── Phase 2: Sequence Alignment ──
// FASTA records appear in metadata order and match the length column.

func validateSequences(meta [][]string, seqs []fastaRecord) *phase {
	p := &phase{name: "Phase 2: Sequence Alignment"}
	rows := meta[1:]
	if len(rows) != len(seqs) {
		p.errorf("%d metadata rows but %d sequences", len(rows), len(seqs))
	}

	for i := range min(len(rows), len(seqs)) {
		row, seq := rows[i], seqs[i]
		if len(row) < 16 {
			continue
		}
		if row[0] != seq.name {
			p.errorf("record %d: fasta header %q, metadata strain %q", i+1, seq.name, row[0])
		}
		if n, err := strconv.Atoi(row[15]); err == nil && n != len(seq.sequence) {
			p.errorf("record %d (%s): length column %d, sequence length %d", i+1, row[0], n, len(seq.sequence))
		}
	}
	return p
}

// ── Phase 3: Locations Map ──
// Sorted unique names with valid coordinates, covering every metadata location.

func validateLocationsMap(locs, meta [][]string) *phase {
	p := &phase{name: "Phase 3: Locations Map"}
	if !slices.Equal(locs[0], files.LocationsMapColumns) {
		p.errorf("header mismatch: got %v", locs[0])
		return p
	}

	names := make(map[string]bool)
	prev := ""
	for i, row := range locs[1:] {
		line := i + 2
		if len(row) != len(files.LocationsMapColumns) {
			p.errorf("line %d: %d columns, want %d", line, len(row), len(files.LocationsMapColumns))
			continue
		}
		name := row[0]
		if i > 0 && name <= prev {
			p.errorf("line %d: %q not sorted after %q", line, name, prev)
		}
		prev = name
		names[name] = true

		lat, err := strconv.ParseFloat(row[1], 64)
		if err != nil || lat < -90 || lat > 90 {
			p.errorf("line %d: invalid lat %q", line, row[1])
		}
		lon, err := strconv.ParseFloat(row[2], 64)
		if err != nil || lon < -180 || lon > 180 {
			p.errorf("line %d: invalid lon %q", line, row[2])
		}
	}

	rawCol := slices.Index(domain.MetadataColumns, "gb_raw_location")
	for i, row := range meta[1:] {
		if len(row) <= rawCol {
			continue
		}
		if raw := row[rawCol]; raw != domain.Placeholder && !names[raw] {
			p.errorf("metadata line %d: location %q missing from map", i+2, raw)
		}
	}
	return p
}
