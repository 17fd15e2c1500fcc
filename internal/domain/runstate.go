package domain

import (
	"sort"
	"sync"
)

// locationEntry caches one resolution outcome. found=false records a
// definitive "no match" so the raw string is not looked up again.
type locationEntry struct {
	record LocationRecord
	found  bool
}

// RunState holds everything that must stay consistent for the lifetime of a
// single curation run: resolved locations keyed by raw string and the set of
// strain IDs already emitted. It is safe for concurrent use; Claim is an
// atomic check-and-insert so concurrent callers still get exactly one winner
// per strain ID.
type RunState struct {
	mu        sync.Mutex
	locations map[string]locationEntry
	strains   map[string]struct{}
	hits      int
	misses    int
}

// NewRunState returns an empty RunState.
func NewRunState() *RunState {
	return &RunState{
		locations: make(map[string]locationEntry),
		strains:   make(map[string]struct{}),
	}
}

func (s *RunState) lookupLocation(raw string) (locationEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.locations[raw]
	if ok {
		s.hits++
	} else {
		s.misses++
	}
	return e, ok
}

// storeLocation keeps the first outcome stored for raw.
func (s *RunState) storeLocation(raw string, e locationEntry) locationEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.locations[raw]; ok {
		return existing
	}
	s.locations[raw] = e
	return e
}

// Claim registers strain as emitted. It returns false if the strain was
// already claimed earlier in the run.
func (s *RunState) Claim(strain string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, seen := s.strains[strain]; seen {
		return false
	}
	s.strains[strain] = struct{}{}
	return true
}

// claimed reports whether strain has been emitted this run.
func (s *RunState) claimed(strain string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.strains[strain]
	return ok
}

// Locations returns every successfully resolved location, sorted by raw
// location string.
func (s *RunState) Locations() []LocationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]LocationRecord, 0, len(s.locations))
	for _, e := range s.locations {
		if e.found {
			out = append(out, e.record)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Raw < out[j].Raw })
	return out
}

// CacheStats returns the number of location lookups served from the cache
// and the number that required a geocoder call.
func (s *RunState) CacheStats() (hits, misses int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits, s.misses
}
