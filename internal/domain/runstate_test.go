package domain

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunState_Claim(t *testing.T) {
	s := NewRunState()

	assert.True(t, s.Claim("USA/MA1/2020"))
	assert.False(t, s.Claim("USA/MA1/2020"))
	assert.True(t, s.Claim("USA/MA2/2020"))
	assert.True(t, s.claimed("USA/MA1/2020"))
	assert.False(t, s.claimed("USA/MA3/2020"))
}

func TestRunState_ClaimConcurrentSingleWinner(t *testing.T) {
	s := NewRunState()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Claim("Hubei/WH-01/2019") {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestRunState_LocationsSortedAndFoundOnly(t *testing.T) {
	s := NewRunState()
	s.storeLocation("USA: Washington", locationEntry{found: true, record: LocationRecord{Raw: "USA: Washington"}})
	s.storeLocation("Atlantis", locationEntry{found: false})
	s.storeLocation("China: Hubei", locationEntry{found: true, record: LocationRecord{Raw: "China: Hubei"}})
	s.storeLocation("Australia", locationEntry{found: true, record: LocationRecord{Raw: "Australia"}})

	locs := s.Locations()
	raws := make([]string, len(locs))
	for i, l := range locs {
		raws[i] = l.Raw
	}
	assert.Equal(t, []string{"Australia", "China: Hubei", "USA: Washington"}, raws)
}

func TestRunState_StoreKeepsFirst(t *testing.T) {
	s := NewRunState()
	s.storeLocation("Spain", locationEntry{found: true, record: LocationRecord{Raw: "Spain", Division: "first"}})
	got := s.storeLocation("Spain", locationEntry{found: true, record: LocationRecord{Raw: "Spain", Division: "second"}})

	assert.Equal(t, "first", got.record.Division)
}
