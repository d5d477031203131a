package history

import (
	"sync"
)

// InmemStore keeps the most recent records in memory.
type InmemStore struct {
	cacheSize int

	mu      sync.Mutex
	records []Record
}

// NewInmemStore returns a store holding at most cacheSize records. Older
// records are evicted first.
func NewInmemStore(cacheSize int) *InmemStore {
	return &InmemStore{
		cacheSize: cacheSize,
	}
}

// Add implements Store.
func (s *InmemStore) Add(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, r)
	if s.cacheSize > 0 && len(s.records) > s.cacheSize {
		s.records = s.records[len(s.records)-s.cacheSize:]
	}

	return nil
}

// List implements Store.
func (s *InmemStore) List() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := make([]Record, len(s.records))
	copy(res, s.records)

	return res, nil
}

// Close implements Store.
func (s *InmemStore) Close() error {
	return nil
}
