package ratelimit

import "time"

// Record tracks how many requests one client made in the current window.
type Record struct {
	Key     string
	Count   int
	ResetAt time.Time
}

// Store holds the rate limit records. Implementations do not need to be
// concurrency safe on their own, the limiter serializes all access.
type Store interface {
	Get(key string) (*Record, bool)
	Set(key string, rec *Record)
	Sweep(now time.Time)
}

// MemoryStore keeps records in a plain map. State does not survive a
// restart, which is acceptable for the window sizes involved.
type MemoryStore struct {
	records map[string]*Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

func (s *MemoryStore) Get(key string) (*Record, bool) {
	rec, ok := s.records[key]
	return rec, ok
}

func (s *MemoryStore) Set(key string, rec *Record) {
	s.records[key] = rec
}

// Sweep drops every record whose window has already closed, bounding the
// store to the number of distinct active keys.
func (s *MemoryStore) Sweep(now time.Time) {
	for key, rec := range s.records {
		if now.After(rec.ResetAt) {
			delete(s.records, key)
		}
	}
}
