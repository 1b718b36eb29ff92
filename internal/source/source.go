// Copyright (c) 2026 TRV Enterprises LLC
// Licensed under the Business Source License 1.1
// See LICENSE file for details.

// Package source provides the scored-entry time series the evaluator reads.
// Entries arrive append-only with non-decreasing timestamps and are kept in
// a bounded in-memory buffer.
package source

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/tviviano/mood-sentinel/pkg/model"
)

var (
	ErrOutOfOrder   = errors.New("entry timestamp older than newest entry")
	ErrZeroCapacity = errors.New("source capacity must be positive")
)

// Source is a read-only view of the scored time series.
type Source interface {
	// Since returns a time-ascending snapshot of all entries with
	// timestamp >= t.
	Since(t time.Time) []model.ScoredEntry
}

// MemorySource is a bounded, concurrency-safe entry buffer. When the buffer
// is full the oldest entries are evicted.
type MemorySource struct {
	mu       sync.RWMutex
	entries  []model.ScoredEntry
	capacity int
}

// NewMemorySource creates a source holding at most capacity entries.
func NewMemorySource(capacity int) (*MemorySource, error) {
	if capacity <= 0 {
		return nil, ErrZeroCapacity
	}
	return &MemorySource{
		entries:  make([]model.ScoredEntry, 0, capacity),
		capacity: capacity,
	}, nil
}

// Append adds an entry to the series. A zero timestamp is stamped with the
// current time. Entries older than the newest stored entry are rejected to
// preserve timestamp monotonicity.
func (s *MemorySource) Append(e model.ScoredEntry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if n := len(s.entries); n > 0 && e.Timestamp.Before(s.entries[n-1].Timestamp) {
		return ErrOutOfOrder
	}

	s.entries = append(s.entries, e)
	if len(s.entries) > s.capacity {
		// Evict the oldest; shift rather than re-slice so the backing
		// array does not grow without bound.
		copy(s.entries, s.entries[1:])
		s.entries = s.entries[:s.capacity]
	}
	return nil
}

// Since returns a copy of all entries with timestamp >= t, oldest first.
func (s *MemorySource) Since(t time.Time) []model.ScoredEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Entries are time-ascending; binary search for the window start.
	i := sort.Search(len(s.entries), func(i int) bool {
		return !s.entries[i].Timestamp.Before(t)
	})

	out := make([]model.ScoredEntry, len(s.entries)-i)
	copy(out, s.entries[i:])
	return out
}

// Latest returns up to n of the newest entries, oldest first.
func (s *MemorySource) Latest(n int) []model.ScoredEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n > len(s.entries) {
		n = len(s.entries)
	}
	out := make([]model.ScoredEntry, n)
	copy(out, s.entries[len(s.entries)-n:])
	return out
}

// Len returns the number of buffered entries.
func (s *MemorySource) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
