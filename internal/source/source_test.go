// Copyright (c) 2026 TRV Enterprises LLC
// Licensed under the Business Source License 1.1
// See LICENSE file for details.

package source

import (
	"errors"
	"testing"
	"time"

	"github.com/tviviano/mood-sentinel/pkg/model"
)

var baseTime = time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

func entryAt(offset time.Duration, score float64) model.ScoredEntry {
	return model.ScoredEntry{
		Timestamp:    baseTime.Add(offset),
		OverallScore: score,
	}
}

func TestMemorySource_ZeroCapacity(t *testing.T) {
	if _, err := NewMemorySource(0); !errors.Is(err, ErrZeroCapacity) {
		t.Errorf("NewMemorySource(0) error = %v, want ErrZeroCapacity", err)
	}
	if _, err := NewMemorySource(-1); !errors.Is(err, ErrZeroCapacity) {
		t.Errorf("NewMemorySource(-1) error = %v, want ErrZeroCapacity", err)
	}
}

func TestMemorySource_AppendAndSince(t *testing.T) {
	s, err := NewMemorySource(100)
	if err != nil {
		t.Fatalf("NewMemorySource: %v", err)
	}

	for i, offset := range []time.Duration{0, time.Minute, 2 * time.Minute} {
		if err := s.Append(entryAt(offset, float64(50+i))); err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}

	got := s.Since(baseTime.Add(time.Minute))
	if len(got) != 2 {
		t.Fatalf("Since returned %d entries, want 2", len(got))
	}
	// Cutoff is inclusive.
	if !got[0].Timestamp.Equal(baseTime.Add(time.Minute)) {
		t.Errorf("first entry at %v, want cutoff included", got[0].Timestamp)
	}
	if got[0].OverallScore != 51 || got[1].OverallScore != 52 {
		t.Errorf("Since scores = %v, %v; want 51, 52", got[0].OverallScore, got[1].OverallScore)
	}

	if got := s.Since(baseTime.Add(time.Hour)); len(got) != 0 {
		t.Errorf("Since past newest returned %d entries, want 0", len(got))
	}
	if got := s.Since(baseTime.Add(-time.Hour)); len(got) != 3 {
		t.Errorf("Since before oldest returned %d entries, want 3", len(got))
	}
}

func TestMemorySource_RejectsOutOfOrder(t *testing.T) {
	s, err := NewMemorySource(100)
	if err != nil {
		t.Fatalf("NewMemorySource: %v", err)
	}

	if err := s.Append(entryAt(time.Minute, 50)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Append(entryAt(0, 60)); !errors.Is(err, ErrOutOfOrder) {
		t.Errorf("Append older entry error = %v, want ErrOutOfOrder", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d after rejected append, want 1", s.Len())
	}

	// Equal timestamps are allowed.
	if err := s.Append(entryAt(time.Minute, 70)); err != nil {
		t.Errorf("Append equal timestamp error = %v, want nil", err)
	}
}

func TestMemorySource_StampsZeroTimestamp(t *testing.T) {
	s, err := NewMemorySource(10)
	if err != nil {
		t.Fatalf("NewMemorySource: %v", err)
	}

	before := time.Now().UTC()
	if err := s.Append(model.ScoredEntry{OverallScore: 42}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	after := time.Now().UTC()

	got := s.Latest(1)
	if len(got) != 1 {
		t.Fatalf("Latest returned %d entries, want 1", len(got))
	}
	ts := got[0].Timestamp
	if ts.Before(before) || ts.After(after) {
		t.Errorf("stamped timestamp %v outside [%v, %v]", ts, before, after)
	}
}

func TestMemorySource_EvictsOldest(t *testing.T) {
	s, err := NewMemorySource(3)
	if err != nil {
		t.Fatalf("NewMemorySource: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := s.Append(entryAt(time.Duration(i)*time.Minute, float64(i))); err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}

	if s.Len() != 3 {
		t.Fatalf("Len = %d, want capacity 3", s.Len())
	}

	got := s.Since(baseTime)
	if got[0].OverallScore != 2 {
		t.Errorf("oldest surviving score = %v, want 2", got[0].OverallScore)
	}
	if got[len(got)-1].OverallScore != 4 {
		t.Errorf("newest score = %v, want 4", got[len(got)-1].OverallScore)
	}
}

func TestMemorySource_Latest(t *testing.T) {
	s, err := NewMemorySource(10)
	if err != nil {
		t.Fatalf("NewMemorySource: %v", err)
	}

	for i := 0; i < 4; i++ {
		if err := s.Append(entryAt(time.Duration(i)*time.Minute, float64(i))); err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}

	got := s.Latest(2)
	if len(got) != 2 || got[0].OverallScore != 2 || got[1].OverallScore != 3 {
		t.Errorf("Latest(2) = %v, want the two newest oldest-first", got)
	}

	if got := s.Latest(100); len(got) != 4 {
		t.Errorf("Latest(100) returned %d entries, want all 4", len(got))
	}
}

func TestMemorySource_SinceReturnsCopy(t *testing.T) {
	s, err := NewMemorySource(10)
	if err != nil {
		t.Fatalf("NewMemorySource: %v", err)
	}
	if err := s.Append(entryAt(0, 50)); err != nil {
		t.Fatalf("Append: %v", err)
	}

	snap := s.Since(baseTime)
	snap[0].OverallScore = 999

	if got := s.Since(baseTime); got[0].OverallScore != 50 {
		t.Error("mutating a Since snapshot changed stored entries")
	}
}
