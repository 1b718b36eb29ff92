// Copyright (c) 2026 TRV Enterprises LLC
// Licensed under the Business Source License 1.1
// See LICENSE file for details.

package stats

import (
	"testing"
	"time"

	"github.com/tviviano/mood-sentinel/pkg/model"
)

func TestSummarize(t *testing.T) {
	base := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

	entries := []model.ScoredEntry{
		{
			Timestamp:    base,
			OverallScore: 50,
			DimensionScores: map[model.Dimension]float64{
				model.DimensionJoy:  60,
				model.DimensionCalm: 40,
			},
		},
		{
			Timestamp:    base.Add(time.Minute),
			OverallScore: 70,
			DimensionScores: map[model.Dimension]float64{
				model.DimensionJoy: 80,
			},
		},
		{
			Timestamp:    base.Add(2 * time.Minute),
			OverallScore: 60,
			DimensionScores: map[model.Dimension]float64{
				model.DimensionJoy:  70,
				model.DimensionCalm: 30,
			},
		},
	}

	s := Summarize(entries)

	if s.Count != 3 {
		t.Errorf("Count = %d, want 3", s.Count)
	}
	if !s.From.Equal(base) || !s.To.Equal(base.Add(2*time.Minute)) {
		t.Errorf("window = [%v, %v], want entry boundaries", s.From, s.To)
	}

	if s.Overall == nil {
		t.Fatal("Overall stats missing")
	}
	if s.Overall.Min != 50 || s.Overall.Max != 70 || s.Overall.Mean != 60 || s.Overall.Last != 60 {
		t.Errorf("Overall = %+v, want min 50 max 70 mean 60 last 60", s.Overall)
	}

	joy := s.Dimensions[model.DimensionJoy]
	if joy == nil {
		t.Fatal("joy stats missing")
	}
	if joy.Count != 3 || joy.Min != 60 || joy.Max != 80 || joy.Mean != 70 || joy.Last != 70 {
		t.Errorf("joy = %+v, want count 3 min 60 max 80 mean 70 last 70", joy)
	}

	// Calm appears in only two entries.
	calm := s.Dimensions[model.DimensionCalm]
	if calm == nil {
		t.Fatal("calm stats missing")
	}
	if calm.Count != 2 || calm.Min != 30 || calm.Max != 40 || calm.Last != 30 {
		t.Errorf("calm = %+v, want count 2 min 30 max 40 last 30", calm)
	}

	// Never-scored dimensions are omitted, not zeroed.
	if _, ok := s.Dimensions[model.DimensionAnger]; ok {
		t.Error("anger stats present for a dimension no entry scored")
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)

	if s.Count != 0 {
		t.Errorf("Count = %d, want 0", s.Count)
	}
	if s.Overall != nil {
		t.Errorf("Overall = %+v, want nil for empty window", s.Overall)
	}
	if !s.From.IsZero() || !s.To.IsZero() {
		t.Errorf("window = [%v, %v], want zero boundaries", s.From, s.To)
	}
	if len(s.Dimensions) != 0 {
		t.Errorf("Dimensions = %v, want empty", s.Dimensions)
	}
}
