// Copyright (c) 2026 TRV Enterprises LLC
// Licensed under the Business Source License 1.1
// See LICENSE file for details.

// Package stats computes per-dimension aggregates over a window of scored
// entries: count, min, max, mean, and the most recent value.
package stats

import (
	"math"
	"time"

	"github.com/tviviano/mood-sentinel/pkg/model"
)

// DimensionStats holds the aggregates for one dimension within a window.
// Dimensions absent from every entry in the window are omitted entirely.
type DimensionStats struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
	Last  float64 `json:"last"`
}

// Summary aggregates a window of scored entries.
type Summary struct {
	From       time.Time                           `json:"from"`
	To         time.Time                           `json:"to"`
	Count      int                                 `json:"count"`
	Overall    *DimensionStats                     `json:"overall,omitempty"`
	Dimensions map[model.Dimension]*DimensionStats `json:"dimensions"`
}

// accumulator tracks the running state of one dimension's aggregation.
type accumulator struct {
	count int
	sum   float64
	min   float64
	max   float64
	last  float64
}

func newAccumulator() *accumulator {
	return &accumulator{
		min: math.MaxFloat64,
		max: -math.MaxFloat64,
	}
}

func (a *accumulator) add(v float64) {
	a.count++
	a.sum += v
	a.last = v
	if v < a.min {
		a.min = v
	}
	if v > a.max {
		a.max = v
	}
}

func (a *accumulator) stats() *DimensionStats {
	if a.count == 0 {
		return nil
	}
	return &DimensionStats{
		Count: a.count,
		Min:   a.min,
		Max:   a.max,
		Mean:  a.sum / float64(a.count),
		Last:  a.last,
	}
}

// Summarize aggregates entries (time-ascending) into one summary. From/To
// are the window boundaries of the oldest and newest entries; both are zero
// when the window is empty.
func Summarize(entries []model.ScoredEntry) Summary {
	s := Summary{
		Count:      len(entries),
		Dimensions: make(map[model.Dimension]*DimensionStats),
	}
	if len(entries) == 0 {
		return s
	}

	s.From = entries[0].Timestamp
	s.To = entries[len(entries)-1].Timestamp

	overall := newAccumulator()
	accs := make(map[model.Dimension]*accumulator)

	for i := range entries {
		overall.add(entries[i].OverallScore)
		for d, v := range entries[i].DimensionScores {
			acc, ok := accs[d]
			if !ok {
				acc = newAccumulator()
				accs[d] = acc
			}
			acc.add(v)
		}
	}

	s.Overall = overall.stats()
	for d, acc := range accs {
		s.Dimensions[d] = acc.stats()
	}
	return s
}
