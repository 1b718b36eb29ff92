// Copyright (c) 2026 TRV Enterprises LLC
// Licensed under the Business Source License 1.1
// See LICENSE file for details.

// Package model defines the data types shared between the alerting engine,
// its stores, and the API: scored time-series entries, alert rules, and
// triggered alerts.
package model

import (
	"errors"
	"fmt"
	"time"
)

// Dimension is a named numeric facet of a scored entry.
type Dimension string

const (
	// DimensionOverall selects the entry's overall score instead of a
	// single emotion dimension.
	DimensionOverall Dimension = "overall"

	DimensionJoy      Dimension = "joy"
	DimensionSadness  Dimension = "sadness"
	DimensionAnger    Dimension = "anger"
	DimensionFear     Dimension = "fear"
	DimensionSurprise Dimension = "surprise"
	DimensionCalm     Dimension = "calm"
)

// Dimensions is the fixed set of scored dimensions (excluding "overall").
var Dimensions = []Dimension{
	DimensionJoy,
	DimensionSadness,
	DimensionAnger,
	DimensionFear,
	DimensionSurprise,
	DimensionCalm,
}

// ValidDimension reports whether d is "overall" or one of the named dimensions.
func ValidDimension(d Dimension) bool {
	if d == DimensionOverall {
		return true
	}
	for _, known := range Dimensions {
		if d == known {
			return true
		}
	}
	return false
}

// Condition is the comparison applied by a rule to its sampled values.
type Condition string

const (
	ConditionAbove  Condition = "above"
	ConditionBelow  Condition = "below"
	ConditionEquals Condition = "equals"
	ConditionSpike  Condition = "spike"
	ConditionDrop   Condition = "drop"
)

// ValidCondition reports whether c is a known condition.
func ValidCondition(c Condition) bool {
	switch c {
	case ConditionAbove, ConditionBelow, ConditionEquals, ConditionSpike, ConditionDrop:
		return true
	}
	return false
}

// Priority describes alert urgency. It is passed through to alerts and
// never enters evaluation logic.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// ValidPriority reports whether p is a known priority.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// ScoredEntry is one time-series sample produced by the external scoring
// service. Entries are immutable once created; the engine only reads them.
type ScoredEntry struct {
	Timestamp       time.Time             `json:"timestamp"`
	OverallScore    float64               `json:"overall_score"`
	DimensionScores map[Dimension]float64 `json:"dimension_scores"`
}

// ErrDimensionMissing is returned when an entry has no score for the
// requested dimension.
var ErrDimensionMissing = errors.New("dimension missing from entry")

// Score extracts the value for the given dimension from the entry.
// DimensionOverall selects the overall score.
func (e *ScoredEntry) Score(d Dimension) (float64, error) {
	if d == DimensionOverall {
		return e.OverallScore, nil
	}
	v, ok := e.DimensionScores[d]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrDimensionMissing, d)
	}
	return v, nil
}

// AlertRule is a monitoring configuration watched by the evaluator.
type AlertRule struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Enabled           bool       `json:"enabled"`
	Dimension         Dimension  `json:"dimension"`
	Condition         Condition  `json:"condition"`
	Threshold         float64    `json:"threshold"`
	TimeWindowMinutes int        `json:"time_window_minutes"`
	ConsecutiveCount  int        `json:"consecutive_count"`
	Priority          Priority   `json:"priority"`
	CreatedAt         time.Time  `json:"created_at"`
	LastTriggered     *time.Time `json:"last_triggered,omitempty"`
	TriggerCount      int64      `json:"trigger_count"`
}

// Normalize applies defaults for optional fields before validation.
func (r *AlertRule) Normalize() {
	if r.ConsecutiveCount == 0 {
		r.ConsecutiveCount = 1
	}
	if r.Priority == "" {
		r.Priority = PriorityMedium
	}
	if r.Dimension == "" {
		r.Dimension = DimensionOverall
	}
}

// Validate checks the rule's configuration. Threshold, window, and
// consecutive count must all be positive.
func (r *AlertRule) Validate() error {
	if r.Name == "" {
		return errors.New("rule name is required")
	}
	if !ValidDimension(r.Dimension) {
		return fmt.Errorf("unknown dimension: %s", r.Dimension)
	}
	if !ValidCondition(r.Condition) {
		return fmt.Errorf("unknown condition: %s", r.Condition)
	}
	if !ValidPriority(r.Priority) {
		return fmt.Errorf("unknown priority: %s", r.Priority)
	}
	if r.Threshold <= 0 {
		return errors.New("threshold must be positive")
	}
	if r.TimeWindowMinutes <= 0 {
		return errors.New("time window must be positive")
	}
	if r.ConsecutiveCount <= 0 {
		return errors.New("consecutive count must be positive")
	}
	return nil
}

// RulePatch is a partial update to an alert rule. Nil fields are left
// unchanged.
type RulePatch struct {
	Name              *string    `json:"name,omitempty"`
	Enabled           *bool      `json:"enabled,omitempty"`
	Dimension         *Dimension `json:"dimension,omitempty"`
	Condition         *Condition `json:"condition,omitempty"`
	Threshold         *float64   `json:"threshold,omitempty"`
	TimeWindowMinutes *int       `json:"time_window_minutes,omitempty"`
	ConsecutiveCount  *int       `json:"consecutive_count,omitempty"`
	Priority          *Priority  `json:"priority,omitempty"`
}

// Apply copies the patch's non-nil fields onto the rule.
func (p *RulePatch) Apply(r *AlertRule) {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Enabled != nil {
		r.Enabled = *p.Enabled
	}
	if p.Dimension != nil {
		r.Dimension = *p.Dimension
	}
	if p.Condition != nil {
		r.Condition = *p.Condition
	}
	if p.Threshold != nil {
		r.Threshold = *p.Threshold
	}
	if p.TimeWindowMinutes != nil {
		r.TimeWindowMinutes = *p.TimeWindowMinutes
	}
	if p.ConsecutiveCount != nil {
		r.ConsecutiveCount = *p.ConsecutiveCount
	}
	if p.Priority != nil {
		r.Priority = *p.Priority
	}
}

// TriggeredAlert is an immutable record of a rule firing. The rule name is
// denormalized at creation time so renaming or deleting the rule later does
// not corrupt alert history. Acknowledged is the only mutable field.
type TriggeredAlert struct {
	ID           string    `json:"id"`
	RuleID       string    `json:"rule_id"`
	RuleName     string    `json:"rule_name"`
	Timestamp    time.Time `json:"timestamp"`
	Dimension    Dimension `json:"dimension"`
	Value        float64   `json:"value"`
	Threshold    float64   `json:"threshold"`
	Condition    Condition `json:"condition"`
	Priority     Priority  `json:"priority"`
	Message      string    `json:"message"`
	Acknowledged bool      `json:"acknowledged"`
}
