// Copyright (c) 2026 TRV Enterprises LLC
// Licensed under the Business Source License 1.1
// See LICENSE file for details.

package model

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"
)

func validRule() AlertRule {
	return AlertRule{
		ID:                "r1",
		Name:              "joy high",
		Enabled:           true,
		Dimension:         DimensionJoy,
		Condition:         ConditionAbove,
		Threshold:         75,
		TimeWindowMinutes: 15,
		ConsecutiveCount:  2,
		Priority:          PriorityMedium,
		CreatedAt:         time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestAlertRule_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *AlertRule)
		wantErr bool
	}{
		{"valid", func(r *AlertRule) {}, false},
		{"empty name", func(r *AlertRule) { r.Name = "" }, true},
		{"zero threshold", func(r *AlertRule) { r.Threshold = 0 }, true},
		{"negative threshold", func(r *AlertRule) { r.Threshold = -5 }, true},
		{"zero window", func(r *AlertRule) { r.TimeWindowMinutes = 0 }, true},
		{"negative window", func(r *AlertRule) { r.TimeWindowMinutes = -1 }, true},
		{"zero consecutive", func(r *AlertRule) { r.ConsecutiveCount = 0 }, true},
		{"unknown dimension", func(r *AlertRule) { r.Dimension = "boredom" }, true},
		{"unknown condition", func(r *AlertRule) { r.Condition = "near" }, true},
		{"unknown priority", func(r *AlertRule) { r.Priority = "urgent" }, true},
		{"overall dimension", func(r *AlertRule) { r.Dimension = DimensionOverall }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRule()
			tt.mutate(&r)
			err := r.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAlertRule_Normalize(t *testing.T) {
	r := AlertRule{Name: "n", Condition: ConditionAbove, Threshold: 1, TimeWindowMinutes: 1}
	r.Normalize()

	if r.ConsecutiveCount != 1 {
		t.Errorf("ConsecutiveCount = %d, want default 1", r.ConsecutiveCount)
	}
	if r.Priority != PriorityMedium {
		t.Errorf("Priority = %s, want default medium", r.Priority)
	}
	if r.Dimension != DimensionOverall {
		t.Errorf("Dimension = %s, want default overall", r.Dimension)
	}
	if err := r.Validate(); err != nil {
		t.Errorf("normalized rule invalid: %v", err)
	}
}

func TestRulePatch_Apply(t *testing.T) {
	r := validRule()

	newName := "renamed"
	newThreshold := 90.0
	patch := RulePatch{Name: &newName, Threshold: &newThreshold}
	patch.Apply(&r)

	if r.Name != "renamed" || r.Threshold != 90 {
		t.Errorf("patch not applied: name=%q threshold=%v", r.Name, r.Threshold)
	}
	// Untouched fields survive
	if r.Dimension != DimensionJoy || r.ConsecutiveCount != 2 {
		t.Errorf("patch clobbered unset fields")
	}
}

func TestScoredEntry_Score(t *testing.T) {
	e := ScoredEntry{
		Timestamp:    time.Now(),
		OverallScore: 64,
		DimensionScores: map[Dimension]float64{
			DimensionJoy:   80,
			DimensionAnger: 10,
		},
	}

	if v, err := e.Score(DimensionOverall); err != nil || v != 64 {
		t.Errorf("Score(overall) = %v, %v; want 64, nil", v, err)
	}
	if v, err := e.Score(DimensionJoy); err != nil || v != 80 {
		t.Errorf("Score(joy) = %v, %v; want 80, nil", v, err)
	}
	if _, err := e.Score(DimensionFear); !errors.Is(err, ErrDimensionMissing) {
		t.Errorf("Score(fear) error = %v, want ErrDimensionMissing", err)
	}
}

func TestAlertRule_RoundTrip(t *testing.T) {
	triggered := time.Date(2026, 2, 10, 14, 30, 0, 0, time.UTC)
	r := validRule()
	r.LastTriggered = &triggered
	r.TriggerCount = 3

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded AlertRule
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if !reflect.DeepEqual(r, decoded) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", decoded, r)
	}
}

func TestTriggeredAlert_RoundTrip(t *testing.T) {
	a := TriggeredAlert{
		ID:           "a1",
		RuleID:       "r1",
		RuleName:     "joy high",
		Timestamp:    time.Date(2026, 2, 10, 14, 30, 0, 0, time.UTC),
		Dimension:    DimensionJoy,
		Value:        82.5,
		Threshold:    75,
		Condition:    ConditionAbove,
		Priority:     PriorityHigh,
		Message:      "joy exceeded threshold: 82.5 > 75",
		Acknowledged: true,
	}

	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded TriggeredAlert
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if !reflect.DeepEqual(a, decoded) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", decoded, a)
	}
}
