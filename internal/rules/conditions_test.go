// Copyright (c) 2026 TRV Enterprises LLC
// SPDX-License-Identifier: Apache-2.0
// See LICENSE file for details.

package rules

import (
	"strings"
	"testing"

	"github.com/tviviano/mood-sentinel/pkg/model"
)

func TestEvalCondition_Above(t *testing.T) {
	tests := []struct {
		name      string
		values    []float64
		threshold float64
		want      bool
	}{
		{"single above", []float64{80}, 75, true},
		{"single equal", []float64{75}, 75, false},
		{"single below", []float64{70}, 75, false},
		{"all above", []float64{76, 80, 90}, 75, true},
		{"one at threshold", []float64{80, 75, 90}, 75, false},
		{"one below", []float64{80, 60, 90}, 75, false},
		{"empty", nil, 75, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvalCondition(model.ConditionAbove, tt.values, tt.threshold)
			if got != tt.want {
				t.Errorf("EvalCondition(above, %v, %v) = %v, want %v", tt.values, tt.threshold, got, tt.want)
			}
		})
	}
}

func TestEvalCondition_Below(t *testing.T) {
	tests := []struct {
		name      string
		values    []float64
		threshold float64
		want      bool
	}{
		{"single below", []float64{20}, 30, true},
		{"single equal", []float64{30}, 30, false},
		{"single above", []float64{40}, 30, false},
		{"all below", []float64{10, 20, 29}, 30, true},
		{"one above", []float64{10, 35, 20}, 30, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvalCondition(model.ConditionBelow, tt.values, tt.threshold)
			if got != tt.want {
				t.Errorf("EvalCondition(below, %v, %v) = %v, want %v", tt.values, tt.threshold, got, tt.want)
			}
		})
	}
}

func TestEvalCondition_EqualsTolerance(t *testing.T) {
	tests := []struct {
		name      string
		values    []float64
		threshold float64
		want      bool
	}{
		{"within tolerance", []float64{53}, 50, true},
		{"within tolerance below", []float64{46}, 50, true},
		{"exactly at tolerance", []float64{55}, 50, false},
		{"outside tolerance", []float64{56}, 50, false},
		{"exact match", []float64{50}, 50, true},
		{"all within", []float64{48, 51, 53}, 50, true},
		{"one outside", []float64{48, 51, 57}, 50, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvalCondition(model.ConditionEquals, tt.values, tt.threshold)
			if got != tt.want {
				t.Errorf("EvalCondition(equals, %v, %v) = %v, want %v", tt.values, tt.threshold, got, tt.want)
			}
		})
	}
}

func TestEvalCondition_Spike(t *testing.T) {
	tests := []struct {
		name      string
		values    []float64
		threshold float64
		want      bool
	}{
		{"delta 25 over 20", []float64{30, 55}, 20, true},
		{"delta 15 under 20", []float64{30, 45}, 20, false},
		{"delta equal to threshold", []float64{30, 50}, 20, false},
		{"middle dip ignored", []float64{30, 10, 55}, 20, true},
		{"negative delta", []float64{55, 30}, 20, false},
		{"single value never spikes", []float64{90}, 20, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvalCondition(model.ConditionSpike, tt.values, tt.threshold)
			if got != tt.want {
				t.Errorf("EvalCondition(spike, %v, %v) = %v, want %v", tt.values, tt.threshold, got, tt.want)
			}
		})
	}
}

func TestEvalCondition_Drop(t *testing.T) {
	tests := []struct {
		name      string
		values    []float64
		threshold float64
		want      bool
	}{
		{"delta 25 over 20", []float64{55, 30}, 20, true},
		{"delta 15 under 20", []float64{45, 30}, 20, false},
		{"rising never drops", []float64{30, 55}, 20, false},
		{"single value never drops", []float64{5}, 20, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvalCondition(model.ConditionDrop, tt.values, tt.threshold)
			if got != tt.want {
				t.Errorf("EvalCondition(drop, %v, %v) = %v, want %v", tt.values, tt.threshold, got, tt.want)
			}
		})
	}
}

func TestDelta(t *testing.T) {
	tests := []struct {
		name   string
		cond   model.Condition
		values []float64
		want   float64
	}{
		{"spike delta", model.ConditionSpike, []float64{30, 55}, 25},
		{"drop delta", model.ConditionDrop, []float64{55, 30}, 25},
		{"above reports latest", model.ConditionAbove, []float64{76, 80}, 80},
		{"empty", model.ConditionAbove, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Delta(tt.cond, tt.values)
			if got != tt.want {
				t.Errorf("Delta(%s, %v) = %v, want %v", tt.cond, tt.values, got, tt.want)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name  string
		rule  model.AlertRule
		value float64
		want  string
	}{
		{
			"above",
			model.AlertRule{Dimension: model.DimensionOverall, Condition: model.ConditionAbove, Threshold: 75},
			80,
			"overall exceeded threshold: 80 > 75",
		},
		{
			"below",
			model.AlertRule{Dimension: model.DimensionCalm, Condition: model.ConditionBelow, Threshold: 30},
			22.5,
			"calm dropped below threshold: 22.5 < 30",
		},
		{
			"equals",
			model.AlertRule{Dimension: model.DimensionJoy, Condition: model.ConditionEquals, Threshold: 50},
			53,
			"joy reached target level: 53 ≈ 50",
		},
		{
			"spike uses delta",
			model.AlertRule{Dimension: model.DimensionAnger, Condition: model.ConditionSpike, Threshold: 20},
			25,
			"anger spiked by 25 points",
		},
		{
			"drop uses delta",
			model.AlertRule{Dimension: model.DimensionFear, Condition: model.ConditionDrop, Threshold: 20},
			25,
			"fear dropped by 25 points",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Describe(tt.rule, tt.value)
			if got != tt.want {
				t.Errorf("Describe() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDescribe_Deterministic(t *testing.T) {
	rule := model.AlertRule{Dimension: model.DimensionJoy, Condition: model.ConditionAbove, Threshold: 75}
	first := Describe(rule, 80)
	for i := 0; i < 10; i++ {
		if got := Describe(rule, 80); got != first {
			t.Fatalf("Describe() not deterministic: %q != %q", got, first)
		}
	}
	if !strings.Contains(first, "80 > 75") {
		t.Errorf("message %q missing comparison", first)
	}
}
