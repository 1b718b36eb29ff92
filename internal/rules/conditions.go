// Copyright (c) 2026 TRV Enterprises LLC
// SPDX-License-Identifier: Apache-2.0
// See LICENSE file for details.

// Package rules implements the threshold alerting engine: condition
// evaluation over windowed score samples, consecutive-count debouncing,
// cooldown gating, and alert creation.
package rules

import (
	"fmt"
	"strconv"

	"github.com/tviviano/mood-sentinel/pkg/model"
)

// EqualsTolerance is the match tolerance for the "equals" condition,
// on the 0-100 score scale.
const EqualsTolerance = 5.0

// EvalCondition evaluates a condition over a time-ascending sequence of
// sampled values. values[len-1] is the most recent sample.
//
// above/below/equals require every sample to satisfy the comparison.
// spike/drop measure net change between the oldest and newest sample and
// need at least two samples.
func EvalCondition(cond model.Condition, values []float64, threshold float64) bool {
	if len(values) == 0 {
		return false
	}

	switch cond {
	case model.ConditionAbove:
		for _, v := range values {
			if v <= threshold {
				return false
			}
		}
		return true

	case model.ConditionBelow:
		for _, v := range values {
			if v >= threshold {
				return false
			}
		}
		return true

	case model.ConditionEquals:
		for _, v := range values {
			diff := v - threshold
			if diff < 0 {
				diff = -diff
			}
			if diff >= EqualsTolerance {
				return false
			}
		}
		return true

	case model.ConditionSpike:
		if len(values) < 2 {
			return false
		}
		return values[len(values)-1]-values[0] > threshold

	case model.ConditionDrop:
		if len(values) < 2 {
			return false
		}
		return values[0]-values[len(values)-1] > threshold
	}

	return false
}

// Delta returns the value a spike/drop alert reports: the net change across
// the sampled window. For level conditions it is just the latest value.
func Delta(cond model.Condition, values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	last := values[len(values)-1]
	switch cond {
	case model.ConditionSpike:
		return last - values[0]
	case model.ConditionDrop:
		return values[0] - last
	default:
		return last
	}
}

// Describe generates the human-readable alert message for a rule firing.
// Pure function of its inputs; for spike/drop the value is the delta, not
// the raw score.
func Describe(rule model.AlertRule, value float64) string {
	dim := string(rule.Dimension)
	switch rule.Condition {
	case model.ConditionAbove:
		return fmt.Sprintf("%s exceeded threshold: %s > %s", dim, formatScore(value), formatScore(rule.Threshold))
	case model.ConditionBelow:
		return fmt.Sprintf("%s dropped below threshold: %s < %s", dim, formatScore(value), formatScore(rule.Threshold))
	case model.ConditionEquals:
		return fmt.Sprintf("%s reached target level: %s ≈ %s", dim, formatScore(value), formatScore(rule.Threshold))
	case model.ConditionSpike:
		return fmt.Sprintf("%s spiked by %s points", dim, formatScore(value))
	case model.ConditionDrop:
		return fmt.Sprintf("%s dropped by %s points", dim, formatScore(value))
	}
	return fmt.Sprintf("%s triggered at %s", dim, formatScore(value))
}

// formatScore formats a score without trailing zeros ("80", "12.5").
func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
