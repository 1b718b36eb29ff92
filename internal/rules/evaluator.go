// Copyright (c) 2026 TRV Enterprises LLC
// SPDX-License-Identifier: Apache-2.0
// See LICENSE file for details.

package rules

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/tviviano/mood-sentinel/internal/logger"
	"github.com/tviviano/mood-sentinel/internal/metrics"
	"github.com/tviviano/mood-sentinel/internal/source"
	"github.com/tviviano/mood-sentinel/pkg/model"
)

const (
	// Cooldown is the engine-wide minimum time between two triggers of the
	// same rule. Not configurable per rule.
	Cooldown = 30 * time.Minute

	// DefaultTickInterval drives one full evaluation pass.
	DefaultTickInterval = 30 * time.Second
)

// RuleStore is the evaluator's view of the rule collection. TryTrigger must
// be atomic: check the cooldown and record the trigger under one lock, so
// the check-then-set cannot race.
type RuleStore interface {
	ListEnabled() []model.AlertRule
	TryTrigger(id string, now time.Time, cooldown time.Duration) (bool, error)
}

// AlertStore is the evaluator's view of the alert log.
type AlertStore interface {
	Append(alert model.TriggeredAlert) (*model.TriggeredAlert, error)
}

// Switch gates the entire engine on or off.
type Switch interface {
	Enabled() bool
}

// PassStats summarizes one evaluation pass.
type PassStats struct {
	SwitchOff    bool
	Evaluated    int
	Fired        int
	Suppressed   int // condition held but cooldown not elapsed
	Insufficient int // fewer in-window entries than consecutive count
	Errors       int // per-rule evaluation errors (isolated)
	Aborted      bool
}

// Evaluator periodically scans enabled rules against the scored time series
// and appends alerts for rules whose condition holds and whose cooldown has
// elapsed.
type Evaluator struct {
	rules    RuleStore
	alerts   AlertStore
	src      source.Source
	sw       Switch
	interval time.Duration

	// Callback for alert firing (e.g., WebSocket push, webhook)
	onAlert func(alert model.TriggeredAlert)

	// Injectable clock for tests
	now func() time.Time

	log    zerolog.Logger
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewEvaluator creates an evaluator. A zero interval falls back to the
// default 30-second tick.
func NewEvaluator(rules RuleStore, alerts AlertStore, src source.Source, sw Switch, interval time.Duration, onAlert func(model.TriggeredAlert)) *Evaluator {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Evaluator{
		rules:    rules,
		alerts:   alerts,
		src:      src,
		sw:       sw,
		interval: interval,
		onAlert:  onAlert,
		now:      time.Now,
		log:      logger.WithComponent("evaluator"),
		stopCh:   make(chan struct{}),
	}
}

// Start starts the evaluator's tick loop.
func (e *Evaluator) Start() {
	e.wg.Add(1)
	go e.runLoop()
}

// Stop stops the tick loop. No pass is cancelled mid-flight; Stop waits for
// a running pass to complete.
func (e *Evaluator) Stop() {
	close(e.stopCh)
	e.wg.Wait()
}

// Interval returns the configured tick interval.
func (e *Evaluator) Interval() time.Duration {
	return e.interval
}

func (e *Evaluator) runLoop() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopCh:
			return
		case <-ticker.C:
			stats := e.RunPass()
			if !stats.SwitchOff {
				e.log.Debug().
					Int("evaluated", stats.Evaluated).
					Int("fired", stats.Fired).
					Int("suppressed", stats.Suppressed).
					Int("insufficient", stats.Insufficient).
					Int("errors", stats.Errors).
					Bool("aborted", stats.Aborted).
					Msg("evaluation pass complete")
			}
		}
	}
}

// RunPass performs one full evaluation pass. Rules are evaluated
// independently against a single snapshot of the rule set and the time
// series, so every rule in a pass sees the same "now" boundary. Per-rule
// evaluation errors are isolated; store I/O errors abort the remainder of
// the pass (the next tick retries naturally).
func (e *Evaluator) RunPass() PassStats {
	var stats PassStats

	if !e.sw.Enabled() {
		stats.SwitchOff = true
		metrics.EvalPassesSkippedTotal.Inc()
		return stats
	}

	metrics.EvalPassesTotal.Inc()
	now := e.now()

	enabled := e.rules.ListEnabled()
	if len(enabled) == 0 {
		return stats
	}

	// One snapshot covering the widest rule window; per-rule windows are
	// narrowed from it.
	maxWindow := 0
	for _, r := range enabled {
		if r.TimeWindowMinutes > maxWindow {
			maxWindow = r.TimeWindowMinutes
		}
	}
	entries := e.src.Since(now.Add(-time.Duration(maxWindow) * time.Minute))

	for _, rule := range enabled {
		if aborted := e.evaluateRule(rule, entries, now, &stats); aborted {
			stats.Aborted = true
			return stats
		}
	}
	return stats
}

// evaluateRule evaluates one rule against the pass snapshot. The returned
// bool is true only for store I/O failures, which abort the pass.
func (e *Evaluator) evaluateRule(rule model.AlertRule, entries []model.ScoredEntry, now time.Time, stats *PassStats) bool {
	stats.Evaluated++
	metrics.RulesEvaluatedTotal.Inc()

	// Narrow the pass snapshot to this rule's window.
	cutoff := now.Add(-time.Duration(rule.TimeWindowMinutes) * time.Minute)
	i := sort.Search(len(entries), func(i int) bool {
		return !entries[i].Timestamp.Before(cutoff)
	})
	window := entries[i:]

	// Not enough data to debounce: skip, don't treat as "not triggered".
	if len(window) < rule.ConsecutiveCount {
		stats.Insufficient++
		metrics.InsufficientDataTotal.Inc()
		return false
	}

	samples := window[len(window)-rule.ConsecutiveCount:]
	values := make([]float64, len(samples))
	for j := range samples {
		v, err := samples[j].Score(rule.Dimension)
		if err != nil {
			// Isolated: this rule is done for the cycle, others proceed.
			stats.Errors++
			metrics.EvalErrorsTotal.Inc()
			e.log.Warn().
				Str("rule", rule.Name).
				Str("rule_id", rule.ID).
				Err(err).
				Msg("rule evaluation aborted for this cycle")
			return false
		}
		values[j] = v
	}

	if !EvalCondition(rule.Condition, values, rule.Threshold) {
		return false
	}

	fired, err := e.rules.TryTrigger(rule.ID, now, Cooldown)
	if err != nil {
		e.log.Error().Str("rule_id", rule.ID).Err(err).Msg("trigger bookkeeping failed, aborting pass")
		return true
	}
	if !fired {
		stats.Suppressed++
		metrics.CooldownSuppressedTotal.Inc()
		return false
	}

	alert := model.TriggeredAlert{
		RuleID:    rule.ID,
		RuleName:  rule.Name,
		Timestamp: now,
		Dimension: rule.Dimension,
		Value:     values[len(values)-1],
		Threshold: rule.Threshold,
		Condition: rule.Condition,
		Priority:  rule.Priority,
		Message:   Describe(rule, Delta(rule.Condition, values)),
	}

	stored, err := e.alerts.Append(alert)
	if err != nil {
		e.log.Error().Str("rule_id", rule.ID).Err(err).Msg("alert append failed, aborting pass")
		return true
	}

	stats.Fired++
	metrics.AlertsFiredTotal.WithLabelValues(string(rule.Priority)).Inc()
	e.log.Info().
		Str("rule", rule.Name).
		Str("alert_id", stored.ID).
		Str("priority", string(rule.Priority)).
		Str("message", stored.Message).
		Msg("alert fired")

	if e.onAlert != nil {
		e.onAlert(*stored)
	}
	return false
}
