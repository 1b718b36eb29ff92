// Copyright (c) 2026 TRV Enterprises LLC
// Licensed under the Business Source License 1.1
// See LICENSE file for details.

// Package store holds the persisted collections the engine operates on:
// alert rules, triggered alerts, and the global engine switch. Each
// collection is snapshotted to its own JSON file under the data directory.
package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tviviano/mood-sentinel/pkg/model"
)

const (
	rulesFileName = "rules.json"

	// fileVersion is the on-disk schema version for all collections.
	fileVersion = 1
)

var (
	ErrRuleNotFound = errors.New("rule not found")
)

// ruleFile is the on-disk layout of the rules collection.
type ruleFile struct {
	Version int               `json:"version"`
	Rules   []model.AlertRule `json:"rules"`
}

// RuleStore holds alert rule definitions, keyed by ID.
type RuleStore struct {
	mu    sync.RWMutex
	path  string
	rules map[string]*model.AlertRule
}

// NewRuleStore creates a rule store backed by rules.json under dir,
// loading any persisted rules.
func NewRuleStore(dir string) (*RuleStore, error) {
	s := &RuleStore{
		path:  filepath.Join(dir, rulesFileName),
		rules: make(map[string]*model.AlertRule),
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}

	var f ruleFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	for i := range f.Rules {
		r := f.Rules[i]
		s.rules[r.ID] = &r
	}
	return s, nil
}

// Create validates and stores a new rule. A missing ID is assigned.
func (s *RuleStore) Create(rule model.AlertRule) (*model.AlertRule, error) {
	rule.Normalize()
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = time.Now().UTC()
	}
	rule.LastTriggered = nil
	rule.TriggerCount = 0

	s.mu.Lock()
	defer s.mu.Unlock()

	s.rules[rule.ID] = &rule
	if err := s.saveLocked(); err != nil {
		delete(s.rules, rule.ID)
		return nil, err
	}

	out := rule
	return &out, nil
}

// Update applies a partial patch to an existing rule. The patched rule is
// re-validated; an invalid patch leaves the rule unchanged.
func (s *RuleStore) Update(id string, patch model.RulePatch) (*model.AlertRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.rules[id]
	if !ok {
		return nil, ErrRuleNotFound
	}

	updated := *existing
	patch.Apply(&updated)
	updated.Normalize()
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	s.rules[id] = &updated
	if err := s.saveLocked(); err != nil {
		s.rules[id] = existing
		return nil, err
	}

	out := updated
	return &out, nil
}

// Delete removes a rule. Alert history referencing the rule is unaffected.
func (s *RuleStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.rules[id]
	if !ok {
		return ErrRuleNotFound
	}

	delete(s.rules, id)
	if err := s.saveLocked(); err != nil {
		s.rules[id] = existing
		return err
	}
	return nil
}

// SetEnabled flips a rule's enabled flag.
func (s *RuleStore) SetEnabled(id string, enabled bool) (*model.AlertRule, error) {
	return s.Update(id, model.RulePatch{Enabled: &enabled})
}

// Get returns a copy of the rule with the given ID.
func (s *RuleStore) Get(id string) (*model.AlertRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rules[id]
	if !ok {
		return nil, ErrRuleNotFound
	}
	out := *r
	return &out, nil
}

// List returns copies of all rules, ordered by creation time.
func (s *RuleStore) List() []model.AlertRule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked(false)
}

// ListEnabled returns copies of all enabled rules, ordered by creation time.
// The evaluator works from this snapshot so a pass sees a consistent rule set.
func (s *RuleStore) ListEnabled() []model.AlertRule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked(true)
}

func (s *RuleStore) listLocked(enabledOnly bool) []model.AlertRule {
	out := make([]model.AlertRule, 0, len(s.rules))
	for _, r := range s.rules {
		if enabledOnly && !r.Enabled {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// TryTrigger atomically checks the rule's cooldown and, if elapsed, records
// the trigger (LastTriggered = now, TriggerCount incremented). Returns false
// without state change when the cooldown has not elapsed. The check-then-set
// happens under one lock so two concurrent passes cannot both fire.
func (s *RuleStore) TryTrigger(id string, now time.Time, cooldown time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rules[id]
	if !ok {
		return false, ErrRuleNotFound
	}

	if r.LastTriggered != nil && now.Sub(*r.LastTriggered) < cooldown {
		return false, nil
	}

	prevTriggered := r.LastTriggered
	prevCount := r.TriggerCount

	triggeredAt := now
	r.LastTriggered = &triggeredAt
	r.TriggerCount++

	if err := s.saveLocked(); err != nil {
		r.LastTriggered = prevTriggered
		r.TriggerCount = prevCount
		return false, err
	}
	return true, nil
}

// saveLocked persists the collection. Callers must hold the write lock.
func (s *RuleStore) saveLocked() error {
	f := ruleFile{Version: fileVersion, Rules: s.listLocked(false)}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}
