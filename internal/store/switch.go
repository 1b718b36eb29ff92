// Copyright (c) 2026 TRV Enterprises LLC
// Licensed under the Business Source License 1.1
// See LICENSE file for details.

package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

const switchFileName = "engine.json"

// switchFile is the on-disk layout of the engine switch.
type switchFile struct {
	Version int  `json:"version"`
	Enabled bool `json:"enabled"`
}

// EngineSwitch is the single boolean gating the whole engine. The evaluator
// reads it at the top of each pass; flipping it takes effect on the next
// tick, not pre-emptively.
type EngineSwitch struct {
	mu      sync.RWMutex
	path    string
	enabled bool
}

// NewEngineSwitch creates the switch backed by engine.json under dir.
// If no persisted state exists the switch starts in defaultOn position.
func NewEngineSwitch(dir string, defaultOn bool) (*EngineSwitch, error) {
	s := &EngineSwitch{
		path:    filepath.Join(dir, switchFileName),
		enabled: defaultOn,
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}

	var f switchFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	s.enabled = f.Enabled
	return s, nil
}

// Enabled reports the current switch position.
func (s *EngineSwitch) Enabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled
}

// Set flips the switch and persists the new position.
func (s *EngineSwitch) Set(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.enabled
	s.enabled = enabled

	data, err := json.MarshalIndent(switchFile{Version: fileVersion, Enabled: enabled}, "", "  ")
	if err != nil {
		s.enabled = prev
		return err
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		s.enabled = prev
		return err
	}
	return nil
}
