// Copyright (c) 2026 TRV Enterprises LLC
// Licensed under the Business Source License 1.1
// See LICENSE file for details.

package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/tviviano/mood-sentinel/pkg/model"
)

const alertsFileName = "alerts.json"

var (
	ErrAlertNotFound = errors.New("alert not found")
)

// alertFile is the on-disk layout of the alerts collection.
type alertFile struct {
	Version int                    `json:"version"`
	Alerts  []model.TriggeredAlert `json:"alerts"`
}

// AlertStore is the append-only log of triggered alerts. Alerts are only
// appended by the evaluator; the acknowledge flag is the only mutation, and
// removal happens only through the explicit clear operations.
type AlertStore struct {
	mu     sync.RWMutex
	path   string
	alerts []model.TriggeredAlert
}

// NewAlertStore creates an alert store backed by alerts.json under dir,
// loading any persisted alerts.
func NewAlertStore(dir string) (*AlertStore, error) {
	s := &AlertStore{
		path: filepath.Join(dir, alertsFileName),
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}

	var f alertFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	s.alerts = f.Alerts
	return s, nil
}

// Append adds a new alert to the log. A missing ID is assigned.
func (s *AlertStore) Append(alert model.TriggeredAlert) (*model.TriggeredAlert, error) {
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.alerts = append(s.alerts, alert)
	if err := s.saveLocked(); err != nil {
		s.alerts = s.alerts[:len(s.alerts)-1]
		return nil, err
	}

	out := alert
	return &out, nil
}

// Acknowledge marks an alert as acknowledged. Acknowledging an already
// acknowledged alert is a no-op.
func (s *AlertStore) Acknowledge(id string) (*model.TriggeredAlert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.alerts {
		if s.alerts[i].ID != id {
			continue
		}
		if s.alerts[i].Acknowledged {
			out := s.alerts[i]
			return &out, nil
		}
		s.alerts[i].Acknowledged = true
		if err := s.saveLocked(); err != nil {
			s.alerts[i].Acknowledged = false
			return nil, err
		}
		out := s.alerts[i]
		return &out, nil
	}
	return nil, ErrAlertNotFound
}

// ClearAll removes every alert. Returns the number removed.
func (s *AlertStore) ClearAll() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.alerts
	removed := len(prev)
	s.alerts = nil
	if err := s.saveLocked(); err != nil {
		s.alerts = prev
		return 0, err
	}
	return removed, nil
}

// ClearAcknowledged removes only acknowledged alerts. Returns the number
// removed.
func (s *AlertStore) ClearAcknowledged() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.alerts
	kept := make([]model.TriggeredAlert, 0, len(prev))
	for _, a := range prev {
		if !a.Acknowledged {
			kept = append(kept, a)
		}
	}

	removed := len(prev) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	s.alerts = kept
	if err := s.saveLocked(); err != nil {
		s.alerts = prev
		return 0, err
	}
	return removed, nil
}

// List returns a copy of all alerts in append order (oldest first).
func (s *AlertStore) List() []model.TriggeredAlert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.TriggeredAlert, len(s.alerts))
	copy(out, s.alerts)
	return out
}

// Get returns a copy of the alert with the given ID.
func (s *AlertStore) Get(id string) (*model.TriggeredAlert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.alerts {
		if s.alerts[i].ID == id {
			out := s.alerts[i]
			return &out, nil
		}
	}
	return nil, ErrAlertNotFound
}

// saveLocked persists the collection. Callers must hold the write lock.
func (s *AlertStore) saveLocked() error {
	alerts := s.alerts
	if alerts == nil {
		alerts = []model.TriggeredAlert{}
	}
	f := alertFile{Version: fileVersion, Alerts: alerts}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}
