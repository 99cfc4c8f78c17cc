//
// Copyright (C) 2026 The simboba Authors. All rights reserved.
//
// simboba is licensed under the Apache License Version 2.0.
//
//

// Package inmemory provides an in-memory run state store implementation.
package inmemory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/simboba/simboba/internal/clone"
	"github.com/simboba/simboba/runstate"
)

// store implements runstate.Store with process-local storage.
type store struct {
	mu        sync.Mutex
	runs      map[string]map[string]*runstate.Run // dataset ID -> run ID -> run
	baselines map[string]*runstate.Baseline       // dataset ID -> baseline
	settings  map[string]string
}

// New creates an in-memory run state store.
func New() runstate.Store {
	return &store{
		runs:      make(map[string]map[string]*runstate.Run),
		baselines: make(map[string]*runstate.Baseline),
		settings:  make(map[string]string),
	}
}

// CreateRun persists a new run record, assigning its RunID.
func (s *store) CreateRun(_ context.Context, run *runstate.Run) (*runstate.Run, error) {
	if run == nil {
		return nil, errors.New("run is nil")
	}
	if run.DatasetID == "" {
		return nil, errors.New("dataset id is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if run.RunID == "" {
		run.RunID = fmt.Sprintf("run-%s-%s", time.Now().UTC().Format("20060102T150405"), uuid.NewString()[:8])
	}
	return run, s.save(run)
}

// SaveRun upserts the full run record.
func (s *store) SaveRun(_ context.Context, run *runstate.Run) error {
	if run == nil {
		return errors.New("run is nil")
	}
	if run.DatasetID == "" {
		return errors.New("dataset id is empty")
	}
	if run.RunID == "" {
		return errors.New("run id is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(run)
}

// GetRun returns one run of a dataset.
func (s *store) GetRun(_ context.Context, datasetID, runID string) (*runstate.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[datasetID][runID]
	if !ok {
		return nil, fmt.Errorf("run %s.%s not found: %w", datasetID, runID, os.ErrNotExist)
	}
	return clone.Clone(run)
}

// ListRuns returns all runs recorded for a dataset, newest first.
func (s *store) ListRuns(_ context.Context, datasetID string) ([]*runstate.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	runs := make([]*runstate.Run, 0, len(s.runs[datasetID]))
	for _, run := range s.runs[datasetID] {
		copied, err := clone.Clone(run)
		if err != nil {
			return nil, err
		}
		runs = append(runs, copied)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].StartedAt.After(runs[j].StartedAt) })
	return runs, nil
}

// DeleteRun removes one run record of a dataset.
func (s *store) DeleteRun(_ context.Context, datasetID, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[datasetID][runID]; !ok {
		return fmt.Errorf("run %s.%s not found: %w", datasetID, runID, os.ErrNotExist)
	}
	delete(s.runs[datasetID], runID)
	return nil
}

// SaveBaseline stores the baseline for its dataset, replacing any previous one.
func (s *store) SaveBaseline(_ context.Context, baseline *runstate.Baseline) error {
	if baseline == nil {
		return errors.New("baseline is nil")
	}
	if baseline.DatasetID == "" {
		return errors.New("dataset id is empty")
	}
	copied, err := clone.Clone(baseline)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baselines[baseline.DatasetID] = copied
	return nil
}

// GetBaseline returns the baseline for a dataset.
func (s *store) GetBaseline(_ context.Context, datasetID string) (*runstate.Baseline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	baseline, ok := s.baselines[datasetID]
	if !ok {
		return nil, fmt.Errorf("baseline for dataset %s not found: %w", datasetID, os.ErrNotExist)
	}
	return clone.Clone(baseline)
}

// GetSetting returns a setting value, falling back to DefaultSettings.
func (s *store) GetSetting(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if value, ok := s.settings[key]; ok {
		return value, nil
	}
	return runstate.DefaultSettings[key], nil
}

// SetSetting stores a setting value.
func (s *store) SetSetting(_ context.Context, key, value string) error {
	if key == "" {
		return errors.New("settings key is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[key] = value
	return nil
}

// Settings returns all settings merged over DefaultSettings.
func (s *store) Settings(_ context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	settings := make(map[string]string, len(runstate.DefaultSettings)+len(s.settings))
	for key, value := range runstate.DefaultSettings {
		settings[key] = value
	}
	for key, value := range s.settings {
		settings[key] = value
	}
	return settings, nil
}

// Close closes the store and releases owned resources.
func (s *store) Close() error {
	return nil
}

func (s *store) save(run *runstate.Run) error {
	copied, err := clone.Clone(run)
	if err != nil {
		return err
	}
	if copied.Results == nil {
		copied.Results = map[string]*runstate.CaseResult{}
	}
	if s.runs[run.DatasetID] == nil {
		s.runs[run.DatasetID] = make(map[string]*runstate.Run)
	}
	s.runs[run.DatasetID][run.RunID] = copied
	return nil
}
