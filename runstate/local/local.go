//
// Copyright (C) 2026 The simboba Authors. All rights reserved.
//
// simboba is licensed under the Apache License Version 2.0.
//
//

// Package local provides a local file storage implementation for run state.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/simboba/simboba/runstate"
)

const (
	defaultTempFileSuffix = ".tmp"
	defaultDirPermission  = 0o755
	defaultFilePermission = 0o644

	runIDTimeLayout = "20060102T150405"
)

// store implements runstate.Store backed by the local filesystem. Run
// records, baselines and settings are JSON files grouped per dataset ID.
type store struct {
	mu      sync.Mutex
	baseDir string
	locator runstate.Locator
}

// New creates a local file run state store.
func New(opt ...runstate.Option) runstate.Store {
	opts := runstate.NewOptions(opt...)
	return &store{
		baseDir: opts.BaseDir,
		locator: opts.Locator,
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
		run.RunID = newRunID()
	}
	if err := s.writeJSON(s.locator.RunPath(s.baseDir, run.DatasetID, run.RunID), run); err != nil {
		return nil, fmt.Errorf("store run %s.%s: %w", run.DatasetID, run.RunID, err)
	}
	return run, nil
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
	if err := s.writeJSON(s.locator.RunPath(s.baseDir, run.DatasetID, run.RunID), run); err != nil {
		return fmt.Errorf("store run %s.%s: %w", run.DatasetID, run.RunID, err)
	}
	return nil
}

// GetRun returns one run of a dataset.
func (s *store) GetRun(_ context.Context, datasetID, runID string) (*runstate.Run, error) {
	if datasetID == "" {
		return nil, errors.New("dataset id is empty")
	}
	if runID == "" {
		return nil, errors.New("run id is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadRun(datasetID, runID)
}

// ListRuns returns all runs recorded for a dataset, newest first.
func (s *store) ListRuns(_ context.Context, datasetID string) ([]*runstate.Run, error) {
	if datasetID == "" {
		return nil, errors.New("dataset id is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	runIDs, err := s.locator.ListRuns(s.baseDir, datasetID)
	if err != nil {
		return nil, fmt.Errorf("list runs for dataset %s: %w", datasetID, err)
	}
	runs := make([]*runstate.Run, 0, len(runIDs))
	for _, runID := range runIDs {
		run, err := s.loadRun(datasetID, runID)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].StartedAt.After(runs[j].StartedAt) })
	return runs, nil
}

// DeleteRun removes one run record of a dataset.
func (s *store) DeleteRun(_ context.Context, datasetID, runID string) error {
	if datasetID == "" {
		return errors.New("dataset id is empty")
	}
	if runID == "" {
		return errors.New("run id is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	path := s.locator.RunPath(s.baseDir, datasetID, runID)
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove file %s: %w", path, err)
	}
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
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writeJSON(s.locator.BaselinePath(s.baseDir, baseline.DatasetID), baseline); err != nil {
		return fmt.Errorf("store baseline for dataset %s: %w", baseline.DatasetID, err)
	}
	return nil
}

// GetBaseline returns the baseline for a dataset.
func (s *store) GetBaseline(_ context.Context, datasetID string) (*runstate.Baseline, error) {
	if datasetID == "" {
		return nil, errors.New("dataset id is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	path := s.locator.BaselinePath(s.baseDir, datasetID)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	var baseline runstate.Baseline
	if err := json.Unmarshal(data, &baseline); err != nil {
		return nil, fmt.Errorf("unmarshal file %s: %w", path, err)
	}
	return &baseline, nil
}

// GetSetting returns a setting value, falling back to DefaultSettings.
func (s *store) GetSetting(ctx context.Context, key string) (string, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return "", err
	}
	return settings[key], nil
}

// SetSetting stores a setting value.
func (s *store) SetSetting(_ context.Context, key, value string) error {
	if key == "" {
		return errors.New("settings key is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	settings, err := s.loadSettings()
	if err != nil {
		return err
	}
	settings[key] = value
	if err := s.writeJSON(s.locator.SettingsPath(s.baseDir), settings); err != nil {
		return fmt.Errorf("store settings: %w", err)
	}
	return nil
}

// Settings returns all settings merged over DefaultSettings.
func (s *store) Settings(_ context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, err := s.loadSettings()
	if err != nil {
		return nil, err
	}
	settings := make(map[string]string, len(runstate.DefaultSettings)+len(stored))
	for key, value := range runstate.DefaultSettings {
		settings[key] = value
	}
	for key, value := range stored {
		settings[key] = value
	}
	return settings, nil
}

// Close closes the store and releases owned resources.
func (s *store) Close() error {
	return nil
}

func (s *store) loadRun(datasetID, runID string) (*runstate.Run, error) {
	path := s.locator.RunPath(s.baseDir, datasetID, runID)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	var run runstate.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("unmarshal file %s: %w", path, err)
	}
	if run.Results == nil {
		run.Results = map[string]*runstate.CaseResult{}
	}
	return &run, nil
}

func (s *store) loadSettings() (map[string]string, error) {
	path := s.locator.SettingsPath(s.baseDir)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	var settings map[string]string
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("unmarshal file %s: %w", path, err)
	}
	return settings, nil
}

// writeJSON writes a record to the file system atomically.
func (s *store) writeJSON(path string, record any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, defaultDirPermission); err != nil {
		return fmt.Errorf("mkdir all %s: %w", dir, err)
	}
	tmp := path + defaultTempFileSuffix
	file, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, defaultFilePermission)
	if err != nil {
		return fmt.Errorf("open file %s: %w", tmp, err)
	}
	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(record); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode file %s: %w", tmp, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename file %s to %s: %w", tmp, path, err)
	}
	return nil
}

// newRunID builds a run ID that sorts by start time and stays unique.
func newRunID() string {
	return fmt.Sprintf("run-%s-%s", time.Now().UTC().Format(runIDTimeLayout), uuid.NewString()[:8])
}
