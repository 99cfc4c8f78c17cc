//
// Copyright (C) 2026 The simboba Authors. All rights reserved.
//
// simboba is licensed under the Apache License Version 2.0.
//
//

package runstate

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const (
	// defaultRunFileSuffix is the suffix for run record files.
	defaultRunFileSuffix = ".run.json"
	// defaultBaselineFileName is the per-dataset baseline file name.
	defaultBaselineFileName = "baseline.json"
	// defaultSettingsFileName is the store-wide settings file name.
	defaultSettingsFileName = "settings.json"
)

// Locator provides path building and listing for run state files.
type Locator interface {
	// RunPath builds the path of a run record file.
	RunPath(baseDir, datasetID, runID string) string
	// BaselinePath builds the path of a dataset's baseline file.
	BaselinePath(baseDir, datasetID string) string
	// SettingsPath builds the path of the settings file.
	SettingsPath(baseDir string) string
	// ListRuns lists all run IDs recorded for a dataset.
	ListRuns(baseDir, datasetID string) ([]string, error)
}

// locator is the default Locator implementation. Runs are grouped in one
// directory per dataset ID.
type locator struct {
}

// RunPath builds the path of a run record file.
func (l *locator) RunPath(baseDir, datasetID, runID string) string {
	return filepath.Join(baseDir, datasetID, runID+defaultRunFileSuffix)
}

// BaselinePath builds the path of a dataset's baseline file.
func (l *locator) BaselinePath(baseDir, datasetID string) string {
	return filepath.Join(baseDir, datasetID, defaultBaselineFileName)
}

// SettingsPath builds the path of the settings file.
func (l *locator) SettingsPath(baseDir string) string {
	return filepath.Join(baseDir, defaultSettingsFileName)
}

// ListRuns lists all run IDs recorded for a dataset.
func (l *locator) ListRuns(baseDir, datasetID string) ([]string, error) {
	dir := filepath.Join(baseDir, datasetID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}
	var runIDs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), defaultRunFileSuffix) {
			runIDs = append(runIDs, strings.TrimSuffix(entry.Name(), defaultRunFileSuffix))
		}
	}
	return runIDs, nil
}
