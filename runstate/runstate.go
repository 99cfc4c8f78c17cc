//
// Copyright (C) 2026 The simboba Authors. All rights reserved.
//
// simboba is licensed under the Apache License Version 2.0.
//
//

// Package runstate defines durable run state for evaluations: runs, per-case
// results, baselines and settings, plus the storage contract for them.
package runstate

import (
	"context"
	"time"
)

// Run status values.
const (
	// StatusRunning marks a run that has started but not finalized. A crash
	// or interrupt leaves a running record behind with a partial result map.
	StatusRunning = "running"
	// StatusCompleted marks a finalized run. Completed runs are never
	// mutated again.
	StatusCompleted = "completed"
)

// AdHocDatasetID is the virtual dataset identity used for one-off single
// evaluations that do not belong to any named dataset.
const AdHocDatasetID = "_adhoc"

// Run is one execution attempt of an agent against a dataset's cases.
type Run struct {
	// RunID identifies the run within its dataset; assigned by CreateRun.
	RunID string `json:"runId"`
	// DatasetID is the stable ID of the dataset the run executed against,
	// or AdHocDatasetID for one-off evaluations.
	DatasetID string `json:"datasetId"`
	// DatasetName is the dataset name at run time, kept for display.
	DatasetName string `json:"datasetName,omitempty"`
	// Label is the human label for the run.
	Label string `json:"label"`
	// Status is StatusRunning until the run finalizes.
	Status string `json:"status"`
	// Passed counts cases whose final verdict was a pass.
	Passed int `json:"passed"`
	// Failed counts cases whose final verdict was a failure.
	Failed int `json:"failed"`
	// Total counts the cases selected for this run.
	Total int `json:"total"`
	// Score is Passed/Total*100, or 0 for an empty run.
	Score float64 `json:"score"`
	// StartedAt is when the run record was created.
	StartedAt time.Time `json:"startedAt"`
	// CompletedAt is set at finalize time.
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	// Results maps case ID to its result. Keys are unique per case;
	// ordering is always re-derived from the dataset, never from this map.
	Results map[string]*CaseResult `json:"results"`
}

// CaseResult is the immutable outcome of evaluating one case.
type CaseResult struct {
	// CaseID identifies the case this result belongs to.
	CaseID string `json:"caseId"`
	// Passed is the final verdict: judge verdict ANDed with the metadata
	// checker verdict when a checker was supplied.
	Passed bool `json:"passed"`
	// ActualOutput is the agent's response text; nil when the agent failed.
	ActualOutput *string `json:"actualOutput,omitempty"`
	// Reasoning is the judge's rationale, or a synthesized explanation when
	// the agent failed.
	Reasoning string `json:"reasoning,omitempty"`
	// ErrorMessage is set iff the agent invocation failed.
	ErrorMessage string `json:"errorMessage,omitempty"`
	// ExpectedMetadata echoes the case's expected structured output, if any.
	ExpectedMetadata map[string]any `json:"expectedMetadata,omitempty"`
	// ActualMetadata holds the structured output the agent produced, if any.
	ActualMetadata map[string]any `json:"actualMetadata,omitempty"`
	// MetadataPassed records the deterministic metadata checker verdict.
	// Nil when no checker was supplied.
	MetadataPassed *bool `json:"metadataPassed,omitempty"`
	// DurationMS is the wall-clock duration of the agent invocation.
	DurationMS int64 `json:"durationMs,omitempty"`
	// CreatedAt is when the result was recorded.
	CreatedAt time.Time `json:"createdAt"`
}

// Baseline is a saved snapshot of one run's results, used as the reference
// side of a regression diff. At most one baseline exists per dataset; saving
// overwrites the previous one. Baselines are only ever created by an
// explicit operator action, never automatically.
type Baseline struct {
	// DatasetID is the stable ID of the dataset this baseline belongs to.
	DatasetID string `json:"datasetId"`
	// DatasetName is the dataset name at save time, kept for display.
	DatasetName string `json:"datasetName,omitempty"`
	// SourceRunID is the run this baseline was snapshotted from.
	SourceRunID string `json:"sourceRunId"`
	// SavedAt is when the baseline was saved.
	SavedAt time.Time `json:"savedAt"`
	// Passed, Failed, Total and Score mirror the source run's counters.
	Passed int     `json:"passed"`
	Failed int     `json:"failed"`
	Total  int     `json:"total"`
	Score  float64 `json:"score"`
	// Results maps case ID to the snapshotted result.
	Results map[string]*CaseResult `json:"results"`
}

// BaselineFromRun snapshots a completed run into a baseline.
func BaselineFromRun(run *Run) *Baseline {
	results := make(map[string]*CaseResult, len(run.Results))
	for caseID, result := range run.Results {
		results[caseID] = result
	}
	return &Baseline{
		DatasetID:   run.DatasetID,
		DatasetName: run.DatasetName,
		SourceRunID: run.RunID,
		SavedAt:     time.Now().UTC(),
		Passed:      run.Passed,
		Failed:      run.Failed,
		Total:       run.Total,
		Score:       run.Score,
		Results:     results,
	}
}

// DefaultSettings holds setting defaults returned for unset keys.
var DefaultSettings = map[string]string{
	// SettingModel is the model used by the oracle judge.
	SettingModel: "gpt-4o-mini",
}

// SettingModel is the settings key for the oracle judge model name.
const SettingModel = "model"

// Store persists run state. The executor serializes its own writes; a Store
// must tolerate concurrent writes to the same run key from one process but
// is not required to coordinate across processes.
type Store interface {
	// CreateRun persists a new run record, assigning its RunID, and returns
	// the persisted run. The run becomes externally visible immediately,
	// before any case completes.
	CreateRun(ctx context.Context, run *Run) (*Run, error)
	// SaveRun upserts the full run record. Idempotent per RunID.
	SaveRun(ctx context.Context, run *Run) error
	// GetRun returns one run of a dataset.
	// Returns an error wrapping os.ErrNotExist if absent.
	GetRun(ctx context.Context, datasetID, runID string) (*Run, error)
	// ListRuns returns all runs recorded for a dataset, newest first.
	ListRuns(ctx context.Context, datasetID string) ([]*Run, error)
	// DeleteRun removes one run of a dataset. Saved baselines are untouched,
	// even when they were snapshotted from the deleted run.
	// Returns an error wrapping os.ErrNotExist if absent.
	DeleteRun(ctx context.Context, datasetID, runID string) error
	// SaveBaseline stores the baseline for its dataset, replacing any
	// previous baseline.
	SaveBaseline(ctx context.Context, baseline *Baseline) error
	// GetBaseline returns the baseline for a dataset.
	// Returns an error wrapping os.ErrNotExist if none was ever saved.
	GetBaseline(ctx context.Context, datasetID string) (*Baseline, error)
	// GetSetting returns a setting value, falling back to DefaultSettings.
	GetSetting(ctx context.Context, key string) (string, error)
	// SetSetting stores a setting value.
	SetSetting(ctx context.Context, key, value string) error
	// Settings returns all settings merged over DefaultSettings.
	Settings(ctx context.Context) (map[string]string, error)
	// Close closes the store and releases owned resources.
	Close() error
}
