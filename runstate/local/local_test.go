//
// Copyright (C) 2026 The simboba Authors. All rights reserved.
//
// simboba is licensed under the Apache License Version 2.0.
//
//

package local

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/simboba/simboba/runstate"
)

func TestLocalStoreRuns(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	store := New(runstate.WithBaseDir(dir))

	run, err := store.CreateRun(ctx, &runstate.Run{
		DatasetID: "ds-1",
		Status:    runstate.StatusRunning,
		StartedAt: time.Now().UTC(),
		Results:   map[string]*runstate.CaseResult{},
	})
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(run.RunID, "run-"))

	_, err = store.GetRun(ctx, "ds-1", "run-missing")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	run.Results["case-1"] = &runstate.CaseResult{CaseID: "case-1", Passed: true}
	run.Passed = 1
	assert.NoError(t, store.SaveRun(ctx, run))

	got, err := store.GetRun(ctx, "ds-1", run.RunID)
	assert.NoError(t, err)
	assert.Equal(t, 1, got.Passed)
	assert.Len(t, got.Results, 1)

	// A second, newer run sorts first.
	newer, err := store.CreateRun(ctx, &runstate.Run{
		DatasetID: "ds-1",
		Status:    runstate.StatusRunning,
		StartedAt: run.StartedAt.Add(time.Minute),
		Results:   map[string]*runstate.CaseResult{},
	})
	assert.NoError(t, err)
	assert.NotEqual(t, run.RunID, newer.RunID)

	runs, err := store.ListRuns(ctx, "ds-1")
	assert.NoError(t, err)
	assert.Len(t, runs, 2)
	assert.Equal(t, newer.RunID, runs[0].RunID)
	assert.Equal(t, run.RunID, runs[1].RunID)

	// A fresh store over the same directory sees the runs.
	reopened := New(runstate.WithBaseDir(dir))
	runs, err = reopened.ListRuns(ctx, "ds-1")
	assert.NoError(t, err)
	assert.Len(t, runs, 2)

	runs, err = store.ListRuns(ctx, "ds-other")
	assert.NoError(t, err)
	assert.Empty(t, runs)

	// Deleting a run removes only that run.
	assert.NoError(t, store.DeleteRun(ctx, "ds-1", run.RunID))
	_, err = store.GetRun(ctx, "ds-1", run.RunID)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	runs, err = store.ListRuns(ctx, "ds-1")
	assert.NoError(t, err)
	assert.Len(t, runs, 1)

	err = store.DeleteRun(ctx, "ds-1", "run-missing")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLocalStoreBaseline(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	store := New(runstate.WithBaseDir(dir))

	_, err := store.GetBaseline(ctx, "ds-1")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	baseline := &runstate.Baseline{
		DatasetID:   "ds-1",
		SourceRunID: "run-1",
		SavedAt:     time.Now().UTC(),
		Passed:      3,
		Total:       4,
		Results: map[string]*runstate.CaseResult{
			"case-1": {CaseID: "case-1", Passed: true},
		},
	}
	assert.NoError(t, store.SaveBaseline(ctx, baseline))

	got, err := store.GetBaseline(ctx, "ds-1")
	assert.NoError(t, err)
	assert.Equal(t, "run-1", got.SourceRunID)
	assert.Len(t, got.Results, 1)

	// Saving again replaces the previous baseline.
	baseline.SourceRunID = "run-2"
	assert.NoError(t, store.SaveBaseline(ctx, baseline))
	got, err = store.GetBaseline(ctx, "ds-1")
	assert.NoError(t, err)
	assert.Equal(t, "run-2", got.SourceRunID)
}

func TestLocalStoreSettings(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	store := New(runstate.WithBaseDir(dir))

	// Unset keys fall back to the defaults.
	model, err := store.GetSetting(ctx, runstate.SettingModel)
	assert.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", model)

	assert.NoError(t, store.SetSetting(ctx, runstate.SettingModel, "gpt-4o"))
	model, err = store.GetSetting(ctx, runstate.SettingModel)
	assert.NoError(t, err)
	assert.Equal(t, "gpt-4o", model)

	assert.NoError(t, store.SetSetting(ctx, "retries", "3"))
	settings, err := store.Settings(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "gpt-4o", settings[runstate.SettingModel])
	assert.Equal(t, "3", settings["retries"])

	// Settings survive reopening.
	reopened := New(runstate.WithBaseDir(dir))
	model, err = reopened.GetSetting(ctx, runstate.SettingModel)
	assert.NoError(t, err)
	assert.Equal(t, "gpt-4o", model)
}
