//
// Copyright (C) 2026 The simboba Authors. All rights reserved.
//
// simboba is licensed under the Apache License Version 2.0.
//
//

package inmemory

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/simboba/simboba/runstate"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := New()

	run, err := store.CreateRun(ctx, &runstate.Run{
		DatasetID: "ds-1",
		Status:    runstate.StatusRunning,
		StartedAt: time.Now().UTC(),
		Results:   map[string]*runstate.CaseResult{},
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, run.RunID)

	_, err = store.GetRun(ctx, "ds-1", "missing")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	run.Results["case-1"] = &runstate.CaseResult{CaseID: "case-1", Passed: true}
	assert.NoError(t, store.SaveRun(ctx, run))

	got, err := store.GetRun(ctx, "ds-1", run.RunID)
	assert.NoError(t, err)
	assert.Len(t, got.Results, 1)

	// Returned runs are copies.
	got.Results["case-2"] = &runstate.CaseResult{CaseID: "case-2"}
	fresh, err := store.GetRun(ctx, "ds-1", run.RunID)
	assert.NoError(t, err)
	assert.Len(t, fresh.Results, 1)

	newer, err := store.CreateRun(ctx, &runstate.Run{
		DatasetID: "ds-1",
		Status:    runstate.StatusRunning,
		StartedAt: run.StartedAt.Add(time.Minute),
		Results:   map[string]*runstate.CaseResult{},
	})
	assert.NoError(t, err)
	runs, err := store.ListRuns(ctx, "ds-1")
	assert.NoError(t, err)
	assert.Len(t, runs, 2)
	assert.Equal(t, newer.RunID, runs[0].RunID)

	// Deleting a run removes only that run.
	assert.NoError(t, store.DeleteRun(ctx, "ds-1", run.RunID))
	_, err = store.GetRun(ctx, "ds-1", run.RunID)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	runs, err = store.ListRuns(ctx, "ds-1")
	assert.NoError(t, err)
	assert.Len(t, runs, 1)

	err = store.DeleteRun(ctx, "ds-1", "missing")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestInMemoryStoreBaselineAndSettings(t *testing.T) {
	ctx := context.Background()
	store := New()

	_, err := store.GetBaseline(ctx, "ds-1")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	assert.NoError(t, store.SaveBaseline(ctx, &runstate.Baseline{
		DatasetID:   "ds-1",
		SourceRunID: "run-1",
	}))
	baseline, err := store.GetBaseline(ctx, "ds-1")
	assert.NoError(t, err)
	assert.Equal(t, "run-1", baseline.SourceRunID)

	model, err := store.GetSetting(ctx, runstate.SettingModel)
	assert.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", model)

	assert.NoError(t, store.SetSetting(ctx, runstate.SettingModel, "gpt-4o"))
	settings, err := store.Settings(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "gpt-4o", settings[runstate.SettingModel])
}
