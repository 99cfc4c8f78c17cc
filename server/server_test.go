//
// Copyright (C) 2026 The simboba Authors. All rights reserved.
//
// simboba is licensed under the Apache License Version 2.0.
//
//

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simboba/simboba/agent"
	"github.com/simboba/simboba/dataset"
	"github.com/simboba/simboba/judge"
	"github.com/simboba/simboba/runstate"
)

var echoAgent = agent.Func(func(_ context.Context, turns []*dataset.Turn) (*agent.Output, error) {
	return agent.Text(turns[0].Message), nil
})

var exactJudge = judge.Func(func(_ context.Context, req *judge.Request) (*judge.Verdict, error) {
	return &judge.Verdict{Passed: req.ActualOutput == req.ExpectedOutcome}, nil
})

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(map[string]agent.Agent{"echo": echoAgent}, WithJudge(exactJudge))
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if out != nil && rec.Code < 300 {
		require.NoError(t, json.NewDecoder(rec.Body).Decode(out))
	}
	return rec
}

func TestDatasetCRUD(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	rec := doJSON(t, h, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var ds dataset.Dataset
	rec = doJSON(t, h, http.MethodPost, "/datasets",
		createDatasetRequest{Name: "support", Description: "support flows"}, &ds)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, ds.ID)

	// Missing name is rejected.
	rec = doJSON(t, h, http.MethodPost, "/datasets", createDatasetRequest{}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var all []*dataset.Dataset
	rec = doJSON(t, h, http.MethodGet, "/datasets", nil, &all)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, all, 1)

	rec = doJSON(t, h, http.MethodGet, "/datasets/missing", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	newName := "support-v2"
	var updated dataset.Dataset
	rec = doJSON(t, h, http.MethodPatch, "/datasets/support",
		updateDatasetRequest{Name: &newName}, &updated)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "support-v2", updated.Name)

	rec = doJSON(t, h, http.MethodDelete, "/datasets/support-v2", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, h, http.MethodGet, "/datasets/support-v2", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCaseCRUD(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	var ds dataset.Dataset
	doJSON(t, h, http.MethodPost, "/datasets", createDatasetRequest{Name: "cases"}, &ds)

	var stored dataset.Case
	rec := doJSON(t, h, http.MethodPost, "/datasets/cases/cases", &dataset.Case{
		Name:            "greeting",
		Conversation:    []*dataset.Turn{{Role: "user", Message: "hi"}},
		ExpectedOutcome: "hi",
	}, &stored)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, stored.CaseID)

	var got dataset.Case
	rec = doJSON(t, h, http.MethodGet, "/datasets/cases/cases/"+stored.CaseID, nil, &got)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "greeting", got.Name)

	got.ExpectedOutcome = "hello"
	rec = doJSON(t, h, http.MethodPut, "/datasets/cases/cases/"+stored.CaseID, &got, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Payload/path case ID mismatch is rejected.
	mismatch := got
	mismatch.CaseID = "other"
	rec = doJSON(t, h, http.MethodPut, "/datasets/cases/cases/"+stored.CaseID, &mismatch, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/datasets/cases/cases/"+stored.CaseID, nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, h, http.MethodGet, "/datasets/cases/cases/"+stored.CaseID, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRunAndBaselineFlow(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	var ds dataset.Dataset
	doJSON(t, h, http.MethodPost, "/datasets", createDatasetRequest{Name: "flow"}, &ds)
	doJSON(t, h, http.MethodPost, "/datasets/flow/cases", &dataset.Case{
		Conversation:    []*dataset.Turn{{Role: "user", Message: "pass"}},
		ExpectedOutcome: "pass",
	}, nil)
	doJSON(t, h, http.MethodPost, "/datasets/flow/cases", &dataset.Case{
		Conversation:    []*dataset.Turn{{Role: "user", Message: "nope"}},
		ExpectedOutcome: "yes",
	}, nil)

	// Unknown agent is rejected.
	rec := doJSON(t, h, http.MethodPost, "/datasets/flow/run", runRequest{Agent: "ghost"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var summary runResponse
	rec = doJSON(t, h, http.MethodPost, "/datasets/flow/run",
		runRequest{Agent: "echo", Label: "first"}, &summary)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, summary.Passed)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 2, summary.Total)
	assert.InDelta(t, 50.0, summary.Score, 0.01)
	require.NotNil(t, summary.Regression)
	assert.False(t, summary.Regression.HasBaseline)

	var runs []*runstate.Run
	rec = doJSON(t, h, http.MethodGet, "/datasets/flow/runs", nil, &runs)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, runs, 1)
	assert.Equal(t, "first", runs[0].Label)

	var run runstate.Run
	rec = doJSON(t, h, http.MethodGet, "/datasets/flow/runs/"+summary.RunID, nil, &run)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, runstate.StatusCompleted, run.Status)

	// No baseline saved yet.
	rec = doJSON(t, h, http.MethodGet, "/datasets/flow/baseline", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var baseline runstate.Baseline
	rec = doJSON(t, h, http.MethodPost, "/datasets/flow/baseline",
		saveBaselineRequest{RunID: summary.RunID}, &baseline)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, summary.RunID, baseline.SourceRunID)

	rec = doJSON(t, h, http.MethodGet, "/datasets/flow/baseline", nil, &baseline)
	assert.Equal(t, http.StatusOK, rec.Code)

	// A second identical run shows no regressions against the baseline.
	var second runResponse
	rec = doJSON(t, h, http.MethodPost, "/datasets/flow/run",
		runRequest{Agent: "echo"}, &second)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, second.Regression)
	assert.True(t, second.Regression.HasBaseline)
	assert.Empty(t, second.Regression.Regressions)

	var report struct {
		HasBaseline bool `json:"hasBaseline"`
	}
	rec = doJSON(t, h, http.MethodGet,
		"/datasets/flow/runs/"+second.RunID+"/regressions", nil, &report)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, report.HasBaseline)

	// Deleting a run removes it; the saved baseline survives.
	rec = doJSON(t, h, http.MethodDelete, "/datasets/flow/runs/"+second.RunID, nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, h, http.MethodGet, "/datasets/flow/runs/"+second.RunID, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = doJSON(t, h, http.MethodDelete, "/datasets/flow/runs/"+second.RunID, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = doJSON(t, h, http.MethodGet, "/datasets/flow/baseline", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDatasetExportImport(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	var ds dataset.Dataset
	doJSON(t, h, http.MethodPost, "/datasets",
		createDatasetRequest{Name: "portable", Description: "round trip"}, &ds)
	doJSON(t, h, http.MethodPost, "/datasets/portable/cases", &dataset.Case{
		Name:            "greeting",
		Conversation:    []*dataset.Turn{{Role: "user", Message: "hi"}},
		ExpectedOutcome: "hi",
	}, nil)

	var exported datasetExport
	rec := doJSON(t, h, http.MethodGet, "/datasets/portable/export", nil, &exported)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "portable", exported.Name)
	assert.Equal(t, "round trip", exported.Description)
	require.Len(t, exported.Cases, 1)

	rec = doJSON(t, h, http.MethodGet, "/datasets/missing/export", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Importing under an existing name is rejected.
	rec = doJSON(t, h, http.MethodPost, "/datasets/import", exported, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	exported.Name = "portable-copy"
	var imported dataset.Dataset
	rec = doJSON(t, h, http.MethodPost, "/datasets/import", exported, &imported)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, ds.ID, imported.ID)
	require.Len(t, imported.Cases, 1)
	assert.Equal(t, "greeting", imported.Cases[0].Name)
	// Imported cases get fresh IDs.
	assert.NotEqual(t, exported.Cases[0].CaseID, imported.Cases[0].CaseID)
}

func TestSettings(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	var setting settingResponse
	rec := doJSON(t, h, http.MethodGet, "/settings/model", nil, &setting)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gpt-4o-mini", setting.Value)

	rec = doJSON(t, h, http.MethodPut, "/settings/model",
		setSettingRequest{Value: "gpt-4o"}, &setting)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gpt-4o", setting.Value)

	var settings map[string]string
	rec = doJSON(t, h, http.MethodGet, "/settings", nil, &settings)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gpt-4o", settings["model"])
}

func TestListAgents(t *testing.T) {
	s := newTestServer(t)
	var agents []string
	rec := doJSON(t, s.Handler(), http.MethodGet, "/agents", nil, &agents)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"echo"}, agents)
}
