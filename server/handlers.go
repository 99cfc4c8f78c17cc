//
// Copyright (C) 2026 The simboba Authors. All rights reserved.
//
// simboba is licensed under the Apache License Version 2.0.
//
//

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sort"

	"github.com/gorilla/mux"

	"github.com/simboba/simboba/dataset"
	"github.com/simboba/simboba/executor"
	"github.com/simboba/simboba/log"
	"github.com/simboba/simboba/regression"
	"github.com/simboba/simboba/runstate"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleListAgents(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(s.agents))
	for name := range s.agents {
		names = append(names, name)
	}
	sort.Strings(names)
	s.writeJSON(w, names)
}

func (s *Server) handleCreateDataset(w http.ResponseWriter, r *http.Request) {
	log.Infof("handleCreateDataset called: path=%s", r.URL.Path)
	var req createDatasetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()
	if req.Name == "" {
		http.Error(w, "dataset name is required", http.StatusBadRequest)
		return
	}
	ds, err := s.datasets.Create(r.Context(), req.Name, req.Description)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.writeJSON(w, ds)
}

func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	log.Infof("handleListDatasets called: path=%s", r.URL.Path)
	datasets, err := s.datasets.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if datasets == nil {
		datasets = []*dataset.Dataset{}
	}
	s.writeJSON(w, datasets)
}

func (s *Server) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	log.Infof("handleGetDataset called: path=%s", r.URL.Path)
	name := mux.Vars(r)["dataset"]
	ds, err := s.datasets.Get(r.Context(), name)
	if err != nil {
		s.notFoundOrError(w, err, fmt.Sprintf("Dataset `%s` not found.", name))
		return
	}
	s.writeJSON(w, ds)
}

func (s *Server) handleUpdateDataset(w http.ResponseWriter, r *http.Request) {
	log.Infof("handleUpdateDataset called: path=%s", r.URL.Path)
	name := mux.Vars(r)["dataset"]
	var req updateDatasetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()
	ds, err := s.datasets.Update(r.Context(), name, &dataset.Update{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		s.notFoundOrError(w, err, fmt.Sprintf("Dataset `%s` not found.", name))
		return
	}
	s.writeJSON(w, ds)
}

func (s *Server) handleDeleteDataset(w http.ResponseWriter, r *http.Request) {
	log.Infof("handleDeleteDataset called: path=%s", r.URL.Path)
	name := mux.Vars(r)["dataset"]
	if err := s.datasets.Delete(r.Context(), name); err != nil {
		s.notFoundOrError(w, err, fmt.Sprintf("Dataset `%s` not found.", name))
		return
	}
	w.WriteHeader(http.StatusOK)
}

// handleExportDataset returns a portable snapshot of a dataset suitable for
// re-import on another instance.
func (s *Server) handleExportDataset(w http.ResponseWriter, r *http.Request) {
	log.Infof("handleExportDataset called: path=%s", r.URL.Path)
	name := mux.Vars(r)["dataset"]
	ds, err := s.datasets.Get(r.Context(), name)
	if err != nil {
		s.notFoundOrError(w, err, fmt.Sprintf("Dataset `%s` not found.", name))
		return
	}
	s.writeJSON(w, &datasetExport{
		Name:        ds.Name,
		Description: ds.Description,
		Cases:       ds.Cases,
	})
}

// handleImportDataset creates a dataset from an exported snapshot. The name
// must not collide with an existing dataset; cases get fresh IDs.
func (s *Server) handleImportDataset(w http.ResponseWriter, r *http.Request) {
	log.Infof("handleImportDataset called: path=%s", r.URL.Path)
	var req datasetExport
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()
	if req.Name == "" {
		http.Error(w, "dataset name is required", http.StatusBadRequest)
		return
	}
	ds, err := s.datasets.Create(r.Context(), req.Name, req.Description)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	for _, c := range req.Cases {
		c.CaseID = ""
		if _, err := s.datasets.AddCase(r.Context(), ds.ID, c); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	imported, err := s.datasets.Get(r.Context(), ds.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, imported)
}

func (s *Server) handleAddCase(w http.ResponseWriter, r *http.Request) {
	log.Infof("handleAddCase called: path=%s", r.URL.Path)
	name := mux.Vars(r)["dataset"]
	var c dataset.Case
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()
	stored, err := s.datasets.AddCase(r.Context(), name, &c)
	if err != nil {
		s.notFoundOrError(w, err, fmt.Sprintf("Dataset `%s` not found.", name))
		return
	}
	s.writeJSON(w, stored)
}

func (s *Server) handleGetCase(w http.ResponseWriter, r *http.Request) {
	log.Infof("handleGetCase called: path=%s", r.URL.Path)
	vars := mux.Vars(r)
	name := vars["dataset"]
	caseID := vars["caseId"]
	c, err := s.datasets.GetCase(r.Context(), name, caseID)
	if err != nil {
		s.notFoundOrError(w, err,
			fmt.Sprintf("Dataset `%s` or case `%s` not found.", name, caseID))
		return
	}
	s.writeJSON(w, c)
}

func (s *Server) handleUpdateCase(w http.ResponseWriter, r *http.Request) {
	log.Infof("handleUpdateCase called: path=%s", r.URL.Path)
	vars := mux.Vars(r)
	name := vars["dataset"]
	caseID := vars["caseId"]
	var c dataset.Case
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()
	if c.CaseID != "" && c.CaseID != caseID {
		http.Error(w, "Case id in payload must match path parameter.", http.StatusBadRequest)
		return
	}
	c.CaseID = caseID
	if err := s.datasets.UpdateCase(r.Context(), name, &c); err != nil {
		s.notFoundOrError(w, err,
			fmt.Sprintf("Dataset `%s` or case `%s` not found.", name, caseID))
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleDeleteCase(w http.ResponseWriter, r *http.Request) {
	log.Infof("handleDeleteCase called: path=%s", r.URL.Path)
	vars := mux.Vars(r)
	name := vars["dataset"]
	caseID := vars["caseId"]
	if err := s.datasets.DeleteCase(r.Context(), name, caseID); err != nil {
		s.notFoundOrError(w, err,
			fmt.Sprintf("Dataset `%s` or case `%s` not found.", name, caseID))
		return
	}
	w.WriteHeader(http.StatusOK)
}

// handleRunEval runs one evaluation of a registered agent against a dataset
// and blocks until the run completes.
func (s *Server) handleRunEval(w http.ResponseWriter, r *http.Request) {
	log.Infof("handleRunEval called: path=%s", r.URL.Path)
	name := mux.Vars(r)["dataset"]
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	ag, ok := s.agents[req.Agent]
	if !ok {
		http.Error(w, fmt.Sprintf("Agent `%s` not found.", req.Agent), http.StatusBadRequest)
		return
	}
	exec, err := executor.New(
		executor.WithDatasetManager(s.datasets),
		executor.WithRunStore(s.runs),
		executor.WithJudge(s.judge),
		executor.WithOverrides(s.overrides),
	)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	summary, err := exec.Run(r.Context(), ag, name,
		executor.WithLabel(req.Label),
		executor.WithCaseIDs(req.CaseIDs),
		executor.WithMaxWorkers(req.MaxWorkers),
	)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.writeJSON(w, &runResponse{
		RunID:       summary.RunID,
		DatasetID:   summary.DatasetID,
		DatasetName: summary.DatasetName,
		Passed:      summary.Passed,
		Failed:      summary.Failed,
		Total:       summary.Total,
		Score:       summary.Score,
		Regression:  summary.Regression,
	})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	log.Infof("handleListRuns called: path=%s", r.URL.Path)
	name := mux.Vars(r)["dataset"]
	ds, err := s.datasets.Get(r.Context(), name)
	if err != nil {
		s.notFoundOrError(w, err, fmt.Sprintf("Dataset `%s` not found.", name))
		return
	}
	runs, err := s.runs.ListRuns(r.Context(), ds.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []*runstate.Run{}
	}
	s.writeJSON(w, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	log.Infof("handleGetRun called: path=%s", r.URL.Path)
	vars := mux.Vars(r)
	name := vars["dataset"]
	runID := vars["runId"]
	run, err := s.getRun(r, name, runID)
	if err != nil {
		s.notFoundOrError(w, err, fmt.Sprintf("Run `%s` not found.", runID))
		return
	}
	s.writeJSON(w, run)
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	log.Infof("handleDeleteRun called: path=%s", r.URL.Path)
	vars := mux.Vars(r)
	name := vars["dataset"]
	runID := vars["runId"]
	ds, err := s.datasets.Get(r.Context(), name)
	if err != nil {
		s.notFoundOrError(w, err, fmt.Sprintf("Dataset `%s` not found.", name))
		return
	}
	if err := s.runs.DeleteRun(r.Context(), ds.ID, runID); err != nil {
		s.notFoundOrError(w, err, fmt.Sprintf("Run `%s` not found.", runID))
		return
	}
	w.WriteHeader(http.StatusOK)
}

// handleRunRegressions diffs a stored run against the dataset's current
// baseline.
func (s *Server) handleRunRegressions(w http.ResponseWriter, r *http.Request) {
	log.Infof("handleRunRegressions called: path=%s", r.URL.Path)
	vars := mux.Vars(r)
	name := vars["dataset"]
	runID := vars["runId"]
	run, err := s.getRun(r, name, runID)
	if err != nil {
		s.notFoundOrError(w, err, fmt.Sprintf("Run `%s` not found.", runID))
		return
	}
	baseline, err := s.runs.GetBaseline(r.Context(), run.DatasetID)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, regression.Diff(run, baseline))
}

// handleSaveBaseline snapshots a stored run as the dataset's baseline,
// replacing any previous one.
func (s *Server) handleSaveBaseline(w http.ResponseWriter, r *http.Request) {
	log.Infof("handleSaveBaseline called: path=%s", r.URL.Path)
	name := mux.Vars(r)["dataset"]
	var req saveBaselineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()
	run, err := s.getRun(r, name, req.RunID)
	if err != nil {
		s.notFoundOrError(w, err, fmt.Sprintf("Run `%s` not found.", req.RunID))
		return
	}
	if run.Status != runstate.StatusCompleted {
		http.Error(w, "Only completed runs can be saved as baseline.", http.StatusBadRequest)
		return
	}
	baseline := runstate.BaselineFromRun(run)
	if err := s.runs.SaveBaseline(r.Context(), baseline); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, baseline)
}

func (s *Server) handleGetBaseline(w http.ResponseWriter, r *http.Request) {
	log.Infof("handleGetBaseline called: path=%s", r.URL.Path)
	name := mux.Vars(r)["dataset"]
	ds, err := s.datasets.Get(r.Context(), name)
	if err != nil {
		s.notFoundOrError(w, err, fmt.Sprintf("Dataset `%s` not found.", name))
		return
	}
	baseline, err := s.runs.GetBaseline(r.Context(), ds.ID)
	if err != nil {
		s.notFoundOrError(w, err, fmt.Sprintf("No baseline saved for `%s`.", name))
		return
	}
	s.writeJSON(w, baseline)
}

func (s *Server) handleListSettings(w http.ResponseWriter, r *http.Request) {
	log.Infof("handleListSettings called: path=%s", r.URL.Path)
	settings, err := s.runs.Settings(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, settings)
}

func (s *Server) handleGetSetting(w http.ResponseWriter, r *http.Request) {
	log.Infof("handleGetSetting called: path=%s", r.URL.Path)
	key := mux.Vars(r)["key"]
	value, err := s.runs.GetSetting(r.Context(), key)
	if err != nil {
		s.notFoundOrError(w, err, fmt.Sprintf("Setting `%s` not found.", key))
		return
	}
	s.writeJSON(w, &settingResponse{Key: key, Value: value})
}

func (s *Server) handleSetSetting(w http.ResponseWriter, r *http.Request) {
	log.Infof("handleSetSetting called: path=%s", r.URL.Path)
	key := mux.Vars(r)["key"]
	var req setSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()
	if err := s.runs.SetSetting(r.Context(), key, req.Value); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, &settingResponse{Key: key, Value: req.Value})
}

// getRun resolves the dataset path segment to its stable ID and loads the
// run.
func (s *Server) getRun(r *http.Request, datasetNameOrID, runID string) (*runstate.Run, error) {
	ds, err := s.datasets.Get(r.Context(), datasetNameOrID)
	if err != nil {
		return nil, err
	}
	return s.runs.GetRun(r.Context(), ds.ID, runID)
}

// notFoundOrError maps storage not-found errors to 404 and everything else
// to 500.
func (s *Server) notFoundOrError(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, os.ErrNotExist) {
		http.Error(w, msg, http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
