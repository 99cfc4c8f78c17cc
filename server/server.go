//
// Copyright (C) 2026 The simboba Authors. All rights reserved.
//
// simboba is licensed under the Apache License Version 2.0.
//
//

// Package server exposes the evaluation harness over HTTP: dataset and case
// CRUD, run execution, baselines, regression reports, and settings.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/simboba/simboba/agent"
	"github.com/simboba/simboba/config"
	"github.com/simboba/simboba/dataset"
	datasetinmemory "github.com/simboba/simboba/dataset/inmemory"
	"github.com/simboba/simboba/judge"
	judgeresolver "github.com/simboba/simboba/judge/resolver"
	"github.com/simboba/simboba/log"
	"github.com/simboba/simboba/runstate"
	runstateinmemory "github.com/simboba/simboba/runstate/inmemory"
)

// Server routes harness operations over REST. Agents are registered by name
// at construction time and referenced by run requests.
type Server struct {
	agents map[string]agent.Agent
	router *mux.Router

	datasets  dataset.Manager
	runs      runstate.Store
	judge     judge.Judge
	overrides *config.Overrides
}

// Option configures the Server instance.
type Option func(*Server)

// WithDatasetManager overrides the default in-memory dataset manager.
func WithDatasetManager(m dataset.Manager) Option {
	return func(s *Server) {
		if m != nil {
			s.datasets = m
		}
	}
}

// WithRunStore overrides the default in-memory run store.
func WithRunStore(store runstate.Store) Option {
	return func(s *Server) {
		if store != nil {
			s.runs = store
		}
	}
}

// WithJudge overrides the default resolved judge.
func WithJudge(j judge.Judge) Option {
	return func(s *Server) {
		if j != nil {
			s.judge = j
		}
	}
}

// WithOverrides supplies run overrides applied to every run the server
// starts.
func WithOverrides(overrides *config.Overrides) Option {
	return func(s *Server) { s.overrides = overrides }
}

// New creates an HTTP server with explicit agent registration. Storage
// defaults to in-memory backends and the judge defaults to environment
// resolution.
func New(agents map[string]agent.Agent, opts ...Option) *Server {
	s := &Server{
		agents:   agents,
		router:   mux.NewRouter(),
		datasets: datasetinmemory.New(),
		runs:     runstateinmemory.New(),
		judge:    judgeresolver.New().Judge(),
	}
	for _, opt := range opts {
		opt(s)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Length", "Content-Type"},
	})
	s.router.Use(c.Handler)
	s.registerRoutes()
	return s
}

// Handler returns the http.Handler for the server.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/agents", s.handleListAgents).Methods(http.MethodGet)

	// Dataset APIs.
	s.router.HandleFunc("/datasets", s.handleCreateDataset).Methods(http.MethodPost)
	s.router.HandleFunc("/datasets", s.handleListDatasets).Methods(http.MethodGet)
	s.router.HandleFunc("/datasets/{dataset}", s.handleGetDataset).Methods(http.MethodGet)
	s.router.HandleFunc("/datasets/{dataset}", s.handleUpdateDataset).Methods(http.MethodPatch)
	s.router.HandleFunc("/datasets/{dataset}", s.handleDeleteDataset).Methods(http.MethodDelete)
	s.router.HandleFunc("/datasets/import", s.handleImportDataset).Methods(http.MethodPost)
	s.router.HandleFunc("/datasets/{dataset}/export", s.handleExportDataset).Methods(http.MethodGet)

	// Case APIs.
	s.router.HandleFunc("/datasets/{dataset}/cases", s.handleAddCase).Methods(http.MethodPost)
	s.router.HandleFunc("/datasets/{dataset}/cases/{caseId}", s.handleGetCase).Methods(http.MethodGet)
	s.router.HandleFunc("/datasets/{dataset}/cases/{caseId}", s.handleUpdateCase).Methods(http.MethodPut)
	s.router.HandleFunc("/datasets/{dataset}/cases/{caseId}", s.handleDeleteCase).Methods(http.MethodDelete)

	// Run APIs.
	s.router.HandleFunc("/datasets/{dataset}/run", s.handleRunEval).Methods(http.MethodPost)
	s.router.HandleFunc("/datasets/{dataset}/runs", s.handleListRuns).Methods(http.MethodGet)
	s.router.HandleFunc("/datasets/{dataset}/runs/{runId}", s.handleGetRun).Methods(http.MethodGet)
	s.router.HandleFunc("/datasets/{dataset}/runs/{runId}", s.handleDeleteRun).Methods(http.MethodDelete)
	s.router.HandleFunc("/datasets/{dataset}/runs/{runId}/regressions", s.handleRunRegressions).
		Methods(http.MethodGet)

	// Baseline APIs.
	s.router.HandleFunc("/datasets/{dataset}/baseline", s.handleSaveBaseline).Methods(http.MethodPost)
	s.router.HandleFunc("/datasets/{dataset}/baseline", s.handleGetBaseline).Methods(http.MethodGet)

	// Settings APIs.
	s.router.HandleFunc("/settings", s.handleListSettings).Methods(http.MethodGet)
	s.router.HandleFunc("/settings/{key}", s.handleGetSetting).Methods(http.MethodGet)
	s.router.HandleFunc("/settings/{key}", s.handleSetSetting).Methods(http.MethodPut)

	// OPTIONS handlers to allow CORS pre-flight.
	preflight := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
	s.router.HandleFunc("/datasets", preflight).Methods(http.MethodOptions)
	s.router.HandleFunc("/datasets/{dataset}", preflight).Methods(http.MethodOptions)
	s.router.HandleFunc("/datasets/{dataset}/run", preflight).Methods(http.MethodOptions)
	s.router.HandleFunc("/datasets/{dataset}/baseline", preflight).Methods(http.MethodOptions)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("write response: %v", err)
	}
}
