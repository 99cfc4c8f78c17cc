//
// Copyright (C) 2026 The simboba Authors. All rights reserved.
//
// simboba is licensed under the Apache License Version 2.0.
//
//

// Package executor runs evaluation datasets against an agent, persists run
// state, and reports pass/fail outcomes with regression diffs against a
// saved baseline.
package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/simboba/simboba/agent"
	"github.com/simboba/simboba/dataset"
	"github.com/simboba/simboba/log"
	"github.com/simboba/simboba/regression"
	"github.com/simboba/simboba/runstate"
)

var tracer = otel.Tracer("simboba.executor")

// Summary is the caller-facing outcome of a completed run.
type Summary struct {
	RunID       string
	DatasetID   string
	DatasetName string
	Passed      int
	Failed      int
	Total       int
	Score       float64
	Regression  *regression.Report
}

// Executor evaluates datasets. It is safe for concurrent use; each Run
// keeps its own state.
type Executor struct {
	opts *Options
}

// New creates an Executor. A dataset manager, run store, and judge are
// required.
func New(opts ...Option) (*Executor, error) {
	options := NewOptions(opts...)
	if options.DatasetManager == nil {
		return nil, errors.New("executor: dataset manager is required")
	}
	if options.RunStore == nil {
		return nil, errors.New("executor: run store is required")
	}
	if options.Judge == nil {
		return nil, errors.New("executor: judge is required")
	}
	return &Executor{opts: options}, nil
}

// Run evaluates the named dataset against the agent. Case selection takes
// explicit run options first, then configured overrides, then the full
// dataset. Unknown requested case IDs fail before any case executes.
func (e *Executor) Run(
	ctx context.Context,
	ag agent.Agent,
	datasetNameOrID string,
	opts ...RunOption,
) (*Summary, error) {
	if ag == nil {
		return nil, errors.New("executor: agent is required")
	}
	runOpts := NewRunOptions(opts...)
	ds, err := e.opts.DatasetManager.Get(ctx, datasetNameOrID)
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", datasetNameOrID, err)
	}
	cases, err := selectCases(ds, e.caseFilter(runOpts))
	if err != nil {
		return nil, err
	}
	if len(cases) == 0 {
		return nil, fmt.Errorf("dataset %s has no cases", ds.Name)
	}
	workers := e.workerCount(runOpts)

	run := &runstate.Run{
		DatasetID:   ds.ID,
		DatasetName: ds.Name,
		Label:       runLabel(runOpts, ds),
		Status:      runstate.StatusRunning,
		Total:       len(cases),
		StartedAt:   time.Now().UTC(),
		Results:     make(map[string]*runstate.CaseResult, len(cases)),
	}
	if _, err := e.opts.RunStore.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}

	ctx, span := tracer.Start(ctx, "evaluation.run",
		trace.WithAttributes(
			attribute.String("dataset.id", ds.ID),
			attribute.String("run.id", run.RunID),
			attribute.Int("run.cases", len(cases)),
			attribute.Int("run.workers", workers),
		))
	defer span.End()

	log.Infof("Starting run %s: dataset=%s cases=%d workers=%d",
		run.RunID, ds.Name, len(cases), workers)
	if workers <= 1 {
		err = e.runSequential(ctx, ag, runOpts, run, cases)
	} else {
		err = e.runParallel(ctx, ag, runOpts, run, cases, workers)
	}
	if err != nil {
		return nil, err
	}
	if err := e.finalize(ctx, run); err != nil {
		return nil, err
	}

	report, err := e.diffAgainstBaseline(ctx, run)
	if err != nil {
		return nil, err
	}
	log.Infof("Run %s completed: %d/%d passed (%.1f%%)",
		run.RunID, run.Passed, run.Total, run.Score)
	return &Summary{
		RunID:       run.RunID,
		DatasetID:   run.DatasetID,
		DatasetName: run.DatasetName,
		Passed:      run.Passed,
		Failed:      run.Failed,
		Total:       run.Total,
		Score:       run.Score,
		Regression:  report,
	}, nil
}

// Evaluate judges a single already-produced output against an ad-hoc case
// that belongs to no stored dataset. No agent is invoked; the caller supplies
// the output. The result is persisted as a one-case run under the ad-hoc
// dataset ID, and no baseline diff is produced.
func (e *Executor) Evaluate(
	ctx context.Context,
	evalCase *dataset.Case,
	output *agent.Output,
	opts ...RunOption,
) (*runstate.CaseResult, error) {
	if evalCase == nil {
		return nil, errors.New("executor: case is required")
	}
	if output == nil {
		return nil, errors.New("executor: output is required")
	}
	runOpts := NewRunOptions(opts...)
	run := &runstate.Run{
		DatasetID:   runstate.AdHocDatasetID,
		DatasetName: runstate.AdHocDatasetID,
		Label:       runOpts.Label,
		Status:      runstate.StatusRunning,
		Total:       1,
		StartedAt:   time.Now().UTC(),
		Results:     make(map[string]*runstate.CaseResult, 1),
	}
	if run.Label == "" {
		run.Label = evalCase.DisplayName()
	}
	if _, err := e.opts.RunStore.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}

	ctx, span := tracer.Start(ctx, "evaluation.case",
		trace.WithAttributes(attribute.String("case.id", evalCase.CaseID)))
	defer span.End()
	result, err := judgeOutput(ctx, e.opts.Judge, runOpts.MetadataChecker, evalCase, output)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Bool("case.passed", result.Passed))

	e.fold(run, evalCase, result)
	if err := e.finalize(ctx, run); err != nil {
		return nil, err
	}
	return result, nil
}

// caseFilter resolves the effective case ID filter. An empty result means
// the whole dataset runs.
func (e *Executor) caseFilter(runOpts *RunOptions) []string {
	if len(runOpts.CaseIDs) > 0 {
		return runOpts.CaseIDs
	}
	if e.opts.Overrides != nil && len(e.opts.Overrides.CaseIDs) > 0 {
		return e.opts.Overrides.CaseIDs
	}
	return nil
}

// workerCount resolves the effective worker count for a run.
func (e *Executor) workerCount(runOpts *RunOptions) int {
	if runOpts.MaxWorkers > 0 {
		return runOpts.MaxWorkers
	}
	if e.opts.Overrides != nil && e.opts.Overrides.MaxWorkers > 0 {
		return e.opts.Overrides.MaxWorkers
	}
	return 1
}

func runLabel(runOpts *RunOptions, ds *dataset.Dataset) string {
	if runOpts.Label != "" {
		return runOpts.Label
	}
	return fmt.Sprintf("eval-%s", ds.Name)
}

// selectCases applies the case ID filter to the dataset, preserving dataset
// order. Every unknown ID is reported before any case executes.
func selectCases(ds *dataset.Dataset, caseIDs []string) ([]*dataset.Case, error) {
	if len(caseIDs) == 0 {
		return ds.Cases, nil
	}
	byID := make(map[string]*dataset.Case, len(ds.Cases))
	for _, c := range ds.Cases {
		byID[c.CaseID] = c
	}
	var unknown []string
	wanted := make(map[string]bool, len(caseIDs))
	for _, id := range caseIDs {
		if _, ok := byID[id]; !ok {
			unknown = append(unknown, id)
			continue
		}
		wanted[id] = true
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown case IDs in dataset %s: %s",
			ds.Name, strings.Join(unknown, ", "))
	}
	selected := make([]*dataset.Case, 0, len(wanted))
	for _, c := range ds.Cases {
		if wanted[c.CaseID] {
			selected = append(selected, c)
		}
	}
	return selected, nil
}

// runSequential evaluates cases one at a time, flushing the run record
// after every case so a crash loses at most the in-flight case.
func (e *Executor) runSequential(
	ctx context.Context,
	ag agent.Agent,
	runOpts *RunOptions,
	run *runstate.Run,
	cases []*dataset.Case,
) error {
	for _, c := range cases {
		result, err := e.evalCaseSpan(ctx, ag, runOpts, c)
		if err != nil {
			return err
		}
		e.fold(run, c, result)
		if err := e.opts.RunStore.SaveRun(ctx, run); err != nil {
			return fmt.Errorf("save run %s: %w", run.RunID, err)
		}
	}
	return nil
}

// parallelRun holds the shared state of one parallel run. The mutex guards
// the run record, the flush counter, and the first recorded error.
type parallelRun struct {
	exec    *Executor
	ag      agent.Agent
	runOpts *RunOptions
	run     *runstate.Run

	mu         sync.Mutex
	sinceFlush int
	firstErr   error
}

func (e *Executor) runParallel(
	ctx context.Context,
	ag agent.Agent,
	runOpts *RunOptions,
	run *runstate.Run,
	cases []*dataset.Case,
	workers int,
) error {
	if workers > len(cases) {
		workers = len(cases)
	}
	pool, err := createCaseEvalPool(workers)
	if err != nil {
		return err
	}
	defer pool.Release()

	pr := &parallelRun{
		exec:    e,
		ag:      ag,
		runOpts: runOpts,
		run:     run,
	}

	var wg sync.WaitGroup
	for _, c := range cases {
		param := caseEvalParamPool.Get().(*caseEvalParam)
		param.ctx = ctx
		param.evalCase = c
		param.run = pr
		param.wg = &wg
		wg.Add(1)
		if err := pool.Invoke(param); err != nil {
			wg.Done()
			param.reset()
			caseEvalParamPool.Put(param)
			pr.recordErr(fmt.Errorf("submit case %s: %w", c.CaseID, err))
			break
		}
	}
	wg.Wait()

	pr.mu.Lock()
	defer pr.mu.Unlock()
	if pr.firstErr != nil {
		return pr.firstErr
	}
	// Final flush covers the tail batch shorter than the interval.
	if err := e.opts.RunStore.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("save run %s: %w", run.RunID, err)
	}
	return nil
}

// evalCase is the worker body. Folding, flushing, and error recording all
// happen under the run lock.
func (r *parallelRun) evalCase(ctx context.Context, c *dataset.Case) {
	if r.failed() {
		return
	}
	result, err := r.exec.evalCaseSpan(ctx, r.ag, r.runOpts, c)
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		if r.firstErr == nil {
			r.firstErr = err
		}
		return
	}
	if r.firstErr != nil {
		return
	}
	r.exec.fold(r.run, c, result)
	r.sinceFlush++
	if r.sinceFlush < r.exec.opts.FlushInterval {
		return
	}
	if err := r.exec.opts.RunStore.SaveRun(ctx, r.run); err != nil {
		r.firstErr = fmt.Errorf("save run %s: %w", r.run.RunID, err)
		return
	}
	r.sinceFlush = 0
}

func (r *parallelRun) failed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.firstErr != nil
}

func (r *parallelRun) recordErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.firstErr == nil {
		r.firstErr = err
	}
}

// evalCaseSpan wraps one case evaluation in a trace span.
func (e *Executor) evalCaseSpan(
	ctx context.Context,
	ag agent.Agent,
	runOpts *RunOptions,
	c *dataset.Case,
) (*runstate.CaseResult, error) {
	ctx, span := tracer.Start(ctx, "evaluation.case",
		trace.WithAttributes(attribute.String("case.id", c.CaseID)))
	defer span.End()
	result, err := processCase(ctx, ag, e.opts.Judge, runOpts.MetadataChecker, c)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Bool("case.passed", result.Passed))
	return result, nil
}

// fold merges a completed case result into the run record and emits a
// progress event. Callers in parallel mode hold the run lock.
func (e *Executor) fold(run *runstate.Run, c *dataset.Case, result *runstate.CaseResult) {
	run.Results[result.CaseID] = result
	if result.Passed {
		run.Passed++
	} else {
		run.Failed++
	}
	if e.opts.Progress != nil {
		e.opts.Progress(&Progress{
			CaseID:   c.CaseID,
			CaseName: c.DisplayName(),
			Passed:   result.Passed,
		})
		return
	}
	if result.Passed {
		log.Infof("✓ %s", c.DisplayName())
	} else {
		log.Infof("✗ %s: %s", c.DisplayName(), result.Reasoning)
	}
}

// finalize marks the run completed, computes the score, and persists the
// final record.
func (e *Executor) finalize(ctx context.Context, run *runstate.Run) error {
	now := time.Now().UTC()
	run.Status = runstate.StatusCompleted
	run.CompletedAt = &now
	run.Score = score(run.Passed, run.Total)
	if err := e.opts.RunStore.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("save run %s: %w", run.RunID, err)
	}
	return nil
}

// diffAgainstBaseline loads the dataset's baseline and diffs the run
// against it. A missing baseline produces an empty report, not an error.
func (e *Executor) diffAgainstBaseline(ctx context.Context, run *runstate.Run) (*regression.Report, error) {
	baseline, err := e.opts.RunStore.GetBaseline(ctx, run.DatasetID)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return regression.Diff(run, nil), nil
		}
		return nil, fmt.Errorf("load baseline for dataset %s: %w", run.DatasetID, err)
	}
	return regression.Diff(run, baseline), nil
}

func score(passed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(passed) / float64(total) * 100
}
