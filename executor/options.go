//
// Copyright (C) 2026 The simboba Authors. All rights reserved.
//
// simboba is licensed under the Apache License Version 2.0.
//
//

package executor

import (
	"github.com/simboba/simboba/config"
	"github.com/simboba/simboba/dataset"
	"github.com/simboba/simboba/judge"
	"github.com/simboba/simboba/runstate"
)

// defaultFlushInterval is the number of completed cases between durability
// flushes in parallel mode. Bounds lost progress on crash to one short of
// the interval.
const defaultFlushInterval = 5

// MetadataChecker deterministically compares expected and actual structured
// metadata. Its verdict is recorded separately and ANDed with the judge's
// verdict to form the final pass.
type MetadataChecker func(expected, actual map[string]any) bool

// Progress is one observable event per completed case, suitable for a
// console or log sink. In parallel mode events arrive in completion order,
// not dataset order.
type Progress struct {
	// CaseID identifies the completed case.
	CaseID string
	// CaseName is the case's display name.
	CaseName string
	// Passed is the case's final verdict.
	Passed bool
}

// ProgressFunc receives progress events. Called under the executor's fold
// lock; implementations should return quickly.
type ProgressFunc func(p *Progress)

// Options configure an Executor.
type Options struct {
	DatasetManager dataset.Manager
	RunStore       runstate.Store
	Judge          judge.Judge
	Overrides      *config.Overrides
	FlushInterval  int
	Progress       ProgressFunc
}

// NewOptions constructs Options with the default values.
func NewOptions(opts ...Option) *Options {
	options := &Options{
		FlushInterval: defaultFlushInterval,
	}
	for _, o := range opts {
		o(options)
	}
	return options
}

// Option configures Options.
type Option func(*Options)

// WithDatasetManager sets the dataset manager used to load cases.
func WithDatasetManager(m dataset.Manager) Option {
	return func(o *Options) {
		o.DatasetManager = m
	}
}

// WithRunStore sets the run state store.
func WithRunStore(s runstate.Store) Option {
	return func(o *Options) {
		o.RunStore = s
	}
}

// WithJudge sets the judge used for every case.
func WithJudge(j judge.Judge) Option {
	return func(o *Options) {
		o.Judge = j
	}
}

// WithOverrides supplies externally resolved run overrides, typically from
// config.FromEnv. Explicit run options still take precedence.
func WithOverrides(overrides *config.Overrides) Option {
	return func(o *Options) {
		o.Overrides = overrides
	}
}

// WithFlushInterval overrides how many completed cases may accumulate
// between durability flushes in parallel mode.
func WithFlushInterval(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.FlushInterval = n
		}
	}
}

// WithProgress sets the sink for per-case progress events. By default
// events are written to the log.
func WithProgress(fn ProgressFunc) Option {
	return func(o *Options) {
		o.Progress = fn
	}
}

// RunOptions configure a single run.
type RunOptions struct {
	Label           string
	CaseIDs         []string
	MaxWorkers      int
	MetadataChecker MetadataChecker
}

// NewRunOptions constructs RunOptions with the default values.
func NewRunOptions(opts ...RunOption) *RunOptions {
	options := &RunOptions{}
	for _, o := range opts {
		o(options)
	}
	return options
}

// RunOption configures a single run.
type RunOption func(*RunOptions)

// WithLabel sets the human label for the run record.
func WithLabel(label string) RunOption {
	return func(o *RunOptions) {
		o.Label = label
	}
}

// WithCaseIDs restricts the run to the listed case IDs. An empty slice
// means no filter: all cases run. This mirrors the long-standing behavior
// of the original harness and is kept for compatibility.
func WithCaseIDs(caseIDs []string) RunOption {
	return func(o *RunOptions) {
		o.CaseIDs = caseIDs
	}
}

// WithMaxWorkers enables parallel execution with a fixed-size worker pool.
// Values of one or less run sequentially.
func WithMaxWorkers(n int) RunOption {
	return func(o *RunOptions) {
		o.MaxWorkers = n
	}
}

// WithMetadataChecker supplies a deterministic metadata checker for the run.
func WithMetadataChecker(checker MetadataChecker) RunOption {
	return func(o *RunOptions) {
		o.MetadataChecker = checker
	}
}
