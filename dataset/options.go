//
// Copyright (C) 2026 The simboba Authors. All rights reserved.
//
// simboba is licensed under the Apache License Version 2.0.
//
//

package dataset

import "path/filepath"

const (
	defaultBaseDir = "simboba-evals/datasets"
	// DefaultDatasetExtension is the default extension for dataset files.
	DefaultDatasetExtension = ".dataset.json"
)

// PathBuilder builds the absolute path where a dataset should be stored.
type PathBuilder func(baseDir, datasetID string) string

// Options configure the local dataset manager.
type Options struct {
	BaseDir     string
	PathBuilder PathBuilder
}

// NewOptions constructs Options with the default values.
func NewOptions(opts ...Option) *Options {
	options := &Options{
		BaseDir:     defaultBaseDir,
		PathBuilder: defaultPathBuilder,
	}
	for _, o := range opts {
		o(options)
	}
	return options
}

// Option configures Options.
type Option func(*Options)

// WithBaseDir sets the root directory for storing dataset JSON files.
func WithBaseDir(dir string) Option {
	return func(o *Options) {
		o.BaseDir = dir
	}
}

// WithDatasetPathFunc overrides how dataset file paths are generated.
func WithDatasetPathFunc(p PathBuilder) Option {
	return func(o *Options) {
		o.PathBuilder = p
	}
}

func defaultPathBuilder(baseDir, datasetID string) string {
	return filepath.Join(baseDir, datasetID+DefaultDatasetExtension)
}
