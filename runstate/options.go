//
// Copyright (C) 2026 The simboba Authors. All rights reserved.
//
// simboba is licensed under the Apache License Version 2.0.
//
//

package runstate

const defaultBaseDir = "simboba-evals/runs"

// Options configure the local run state store.
type Options struct {
	BaseDir string
	Locator Locator
}

// NewOptions constructs Options with the default values.
func NewOptions(opts ...Option) *Options {
	options := &Options{
		BaseDir: defaultBaseDir,
		Locator: &locator{},
	}
	for _, o := range opts {
		o(options)
	}
	return options
}

// Option configures Options.
type Option func(*Options)

// WithBaseDir sets the root directory for storing run state files.
func WithBaseDir(dir string) Option {
	return func(o *Options) {
		o.BaseDir = dir
	}
}

// WithLocator overrides how run state file paths are generated.
func WithLocator(l Locator) Option {
	return func(o *Options) {
		if l != nil {
			o.Locator = l
		}
	}
}
