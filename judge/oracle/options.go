//
// Copyright (C) 2026 The simboba Authors. All rights reserved.
//
// simboba is licensed under the Apache License Version 2.0.
//
//

package oracle

const (
	// DefaultModel is the judge model used when none is configured.
	DefaultModel = "gpt-4o-mini"
	// defaultMaxTokens bounds the judge's verdict response.
	defaultMaxTokens = 1024
)

// Options configure the oracle judge.
type Options struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int64
}

// NewOptions constructs Options with the default values.
func NewOptions(opts ...Option) *Options {
	options := &Options{
		Model:     DefaultModel,
		MaxTokens: defaultMaxTokens,
	}
	for _, o := range opts {
		o(options)
	}
	return options
}

// Option configures Options.
type Option func(*Options)

// WithAPIKey sets the API key used for judge model calls.
func WithAPIKey(key string) Option {
	return func(o *Options) {
		o.APIKey = key
	}
}

// WithBaseURL overrides the API endpoint, e.g. for OpenAI-compatible gateways.
func WithBaseURL(url string) Option {
	return func(o *Options) {
		o.BaseURL = url
	}
}

// WithModel sets the judge model name.
func WithModel(model string) Option {
	return func(o *Options) {
		if model != "" {
			o.Model = model
		}
	}
}

// WithMaxTokens bounds the judge's verdict response length.
func WithMaxTokens(n int64) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxTokens = n
		}
	}
}
