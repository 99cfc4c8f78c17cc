//
// Copyright (C) 2026 The simboba Authors. All rights reserved.
//
// simboba is licensed under the Apache License Version 2.0.
//
//

// Package agent defines the contract between the evaluation harness and the system under test.
package agent

import (
	"context"

	"github.com/simboba/simboba/dataset"
)

// Agent is the callable under evaluation. Invoke receives the full
// conversation of a case and returns the agent's output.
//
// When the executor runs with more than one worker, Invoke is called
// concurrently from multiple goroutines; implementations must be safe for
// concurrent use. A returned error is case-local: the executor records it
// as a failed case result and continues with the remaining cases.
type Agent interface {
	Invoke(ctx context.Context, conversation []*dataset.Turn) (*Output, error)
}

// Func adapts a plain function to the Agent interface.
type Func func(ctx context.Context, conversation []*dataset.Turn) (*Output, error)

// Invoke calls the wrapped function.
func (f Func) Invoke(ctx context.Context, conversation []*dataset.Turn) (*Output, error) {
	return f(ctx, conversation)
}

// Output is what an agent produces for one case: response text, optionally
// accompanied by structured metadata (tool calls, citations and the like).
// A nil Metadata map is the plain-text variant.
type Output struct {
	// Text is the agent's response text.
	Text string `json:"text"`
	// Metadata carries structured output accompanying the text, if any.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Text returns a plain-text output.
func Text(text string) *Output {
	return &Output{Text: text}
}

// WithMetadata returns an output carrying structured metadata alongside the text.
func WithMetadata(text string, metadata map[string]any) *Output {
	return &Output{Text: text, Metadata: metadata}
}
