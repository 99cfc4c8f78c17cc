//
// Copyright (C) 2026 The simboba Authors. All rights reserved.
//
// simboba is licensed under the Apache License Version 2.0.
//
//

// Package judge defines the pass/fail oracle capability used to score agent
// outputs against expected outcomes.
package judge

import (
	"context"

	"github.com/simboba/simboba/dataset"
)

// Request carries everything a judge may consider for one case.
type Request struct {
	// Conversation is the case conversation fed to the agent.
	Conversation []*dataset.Turn
	// ExpectedOutcome describes what the output should achieve.
	ExpectedOutcome string
	// ActualOutput is the agent's response text.
	ActualOutput string
	// ExpectedMetadata optionally holds the case's expected structured output.
	ExpectedMetadata map[string]any
	// ActualMetadata optionally holds the structured output the agent produced.
	ActualMetadata map[string]any
}

// Verdict is a judge's decision for one case.
type Verdict struct {
	// Passed reports whether the output satisfies the expected outcome.
	Passed bool
	// Reasoning explains the verdict in human-readable form.
	Reasoning string
}

// Judge decides whether an agent output meets an expected outcome.
//
// Implementations must not return an error for well-formed input: internal
// failures (an unreachable backend, an unparseable response) degrade to a
// failed verdict whose reasoning describes the failure. A non-nil error
// therefore signals a broken implementation and aborts the run it occurs in.
type Judge interface {
	Judge(ctx context.Context, req *Request) (*Verdict, error)
}

// Func adapts a plain function to the Judge interface.
type Func func(ctx context.Context, req *Request) (*Verdict, error)

// Judge calls the wrapped function.
func (f Func) Judge(ctx context.Context, req *Request) (*Verdict, error) {
	return f(ctx, req)
}
