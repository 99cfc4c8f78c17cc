//
// Copyright (C) 2026 The simboba Authors. All rights reserved.
//
// simboba is licensed under the Apache License Version 2.0.
//
//

package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/simboba/simboba/agent"
	"github.com/simboba/simboba/dataset"
	"github.com/simboba/simboba/judge"
	"github.com/simboba/simboba/runstate"
)

// processCase evaluates one case end to end: invoke the agent, judge the
// output, optionally check metadata, and assemble the case result. Agent
// failures (including panics) are absorbed into a failed result; a non-nil
// judge error means the judge broke its contract and is returned to abort
// the run.
func processCase(
	ctx context.Context,
	ag agent.Agent,
	j judge.Judge,
	checker MetadataChecker,
	c *dataset.Case,
) (*runstate.CaseResult, error) {
	started := time.Now()
	output, err := invokeAgent(ctx, ag, c.Conversation)
	// Judge latency is excluded; the duration covers the agent only.
	duration := time.Since(started).Milliseconds()
	if err != nil {
		return &runstate.CaseResult{
			CaseID:           c.CaseID,
			ExpectedMetadata: c.ExpectedMetadata,
			Passed:           false,
			ErrorMessage:     err.Error(),
			Reasoning:        fmt.Sprintf("Error: %s", err.Error()),
			DurationMS:       duration,
			CreatedAt:        started.UTC(),
		}, nil
	}

	judged, err := judgeOutput(ctx, j, checker, c, output)
	if err != nil {
		return nil, err
	}
	judged.DurationMS = duration
	judged.CreatedAt = started.UTC()
	return judged, nil
}

// judgeOutput judges an already-produced output against a case and assembles
// the case result. A non-nil error means the judge broke its contract.
func judgeOutput(
	ctx context.Context,
	j judge.Judge,
	checker MetadataChecker,
	c *dataset.Case,
	output *agent.Output,
) (*runstate.CaseResult, error) {
	result := &runstate.CaseResult{
		CaseID:           c.CaseID,
		ExpectedMetadata: c.ExpectedMetadata,
		ActualOutput:     &output.Text,
		ActualMetadata:   output.Metadata,
		CreatedAt:        time.Now().UTC(),
	}

	verdict, err := j.Judge(ctx, &judge.Request{
		Conversation:     c.Conversation,
		ExpectedOutcome:  c.ExpectedOutcome,
		ActualOutput:     output.Text,
		ExpectedMetadata: c.ExpectedMetadata,
		ActualMetadata:   output.Metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("judge case %s: %w", c.CaseID, err)
	}
	result.Passed = verdict.Passed
	result.Reasoning = verdict.Reasoning

	if checker != nil && c.ExpectedMetadata != nil {
		ok := checker(c.ExpectedMetadata, output.Metadata)
		result.MetadataPassed = &ok
		result.Passed = result.Passed && ok
	}
	return result, nil
}

// invokeAgent calls the agent and converts a panic into an error so that a
// misbehaving agent fails its own case instead of the whole run.
func invokeAgent(ctx context.Context, ag agent.Agent, turns []*dataset.Turn) (output *agent.Output, err error) {
	defer func() {
		if r := recover(); r != nil {
			output = nil
			err = fmt.Errorf("agent panicked: %v", r)
		}
	}()
	output, err = ag.Invoke(ctx, turns)
	if err != nil {
		return nil, err
	}
	if output == nil {
		return nil, fmt.Errorf("agent returned no output")
	}
	return output, nil
}
