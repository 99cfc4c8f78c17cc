//
// Copyright (C) 2026 The simboba Authors. All rights reserved.
//
// simboba is licensed under the Apache License Version 2.0.
//
//

package heuristic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/simboba/simboba/judge"
)

func TestHeuristicJudge(t *testing.T) {
	ctx := context.Background()
	j := New()

	// Full overlap passes.
	verdict, err := j.Judge(ctx, &judge.Request{
		ExpectedOutcome: "refund issued order",
		ActualOutput:    "A refund was issued for your order.",
	})
	assert.NoError(t, err)
	assert.True(t, verdict.Passed)
	assert.Equal(t, "Found 3/3 expected terms in output", verdict.Reasoning)

	// Below the 30% threshold fails.
	verdict, err = j.Judge(ctx, &judge.Request{
		ExpectedOutcome: "alpha bravo charlie delta echo foxtrot golf hotel india juliet",
		ActualOutput:    "only alpha and bravo appeared",
	})
	assert.NoError(t, err)
	assert.False(t, verdict.Passed)
	assert.Equal(t, "Found 2/10 expected terms in output", verdict.Reasoning)

	// Exactly at the threshold passes.
	verdict, err = j.Judge(ctx, &judge.Request{
		ExpectedOutcome: "alpha bravo charlie delta echo foxtrot golf hotel india juliet",
		ActualOutput:    "alpha bravo charlie",
	})
	assert.NoError(t, err)
	assert.True(t, verdict.Passed)
}

func TestHeuristicJudgeStopWordsAndCase(t *testing.T) {
	ctx := context.Background()
	j := New()

	// Stop words and punctuation never count as terms.
	verdict, err := j.Judge(ctx, &judge.Request{
		ExpectedOutcome: "The agent should REFUND the order!",
		ActualOutput:    "refund, order",
	})
	assert.NoError(t, err)
	assert.True(t, verdict.Passed)
	assert.Equal(t, "Found 2/3 expected terms in output", verdict.Reasoning)

	// An expected outcome of only stop words passes unconditionally.
	verdict, err = j.Judge(ctx, &judge.Request{
		ExpectedOutcome: "The a an is to be",
		ActualOutput:    "anything at all",
	})
	assert.NoError(t, err)
	assert.True(t, verdict.Passed)
	assert.Equal(t, "No specific requirements to check", verdict.Reasoning)

	// Empty expected outcome also passes.
	verdict, err = j.Judge(ctx, &judge.Request{ActualOutput: "anything"})
	assert.NoError(t, err)
	assert.True(t, verdict.Passed)
}
