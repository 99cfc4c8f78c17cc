//
// Copyright (C) 2026 The simboba Authors. All rights reserved.
//
// simboba is licensed under the Apache License Version 2.0.
//
//

package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/simboba/simboba/dataset"
	"github.com/simboba/simboba/judge"
)

func TestParseVerdict(t *testing.T) {
	verdict := parseVerdict(`{"passed": true, "reasoning": "Output matches."}`)
	assert.True(t, verdict.Passed)
	assert.Equal(t, "Output matches.", verdict.Reasoning)

	verdict = parseVerdict("```json\n{\"passed\": false, \"reasoning\": \"Missing refund.\"}\n```")
	assert.False(t, verdict.Passed)
	assert.Equal(t, "Missing refund.", verdict.Reasoning)

	verdict = parseVerdict("```\n{\"passed\": true}\n```")
	assert.True(t, verdict.Passed)
	assert.Equal(t, "No reasoning provided", verdict.Reasoning)

	// Unparseable content is a failure, never a panic or an error.
	verdict = parseVerdict("the model rambled instead of emitting JSON")
	assert.False(t, verdict.Passed)
	assert.Contains(t, verdict.Reasoning, "Could not parse judge response")
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"passed": true}`, stripCodeFence(`{"passed": true}`))
	assert.Equal(t, `{"passed": true}`, stripCodeFence("```json\n{\"passed\": true}\n```"))
	assert.Equal(t, `{"passed": true}`, stripCodeFence("```\n{\"passed\": true}\n```"))
	// Fence with the JSON on the opening line.
	assert.Equal(t, `{"passed": true}`, stripCodeFence("```{\"passed\": true}```"))
}

func TestBuildPrompt(t *testing.T) {
	prompt := buildPrompt(&judge.Request{
		Conversation: []*dataset.Turn{
			{Role: "user", Message: "I want a refund"},
			{Role: "assistant", Message: "Refund issued."},
		},
		ExpectedOutcome: "A refund is issued",
		ActualOutput:    "Refund issued.",
	})
	assert.Contains(t, prompt, "USER: I want a refund")
	assert.Contains(t, prompt, "ASSISTANT: Refund issued.")
	assert.Contains(t, prompt, "A refund is issued")
	assert.NotContains(t, prompt, "Expected Metadata")

	prompt = buildPrompt(&judge.Request{
		ExpectedOutcome:  "calls the lookup tool",
		ActualOutput:     "done",
		ExpectedMetadata: map[string]any{"tool": "lookup"},
		ActualMetadata:   map[string]any{"tool": "lookup"},
	})
	assert.Contains(t, prompt, "Expected Metadata")
	assert.Contains(t, prompt, `"tool": "lookup"`)
}

func TestNewDefaults(t *testing.T) {
	j := New().(*oracleJudge)
	assert.Equal(t, DefaultModel, j.model)

	j = New(WithModel("gpt-4o"), WithMaxTokens(256)).(*oracleJudge)
	assert.Equal(t, "gpt-4o", j.model)
	assert.Equal(t, int64(256), j.maxTokens)
}

func TestFormatConversation(t *testing.T) {
	assert.Empty(t, formatConversation(nil))
	got := formatConversation([]*dataset.Turn{
		{Role: "user", Message: "hello"},
		nil,
		{Message: "untagged"},
	})
	assert.Equal(t, "USER: hello\nUNKNOWN: untagged", got)
}
