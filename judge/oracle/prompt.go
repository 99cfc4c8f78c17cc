//
// Copyright (C) 2026 The simboba Authors. All rights reserved.
//
// simboba is licensed under the Apache License Version 2.0.
//
//

package oracle

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/simboba/simboba/dataset"
	"github.com/simboba/simboba/judge"
)

const promptTemplate = `You are an expert evaluator judging whether an AI agent's output meets the expected outcome.

## Conversation Context
%s

## Expected Outcome
%s

## Actual Output
%s
%s
## Your Task
Evaluate whether the actual output satisfies the expected outcome. Consider:
1. Does the output achieve what was expected?
2. Are all the criteria in the expected outcome met?
3. Is the behavior appropriate given the conversation context?

Respond with a JSON object in this exact format:
` + "```json" + `
{
  "passed": true or false,
  "reasoning": "Your detailed explanation of why this passed or failed"
}
` + "```" + `

Be strict but fair. Minor differences in wording are acceptable if the intent is met.
Only output the JSON object, nothing else.`

// buildPrompt renders the judge prompt for one request. Metadata blocks are
// included only when the request carries metadata.
func buildPrompt(req *judge.Request) string {
	return fmt.Sprintf(promptTemplate,
		formatConversation(req.Conversation),
		req.ExpectedOutcome,
		req.ActualOutput,
		formatMetadata(req.ExpectedMetadata, req.ActualMetadata),
	)
}

// formatConversation renders conversation turns as "ROLE: message" lines.
func formatConversation(conversation []*dataset.Turn) string {
	lines := make([]string, 0, len(conversation))
	for _, turn := range conversation {
		if turn == nil {
			continue
		}
		role := turn.Role
		if role == "" {
			role = "unknown"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", strings.ToUpper(role), turn.Message))
	}
	return strings.Join(lines, "\n")
}

// formatMetadata renders the optional expected/actual metadata sections.
func formatMetadata(expected, actual map[string]any) string {
	if expected == nil && actual == nil {
		return ""
	}
	var sb strings.Builder
	if expected != nil {
		sb.WriteString("\n## Expected Metadata\n")
		sb.WriteString(jsonBlock(expected))
		sb.WriteString("\n")
	}
	if actual != nil {
		sb.WriteString("\n## Actual Metadata\n")
		sb.WriteString(jsonBlock(actual))
		sb.WriteString("\n")
	}
	return sb.String()
}

func jsonBlock(m map[string]any) string {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", m)
	}
	return string(data)
}
