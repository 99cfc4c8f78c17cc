//
// Copyright (C) 2026 The simboba Authors. All rights reserved.
//
// simboba is licensed under the Apache License Version 2.0.
//
//

// Package oracle provides the LLM-backed judge implementation.
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"

	"github.com/simboba/simboba/judge"
)

// oracleJudge asks an external model for a structured pass/fail verdict.
// Per the judge contract it never returns an error: backend failures and
// unparseable responses degrade to a failed verdict with explanatory
// reasoning, so a judging failure can never abort a run.
type oracleJudge struct {
	client    openai.Client
	model     string
	maxTokens int64
}

// New creates an oracle judge.
func New(opt ...Option) judge.Judge {
	opts := NewOptions(opt...)
	clientOpts := []openaiopt.RequestOption{}
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, openaiopt.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, openaiopt.WithBaseURL(opts.BaseURL))
	}
	return &oracleJudge{
		client:    openai.NewClient(clientOpts...),
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
	}
}

// Judge renders the judge prompt, calls the model and parses its verdict.
func (j *oracleJudge) Judge(ctx context.Context, req *judge.Request) (*judge.Verdict, error) {
	completion, err := j.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(j.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(buildPrompt(req)),
		},
		MaxCompletionTokens: openai.Int(j.maxTokens),
	})
	if err != nil {
		return &judge.Verdict{
			Passed:    false,
			Reasoning: fmt.Sprintf("Judge model call failed: %v", err),
		}, nil
	}
	if len(completion.Choices) == 0 {
		return &judge.Verdict{
			Passed:    false,
			Reasoning: "Judge model returned no choices",
		}, nil
	}
	return parseVerdict(completion.Choices[0].Message.Content), nil
}

// verdictJSON is the strict shape the judge model must respond with.
type verdictJSON struct {
	Passed    bool   `json:"passed"`
	Reasoning string `json:"reasoning"`
}

// parseVerdict extracts the JSON verdict from the model response,
// tolerating markdown code-fence wrapping.
func parseVerdict(content string) *judge.Verdict {
	var parsed verdictJSON
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &parsed); err != nil {
		return &judge.Verdict{
			Passed:    false,
			Reasoning: fmt.Sprintf("Could not parse judge response: %v: %s", err, content),
		}
	}
	reasoning := parsed.Reasoning
	if reasoning == "" {
		reasoning = "No reasoning provided"
	}
	return &judge.Verdict{Passed: parsed.Passed, Reasoning: reasoning}
}

// stripCodeFence unwraps a ```json ... ``` or ``` ... ``` fenced block.
func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if newline := strings.IndexByte(trimmed, '\n'); newline >= 0 {
		// Drop the language tag line, e.g. "json".
		if lang := strings.TrimSpace(trimmed[:newline]); lang == "" || !strings.ContainsAny(lang, "{}") {
			trimmed = trimmed[newline+1:]
		}
	}
	if end := strings.LastIndex(trimmed, "```"); end >= 0 {
		trimmed = trimmed[:end]
	}
	return strings.TrimSpace(trimmed)
}
