//
// Copyright (C) 2026 The simboba Authors. All rights reserved.
//
// simboba is licensed under the Apache License Version 2.0.
//
//

// Package heuristic provides a deterministic lexical-overlap judge that
// needs no external calls. It is the fallback when no oracle is available.
package heuristic

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/simboba/simboba/judge"
)

// passThreshold is the minimum share of expected terms that must appear in
// the output for a pass.
const passThreshold = 0.3

// nonAlphaNumRE matches one or more non-alphanumeric characters for normalization.
var nonAlphaNumRE = regexp.MustCompile(`[^a-z0-9]+`)

// stopWords are common words excluded from the overlap computation.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "is": {}, "are": {}, "should": {},
	"must": {}, "will": {}, "and": {}, "or": {}, "to": {}, "be": {},
}

type heuristicJudge struct {
}

// New returns the lexical-overlap judge.
func New() judge.Judge {
	return &heuristicJudge{}
}

// Judge passes when at least 30% of the expected outcome's non-stop-word
// terms appear in the output. An expected outcome with no such terms passes
// unconditionally, since there is nothing concrete to check.
func (heuristicJudge) Judge(_ context.Context, req *judge.Request) (*judge.Verdict, error) {
	expected := termSet(req.ExpectedOutcome)
	if len(expected) == 0 {
		return &judge.Verdict{Passed: true, Reasoning: "No specific requirements to check"}, nil
	}
	actual := termSet(req.ActualOutput)
	overlap := 0
	for term := range expected {
		if _, ok := actual[term]; ok {
			overlap++
		}
	}
	ratio := float64(overlap) / float64(len(expected))
	return &judge.Verdict{
		Passed:    ratio >= passThreshold,
		Reasoning: fmt.Sprintf("Found %d/%d expected terms in output", overlap, len(expected)),
	}, nil
}

// termSet lowercases the text, strips punctuation and returns the set of
// non-stop-word terms.
func termSet(text string) map[string]struct{} {
	normalized := nonAlphaNumRE.ReplaceAllString(strings.ToLower(text), " ")
	terms := make(map[string]struct{})
	for _, term := range strings.Fields(normalized) {
		if _, ok := stopWords[term]; ok {
			continue
		}
		terms[term] = struct{}{}
	}
	return terms
}
