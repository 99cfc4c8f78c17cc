//
// Copyright (C) 2026 The simboba Authors. All rights reserved.
//
// simboba is licensed under the Apache License Version 2.0.
//
//

package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/simboba/simboba/judge/heuristic"
	"github.com/simboba/simboba/judge/oracle"
)

func TestResolverWithoutKeyFallsBackToHeuristic(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	r := New()
	assert.IsType(t, heuristic.New(), r.Judge())
	// Repeated resolution stays on the fallback.
	assert.IsType(t, heuristic.New(), r.Judge())
}

func TestResolverWithKeyUsesOracle(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	r := New(WithAPIKey("test-key"), WithModel("gpt-4o"))
	assert.IsType(t, oracle.New(), r.Judge())
}

func TestResolverReadsEnvKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")
	r := New()
	assert.IsType(t, oracle.New(), r.Judge())
}
