//
// Copyright (C) 2026 The simboba Authors. All rights reserved.
//
// simboba is licensed under the Apache License Version 2.0.
//
//

package regression

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/simboba/simboba/runstate"
)

func result(caseID string, passed bool) *runstate.CaseResult {
	return &runstate.CaseResult{CaseID: caseID, Passed: passed}
}

func TestDiff(t *testing.T) {
	run := &runstate.Run{
		RunID: "run-1",
		Results: map[string]*runstate.CaseResult{
			"regressed": result("regressed", false),
			"fixed":     result("fixed", true),
			"stable":    result("stable", true),
			"broken":    result("broken", false),
			"added":     result("added", true),
		},
	}
	baseline := &runstate.Baseline{
		SourceRunID: "run-0",
		Results: map[string]*runstate.CaseResult{
			"regressed": result("regressed", true),
			"fixed":     result("fixed", false),
			"stable":    result("stable", true),
			"broken":    result("broken", false),
			"removed":   result("removed", true),
		},
	}

	report := Diff(run, baseline)
	assert.True(t, report.HasBaseline)
	assert.Equal(t, []string{"regressed"}, report.Regressions)
	assert.Equal(t, []string{"fixed"}, report.Fixes)
	assert.Equal(t, []string{"added"}, report.NewCases)
	assert.Equal(t, []string{"removed"}, report.RemovedCases)
}

func TestDiffWithoutBaseline(t *testing.T) {
	run := &runstate.Run{
		RunID: "run-1",
		Results: map[string]*runstate.CaseResult{
			"a": result("a", false),
		},
	}
	report := Diff(run, nil)
	assert.False(t, report.HasBaseline)
	assert.Empty(t, report.Regressions)
	assert.Empty(t, report.Fixes)
	assert.Empty(t, report.NewCases)
	assert.Empty(t, report.RemovedCases)
}

func TestDiffListsAreSorted(t *testing.T) {
	run := &runstate.Run{
		Results: map[string]*runstate.CaseResult{
			"c": result("c", false),
			"a": result("a", false),
			"b": result("b", false),
		},
	}
	baseline := &runstate.Baseline{
		Results: map[string]*runstate.CaseResult{
			"c": result("c", true),
			"a": result("a", true),
			"b": result("b", true),
		},
	}
	report := Diff(run, baseline)
	assert.Equal(t, []string{"a", "b", "c"}, report.Regressions)
}
