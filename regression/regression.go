//
// Copyright (C) 2026 The simboba Authors. All rights reserved.
//
// simboba is licensed under the Apache License Version 2.0.
//
//

// Package regression compares a run's results against a saved baseline.
package regression

import (
	"sort"

	"github.com/simboba/simboba/runstate"
)

// Report lists the behavioral differences between a run and its baseline.
type Report struct {
	// Regressions are case IDs that passed in the baseline but failed in
	// the current run.
	Regressions []string `json:"regressions"`
	// Fixes are case IDs that failed in the baseline but passed in the
	// current run.
	Fixes []string `json:"fixes"`
	// NewCases are case IDs present only in the current run.
	NewCases []string `json:"newCases"`
	// RemovedCases are case IDs present only in the baseline.
	RemovedCases []string `json:"removedCases"`
	// HasBaseline distinguishes "no baseline exists" from "baseline exists
	// with zero diffs".
	HasBaseline bool `json:"hasBaseline"`
}

// Diff compares a run's result map against a baseline. Pure function: it
// performs no I/O and never fails. A nil baseline yields an empty report
// with HasBaseline false.
//
// Only case IDs present on both sides can regress or be fixed; IDs on one
// side only reflect dataset edits between the two runs and are surfaced as
// NewCases/RemovedCases instead. All lists are sorted for stable output.
func Diff(run *runstate.Run, baseline *runstate.Baseline) *Report {
	report := &Report{
		Regressions:  []string{},
		Fixes:        []string{},
		NewCases:     []string{},
		RemovedCases: []string{},
	}
	if baseline == nil {
		return report
	}
	report.HasBaseline = true
	for caseID, current := range run.Results {
		previous, ok := baseline.Results[caseID]
		if !ok {
			report.NewCases = append(report.NewCases, caseID)
			continue
		}
		switch {
		case previous.Passed && !current.Passed:
			report.Regressions = append(report.Regressions, caseID)
		case !previous.Passed && current.Passed:
			report.Fixes = append(report.Fixes, caseID)
		}
	}
	for caseID := range baseline.Results {
		if _, ok := run.Results[caseID]; !ok {
			report.RemovedCases = append(report.RemovedCases, caseID)
		}
	}
	sort.Strings(report.Regressions)
	sort.Strings(report.Fixes)
	sort.Strings(report.NewCases)
	sort.Strings(report.RemovedCases)
	return report
}
