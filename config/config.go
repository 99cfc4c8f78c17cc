//
// Copyright (C) 2026 The simboba Authors. All rights reserved.
//
// simboba is licensed under the Apache License Version 2.0.
//
//

// Package config resolves environment-driven run overrides. The executor
// never reads the environment itself; it only receives the resolved values.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variables recognized by FromEnv.
const (
	// EnvCaseIDs holds a comma-separated case ID filter.
	EnvCaseIDs = "SIMBOBA_CASE_IDS"
	// EnvMaxWorkers holds the worker count for parallel execution.
	EnvMaxWorkers = "SIMBOBA_MAX_WORKERS"
)

// Overrides carries resolved run overrides. Zero values mean "not set":
// explicit run options always take precedence over these.
type Overrides struct {
	// CaseIDs restricts a run to the listed case IDs when non-empty.
	CaseIDs []string
	// MaxWorkers enables parallel execution when greater than 1.
	MaxWorkers int
}

// FromEnv resolves overrides from the process environment.
func FromEnv() (*Overrides, error) {
	overrides := &Overrides{}
	if raw := os.Getenv(EnvCaseIDs); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				overrides.CaseIDs = append(overrides.CaseIDs, id)
			}
		}
	}
	if raw := os.Getenv(EnvMaxWorkers); raw != "" {
		workers, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s=%q: %w", EnvMaxWorkers, raw, err)
		}
		overrides.MaxWorkers = workers
	}
	return overrides, nil
}
