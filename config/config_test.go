//
// Copyright (C) 2026 The simboba Authors. All rights reserved.
//
// simboba is licensed under the Apache License Version 2.0.
//
//

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv(EnvCaseIDs, "")
	t.Setenv(EnvMaxWorkers, "")
	overrides, err := FromEnv()
	assert.NoError(t, err)
	assert.Empty(t, overrides.CaseIDs)
	assert.Zero(t, overrides.MaxWorkers)
}

func TestFromEnvParsesValues(t *testing.T) {
	t.Setenv(EnvCaseIDs, "case-1, case-2 ,case-3")
	t.Setenv(EnvMaxWorkers, "8")
	overrides, err := FromEnv()
	assert.NoError(t, err)
	assert.Equal(t, []string{"case-1", "case-2", "case-3"}, overrides.CaseIDs)
	assert.Equal(t, 8, overrides.MaxWorkers)
}

func TestFromEnvRejectsBadWorkerCount(t *testing.T) {
	t.Setenv(EnvCaseIDs, "")
	t.Setenv(EnvMaxWorkers, "lots")
	_, err := FromEnv()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), EnvMaxWorkers)
}
