//
// Copyright (C) 2026 The simboba Authors. All rights reserved.
//
// simboba is licensed under the Apache License Version 2.0.
//
//

package server

import (
	"github.com/simboba/simboba/dataset"
	"github.com/simboba/simboba/regression"
)

// createDatasetRequest is the POST /datasets payload.
type createDatasetRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// updateDatasetRequest is the PATCH /datasets/{dataset} payload. Only the
// fields present are changed.
type updateDatasetRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// runRequest is the POST /datasets/{dataset}/run payload.
type runRequest struct {
	Agent      string   `json:"agent"`
	Label      string   `json:"label,omitempty"`
	CaseIDs    []string `json:"caseIds,omitempty"`
	MaxWorkers int      `json:"maxWorkers,omitempty"`
}

// runResponse is the outcome of a server-side run.
type runResponse struct {
	RunID       string             `json:"runId"`
	DatasetID   string             `json:"datasetId"`
	DatasetName string             `json:"datasetName"`
	Passed      int                `json:"passed"`
	Failed      int                `json:"failed"`
	Total       int                `json:"total"`
	Score       float64            `json:"score"`
	Regression  *regression.Report `json:"regression,omitempty"`
}

// datasetExport is a portable dataset snapshot without the stable ID or
// timestamps. It is both the GET /datasets/{dataset}/export response and the
// POST /datasets/import payload; imported cases are assigned fresh case IDs.
type datasetExport struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Cases       []*dataset.Case `json:"cases"`
}

// saveBaselineRequest is the POST /datasets/{dataset}/baseline payload.
type saveBaselineRequest struct {
	RunID string `json:"runId"`
}

// settingResponse is one settings entry.
type settingResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// setSettingRequest is the PUT /settings/{key} payload.
type setSettingRequest struct {
	Value string `json:"value"`
}
