//
// Copyright (C) 2026 The simboba Authors. All rights reserved.
//
// simboba is licensed under the Apache License Version 2.0.
//
//

// Package dataset defines datasets of evaluation cases and their storage contract.
package dataset

import (
	"context"
	"time"
)

// Dataset is a named collection of evaluation cases. The ID is a stable
// UUID assigned at creation time; runs and baselines reference datasets by
// ID so that renaming a dataset does not orphan its history.
type Dataset struct {
	// ID uniquely and stably identifies this dataset.
	ID string `json:"id"`
	// Name is the unique human-facing name of the dataset.
	Name string `json:"name"`
	// Description optionally describes the dataset.
	Description string `json:"description,omitempty"`
	// Cases contains the evaluation cases in creation order.
	Cases []*Case `json:"cases"`
	// CreatedAt is when the dataset was created.
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is when the dataset or one of its cases last changed.
	UpdatedAt time.Time `json:"updatedAt"`
}

// Case is a single evaluation scenario: a conversation plus the outcome the
// agent is expected to achieve. The executor never mutates a case.
type Case struct {
	// CaseID uniquely identifies this case within its dataset.
	CaseID string `json:"caseId"`
	// Name optionally names the case for display.
	Name string `json:"name,omitempty"`
	// Conversation is the ordered sequence of turns fed to the agent.
	Conversation []*Turn `json:"conversation"`
	// ExpectedOutcome describes what the agent's output should achieve.
	ExpectedOutcome string `json:"expectedOutcome"`
	// ExpectedMetadata optionally holds expected structured output, such as
	// tool calls or citations, checked alongside the response text.
	ExpectedMetadata map[string]any `json:"expectedMetadata,omitempty"`
	// CreatedAt is when the case was created.
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is when the case was last modified.
	UpdatedAt time.Time `json:"updatedAt"`
}

// DisplayName returns the case name, falling back to the case ID.
func (c *Case) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return "case " + c.CaseID
}

// Turn is a single message in a case conversation.
type Turn struct {
	// Role is the speaker of the turn, typically "user" or "assistant".
	Role string `json:"role"`
	// Message is the turn's text content.
	Message string `json:"message"`
	// Attachments optionally lists files referenced by the turn.
	Attachments []*Attachment `json:"attachments,omitempty"`
	// Metadata optionally carries structured data for the turn.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Attachment references a file attached to a conversation turn.
type Attachment struct {
	// Name is the file name of the attachment.
	Name string `json:"name"`
	// ContentType is the MIME type of the attachment.
	ContentType string `json:"contentType,omitempty"`
	// URI locates the attachment content.
	URI string `json:"uri,omitempty"`
}

// Update describes a partial dataset update. Nil fields are left unchanged.
type Update struct {
	// Name renames the dataset when non-nil.
	Name *string
	// Description replaces the description when non-nil.
	Description *string
}

// Manager manages dataset storage. Get, Update, Delete and the case
// operations accept either the dataset's stable ID or its name.
type Manager interface {
	// Create creates a dataset with the given unique name and assigns its ID.
	Create(ctx context.Context, name, description string) (*Dataset, error)
	// Get returns the dataset identified by name or ID.
	// Returns an error wrapping os.ErrNotExist if the dataset does not exist.
	Get(ctx context.Context, nameOrID string) (*Dataset, error)
	// List returns all datasets.
	List(ctx context.Context) ([]*Dataset, error)
	// Update applies a partial update to the dataset identified by name or ID.
	Update(ctx context.Context, nameOrID string, update *Update) (*Dataset, error)
	// Delete removes the dataset identified by name or ID and all its cases.
	Delete(ctx context.Context, nameOrID string) error
	// AddCase appends a case to the dataset, assigning its CaseID, and
	// returns the stored case.
	AddCase(ctx context.Context, nameOrID string, c *Case) (*Case, error)
	// GetCase returns one case of the dataset.
	GetCase(ctx context.Context, nameOrID, caseID string) (*Case, error)
	// UpdateCase replaces an existing case identified by its CaseID.
	UpdateCase(ctx context.Context, nameOrID string, c *Case) error
	// DeleteCase removes one case from the dataset.
	DeleteCase(ctx context.Context, nameOrID, caseID string) error
	// Close closes the manager and releases owned resources.
	Close() error
}
