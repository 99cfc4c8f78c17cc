//
// Copyright (C) 2026 The simboba Authors. All rights reserved.
//
// simboba is licensed under the Apache License Version 2.0.
//
//

// Package inmemory provides an in-memory dataset manager implementation.
package inmemory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/simboba/simboba/dataset"
	"github.com/simboba/simboba/internal/clone"
)

// manager implements dataset.Manager with process-local storage.
// Useful for tests and embedding without a persistence directory.
type manager struct {
	mu       sync.RWMutex
	datasets map[string]*dataset.Dataset // keyed by dataset ID
}

// New creates an in-memory dataset manager.
func New() dataset.Manager {
	return &manager{datasets: make(map[string]*dataset.Dataset)}
}

// Create creates a dataset with the given unique name and assigns its ID.
func (m *manager) Create(_ context.Context, name, description string) (*dataset.Dataset, error) {
	if name == "" {
		return nil, errors.New("dataset name is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ds := range m.datasets {
		if ds.Name == name {
			return nil, fmt.Errorf("dataset %s already exists (id %s)", name, ds.ID)
		}
	}
	now := time.Now().UTC()
	ds := &dataset.Dataset{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Cases:       []*dataset.Case{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.datasets[ds.ID] = ds
	return copyDataset(ds)
}

// Get returns the dataset identified by name or ID.
func (m *manager) Get(_ context.Context, nameOrID string) (*dataset.Dataset, error) {
	if nameOrID == "" {
		return nil, errors.New("dataset name or id is empty")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ds, err := m.resolve(nameOrID)
	if err != nil {
		return nil, err
	}
	return copyDataset(ds)
}

// List returns all datasets sorted by name.
func (m *manager) List(_ context.Context) ([]*dataset.Dataset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	datasets := make([]*dataset.Dataset, 0, len(m.datasets))
	for _, ds := range m.datasets {
		copied, err := copyDataset(ds)
		if err != nil {
			return nil, err
		}
		datasets = append(datasets, copied)
	}
	sort.Slice(datasets, func(i, j int) bool { return datasets[i].Name < datasets[j].Name })
	return datasets, nil
}

// Update applies a partial update to the dataset identified by name or ID.
func (m *manager) Update(_ context.Context, nameOrID string, update *dataset.Update) (*dataset.Dataset, error) {
	if update == nil {
		return nil, errors.New("update is nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ds, err := m.resolve(nameOrID)
	if err != nil {
		return nil, err
	}
	if update.Name != nil && *update.Name != ds.Name {
		if *update.Name == "" {
			return nil, errors.New("dataset name is empty")
		}
		for _, other := range m.datasets {
			if other.ID != ds.ID && other.Name == *update.Name {
				return nil, fmt.Errorf("dataset %s already exists (id %s)", *update.Name, other.ID)
			}
		}
		ds.Name = *update.Name
	}
	if update.Description != nil {
		ds.Description = *update.Description
	}
	ds.UpdatedAt = time.Now().UTC()
	return copyDataset(ds)
}

// Delete removes the dataset identified by name or ID and all its cases.
func (m *manager) Delete(_ context.Context, nameOrID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ds, err := m.resolve(nameOrID)
	if err != nil {
		return err
	}
	delete(m.datasets, ds.ID)
	return nil
}

// AddCase appends a case to the dataset, assigning its CaseID.
func (m *manager) AddCase(_ context.Context, nameOrID string, c *dataset.Case) (*dataset.Case, error) {
	if c == nil {
		return nil, errors.New("case is nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ds, err := m.resolve(nameOrID)
	if err != nil {
		return nil, err
	}
	cloned, err := clone.Clone(c)
	if err != nil {
		return nil, fmt.Errorf("clone case: %w", err)
	}
	if cloned.CaseID == "" {
		cloned.CaseID = uuid.NewString()
	}
	for _, existing := range ds.Cases {
		if existing.CaseID == cloned.CaseID {
			return nil, fmt.Errorf("case %s.%s already exists", ds.ID, cloned.CaseID)
		}
	}
	now := time.Now().UTC()
	if cloned.CreatedAt.IsZero() {
		cloned.CreatedAt = now
	}
	cloned.UpdatedAt = now
	ds.Cases = append(ds.Cases, cloned)
	ds.UpdatedAt = now
	return clone.Clone(cloned)
}

// GetCase returns one case of the dataset.
func (m *manager) GetCase(_ context.Context, nameOrID, caseID string) (*dataset.Case, error) {
	if caseID == "" {
		return nil, errors.New("case id is empty")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ds, err := m.resolve(nameOrID)
	if err != nil {
		return nil, err
	}
	for _, c := range ds.Cases {
		if c.CaseID == caseID {
			return clone.Clone(c)
		}
	}
	return nil, fmt.Errorf("case %s.%s not found: %w", ds.ID, caseID, os.ErrNotExist)
}

// UpdateCase replaces an existing case identified by its CaseID.
func (m *manager) UpdateCase(_ context.Context, nameOrID string, c *dataset.Case) error {
	if c == nil {
		return errors.New("case is nil")
	}
	if c.CaseID == "" {
		return errors.New("case id is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ds, err := m.resolve(nameOrID)
	if err != nil {
		return err
	}
	for i, existing := range ds.Cases {
		if existing.CaseID != c.CaseID {
			continue
		}
		cloned, err := clone.Clone(c)
		if err != nil {
			return fmt.Errorf("clone case: %w", err)
		}
		cloned.CreatedAt = existing.CreatedAt
		cloned.UpdatedAt = time.Now().UTC()
		ds.Cases[i] = cloned
		ds.UpdatedAt = cloned.UpdatedAt
		return nil
	}
	return fmt.Errorf("case %s.%s not found: %w", ds.ID, c.CaseID, os.ErrNotExist)
}

// DeleteCase removes one case from the dataset.
func (m *manager) DeleteCase(_ context.Context, nameOrID, caseID string) error {
	if caseID == "" {
		return errors.New("case id is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ds, err := m.resolve(nameOrID)
	if err != nil {
		return err
	}
	for i, c := range ds.Cases {
		if c.CaseID == caseID {
			ds.Cases = append(ds.Cases[:i], ds.Cases[i+1:]...)
			ds.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return fmt.Errorf("case %s.%s not found: %w", ds.ID, caseID, os.ErrNotExist)
}

// Close closes the manager and releases owned resources.
func (m *manager) Close() error {
	return nil
}

// resolve finds a dataset by ID first, then by name. Caller holds the lock.
func (m *manager) resolve(nameOrID string) (*dataset.Dataset, error) {
	if ds, ok := m.datasets[nameOrID]; ok {
		return ds, nil
	}
	for _, ds := range m.datasets {
		if ds.Name == nameOrID {
			return ds, nil
		}
	}
	return nil, fmt.Errorf("dataset %s not found: %w", nameOrID, os.ErrNotExist)
}

func copyDataset(ds *dataset.Dataset) (*dataset.Dataset, error) {
	copied, err := clone.Clone(ds)
	if err != nil {
		return nil, fmt.Errorf("clone dataset: %w", err)
	}
	return copied, nil
}
