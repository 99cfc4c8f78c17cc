//
// Copyright (C) 2026 The simboba Authors. All rights reserved.
//
// simboba is licensed under the Apache License Version 2.0.
//
//

// Package local provides a local file storage manager implementation for datasets.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/simboba/simboba/dataset"
	"github.com/simboba/simboba/internal/clone"
)

const (
	defaultTempFileSuffix = ".tmp"
	defaultDirPermission  = 0o755
	defaultFilePermission = 0o644
)

// manager implements dataset.Manager backed by the local filesystem.
// Each dataset is one JSON file named by its stable ID.
type manager struct {
	mu      sync.RWMutex
	baseDir string
	builder dataset.PathBuilder
}

// New creates a local file dataset manager.
func New(opt ...dataset.Option) dataset.Manager {
	opts := dataset.NewOptions(opt...)
	return &manager{
		baseDir: opts.BaseDir,
		builder: opts.PathBuilder,
	}
}

// Create creates a dataset with the given unique name and assigns its ID.
func (m *manager) Create(_ context.Context, name, description string) (*dataset.Dataset, error) {
	if name == "" {
		return nil, errors.New("dataset name is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, err := m.resolve(name); err == nil {
		return nil, fmt.Errorf("dataset %s already exists (id %s)", name, existing.ID)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("resolve dataset %s: %w", name, err)
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
	if err := m.store(ds); err != nil {
		return nil, fmt.Errorf("store dataset %s: %w", name, err)
	}
	return ds, nil
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
		return nil, fmt.Errorf("resolve dataset %s: %w", nameOrID, err)
	}
	return ds, nil
}

// List returns all datasets.
func (m *manager) List(_ context.Context) ([]*dataset.Dataset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loadAll()
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
		return nil, fmt.Errorf("resolve dataset %s: %w", nameOrID, err)
	}
	if update.Name != nil && *update.Name != ds.Name {
		if *update.Name == "" {
			return nil, errors.New("dataset name is empty")
		}
		if other, err := m.resolve(*update.Name); err == nil && other.ID != ds.ID {
			return nil, fmt.Errorf("dataset %s already exists (id %s)", *update.Name, other.ID)
		}
		ds.Name = *update.Name
	}
	if update.Description != nil {
		ds.Description = *update.Description
	}
	ds.UpdatedAt = time.Now().UTC()
	if err := m.store(ds); err != nil {
		return nil, fmt.Errorf("store dataset %s: %w", ds.ID, err)
	}
	return ds, nil
}

// Delete removes the dataset identified by name or ID and all its cases.
func (m *manager) Delete(_ context.Context, nameOrID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ds, err := m.resolve(nameOrID)
	if err != nil {
		return fmt.Errorf("resolve dataset %s: %w", nameOrID, err)
	}
	path := m.builder(m.baseDir, ds.ID)
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove file %s: %w", path, err)
	}
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
		return nil, fmt.Errorf("resolve dataset %s: %w", nameOrID, err)
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
	if err := m.store(ds); err != nil {
		return nil, fmt.Errorf("store dataset %s: %w", ds.ID, err)
	}
	return cloned, nil
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
		return nil, fmt.Errorf("resolve dataset %s: %w", nameOrID, err)
	}
	for _, c := range ds.Cases {
		if c.CaseID == caseID {
			return c, nil
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
		return fmt.Errorf("resolve dataset %s: %w", nameOrID, err)
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
		if err := m.store(ds); err != nil {
			return fmt.Errorf("store dataset %s: %w", ds.ID, err)
		}
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
		return fmt.Errorf("resolve dataset %s: %w", nameOrID, err)
	}
	for i, c := range ds.Cases {
		if c.CaseID == caseID {
			ds.Cases = append(ds.Cases[:i], ds.Cases[i+1:]...)
			ds.UpdatedAt = time.Now().UTC()
			if err := m.store(ds); err != nil {
				return fmt.Errorf("store dataset %s: %w", ds.ID, err)
			}
			return nil
		}
	}
	return fmt.Errorf("case %s.%s not found: %w", ds.ID, caseID, os.ErrNotExist)
}

// Close closes the manager and releases owned resources.
func (m *manager) Close() error {
	return nil
}

// resolve loads a dataset by ID first, then by scanning for its name.
func (m *manager) resolve(nameOrID string) (*dataset.Dataset, error) {
	if ds, err := m.load(nameOrID); err == nil {
		return ds, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	all, err := m.loadAll()
	if err != nil {
		return nil, err
	}
	for _, ds := range all {
		if ds.Name == nameOrID {
			return ds, nil
		}
	}
	return nil, fmt.Errorf("dataset %s not found: %w", nameOrID, os.ErrNotExist)
}

// load loads one dataset file by ID.
func (m *manager) load(datasetID string) (*dataset.Dataset, error) {
	path := m.builder(m.baseDir, datasetID)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	var ds dataset.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("unmarshal file %s: %w", path, err)
	}
	if ds.Cases == nil {
		ds.Cases = []*dataset.Case{}
	}
	return &ds, nil
}

// loadAll loads every dataset file under the base directory.
func (m *manager) loadAll() ([]*dataset.Dataset, error) {
	entries, err := os.ReadDir(m.baseDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []*dataset.Dataset{}, nil
		}
		return nil, fmt.Errorf("read dir %s: %w", m.baseDir, err)
	}
	datasets := make([]*dataset.Dataset, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), dataset.DefaultDatasetExtension) {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), dataset.DefaultDatasetExtension)
		ds, err := m.load(id)
		if err != nil {
			return nil, err
		}
		datasets = append(datasets, ds)
	}
	return datasets, nil
}

// store writes the dataset to the file system atomically.
func (m *manager) store(ds *dataset.Dataset) error {
	if ds == nil {
		return errors.New("dataset is nil")
	}
	path := m.builder(m.baseDir, ds.ID)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, defaultDirPermission); err != nil {
		return fmt.Errorf("mkdir all %s: %w", dir, err)
	}
	tmp := path + defaultTempFileSuffix
	file, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, defaultFilePermission)
	if err != nil {
		return fmt.Errorf("open file %s: %w", tmp, err)
	}
	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(ds); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode file %s: %w", tmp, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename file %s to %s: %w", tmp, path, err)
	}
	return nil
}
