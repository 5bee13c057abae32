/*
Copyright (c) 2026 testudo-ai
SPDX-License-Identifier: MIT
*/

package store

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"
)

// Memory is an in-memory Store. It backs tests and degraded DB-less runs,
// computing exact cosine distance instead of an approximate index.
type Memory struct {
	mu        sync.Mutex
	runs      map[string]*Run
	artifacts map[string]*Artifact
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-memory Store.
func NewMemory() *Memory {
	return &Memory{
		runs:      make(map[string]*Run),
		artifacts: make(map[string]*Artifact),
	}
}

// CreateRun implements Store.
func (m *Memory) CreateRun(_ context.Context, run Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if run.Status == "" {
		run.Status = RunStatusRunning
	}
	if run.StartTS.IsZero() {
		run.StartTS = time.Now()
	}
	m.runs[run.ID] = &run
	runsTotal.WithLabelValues(run.Status).Inc()
	return nil
}

// UpdateRunStatus implements Store.
func (m *Memory) UpdateRunStatus(_ context.Context, runID, status string, duration int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[runID]
	if !ok {
		return ErrNotFound
	}
	r.Status = status
	if duration > 0 {
		r.Duration = duration
	}
	runsTotal.WithLabelValues(status).Inc()
	return nil
}

// SaveArtifact implements Store.
func (m *Memory) SaveArtifact(_ context.Context, a Artifact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now()
	}
	if prev, ok := m.artifacts[a.ID]; ok {
		// Upsert path: overwrite content, keep the original timestamp.
		a.Timestamp = prev.Timestamp
	}
	m.artifacts[a.ID] = &a
	artifactsSaved.WithLabelValues(a.Type).Inc()
	return nil
}

// Search implements Store.
func (m *Memory) Search(_ context.Context, embedding []float32, k int) ([]SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	results := make([]SearchResult, 0, len(m.artifacts))
	for _, a := range m.artifacts {
		results = append(results, SearchResult{
			Artifact: *a,
			Distance: cosineDistance(embedding, a.Embedding),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// GetContentByID implements Store.
func (m *Memory) GetContentByID(_ context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.artifacts[id]
	if !ok {
		return "", ErrNotFound
	}
	return a.Text, nil
}

// RecentRuns implements Store.
func (m *Memory) RecentRuns(_ context.Context, limit int) ([]Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	runs := make([]Run, 0, len(m.runs))
	for _, r := range m.runs {
		runs = append(runs, *r)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartTS.After(runs[j].StartTS)
	})
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// Health implements Store.
func (m *Memory) Health(context.Context) error { return nil }

// Close implements Store.
func (m *Memory) Close() {}

// ArtifactCount returns the number of stored artifacts.
func (m *Memory) ArtifactCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.artifacts)
}

// cosineDistance is 1 - cosine similarity, matching pgvector's <=> operator.
// Mismatched or zero-magnitude vectors get the maximum distance.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 2
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 2
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}
