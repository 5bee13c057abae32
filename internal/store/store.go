/*
Copyright (c) 2026 testudo-ai
SPDX-License-Identifier: MIT
*/

// Package store persists testing runs and their artifacts, and retrieves
// artifacts by vector similarity.
package store

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EmbeddingDimension is the fixed length of artifact embedding vectors.
const EmbeddingDimension = 512

// Run statuses. A run starts as running and moves once to a terminal status.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusError     = "error"
)

// Artifact types recorded during a run.
const (
	TypeToolCall   = "tool_call"
	TypeToolResult = "tool_result"
	TypeAIResponse = "ai_response"
)

// ErrNotFound indicates a point lookup matched no row.
var ErrNotFound = errors.New("not found")

// ErrUnavailable indicates the backing storage could not be reached.
var ErrUnavailable = errors.New("storage unavailable")

// Run is one user-initiated testing session scoped to a target URL.
type Run struct {
	ID          string
	URL         string
	StartTS     time.Time
	Status      string
	UserID      string
	Model       string
	Duration    int // seconds, 0 when not recorded
	Description string
}

// Artifact is one recorded content unit generated during a run: a tool-call
// description, a tool result, or AI text. Its ID is a deterministic function
// of (run id, type, content), so re-saving identical content is an upsert
// that converges to a single row.
type Artifact struct {
	ID        string
	RunID     string
	Type      string
	Text      string
	Embedding []float32
	Summary   string
	Timestamp time.Time
	URL       string
}

// SearchResult is a single similarity hit. Distance is cosine distance:
// smaller means more similar.
type SearchResult struct {
	Artifact
	Distance float64
}

// DisplaySummary returns the stored summary, falling back to the first 200
// characters of the raw text.
func (r SearchResult) DisplaySummary() string {
	if r.Summary != "" {
		return r.Summary
	}
	return truncate(r.Text, 200)
}

// Store is the persistence interface. Implementations return typed errors
// (ErrNotFound, ErrUnavailable) rather than swallowing failures; the
// fail-open policy the conversation flow relies on lives in session.Recorder.
type Store interface {
	// CreateRun inserts a new run row with status running.
	CreateRun(ctx context.Context, run Run) error

	// UpdateRunStatus moves a run to a new status, optionally recording its
	// duration in seconds. Returns ErrNotFound if the run does not exist.
	UpdateRunStatus(ctx context.Context, runID, status string, duration int) error

	// SaveArtifact upserts an artifact row keyed by its deterministic ID.
	// On conflict the text, embedding, summary and url are overwritten.
	SaveArtifact(ctx context.Context, a Artifact) error

	// Search returns the k artifacts nearest to the query embedding,
	// ordered by ascending cosine distance.
	Search(ctx context.Context, embedding []float32, k int) ([]SearchResult, error)

	// GetContentByID returns the raw text of a single artifact.
	GetContentByID(ctx context.Context, id string) (string, error)

	// RecentRuns returns up to limit runs, newest start time first.
	RecentRuns(ctx context.Context, limit int) ([]Run, error)

	// Health checks the storage backend is reachable.
	Health(ctx context.Context) error

	// Close releases storage resources.
	Close()
}

// NewRunID generates a fresh run identifier.
func NewRunID() string {
	return "run_" + uuid.NewString()
}

// ArtifactID derives the deterministic artifact identifier
// {run_id}_{type}_{first 8 hex chars of MD5(text)}. The short hash keeps ids
// readable; a collision between different texts under the same run and type
// is treated as an update, last write wins.
func ArtifactID(runID, artType, text string) string {
	sum := md5.Sum([]byte(text))
	return fmt.Sprintf("%s_%s_%s", runID, artType, hex.EncodeToString(sum[:])[:8])
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
