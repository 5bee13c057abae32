/*
Copyright (c) 2026 testudo-ai
SPDX-License-Identifier: MIT
*/

// Package session records run lifecycle and artifacts around the agent
// conversation. Everything here is best-effort: storage is an enrichment
// layer that must never block the conversation, so failures are logged and
// converted to benign defaults instead of propagating.
package session

import (
	"context"
	"regexp"
	"time"

	"github.com/rs/zerolog"

	"github.com/testudo-ai/Testudo/internal/embedding"
	"github.com/testudo-ai/Testudo/internal/store"
	"github.com/testudo-ai/Testudo/internal/summary"
)

const (
	// DefaultURL stands in when the query carries no URL.
	DefaultURL = "unknown"
	// MaxDescriptionLength caps the run description taken from the query.
	MaxDescriptionLength = 100
)

var urlPattern = regexp.MustCompile(`https?://\S+`)

// ExtractURL pulls the first URL out of a query string.
func ExtractURL(query string) string {
	if m := urlPattern.FindString(query); m != "" {
		return m
	}
	return DefaultURL
}

// Recorder owns the run/artifact lifecycle for one process. The store may
// be nil, in which case every operation degrades to a no-op and the
// conversation proceeds without persistence.
type Recorder struct {
	store      store.Store
	embedder   embedding.Provider
	summarizer *summary.Generator
	model      string
	log        zerolog.Logger
}

// NewRecorder wires a Recorder. summarizer may be nil to disable smart
// summaries.
func NewRecorder(s store.Store, e embedding.Provider, g *summary.Generator, model string, log zerolog.Logger) *Recorder {
	return &Recorder{store: s, embedder: e, summarizer: g, model: model, log: log}
}

// StartRun creates a run row for the query and returns its identifier. The
// identifier is returned even when the insert fails, so callers can keep
// going without persistence.
func (r *Recorder) StartRun(ctx context.Context, query string) string {
	runID := store.NewRunID()
	if r.store == nil {
		return runID
	}
	run := store.Run{
		ID:          runID,
		URL:         ExtractURL(query),
		Description: truncate(query, MaxDescriptionLength),
		Model:       r.model,
		Status:      store.RunStatusRunning,
	}
	if err := r.store.CreateRun(ctx, run); err != nil {
		r.log.Warn().Err(err).Str("run_id", runID).Msg("run insert failed, continuing without persistence")
	}
	return runID
}

// FinishRun moves the run to a terminal status. Returns false on any
// storage failure or unknown run id.
func (r *Recorder) FinishRun(ctx context.Context, runID, status string, duration time.Duration) bool {
	if r.store == nil || runID == "" {
		return false
	}
	secs := int(duration / time.Second)
	if err := r.store.UpdateRunStatus(ctx, runID, status, secs); err != nil {
		r.log.Warn().Err(err).Str("run_id", runID).Str("status", status).Msg("run status update failed")
		return false
	}
	return true
}

// SaveArtifact embeds text, optionally generates a smart summary (when both
// userRequest and toolName are supplied), and upserts the artifact. Returns
// whether the save succeeded and the stored summary text.
func (r *Recorder) SaveArtifact(ctx context.Context, runID, artType, text, url, userRequest, toolName string) (bool, string) {
	if r.store == nil || runID == "" || text == "" {
		return false, ""
	}

	var summaryText string
	if r.summarizer != nil && userRequest != "" && toolName != "" {
		rec := r.summarizer.Generate(ctx, userRequest, toolName, text)
		summaryText = summary.FormatForStorage(rec)
	}

	vec, err := r.embedder.Embed(ctx, text)
	if err != nil {
		r.log.Warn().Err(err).Str("run_id", runID).Str("type", artType).Msg("embedding failed, artifact not saved")
		return false, ""
	}

	a := store.Artifact{
		ID:        store.ArtifactID(runID, artType, text),
		RunID:     runID,
		Type:      artType,
		Text:      text,
		Embedding: vec,
		Summary:   summaryText,
		URL:       url,
	}
	if err := r.store.SaveArtifact(ctx, a); err != nil {
		r.log.Warn().Err(err).Str("artifact_id", a.ID).Msg("artifact save failed")
		return false, ""
	}
	return true, summaryText
}

// SearchExperience embeds the query and returns the k nearest artifacts,
// or an empty slice on any failure.
func (r *Recorder) SearchExperience(ctx context.Context, query string, k int) []store.SearchResult {
	if r.store == nil {
		return nil
	}
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		r.log.Warn().Err(err).Msg("query embedding failed")
		return nil
	}
	results, err := r.store.Search(ctx, vec, k)
	if err != nil {
		r.log.Warn().Err(err).Msg("similarity search failed")
		return nil
	}
	return results
}

// RecentRuns lists the latest runs, empty on failure.
func (r *Recorder) RecentRuns(ctx context.Context, limit int) []store.Run {
	if r.store == nil {
		return nil
	}
	runs, err := r.store.RecentRuns(ctx, limit)
	if err != nil {
		r.log.Warn().Err(err).Msg("recent runs query failed")
		return nil
	}
	return runs
}

// Health reports whether the backing storage is reachable.
func (r *Recorder) Health(ctx context.Context) error {
	if r.store == nil {
		return store.ErrUnavailable
	}
	return r.store.Health(ctx)
}

// ContentByID looks up one artifact's raw text.
func (r *Recorder) ContentByID(ctx context.Context, id string) (string, bool) {
	if r.store == nil {
		return "", false
	}
	text, err := r.store.GetContentByID(ctx, id)
	if err != nil {
		return "", false
	}
	return text, true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
