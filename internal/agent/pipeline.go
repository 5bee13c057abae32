/*
Copyright (c) 2026 testudo-ai
SPDX-License-Identifier: MIT
*/

package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/testudo-ai/Testudo/internal/classify"
	"github.com/testudo-ai/Testudo/internal/scrape"
	"github.com/testudo-ai/Testudo/internal/session"
	"github.com/testudo-ai/Testudo/internal/store"
	"github.com/testudo-ai/Testudo/internal/summary"
	"github.com/testudo-ai/Testudo/internal/testgen"
)

const (
	searchK = 5

	fallbackRequirements = "Functional Requirements:\n- Basic page functionality"
)

// Scraper is the page-content source the pipeline depends on.
type Scraper interface {
	Enabled() bool
	Scrape(ctx context.Context, url string) (string, error)
}

var _ Scraper = (*scrape.Firecrawl)(nil)

// StepEvent is one observable step of a pipeline run. Kind matches the
// artifact type recorded for the step, plus "system" for advisory notes.
type StepEvent struct {
	Kind    string `json:"kind"`
	Tool    string `json:"tool,omitempty"`
	Content string `json:"content"`
	Summary string `json:"summary,omitempty"`
}

// EmitFunc receives step events as the pipeline progresses.
type EmitFunc func(StepEvent)

// Pipeline executes the enhanced workflow for one query:
// search_experience -> scrape_url -> generate_requirements ->
// generate_test_code -> show_status. Every tool call and result is recorded
// through the session Recorder.
type Pipeline struct {
	recorder  *session.Recorder
	scraper   Scraper
	completer summary.Completer // used for requirements generation; may be nil
	log       zerolog.Logger
}

// NewPipeline wires a Pipeline. completer may be nil, in which case
// requirements fall back to a generic list.
func NewPipeline(r *session.Recorder, s Scraper, c summary.Completer, log zerolog.Logger) *Pipeline {
	return &Pipeline{recorder: r, scraper: s, completer: c, log: log}
}

// Run executes the workflow for query, emitting step events. format selects
// the test code flavor (gherkin or js). The run is always moved to a
// terminal status.
func (p *Pipeline) Run(ctx context.Context, query, format string, emit EmitFunc) error {
	if emit == nil {
		emit = func(StepEvent) {}
	}
	start := time.Now()
	runID := p.recorder.StartRun(ctx, query)
	url := session.ExtractURL(query)
	p.log.Info().Str("run_id", runID).Str("url", url).Msg("run started")

	var executed []string
	fail := func(err error) error {
		p.recorder.FinishRun(ctx, runID, store.RunStatusError, time.Since(start))
		return err
	}

	// search_experience
	p.recordCall(ctx, runID, query, url, ToolSearchExperience,
		fmt.Sprintf("query: %s", truncate(query, 200)), emit)
	experience := p.recorder.SearchExperience(ctx, query, searchK)
	expText := classify.FormatExperience(experience)
	if expText == "" {
		expText = fmt.Sprintf("No relevant experience for %q", truncate(query, 80))
	}
	p.recordResult(ctx, runID, query, url, expText, emit)
	executed = append(executed, ToolSearchExperience)

	// scrape_url
	var pageContent string
	switch {
	case url == session.DefaultURL:
		emit(StepEvent{Kind: "system", Content: "no URL in query, skipping scrape"})
	case p.scraper == nil || !p.scraper.Enabled():
		emit(StepEvent{Kind: "system", Content: "scraping disabled, analyzing the query text only"})
	default:
		p.recordCall(ctx, runID, query, url, ToolScrapeURL, fmt.Sprintf("url: %s", url), emit)
		content, err := p.scraper.Scrape(ctx, url)
		if err != nil {
			p.recordResult(ctx, runID, query, url, fmt.Sprintf("Failed to scrape %s: %v", url, err), emit)
			return fail(fmt.Errorf("scrape %s: %w", url, err))
		}
		pageContent = content
		p.recordResult(ctx, runID, query, url, content, emit)
		executed = append(executed, ToolScrapeURL)
	}

	// generate_requirements
	p.recordCall(ctx, runID, query, url, ToolGenerateRequirements, "analyzing page content", emit)
	requirements := p.generateRequirements(ctx, query, pageContent)
	p.recordResult(ctx, runID, query, url, requirements, emit)
	executed = append(executed, ToolGenerateRequirements)

	// generate_test_code
	p.recordCall(ctx, runID, query, url, ToolGenerateTestCode, fmt.Sprintf("format: %s", format), emit)
	testCode := testgen.Generate(requirements, format)
	p.recordResult(ctx, runID, query, url, testCode, emit)
	executed = append(executed, ToolGenerateTestCode)

	// show_status
	status := fmt.Sprintf("Workflow complete for %s.\nTools executed: %s.\nRun: %s",
		url, strings.Join(executed, ", "), runID)
	_, sum := p.recorder.SaveArtifact(ctx, runID, store.TypeAIResponse, status, url, query, store.TypeAIResponse)
	emit(StepEvent{Kind: store.TypeAIResponse, Tool: ToolShowStatus, Content: status, Summary: sum})

	p.recorder.FinishRun(ctx, runID, store.RunStatusCompleted, time.Since(start))
	p.log.Info().Str("run_id", runID).Dur("duration", time.Since(start)).Msg("run completed")
	return nil
}

// generateRequirements asks the model for a requirements list, falling back
// to a generic list when no model is configured or the call fails.
func (p *Pipeline) generateRequirements(ctx context.Context, query, pageContent string) string {
	if p.completer == nil {
		return fallbackRequirements
	}
	input := query
	if pageContent != "" {
		input = fmt.Sprintf("User request: %s\n\nPage content:\n%s", query, truncate(pageContent, 6000))
	}
	out, err := p.completer.Complete(ctx, requirementsSystemMessage, input)
	if err != nil || strings.TrimSpace(out) == "" {
		p.log.Warn().Err(err).Msg("requirements generation failed, using fallback")
		return fallbackRequirements
	}
	return out
}

func (p *Pipeline) recordCall(ctx context.Context, runID, query, url, tool, args string, emit EmitFunc) {
	info := fmt.Sprintf("Tool: %s, Args: %s", tool, truncate(args, 200))
	_, sum := p.recorder.SaveArtifact(ctx, runID, store.TypeToolCall, info, url, query, tool)
	emit(StepEvent{Kind: store.TypeToolCall, Tool: tool, Content: info, Summary: sum})
}

func (p *Pipeline) recordResult(ctx context.Context, runID, query, url, result string, emit EmitFunc) {
	_, sum := p.recorder.SaveArtifact(ctx, runID, store.TypeToolResult, result, url, query, store.TypeToolResult)
	emit(StepEvent{Kind: store.TypeToolResult, Content: result, Summary: sum})
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
