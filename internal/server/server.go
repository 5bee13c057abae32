/*
Copyright (c) 2026 testudo-ai
SPDX-License-Identifier: MIT
*/

// Package server exposes the web testing assistant over HTTP: a streaming
// chat endpoint plus read-only views of runs and stored artifacts.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/testudo-ai/Testudo/internal/agent"
	"github.com/testudo-ai/Testudo/internal/classify"
	"github.com/testudo-ai/Testudo/internal/session"
	"github.com/testudo-ai/Testudo/internal/store"
)

// ErrorDetail carries a machine-readable error.
type ErrorDetail struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ChatRequest is the body of POST /api/v1/chat.
type ChatRequest struct {
	Query  string `json:"query"`
	Format string `json:"format,omitempty"`
}

// RunView is one entry of GET /api/v1/runs.
type RunView struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
	Duration  int       `json:"duration_seconds,omitempty"`
}

// ArtifactView is the body of GET /api/v1/artifacts/{id}.
type ArtifactView struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// SearchResponse is the body of GET /api/v1/search.
type SearchResponse struct {
	Query        string       `json:"query"`
	Requirements []ResultView `json:"requirements"`
	TestCode     []ResultView `json:"test_code"`
	Other        []ResultView `json:"other"`
}

// ResultView is one classified search hit.
type ResultView struct {
	ID       string  `json:"id"`
	Summary  string  `json:"summary"`
	Distance float64 `json:"distance"`
}

// Server serves the HTTP API.
type Server struct {
	pipeline *agent.Pipeline
	recorder *session.Recorder
	apiKeys  map[string]bool
	limiter  *RateLimiter
	log      zerolog.Logger
}

// New wires a Server. apiKeys may be empty, which disables authentication
// (local development mode).
func New(p *agent.Pipeline, rec *session.Recorder, apiKeys []string, limiter *RateLimiter, log zerolog.Logger) *Server {
	keys := make(map[string]bool, len(apiKeys))
	for _, k := range apiKeys {
		keys[k] = true
	}
	return &Server{pipeline: p, recorder: rec, apiKeys: keys, limiter: limiter, log: log}
}

// Routes returns the handler for the full API surface.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/chat", s.Chat)
	mux.HandleFunc("/api/v1/runs", s.Runs)
	mux.HandleFunc("/api/v1/artifacts/", s.Artifact)
	mux.HandleFunc("/api/v1/search", s.Search)
	mux.HandleFunc("/api/v1/tools", s.Tools)
	mux.HandleFunc("/healthz", s.Healthz)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// authenticate validates the Bearer token against the configured static keys.
func (s *Server) authenticate(r *http.Request) error {
	if len(s.apiKeys) == 0 {
		return nil
	}
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return fmt.Errorf("missing Authorization header")
	}
	if !strings.HasPrefix(auth, "Bearer ") {
		return fmt.Errorf("invalid Authorization format, expected Bearer token")
	}
	if !s.apiKeys[strings.TrimPrefix(auth, "Bearer ")] {
		return fmt.Errorf("invalid API key")
	}
	return nil
}

// guard runs the auth and rate-limit checks shared by all API handlers.
func (s *Server) guard(w http.ResponseWriter, r *http.Request) bool {
	if err := s.authenticate(r); err != nil {
		writeError(w, http.StatusUnauthorized, err.Error(), "invalid_api_key")
		return false
	}
	if s.limiter != nil && !s.limiter.Allow(ClientKey(r)) {
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded", "rate_limit_exceeded")
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, msg, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: ErrorDetail{Message: msg, Code: code}})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// Chat handles POST /api/v1/chat. It runs the full workflow for the query
// and streams each step as an SSE data event, terminated by [DONE].
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "method_not_allowed")
		return
	}
	if !s.guard(w, r) {
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), "invalid_body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required", "missing_query")
		return
	}
	format := req.Format
	if format == "" {
		format = "gherkin"
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported", "no_flusher")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	s.log.Info().Str("query", req.Query).Str("format", format).Msg("chat request")

	err := s.pipeline.Run(r.Context(), req.Query, format, func(e agent.StepEvent) {
		data, merr := json.Marshal(e)
		if merr != nil {
			return
		}
		_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	})
	if err != nil {
		ev := agent.StepEvent{Kind: "system", Content: "workflow failed: " + err.Error()}
		data, _ := json.Marshal(ev)
		_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}

	_, _ = fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

// Runs handles GET /api/v1/runs, newest first.
func (s *Server) Runs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "method_not_allowed")
		return
	}
	if !s.guard(w, r) {
		return
	}

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	runs := s.recorder.RecentRuns(r.Context(), limit)
	views := make([]RunView, 0, len(runs))
	for _, run := range runs {
		views = append(views, RunView{
			ID:        run.ID,
			URL:       run.URL,
			Status:    run.Status,
			StartedAt: run.StartTS,
			Duration:  run.Duration,
		})
	}
	writeJSON(w, views)
}

// Artifact handles GET /api/v1/artifacts/{id}, returning the full stored
// text of one artifact.
func (s *Server) Artifact(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "method_not_allowed")
		return
	}
	if !s.guard(w, r) {
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/artifacts/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "invalid path: expected /api/v1/artifacts/{id}", "bad_path")
		return
	}

	content, ok := s.recorder.ContentByID(r.Context(), id)
	if !ok {
		writeError(w, http.StatusNotFound, "artifact not found: "+id, "artifact_not_found")
		return
	}
	writeJSON(w, ArtifactView{ID: id, Content: content})
}

// Search handles GET /api/v1/search?q=...&k=... and returns hits classified
// into requirements, test code, and other buckets.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "method_not_allowed")
		return
	}
	if !s.guard(w, r) {
		return
	}

	query := r.URL.Query().Get("q")
	if strings.TrimSpace(query) == "" {
		writeError(w, http.StatusBadRequest, "q is required", "missing_query")
		return
	}
	k := 5
	if v := r.URL.Query().Get("k"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 20 {
			k = n
		}
	}

	results := s.recorder.SearchExperience(r.Context(), query, k)
	buckets := classify.Partition(results, classify.ArtifactThreshold)

	resp := SearchResponse{
		Query:        query,
		Requirements: toViews(buckets.Requirements),
		TestCode:     toViews(buckets.TestCode),
		Other:        toViews(buckets.Other),
	}
	writeJSON(w, resp)
}

func toViews(results []store.SearchResult) []ResultView {
	views := make([]ResultView, 0, len(results))
	for _, res := range results {
		views = append(views, ResultView{
			ID:       res.ID,
			Summary:  res.DisplaySummary(),
			Distance: res.Distance,
		})
	}
	return views
}

// Tools handles GET /api/v1/tools, listing the workflow tools.
func (s *Server) Tools(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "method_not_allowed")
		return
	}
	if !s.guard(w, r) {
		return
	}
	writeJSON(w, agent.Tools)
}

// Healthz reports liveness plus storage reachability. Storage being down
// degrades the report but keeps the endpoint at 200, matching the
// fail-open posture of the rest of the service.
func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok", "storage": "ok"}
	if err := s.recorder.Health(r.Context()); err != nil {
		status["storage"] = "unavailable"
	}
	writeJSON(w, status)
}
