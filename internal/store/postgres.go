/*
Copyright (c) 2026 testudo-ai
SPDX-License-Identifier: MIT
*/

package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Postgres implements Store backed by PostgreSQL with the pgvector extension.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Store = (*Postgres)(nil)

// Open connects to the database at dsn and verifies it is reachable.
func Open(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &Postgres{pool: pool}, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

// Health checks the database is reachable.
func (p *Postgres) Health(ctx context.Context) error {
	if err := p.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// InitSchema creates the pgvector extension, tables and indexes if they do
// not exist. Safe to call on every startup.
func (p *Postgres) InitSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			url TEXT NOT NULL,
			start_ts TIMESTAMP DEFAULT NOW(),
			status TEXT DEFAULT 'running',
			user_id TEXT,
			model TEXT DEFAULT 'gpt-4o',
			duration INTEGER,
			description TEXT,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS artifacts (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL,
			type TEXT NOT NULL,
			text TEXT NOT NULL,
			embedding VECTOR(%d),
			summary TEXT,
			timestamp TIMESTAMP DEFAULT NOW(),
			url TEXT,
			CONSTRAINT fk_artifacts_run_id
				FOREIGN KEY (run_id) REFERENCES runs(run_id)
				ON DELETE CASCADE
		)`, EmbeddingDimension),
		`CREATE INDEX IF NOT EXISTS idx_runs_start_ts ON runs(start_ts)`,
		`CREATE INDEX IF NOT EXISTS idx_artifacts_run_id ON artifacts(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_artifacts_type ON artifacts(type)`,
	}
	for _, s := range stmts {
		if _, err := p.pool.Exec(ctx, s); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	// HNSW needs pgvector 0.5+; fall back to IVFFlat on older installs.
	_, err := p.pool.Exec(ctx,
		`CREATE INDEX IF NOT EXISTS idx_artifacts_embedding
		 ON artifacts USING hnsw (embedding vector_cosine_ops)`)
	if err != nil {
		_, err = p.pool.Exec(ctx,
			`CREATE INDEX IF NOT EXISTS idx_artifacts_embedding
			 ON artifacts USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)`)
		if err != nil {
			return fmt.Errorf("create embedding index: %w", err)
		}
	}
	return nil
}

// CreateRun implements Store.
func (p *Postgres) CreateRun(ctx context.Context, run Run) error {
	ctx, span := tracer.Start(ctx, "store.CreateRun",
		trace.WithAttributes(attribute.String("run.id", run.ID)))
	defer span.End()

	status := run.Status
	if status == "" {
		status = RunStatusRunning
	}
	_, err := p.pool.Exec(ctx,
		`INSERT INTO runs (run_id, url, description, user_id, model, status)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		run.ID, run.URL, run.Description, nullable(run.UserID), run.Model, status)
	if err != nil {
		storeErrors.WithLabelValues("create_run").Inc()
		return fmt.Errorf("insert run: %w", err)
	}
	runsTotal.WithLabelValues(status).Inc()
	return nil
}

// UpdateRunStatus implements Store.
func (p *Postgres) UpdateRunStatus(ctx context.Context, runID, status string, duration int) error {
	ctx, span := tracer.Start(ctx, "store.UpdateRunStatus",
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("run.status", status)))
	defer span.End()

	var tag interface{ RowsAffected() int64 }
	var err error
	if duration > 0 {
		tag, err = p.pool.Exec(ctx,
			`UPDATE runs SET status = $1, duration = $2, updated_at = NOW() WHERE run_id = $3`,
			status, duration, runID)
	} else {
		tag, err = p.pool.Exec(ctx,
			`UPDATE runs SET status = $1, updated_at = NOW() WHERE run_id = $2`,
			status, runID)
	}
	if err != nil {
		storeErrors.WithLabelValues("update_run_status").Inc()
		return fmt.Errorf("update run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	runsTotal.WithLabelValues(status).Inc()
	return nil
}

// SaveArtifact implements Store.
func (p *Postgres) SaveArtifact(ctx context.Context, a Artifact) error {
	ctx, span := tracer.Start(ctx, "store.SaveArtifact",
		trace.WithAttributes(
			attribute.String("artifact.id", a.ID),
			attribute.String("artifact.type", a.Type)))
	defer span.End()

	_, err := p.pool.Exec(ctx,
		`INSERT INTO artifacts (id, run_id, type, text, embedding, summary, url)
		 VALUES ($1, $2, $3, $4, $5::vector, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET
			text = EXCLUDED.text,
			embedding = EXCLUDED.embedding,
			summary = EXCLUDED.summary,
			url = EXCLUDED.url`,
		a.ID, a.RunID, a.Type, a.Text, vectorLiteral(a.Embedding), a.Summary, a.URL)
	if err != nil {
		storeErrors.WithLabelValues("save_artifact").Inc()
		return fmt.Errorf("upsert artifact: %w", err)
	}
	artifactsSaved.WithLabelValues(a.Type).Inc()
	return nil
}

// Search implements Store.
func (p *Postgres) Search(ctx context.Context, embedding []float32, k int) ([]SearchResult, error) {
	ctx, span := tracer.Start(ctx, "store.Search",
		trace.WithAttributes(attribute.Int("search.k", k)))
	defer span.End()

	start := time.Now()
	lit := vectorLiteral(embedding)
	rows, err := p.pool.Query(ctx,
		`SELECT id, run_id, type, text, summary, timestamp, url,
			embedding <=> $1::vector AS distance
		 FROM artifacts
		 ORDER BY embedding <=> $1::vector
		 LIMIT $2`,
		lit, k)
	if err != nil {
		storeErrors.WithLabelValues("search").Inc()
		return nil, fmt.Errorf("similarity query: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var summary, url *string
		var ts *time.Time
		if err := rows.Scan(&r.ID, &r.RunID, &r.Type, &r.Text, &summary, &ts, &url, &r.Distance); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		if summary != nil {
			r.Summary = *summary
		}
		if url != nil {
			r.URL = *url
		}
		if ts != nil {
			r.Timestamp = *ts
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		storeErrors.WithLabelValues("search").Inc()
		return nil, fmt.Errorf("read results: %w", err)
	}
	searchDuration.Observe(time.Since(start).Seconds())
	return results, nil
}

// GetContentByID implements Store.
func (p *Postgres) GetContentByID(ctx context.Context, id string) (string, error) {
	var text string
	err := p.pool.QueryRow(ctx, `SELECT text FROM artifacts WHERE id = $1`, id).Scan(&text)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		storeErrors.WithLabelValues("get_content").Inc()
		return "", fmt.Errorf("lookup artifact: %w", err)
	}
	return text, nil
}

// RecentRuns implements Store.
func (p *Postgres) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT run_id, url, start_ts, status, duration, description
		 FROM runs ORDER BY start_ts DESC LIMIT $1`, limit)
	if err != nil {
		storeErrors.WithLabelValues("recent_runs").Inc()
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var duration *int
		var description *string
		if err := rows.Scan(&r.ID, &r.URL, &r.StartTS, &r.Status, &duration, &description); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if duration != nil {
			r.Duration = *duration
		}
		if description != nil {
			r.Description = *description
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read runs: %w", err)
	}
	return runs, nil
}

// vectorLiteral renders an embedding as the pgvector input literal,
// a bracketed comma-separated list like [0.1,0.2,0.3].
func vectorLiteral(v []float32) string {
	var b strings.Builder
	b.Grow(len(v)*10 + 2)
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
