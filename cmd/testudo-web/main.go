/*
Copyright (c) 2026 testudo-ai
SPDX-License-Identifier: MIT
*/

/*
Testudo web service — HTTP front end for the web testing assistant.

Each chat request runs the full workflow (experience search, page scrape,
requirements, test code) and streams the steps back as SSE events. Runs and
artifacts are persisted to Postgres+pgvector and exposed read-only.
*/
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/testudo-ai/Testudo/internal/agent"
	"github.com/testudo-ai/Testudo/internal/config"
	"github.com/testudo-ai/Testudo/internal/embedding"
	"github.com/testudo-ai/Testudo/internal/scrape"
	"github.com/testudo-ai/Testudo/internal/server"
	"github.com/testudo-ai/Testudo/internal/session"
	"github.com/testudo-ai/Testudo/internal/store"
	"github.com/testudo-ai/Testudo/internal/summary"
)

func main() {
	var (
		addr         = flag.String("addr", "", "Listen address (overrides settings)")
		settingsPath = flag.String("settings", "", "Path to YAML settings file")
		initSchema   = flag.Bool("init-schema", false, "Create the database schema on startup")
		logLevel     = flag.String("log-level", "", "Log level (debug, info, warn, error)")
	)
	flag.Parse()

	cfg, err := config.Load(*settingsPath)
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("load configuration")
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Str("service", "testudo-web").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage is an enrichment layer: an unreachable database degrades the
	// service to non-persistent operation instead of failing startup.
	var st store.Store
	pg, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Warn().Err(err).Msg("database unavailable, running without persistence")
	} else {
		st = pg
		defer pg.Close()
		if *initSchema {
			if err := pg.InitSchema(ctx); err != nil {
				log.Fatal().Err(err).Msg("create schema")
			}
		}
	}

	var embedder embedding.Provider
	var completer summary.Completer
	var gen *summary.Generator
	if cfg.OpenAIKey != "" {
		oe, err := embedding.NewOpenAI(cfg.OpenAIKey,
			embedding.WithModel(cfg.EmbeddingModel),
			embedding.WithDimensions(cfg.EmbeddingDimensions))
		if err != nil {
			log.Fatal().Err(err).Msg("create embedding provider")
		}
		embedder = oe
		oc, err := summary.NewOpenAICompleter(cfg.OpenAIKey, "", "")
		if err != nil {
			log.Fatal().Err(err).Msg("create completion client")
		}
		completer = oc
		gen = summary.New(oc)
	} else {
		log.Warn().Msg("OPENAI_API_KEY not set, using deterministic local embeddings")
		embedder = embedding.NewFake()
	}

	rec := session.NewRecorder(st, embedder, gen, cfg.Model, log)
	scraper := scrape.NewFirecrawl(cfg.FirecrawlKey)
	if !scraper.Enabled() {
		log.Warn().Msg("FIRECRAWL_API_KEY not set, scraping disabled")
	}
	pipeline := agent.NewPipeline(rec, scraper, completer, log)

	api := server.New(pipeline, rec, cfg.APIKeys, server.NewRateLimiter(cfg.RateLimitPerMinute), log)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      api.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // Disabled for SSE streaming
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.ListenAddr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
