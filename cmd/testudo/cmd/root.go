/*
Copyright (c) 2026 testudo-ai
SPDX-License-Identifier: MIT
*/

package cmd

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/testudo-ai/Testudo/internal/config"
	"github.com/testudo-ai/Testudo/internal/embedding"
	"github.com/testudo-ai/Testudo/internal/session"
	"github.com/testudo-ai/Testudo/internal/store"
	"github.com/testudo-ai/Testudo/internal/summary"
)

var (
	// settingsPath is the optional YAML settings file
	settingsPath string
	// databaseURL overrides the configured Postgres DSN
	databaseURL string
	// outputFormat is the output format (table, json)
	outputFormat string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "testudo",
	Short: "CLI for Testudo - conversational web testing assistant",
	Long: `Testudo scrapes web pages, derives functional requirements, and generates
Cypress test code, accumulating experience from past runs in Postgres+pgvector.

Examples:
  # Interactive chat session
  testudo chat

  # Search accumulated experience
  testudo search "login form tests"

  # List recent runs
  testudo runs

  # Create the database schema
  testudo initdb`,
	Version: "0.1.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "Path to YAML settings file")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Postgres DSN (overrides settings and DATABASE_URL)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table, json")
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(settingsPath)
	if err != nil {
		return cfg, err
	}
	if databaseURL != "" {
		cfg.DatabaseURL = databaseURL
	}
	return cfg, nil
}

func newLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

// openDeps wires the store, embedder and summarizer from config. Storage
// being unreachable is not fatal: the recorder degrades to a no-op and the
// conversation keeps working without persistence.
func openDeps(ctx context.Context, cfg config.Config, log zerolog.Logger) (*session.Recorder, summary.Completer, func()) {
	var st store.Store
	pg, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Warn().Err(err).Msg("database unavailable, continuing without persistence")
	} else {
		st = pg
	}
	cleanup := func() {
		if st != nil {
			st.Close()
		}
	}

	var embedder embedding.Provider
	var completer summary.Completer
	var gen *summary.Generator
	if cfg.OpenAIKey != "" {
		oe, err := embedding.NewOpenAI(cfg.OpenAIKey,
			embedding.WithModel(cfg.EmbeddingModel),
			embedding.WithDimensions(cfg.EmbeddingDimensions))
		if err == nil {
			embedder = oe
		}
		if oc, err := summary.NewOpenAICompleter(cfg.OpenAIKey, "", ""); err == nil {
			completer = oc
			gen = summary.New(oc)
		}
	}
	if embedder == nil {
		log.Warn().Msg("OPENAI_API_KEY not set, using deterministic local embeddings")
		embedder = embedding.NewFake()
	}

	rec := session.NewRecorder(st, embedder, gen, cfg.Model, log)
	return rec, completer, cleanup
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
