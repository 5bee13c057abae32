/*
Copyright (c) 2026 testudo-ai
SPDX-License-Identifier: MIT
*/

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/testudo-ai/Testudo/internal/store"
)

var initdbCmd = &cobra.Command{
	Use:   "initdb",
	Short: "Create the database schema",
	Long: `Connect to Postgres and create the pgvector extension, tables, and
indexes. Safe to run repeatedly.

Examples:
  testudo initdb --database-url postgres://localhost:5432/web_testing`,
	RunE: runInitDB,
}

func init() {
	rootCmd.AddCommand(initdbCmd)
}

func runInitDB(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	pg, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pg.Close()

	if err := pg.InitSchema(ctx); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	fmt.Println("Schema ready.")
	return nil
}
