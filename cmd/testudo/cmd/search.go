/*
Copyright (c) 2026 testudo-ai
SPDX-License-Identifier: MIT
*/

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/testudo-ai/Testudo/internal/classify"
)

var searchK int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search accumulated testing experience",
	Long: `Search past run artifacts by semantic similarity and show the hits
classified into requirements, test code, and other.

Examples:
  testudo search "login form tests"
  testudo search "checkout validation" -k 10`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVarP(&searchK, "top-k", "k", 5, "Number of nearest artifacts to retrieve")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	log := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rec, _, cleanup := openDeps(ctx, cfg, log)
	defer cleanup()

	query := strings.Join(args, " ")
	results := rec.SearchExperience(ctx, query, searchK)
	if len(results) == 0 {
		fmt.Println("No similar artifacts found.")
		return nil
	}

	buckets := classify.Partition(results, classify.ArtifactThreshold)
	if outputFormat == "json" {
		return printJSON(buckets)
	}

	out := buckets.Format()
	if out == "" {
		fmt.Println("No similar artifacts within the distance threshold.")
		return nil
	}
	fmt.Println(out)
	return nil
}
