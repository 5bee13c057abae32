/*
Copyright (c) 2026 testudo-ai
SPDX-License-Identifier: MIT
*/

package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/testudo-ai/Testudo/internal/session"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent testing runs",
	Long: `List recent testing runs, newest first.

Examples:
  # Show the last 10 runs
  testudo runs

  # Show more, as JSON
  testudo runs --limit 50 -o json`,
	RunE: runRuns,
}

func init() {
	rootCmd.AddCommand(runsCmd)

	runsCmd.Flags().IntVar(&runsLimit, "limit", 10, "Maximum number of runs to list")
}

func runRuns(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	log := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rec, _, cleanup := openDeps(ctx, cfg, log)
	defer cleanup()

	if outputFormat == "json" {
		return printJSON(rec.RecentRuns(ctx, runsLimit))
	}
	printRecentRuns(ctx, rec, runsLimit)
	return nil
}

func printRecentRuns(ctx context.Context, rec *session.Recorder, limit int) {
	runs := rec.RecentRuns(ctx, limit)
	if len(runs) == 0 {
		fmt.Println("No runs found.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "RUN\tURL\tSTATUS\tAGE\tDURATION\n")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.URL, r.Status, formatRunAge(r.StartTS), formatDuration(r.Duration))
	}
	_ = w.Flush()
}

func formatRunAge(t time.Time) string {
	d := time.Since(t)
	if d.Hours() >= 24 {
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
	if d.Hours() >= 1 {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	if d.Minutes() >= 1 {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	return fmt.Sprintf("%ds", int(d.Seconds()))
}

func formatDuration(secs int) string {
	if secs <= 0 {
		return "-"
	}
	return (time.Duration(secs) * time.Second).String()
}
