/*
Copyright (c) 2026 testudo-ai
SPDX-License-Identifier: MIT
*/

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/testudo-ai/Testudo/internal/agent"
	"github.com/testudo-ai/Testudo/internal/scrape"
	"github.com/testudo-ai/Testudo/internal/store"
)

var chatFormat string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive web testing session",
	Long: `Start an interactive session. Each query runs the full workflow:
search past experience, scrape the target page, derive functional
requirements, and generate test code.

Commands inside the session:
  history   show recent runs
  quit      exit the session

Examples:
  testudo chat
  testudo chat --format js`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVar(&chatFormat, "format", "gherkin", "Test code format: gherkin, js")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	log := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	rec, completer, cleanup := openDeps(ctx, cfg, log)
	defer cleanup()

	scraper := scrape.NewFirecrawl(cfg.FirecrawlKey)
	if !scraper.Enabled() {
		fmt.Println("Note: FIRECRAWL_API_KEY not set, pages will not be scraped.")
	}

	pipeline := agent.NewPipeline(rec, scraper, completer, log)

	fmt.Println("Testudo web testing assistant. Type a request, 'history', or 'quit'.")
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "quit", "exit":
			return nil
		case "history":
			printRecentRuns(ctx, rec, 10)
			continue
		}

		err := pipeline.Run(ctx, line, chatFormat, func(e agent.StepEvent) {
			printStep(e)
		})
		if err != nil {
			fmt.Printf("Workflow failed: %v\n", err)
		}
	}
}

func printStep(e agent.StepEvent) {
	switch e.Kind {
	case "system":
		fmt.Printf("  [%s]\n", e.Content)
	case store.TypeToolCall:
		fmt.Printf("\n-> %s\n", e.Tool)
	default:
		fmt.Println(indent(e.Content, "   "))
		if e.Summary != "" {
			fmt.Printf("   (saved: %s)\n", firstLine(e.Summary))
		}
	}
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = prefix + lines[i]
	}
	return strings.Join(lines, "\n")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
