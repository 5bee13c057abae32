/*
Copyright (c) 2026 testudo-ai
SPDX-License-Identifier: MIT
*/

// Package classify buckets retrieved artifacts for presentation. The rules
// are plain substring and shape heuristics, kept as an explicit ordered
// table so their nature stays visible and testable.
package classify

import (
	"fmt"
	"strings"

	"github.com/testudo-ai/Testudo/internal/store"
)

// Label is a presentation bucket for a retrieved artifact.
type Label string

const (
	LabelRequirements Label = "requirements"
	LabelTestCode     Label = "test code"
	LabelOther        Label = "other"
)

// Relevance floors: results farther than these cosine distances are dropped
// before classification. Larger distance means less similar.
const (
	ExperienceThreshold = 0.8 // general experience search
	ArtifactThreshold   = 0.9 // more permissive artifact search
)

// testCodeKeywords mark Gherkin and Cypress content.
var testCodeKeywords = []string{
	"scenario:", "given", "when", "then", "feature:", "describe(", "it(", "cy.",
}

// rules is the ordered predicate table; first match wins.
var rules = []struct {
	label Label
	match func(string) bool
}{
	{LabelRequirements, looksLikeRequirements},
	{LabelTestCode, looksLikeTestCode},
}

// Classify labels a single artifact text.
func Classify(text string) Label {
	lower := strings.ToLower(text)
	for _, r := range rules {
		if r.match(lower) {
			return r.label
		}
	}
	return LabelOther
}

// looksLikeRequirements matches the phrase "functional requirements" or a
// bulleted-list shape: at least two line-leading "- " markers and at least
// three newlines.
func looksLikeRequirements(lower string) bool {
	if strings.Contains(lower, "functional requirements") {
		return true
	}
	bullets := 0
	for _, line := range strings.Split(lower, "\n") {
		if strings.HasPrefix(strings.TrimLeft(line, " \t"), "- ") {
			bullets++
		}
	}
	return bullets >= 2 && strings.Count(lower, "\n") >= 3
}

func looksLikeTestCode(lower string) bool {
	for _, kw := range testCodeKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Buckets holds classified results; each slice preserves search order,
// closest first.
type Buckets struct {
	Requirements []store.SearchResult
	TestCode     []store.SearchResult
	Other        []store.SearchResult
}

// Partition drops results beyond maxDistance and buckets the rest.
func Partition(results []store.SearchResult, maxDistance float64) Buckets {
	var b Buckets
	for _, r := range results {
		if r.Distance > maxDistance {
			continue
		}
		switch Classify(r.Text) {
		case LabelRequirements:
			b.Requirements = append(b.Requirements, r)
		case LabelTestCode:
			b.TestCode = append(b.TestCode, r)
		default:
			b.Other = append(b.Other, r)
		}
	}
	return b
}

// Empty reports whether no results survived partitioning.
func (b Buckets) Empty() bool {
	return len(b.Requirements) == 0 && len(b.TestCode) == 0 && len(b.Other) == 0
}

// Presentation caps.
const (
	maxPerBucket   = 3
	maxOther       = 2
	otherLineLimit = 8
)

// Format renders the buckets for display: up to three requirements items,
// up to three test-code items, and up to two "other" items which are shown
// only when the output so far is under eight lines.
func (b Buckets) Format() string {
	var lines []string

	appendBucket := func(title string, items []store.SearchResult, max int) {
		if len(items) == 0 {
			return
		}
		if len(items) > max {
			items = items[:max]
		}
		lines = append(lines, title)
		for i, r := range items {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, oneLine(r.DisplaySummary(), 100)))
		}
	}

	appendBucket("Requirements:", b.Requirements, maxPerBucket)
	appendBucket("Test code:", b.TestCode, maxPerBucket)
	if len(lines) < otherLineLimit {
		appendBucket("Other:", b.Other, maxOther)
	}
	return strings.Join(lines, "\n")
}

// FormatExperience renders search hits the way the search_experience tool
// reports them: numbered summaries truncated to 100 characters.
func FormatExperience(results []store.SearchResult) string {
	var lines []string
	n := 0
	for _, r := range results {
		if r.Distance > ExperienceThreshold {
			continue
		}
		n++
		lines = append(lines, fmt.Sprintf("**%d.** %s...", n, oneLine(r.DisplaySummary(), 100)))
	}
	if len(lines) == 0 {
		return ""
	}
	return fmt.Sprintf("Found %d experiences:\n%s", len(lines), strings.Join(lines, "\n"))
}

func oneLine(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > max {
		return s[:max]
	}
	return s
}
