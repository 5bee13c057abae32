package classify

import (
	"strings"
	"testing"

	"github.com/testudo-ai/Testudo/internal/store"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Label
	}{
		{
			"functional requirements phrase",
			"Functional Requirements:\n- a\n- b\n- c",
			LabelRequirements,
		},
		{
			"bulleted list shape",
			"Page features\n- users can log in\n- users can reset passwords\n- users can log out\n",
			LabelRequirements,
		},
		{
			"gherkin scenario",
			"Scenario: login\nGiven a user\nWhen they log in\nThen they see a dashboard",
			LabelTestCode,
		},
		{
			"cypress code",
			"describe('Web Page Tests', () => { it('loads', () => { cy.visit('/'); }); });",
			LabelTestCode,
		},
		{
			"feature keyword case-insensitive",
			"FEATURE: checkout flow",
			LabelTestCode,
		},
		{
			"plain text",
			"the quick brown fox jumps over a lazy dog",
			LabelOther,
		},
		{
			"one bullet is not a list",
			"- single item\nno more bullets here\nthird line\nfourth line",
			LabelOther,
		},
		{
			"two bullets but too few newlines",
			"- a\n- b",
			LabelOther,
		},
		{
			"requirements wins over test keywords",
			"Functional requirements for login:\nScenario: something",
			LabelRequirements,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.text); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func result(text string, distance float64) store.SearchResult {
	return store.SearchResult{
		Artifact: store.Artifact{Text: text},
		Distance: distance,
	}
}

func TestPartitionDistanceFloor(t *testing.T) {
	results := []store.SearchResult{
		result("Scenario: login\nGiven a\nWhen b\nThen c", 0.3),
		result("Scenario: far away\nGiven x", 0.85),
		result("plain note", 0.95),
	}

	experience := Partition(results, ExperienceThreshold)
	if len(experience.TestCode) != 1 {
		t.Errorf("experience path kept %d test-code items, want 1", len(experience.TestCode))
	}
	if len(experience.Other) != 0 {
		t.Errorf("experience path kept %d other items, want 0", len(experience.Other))
	}

	artifact := Partition(results, ArtifactThreshold)
	if len(artifact.TestCode) != 2 {
		t.Errorf("artifact path kept %d test-code items, want 2", len(artifact.TestCode))
	}
	if len(artifact.Other) != 0 {
		t.Errorf("artifact path kept %d other items, want 0 (0.95 > 0.9)", len(artifact.Other))
	}
}

func TestPartitionPreservesOrder(t *testing.T) {
	results := []store.SearchResult{
		result("Scenario: first\nGiven a", 0.1),
		result("plain one", 0.2),
		result("Scenario: second\nGiven b", 0.3),
		result("plain two", 0.4),
	}
	b := Partition(results, ArtifactThreshold)
	if len(b.TestCode) != 2 || !strings.Contains(b.TestCode[0].Text, "first") {
		t.Errorf("test-code order not preserved: %+v", b.TestCode)
	}
	if len(b.Other) != 2 || b.Other[0].Text != "plain one" {
		t.Errorf("other order not preserved: %+v", b.Other)
	}
}

func TestFormatCaps(t *testing.T) {
	var results []store.SearchResult
	for i := 0; i < 5; i++ {
		results = append(results, result("Functional requirements doc "+strings.Repeat("r", i), 0.1))
		results = append(results, result("Scenario: case\nGiven x", 0.1))
		results = append(results, result("unclassified note", 0.1))
	}
	b := Partition(results, ArtifactThreshold)
	out := b.Format()
	lines := strings.Split(out, "\n")

	// 2 headers + 3 requirements + 3 test code; other is suppressed because
	// the output already has 8 lines.
	if len(lines) != 8 {
		t.Errorf("expected 8 lines, got %d:\n%s", len(lines), out)
	}
	if strings.Contains(out, "Other:") {
		t.Errorf("other bucket shown despite full output:\n%s", out)
	}
}

func TestFormatShowsOtherWhenShort(t *testing.T) {
	results := []store.SearchResult{
		result("Scenario: only one\nGiven x", 0.1),
		result("unclassified note a", 0.1),
		result("unclassified note b", 0.1),
		result("unclassified note c", 0.1),
	}
	b := Partition(results, ArtifactThreshold)
	out := b.Format()
	if !strings.Contains(out, "Other:") {
		t.Fatalf("expected other bucket in short output:\n%s", out)
	}
	if strings.Count(out, "unclassified note") != 2 {
		t.Errorf("expected other bucket capped at 2:\n%s", out)
	}
}

func TestFormatExperience(t *testing.T) {
	results := []store.SearchResult{
		result("REQUEST: test login\nACTION: scrape_url", 0.2),
		result("too far away", 0.81),
	}
	out := FormatExperience(results)
	if !strings.HasPrefix(out, "Found 1 experiences:") {
		t.Errorf("unexpected header: %q", out)
	}
	if !strings.Contains(out, "**1.** REQUEST: test login ACTION: scrape_url...") {
		t.Errorf("unexpected body: %q", out)
	}
}

func TestFormatExperienceEmpty(t *testing.T) {
	if out := FormatExperience([]store.SearchResult{result("x", 0.9)}); out != "" {
		t.Errorf("expected empty output, got %q", out)
	}
}
