package testgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequirements(t *testing.T) {
	input := "Functional Requirements:\n- users can log in\n  - form validates input\nnot a bullet\n- site navigation works"
	reqs := ParseRequirements(input)
	require.Len(t, reqs, 3)
	assert.Equal(t, "users can log in", reqs[0])
	assert.Equal(t, "form validates input", reqs[1])
	assert.Equal(t, "site navigation works", reqs[2])
}

func TestParseRequirementsEmpty(t *testing.T) {
	assert.Empty(t, ParseRequirements("no bullets here at all"))
}

func TestTemplateType(t *testing.T) {
	tests := []struct {
		requirement string
		want        string
	}{
		{"users can Login with email", "login"},
		{"the contact form validates input", "form"},
		{"main navigation works", "navigation"},
		{"page renders a chart", "default"},
	}
	for _, tt := range tests {
		t.Run(tt.requirement, func(t *testing.T) {
			assert.Equal(t, tt.want, templateType(tt.requirement))
		})
	}
}

func TestGherkin(t *testing.T) {
	out := Gherkin("- users can login\n- page shows a dashboard")
	assert.True(t, strings.HasPrefix(out, "Feature: Web Page Testing\n"))
	assert.Contains(t, out, "Scenario: users can login")
	assert.Contains(t, out, "Given I am on the login page")
	assert.Contains(t, out, "Scenario: page shows a dashboard")
	assert.Contains(t, out, "Given I am on the page")
	assert.Equal(t, 2, strings.Count(out, "Scenario:"))
}

func TestGherkinNoBullets(t *testing.T) {
	out := Gherkin("freeform text without bullets")
	assert.Contains(t, out, "Scenario: Basic page functionality")
}

func TestCypress(t *testing.T) {
	out := Cypress("- users can login\n- form accepts input")
	assert.True(t, strings.HasPrefix(out, "describe('Web Page Tests', () => {"))
	assert.True(t, strings.HasSuffix(out, "\n});"))
	assert.Contains(t, out, "it('users can login'")
	assert.Contains(t, out, "cy.get('[data-cy=\"username\"]')")
	assert.Contains(t, out, "it('form accepts input'")
	assert.Contains(t, out, "cy.contains('Success')")
}

func TestCypressNoBullets(t *testing.T) {
	out := Cypress("")
	assert.Contains(t, out, "it('should load the page successfully'")
	assert.Contains(t, out, "cy.get('body').should('be.visible')")
}

func TestGenerate(t *testing.T) {
	reqs := "- users can login"
	assert.Contains(t, Generate(reqs, FormatGherkin), "Scenario:")
	assert.Contains(t, Generate(reqs, FormatJS), "describe(")
	// Unknown formats fall back to Gherkin.
	assert.Contains(t, Generate(reqs, "yaml"), "Scenario:")
}
