/*
Copyright (c) 2026 testudo-ai
SPDX-License-Identifier: MIT
*/

// Package testgen turns bulleted functional requirements into Gherkin
// scenarios and Cypress test skeletons.
package testgen

import "strings"

// gherkinTemplates are keyed by the requirement keyword they specialize.
var gherkinTemplates = map[string]string{
	"login": `
Scenario: {requirement}
  Given I am on the login page
  When I enter valid credentials
  And I click the login button
  Then I should be logged in successfully
`,
	"form": `
Scenario: {requirement}
  Given I am on the form page
  When I fill in all required fields
  And I submit the form
  Then I should see a success message
`,
	"navigation": `
Scenario: {requirement}
  Given I am on the homepage
  When I click on navigation links
  Then I should navigate to the correct pages
`,
	"default": `
Scenario: {requirement}
  Given I am on the page
  When I interact with the element
  Then I should see the expected behavior
`,
}

// templateKeywords are checked in order against each requirement.
var templateKeywords = []string{"login", "form", "navigation"}

// ParseRequirements extracts requirement lines from a bulleted list,
// stripping the leading "- " marker.
func ParseRequirements(requirements string) []string {
	var out []string
	for _, line := range strings.Split(requirements, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "- ") {
			out = append(out, line[2:])
		}
	}
	return out
}

// templateType picks the template keyed by the first keyword found in the
// requirement, falling back to the default template.
func templateType(requirement string) string {
	lower := strings.ToLower(requirement)
	for _, kw := range templateKeywords {
		if strings.Contains(lower, kw) {
			return kw
		}
	}
	return "default"
}

// Gherkin renders a Feature with one scenario per requirement bullet. When
// no bullets are present a single generic scenario is produced.
func Gherkin(requirements string) string {
	reqs := ParseRequirements(requirements)
	if len(reqs) == 0 {
		reqs = []string{"Basic page functionality"}
	}
	scenarios := make([]string, 0, len(reqs))
	for _, req := range reqs {
		tmpl := gherkinTemplates[templateType(req)]
		scenarios = append(scenarios, strings.ReplaceAll(tmpl, "{requirement}", req))
	}
	return "Feature: Web Page Testing\n" + strings.Join(scenarios, "\n")
}
