/*
Copyright (c) 2026 testudo-ai
SPDX-License-Identifier: MIT
*/

package testgen

import (
	"fmt"
	"strings"
)

var cypressTemplates = map[string]string{
	"login": `
  it('{requirement}', () => {
    cy.visit('/login');
    cy.get('[data-cy="username"]').type('testuser');
    cy.get('[data-cy="password"]').type('password123');
    cy.get('[data-cy="login-button"]').click();
    cy.url().should('include', '/dashboard');
  });`,
	"form": `
  it('{requirement}', () => {
    cy.visit('/form');
    cy.get('input[type="text"]').first().type('Test Data');
    cy.get('button[type="submit"]').click();
    cy.contains('Success').should('be.visible');
  });`,
	"navigation": `
  it('{requirement}', () => {
    cy.visit('/');
    cy.get('nav a').each(($link) => {
      cy.wrap($link).click();
      cy.url().should('not.equal', 'about:blank');
      cy.go('back');
    });
  });`,
	"default": `
  it('{requirement}', () => {
    cy.visit('/');
    cy.get('body').should('be.visible');
    // Add specific test steps for: {requirement}
  });`,
}

// Cypress renders a describe block with one it() per requirement bullet.
func Cypress(requirements string) string {
	reqs := ParseRequirements(requirements)
	if len(reqs) == 0 {
		reqs = []string{"should load the page successfully"}
	}
	cases := make([]string, 0, len(reqs))
	for _, req := range reqs {
		tmpl := cypressTemplates[templateType(req)]
		cases = append(cases, strings.ReplaceAll(tmpl, "{requirement}", req))
	}
	return fmt.Sprintf("describe('Web Page Tests', () => {%s\n});", strings.Join(cases, ""))
}

// Formats supported by Generate.
const (
	FormatGherkin = "gherkin"
	FormatJS      = "js"
)

// Generate renders test code in the requested format, defaulting to Gherkin
// for unknown format names.
func Generate(requirements, format string) string {
	if format == FormatJS {
		return Cypress(requirements)
	}
	return Gherkin(requirements)
}
