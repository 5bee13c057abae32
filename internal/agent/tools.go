/*
Copyright (c) 2026 testudo-ai
SPDX-License-Identifier: MIT
*/

// Package agent wires the web-testing workflow: the tool surface, the system
// prompt, and a fixed pipeline that runs the tools in their documented order
// while recording every step as an artifact. The reasoning loop itself is
// deliberately not implemented here; the workflow order is declarative.
package agent

// Tool names, in workflow order.
const (
	ToolSearchExperience     = "search_experience"
	ToolScrapeURL            = "scrape_url"
	ToolGenerateRequirements = "generate_requirements"
	ToolGenerateTestCode     = "generate_test_code"
	ToolShowStatus           = "show_status"
)

// Tool describes one agent tool for listing and prompt construction.
type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Tools is the fixed tool surface of the agent.
var Tools = []Tool{
	{ToolSearchExperience, "Search historical experiences, test cases and proven testing patterns"},
	{ToolScrapeURL, "Scrape web page content"},
	{ToolGenerateRequirements, "Generate functional requirements from scraped page content"},
	{ToolGenerateTestCode, "Generate test code (gherkin or js format) from requirements"},
	{ToolShowStatus, "Display workflow status"},
}
