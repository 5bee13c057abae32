/*
Copyright (c) 2026 testudo-ai
SPDX-License-Identifier: MIT
*/

// Package scrape fetches web page content through the Firecrawl API.
package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultEndpoint = "https://api.firecrawl.dev"

// Firecrawl is a client for the Firecrawl scrape endpoint. A client with no
// API key is valid but disabled, so callers can degrade instead of failing
// at startup.
type Firecrawl struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// Option configures a Firecrawl client.
type Option func(*Firecrawl)

// WithEndpoint overrides the API endpoint.
func WithEndpoint(url string) Option {
	return func(f *Firecrawl) { f.endpoint = url }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Firecrawl) { f.client = c }
}

// NewFirecrawl creates a scrape client.
func NewFirecrawl(apiKey string, opts ...Option) *Firecrawl {
	f := &Firecrawl{
		endpoint: defaultEndpoint,
		apiKey:   apiKey,
		client:   &http.Client{},
	}
	for _, fn := range opts {
		fn(f)
	}
	return f
}

// Enabled reports whether the client has an API key.
func (f *Firecrawl) Enabled() bool { return f.apiKey != "" }

type scrapeRequest struct {
	URL     string   `json:"url"`
	Formats []string `json:"formats"`
}

type scrapeResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Markdown string `json:"markdown"`
		Metadata struct {
			Title string `json:"title"`
		} `json:"metadata"`
	} `json:"data"`
}

// Scrape fetches a page as markdown, headed by its title and URL.
func (f *Firecrawl) Scrape(ctx context.Context, url string) (string, error) {
	if !f.Enabled() {
		return "", fmt.Errorf("scraping disabled: no api key configured")
	}

	body, _ := json.Marshal(scrapeRequest{URL: url, Formats: []string{"markdown"}})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint+"/v1/scrape", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.apiKey)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("scrape %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("scrape %s failed: %s %s", url, resp.Status, string(b))
	}

	var sr scrapeResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return "", fmt.Errorf("decode scrape response: %w", err)
	}
	if !sr.Success || sr.Data.Markdown == "" {
		return "", fmt.Errorf("scrape %s returned no content", url)
	}

	title := sr.Data.Metadata.Title
	if title == "" {
		title = "N/A"
	}
	return fmt.Sprintf("**%s**\n%s\n\n%s", title, url, sr.Data.Markdown), nil
}
