package scrape

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestScrape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/scrape" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer fc-key" {
			t.Errorf("unexpected auth header: %q", got)
		}
		var req scrapeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.URL != "https://example.test" || len(req.Formats) != 1 || req.Formats[0] != "markdown" {
			t.Errorf("unexpected request body: %+v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"markdown": "# Welcome\nSome content.",
				"metadata": map[string]any{"title": "Example"},
			},
		})
	}))
	defer srv.Close()

	f := NewFirecrawl("fc-key", WithEndpoint(srv.URL))
	out, err := f.Scrape(context.Background(), "https://example.test")
	if err != nil {
		t.Fatalf("Scrape() = %v", err)
	}
	if !strings.HasPrefix(out, "**Example**\nhttps://example.test\n\n# Welcome") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestScrapeDisabled(t *testing.T) {
	f := NewFirecrawl("")
	if f.Enabled() {
		t.Error("client with no key should be disabled")
	}
	if _, err := f.Scrape(context.Background(), "https://example.test"); err == nil {
		t.Error("expected error from disabled client")
	}
}

func TestScrapeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer srv.Close()

	f := NewFirecrawl("fc-key", WithEndpoint(srv.URL))
	if _, err := f.Scrape(context.Background(), "https://example.test"); err == nil {
		t.Error("expected error for non-2xx response")
	}
}

func TestScrapeEmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false})
	}))
	defer srv.Close()

	f := NewFirecrawl("fc-key", WithEndpoint(srv.URL))
	if _, err := f.Scrape(context.Background(), "https://example.test"); err == nil {
		t.Error("expected error for empty scrape result")
	}
}
