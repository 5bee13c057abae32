package embedding

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewOpenAIRequiresKey(t *testing.T) {
	if _, err := NewOpenAI(""); err == nil {
		t.Error("expected error for empty api key")
	}
}

func TestOpenAIEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var req struct {
			Input      []string `json:"input"`
			Model      string   `json:"model"`
			Dimensions int      `json:"dimensions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Dimensions != 4 {
			t.Errorf("expected dimensions 4, got %d", req.Dimensions)
		}
		resp := map[string]any{
			"data": []map[string]any{
				{"embedding": []float32{0.1, 0.2, 0.3, 0.4}, "index": 0},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	p, err := NewOpenAI("test-key", WithBaseURL(srv.URL), WithDimensions(4))
	if err != nil {
		t.Fatalf("NewOpenAI() = %v", err)
	}
	vec, err := p.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed() = %v", err)
	}
	if len(vec) != 4 {
		t.Errorf("expected 4 dimensions, got %d", len(vec))
	}
}

func TestOpenAIEmbedServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p, _ := NewOpenAI("test-key", WithBaseURL(srv.URL))
	if _, err := p.Embed(context.Background(), "hello"); err == nil {
		t.Error("expected error from failing endpoint")
	}
}

func TestFakeDeterministic(t *testing.T) {
	f := NewFake()
	a, _ := f.Embed(context.Background(), "login form testing")
	b, _ := f.Embed(context.Background(), "login form testing")
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("fake embedding is not deterministic")
		}
	}
	if len(a) != 512 {
		t.Errorf("expected 512 dimensions, got %d", len(a))
	}
}

func TestFakeSharedTokensAreCloser(t *testing.T) {
	f := NewFake()
	ctx := context.Background()
	query, _ := f.Embed(ctx, "login test")
	related, _ := f.Embed(ctx, "Scenario: Login\nGiven a user")
	unrelated, _ := f.Embed(ctx, "quarterly revenue report")

	if dot(query, related) <= dot(query, unrelated) {
		t.Error("expected texts sharing tokens to be more similar")
	}
}

func TestFakeUnitNorm(t *testing.T) {
	f := NewFake()
	vec, _ := f.Embed(context.Background(), "some text here")
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if math.Abs(norm-1) > 1e-5 {
		t.Errorf("expected unit norm, got %v", norm)
	}
}

func dot(a, b []float32) float64 {
	var d float64
	for i := range a {
		d += float64(a[i]) * float64(b[i])
	}
	return d
}
