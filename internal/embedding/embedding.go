/*
Copyright (c) 2026 testudo-ai
SPDX-License-Identifier: MIT
*/

// Package embedding wraps a remote embedding endpoint behind a small
// interface so the store and session layers never talk to a vendor SDK
// directly.
package embedding

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Provider generates a fixed-length vector for a text string.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// Option configures an OpenAI provider.
type Option func(*options)

type options struct {
	Model      string
	Dimensions int
	BaseURL    string
}

func defaultOptions() options {
	return options{
		Model:      string(openai.SmallEmbedding3),
		Dimensions: 512,
	}
}

// WithModel sets the embedding model.
func WithModel(model string) Option {
	return func(o *options) { o.Model = model }
}

// WithDimensions sets the requested vector dimensionality.
func WithDimensions(dim int) Option {
	return func(o *options) { o.Dimensions = dim }
}

// WithBaseURL points the client at a non-default API endpoint.
func WithBaseURL(url string) Option {
	return func(o *options) { o.BaseURL = url }
}

// OpenAI implements Provider using the OpenAI embeddings API.
type OpenAI struct {
	client     *openai.Client
	model      string
	dimensions int
}

var _ Provider = (*OpenAI)(nil)

// NewOpenAI creates an embedding provider. The API key is required.
func NewOpenAI(apiKey string, opts ...Option) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("embedding api key is required")
	}
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	cfg := openai.DefaultConfig(apiKey)
	if o.BaseURL != "" {
		cfg.BaseURL = o.BaseURL
	}
	return &OpenAI{
		client:     openai.NewClientWithConfig(cfg),
		model:      o.Model,
		dimensions: o.Dimensions,
	}, nil
}

// Embed implements Provider.
func (p *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      openai.EmbeddingModel(p.model),
		Dimensions: p.dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("embed text: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embed text: empty response")
	}
	vec := resp.Data[0].Embedding
	if len(vec) != p.dimensions {
		return nil, fmt.Errorf("embed text: got %d dimensions, want %d", len(vec), p.dimensions)
	}
	return vec, nil
}

// Dimensions implements Provider.
func (p *OpenAI) Dimensions() int { return p.dimensions }
