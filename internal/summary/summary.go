/*
Copyright (c) 2026 testudo-ai
SPDX-License-Identifier: MIT
*/

// Package summary compresses (request, tool, result) triples into short
// structured records for storage and display.
package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	systemMessage = "Return ONE JSON with keys request, action, and optionally result " +
		"(only if meaningful). Be concise."
	userTemplate = "User asked: %s; Used tool: %s; Result: %s..."

	resultPreviewLen   = 200
	fallbackRequestLen = 50
)

// Record is the structured summary of one tool invocation.
type Record struct {
	Request string `json:"request"`
	Action  string `json:"action"`
	Result  string `json:"result,omitempty"`
}

// Completer is the language-model call the generator depends on. It is
// assumed fallible and to sometimes return malformed output.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Generator produces summary Records. It never fails: any model or parse
// error falls back to a deterministic record derived from the inputs.
type Generator struct {
	completer Completer
}

// New creates a Generator backed by the given Completer.
func New(c Completer) *Generator {
	return &Generator{completer: c}
}

// Generate summarizes one tool invocation. The tool result is truncated to
// its first 200 characters before it reaches the model.
func (g *Generator) Generate(ctx context.Context, userRequest, toolName, toolResult string) Record {
	fallback := Record{
		Request: truncate(userRequest, fallbackRequestLen),
		Action:  toolName,
	}
	if g == nil || g.completer == nil {
		return fallback
	}

	prompt := fmt.Sprintf(userTemplate, userRequest, toolName, truncate(toolResult, resultPreviewLen))
	out, err := g.completer.Complete(ctx, systemMessage, prompt)
	if err != nil {
		return fallback
	}

	var rec Record
	if err := json.Unmarshal([]byte(out), &rec); err != nil {
		return fallback
	}
	if rec.Request == "" || rec.Action == "" {
		return fallback
	}
	return rec
}

// FormatForStorage renders a Record as the stored text form:
// "REQUEST: ...\nACTION: ..." with a RESULT line only when non-empty.
func FormatForStorage(rec Record) string {
	s := fmt.Sprintf("REQUEST: %s\nACTION: %s", rec.Request, rec.Action)
	if strings.TrimSpace(rec.Result) != "" {
		s += fmt.Sprintf("\nRESULT: %s", rec.Result)
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// OpenAICompleter implements Completer using the OpenAI chat API.
type OpenAICompleter struct {
	client *openai.Client
	model  string
}

var _ Completer = (*OpenAICompleter)(nil)

// NewOpenAICompleter creates a chat-completion client for summaries.
// An empty model defaults to gpt-4o-mini.
func NewOpenAICompleter(apiKey, baseURL, model string) (*OpenAICompleter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("completion api key is required")
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAICompleter{client: openai.NewClientWithConfig(cfg), model: model}, nil
}

// Complete implements Completer.
func (c *OpenAICompleter) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0,
		MaxTokens:   60,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
