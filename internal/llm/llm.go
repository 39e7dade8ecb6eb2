// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm sends single-turn prompts to a hosted language model.
// OpenAI chat completions and Anthropic messages are supported; callers
// depend only on the Client interface.
package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pdiddy/topic-tree/internal/httputil"
	"github.com/pdiddy/topic-tree/pkg/types"
)

// Default models per provider.
const (
	DefaultOpenAIModel = "gpt-4o"
	DefaultClaudeModel = "claude-sonnet-4-5-20250929"
)

// Client completes a prompt and returns the model's text.
type Client interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// New returns the Client for cfg.Provider. An empty provider means OpenAI.
func New(cfg types.AIConfig) (Client, error) {
	if err := types.ValidateStruct(cfg); err != nil {
		return nil, err
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key configured for %s", providerName(cfg.Provider))
	}

	hc := httputil.NewClient(cfg.Timeout)

	switch cfg.Provider {
	case types.ProviderAnthropic:
		model := cfg.Model
		if model == "" {
			model = DefaultClaudeModel
		}
		return &ClaudeClient{APIKey: cfg.APIKey, Model: model, Client: hc}, nil
	default:
		model := cfg.Model
		if model == "" {
			model = DefaultOpenAIModel
		}
		return &OpenAIClient{APIKey: cfg.APIKey, Model: model, Client: hc}, nil
	}
}

func providerName(p string) string {
	if p == "" {
		return types.ProviderOpenAI
	}
	return p
}

func describe(api string, err error) error {
	return fmt.Errorf("calling %s: %w", api, err)
}

// client returns c or http.DefaultClient.
func client(c *http.Client) *http.Client {
	if c == nil {
		return http.DefaultClient
	}
	return c
}

// JSONMode returns a Client that asks for JSON object output where the
// provider supports it. Other clients are returned unchanged.
func JSONMode(c Client) Client {
	if oc, ok := c.(*OpenAIClient); ok {
		return oc.WithJSONMode()
	}
	return c
}
