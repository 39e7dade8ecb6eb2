// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdiddy/topic-tree/internal/httputil"
)

// openAIURL is the chat completions endpoint. Package-level var for test substitution.
var openAIURL = "https://api.openai.com/v1/chat/completions"

// OpenAIClient calls the OpenAI chat completions API.
type OpenAIClient struct {
	APIKey string
	Model  string
	Client *http.Client

	// JSONMode asks the API for a JSON object response.
	JSONMode bool
}

type openAIRequest struct {
	Model          string                `json:"model"`
	MaxTokens      int                   `json:"max_tokens,omitempty"`
	Messages       []openAIMessage       `json:"messages"`
	ResponseFormat *openAIResponseFormat `json:"response_format,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponseFormat struct {
	Type string `json:"type"`
}

type openAIResponse struct {
	Choices []struct {
		Message      openAIMessage `json:"message"`
		FinishReason string        `json:"finish_reason"`
	} `json:"choices"`
}

// WithJSONMode returns a copy of c that requests JSON object output.
func (c *OpenAIClient) WithJSONMode() *OpenAIClient {
	cp := *c
	cp.JSONMode = true
	return &cp
}

// Complete sends prompt as a single user message.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	body := openAIRequest{
		Model:     c.Model,
		MaxTokens: maxTokens,
		Messages:  []openAIMessage{{Role: "user", Content: prompt}},
	}
	if c.JSONMode {
		body.ResponseFormat = &openAIResponseFormat{Type: "json_object"}
	}

	req, err := httputil.NewJSONRequest(ctx, http.MethodPost, openAIURL, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	var resp openAIResponse
	if err := httputil.DoJSON(client(c.Client), req, http.StatusOK, &resp); err != nil {
		return "", describe("OpenAI API", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("OpenAI API returned no choices")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("OpenAI API returned empty content")
	}
	return text, nil
}
