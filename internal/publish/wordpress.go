// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package publish creates blog posts through the WordPress REST API.
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdiddy/topic-tree/internal/httputil"
	"github.com/pdiddy/topic-tree/pkg/types"
)

const (
	postsPath     = "/wp-json/wp/v2/posts"
	defaultStatus = "draft"
)

// StatusError reports a post that WordPress did not create.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to create post: status code %d: %s", e.StatusCode, e.Message)
}

// WordPressPublisher creates posts on a WordPress site with an
// application password.
type WordPressPublisher struct {
	Client   *http.Client
	BaseURL  string
	User     string
	Password string
	Status   string
}

// NewWordPressPublisher builds a publisher from cfg.
func NewWordPressPublisher(cfg types.WordPressConfig) (*WordPressPublisher, error) {
	if err := types.ValidateStruct(cfg); err != nil {
		return nil, err
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("wordpress URL is not configured")
	}
	status := cfg.Status
	if status == "" {
		status = defaultStatus
	}
	return &WordPressPublisher{
		Client:   httputil.NewClient(cfg.Timeout),
		BaseURL:  strings.TrimRight(cfg.URL, "/"),
		User:     cfg.User,
		Password: cfg.AppPassword,
		Status:   status,
	}, nil
}

type post struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Status  string `json:"status"`
}

// Publish creates a post titled topic with body as its content. Any
// response other than 201 Created yields a *StatusError.
func (p *WordPressPublisher) Publish(ctx context.Context, topic, body string) error {
	status := p.Status
	if status == "" {
		status = defaultStatus
	}

	req, err := httputil.NewJSONRequest(ctx, http.MethodPost, p.BaseURL+postsPath, post{
		Title:   topic,
		Content: body,
		Status:  status,
	})
	if err != nil {
		return err
	}
	req.SetBasicAuth(p.User, p.Password)

	err = httputil.DoJSON(p.Client, req, http.StatusCreated, nil)
	var se *httputil.StatusError
	if errors.As(err, &se) {
		return &StatusError{StatusCode: se.StatusCode, Message: errorMessage(se.Body)}
	}
	if err != nil {
		return fmt.Errorf("publishing %q: %w", topic, err)
	}
	return nil
}

// errorMessage pulls the message out of a WordPress error body, falling
// back to the raw body.
func errorMessage(body string) string {
	var wpErr struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(body), &wpErr); err == nil && wpErr.Message != "" {
		if wpErr.Code != "" {
			return wpErr.Code + ": " + wpErr.Message
		}
		return wpErr.Message
	}
	return body
}
