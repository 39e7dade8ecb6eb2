// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/topic-tree/pkg/types"
)

func TestPublishCreatesDraft(t *testing.T) {
	var got post
	var path, user, pass string
	var hasAuth bool
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		user, pass, hasAuth = r.BasicAuth()
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":12}`)
	}))
	defer ts.Close()

	p, err := NewWordPressPublisher(types.WordPressConfig{URL: ts.URL + "/", User: "editor", AppPassword: "abcd efgh"})
	require.NoError(t, err)
	p.Client = ts.Client()

	require.NoError(t, p.Publish(context.Background(), "Neural Networks", "body text"))

	assert.Equal(t, "/wp-json/wp/v2/posts", path)
	assert.True(t, hasAuth)
	assert.Equal(t, "editor", user)
	assert.Equal(t, "abcd efgh", pass)
	assert.Equal(t, post{Title: "Neural Networks", Content: "body text", Status: "draft"}, got)
}

func TestPublishFailure(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"wordpress error", http.StatusUnauthorized, `{"code":"rest_cannot_create","message":"Sorry, you are not allowed to create posts as this user."}`, "rest_cannot_create: Sorry, you are not allowed"},
		{"plain body", http.StatusBadGateway, "upstream down", "upstream down"},
		{"ok is not created", http.StatusOK, `{}`, "{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer ts.Close()

			p := &WordPressPublisher{Client: ts.Client(), BaseURL: ts.URL}
			err := p.Publish(context.Background(), "t", "b")

			var se *StatusError
			require.True(t, errors.As(err, &se), "err = %v", err)
			assert.Equal(t, tt.status, se.StatusCode)
			assert.Contains(t, se.Message, tt.wantMsg)
			assert.Contains(t, err.Error(), fmt.Sprintf("status code %d", tt.status))
		})
	}
}

func TestPublishCustomStatus(t *testing.T) {
	var got post
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer ts.Close()

	p, err := NewWordPressPublisher(types.WordPressConfig{URL: ts.URL, Status: "pending"})
	require.NoError(t, err)
	p.Client = ts.Client()

	require.NoError(t, p.Publish(context.Background(), "t", "b"))
	assert.Equal(t, "pending", got.Status)
}

func TestNewWordPressPublisherValidation(t *testing.T) {
	_, err := NewWordPressPublisher(types.WordPressConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "URL is not configured")

	_, err = NewWordPressPublisher(types.WordPressConfig{URL: "https://x", Status: "archived"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status must be one of")
}
