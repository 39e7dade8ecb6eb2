// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package draft

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubClient struct {
	reply     string
	err       error
	prompt    string
	maxTokens int
}

func (s *stubClient) Complete(_ context.Context, prompt string, maxTokens int) (string, error) {
	s.prompt = prompt
	s.maxTokens = maxTokens
	return s.reply, s.err
}

func TestDraft(t *testing.T) {
	c := &stubClient{reply: "Draft:\n\nGradient descent is an optimization method."}
	d := New(c)

	body, err := d.Draft(context.Background(), "gradient descent", 800)
	if err != nil {
		t.Fatalf("Draft: %v", err)
	}
	if body != "Gradient descent is an optimization method." {
		t.Errorf("body = %q", body)
	}
	if !strings.Contains(c.prompt, "[TOPIC] = gradient descent") {
		t.Errorf("prompt missing topic: %q", c.prompt)
	}
	if !strings.Contains(c.prompt, "minimum of 800 words") {
		t.Errorf("prompt missing word count: %q", c.prompt)
	}
	if c.maxTokens != maxTokens {
		t.Errorf("maxTokens = %d, want %d", c.maxTokens, maxTokens)
	}
}

func TestDraftDefaultWordCount(t *testing.T) {
	c := &stubClient{reply: "body"}
	if _, err := New(c).Draft(context.Background(), "x", 0); err != nil {
		t.Fatalf("Draft: %v", err)
	}
	if !strings.Contains(c.prompt, "minimum of 500 words") {
		t.Errorf("prompt = %q, want default word count", c.prompt)
	}
}

func TestDraftErrors(t *testing.T) {
	tests := []struct {
		name    string
		client  *stubClient
		wantErr string
	}{
		{"client failure", &stubClient{err: errors.New("quota exceeded")}, "quota exceeded"},
		{"empty reply", &stubClient{reply: "  Draft:  "}, "empty draft"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.client).Draft(context.Background(), "topic", 100)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestWordCount(t *testing.T) {
	if got := WordCount("one two\n three\tfour "); got != 4 {
		t.Errorf("WordCount = %d, want 4", got)
	}
	if got := WordCount(""); got != 0 {
		t.Errorf("WordCount(empty) = %d, want 0", got)
	}
}
