// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package draft writes blog post drafts for topics with a language model.
package draft

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/pdiddy/topic-tree/internal/llm"
)

// DefaultWordCount is the minimum draft length used when none is given.
const DefaultWordCount = 500

const maxTokens = 4096

var draftPromptTmpl = template.Must(template.New("draft").Parse(`I will provide you with a [TOPIC], and your task is to generate a blog post draft for that [TOPIC].
Make sure the draft is SEO optimized and covers all the aspects of the [TOPIC].
The draft should be a minimum of {{.WordCount}} words.
[TOPIC] = {{.Topic}}

Draft:
`))

// leadingLabel matches a "Draft:" echo some models put in front of the body.
var leadingLabel = regexp.MustCompile(`(?i)^\s*draft:\s*`)

// LLMDrafter writes drafts with a language model.
type LLMDrafter struct {
	Client llm.Client
}

// New returns an LLMDrafter backed by c.
func New(c llm.Client) *LLMDrafter {
	return &LLMDrafter{Client: c}
}

// Draft returns the body text of a blog post about topic of at least
// minWords words (as requested from the model; the length is not enforced).
func (d *LLMDrafter) Draft(ctx context.Context, topic string, minWords int) (string, error) {
	if minWords <= 0 {
		minWords = DefaultWordCount
	}

	var buf bytes.Buffer
	if err := draftPromptTmpl.Execute(&buf, struct {
		Topic     string
		WordCount int
	}{topic, minWords}); err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}

	text, err := d.Client.Complete(ctx, buf.String(), maxTokens)
	if err != nil {
		return "", fmt.Errorf("drafting %q: %w", topic, err)
	}

	body := strings.TrimSpace(leadingLabel.ReplaceAllString(text, ""))
	if body == "" {
		return "", fmt.Errorf("drafting %q: model returned an empty draft", topic)
	}
	return body, nil
}

// WordCount returns the number of whitespace-separated words in body.
func WordCount(body string) int {
	return len(strings.Fields(body))
}
