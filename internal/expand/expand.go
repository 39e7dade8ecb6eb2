// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package expand asks a language model for the sub-topics of a topic.
package expand

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/kaptinlin/jsonrepair"

	"github.com/pdiddy/topic-tree/internal/llm"
)

// DefaultCount is the number of sub-topics requested when the caller
// passes a non-positive count.
const DefaultCount = 3

const maxTokens = 1024

var subTopicsPromptTmpl = template.Must(template.New("subtopics").Parse(`As an expert in keyword and topic research specialized in {{.Topic}}, generate {{.Count}} sub topics to write about in the form of SEARCHABLE keywords for the following parent topic: {{.Topic}}

Respond with a JSON object of the form {"sub_topics": ["keyword one", "keyword two"]} containing exactly {{.Count}} entries. Do not include any text outside the JSON object.
`))

// LLMExpander produces sub-topics with a language model.
type LLMExpander struct {
	Client llm.Client
}

// New returns an LLMExpander that asks c for JSON output.
func New(c llm.Client) *LLMExpander {
	return &LLMExpander{Client: llm.JSONMode(c)}
}

type subTopics struct {
	SubTopics []string `json:"sub_topics"`
}

// Expand returns up to count sub-topics of topic in the order the model
// listed them. Blank entries are dropped.
func (e *LLMExpander) Expand(ctx context.Context, topic string, count int) ([]string, error) {
	if count <= 0 {
		count = DefaultCount
	}

	var buf bytes.Buffer
	if err := subTopicsPromptTmpl.Execute(&buf, struct {
		Topic string
		Count int
	}{topic, count}); err != nil {
		return nil, fmt.Errorf("rendering prompt: %w", err)
	}

	text, err := e.Client.Complete(ctx, buf.String(), maxTokens)
	if err != nil {
		return nil, fmt.Errorf("expanding %q: %w", topic, err)
	}

	topics, err := parseSubTopics(text)
	if err != nil {
		return nil, fmt.Errorf("expanding %q: %w", topic, err)
	}
	return topics, nil
}

// parseSubTopics decodes the model's reply. It accepts the reply wrapped in
// a Markdown code fence and falls back to JSON repair for output that is
// truncated or slightly malformed.
func parseSubTopics(text string) ([]string, error) {
	raw := stripCodeFence(text)

	var st subTopics
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		repaired, rerr := jsonrepair.JSONRepair(raw)
		if rerr != nil {
			return nil, fmt.Errorf("parsing sub-topics JSON: %w", err)
		}
		st = subTopics{}
		if err := json.Unmarshal([]byte(repaired), &st); err != nil {
			return nil, fmt.Errorf("parsing repaired sub-topics JSON: %w", err)
		}
	}

	out := make([]string, 0, len(st.SubTopics))
	for _, s := range st.SubTopics {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

// stripCodeFence removes a surrounding ``` or ```json fence.
func stripCodeFence(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	if i := strings.IndexByte(t, '\n'); i >= 0 {
		t = t[i+1:]
	}
	t = strings.TrimSuffix(strings.TrimSpace(t), "```")
	return strings.TrimSpace(t)
}
