// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/topic-tree/internal/tree"
	"github.com/pdiddy/topic-tree/pkg/types"
)

type stubExpander struct{}

func (stubExpander) Expand(_ context.Context, topic string, count int) ([]string, error) {
	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, topic+" "+string(rune('a'+i)))
	}
	return out, nil
}

type recordingBuilder struct {
	configs []types.TreeConfig
	err     error
}

func (b *recordingBuilder) Build(ctx context.Context, cfg types.TreeConfig) (*tree.Result, error) {
	b.configs = append(b.configs, cfg)
	if b.err != nil {
		return nil, b.err
	}
	return tree.New(stubExpander{}).Build(ctx, cfg)
}

// disconnectingExpander cancels the request context on its first call and
// then fails any call made under a cancelled context.
type disconnectingExpander struct {
	disconnect context.CancelFunc
	calls      int
}

func (e *disconnectingExpander) Expand(ctx context.Context, topic string, count int) ([]string, error) {
	e.calls++
	if e.calls == 1 {
		e.disconnect()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return stubExpander{}.Expand(ctx, topic, count)
}

func newTestServer(t *testing.T, b Builder, cfg Config) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(NewServer(b, cfg, nil).Handler())
	t.Cleanup(ts.Close)
	return ts
}

// noRedirect stops the client at the 303 after a build.
func noRedirect(ts *httptest.Server) *http.Client {
	c := ts.Client()
	c.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	return c
}

func get(t *testing.T, ts *httptest.Server, path string) (int, string) {
	t.Helper()
	resp, err := ts.Client().Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func postBuild(t *testing.T, ts *httptest.Server, form url.Values) (int, string) {
	t.Helper()
	resp, err := noRedirect(ts).PostForm(ts.URL+"/build", form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestIndexBeforeFirstRun(t *testing.T) {
	ts := newTestServer(t, &recordingBuilder{}, Config{})

	status, body := get(t, ts, "/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Intensive Topic Research with AI")
	assert.Contains(t, body, "Select the level of sub-leveling (1-5):")
	assert.Contains(t, body, "Select the number of max child topics (3-10):")
	assert.NotContains(t, body, "Detailed Log")
}

func TestBuildAndShowResult(t *testing.T) {
	b := &recordingBuilder{}
	ts := newTestServer(t, b, Config{})

	status, _ := postBuild(t, ts, url.Values{
		"topic":    {"  Machine Learning "},
		"level":    {"2"},
		"children": {"3"},
		"physics":  {"on"},
	})
	require.Equal(t, http.StatusSeeOther, status)

	require.Len(t, b.configs, 1)
	assert.Equal(t, types.TreeConfig{RootTopic: "Machine Learning", MaxLevel: 2, BranchFactor: 3}, b.configs[0])

	status, body := get(t, ts, "/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Detailed Log")
	assert.Contains(t, body, "Level 1: Generating subtopics for &#39;Machine Learning&#39;")
	assert.Contains(t, body, "Total time to generate:")
	assert.Contains(t, body, "new vis.Network(")
	assert.Contains(t, body, `value="Machine Learning"`)
	assert.Contains(t, body, `name="physics" type="checkbox" value="on" checked`)
}

func TestBuildRejectsInvalidForm(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{"missing topic", url.Values{"level": {"1"}, "children": {"3"}}, "roottopic is required"},
		{"level too deep", url.Values{"topic": {"x"}, "level": {"6"}, "children": {"3"}}, "maxlevel must be at most 5"},
		{"too few children", url.Values{"topic": {"x"}, "level": {"1"}, "children": {"2"}}, "branchfactor must be at least 3"},
		{"too many children", url.Values{"topic": {"x"}, "level": {"1"}, "children": {"11"}}, "branchfactor must be at most 10"},
		{"not a number", url.Values{"topic": {"x"}, "level": {"two"}}, "level must be a whole number"},
		{"metrics not configured", url.Values{"topic": {"x"}, "metrics": {"on"}}, "keyword data is not available"},
		{"publishing not configured", url.Values{"topic": {"x"}, "drafts": {"on"}}, "blog post drafts are not available"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &recordingBuilder{}
			ts := newTestServer(t, b, Config{})

			status, body := postBuild(t, ts, tt.form)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Contains(t, body, tt.want)
			assert.Contains(t, body, `<form method="post" action="/build">`)
			assert.Empty(t, b.configs, "builder must not run")
		})
	}
}

func TestBuildPassesToggles(t *testing.T) {
	b := &recordingBuilder{err: errors.New("stop")}
	ts := newTestServer(t, b, Config{MetricsEnabled: true, PublishEnabled: true})

	status, body := postBuild(t, ts, url.Values{
		"topic":   {"Go"},
		"metrics": {"on"},
		"drafts":  {"true"},
	})
	assert.Equal(t, http.StatusBadRequest, status, "builder errors are shown on the form")
	assert.Contains(t, body, "stop")

	require.Len(t, b.configs, 1)
	assert.True(t, b.configs[0].FetchMetrics)
	assert.True(t, b.configs[0].PublishDrafts)
	assert.Equal(t, 1, b.configs[0].MaxLevel)
	assert.Equal(t, 3, b.configs[0].BranchFactor)
}

func TestBuildSurvivesClientDisconnect(t *testing.T) {
	reqCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	exp := &disconnectingExpander{disconnect: cancel}
	srv := NewServer(tree.New(exp), Config{}, nil)

	form := url.Values{"topic": {"a"}, "level": {"3"}, "children": {"3"}}
	req := httptest.NewRequest(http.MethodPost, "/build", strings.NewReader(form.Encode())).WithContext(reqCtx)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Error(t, reqCtx.Err(), "request context was cancelled during the run")

	res := srv.Result()
	require.NotNil(t, res)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, 1+3+9, exp.calls, "every topic at levels 1-3 is expanded")
	assert.Len(t, res.Nodes, 1+3+9+27)
	assert.Len(t, res.Edges, 3+9+27)
}

func TestGraphAndExportsRequireAResult(t *testing.T) {
	ts := newTestServer(t, &recordingBuilder{}, Config{})
	for _, path := range []string{"/graph.html", "/export.json", "/export.yaml"} {
		status, body := get(t, ts, path)
		assert.Equal(t, http.StatusNotFound, status, path)
		assert.Contains(t, body, "no topic tree has been generated yet")
	}
}

func TestGraphAndExports(t *testing.T) {
	ts := newTestServer(t, &recordingBuilder{}, Config{})
	status, _ := postBuild(t, ts, url.Values{"topic": {"Go"}, "level": {"1"}, "children": {"3"}})
	require.Equal(t, http.StatusSeeOther, status)

	status, body := get(t, ts, "/graph.html?hierarchical=true")
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, strings.HasPrefix(body, "<!DOCTYPE html>"))
	assert.Contains(t, body, "Go a (Search Volume: ")

	status, body = get(t, ts, "/export.json")
	assert.Equal(t, http.StatusOK, status)
	var exp struct {
		RootTopic string `json:"root_topic"`
		Nodes     []struct {
			ID string `json:"id"`
		} `json:"nodes"`
		Edges []types.TopicEdge `json:"edges"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &exp))
	assert.Equal(t, "Go", exp.RootTopic)
	assert.Len(t, exp.Nodes, 4)
	assert.Len(t, exp.Edges, 3)

	status, body = get(t, ts, "/export.yaml")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "root_topic: Go")
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, &recordingBuilder{}, Config{})
	status, body := get(t, ts, "/health")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, body)
}

func TestRequestsAreLogged(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ts := httptest.NewServer(NewServer(&recordingBuilder{}, Config{}, zap.New(core)).Handler())
	defer ts.Close()

	get(t, ts, "/health")

	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/health", fields["path"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
}
