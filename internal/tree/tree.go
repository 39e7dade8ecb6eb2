// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tree grows a topic tree by repeatedly asking an Expander for
// sub-topics, depth first, down to a configured level.
//
// Each topic string becomes exactly one node, the first time it is seen.
// A topic that shows up again (from another parent, or deeper under its own
// branch) gets a new edge and is expanded again, but no second node and no
// second draft. Collaborator failures never abort a run: they shrink the
// tree and are reported as warnings.
package tree

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/topic-tree/internal/draft"
	"github.com/pdiddy/topic-tree/pkg/types"
)

// Expander returns up to count sub-topics of topic.
type Expander interface {
	Expand(ctx context.Context, topic string, count int) ([]string, error)
}

// MetricsLookup returns one search-volume record per keyword, in order.
type MetricsLookup interface {
	Lookup(ctx context.Context, keywords []string) ([]types.KeywordMetric, error)
}

// Drafter writes the body of a blog post about topic.
type Drafter interface {
	Draft(ctx context.Context, topic string, minWords int) (string, error)
}

// Publisher creates a post for topic with body.
type Publisher interface {
	Publish(ctx context.Context, topic, body string) error
}

// Result is everything one run produced.
type Result struct {
	RunID     string                `json:"run_id" yaml:"run_id"`
	Config    types.TreeConfig      `json:"config" yaml:"config"`
	Nodes     []types.TopicNode     `json:"nodes" yaml:"nodes"`
	Edges     []types.TopicEdge     `json:"edges" yaml:"edges"`
	Log       []string              `json:"log" yaml:"log"`
	Metrics   []types.KeywordMetric `json:"keyword_data" yaml:"keyword_data"`
	Warnings  []string              `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Published []string              `json:"published,omitempty" yaml:"published,omitempty"`
	Elapsed   time.Duration         `json:"elapsed" yaml:"elapsed"`
}

// Builder runs tree generation against a fixed set of collaborators. A
// Builder holds no per-run state and may be reused.
type Builder struct {
	expander  Expander
	metrics   MetricsLookup
	drafter   Drafter
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithMetrics enables keyword volume lookups through m.
func WithMetrics(m MetricsLookup) Option {
	return func(b *Builder) { b.metrics = m }
}

// WithPublishing enables drafting and publishing of newly discovered topics.
func WithPublishing(d Drafter, p Publisher) Option {
	return func(b *Builder) {
		b.drafter = d
		b.publisher = p
	}
}

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// New returns a Builder that expands topics with e.
func New(e Expander, opts ...Option) *Builder {
	b := &Builder{
		expander: e,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Build grows the tree described by cfg. It returns an error only when cfg
// is invalid or asks for a collaborator the Builder was not given; every
// failure during the run is absorbed and listed in Result.Warnings.
func (b *Builder) Build(ctx context.Context, cfg types.TreeConfig) (*Result, error) {
	if err := b.check(cfg); err != nil {
		return nil, err
	}
	if cfg.MinWordCount == 0 {
		cfg.MinWordCount = draft.DefaultWordCount
	}

	r := &run{
		b:       b,
		cfg:     cfg,
		visited: make(map[string]struct{}),
		log:     &ProgressLog{},
		logger:  b.logger.With(zap.String("root", cfg.RootTopic)),
	}

	start := b.now()
	r.expand(ctx, cfg.RootTopic, 1)
	elapsed := b.now().Sub(start)
	r.log.Total(elapsed)

	r.logger.Info("topic tree generated",
		zap.Int("nodes", len(r.nodes)),
		zap.Int("edges", len(r.edges)),
		zap.Int("warnings", len(r.warnings)),
		zap.Duration("elapsed", elapsed))

	return &Result{
		RunID:     uuid.NewString(),
		Config:    cfg,
		Nodes:     r.nodes,
		Edges:     r.edges,
		Log:       r.log.Lines(),
		Metrics:   r.metrics,
		Warnings:  r.warnings,
		Published: r.published,
		Elapsed:   elapsed,
	}, nil
}

func (b *Builder) check(cfg types.TreeConfig) error {
	if b.expander == nil {
		return errors.New("no topic expander configured")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.FetchMetrics && b.metrics == nil {
		return errors.New("keyword metrics requested but no metrics lookup is configured")
	}
	if cfg.PublishDrafts && (b.drafter == nil || b.publisher == nil) {
		return errors.New("draft publishing requested but no drafter and publisher are configured")
	}
	return nil
}

// run holds the mutable state of one Build call.
type run struct {
	b      *Builder
	cfg    types.TreeConfig
	logger *zap.Logger

	visited   map[string]struct{}
	nodes     []types.TopicNode
	edges     []types.TopicEdge
	log       *ProgressLog
	metrics   []types.KeywordMetric
	warnings  []string
	published []string
}

// expand visits topic at level and, recursively, its sub-topics.
func (r *run) expand(ctx context.Context, topic string, level int) {
	if level > r.cfg.MaxLevel {
		return
	}

	r.log.Enter(level, topic)
	start := r.b.now()

	children := r.children(ctx, topic, level)

	if !r.seen(topic) {
		vol := types.UnavailableVolume()
		if r.cfg.FetchMetrics {
			vol = r.lookup(ctx, []string{topic})[0].Volume
		}
		r.addNode(topic, vol)
	}

	var childMetrics []types.KeywordMetric
	if r.cfg.FetchMetrics {
		childMetrics = r.lookup(ctx, children)
	} else {
		childMetrics = types.UnavailableMetrics(children)
	}

	for i, child := range children {
		if !r.seen(child) {
			if r.cfg.PublishDrafts {
				r.publish(ctx, child)
			}
			r.addNode(child, childMetrics[i].Volume)
		}
		r.edges = append(r.edges, types.TopicEdge{Source: topic, Target: child})

		r.expand(ctx, child, level+1)
	}

	r.log.Exit(level, topic, r.b.now().Sub(start))
}

// children asks the expander for sub-topics. A failure ends the branch.
func (r *run) children(ctx context.Context, topic string, level int) []string {
	subs, err := r.b.expander.Expand(ctx, topic, r.cfg.BranchFactor)
	if err != nil {
		r.warn(fmt.Sprintf("could not expand '%s': %v", topic, err),
			zap.String("topic", topic), zap.Int("level", level), zap.Error(err))
		return nil
	}
	if len(subs) > r.cfg.BranchFactor {
		subs = subs[:r.cfg.BranchFactor]
	}
	return subs
}

// lookup queries volumes for keywords and records them. The result always
// has one entry per keyword; a failed or short answer becomes unavailable.
func (r *run) lookup(ctx context.Context, keywords []string) []types.KeywordMetric {
	if len(keywords) == 0 {
		return nil
	}

	res, err := r.b.metrics.Lookup(ctx, keywords)
	switch {
	case err != nil:
		r.warn(fmt.Sprintf("keyword metrics unavailable: %v", err),
			zap.Strings("keywords", keywords), zap.Error(err))
		res = types.UnavailableMetrics(keywords)
	case len(res) != len(keywords):
		r.warn(fmt.Sprintf("keyword metrics returned %d records for %d keywords", len(res), len(keywords)),
			zap.Strings("keywords", keywords))
		res = types.UnavailableMetrics(keywords)
	}

	r.metrics = append(r.metrics, res...)
	return res
}

// publish drafts and publishes a post for topic. Failures are reported
// and the run continues.
func (r *run) publish(ctx context.Context, topic string) {
	body, err := r.b.drafter.Draft(ctx, topic, r.cfg.MinWordCount)
	if err != nil {
		r.warn(fmt.Sprintf("could not draft '%s': %v", topic, err),
			zap.String("topic", topic), zap.Error(err))
		return
	}
	if err := r.b.publisher.Publish(ctx, topic, body); err != nil {
		r.warn(fmt.Sprintf("could not publish '%s': %v", topic, err),
			zap.String("topic", topic), zap.Error(err))
		return
	}
	r.published = append(r.published, topic)
	r.logger.Info("post created", zap.String("topic", topic), zap.Int("words", draft.WordCount(body)))
}

func (r *run) seen(topic string) bool {
	_, ok := r.visited[topic]
	return ok
}

func (r *run) addNode(topic string, vol types.Volume) {
	r.visited[topic] = struct{}{}
	r.nodes = append(r.nodes, types.TopicNode{ID: topic, Volume: vol})
}

func (r *run) warn(msg string, fields ...zap.Field) {
	r.warnings = append(r.warnings, msg)
	r.logger.Warn(msg, fields...)
}
