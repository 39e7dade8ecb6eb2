// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package web serves the interactive topic research page: a configuration
// form, the graph of the last run, its detailed log and keyword data.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/pdiddy/topic-tree/internal/render"
	"github.com/pdiddy/topic-tree/internal/tree"
	"github.com/pdiddy/topic-tree/pkg/types"
)

// Form limits.
const (
	MinLevel  = 1
	MaxLevel  = 5
	MinBranch = 3
	MaxBranch = 10
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html.tmpl"))

// Builder runs one tree generation.
type Builder interface {
	Build(ctx context.Context, cfg types.TreeConfig) (*tree.Result, error)
}

// Form is the submitted configuration.
type Form struct {
	RootTopic     string `validate:"required,max=200"`
	MaxLevel      int    `validate:"min=1,max=5"`
	BranchFactor  int    `validate:"min=3,max=10"`
	FetchMetrics  bool
	PublishDrafts bool
	Physics       bool
	Hierarchical  bool
}

// DefaultForm is the form shown before the first run.
func DefaultForm() Form {
	return Form{MaxLevel: MinLevel, BranchFactor: MinBranch}
}

// TreeConfig returns the run configuration the form describes.
func (f Form) TreeConfig() types.TreeConfig {
	return types.TreeConfig{
		RootTopic:     f.RootTopic,
		MaxLevel:      f.MaxLevel,
		BranchFactor:  f.BranchFactor,
		FetchMetrics:  f.FetchMetrics,
		PublishDrafts: f.PublishDrafts,
	}
}

// RenderOptions returns the graph display options the form describes.
func (f Form) RenderOptions() render.Options {
	opts := render.DefaultOptions()
	opts.Physics = f.Physics
	opts.Hierarchical = f.Hierarchical
	return opts
}

// Config configures a Server.
type Config struct {
	// MetricsEnabled and PublishEnabled report whether the builder was
	// given a metrics lookup and a drafter and publisher.
	MetricsEnabled bool
	PublishEnabled bool

	// BuildTimeout bounds a single run. Zero means no limit.
	BuildTimeout time.Duration
}

// Server is the interactive UI. Runs are serialized: one build at a time.
type Server struct {
	builder Builder
	cfg     Config
	logger  *zap.Logger

	buildMu sync.Mutex

	mu     sync.RWMutex
	form   Form
	result *tree.Result
}

// NewServer returns a Server that runs builds with b.
func NewServer(b Builder, cfg Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		builder: b,
		cfg:     cfg,
		logger:  logger,
		form:    DefaultForm(),
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Get("/", s.handleIndex)
	r.Post("/build", s.handleBuild)
	r.Get("/graph.html", s.handleGraph)
	r.Get("/export.json", s.handleExport(render.ExportJSON, "application/json"))
	r.Get("/export.yaml", s.handleExport(render.ExportYAML, "application/yaml"))
	r.Get("/health", s.handleHealth)
	return r
}

// Result returns the result of the last successful run, or nil.
func (s *Server) Result() *tree.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result
}

type indexView struct {
	Form           Form
	Result         *tree.Result
	Graph          template.HTML
	Error          string
	MetricsEnabled bool
	PublishEnabled bool
	MinLevel       int
	MaxLevel       int
	MinBranch      int
	MaxBranch      int
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	form, res := s.form, s.result
	s.mu.RUnlock()
	s.renderIndex(w, http.StatusOK, form, res, "")
}

func (s *Server) renderIndex(w http.ResponseWriter, status int, form Form, res *tree.Result, errMsg string) {
	v := indexView{
		Form:           form,
		Result:         res,
		Error:          errMsg,
		MetricsEnabled: s.cfg.MetricsEnabled,
		PublishEnabled: s.cfg.PublishEnabled,
		MinLevel:       MinLevel,
		MaxLevel:       MaxLevel,
		MinBranch:      MinBranch,
		MaxBranch:      MaxBranch,
	}
	if res != nil {
		frag, err := render.Fragment(res.Nodes, res.Edges, form.RenderOptions())
		if err != nil {
			s.logger.Error("rendering graph", zap.Error(err))
			http.Error(w, "rendering graph failed", http.StatusInternalServerError)
			return
		}
		v.Graph = frag
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := indexTemplate.Execute(w, v); err != nil {
		s.logger.Error("rendering index", zap.Error(err))
	}
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	form, err := s.parseForm(r)
	if err != nil {
		s.mu.RLock()
		res := s.result
		s.mu.RUnlock()
		s.renderIndex(w, http.StatusBadRequest, form, res, err.Error())
		return
	}

	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	// Client disconnects do not cut a run short; BuildTimeout is its only bound.
	ctx := context.WithoutCancel(r.Context())
	if s.cfg.BuildTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.BuildTimeout)
		defer cancel()
	}

	s.logger.Info("building topic tree",
		zap.String("topic", form.RootTopic),
		zap.Int("max_level", form.MaxLevel),
		zap.Int("branch_factor", form.BranchFactor),
		zap.String("request_id", middleware.GetReqID(r.Context())))

	res, err := s.builder.Build(ctx, form.TreeConfig())
	if err != nil {
		s.mu.RLock()
		prev := s.result
		s.mu.RUnlock()
		s.renderIndex(w, http.StatusBadRequest, form, prev, err.Error())
		return
	}

	s.mu.Lock()
	s.form = form
	s.result = res
	s.mu.Unlock()

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// parseForm reads and validates the submitted form. The returned Form
// holds whatever was parsed so it can be shown again on error.
func (s *Server) parseForm(r *http.Request) (Form, error) {
	f := DefaultForm()
	if err := r.ParseForm(); err != nil {
		return f, err
	}

	f.RootTopic = strings.TrimSpace(r.PostForm.Get("topic"))
	f.FetchMetrics = checked(r, "metrics")
	f.PublishDrafts = checked(r, "drafts")
	f.Physics = checked(r, "physics")
	f.Hierarchical = checked(r, "hierarchical")

	var err error
	if f.MaxLevel, err = intField(r, "level", f.MaxLevel); err != nil {
		return f, err
	}
	if f.BranchFactor, err = intField(r, "children", f.BranchFactor); err != nil {
		return f, err
	}
	if err := types.ValidateStruct(f); err != nil {
		return f, err
	}
	if f.FetchMetrics && !s.cfg.MetricsEnabled {
		return f, errMetricsDisabled
	}
	if f.PublishDrafts && !s.cfg.PublishEnabled {
		return f, errPublishDisabled
	}
	return f, nil
}

type formError string

func (e formError) Error() string { return string(e) }

const (
	errMetricsDisabled formError = "keyword data is not available: no RapidAPI key configured"
	errPublishDisabled formError = "blog post drafts are not available: WordPress is not configured"
)

func checked(r *http.Request, name string) bool {
	switch strings.ToLower(r.PostForm.Get(name)) {
	case "on", "true", "1":
		return true
	}
	return false
}

func intField(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.PostForm.Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def, formError(name + " must be a whole number")
	}
	return n, nil
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	form, res := s.form, s.result
	s.mu.RUnlock()
	if res == nil {
		http.Error(w, "no topic tree has been generated yet", http.StatusNotFound)
		return
	}

	opts := form.RenderOptions()
	q := r.URL.Query()
	if v := q.Get("physics"); v != "" {
		opts.Physics, _ = strconv.ParseBool(v)
	}
	if v := q.Get("hierarchical"); v != "" {
		opts.Hierarchical, _ = strconv.ParseBool(v)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.WriteHTML(w, res.Config.RootTopic, res.Nodes, res.Edges, opts); err != nil {
		s.logger.Error("rendering graph page", zap.Error(err))
	}
}

func (s *Server) handleExport(write func(io.Writer, *tree.Result) error, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		res := s.Result()
		if res == nil {
			http.Error(w, "no topic tree has been generated yet", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", contentType)
		if err := write(w, res); err != nil {
			s.logger.Error("exporting result", zap.Error(err))
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// requestLogger logs each request with its status, size and duration.
func requestLogger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
