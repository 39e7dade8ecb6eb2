// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/topic-tree/internal/draft"
	"github.com/pdiddy/topic-tree/internal/expand"
	"github.com/pdiddy/topic-tree/internal/llm"
	"github.com/pdiddy/topic-tree/internal/metrics"
	"github.com/pdiddy/topic-tree/internal/publish"
	"github.com/pdiddy/topic-tree/internal/secrets"
	"github.com/pdiddy/topic-tree/internal/tree"
	"github.com/pdiddy/topic-tree/pkg/types"
)

const defaultUserAgent = "topic-tree/0.1"

// aiConfig reads the language model settings. The API key comes from
// llm.api_key or, failing that, the provider's secret file.
func aiConfig(v *viper.Viper, s secrets.Secrets) types.AIConfig {
	provider := v.GetString("llm.provider")
	key := secrets.OpenAIAPIKey
	if provider == types.ProviderAnthropic {
		key = secrets.AnthropicAPIKey
	}
	return types.AIConfig{
		HTTPConfig: httpConfig(v),
		Provider:   provider,
		Model:      v.GetString("llm.model"),
		APIKey:     s.Or(key, v.GetString("llm.api_key")),
	}
}

func metricsConfig(v *viper.Viper, s secrets.Secrets) types.MetricsConfig {
	return types.MetricsConfig{
		HTTPConfig:  httpConfig(v),
		APIKey:      s.Or(secrets.RapidAPIKey, v.GetString("metrics.api_key")),
		Host:        v.GetString("metrics.host"),
		CountryCode: v.GetString("metrics.country_code"),
		CachePath:   v.GetString("metrics.cache_path"),
		CacheTTL:    v.GetDuration("metrics.cache_ttl"),
	}
}

func wordpressConfig(v *viper.Viper, s secrets.Secrets) types.WordPressConfig {
	return types.WordPressConfig{
		HTTPConfig:  httpConfig(v),
		URL:         s.Or(secrets.WordPressURL, v.GetString("wordpress.url")),
		User:        s.Or(secrets.WordPressUser, v.GetString("wordpress.user")),
		AppPassword: s.Or(secrets.WordPressAppPassword, v.GetString("wordpress.app_password")),
		Status:      v.GetString("wordpress.status"),
	}
}

func httpConfig(v *viper.Viper) types.HTTPConfig {
	return types.HTTPConfig{
		Timeout:   v.GetDuration("http.timeout"),
		UserAgent: defaultUserAgent,
	}
}

// wiring is a tree builder plus what it was given.
type wiring struct {
	builder *tree.Builder
	metrics bool
	publish bool
	closers []func() error
}

func (w *wiring) Close() error {
	var first error
	for _, c := range w.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// need selects which optional collaborators are required. A required one
// that cannot be configured is an error; an optional one is skipped.
type need struct {
	metrics, publish       bool
	optMetrics, optPublish bool
}

// wire builds the tree builder and its collaborators from configuration.
func wire(v *viper.Viper, s secrets.Secrets, n need, log *zap.Logger) (*wiring, error) {
	client, err := llm.New(aiConfig(v, s))
	if err != nil {
		return nil, fmt.Errorf("configuring language model: %w", err)
	}

	w := &wiring{}
	opts := []tree.Option{tree.WithLogger(log)}

	if n.metrics || n.optMetrics {
		lookup, closer, err := metricsLookup(metricsConfig(v, s), log)
		switch {
		case err == nil:
			opts = append(opts, tree.WithMetrics(lookup))
			w.metrics = true
			if closer != nil {
				w.closers = append(w.closers, closer)
			}
		case n.metrics:
			w.Close()
			return nil, err
		default:
			log.Info("keyword data disabled", zap.Error(err))
		}
	}

	if n.publish || n.optPublish {
		pub, err := publish.NewWordPressPublisher(wordpressConfig(v, s))
		switch {
		case err == nil:
			opts = append(opts, tree.WithPublishing(draft.New(client), pub))
			w.publish = true
		case n.publish:
			w.Close()
			return nil, fmt.Errorf("configuring WordPress: %w", err)
		default:
			log.Info("blog post drafts disabled", zap.Error(err))
		}
	}

	w.builder = tree.New(expand.New(client), opts...)
	return w, nil
}

// metricsLookup returns the RapidAPI lookup, wrapped in the SQLite cache
// when a cache path is configured.
func metricsLookup(cfg types.MetricsConfig, log *zap.Logger) (tree.MetricsLookup, func() error, error) {
	if cfg.APIKey == "" {
		return nil, nil, fmt.Errorf("no RapidAPI key configured (set metrics.api_key or .secrets/%s)", secrets.RapidAPIKey)
	}
	api := metrics.NewRapidAPIClient(cfg)
	if cfg.CachePath == "" {
		return api, nil, nil
	}

	cache, err := metrics.OpenCache(cfg.CachePath)
	if err != nil {
		return nil, nil, err
	}
	return metrics.NewCachedLookup(api, cache, api.Country(), cfg.CacheTTL, log), cache.Close, nil
}
