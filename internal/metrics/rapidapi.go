// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics looks up keyword search volumes.
//
// RapidAPIClient queries the bulk keyword metrics API; Cache keeps known
// volumes in SQLite so repeated runs do not pay for the same keywords.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/topic-tree/internal/httputil"
	"github.com/pdiddy/topic-tree/pkg/types"
)

// rapidAPIBase is the bulk keyword metrics endpoint. Declared as a var so
// tests can substitute an httptest server.
var rapidAPIBase = "https://bulk-keyword-metrics.p.rapidapi.com/seo-tools/get-bulk-keyword-metrics"

const (
	// DefaultHost is the RapidAPI host header for the bulk keyword metrics API.
	DefaultHost = "bulk-keyword-metrics.p.rapidapi.com"

	// DefaultCountryCode is the search market used when none is configured.
	DefaultCountryCode = "US"

	// MaxBatch is the most keywords the API accepts in one call.
	MaxBatch = 20
)

// RapidAPIClient queries the bulk keyword metrics API on RapidAPI.
type RapidAPIClient struct {
	Client      *http.Client
	APIKey      string
	Host        string
	CountryCode string
	UserAgent   string
}

// NewRapidAPIClient builds a client from cfg, filling defaults.
func NewRapidAPIClient(cfg types.MetricsConfig) *RapidAPIClient {
	c := &RapidAPIClient{
		Client:      httputil.NewClient(cfg.Timeout),
		APIKey:      cfg.APIKey,
		Host:        cfg.Host,
		CountryCode: cfg.CountryCode,
		UserAgent:   cfg.UserAgent,
	}
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.CountryCode == "" {
		c.CountryCode = DefaultCountryCode
	}
	return c
}

// Country returns the search market the client queries.
func (c *RapidAPIClient) Country() string {
	return c.CountryCode
}

// Lookup returns one record per keyword, in input order. Keywords the API
// does not report on are unavailable. Commas separate keywords in the
// query, so a comma inside a keyword is sent as a space. Keywords are sent in chunks of at
// most MaxBatch; any failed chunk fails the whole lookup.
func (c *RapidAPIClient) Lookup(ctx context.Context, keywords []string) ([]types.KeywordMetric, error) {
	out := make([]types.KeywordMetric, 0, len(keywords))
	for start := 0; start < len(keywords); start += MaxBatch {
		end := min(start+MaxBatch, len(keywords))
		chunk, err := c.lookupChunk(ctx, keywords[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
	}
	return out, nil
}

func (c *RapidAPIClient) lookupChunk(ctx context.Context, keywords []string) ([]types.KeywordMetric, error) {
	query := make([]string, len(keywords))
	for i, kw := range keywords {
		query[i] = queryKeyword(kw)
	}
	params := url.Values{
		"keywords_count": {strconv.Itoa(len(keywords))},
		"query":          {strings.Join(query, ",")},
		"countryCode":    {c.CountryCode},
	}
	reqURL := rapidAPIBase + "?" + params.Encode()

	req, err := httputil.NewJSONRequest(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-RapidAPI-Key", c.APIKey)
	req.Header.Set("X-RapidAPI-Host", c.Host)
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	var resp rapidResponse
	if err := httputil.DoJSON(c.Client, req, http.StatusOK, &resp); err != nil {
		return nil, fmt.Errorf("keyword metrics API request: %w", err)
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "request was not successful"
		}
		return nil, fmt.Errorf("keyword metrics API: %s", msg)
	}

	byKeyword := make(map[string]types.Volume, len(resp.Result))
	for _, r := range resp.Result {
		key := normalizeKeyword(r.Keyword)
		if _, dup := byKeyword[key]; !dup {
			byKeyword[key] = r.SearchVolume
		}
	}

	out := make([]types.KeywordMetric, len(keywords))
	for i, kw := range keywords {
		out[i] = types.KeywordMetric{Keyword: kw, Volume: byKeyword[normalizeKeyword(kw)]}
	}
	return out, nil
}

// queryKeyword is kw as sent in the comma-separated query.
func queryKeyword(kw string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(kw, ",", " ")), " ")
}

// normalizeKeyword folds case, commas and inner whitespace so API echoes
// match the keywords that were sent.
func normalizeKeyword(s string) string {
	return strings.ToLower(queryKeyword(s))
}

// Bulk keyword metrics API JSON structures.
type rapidResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Result  []rapidKeyword `json:"result"`
}

type rapidKeyword struct {
	Keyword      string       `json:"keyword"`
	SearchVolume types.Volume `json:"searchVolume"`
}
