// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/pdiddy/topic-tree/pkg/types"
)

// DefaultCacheTTL is how long a cached volume is served before it is
// fetched again.
const DefaultCacheTTL = 7 * 24 * time.Hour

// Lookup returns search volumes for keywords, one record per keyword in
// input order.
type Lookup interface {
	Lookup(ctx context.Context, keywords []string) ([]types.KeywordMetric, error)
}

// Cache stores known keyword volumes in a SQLite database.
type Cache struct {
	db *sql.DB
}

// OpenCache opens or creates the cache database at path.
func OpenCache(path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	c := &Cache{db: db}
	if err := c.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return c, nil
}

// Close releases the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) createSchema() error {
	_, err := c.db.Exec(`CREATE TABLE IF NOT EXISTS keyword_volumes (
		keyword TEXT NOT NULL,
		country TEXT NOT NULL,
		volume INTEGER NOT NULL,
		fetched_at INTEGER NOT NULL,
		PRIMARY KEY (keyword, country)
	)`)
	return err
}

// Get returns the volumes cached for keywords in country that were fetched
// at or after since, keyed by normalized keyword.
func (c *Cache) Get(ctx context.Context, country string, keywords []string, since time.Time) (map[string]int64, error) {
	out := make(map[string]int64)
	if len(keywords) == 0 {
		return out, nil
	}

	args := make([]any, 0, len(keywords)+2)
	args = append(args, country, since.Unix())
	placeholders := make([]string, len(keywords))
	for i, kw := range keywords {
		placeholders[i] = "?"
		args = append(args, normalizeKeyword(kw))
	}

	rows, err := c.db.QueryContext(ctx,
		`SELECT keyword, volume FROM keyword_volumes
		 WHERE country = ? AND fetched_at >= ? AND keyword IN (`+strings.Join(placeholders, ",")+`)`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("querying cache: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kw string
		var v int64
		if err := rows.Scan(&kw, &v); err != nil {
			return nil, fmt.Errorf("scanning cache row: %w", err)
		}
		out[kw] = v
	}
	return out, rows.Err()
}

// Put stores the known volumes in metrics. Unavailable volumes are skipped.
func (c *Cache) Put(ctx context.Context, country string, metrics []types.KeywordMetric, at time.Time) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning cache transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO keyword_volumes (keyword, country, volume, fetched_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(keyword, country) DO UPDATE SET volume = excluded.volume, fetched_at = excluded.fetched_at`)
	if err != nil {
		return fmt.Errorf("preparing cache insert: %w", err)
	}
	defer stmt.Close()

	ts := at.Unix()
	for _, m := range metrics {
		v, ok := m.Volume.Value()
		if !ok {
			continue
		}
		if _, err := stmt.ExecContext(ctx, normalizeKeyword(m.Keyword), country, v, ts); err != nil {
			return fmt.Errorf("caching %q: %w", m.Keyword, err)
		}
	}
	return tx.Commit()
}

// CachedLookup serves fresh cached volumes and asks Next only for the
// rest. Cache failures fall back to Next for every keyword.
type CachedLookup struct {
	Next    Lookup
	Cache   *Cache
	Country string
	TTL     time.Duration
	Logger  *zap.Logger

	now func() time.Time
}

// NewCachedLookup wraps next with cache.
func NewCachedLookup(next Lookup, cache *Cache, country string, ttl time.Duration, logger *zap.Logger) *CachedLookup {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedLookup{Next: next, Cache: cache, Country: country, TTL: ttl, Logger: logger, now: time.Now}
}

// Lookup implements Lookup.
func (l *CachedLookup) Lookup(ctx context.Context, keywords []string) ([]types.KeywordMetric, error) {
	now := l.now()

	cached, err := l.Cache.Get(ctx, l.Country, keywords, now.Add(-l.TTL))
	if err != nil {
		l.Logger.Warn("keyword cache read failed", zap.Error(err))
		return l.Next.Lookup(ctx, keywords)
	}

	var misses []string
	seen := make(map[string]bool)
	for _, kw := range keywords {
		key := normalizeKeyword(kw)
		if _, ok := cached[key]; ok || seen[key] {
			continue
		}
		seen[key] = true
		misses = append(misses, kw)
	}

	l.Logger.Debug("keyword cache",
		zap.Int("hits", len(keywords)-len(misses)),
		zap.Int("misses", len(misses)))

	fetched := make(map[string]types.Volume)
	if len(misses) > 0 {
		res, err := l.Next.Lookup(ctx, misses)
		if err != nil {
			return nil, err
		}
		if err := l.Cache.Put(ctx, l.Country, res, now); err != nil {
			l.Logger.Warn("keyword cache write failed", zap.Error(err))
		}
		for _, m := range res {
			fetched[normalizeKeyword(m.Keyword)] = m.Volume
		}
	}

	out := make([]types.KeywordMetric, len(keywords))
	for i, kw := range keywords {
		key := normalizeKeyword(kw)
		if v, ok := cached[key]; ok {
			out[i] = types.KeywordMetric{Keyword: kw, Volume: types.KnownVolume(v)}
			continue
		}
		out[i] = types.KeywordMetric{Keyword: kw, Volume: fetched[key]}
	}
	return out, nil
}
