package scraper

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"iconscrape/internal/config"
	"iconscrape/internal/logging"
)

type cacheEntry struct {
	URLs      []string `json:"urls"`
	UpdatedAt int64    `json:"updated_at"`
}

// Cached remembers non-empty results of the wrapped Fetcher in a JSON file
// under general.data_root. Empty results are never stored so a failed
// query is retried on the next search.
type Cached struct {
	next Fetcher
	path string
	ttl  time.Duration
	log  *logging.Logger
	mu   sync.Mutex
	now  func() time.Time
}

// NewCached wraps next. It returns next unchanged when the cache is disabled
// (cache_ttl_hours is 0) or no data_root is configured.
func NewCached(cfg *config.Config, next Fetcher, log *logging.Logger) Fetcher {
	if cfg == nil || cfg.Source.CacheTTLHours <= 0 || cfg.General.DataRoot == "" {
		return next
	}
	return &Cached{
		next: next,
		path: filepath.Join(cfg.General.DataRoot, "scrape-cache.json"),
		ttl:  time.Duration(cfg.Source.CacheTTLHours) * time.Hour,
		log:  log.Named("cache"),
		now:  time.Now,
	}
}

func (c *Cached) Fetch(ctx context.Context, query string) []string {
	if urls, ok := c.get(query); ok {
		c.log.Debugf("hit %q (%d icons)", query, len(urls))
		return urls
	}
	urls := c.next.Fetch(ctx, query)
	if len(urls) > 0 {
		if err := c.set(query, urls); err != nil {
			c.log.Warnf("cache write: %v", err)
		}
	}
	return urls
}

func (c *Cached) get(query string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, err := loadCache(c.path)
	if err != nil {
		c.log.Warnf("cache read: %v", err)
		return nil, false
	}
	ce, ok := m[query]
	if !ok {
		return nil, false
	}
	if c.now().Sub(time.Unix(ce.UpdatedAt, 0)) > c.ttl {
		delete(m, query)
		_ = saveCache(c.path, m)
		return nil, false
	}
	return append([]string(nil), ce.URLs...), true
}

func (c *Cached) set(query string, urls []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, err := loadCache(c.path)
	if err != nil {
		m = map[string]cacheEntry{}
	}
	m[query] = cacheEntry{URLs: urls, UpdatedAt: c.now().Unix()}
	return saveCache(c.path, m)
}

// Clear removes the cache file.
func (c *Cached) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func loadCache(path string) (map[string]cacheEntry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]cacheEntry{}, nil
		}
		return nil, err
	}
	if len(b) == 0 {
		return map[string]cacheEntry{}, nil
	}
	var m map[string]cacheEntry
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = map[string]cacheEntry{}
	}
	return m, nil
}

func saveCache(path string, m map[string]cacheEntry) error {
	tmp := path + ".tmp"
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
