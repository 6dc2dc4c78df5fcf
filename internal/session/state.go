// Package session holds the state of one user's icon search: the queries
// of the latest submission, their results, per-item click counters, the
// per-query download lists and the current page.
package session

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"iconscrape/internal/logging"
	"iconscrape/internal/scraper"
)

// State is replaced wholesale by every search. Its methods are not safe for
// concurrent use; Session serializes access.
type State struct {
	// ID identifies the search generation that produced this State.
	ID string

	queries   []string
	results   map[string][]string
	counters  map[string][]int
	downloads map[string][]string
	page      int
	log       *logging.Logger
}

// Options tunes StartSearch.
type Options struct {
	// Workers bounds concurrent fetcher calls. Values < 1 mean 1.
	Workers int
	Log     *logging.Logger
}

// ParseQueries splits raw on ';' and trims every segment. Input without
// ';' is a single trimmed query. Empty segments are kept.
func ParseQueries(raw string) []string {
	if !strings.Contains(raw, ";") {
		return []string{strings.TrimSpace(raw)}
	}
	parts := strings.Split(raw, ";")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// StartSearch parses raw, calls fetcher once per query and returns a fresh
// State. Fetches may run concurrently; results are stored in query order
// with item indexes in fetch order. A later duplicate query overwrites the
// results of an earlier one.
func StartSearch(ctx context.Context, fetcher scraper.Fetcher, raw string, opts Options) *State {
	queries := ParseQueries(raw)
	fetched := make([][]string, len(queries))

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			fetched[i] = fetcher.Fetch(gctx, q)
			return nil
		})
	}
	_ = g.Wait()

	st := &State{
		ID:        uuid.NewString(),
		queries:   queries,
		results:   make(map[string][]string, len(queries)),
		counters:  make(map[string][]int, len(queries)),
		downloads: make(map[string][]string, len(queries)),
		log:       opts.Log.Named("session"),
	}
	for i, q := range queries {
		urls := append([]string(nil), fetched[i]...)
		st.results[q] = urls
		st.counters[q] = make([]int, len(urls))
		st.downloads[q] = []string{}
	}
	st.log.Infof("search %s: queries %q", st.ID, queries)
	return st
}

// Queries returns the queries of the submission, duplicates included.
func (s *State) Queries() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.queries...)
}

// Page returns the current page index (0 when there are no queries).
func (s *State) Page() int {
	if s == nil {
		return 0
	}
	return s.page
}

// Results returns the items of query, or nil for an unknown query.
func (s *State) Results(query string) []ResultItem {
	if s == nil {
		return nil
	}
	urls, ok := s.results[query]
	if !ok {
		return nil
	}
	items := make([]ResultItem, len(urls))
	for i, u := range urls {
		items[i] = ResultItem{Query: query, Index: i, URL: u}
	}
	return items
}

// Current returns the query on the current page and a fresh read of its
// results. ok is false when there are no queries.
func (s *State) Current() (query string, items []ResultItem, ok bool) {
	if s == nil || len(s.queries) == 0 {
		return "", nil, false
	}
	q := s.queries[s.page]
	return q, s.Results(q), true
}

// Selected reports whether the item's counter is odd.
func (s *State) Selected(query string, index int) bool {
	if s == nil {
		return false
	}
	c, ok := s.counters[query]
	if !ok || index < 0 || index >= len(c) {
		return false
	}
	return c[index]%2 == 1
}

// Counter returns the click counter of an item, or 0 when it does not exist.
func (s *State) Counter(query string, index int) int {
	if s == nil {
		return 0
	}
	c, ok := s.counters[query]
	if !ok || index < 0 || index >= len(c) {
		return 0
	}
	return c[index]
}

// DownloadList returns a copy of query's download list.
func (s *State) DownloadList(query string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.downloads[query]...)
}

// Selections returns a snapshot of every download list in query order. A
// query typed more than once appears once, at its first position.
func (s *State) Selections() []Selection {
	if s == nil {
		return nil
	}
	seen := make(map[string]bool, len(s.queries))
	out := make([]Selection, 0, len(s.queries))
	for _, q := range s.queries {
		if seen[q] {
			continue
		}
		seen[q] = true
		out = append(out, Selection{Query: q, URLs: append([]string(nil), s.downloads[q]...)})
	}
	return out
}

// AnySelected is true iff the concatenation of all download lists is non-empty.
func (s *State) AnySelected() bool {
	if s == nil {
		return false
	}
	for _, q := range s.queries {
		if len(s.downloads[q]) > 0 {
			return true
		}
	}
	return false
}

// ResultCount is the number of items across all distinct queries.
func (s *State) ResultCount() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, urls := range s.results {
		n += len(urls)
	}
	return n
}
