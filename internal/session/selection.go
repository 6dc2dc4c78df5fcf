package session

import (
	"fmt"

	"iconscrape/internal/logging"
)

// RegisterClick counts one click on (query, index) and reconciles the
// query's download list against its counters.
func (s *State) RegisterClick(query string, index int) (ClickResult, error) {
	if s == nil || len(s.queries) == 0 {
		return ClickResult{}, ErrNoSession
	}
	counters, ok := s.counters[query]
	if !ok {
		return ClickResult{AnySelected: s.AnySelected()}, fmt.Errorf("%w: unknown query %q", ErrInvalidAction, query)
	}
	if index < 0 || index >= len(counters) {
		return ClickResult{AnySelected: s.AnySelected()}, fmt.Errorf("%w: item %d out of range for %q (%d items)", ErrInvalidAction, index, query, len(counters))
	}
	counters[index]++
	updated := s.Reconcile(query)
	return ClickResult{Updated: updated, AnySelected: s.AnySelected()}, nil
}

// Reconcile makes query's download list agree with its counters: a URL is
// listed iff one of its items has an odd counter. Missing URLs are appended
// in item order, unwanted ones removed, and the rest keep their relative
// order. It returns the item indexes whose membership changed; a second call
// without new clicks returns nothing.
func (s *State) Reconcile(query string) []int {
	if s == nil {
		return nil
	}
	counters, ok := s.counters[query]
	if !ok {
		return nil
	}
	urls := s.results[query]

	want := make(map[string]bool, len(counters))
	for i, c := range counters {
		if c%2 == 1 {
			want[urls[i]] = true
		}
	}

	changed := make(map[string]bool)
	listed := make(map[string]bool, len(want))
	kept := make([]string, 0, len(want))
	for _, u := range s.downloads[query] {
		switch {
		case !want[u]:
			changed[u] = true
			s.log.Infof("remove from download list [%s]", logging.SanitizeURL(u))
		case !listed[u]:
			listed[u] = true
			kept = append(kept, u)
		}
	}
	for i, c := range counters {
		u := urls[i]
		if c%2 == 1 && !listed[u] {
			listed[u] = true
			kept = append(kept, u)
			changed[u] = true
			s.log.Infof("add to download list [%s]", logging.SanitizeURL(u))
		}
	}
	s.downloads[query] = kept

	var updated []int
	for i, u := range urls {
		if changed[u] {
			updated = append(updated, i)
		}
	}
	return updated
}
