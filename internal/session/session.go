package session

import (
	"context"
	"sync"

	"iconscrape/internal/scraper"
)

// Session owns the current State of one user. Every operation holds the
// session lock for its whole duration except the network part of Search,
// so mutations never interleave. Separate users get separate Sessions.
type Session struct {
	mu      sync.Mutex
	fetcher scraper.Fetcher
	opts    Options
	state   *State
	gen     uint64
}

// Summary describes a committed search.
type Summary struct {
	ID      string
	Queries []string
	Results int
	// Empty counts queries that came back without results.
	Empty int
}

// View is a render-ready copy of the current page.
type View struct {
	ID          string
	Query       string
	Page        int
	Pages       int
	Items       []ViewItem
	AnySelected bool
}

// ViewItem is one item on the current page.
type ViewItem struct {
	ResultItem
	Selected bool
}

func New(fetcher scraper.Fetcher, opts Options) *Session {
	return &Session{fetcher: fetcher, opts: opts}
}

// Search runs StartSearch and installs the result as the current State.
// If another Search starts before this one finishes, the older result is
// dropped and ErrSuperseded returned; the newer state is never overwritten.
func (s *Session) Search(ctx context.Context, raw string) (Summary, error) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	st := StartSearch(ctx, s.fetcher, raw, s.opts)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return Summary{}, ErrSuperseded
	}
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}
	s.state = st
	sum := Summary{ID: st.ID, Queries: st.Queries(), Results: st.ResultCount()}
	for _, q := range st.queries {
		if len(st.results[q]) == 0 {
			sum.Empty++
		}
	}
	return sum, nil
}

// Advance moves the page; see State.Advance.
func (s *Session) Advance(dir Direction) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Advance(dir)
}

// Click registers a click on an item; see State.RegisterClick.
func (s *Session) Click(query string, index int) (ClickResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.RegisterClick(query, index)
}

// Selections returns a snapshot of all download lists in query order.
func (s *Session) Selections() []Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Selections()
}

func (s *Session) AnySelected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.AnySelected()
}

// ID returns the generation id of the current State, "" before any search.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return ""
	}
	return s.state.ID
}

// View returns the current page. ok is false when there is nothing to show.
func (s *Session) View() (View, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, items, ok := s.state.Current()
	if !ok {
		return View{}, false
	}
	v := View{
		ID:          s.state.ID,
		Query:       q,
		Page:        s.state.page,
		Pages:       len(s.state.queries),
		Items:       make([]ViewItem, len(items)),
		AnySelected: s.state.AnySelected(),
	}
	for i, it := range items {
		v.Items[i] = ViewItem{ResultItem: it, Selected: s.state.Selected(q, it.Index)}
	}
	return v, true
}
