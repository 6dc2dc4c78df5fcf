package session

import "errors"

var (
	// ErrNoSession is returned when an operation needs queries and there are none.
	ErrNoSession = errors.New("no active search")
	// ErrInvalidAction is returned for clicks on unknown queries or out of range items.
	ErrInvalidAction = errors.New("invalid action")
	// ErrSuperseded is returned by Session.Search when a newer search started
	// before this one finished; its results were discarded.
	ErrSuperseded = errors.New("search superseded by a newer one")
)

// ResultItem is one scraped icon. (Query, Index) identifies it for the
// lifetime of a State.
type ResultItem struct {
	Query string `json:"query"`
	Index int    `json:"index"`
	URL   string `json:"url"`
}

// Selection is the download list of one query, in selection order.
type Selection struct {
	Query string   `json:"query"`
	URLs  []string `json:"urls"`
}

// Direction selects the page Advance moves to.
type Direction int

const (
	Next Direction = iota
	Previous
)

func (d Direction) String() string {
	if d == Previous {
		return "previous"
	}
	return "next"
}

// ClickResult reports the effect of RegisterClick.
type ClickResult struct {
	// Updated holds the item indexes whose download-list membership changed.
	Updated []int
	// AnySelected is true when any query's download list is non-empty.
	AnySelected bool
}
