package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"iconscrape/internal/scraper"
)

func TestSessionFlow(t *testing.T) {
	s := New(fakeFetcher(map[string]int{"cat": 3, "dog": 2}), Options{Workers: 2})
	_, ok := s.View()
	require.False(t, ok)
	_, err := s.Advance(Next)
	require.ErrorIs(t, err, ErrNoSession)
	_, err = s.Click("cat", 0)
	require.ErrorIs(t, err, ErrNoSession)
	require.Empty(t, s.Selections())

	sum, err := s.Search(context.Background(), "cat;dog;bird")
	require.NoError(t, err)
	require.Equal(t, []string{"cat", "dog", "bird"}, sum.Queries)
	require.Equal(t, 5, sum.Results)
	require.Equal(t, 1, sum.Empty)
	require.Equal(t, sum.ID, s.ID())

	v, ok := s.View()
	require.True(t, ok)
	require.Equal(t, "cat", v.Query)
	require.Equal(t, 3, v.Pages)
	require.Len(t, v.Items, 3)

	_, err = s.Click("cat", 2)
	require.NoError(t, err)
	v, _ = s.View()
	require.True(t, v.Items[2].Selected)
	require.True(t, v.AnySelected)
	require.True(t, s.AnySelected())

	q, err := s.Advance(Previous)
	require.NoError(t, err)
	require.Equal(t, "bird", q)

	// a new search discards selections and pages
	_, err = s.Search(context.Background(), "dog")
	require.NoError(t, err)
	require.False(t, s.AnySelected())
	v, _ = s.View()
	require.Equal(t, "dog", v.Query)
	require.Equal(t, 0, v.Page)
}

func TestSessionStaleSearchDoesNotCommit(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	f := scraper.FetchFunc(func(ctx context.Context, q string) []string {
		if q == "old" {
			close(started)
			<-release
		}
		return []string{q + ".png"}
	})
	s := New(f, Options{})

	errc := make(chan error)
	go func() {
		_, err := s.Search(context.Background(), "old")
		errc <- err
	}()
	<-started

	sum, err := s.Search(context.Background(), "new")
	require.NoError(t, err)
	close(release)
	require.ErrorIs(t, <-errc, ErrSuperseded)

	require.Equal(t, sum.ID, s.ID())
	v, ok := s.View()
	require.True(t, ok)
	require.Equal(t, "new", v.Query)
}

func TestSessionCancelledSearchDoesNotCommit(t *testing.T) {
	s := New(fakeFetcher(map[string]int{"cat": 1}), Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Search(ctx, "cat")
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, "", s.ID())
}

func TestSessionsAreIndependent(t *testing.T) {
	f := fakeFetcher(map[string]int{"cat": 2})
	a, b := New(f, Options{}), New(f, Options{})
	_, err := a.Search(context.Background(), "cat")
	require.NoError(t, err)
	_, err = b.Search(context.Background(), "cat")
	require.NoError(t, err)
	_, err = a.Click("cat", 0)
	require.NoError(t, err)
	require.True(t, a.AnySelected())
	require.False(t, b.AnySelected())
}
