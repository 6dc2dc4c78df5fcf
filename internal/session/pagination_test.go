package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAdvanceScenario(t *testing.T) {
	st := StartSearch(context.Background(), fakeFetcher(nil), "cat;dog", Options{})
	q, _, _ := st.Current()
	require.Equal(t, "cat", q)

	q, err := st.Advance(Next)
	require.NoError(t, err)
	require.Equal(t, "dog", q)
	require.Equal(t, 1, st.Page())

	q, err = st.Advance(Next)
	require.NoError(t, err)
	require.Equal(t, "cat", q)
	require.Equal(t, 0, st.Page())

	q, err = st.Advance(Previous)
	require.NoError(t, err)
	require.Equal(t, "dog", q)
}

func TestAdvanceIsCyclic(t *testing.T) {
	st := StartSearch(context.Background(), fakeFetcher(nil), "a;b;c;d;e", Options{})
	_, _ = st.Advance(Next)
	_, _ = st.Advance(Next)
	start := st.Page()
	for _, dir := range []Direction{Next, Previous} {
		for i := 0; i < len(st.Queries()); i++ {
			_, err := st.Advance(dir)
			require.NoError(t, err)
		}
		require.Equal(t, start, st.Page(), "direction %s", dir)
	}
}

func TestAdvanceSingleQuery(t *testing.T) {
	st := StartSearch(context.Background(), fakeFetcher(nil), "cat", Options{})
	for _, dir := range []Direction{Next, Previous} {
		q, err := st.Advance(dir)
		require.NoError(t, err)
		require.Equal(t, "cat", q)
		require.Equal(t, 0, st.Page())
	}
}

func TestAdvanceWithoutSession(t *testing.T) {
	var st *State
	_, err := st.Advance(Next)
	require.ErrorIs(t, err, ErrNoSession)

	empty := &State{}
	_, err = empty.Advance(Previous)
	require.ErrorIs(t, err, ErrNoSession)
	require.Equal(t, 0, empty.Page())
}
