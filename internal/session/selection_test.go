package session

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func newCatDog(t *testing.T) *State {
	t.Helper()
	return StartSearch(context.Background(), fakeFetcher(map[string]int{"cat": 3, "dog": 4}), "cat;dog", Options{})
}

// requireConsistent checks that every item is listed iff its counter is odd.
func requireConsistent(t *testing.T, st *State) {
	t.Helper()
	anyOdd := false
	for _, q := range st.Queries() {
		list := st.DownloadList(q)
		for _, it := range st.Results(q) {
			odd := st.Counter(q, it.Index)%2 == 1
			anyOdd = anyOdd || odd
			require.Equal(t, odd, indexOf(list, it.URL) >= 0, "query %q item %d", q, it.Index)
		}
	}
	require.Equal(t, anyOdd, st.AnySelected())
}

func TestRegisterClickToggleScenario(t *testing.T) {
	st := newCatDog(t)
	item1 := st.Results("cat")[1].URL

	res, err := st.RegisterClick("cat", 1)
	require.NoError(t, err)
	require.Equal(t, []int{1}, res.Updated)
	require.True(t, res.AnySelected)
	require.Equal(t, []string{item1}, st.DownloadList("cat"))

	res, err = st.RegisterClick("cat", 1)
	require.NoError(t, err)
	require.Equal(t, []int{1}, res.Updated)
	require.False(t, res.AnySelected)
	require.Empty(t, st.DownloadList("cat"))
}

func TestRegisterClickPreservesSelectionOrder(t *testing.T) {
	st := newCatDog(t)
	urls := st.Results("dog")
	for _, i := range []int{2, 0, 3} {
		_, err := st.RegisterClick("dog", i)
		require.NoError(t, err)
	}
	require.Equal(t, []string{urls[2].URL, urls[0].URL, urls[3].URL}, st.DownloadList("dog"))

	_, err := st.RegisterClick("dog", 0)
	require.NoError(t, err)
	require.Equal(t, []string{urls[2].URL, urls[3].URL}, st.DownloadList("dog"))
}

func TestRegisterClickParity(t *testing.T) {
	for clicks := 1; clicks <= 6; clicks++ {
		st := newCatDog(t)
		for i := 0; i < clicks; i++ {
			_, err := st.RegisterClick("dog", 2)
			require.NoError(t, err)
		}
		require.Equal(t, clicks%2 == 1, st.Selected("dog", 2), "clicks=%d", clicks)
		require.Equal(t, clicks, st.Counter("dog", 2))
	}
}

func TestInvariantHoldsAfterEveryClick(t *testing.T) {
	st := newCatDog(t)
	rng := rand.New(rand.NewSource(7))
	queries := []string{"cat", "dog"}
	for i := 0; i < 200; i++ {
		q := queries[rng.Intn(len(queries))]
		_, err := st.RegisterClick(q, rng.Intn(len(st.Results(q))))
		require.NoError(t, err)
		requireConsistent(t, st)
	}
}

func TestSelectionsSurvivePageChanges(t *testing.T) {
	st := newCatDog(t)
	_, err := st.RegisterClick("cat", 0)
	require.NoError(t, err)
	_, _ = st.Advance(Next)
	_, err = st.RegisterClick("dog", 3)
	require.NoError(t, err)
	_, _ = st.Advance(Next)

	require.True(t, st.Selected("cat", 0))
	require.True(t, st.Selected("dog", 3))
	sels := st.Selections()
	require.Equal(t, "cat", sels[0].Query)
	require.Len(t, sels[0].URLs, 1)
	require.Equal(t, "dog", sels[1].Query)
	require.Len(t, sels[1].URLs, 1)
}

func TestReconcileRepairsDriftAndIsIdempotent(t *testing.T) {
	st := newCatDog(t)
	urls := st.Results("cat")
	st.counters["cat"] = []int{1, 2, 3}
	st.downloads["cat"] = []string{urls[1].URL}

	updated := st.Reconcile("cat")
	require.Equal(t, []int{0, 1, 2}, updated)
	require.Equal(t, []string{urls[0].URL, urls[2].URL}, st.DownloadList("cat"))

	require.Empty(t, st.Reconcile("cat"))
	require.Equal(t, []string{urls[0].URL, urls[2].URL}, st.DownloadList("cat"))
	requireConsistent(t, st)
}

func TestReconcileFromCountersAlone(t *testing.T) {
	st := newCatDog(t)
	urls := st.Results("dog")
	st.counters["dog"] = []int{0, 5, 0, 2}
	st.Reconcile("dog")
	require.Equal(t, []string{urls[1].URL}, st.DownloadList("dog"))
}

func TestRegisterClickInvalidActions(t *testing.T) {
	st := newCatDog(t)
	_, err := st.RegisterClick("bird", 0)
	require.ErrorIs(t, err, ErrInvalidAction)
	_, err = st.RegisterClick("cat", 3)
	require.ErrorIs(t, err, ErrInvalidAction)
	_, err = st.RegisterClick("cat", -1)
	require.ErrorIs(t, err, ErrInvalidAction)
	for i := range st.Results("cat") {
		require.Equal(t, 0, st.Counter("cat", i))
	}
	require.False(t, st.AnySelected())

	var none *State
	_, err = none.RegisterClick("cat", 0)
	require.ErrorIs(t, err, ErrNoSession)
}

func TestDuplicateURLsWithinQuery(t *testing.T) {
	st := newCatDog(t)
	st.results["cat"][2] = st.results["cat"][0]
	u := st.results["cat"][0]

	_, err := st.RegisterClick("cat", 0)
	require.NoError(t, err)
	require.Equal(t, []string{u}, st.DownloadList("cat"))

	_, err = st.RegisterClick("cat", 2)
	require.NoError(t, err)
	require.Equal(t, []string{u}, st.DownloadList("cat"))

	_, err = st.RegisterClick("cat", 0)
	require.NoError(t, err)
	require.Equal(t, []string{u}, st.DownloadList("cat"), "still selected through item 2")
}

// indexOf returns the position of s in list, or -1.
func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
