package searcher

import (
	"context"
	"testing"

	"github.com/arjun-mahar/recordsearch/internal/index"
	"github.com/arjun-mahar/recordsearch/internal/indexer"
	"github.com/arjun-mahar/recordsearch/internal/searcher/parser"
	apperrors "github.com/arjun-mahar/recordsearch/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSnapshot(t *testing.T, records ...indexer.Record) *index.Snapshot {
	t.Helper()
	snap, err := indexer.New(0, nil).Build(context.Background(), indexer.NewSliceSource(records...))
	require.NoError(t, err)
	return snap
}

func TestSearchSingleTerm(t *testing.T) {
	snap := buildSnapshot(t,
		indexer.Record{ExternalID: "t1", Text: "vaccine rollout"},
		indexer.Record{ExternalID: "t2", Text: "weather report"},
		indexer.Record{ExternalID: "t3", Text: "vaccine shortage"},
	)

	ids, err := Search(snap, "vaccine")
	require.NoError(t, err)
	// Most recently indexed first.
	assert.Equal(t, []string{"t3", "t1"}, ids)

	e, ok := snap.Dict.Lookup("vaccine")
	require.True(t, ok)
	assert.Len(t, ids, e.DocFreq)
}

func TestSearchUnknownTerm(t *testing.T) {
	snap := buildSnapshot(t, indexer.Record{ExternalID: "t1", Text: "hello"})

	ids, err := Search(snap, "absent")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSearchZeroTerms(t *testing.T) {
	snap := buildSnapshot(t, indexer.Record{ExternalID: "t1", Text: "hello"})

	_, err := Search(snap)
	assert.ErrorIs(t, err, apperrors.ErrInvalidQuery)
}

func TestSearchNilSnapshot(t *testing.T) {
	_, err := Search(nil, "term")
	assert.ErrorIs(t, err, apperrors.ErrIndexNotReady)
}

func TestSearchMultiTermIntersection(t *testing.T) {
	snap := buildSnapshot(t,
		indexer.Record{ExternalID: "t1", Text: "side effects of the vaccine"},
		indexer.Record{ExternalID: "t2", Text: "side effects of malaria vaccine"},
		indexer.Record{ExternalID: "t3", Text: "malaria prevention"},
	)

	ids, err := Search(snap, "side", "effects")
	require.NoError(t, err)
	assert.Equal(t, []string{"t2", "t1"}, ids)

	ids, err = Search(snap, "malaria", "vaccine")
	require.NoError(t, err)
	assert.Equal(t, []string{"t2"}, ids)
}

func TestSearchMultiTermWithUnknownTerm(t *testing.T) {
	snap := buildSnapshot(t,
		indexer.Record{ExternalID: "t1", Text: "alpha beta"},
	)

	ids, err := Search(snap, "alpha", "missing")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSearchRepeatedTerm(t *testing.T) {
	// Intersecting a term with itself is wasteful but correct.
	snap := buildSnapshot(t,
		indexer.Record{ExternalID: "t1", Text: "alpha"},
		indexer.Record{ExternalID: "t2", Text: "alpha beta"},
	)

	ids, err := Search(snap, "alpha", "alpha")
	require.NoError(t, err)
	assert.Equal(t, []string{"t2", "t1"}, ids)
}

func TestSearchIntersectionMatchesSingleTermSets(t *testing.T) {
	// Multi-term result must equal the set intersection of the
	// single-term results.
	snap := buildSnapshot(t,
		indexer.Record{ExternalID: "a", Text: "x y"},
		indexer.Record{ExternalID: "b", Text: "x z"},
		indexer.Record{ExternalID: "c", Text: "x y z"},
		indexer.Record{ExternalID: "d", Text: "y z"},
	)

	xIDs, err := Search(snap, "x")
	require.NoError(t, err)
	yIDs, err := Search(snap, "y")
	require.NoError(t, err)
	both, err := Search(snap, "x", "y")
	require.NoError(t, err)

	want := intersectStrings(xIDs, yIDs)
	assert.ElementsMatch(t, want, both)
	assert.Equal(t, []string{"c", "a"}, both)
}

func TestSearchSkippedRecordsNeverSurface(t *testing.T) {
	snap := buildSnapshot(t,
		indexer.Record{ExternalID: "skipped", Text: ""},
		indexer.Record{ExternalID: "kept", Text: "hello world"},
	)

	ids, err := Search(snap, "hello")
	require.NoError(t, err)
	assert.Equal(t, []string{"kept"}, ids)
}

func TestExecutorNotReady(t *testing.T) {
	e := NewExecutor(nil)
	_, err := e.Execute(context.Background(), parser.Parse("hello"), 10)
	assert.ErrorIs(t, err, apperrors.ErrIndexNotReady)
}

func TestExecutorLimitsResults(t *testing.T) {
	snap := buildSnapshot(t,
		indexer.Record{ExternalID: "t1", Text: "common"},
		indexer.Record{ExternalID: "t2", Text: "common"},
		indexer.Record{ExternalID: "t3", Text: "common"},
	)
	e := NewExecutor(nil)
	e.Swap(snap)

	result, err := e.Execute(context.Background(), parser.Parse("common"), 2)
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalHits)
	assert.Equal(t, []string{"t3", "t2"}, result.IDs)
}

func TestExecutorSwapReplacesSnapshot(t *testing.T) {
	e := NewExecutor(nil)
	e.Swap(buildSnapshot(t, indexer.Record{ExternalID: "old", Text: "stale"}))
	e.Swap(buildSnapshot(t, indexer.Record{ExternalID: "new", Text: "fresh"}))

	result, err := e.Execute(context.Background(), parser.Parse("fresh"), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, result.IDs)

	result, err = e.Execute(context.Background(), parser.Parse("stale"), 10)
	require.NoError(t, err)
	assert.Empty(t, result.IDs)
}

func intersectStrings(a, b []string) []string {
	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		set[s] = struct{}{}
	}
	var out []string
	for _, s := range b {
		if _, ok := set[s]; ok {
			out = append(out, s)
		}
	}
	return out
}
