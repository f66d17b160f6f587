package indexer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAssignsPositionalIDs(t *testing.T) {
	snap, err := New(0, nil).Build(context.Background(), NewSliceSource(
		Record{ExternalID: "a", Text: "alpha"},
		Record{ExternalID: "b", Text: "beta"},
	))
	require.NoError(t, err)

	assert.Equal(t, 2, snap.Docs)
	assert.Equal(t, 2, snap.Resolver.Len())

	ext, ok := snap.Resolver.Resolve(0)
	require.True(t, ok)
	assert.Equal(t, "a", ext)
	ext, ok = snap.Resolver.Resolve(1)
	require.True(t, ok)
	assert.Equal(t, "b", ext)
}

func TestBuildSkipsEmptyText(t *testing.T) {
	// Internal id 0 is consumed by the skipped record but never
	// indexed: the resolver has a hole at 0 and an entry at 1.
	snap, err := New(0, nil).Build(context.Background(), NewSliceSource(
		Record{ExternalID: "skipped", Text: ""},
		Record{ExternalID: "kept", Text: "hello world"},
	))
	require.NoError(t, err)

	assert.Equal(t, 2, snap.Docs)
	assert.Equal(t, 1, snap.Resolver.Len())

	_, ok := snap.Resolver.Resolve(0)
	assert.False(t, ok)

	e, ok := snap.Dict.Lookup("hello")
	require.True(t, ok)
	assert.Equal(t, []uint32{1}, e.Postings.DocIDs())
}

func TestBuildSkipsTextWithNoContent(t *testing.T) {
	snap, err := New(0, nil).Build(context.Background(), NewSliceSource(
		Record{ExternalID: "punct", Text: "!!! ... ???"},
		Record{ExternalID: "markers", Text: "[NEWLINE][TAB]"},
	))
	require.NoError(t, err)

	assert.Equal(t, 2, snap.Docs)
	assert.Equal(t, 0, snap.Resolver.Len())
	assert.Equal(t, 0, snap.Dict.Terms())
}

func TestBuildEachTypeIndexedOncePerDocument(t *testing.T) {
	// Repeated tokens contribute a single posting per term.
	snap, err := New(0, nil).Build(context.Background(), NewSliceSource(
		Record{ExternalID: "r0", Text: "spam spam spam eggs"},
	))
	require.NoError(t, err)

	e, ok := snap.Dict.Lookup("spam")
	require.True(t, ok)
	assert.Equal(t, 1, e.DocFreq)
	assert.Equal(t, []uint32{0}, e.Postings.DocIDs())
}

func TestBuildHashtagExpansion(t *testing.T) {
	snap, err := New(0, nil).Build(context.Background(), NewSliceSource(
		Record{ExternalID: "r0", Text: "#covid"},
	))
	require.NoError(t, err)

	for _, term := range []string{"#covid", "covid"} {
		e, ok := snap.Dict.Lookup(term)
		require.True(t, ok, "term %q missing", term)
		assert.Equal(t, []uint32{0}, e.Postings.DocIDs())
	}
}

func TestBuildPostingsStayDescending(t *testing.T) {
	snap, err := New(0, nil).Build(context.Background(), NewSliceSource(
		Record{ExternalID: "a", Text: "common"},
		Record{ExternalID: "b", Text: "common other"},
		Record{ExternalID: "c", Text: "common"},
	))
	require.NoError(t, err)

	e, ok := snap.Dict.Lookup("common")
	require.True(t, ok)
	assert.Equal(t, []uint32{2, 1, 0}, e.Postings.DocIDs())
	assert.Equal(t, 3, e.DocFreq)
}

func TestBuildCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(0, nil).Build(ctx, NewSliceSource(
		Record{ExternalID: "a", Text: "alpha"},
	))
	assert.Error(t, err)
}
