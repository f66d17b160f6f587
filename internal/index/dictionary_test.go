package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDictionaryInsert(t *testing.T) {
	d := NewDictionary()

	d.Insert("vaccine", 0)
	e, ok := d.Lookup("vaccine")
	require.True(t, ok)
	assert.Equal(t, 1, e.DocFreq)
	assert.Equal(t, []uint32{0}, e.Postings.DocIDs())

	d.Insert("vaccine", 1)
	d.Insert("vaccine", 2)
	assert.Equal(t, 3, e.DocFreq)
	assert.Equal(t, 1, d.Terms())
}

func TestPostingsDescendingOrder(t *testing.T) {
	// Inserting ids 0, 1, 2 must read back as [2, 1, 0]: the newest
	// document always sits at the head.
	d := NewDictionary()
	d.Insert("term", 0)
	d.Insert("term", 1)
	d.Insert("term", 2)

	e, ok := d.Lookup("term")
	require.True(t, ok)
	assert.Equal(t, []uint32{2, 1, 0}, e.Postings.DocIDs())
	assert.Equal(t, uint32(2), e.Postings.At(0))
	assert.Equal(t, uint32(0), e.Postings.At(2))
}

func TestDocFreqMatchesPostingsLength(t *testing.T) {
	d := NewDictionary()
	for id := uint32(0); id < 10; id++ {
		d.Insert("word", id)
	}
	e, ok := d.Lookup("word")
	require.True(t, ok)
	assert.Equal(t, e.Postings.Len(), e.DocFreq)
}

func TestLookupMissingTerm(t *testing.T) {
	d := NewDictionary()
	_, ok := d.Lookup("never-indexed")
	assert.False(t, ok)
}
