// Package searcher executes boolean-AND term queries against a completed
// index snapshot.
package searcher

import (
	"sort"

	"github.com/arjun-mahar/recordsearch/internal/index"
	apperrors "github.com/arjun-mahar/recordsearch/pkg/errors"
)

// Search returns the external ids of every document containing all of the
// given terms, most recently indexed first. Terms must already be in the
// normalizer's output vocabulary; nothing is renormalized here. A term
// absent from the dictionary contributes an empty postings list, which
// empties the whole conjunction. Zero terms is an invalid query.
func Search(snap *index.Snapshot, terms ...string) ([]string, error) {
	if snap == nil {
		return nil, apperrors.ErrIndexNotReady
	}
	var ids []uint32
	switch len(terms) {
	case 0:
		return nil, apperrors.ErrInvalidQuery
	case 1:
		ids = single(snap.Dict, terms[0])
	default:
		ids = intersectAll(snap.Dict, terms)
	}
	return resolveAll(snap.Resolver, ids), nil
}

// single collects one term's postings, head to tail, so the result is in
// descending internal-id order.
func single(dict *index.Dictionary, term string) []uint32 {
	e, ok := dict.Lookup(term)
	if !ok {
		return nil
	}
	return e.Postings.DocIDs()
}

// intersectAll AND-combines the postings of every term through iterative
// two-way merges, cheapest list first: the result can never be larger than
// the smallest input, so starting there minimizes comparison work.
func intersectAll(dict *index.Dictionary, terms []string) []uint32 {
	entries := make([]*index.Entry, 0, len(terms))
	for _, term := range terms {
		e, ok := dict.Lookup(term)
		if !ok {
			// Empty head: the AND of anything with nothing is nothing.
			return nil
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].DocFreq < entries[j].DocFreq
	})

	result := entries[0].Postings.DocIDs()
	for _, e := range entries[1:] {
		result = intersect(result, &e.Postings)
		if len(result) == 0 {
			break
		}
	}
	return result
}

// intersect two-pointer merges a descending id slice with a descending
// postings list. Equal ids match before either pointer advances past the
// other, so the output stays strictly descending.
func intersect(a []uint32, b *index.PostingList) []uint32 {
	out := make([]uint32, 0, min(len(a), b.Len()))
	i, j := 0, 0
	for i < len(a) && j < b.Len() {
		av, bv := a[i], b.At(j)
		switch {
		case av == bv:
			out = append(out, av)
			i++
			j++
		case av > bv:
			i++
		default:
			j++
		}
	}
	return out
}

// resolveAll maps internal ids to external ids, preserving order. Ids come
// from postings lists, so they always resolve; the presence check guards
// the invariant rather than papering over holes.
func resolveAll(resolver *index.Resolver, ids []uint32) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if ext, ok := resolver.Resolve(id); ok {
			out = append(out, ext)
		}
	}
	return out
}
