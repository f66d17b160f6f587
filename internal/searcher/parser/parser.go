// Package parser turns a raw query string into the normalized terms the
// query engine expects. Query text runs through the exact same pipeline as
// document text, so the two vocabularies always line up.
package parser

import (
	"github.com/arjun-mahar/recordsearch/internal/index"
)

// Plan is a parsed query: the original string plus its normalized,
// deduplicated terms.
type Plan struct {
	RawQuery string
	Terms    []string
}

// Parse normalizes the query. Terms may be empty when the query carries no
// indexable content; callers decide how to reject that.
func Parse(query string) *Plan {
	return &Plan{
		RawQuery: query,
		Terms:    index.Types(query),
	}
}
