// Package benchmark contains Go benchmarks for the index builder and the
// query engine, measuring throughput and allocation behaviour.
package benchmark

import (
	"context"
	"fmt"
	"testing"

	"github.com/arjun-mahar/recordsearch/internal/index"
	"github.com/arjun-mahar/recordsearch/internal/indexer"
)

// corpusRecords generates n synthetic records cycling through a small
// vocabulary so terms overlap across documents.
func corpusRecords(n int) []indexer.Record {
	terms := []string{"vaccine", "malaria", "covid", "effects", "side", "dose", "booster", "hospital"}
	records := make([]indexer.Record, n)
	for i := 0; i < n; i++ {
		records[i] = indexer.Record{
			ExternalID: fmt.Sprintf("rec-%d", i),
			Author:     "bench",
			Text: fmt.Sprintf("%s %s about %s and #%s",
				terms[i%len(terms)],
				terms[(i+1)%len(terms)],
				terms[(i+3)%len(terms)],
				terms[(i+5)%len(terms)],
			),
		}
	}
	return records
}

// BenchmarkTypes measures the normalizer pipeline on a representative
// record text.
func BenchmarkTypes(b *testing.B) {
	text := "Side-effects of the #covid vaccine[NEWLINE]reported after the second dose!"
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		types := index.Types(text)
		_ = types
	}
}

// BenchmarkBuild measures full build throughput at various corpus sizes.
func BenchmarkBuild(b *testing.B) {
	sizes := []int{100, 1000, 10000}
	for _, size := range sizes {
		b.Run(fmt.Sprintf("records_%d", size), func(b *testing.B) {
			records := corpusRecords(size)
			builder := indexer.New(0, nil)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				snap, err := builder.Build(context.Background(), indexer.NewSliceSource(records...))
				if err != nil {
					b.Fatal(err)
				}
				_ = snap
			}
		})
	}
}

// BenchmarkDictionaryInsert measures per-term insert cost.
func BenchmarkDictionaryInsert(b *testing.B) {
	d := index.NewDictionary()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.Insert(fmt.Sprintf("term-%d", i%1000), uint32(i))
	}
}
