package indexer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/arjun-mahar/recordsearch/internal/index"
	"github.com/arjun-mahar/recordsearch/pkg/metrics"
)

// Builder runs full indexing passes over record sources.
type Builder struct {
	progressEvery uint32
	logger        *slog.Logger
	metrics       *metrics.Metrics
}

// New creates a Builder. progressEvery controls how often a progress line
// is logged, counted in records seen; m may be nil to disable metrics.
func New(progressEvery int, m *metrics.Metrics) *Builder {
	if progressEvery <= 0 {
		progressEvery = 10000
	}
	return &Builder{
		progressEvery: uint32(progressEvery),
		logger:        slog.Default().With("component", "index-builder"),
		metrics:       m,
	}
}

// Build consumes src to exhaustion and returns the completed snapshot.
//
// Every record consumes the next internal id, whether or not it is
// indexed, so ids stay positional. Records without indexable content are
// skipped, never failed: no dictionary mutation and no resolver entry. For
// each type collected from a record, the dictionary entry is created or
// extended with the current id; because ids are assigned monotonically and
// always land at the postings head, every list stays strictly descending.
func (b *Builder) Build(ctx context.Context, src RecordSource) (*index.Snapshot, error) {
	start := time.Now()
	dict := index.NewDictionary()
	resolver := index.NewResolver()

	var docID uint32
	var indexed, skipped int
	for {
		rec, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading record %d: %w", docID, err)
		}

		id := docID
		docID++

		types := typesOf(rec)
		if len(types) == 0 {
			skipped++
			if b.metrics != nil {
				b.metrics.RecordsSkippedTotal.Inc()
			}
		} else {
			for _, term := range types {
				dict.Insert(term, id)
			}
			resolver.Put(id, rec.ExternalID)
			indexed++
			if b.metrics != nil {
				b.metrics.RecordsIndexedTotal.Inc()
			}
		}

		if docID%b.progressEvery == 0 {
			b.logger.Info("indexing progress",
				"records_seen", docID,
				"indexed", indexed,
				"skipped", skipped,
				"terms", dict.Terms(),
			)
		}
	}

	elapsed := time.Since(start)
	snap := &index.Snapshot{Dict: dict, Resolver: resolver, Docs: int(docID)}
	if b.metrics != nil {
		b.metrics.IndexBuildSeconds.Observe(elapsed.Seconds())
		b.metrics.IndexTerms.Set(float64(dict.Terms()))
		b.metrics.IndexDocuments.Set(float64(resolver.Len()))
	}
	b.logger.Info("index build complete",
		"records_seen", docID,
		"indexed", indexed,
		"skipped", skipped,
		"terms", dict.Terms(),
		"took", elapsed,
	)
	return snap, nil
}

// typesOf runs the normalizer pipeline over one record. Absent text and
// text that preprocesses to nothing both yield no types.
func typesOf(rec Record) []string {
	if rec.Text == "" {
		return nil
	}
	return index.Types(rec.Text)
}
