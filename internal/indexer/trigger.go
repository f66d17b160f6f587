package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arjun-mahar/recordsearch/internal/index"
	"github.com/arjun-mahar/recordsearch/pkg/kafka"
	"github.com/arjun-mahar/recordsearch/pkg/metrics"
	"github.com/arjun-mahar/recordsearch/pkg/resilience"
)

// ReindexEvent is the Kafka payload that requests a full rebuild.
type ReindexEvent struct {
	Reason      string    `json:"reason"`
	RequestedAt time.Time `json:"requested_at"`
}

// SourceFunc opens a fresh record source for a rebuild.
type SourceFunc func(ctx context.Context) (RecordSource, error)

// ApplyFunc installs a completed snapshot, typically swapping it into the
// query executor and invalidating the query cache.
type ApplyFunc func(ctx context.Context, snap *index.Snapshot)

// Rebuilder rebuilds the snapshot from the corpus when a reindex event
// arrives. Queries keep running against the previous snapshot until the
// new one is complete; a partially built index is never visible.
type Rebuilder struct {
	builder *Builder
	source  SourceFunc
	apply   ApplyFunc
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewRebuilder wires a Builder to a source opener and a snapshot apply
// hook.
func NewRebuilder(builder *Builder, source SourceFunc, apply ApplyFunc, m *metrics.Metrics) *Rebuilder {
	return &Rebuilder{
		builder: builder,
		source:  source,
		apply:   apply,
		logger:  slog.Default().With("component", "rebuilder"),
		metrics: m,
	}
}

// Rebuild runs one full build and applies the resulting snapshot.
func (r *Rebuilder) Rebuild(ctx context.Context) error {
	var snap *index.Snapshot
	err := resilience.Retry(ctx, "reindex", resilience.RetryConfig{}, func() error {
		src, err := r.source(ctx)
		if err != nil {
			return fmt.Errorf("opening record source: %w", err)
		}
		snap, err = r.builder.Build(ctx, src)
		return err
	})
	if err != nil {
		if r.metrics != nil {
			r.metrics.ReindexTotal.WithLabelValues("error").Inc()
		}
		return err
	}
	r.apply(ctx, snap)
	if r.metrics != nil {
		r.metrics.ReindexTotal.WithLabelValues("ok").Inc()
	}
	r.logger.Info("snapshot swapped",
		"docs", snap.Resolver.Len(),
		"terms", snap.Dict.Terms(),
	)
	return nil
}

// Handler returns a Kafka MessageHandler that triggers a rebuild per
// reindex event.
func (r *Rebuilder) Handler() kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[ReindexEvent](value)
		if err != nil {
			r.logger.Error("failed to decode reindex event", "error", err, "key", string(key))
			return nil
		}
		r.logger.Info("reindex requested", "reason", event.Reason, "requested_at", event.RequestedAt)
		return r.Rebuild(ctx)
	}
}
