package searcher

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/arjun-mahar/recordsearch/internal/index"
	"github.com/arjun-mahar/recordsearch/internal/searcher/parser"
	apperrors "github.com/arjun-mahar/recordsearch/pkg/errors"
	"github.com/arjun-mahar/recordsearch/pkg/metrics"
)

// Result is the JSON-serialisable outcome of one query.
type Result struct {
	Query     string   `json:"query"`
	Terms     []string `json:"terms"`
	TotalHits int      `json:"total_hits"`
	IDs       []string `json:"ids"`
	TookMS    float64  `json:"took_ms"`
}

// Executor holds the active snapshot and runs queries against it. The
// snapshot is swapped atomically after a rebuild, so in-flight queries
// finish against the snapshot they started with.
type Executor struct {
	snap    atomic.Pointer[index.Snapshot]
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewExecutor creates an Executor with no snapshot installed; queries fail
// with ErrIndexNotReady until Swap is called.
func NewExecutor(m *metrics.Metrics) *Executor {
	return &Executor{
		logger:  slog.Default().With("component", "query-executor"),
		metrics: m,
	}
}

// Swap installs a completed snapshot.
func (e *Executor) Swap(snap *index.Snapshot) {
	e.snap.Store(snap)
	e.logger.Info("snapshot installed",
		"docs", snap.Resolver.Len(),
		"terms", snap.Dict.Terms(),
	)
}

// Ready reports whether a snapshot is installed.
func (e *Executor) Ready() bool {
	return e.snap.Load() != nil
}

// Execute runs the plan's terms against the active snapshot and truncates
// the result to limit ids. TotalHits reports the pre-truncation count.
func (e *Executor) Execute(ctx context.Context, plan *parser.Plan, limit int) (*Result, error) {
	start := time.Now()
	snap := e.snap.Load()
	if snap == nil {
		return nil, apperrors.ErrIndexNotReady
	}

	ids, err := Search(snap, plan.Terms...)
	if err != nil {
		if e.metrics != nil {
			e.metrics.SearchQueriesTotal.WithLabelValues("invalid").Inc()
		}
		return nil, err
	}
	total := len(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	took := time.Since(start)
	if e.metrics != nil {
		resultType := "hit"
		if total == 0 {
			resultType = "zero_result"
		}
		e.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
		e.metrics.SearchResultsCount.Observe(float64(total))
	}
	e.logger.Debug("query executed",
		"query", plan.RawQuery,
		"terms", plan.Terms,
		"hits", total,
		"took", took,
	)
	return &Result{
		Query:     plan.RawQuery,
		Terms:     plan.Terms,
		TotalHits: total,
		IDs:       ids,
		TookMS:    float64(took.Microseconds()) / 1000.0,
	}, nil
}
