// Package handler serves the search HTTP endpoint.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/arjun-mahar/recordsearch/internal/analytics"
	"github.com/arjun-mahar/recordsearch/internal/searcher"
	"github.com/arjun-mahar/recordsearch/internal/searcher/cache"
	"github.com/arjun-mahar/recordsearch/internal/searcher/parser"
	apperrors "github.com/arjun-mahar/recordsearch/pkg/errors"
	"github.com/arjun-mahar/recordsearch/pkg/logger"
	"github.com/arjun-mahar/recordsearch/pkg/metrics"
	"golang.org/x/sync/semaphore"
)

// SearchExecutor runs a parsed query plan.
type SearchExecutor interface {
	Execute(ctx context.Context, plan *parser.Plan, limit int) (*searcher.Result, error)
}

// Handler serves GET /search. Concurrency is bounded by a weighted
// semaphore; callers beyond the limit wait until a slot frees or their
// request context expires.
type Handler struct {
	executor     SearchExecutor
	cache        *cache.QueryCache
	collector    *analytics.Collector
	sem          *semaphore.Weighted
	defaultLimit int
	maxLimit     int
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

// New creates a Handler. cache, collector, and m may be nil to disable
// the corresponding side channel.
func New(exec SearchExecutor, queryCache *cache.QueryCache, collector *analytics.Collector, m *metrics.Metrics, defaultLimit, maxLimit, maxConcurrent int) *Handler {
	if maxConcurrent <= 0 {
		maxConcurrent = 64
	}
	return &Handler{
		executor:     exec,
		cache:        queryCache,
		collector:    collector,
		sem:          semaphore.NewWeighted(int64(maxConcurrent)),
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		metrics:      m,
		logger:       slog.Default().With("component", "search-handler"),
	}
}

// Search handles GET /search?q=...&limit=...
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, apperrors.New(apperrors.ErrInvalidQuery, http.StatusBadRequest, "query parameter 'q' is required"))
		return
	}
	limit := h.parseLimit(r.URL.Query().Get("limit"))

	if err := h.sem.Acquire(ctx, 1); err != nil {
		h.writeError(w, apperrors.New(apperrors.ErrTimeout, http.StatusServiceUnavailable, "server busy"))
		return
	}
	defer h.sem.Release(1)

	plan := parser.Parse(query)
	if len(plan.Terms) == 0 {
		h.writeError(w, apperrors.New(apperrors.ErrInvalidQuery, http.StatusBadRequest, "query has no searchable terms"))
		return
	}

	result, cached, err := h.execute(ctx, plan, limit)
	if err != nil {
		log.Error("search failed", "query", query, "error", err)
		h.writeError(w, err)
		return
	}

	took := time.Since(start)
	if h.metrics != nil {
		cacheStatus := "miss"
		if cached {
			cacheStatus = "hit"
			h.metrics.CacheHitsTotal.Inc()
		} else {
			h.metrics.CacheMissesTotal.Inc()
		}
		h.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(took.Seconds())
	}
	if h.collector != nil {
		h.collector.Track(analytics.QueryEvent{
			Query:    query,
			Terms:    plan.Terms,
			Hits:     result.TotalHits,
			TookMS:   float64(took.Microseconds()) / 1000.0,
			CacheHit: cached,
			At:       time.Now().UTC(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// execute goes through the cache when one is configured.
func (h *Handler) execute(ctx context.Context, plan *parser.Plan, limit int) (*searcher.Result, bool, error) {
	if h.cache == nil {
		result, err := h.executor.Execute(ctx, plan, limit)
		return result, false, err
	}
	return h.cache.GetOrCompute(ctx, plan.Terms, limit, func() (*searcher.Result, error) {
		return h.executor.Execute(ctx, plan, limit)
	})
}

func (h *Handler) parseLimit(raw string) int {
	limit := h.defaultLimit
	if raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if h.maxLimit > 0 && limit > h.maxLimit {
		limit = h.maxLimit
	}
	return limit
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatusCode(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
