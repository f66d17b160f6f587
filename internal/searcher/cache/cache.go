// Package cache provides the Redis-backed query result cache with
// singleflight deduplication of concurrent identical queries.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/arjun-mahar/recordsearch/internal/searcher"
	"github.com/arjun-mahar/recordsearch/pkg/config"
	pkgredis "github.com/arjun-mahar/recordsearch/pkg/redis"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "search:"

// QueryCache caches search results in Redis, keyed by the sorted term set
// and result limit. Hits and misses are counted locally for Stats.
type QueryCache struct {
	client *pkgredis.Client
	cfg    config.RedisConfig
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a QueryCache on the given Redis client.
func New(client *pkgredis.Client, cfg config.RedisConfig) *QueryCache {
	return &QueryCache{
		client: client,
		cfg:    cfg,
		logger: slog.Default().With("component", "query-cache"),
	}
}

// Get returns the cached result for the terms, if any.
func (c *QueryCache) Get(ctx context.Context, terms []string, limit int) (*searcher.Result, bool) {
	key := c.buildKey(terms, limit)
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var result searcher.Result
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return &result, true
}

// Set stores a result under the terms' key with the configured TTL.
func (c *QueryCache) Set(ctx context.Context, terms []string, limit int, result *searcher.Result) {
	key := c.buildKey(terms, limit)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached result or computes and caches it.
// Concurrent callers with the same key share a single computation. The
// second return reports whether the result came from the cache.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	terms []string,
	limit int,
	computeFn func() (*searcher.Result, error),
) (*searcher.Result, bool, error) {
	if result, ok := c.Get(ctx, terms, limit); ok {
		return result, true, nil
	}
	key := c.buildKey(terms, limit)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if result, ok := c.Get(ctx, terms, limit); ok {
			return result, nil
		}
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, terms, limit, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*searcher.Result), false, nil
}

// Invalidate drops every cached search result, typically after a snapshot
// swap.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

// Stats returns the local hit and miss counters.
func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// buildKey hashes the sorted term set plus the limit so term order does
// not fragment the cache.
func (c *QueryCache) buildKey(terms []string, limit int) string {
	sorted := make([]string, len(terms))
	copy(sorted, terms)
	sort.Strings(sorted)
	raw := fmt.Sprintf("%s:limit=%d", strings.Join(sorted, ","), limit)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
