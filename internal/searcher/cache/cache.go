package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/inverted-index/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/inverted-index/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/inverted-index/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/inverted-index/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/inverted-index/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/inverted-index/pkg/resilience"
)

const keyPrefix = "term:"

// Store is the subset of pkg/redis.Client the cache needs. Get must return
// an error satisfying pkgredis.IsMiss for absent keys.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

// entry is what gets stored. Misses are cached too; the index never changes
// while the process serves it.
type entry struct {
	Found  bool            `json:"found"`
	Result executor.Result `json:"result"`
}

// QueryCache caches lookups keyed by normalised term, so "Cat!" and "cat"
// share an entry. Store calls go through a breaker so a dead Redis costs
// one fast error per query instead of a network timeout.
type QueryCache struct {
	store   Store
	cfg     config.RedisConfig
	metrics *metrics.Metrics
	breaker *resilience.Breaker
	group   singleflight.Group
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

func New(store Store, cfg config.RedisConfig, m *metrics.Metrics) *QueryCache {
	return &QueryCache{
		store:   store,
		cfg:     cfg,
		metrics: m,
		breaker: resilience.NewBreaker("query-cache", resilience.BreakerConfig{}),
		logger:  slog.Default().With("component", "query-cache"),
	}
}

func (c *QueryCache) Get(ctx context.Context, raw string) (executor.Result, bool, bool) {
	key := c.buildKey(raw)
	var (
		data   string
		absent bool
	)
	err := c.breaker.Do(func() error {
		var err error
		data, err = c.store.Get(ctx, key)
		if pkgredis.IsMiss(err) {
			absent = true
			return nil
		}
		return err
	})
	if err != nil || absent {
		if err != nil {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.recordMiss()
		return executor.Result{}, false, false
	}
	var e entry
	if err := json.Unmarshal([]byte(data), &e); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.recordMiss()
		return executor.Result{}, false, false
	}
	c.recordHit()
	c.logger.Debug("cache hit", "query", raw, "key", key)
	// The cached Query is whichever raw spelling filled the entry.
	e.Result.Query = raw
	return e.Result, e.Found, true
}

func (c *QueryCache) Set(ctx context.Context, raw string, result executor.Result, found bool) {
	key := c.buildKey(raw)
	data, err := json.Marshal(entry{Found: found, Result: result})
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	err = c.breaker.Do(func() error {
		return c.store.Set(ctx, key, data, c.cfg.CacheTTL)
	})
	if err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached lookup for raw, or runs computeFn once per
// key across concurrent callers and caches its outcome. The last return
// value reports whether the answer came from the cache.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	raw string,
	computeFn func() (executor.Result, bool),
) (executor.Result, bool, bool) {
	if result, found, ok := c.Get(ctx, raw); ok {
		return result, found, true
	}
	key := c.buildKey(raw)
	val, _, _ := c.group.Do(key, func() (interface{}, error) {
		result, found := computeFn()
		c.Set(ctx, raw, result, found)
		return entry{Found: found, Result: result}, nil
	})
	e := val.(entry)
	e.Result.Query = raw
	return e.Result, e.Found, false
}

func (c *QueryCache) Invalidate(ctx context.Context) error {
	pattern := keyPrefix + "*"
	deleted, err := c.store.FlushByPattern(ctx, pattern)
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidate", "keys_deleted", deleted)
	return nil
}

func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *QueryCache) recordHit() {
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
}

func (c *QueryCache) recordMiss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

func (c *QueryCache) buildKey(raw string) string {
	hash := sha256.Sum256([]byte(tokenizer.NormalizeQuery(raw)))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
