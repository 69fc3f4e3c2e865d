package api

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/fattits30-dev/solicitor-search/internal/search"
	"github.com/fattits30-dev/solicitor-search/pkg/config"
	pkgredis "github.com/fattits30-dev/solicitor-search/pkg/redis"
)

const cacheKeyPrefix = "search:"

// QueryCache memoises search responses in Redis. Concurrent identical
// queries are collapsed through singleflight so a cold popular query is
// computed once. The cache is flushed whenever the index mutates.
type QueryCache struct {
	client *pkgredis.Client
	cfg    config.RedisConfig
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

// NewQueryCache creates a QueryCache over the given Redis client.
func NewQueryCache(client *pkgredis.Client, cfg config.RedisConfig) *QueryCache {
	return &QueryCache{
		client: client,
		cfg:    cfg,
		logger: slog.Default().With("component", "query-cache"),
	}
}

// GetOrCompute returns the cached response for (query, opts), computing and
// caching it on a miss. The bool reports whether the response came from the
// cache.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	query string,
	opts search.Options,
	computeFn func() (*SearchResponse, error),
) (*SearchResponse, bool, error) {
	key := c.buildKey(query, opts)
	if resp, ok := c.get(ctx, key); ok {
		return resp, true, nil
	}
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if resp, ok := c.get(ctx, key); ok {
			return resp, nil
		}
		resp, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.set(ctx, key, resp)
		return resp, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*SearchResponse), false, nil
}

// Invalidate deletes every cached search response.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, cacheKeyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating query cache: %w", err)
	}
	c.logger.Info("query cache invalidated", "keys_deleted", deleted)
	return nil
}

// Stats returns cumulative hit and miss counts.
func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *QueryCache) get(ctx context.Context, key string) (*SearchResponse, bool) {
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var resp SearchResponse
	if err := json.Unmarshal([]byte(data), &resp); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return &resp, true
}

func (c *QueryCache) set(ctx context.Context, key string, resp *SearchResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// buildKey hashes the query together with every option that changes the
// result set, so two searches differing only in fuzziness never share an
// entry.
func (c *QueryCache) buildKey(query string, opts search.Options) string {
	raw := fmt.Sprintf("%s|prefix=%t|fuzz=%g|limit=%d|boosts=%s",
		query, opts.Prefix, opts.Fuzziness, opts.Limit, canonicalBoosts(opts.Boosts))
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", cacheKeyPrefix, hash[:16])
}

// canonicalBoosts serialises per-call boost overrides in sorted field order
// so equal overrides hash identically regardless of map iteration order.
func canonicalBoosts(boosts map[string]float64) string {
	if len(boosts) == 0 {
		return ""
	}
	fields := make([]string, 0, len(boosts))
	for field := range boosts {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	var sb strings.Builder
	for i, field := range fields {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%s=%g", field, boosts[field])
	}
	return sb.String()
}
