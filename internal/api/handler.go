// Package api exposes the search engine over HTTP to the dashboard
// frontend: the search endpoint itself, query statistics, and cache
// administration.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/fattits30-dev/solicitor-search/internal/search"
	"github.com/fattits30-dev/solicitor-search/internal/stats"
	"github.com/fattits30-dev/solicitor-search/pkg/config"
	"github.com/fattits30-dev/solicitor-search/pkg/errors"
	"github.com/fattits30-dev/solicitor-search/pkg/logger"
	"github.com/fattits30-dev/solicitor-search/pkg/metrics"
	"github.com/fattits30-dev/solicitor-search/pkg/middleware"
	"github.com/fattits30-dev/solicitor-search/pkg/tracing"
)

// SearchResponse is the JSON body returned by the search endpoint.
type SearchResponse struct {
	Query     string          `json:"query"`
	TotalHits int             `json:"total_hits"`
	Results   []search.Result `json:"results"`
}

// Handler serves the search API.
type Handler struct {
	engine    *search.Engine
	cache     *QueryCache
	agg       *stats.Aggregator
	m         *metrics.Metrics
	searchCfg config.SearchConfig
	logger    *slog.Logger
}

// NewHandler creates a Handler. cache, agg, and m may be nil (disabled).
func NewHandler(engine *search.Engine, cache *QueryCache, agg *stats.Aggregator, m *metrics.Metrics, searchCfg config.SearchConfig) *Handler {
	return &Handler{
		engine:    engine,
		cache:     cache,
		agg:       agg,
		m:         m,
		searchCfg: searchCfg,
		logger:    slog.Default().With("component", "search-handler"),
	}
}

// Search handles GET /api/v1/search?q=...&limit=&prefix=&fuzziness=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	opts, err := h.parseOptions(r)
	if err != nil {
		h.writeError(w, errors.HTTPStatusCode(err), err.Error())
		return
	}

	ctx, span := tracing.StartSpan(ctx, "search", middleware.GetRequestID(ctx))
	span.SetAttr("query", query)

	compute := func() (*SearchResponse, error) {
		_, child := tracing.StartChildSpan(ctx, "engine-search")
		results, err := h.engine.Search(query, opts)
		if err != nil {
			child.End()
			return nil, err
		}
		child.SetAttr("hits", len(results))
		child.End()
		return &SearchResponse{
			Query:     query,
			TotalHits: len(results),
			Results:   results,
		}, nil
	}

	var resp *SearchResponse
	cacheHit := false
	if h.cache != nil {
		resp, cacheHit, err = h.cache.GetOrCompute(ctx, query, opts, compute)
	} else {
		resp, err = compute()
	}

	span.End()
	latency := time.Since(start)

	if err != nil {
		status := errors.HTTPStatusCode(err)
		if status >= http.StatusInternalServerError {
			log.Error("search failed", "query", query, "error", err)
		}
		h.observe("error", cacheHit, latency, 0)
		h.writeError(w, status, err.Error())
		return
	}

	outcome := "hit"
	if resp.TotalHits == 0 {
		outcome = "zero_result"
	}
	h.observe(outcome, cacheHit, latency, resp.TotalHits)
	if h.agg != nil {
		h.agg.Record(stats.Observation{
			Query:     query,
			Hits:      resp.TotalHits,
			LatencyMs: latency.Milliseconds(),
			CacheHit:  cacheHit,
		})
	}
	span.Log()

	log.Info("search completed",
		"query", query,
		"total_hits", resp.TotalHits,
		"cache_hit", cacheHit,
		"latency_ms", latency.Milliseconds(),
	)
	h.writeJSON(w, http.StatusOK, resp)
}

// CacheStats handles GET /api/v1/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": strconv.FormatFloat(hitRate, 'f', 1, 64) + "%",
	})
}

// CacheInvalidate handles POST /api/v1/cache/invalidate.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

// parseOptions builds search.Options from query parameters, applying the
// configured defaults.
func (h *Handler) parseOptions(r *http.Request) (search.Options, error) {
	opts := search.Options{
		Prefix: h.searchCfg.PrefixDefault,
		Limit:  h.searchCfg.DefaultLimit,
	}
	q := r.URL.Query()

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return opts, errors.New(errors.ErrInvalidInput, http.StatusBadRequest,
				"limit must be a positive integer")
		}
		if limit > h.searchCfg.MaxResults {
			limit = h.searchCfg.MaxResults
		}
		opts.Limit = limit
	}
	if v := q.Get("prefix"); v != "" {
		prefix, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New(errors.ErrInvalidInput, http.StatusBadRequest,
				"prefix must be true or false")
		}
		opts.Prefix = prefix
	}
	if v := q.Get("fuzziness"); v != "" {
		fuzziness, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, errors.New(errors.ErrInvalidInput, http.StatusBadRequest,
				"fuzziness must be a number")
		}
		opts.Fuzziness = fuzziness
	}
	return opts, nil
}

func (h *Handler) observe(outcome string, cacheHit bool, latency time.Duration, hits int) {
	if h.m == nil {
		return
	}
	cacheStatus := "miss"
	if cacheHit {
		cacheStatus = "hit"
		h.m.CacheHitsTotal.Inc()
	} else {
		h.m.CacheMissesTotal.Inc()
	}
	h.m.SearchQueriesTotal.WithLabelValues(outcome).Inc()
	h.m.SearchLatency.WithLabelValues(cacheStatus).Observe(latency.Seconds())
	h.m.SearchResultsCount.Observe(float64(hits))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
