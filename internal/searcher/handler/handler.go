package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/Adithya-Monish-Kumar-K/inverted-index/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/inverted-index/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/inverted-index/internal/searcher/executor"
	apperrors "github.com/Adithya-Monish-Kumar-K/inverted-index/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/inverted-index/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/inverted-index/pkg/metrics"
)

type Evaluator interface {
	Lookup(raw string) (executor.Result, bool)
	Stats() executor.IndexStats
}

// Handler serves term lookups over HTTP. cache, collector and metrics are
// optional.
type Handler struct {
	evaluator Evaluator
	cache     *cache.QueryCache
	collector *analytics.Collector
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func New(evaluator Evaluator, queryCache *cache.QueryCache, collector *analytics.Collector, m *metrics.Metrics) *Handler {
	return &Handler{
		evaluator: evaluator,
		cache:     queryCache,
		collector: collector,
		metrics:   m,
		logger:    logger.WithComponent("search-handler"),
	}
}

// Search answers GET /api/v1/search?q=<term>. A miss is 404 with
// {"error":"not found"}.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	if !r.URL.Query().Has("q") {
		h.writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "query parameter 'q' is required"))
		return
	}
	query := r.URL.Query().Get("q")

	var (
		result   executor.Result
		found    bool
		cacheHit bool
	)
	if h.cache != nil {
		result, found, cacheHit = h.cache.GetOrCompute(ctx, query, func() (executor.Result, bool) {
			return h.evaluator.Lookup(query)
		})
	} else {
		result, found = h.evaluator.Lookup(query)
	}
	latency := time.Since(start)

	outcome := "hit"
	eventType := analytics.EventQueryHit
	if !found {
		outcome = "miss"
		eventType = analytics.EventQueryMiss
	}
	if h.metrics != nil {
		cacheStatus := "disabled"
		if h.cache != nil {
			cacheStatus = "miss"
			if cacheHit {
				cacheStatus = "hit"
			}
		}
		h.metrics.QueriesTotal.WithLabelValues(outcome).Inc()
		h.metrics.QueryLatency.WithLabelValues(cacheStatus).Observe(latency.Seconds())
	}
	if h.collector != nil {
		h.collector.Track(analytics.QueryEvent{
			Type:             eventType,
			Query:            query,
			Term:             result.Term,
			TotalOccurrences: result.TotalOccurrences,
			DocumentCount:    result.DocumentCount,
			LatencyMicros:    latency.Microseconds(),
			CacheHit:         cacheHit,
			Timestamp:        time.Now().UTC(),
			RequestID:        logger.RequestID(ctx),
		})
	}
	log.Info("query served",
		"query", query,
		"outcome", outcome,
		"document_count", result.DocumentCount,
		"cache_hit", cacheHit,
		"latency_us", latency.Microseconds(),
	)

	if !found {
		h.writeError(w, apperrors.New(apperrors.ErrNotFound, http.StatusNotFound, query))
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) IndexStats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.evaluator.Stats())
}

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
		"hit_rate": hitRate,
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "caching is disabled"})
		return
	}

	if err := h.cache.Invalidate(r.Context()); err != nil {
		logger.FromContext(r.Context()).Error("cache invalidation failed", "error", err)
		h.writeError(w, apperrors.New(apperrors.ErrInternal, http.StatusInternalServerError, "cache invalidation failed"))
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

// Register mounts every route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/index/stats", h.IndexStats)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

// writeError reports the sentinel's text, so a miss renders as
// {"error":"not found"}.
func (h *Handler) writeError(w http.ResponseWriter, err *apperrors.AppError) {
	body := map[string]string{"error": err.Err.Error()}
	if err.StatusCode == http.StatusBadRequest {
		body["error"] = err.Message
	}
	h.writeJSON(w, apperrors.HTTPStatusCode(err), body)
}
