package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/inverted-index/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/inverted-index/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/inverted-index/internal/indexer/corpus"
	"github.com/Adithya-Monish-Kumar-K/inverted-index/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/inverted-index/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/inverted-index/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/inverted-index/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/inverted-index/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/inverted-index/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/inverted-index/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/inverted-index/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/inverted-index/pkg/middleware"
	pkgredis "github.com/Adithya-Monish-Kumar-K/inverted-index/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/inverted-index/pkg/resilience"
	"github.com/Adithya-Monish-Kumar-K/inverted-index/pkg/tracing"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service",
		"port", cfg.Server.Port,
		"corpus_dir", cfg.Corpus.Dir,
		"workers", cfg.Indexer.Workers,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer shutdownMetrics(context.Background())
	}

	docs, err := corpus.FromDir(cfg.Corpus.Dir, cfg.Corpus.Ext)
	if err != nil {
		slog.Error("failed to list corpus", "error", err)
		os.Exit(1)
	}
	buildCtx, span := tracing.Start(ctx, "startup")
	idx, err := indexer.NewBuilder(cfg.Indexer, indexer.WithMetrics(m)).Build(buildCtx, docs)
	span.End()
	span.Log(slog.Default())
	if err != nil {
		slog.Error("index build failed", "error", err)
		os.Exit(1)
	}
	var ready atomic.Bool
	ready.Store(true)

	var (
		queryCache  *cache.QueryCache
		redisClient *pkgredis.Client
	)
	if cfg.Redis.Enabled {
		err = resilience.Retry(ctx, "redis-connect", resilience.Backoff{Attempts: 3, Initial: 250 * time.Millisecond, Jitter: 0.1},
			func(ctx context.Context) error {
				c, err := pkgredis.NewClient(ctx, cfg.Redis)
				if err != nil {
					return err
				}
				redisClient = c
				return nil
			})
		if err != nil {
			slog.Warn("redis unavailable, search caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			queryCache = cache.New(redisClient, cfg.Redis, m)
			slog.Info("search cache enabled",
				"addr", cfg.Redis.Addr,
				"ttl", cfg.Redis.CacheTTL,
			)
		}
	}

	var collector *analytics.Collector
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.QueryEvents)
		defer producer.Close()
		collector = analytics.NewCollector(producer, 10000)
		collector.Start(ctx)
		defer collector.Close()
		slog.Info("query analytics enabled", "topic", cfg.Kafka.Topics.QueryEvents)
	}

	checker := health.NewChecker()
	checker.Register("index", health.Flag(&ready,
		fmt.Sprintf("%d terms over %d documents", idx.Len(), idx.DocCount()),
		"index not built"))
	var redisPinger health.Pinger
	if redisClient != nil {
		redisPinger = redisClient
	}
	checker.Register("redis", health.Optional(redisPinger))

	h := handler.New(executor.New(idx), queryCache, collector, m)

	mux := http.NewServeMux()
	h.Register(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.RateLimit(cfg.Search.RateLimit, cfg.Search.RateBurst, m)(chain)
	chain = middleware.CORS(cfg.Search.AllowOrigins)(chain)
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Closed once in-flight requests have finished, so the deferred collector
	// and client closes run after the last handler.
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-ctx.Done()
		slog.Info("shutdown signal received")
		ready.Store(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	<-drained

	slog.Info("search service stopped")
}
