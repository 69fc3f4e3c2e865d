// Command searchd runs the practice search service: it bootstraps the
// in-memory index from Postgres, keeps it current by consuming record
// change events from Kafka, and serves queries over HTTP with a Redis
// query cache in front.
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
	"syscall"
	"time"

	"github.com/fattits30-dev/solicitor-search/internal/api"
	"github.com/fattits30-dev/solicitor-search/internal/ingest"
	"github.com/fattits30-dev/solicitor-search/internal/search"
	"github.com/fattits30-dev/solicitor-search/internal/stats"
	"github.com/fattits30-dev/solicitor-search/pkg/config"
	"github.com/fattits30-dev/solicitor-search/pkg/health"
	"github.com/fattits30-dev/solicitor-search/pkg/kafka"
	"github.com/fattits30-dev/solicitor-search/pkg/logger"
	"github.com/fattits30-dev/solicitor-search/pkg/metrics"
	"github.com/fattits30-dev/solicitor-search/pkg/middleware"
	"github.com/fattits30-dev/solicitor-search/pkg/postgres"
	pkgredis "github.com/fattits30-dev/solicitor-search/pkg/redis"
	"github.com/fattits30-dev/solicitor-search/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("service failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.WithComponent("searchd")
	log.Info("starting search service", "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownMetrics(shutdownCtx); err != nil {
				log.Error("metrics server shutdown failed", "error", err)
			}
		}()
	}

	engine := search.NewEngine(cfg.Search)

	// The practice database is the source of truth; without it the index
	// cannot be built, so the connection is retried and then fatal.
	var pg *postgres.Client
	err = resilience.Retry(ctx, "postgres-connect", resilience.RetryConfig{MaxAttempts: 5}, func() error {
		var connErr error
		pg, connErr = postgres.New(cfg.Postgres)
		return connErr
	})
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer pg.Close()

	bootstrapStart := time.Now()
	loader := ingest.NewLoader(pg.DB)
	indexed, err := loader.Load(ctx, engine)
	if err != nil {
		return fmt.Errorf("bootstrapping index: %w", err)
	}
	m.BootstrapSeconds.Set(time.Since(bootstrapStart).Seconds())
	m.IndexDocCount.Set(float64(engine.DocCount()))
	m.IndexTermCount.Set(float64(engine.TermCount()))
	log.Info("index ready",
		"documents", indexed,
		"terms", engine.TermCount(),
		"elapsed", time.Since(bootstrapStart).Round(time.Millisecond),
	)

	// Redis is an optimisation, not a dependency: when it is down the
	// service answers every query from the engine directly.
	var redisClient *pkgredis.Client
	var queryCache *api.QueryCache
	redisClient, err = pkgredis.NewClient(cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, query caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		queryCache = api.NewQueryCache(redisClient, cfg.Redis)
	}

	var invalidator ingest.CacheInvalidator
	if queryCache != nil {
		invalidator = queryCache
	}
	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.RecordChanges,
		ingest.HandleChange(engine, invalidator, m))
	consumerDone := make(chan error, 1)
	go func() {
		consumerDone <- consumer.Start(ctx)
	}()

	checker := health.NewChecker()
	checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
		if err := pg.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		if engine.DocCount() == 0 {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "index is empty"}
		}
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d documents, %d terms", engine.DocCount(), engine.TermCount()),
		}
	})
	if redisClient != nil {
		checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
			if err := redisClient.Ping(ctx); err != nil {
				return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
			}
			return health.ComponentHealth{Status: health.StatusUp}
		})
	}

	agg := stats.NewAggregator()
	handler := api.NewHandler(engine, queryCache, agg, m, cfg.Search)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", handler.Search)
	mux.HandleFunc("GET /api/v1/search/stats", agg.Handler())
	mux.HandleFunc("GET /api/v1/cache/stats", handler.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", handler.CacheInvalidate)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	chain := middleware.Timeout(cfg.Server.WriteTimeout)(
		middleware.Metrics(m)(
			middleware.CORS(
				middleware.APIKey(cfg.Auth.APIKey)(
					middleware.RequestID(mux)))))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverDone := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
			return
		}
		serverDone <- nil
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case err := <-consumerDone:
		if err != nil {
			return fmt.Errorf("kafka consumer: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	if err := consumer.Close(); err != nil {
		log.Error("consumer close failed", "error", err)
	}
	log.Info("search service stopped")
	return nil
}
