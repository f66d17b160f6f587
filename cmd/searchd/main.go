package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/arjun-mahar/recordsearch/internal/analytics"
	"github.com/arjun-mahar/recordsearch/internal/corpus"
	"github.com/arjun-mahar/recordsearch/internal/index"
	"github.com/arjun-mahar/recordsearch/internal/indexer"
	"github.com/arjun-mahar/recordsearch/internal/searcher"
	"github.com/arjun-mahar/recordsearch/internal/searcher/cache"
	searchhandler "github.com/arjun-mahar/recordsearch/internal/searcher/handler"
	"github.com/arjun-mahar/recordsearch/pkg/config"
	"github.com/arjun-mahar/recordsearch/pkg/health"
	"github.com/arjun-mahar/recordsearch/pkg/kafka"
	"github.com/arjun-mahar/recordsearch/pkg/logger"
	"github.com/arjun-mahar/recordsearch/pkg/metrics"
	"github.com/arjun-mahar/recordsearch/pkg/middleware"
	pkgpostgres "github.com/arjun-mahar/recordsearch/pkg/postgres"
	pkgredis "github.com/arjun-mahar/recordsearch/pkg/redis"
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
	slog.Info("starting search service", "port", cfg.Server.Port, "corpus_source", cfg.Corpus.Source)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional collaborators: the service degrades rather than refusing
	// to start when Postgres, Redis, or Kafka are unreachable.
	var store *corpus.Store
	pgClient, err := pkgpostgres.New(cfg.Postgres)
	if err != nil {
		slog.Warn("postgres unavailable, record ingestion disabled", "error", err)
	} else {
		defer pgClient.Close()
		store = corpus.NewStore(pgClient)
	}

	var queryCache *cache.QueryCache
	redisClient, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, search caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		queryCache = cache.New(redisClient, cfg.Redis)
		slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}

	executor := searcher.NewExecutor(m)
	builder := indexer.New(cfg.Corpus.ProgressEvery, m)

	openSource := func(ctx context.Context) (indexer.RecordSource, error) {
		return openRecordSource(ctx, cfg.Corpus, store)
	}
	applySnapshot := func(ctx context.Context, snap *index.Snapshot) {
		executor.Swap(snap)
		if queryCache != nil {
			if err := queryCache.Invalidate(ctx); err != nil {
				slog.Error("cache invalidation after swap failed", "error", err)
			}
		}
	}
	rebuilder := indexer.NewRebuilder(builder, openSource, applySnapshot, m)

	if err := rebuilder.Rebuild(ctx); err != nil {
		slog.Error("initial index build failed", "error", err)
		os.Exit(1)
	}

	var collector *analytics.Collector
	var reindexProducer *kafka.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		analyticsProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
		defer analyticsProducer.Close()
		collector = analytics.NewCollector(analyticsProducer, 10000)
		collector.Start(ctx)

		reindexProducer = kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.Reindex)
		defer reindexProducer.Close()

		reindexConsumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.Reindex, rebuilder.Handler())
		go func() {
			if err := reindexConsumer.Start(ctx); err != nil {
				slog.Error("reindex consumer stopped", "error", err)
			}
		}()
	}

	checker := health.NewChecker()
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		if !executor.Ready() {
			return health.ComponentHealth{Status: health.StatusDown, Message: "no snapshot installed"}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	if pgClient != nil {
		checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
			if err := pgClient.Ping(ctx); err != nil {
				return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
			}
			return health.ComponentHealth{Status: health.StatusUp}
		})
	}
	if redisClient != nil {
		checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
			if err := redisClient.Ping(ctx); err != nil {
				return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
			}
			return health.ComponentHealth{Status: health.StatusUp}
		})
	}

	sh := searchhandler.New(
		executor, queryCache, collector, m,
		cfg.Search.DefaultLimit, cfg.Search.MaxLimit, cfg.Search.MaxConcurrentQueries,
	)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /search", sh.Search)
	if store != nil {
		ingest := corpus.NewHandler(store, reindexProducer)
		mux.HandleFunc("POST /records", ingest.Ingest)
	}
	mux.HandleFunc("GET /healthz", checker.LiveHandler())
	mux.HandleFunc("GET /readyz", checker.ReadyHandler())

	var root http.Handler = mux
	root = middleware.Timeout(cfg.Server.RequestTimeout)(root)
	if m != nil {
		root = middleware.Metrics(m)(root)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      root,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	if cfg.Metrics.Enabled {
		go func() {
			addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
			slog.Info("metrics server listening", "addr", addr)
			if err := http.ListenAndServe(addr, metrics.Handler()); err != nil && err != http.ErrServerClosed {
				slog.Error("metrics server failed", "error", err)
			}
		}()
	}

	go func() {
		slog.Info("search service ready", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	if collector != nil {
		collector.Close()
	}
	slog.Info("search service stopped")
}

// openRecordSource opens the configured record source for a build. The
// file is reopened per build so every pass is a fresh single-pass stream.
func openRecordSource(ctx context.Context, cfg config.CorpusConfig, store *corpus.Store) (indexer.RecordSource, error) {
	switch cfg.Source {
	case "postgres":
		if store == nil {
			return nil, fmt.Errorf("corpus source is postgres but postgres is unavailable")
		}
		return store.Source(ctx)
	case "file":
		return indexer.NewFileSource(cfg.Path, cfg.Separator, indexer.DefaultLineLayout())
	default:
		return nil, fmt.Errorf("unknown corpus source %q", cfg.Source)
	}
}
