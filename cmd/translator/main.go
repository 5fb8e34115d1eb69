// Command translator serves Merriam-Webster to IPA translation over HTTP and,
// when enabled, JSON-over-TCP RPC.
//
// Redis, PostgreSQL, and Kafka are optional: without Redis translations are
// not cached, without PostgreSQL pair submission is disabled, and Kafka
// failures only drop analytics and pair events.
//
// Usage:
//
//	go run ./cmd/translator [-config configs/development.yaml]
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

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/phonetics"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/translation/cache"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/translation/handler"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/translation/publisher"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/translation/router"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/translation/service"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/translation/store"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/translation/validator"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/ratelimit"
	pkgredis "github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/resilience"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/rpc"
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
	slog.Info("starting translator service", "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port, prometheus.DefaultGatherer)
		defer shutdownMetrics(context.Background())
	}

	translator := phonetics.Default()
	table := translator.Table()
	m.SymbolTableSize.Set(float64(table.Len()))
	if dups := table.Duplicates(); len(dups) > 0 {
		slog.Warn("symbol table has duplicate tokens, last definition wins", "tokens", dups)
	}
	slog.Info("symbol table loaded", "tokens", table.Len(), "ambiguous_prefixes", len(table.Ambiguous()))

	checker := health.NewChecker()
	checker.Register("symbol_table", func(ctx context.Context) health.ComponentHealth {
		if table.Len() == 0 {
			return health.ComponentHealth{Status: health.StatusDown, Message: "empty symbol table"}
		}
		return health.ComponentHealth{Status: health.StatusUp, Message: fmt.Sprintf("%d tokens", table.Len())}
	})

	var transcriptionCache *cache.TranscriptionCache
	redisClient, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, translation caching disabled", "error", err)
		checker.Register("redis", health.Disabled("not connected"))
	} else {
		defer redisClient.Close()
		transcriptionCache = cache.New(redisClient, cfg.Redis.CacheTTL)
		checker.Register("redis", health.PingCheck(redisClient.Ping, false))
		slog.Info("translation cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}

	eventsProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.TranslationEvents)
	defer eventsProducer.Close()
	collector := analytics.NewCollector(eventsProducer, cfg.Analytics.BufferSize, m)
	collector.Start(ctx)
	defer collector.Close()
	slog.Info("analytics collector started", "topic", eventsProducer.Topic())

	v := validator.New(cfg.Translation.MaxInputLength)
	svcOpts := service.Options{Tracker: collector, Metrics: m}
	if transcriptionCache != nil {
		svcOpts.Cache = transcriptionCache
	}
	svc := service.New(translator, v, svcOpts)

	var deps handler.Deps
	if transcriptionCache != nil {
		deps.Cache = transcriptionCache
	}
	pgClient, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Warn("postgres unavailable, pair submission disabled", "error", err)
		checker.Register("postgres", health.Disabled("not connected"))
	} else {
		defer pgClient.Close()
		if err := store.Migrate(ctx, pgClient); err != nil {
			slog.Error("failed to migrate pair store", "error", err)
			os.Exit(1)
		}
		breaker := resilience.NewCircuitBreaker("postgres", resilience.CircuitBreakerConfig{
			OnStateChange: func(name string, to resilience.State) {
				m.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			},
		})
		m.CircuitBreakerState.WithLabelValues(breaker.Name()).Set(float64(resilience.StateClosed))
		pairStore := store.New(pgClient.DB, breaker)

		pairsProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.PairsSubmitted)
		defer pairsProducer.Close()
		pub := publisher.New(translator, pairStore, publisher.Options{
			Producer: pairsProducer,
			Topic:    pairsProducer.Topic(),
			Tracker:  collector,
			Metrics:  m,
		})

		deps.Submitter = pub
		deps.Pairs = pairStore
		checker.Register("postgres", health.PingCheck(pgClient.Ping, false))
		slog.Info("pair storage enabled", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)
	}

	h := handler.New(svc, deps, handler.Config{
		SamplesFile:       cfg.Translation.SamplesFile,
		SampleConcurrency: cfg.Translation.SampleConcurrency,
		DefaultPairLimit:  cfg.Translation.DefaultPairLimit,
		MaxPairLimit:      cfg.Translation.MaxPairLimit,
	})

	if cfg.RPC.Enabled {
		rpcServer := rpc.NewServer()
		handler.RegisterRPC(rpcServer, svc)
		go func() {
			if err := rpcServer.ListenAndServe(cfg.RPC.Addr); err != nil {
				slog.Error("rpc server error", "error", err)
			}
		}()
		defer rpcServer.Stop()
		slog.Info("rpc server enabled", "addr", cfg.RPC.Addr, "methods", rpcServer.MethodCount())
	}

	limiter := ratelimit.New(cfg.Translation.RateLimit, cfg.Translation.RateWindow)
	defer limiter.Close()

	var traceSampling float64
	if cfg.Tracing.Enabled {
		traceSampling = cfg.Tracing.SampleRate
	}

	server := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router.New(h, router.Options{
			Checker:        checker,
			Limiter:        limiter,
			RateWindow:     cfg.Translation.RateWindow,
			Metrics:        m,
			RequestTimeout: cfg.Server.WriteTimeout,
			TraceSampling:  traceSampling,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("translator service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	// In-flight requests still hold the collector and store clients until
	// Shutdown returns; the deferred closes must not run before that.
	<-shutdownDone

	slog.Info("translator service stopped")
}
