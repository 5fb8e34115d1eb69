// Command analytics starts the standalone analytics aggregation service.
//
// It consumes translation events from Kafka, aggregates them in memory
// (totals, warning rate, cache hit rate, latency percentiles, top inputs and
// unmatched characters), optionally snapshots the stats to PostgreSQL, and
// exposes GET /api/v1/analytics and GET /api/v1/analytics/snapshots.
//
// Usage:
//
//	go run ./cmd/analytics [-config configs/development.yaml]
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

	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/analytics/aggregator"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/translation"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/postgres"
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
	slog.Info("starting analytics service", "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	agg := analytics.NewAggregator()
	checker := health.NewChecker()

	var snapshots analytics.SnapshotLister
	pgClient, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Warn("postgres unavailable, snapshots disabled", "error", err)
		checker.Register("postgres", health.Disabled("not connected"))
	} else {
		defer pgClient.Close()
		snapStore := aggregator.NewStore(pgClient)
		if err := snapStore.Migrate(ctx); err != nil {
			slog.Error("failed to migrate snapshot store", "error", err)
			os.Exit(1)
		}
		if latest, err := snapStore.LatestSnapshot(ctx); err != nil {
			slog.Warn("reading latest snapshot failed", "error", err)
		} else if latest != nil {
			slog.Info("previous snapshot found",
				"total_translations", latest.TotalTranslations,
				"warning_rate", latest.WarningRate,
			)
		}
		snapStore.StartPeriodicSave(ctx, agg, cfg.Analytics.SnapshotInterval)
		snapshots = snapStore
		checker.Register("postgres", health.PingCheck(pgClient.Ping, false))
	}

	events := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.TranslationEvents, analytics.HandleEvent(agg))
	go func() {
		if err := events.Start(ctx); err != nil {
			slog.Error("translation event consumer error", "error", err)
		}
	}()
	slog.Info("analytics aggregator started", "topic", cfg.Kafka.Topics.TranslationEvents)

	pairs := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.PairsSubmitted, logPairEvent)
	go func() {
		if err := pairs.Start(ctx); err != nil {
			slog.Error("pair event consumer error", "error", err)
		}
	}()

	checker.Register("kafka", func(ctx context.Context) health.ComponentHealth {
		return health.ComponentHealth{Status: health.StatusUp, Message: "consumers active"}
	})

	analyticsHandler := analytics.NewHandler(agg, snapshots)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/analytics", analyticsHandler.Stats)
	mux.HandleFunc("GET /api/v1/analytics/snapshots", analyticsHandler.Snapshots)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.CORS(middleware.DefaultCORSConfig())(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
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

	slog.Info("analytics service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	<-shutdownDone

	slog.Info("analytics service stopped")
}

func logPairEvent(ctx context.Context, key []byte, value []byte) error {
	event, err := kafka.DecodeJSON[translation.PairEvent](value)
	if err != nil {
		slog.Error("failed to decode pair event", "error", err)
		return nil
	}
	slog.Info("pair submitted",
		"pair_id", event.PairID,
		"warning", event.Warning,
		"saved_at", event.SavedAt,
	)
	return nil
}
