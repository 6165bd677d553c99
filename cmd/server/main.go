// Command server runs the portal front door: it classifies every inbound
// request, enforces the blocklist, and hands admitted requests to the
// content resolver.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"sitegate/internal/analytics"
	analyticsmetrics "sitegate/internal/analytics/metrics"
	"sitegate/internal/blocklist"
	blocklistmetrics "sitegate/internal/blocklist/metrics"
	memorystore "sitegate/internal/blocklist/store/memory"
	postgresstore "sitegate/internal/blocklist/store/postgres"
	redisstore "sitegate/internal/blocklist/store/redis"
	"sitegate/internal/classifier"
	classifymw "sitegate/internal/classifier/middleware"
	classifiermetrics "sitegate/internal/classifier/metrics"
	"sitegate/internal/crashreport"
	"sitegate/internal/observability"
	consolebackend "sitegate/internal/observability/backends/console"
	crashbackend "sitegate/internal/observability/backends/crashreport"
	metricsbackend "sitegate/internal/observability/backends/metrics"
	"sitegate/internal/platform/config"
	"sitegate/internal/platform/httpserver"
	"sitegate/internal/platform/logger"
	platformredis "sitegate/internal/platform/redis"
	httptransport "sitegate/internal/transport/http"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("starting sitegate",
		"environment", cfg.Environment,
		"addr", cfg.Addr,
		"blocklist_policy", cfg.Blocklist.Policy,
		"blocklist_fail_mode", cfg.Blocklist.FailMode,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checks := map[string]httptransport.HealthChecker{}

	store, cleanupStore, err := buildBlocklistStore(ctx, cfg, log, checks)
	if err != nil {
		return err
	}
	defer cleanupStore()

	gate, err := blocklist.New(store, cfg.Blocklist.Policy, cfg.Blocklist.FailMode,
		blocklist.WithLogger(log),
		blocklist.WithMetrics(blocklistmetrics.New()),
		blocklist.WithTimeout(cfg.Blocklist.Timeout),
	)
	if err != nil {
		return fmt.Errorf("build blocklist gate: %w", err)
	}

	sink := observability.NewRegistry(observability.WithFallbackLogger(log))
	sink.RegisterAll(consolebackend.New(log))
	sink.RegisterAll(metricsbackend.New())

	var crashClient *crashreport.Client
	if cfg.CrashReportURL != "" {
		crashClient, err = crashreport.New(cfg.CrashReportURL, crashreport.WithLogger(log))
		if err != nil {
			return fmt.Errorf("build crash reporter: %w", err)
		}
		backend, err := crashbackend.New(crashClient)
		if err != nil {
			return fmt.Errorf("build crash report backend: %w", err)
		}
		sink.Register(observability.SeverityError, backend)
	}

	var publisher analytics.Publisher = analytics.NopPublisher{}
	if len(cfg.Analytics.Brokers) > 0 {
		kafka, err := analytics.NewKafka(ctx, cfg.Analytics.Brokers,
			analytics.WithLogger(log),
			analytics.WithMetrics(analyticsmetrics.New()),
			analytics.WithTopic(cfg.Analytics.Topic),
		)
		if err != nil {
			return fmt.Errorf("build analytics publisher: %w", err)
		}
		publisher = kafka
	} else {
		log.Warn("analytics disabled, no brokers configured")
	}

	service, err := classifier.New(cfg.PortalDomainLength, gate, sink, publisher,
		classifier.WithLogger(log),
		classifier.WithMetrics(classifiermetrics.New()),
	)
	if err != nil {
		return fmt.Errorf("build classifier: %w", err)
	}

	handler := httptransport.NewHandler(httptransport.StubResolver{}, checks)
	router := httptransport.NewRouter(handler, classifymw.New(service, log))
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("http server shutdown", "error", err)
		}
		if err := publisher.Close(shutdownCtx); err != nil {
			log.Error("analytics publisher close", "error", err)
		}
		if crashClient != nil {
			if err := crashClient.Close(shutdownCtx); err != nil {
				log.Error("crash reporter close", "error", err)
			}
		}
		return nil
	})

	return g.Wait()
}

// buildBlocklistStore picks the store backend by configuration precedence:
// Redis, then Postgres, then in-memory. The in-memory store is for local
// development only since it starts empty.
func buildBlocklistStore(ctx context.Context, cfg config.Config, log *slog.Logger, checks map[string]httptransport.HealthChecker) (blocklist.Store, func(), error) {
	if cfg.Redis.URL != "" {
		client, err := platformredis.New(cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		store, err := redisstore.New(client.Client, redisstore.WithSetKey(cfg.Blocklist.SetKey))
		if err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("build redis blocklist store: %w", err)
		}
		checks["redis"] = store
		log.Info("blocklist store: redis", "set_key", cfg.Blocklist.SetKey)
		return store, func() { client.Close() }, nil
	}

	if cfg.Blocklist.PostgresDSN != "" {
		pool, err := pgxpool.New(ctx, cfg.Blocklist.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		store, err := postgresstore.New(pool)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("build postgres blocklist store: %w", err)
		}
		if err := store.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate blocklist schema: %w", err)
		}
		checks["postgres"] = store
		log.Info("blocklist store: postgres")
		return store, pool.Close, nil
	}

	log.Warn("blocklist store: in-memory, no persistent backend configured")
	return memorystore.New(), func() {}, nil
}
