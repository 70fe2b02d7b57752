// Command server runs the compliance gateway HTTP API: ingestion pipeline,
// ledger reads, product queries and report downloads.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"eudrgate/internal/audit"
	"eudrgate/internal/export"
	exporthandler "eudrgate/internal/export/handler"
	httpapi "eudrgate/internal/http"
	"eudrgate/internal/ingest"
	ingesthandler "eudrgate/internal/ingest/handler"
	"eudrgate/internal/ledger"
	"eudrgate/internal/platform/config"
	"eudrgate/internal/platform/httpserver"
	"eudrgate/internal/platform/logger"
	"eudrgate/internal/platform/metrics"
	redisplatform "eudrgate/internal/platform/redis"
	"eudrgate/internal/reconcile"
	"eudrgate/internal/traces"
	"eudrgate/internal/traces/cache"
)

// main wires dependencies and owns the server lifecycle. Business logic
// lives in the internal services packages.
func main() {
	cfg := config.Load()
	log := logger.New()
	slog.SetDefault(log)
	m := metrics.New()

	ctx := context.Background()

	store, checks, cleanup, err := buildLedger(ctx, cfg.Ledger)
	if err != nil {
		log.Error("ledger init failed", "backend", cfg.Ledger.Backend, "error", err)
		os.Exit(1)
	}
	defer cleanup()

	registry, redisClient, err := buildRegistry(cfg, log)
	if err != nil {
		log.Error("registry client init failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		checks = append(checks, httpapi.HealthCheck{Name: "redis", Probe: redisClient.Health})
	}

	auditor, err := buildAuditor(cfg.Audit)
	if err != nil {
		log.Error("audit publisher init failed", "error", err)
		os.Exit(1)
	}
	if closer, ok := auditor.(interface{ Close() }); ok {
		defer closer.Close()
	}

	validator := ingest.NewValidator(registry, cfg.Validation.Concurrency, log, m)
	submitter := ingest.NewSubmitter(registry, traderProfile(cfg.Trader), log, m)
	service := ingest.NewService(validator, submitter, store, auditor, log, m)
	reconciler := reconcile.New(store, registry, auditor, log, m)
	reader := reconcile.NewReader(store, reconciler)
	builder := export.NewBuilder(reader)

	router := httpapi.NewRouter(log,
		ingesthandler.New(service, reader, log),
		exporthandler.New(builder, log),
		checks...,
	)
	srv := httpserver.New(cfg.Server.Addr, router)

	log.Info("starting eudrgate", "addr", cfg.Server.Addr, "ledger_backend", cfg.Ledger.Backend, "registry_mock", cfg.Registry.Mock)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func buildLedger(ctx context.Context, cfg config.LedgerConfig) (ledger.Store, []httpapi.HealthCheck, func(), error) {
	switch cfg.Backend {
	case "postgres":
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		store := ledger.NewPostgresStore(db)
		if err := store.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		check := httpapi.HealthCheck{Name: "postgres", Probe: db.PingContext}
		return store, []httpapi.HealthCheck{check}, func() { db.Close() }, nil
	case "memory":
		return ledger.NewInMemoryStore(), nil, func() {}, nil
	default:
		store, err := ledger.NewFileStore(cfg.FilePath)
		if err != nil {
			return nil, nil, nil, err
		}
		return store, nil, func() {}, nil
	}
}

// buildRegistry picks the registry transport and layers the lookup cache on
// top. Redis backs the cache when configured, otherwise process memory.
func buildRegistry(cfg config.Config, log *slog.Logger) (traces.Client, *redisplatform.Client, error) {
	var client traces.Client
	if cfg.Registry.Mock {
		client = &traces.MockClient{Latency: 50 * time.Millisecond}
	} else {
		httpClient, err := traces.NewHTTPClient(traces.HTTPClientConfig{
			BaseURL:     cfg.Registry.BaseURL,
			BearerToken: cfg.Registry.BearerToken,
			Timeout:     cfg.Registry.Timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		client = httpClient
	}

	if cfg.Validation.CacheTTL <= 0 {
		return client, nil, nil
	}

	redisClient, err := redisplatform.New(cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	var cacheStore cache.Store
	if redisClient != nil {
		cacheStore = cache.NewRedisStore(redisClient.Client)
	} else {
		cacheStore = cache.NewInMemoryStore()
	}
	return cache.New(client, cacheStore, cfg.Validation.CacheTTL, log), redisClient, nil
}

func buildAuditor(cfg config.AuditConfig) (audit.Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return audit.NopPublisher{}, nil
	}
	return audit.NewKafkaPublisher(cfg.Brokers, cfg.Topic)
}

func traderProfile(cfg config.TraderConfig) ingest.TraderProfile {
	return ingest.TraderProfile{
		OperatorName:    cfg.OperatorName,
		OperatorCountry: cfg.OperatorCountry,
		OperatorAddress: cfg.OperatorAddress,
		OperatorEmail:   cfg.OperatorEmail,
		HSHeading:       cfg.HSHeading,
		GoodsDesc:       cfg.GoodsDesc,
		QuantityUnit:    cfg.QuantityUnit,
	}
}
