package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"probook/internal/api"
	"probook/internal/config"
	"probook/internal/engine"
	"probook/internal/events"
	"probook/internal/metrics"
	"probook/internal/seed"
	"probook/internal/store"
)

func main() {
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("PROBOOK_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	cat, err := cfg.Catalog()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid service catalog")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		st  store.Store
		rdb *redis.Client
	)
	switch cfg.Storage.Backend {
	case config.BackendFile:
		st, err = store.NewFileStore(cfg.Storage.Path, &logger)
	case config.BackendSQLite:
		var ss *store.SQLiteStore
		ss, err = store.NewSQLiteStore(cfg.Storage.Path, &logger)
		if ss != nil {
			defer ss.Close()
		}
		st = ss
	case config.BackendRedis:
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Storage.Redis.Address,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
		})
		defer rdb.Close()
		st = store.NewRedisStore(rdb, cfg.Storage.Redis.Key, &logger)
	case config.BackendMemory:
		st = store.NewMemoryStore()
	default:
		logger.Fatal().Str("backend", cfg.Storage.Backend).Msg("unknown storage backend")
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open store")
	}

	if cfg.Seed.Enabled {
		if err := seed.Apply(ctx, st, &logger); err != nil {
			logger.Error().Err(err).Msg("seeding demo bookings failed")
		}
	}

	bus := events.NewEventBus()
	eng := engine.New(st, cat, bus, &logger, engine.Options{
		FlagConflictOverrides: cfg.Booking.FlagConflictOverrides,
	})

	switch cfg.Storage.Backend {
	case config.BackendFile, config.BackendSQLite:
		backup := store.NewBackupService(cfg.Storage.Path, cfg.Backup, &logger)
		go backup.Start()
		defer backup.Stop()
	}

	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	server := api.NewHTTPServer(eng, api.Config{
		Port:           cfg.Server.Port,
		APIKey:         cfg.Server.APIKey,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
	}, &logger)

	logger.Info().Str("backend", cfg.Storage.Backend).Msg("probook started")
	if err := server.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("api server failed")
	}
}

func startHealthServer(ctx context.Context, port int, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
