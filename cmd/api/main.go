// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Carta storefront API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect the state backend (Redis, or PostgreSQL plus migrations).
//  4. Restore the configuration store and join the replica relay.
//  5. Connect the order queue when configured.
//  6. Wire HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/carta/internal/api"
	"github.com/taibuivan/carta/internal/auth"
	"github.com/taibuivan/carta/internal/core/broadcast"
	"github.com/taibuivan/carta/internal/core/cart"
	"github.com/taibuivan/carta/internal/core/checkout"
	"github.com/taibuivan/carta/internal/core/settings"
	"github.com/taibuivan/carta/internal/platform/config"
	"github.com/taibuivan/carta/internal/platform/constants"
	"github.com/taibuivan/carta/internal/platform/migration"
	pgstore "github.com/taibuivan/carta/internal/platform/postgres"
	redisstore "github.com/taibuivan/carta/internal/platform/redis"
	"github.com/taibuivan/carta/internal/platform/sec"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("[Carta] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("state_backend", cfg.StateBackend),
	)

	// Cancelled on shutdown; stops the relay listener and the rate limiter sweeper.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	var checks []api.DependencyCheck

	// ── 3. Redis ──────────────────────────────────────────────────────────
	// Carries carts and the relay whenever configured, whatever the state backend.
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = redisstore.Connect(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing redis client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()

		checks = append(checks, api.DependencyCheck{Name: "redis", Probe: redisstore.Probe(rdb)})
	}

	// ── 4. PostgreSQL ─────────────────────────────────────────────────────
	var pool *pgxpool.Pool
	if cfg.StateBackend == config.BackendPostgres {
		pool, err = pgstore.Open(startupCtx, cfg.DatabaseURL, log)
		must(log, err, "connect to postgres")
		defer func() {
			log.Info("closing postgres pool")
			pool.Close()
		}()

		_, err = migration.Apply(cfg.DatabaseURL, cfg.MigrationPath, log)
		must(log, err, "run migrations")

		checks = append(checks, api.DependencyCheck{Name: "postgres", Probe: pgstore.Probe(pool)})
	}

	// ── 5. Configuration Store ────────────────────────────────────────────
	var persister settings.Persister
	switch cfg.StateBackend {
	case config.BackendRedis:
		persister = settings.NewRedisPersister(rdb)
	case config.BackendPostgres:
		persister = settings.NewPostgresPersister(pool)
	default:
		persister = settings.NewMemoryPersister()
		log.Warn("state_backend_in_memory", slog.String("hint", "configuration is lost on restart"))
	}

	hub := broadcast.NewHub[settings.Change](log)
	store := settings.NewStore(persister, hub, log, settings.Options{NotificationCap: cfg.NotificationCap})
	store.Restore(startupCtx)

	if rdb != nil {
		relay := settings.NewRedisRelay(rdb, store.Origin(), log)
		store.SetRelay(relay)

		waitRelay, err := relay.Start(rootCtx, store.ApplyRemote)
		must(log, err, "start state relay")
		defer waitRelay()
	}

	// ── 6. Carts ──────────────────────────────────────────────────────────
	var cartRepository cart.Repository = cart.NewMemoryRepository()
	if rdb != nil {
		cartRepository = cart.NewRedisRepository(rdb, cfg.CartTTL)
	}
	cartService := cart.NewService(cartRepository, store, log)

	// ── 7. Order Handoff ──────────────────────────────────────────────────
	var dispatcher checkout.Dispatcher = checkout.NewLogDispatcher(log)
	if cfg.RabbitMQURL != "" {
		channels, err := checkout.DialChannelPool(cfg.RabbitMQURL, cfg.OrderQueue, cfg.ChannelPoolSize, log)
		must(log, err, "connect to rabbitmq")
		defer channels.Close()

		dispatcher = checkout.NewRabbitDispatcher(channels, log)
		checks = append(checks, api.DependencyCheck{Name: "rabbitmq", Probe: func(context.Context) error {
			if !channels.Healthy() {
				return errors.New("connection closed")
			}
			return nil
		}})
	}
	dispatcher = checkout.NewBreakerDispatcher(dispatcher, log, checkout.DefaultBreakerSettings())
	checkoutService := checkout.NewService(store, cartService, dispatcher, log, cfg.CheckoutDelay)

	// ── 8. Auth Service ───────────────────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.SessionSecret, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	authService := auth.NewService(auth.Credentials{
		Username:     cfg.AdminUsername,
		PasswordHash: cfg.AdminPasswordHash,
	}, jwtSvc, cfg.AdminTokenTTL, log)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	liveness, readiness := api.NewHealthHandlers(checks, log)

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService),
		Settings:  settings.NewHandler(store),
		Cart:      cart.NewHandler(cartService),
		Checkout:  checkout.NewHandler(checkoutService),
	}

	server := api.NewServer(rootCtx, cfg, log, jwtSvc, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	// Event streams only end when their context does, so stop them first.
	rootCancel()

	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting_down_server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
	}

	log.Info("server_stopped")
}

// newLogger builds the JSON logger tagged with the application name.
func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.AppName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
