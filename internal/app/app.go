package app

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

	"github.com/redis/go-redis/v9"

	"go-shop-api/internal/config"
	"go-shop-api/internal/database"
	"go-shop-api/internal/handler"
	"go-shop-api/internal/metrics"
	"go-shop-api/internal/middleware"
	"go-shop-api/internal/password"
	"go-shop-api/internal/reporting"
	"go-shop-api/internal/repository"
	"go-shop-api/internal/router"
	"go-shop-api/internal/service"
	"go-shop-api/internal/token"
	"go-shop-api/internal/validation"
	"go-shop-api/internal/whitelist"
)

type App struct {
	server       *http.Server
	cleanupFuncs []func()
}

func New(cfg *config.Config) (*App, error) {
	a := &App{}
	ok := false
	defer func() {
		if !ok {
			a.cleanup()
		}
	}()

	if err := reporting.Init(cfg.SentryDSN, cfg.SentryEnvironment); err != nil {
		slog.Error("sentry init failed", "error", err)
	}
	a.cleanupFuncs = append(a.cleanupFuncs, func() { reporting.Flush(2 * time.Second) })

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.cleanupFuncs = append(a.cleanupFuncs, db.Close)

	if err := db.Migrate(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	healthChecks := map[string]handler.HealthCheck{"postgres": db.Health}

	var store whitelist.Store
	switch cfg.WhitelistBackend {
	case config.WhitelistRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		a.cleanupFuncs = append(a.cleanupFuncs, func() { _ = client.Close() })

		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		healthChecks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		store = whitelist.NewRedisStore(client)
	default:
		store = repository.NewTokenRepository(db.Pool)
	}
	slog.Info("refresh whitelist ready", "backend", cfg.WhitelistBackend)

	m := metrics.New()

	codec, err := token.NewCodec(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}
	hasher, err := password.NewBcrypt(cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize password hasher: %w", err)
	}
	refreshWhitelist := whitelist.New(store, cfg.JWTRefreshTTL, whitelist.WithPurgeHook(m.ObservePurge))

	authService, err := service.NewAuthService(repository.NewUserRepository(db.Pool), hasher, codec, refreshWhitelist, m)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize auth service: %w", err)
	}
	cartService := service.NewCartService(repository.NewCartRepository(db.Pool))

	validate := validation.New()
	appRouter := router.New(cfg, middleware.NewAuthMiddleware(authService), router.Handlers{
		Auth:    handler.NewAuthHandler(authService, validate),
		Cart:    handler.NewCartHandler(cartService, validate),
		Health:  handler.NewHealthHandler(healthChecks),
		Metrics: m.Handler(),
	}, m)

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	refreshWhitelist.StartCleanup(cleanupCtx, cfg.WhitelistCleanupInterval)
	a.cleanupFuncs = append(a.cleanupFuncs, cleanupCancel)

	a.server = &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadTimeout,
		ReadTimeout:       cfg.ServerReadTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	ok = true
	return a, nil
}

// cleanup releases resources in reverse acquisition order.
func (a *App) cleanup() {
	for i := len(a.cleanupFuncs) - 1; i >= 0; i-- {
		a.cleanupFuncs[i]()
	}
}

func (a *App) Run() error {
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		a.cleanup()
		return fmt.Errorf("server failed: %w", err)
	case <-stop:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shutdownErr := a.server.Shutdown(ctx)
	a.cleanup()
	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	slog.Info("server stopped")
	return nil
}
