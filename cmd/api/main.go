package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/shophub-backend/api/routes"
	"github.com/angelmondragon/shophub-backend/internal/auth"
	"github.com/angelmondragon/shophub-backend/internal/cart"
	"github.com/angelmondragon/shophub-backend/internal/catalog"
	"github.com/angelmondragon/shophub-backend/internal/checkout"
	"github.com/angelmondragon/shophub-backend/internal/checkout/reservation"
	"github.com/angelmondragon/shophub-backend/internal/orders"
	"github.com/angelmondragon/shophub-backend/internal/users"
	"github.com/angelmondragon/shophub-backend/pkg/auth/session"
	"github.com/angelmondragon/shophub-backend/pkg/config"
	"github.com/angelmondragon/shophub-backend/pkg/db"
	"github.com/angelmondragon/shophub-backend/pkg/logger"
	"github.com/angelmondragon/shophub-backend/pkg/metrics"
	"github.com/angelmondragon/shophub-backend/pkg/migrate"
	"github.com/angelmondragon/shophub-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       cfg.App.LogLevel,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		_ = dbClient.Close()
		os.Exit(1)
	}

	// Redis backs sessions, auth rate limits and idempotency. Without it the
	// API still serves; tokens are trusted until they expire.
	var (
		redisClient *redis.Client
		sessions    *session.Manager
	)
	if cfg.Redis.Configured() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			_ = dbClient.Close()
			os.Exit(1)
		}
		sessions, err = session.NewManager(redisClient, cfg.JWT)
		if err != nil {
			logg.Error(ctx, "failed to create session manager", err)
			_ = closeAll(dbClient, redisClient)
			os.Exit(1)
		}
	} else {
		logg.Warn(ctx, "redis not configured; sessions, rate limits and idempotency disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	deps, err := buildDependencies(cfg, logg, dbClient, redisClient, sessions, registry)
	if err != nil {
		logg.Error(ctx, "failed to wire services", err)
		_ = closeAll(dbClient, redisClient)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	serverCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(serverCtx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	exitCode := 0
	select {
	case err := <-serveErr:
		if err != nil {
			logg.Error(serverCtx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	case <-ctx.Done():
		logg.Info(serverCtx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := multierr.Combine(server.Shutdown(shutdownCtx), closeAll(dbClient, redisClient)); err != nil {
		logg.Error(serverCtx, "error during shutdown", err)
		exitCode = 1
	}
	logg.Info(serverCtx, "api server stopped")
	os.Exit(exitCode)
}

func buildDependencies(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	sessions *session.Manager,
	registry *prometheus.Registry,
) (routes.Dependencies, error) {
	conn := dbClient.DB()

	deps := routes.Dependencies{
		Config:   cfg,
		Logger:   logg,
		DB:       dbClient,
		Redis:    redisClient,
		Gatherer: registry,
		HTTP:     metrics.NewHTTPMetrics(registry),
	}

	params := auth.ServiceParams{
		UserRepo:       users.NewRepository(conn),
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	}
	// Assigned only when present so the interfaces stay nil rather than
	// holding a nil pointer.
	if sessions != nil {
		params.SessionManager = sessions
		deps.Sessions = sessions
	}
	authService, err := auth.NewService(params)
	if err != nil {
		return deps, err
	}

	catalogService, err := catalog.NewService(catalog.NewRepository(conn))
	if err != nil {
		return deps, err
	}

	cartRepo := cart.NewRepository(conn)
	cartService, err := cart.NewService(dbClient, cartRepo, catalogService, cart.PricingFromConfig(cfg.Store))
	if err != nil {
		return deps, err
	}

	orderMetrics := metrics.NewOrderMetrics(registry)
	ordersRepo := orders.NewRepository(conn)
	ordersService, err := orders.NewService(ordersRepo, dbClient, reservation.Releaser{}, orderMetrics, logg)
	if err != nil {
		return deps, err
	}

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Tx:         dbClient,
		CartRepo:   cartRepo,
		OrdersRepo: ordersRepo,
		Store:      cfg.Store,
		Metrics:    orderMetrics,
		Logger:     logg,
	})
	if err != nil {
		return deps, err
	}

	deps.Auth = authService
	deps.Catalog = catalogService
	deps.Cart = cartService
	deps.Checkout = checkoutService
	deps.Orders = ordersService
	return deps, nil
}

func closeAll(dbClient *db.Client, redisClient *redis.Client) error {
	var err error
	if redisClient != nil {
		err = multierr.Append(err, redisClient.Close())
	}
	if dbClient != nil {
		err = multierr.Append(err, dbClient.Close())
	}
	return err
}
