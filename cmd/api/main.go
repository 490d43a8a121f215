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
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/gocart-backend/api"
	"github.com/angelmondragon/gocart-backend/api/middleware"
	"github.com/angelmondragon/gocart-backend/api/routes"
	"github.com/angelmondragon/gocart-backend/internal/address"
	"github.com/angelmondragon/gocart-backend/internal/auth"
	"github.com/angelmondragon/gocart-backend/internal/cart"
	"github.com/angelmondragon/gocart-backend/internal/orders"
	product "github.com/angelmondragon/gocart-backend/internal/products"
	"github.com/angelmondragon/gocart-backend/internal/ratings"
	"github.com/angelmondragon/gocart-backend/internal/stores"
	"github.com/angelmondragon/gocart-backend/internal/users"
	stripewebhook "github.com/angelmondragon/gocart-backend/internal/webhooks/stripe"
	"github.com/angelmondragon/gocart-backend/pkg/auth/session"
	"github.com/angelmondragon/gocart-backend/pkg/config"
	"github.com/angelmondragon/gocart-backend/pkg/db"
	"github.com/angelmondragon/gocart-backend/pkg/instance"
	"github.com/angelmondragon/gocart-backend/pkg/logger"
	"github.com/angelmondragon/gocart-backend/pkg/metrics"
	"github.com/angelmondragon/gocart-backend/pkg/migrate"
	"github.com/angelmondragon/gocart-backend/pkg/redis"
	"github.com/angelmondragon/gocart-backend/pkg/stripe"
)

const (
	shutdownTimeout   = 15 * time.Second
	limiterSweepEvery = 5 * time.Minute
	stripeEventTTL    = 72 * time.Hour
)

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
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogOutputFormat(),
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.NewHTTPMetrics(registry)
	orderMetrics := metrics.NewOrderMetrics(registry)

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	conn := dbClient.DB()
	userRepo := users.NewRepository(conn)
	storeRepo := stores.NewRepository(conn)
	productRepo := product.NewRepository(conn)

	authService, err := auth.NewService(auth.ServiceParams{
		Users:          userRepo,
		Stores:         storeRepo,
		Tx:             dbClient,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return err
	}
	storeService, err := stores.NewService(storeRepo)
	if err != nil {
		return err
	}
	productService, err := product.NewService(productRepo)
	if err != nil {
		return err
	}
	cartService, err := cart.NewService(cart.ServiceParams{
		Repo:     cart.NewRepository(conn),
		Tx:       dbClient,
		Products: productRepo,
		Cache:    redisClient,
		CacheTTL: cfg.Cart.CacheTTL,
		Logger:   logg,
	})
	if err != nil {
		return err
	}
	addressService, err := address.NewService(address.NewRepository(conn))
	if err != nil {
		return err
	}
	ratingService, err := ratings.NewService(ratings.NewRepository(conn))
	if err != nil {
		return err
	}

	orderParams := orders.ServiceParams{
		Repo:    orders.NewRepository(conn),
		Tx:      dbClient,
		Cart:    cartService,
		Metrics: orderMetrics,
		Logger:  logg,
	}

	var stripeClient *stripe.Client
	if cfg.Stripe.Enabled() {
		stripeClient, err = stripe.NewClient(ctx, cfg.Stripe, logg)
		if err != nil {
			return err
		}
		orderParams.Payments = stripeClient
	} else {
		logg.Warn(ctx, "stripe disabled: STRIPE orders will not receive a client secret")
	}

	orderService, err := orders.NewService(orderParams)
	if err != nil {
		return err
	}

	limiter := middleware.NewIPLimiter(cfg.RateLimit.GeneralRequests, cfg.RateLimit.GeneralWindow)
	go limiter.Janitor(ctx, limiterSweepEvery)

	deps := routes.Dependencies{
		Config:         cfg,
		Logger:         logg,
		DB:             dbClient,
		Redis:          redisClient,
		Sessions:       sessionManager,
		Limiter:        limiter,
		StoreLookup:    storeRepo,
		Auth:           authService,
		Products:       productService,
		Stores:         storeService,
		Orders:         orderService,
		Cart:           cartService,
		Addresses:      addressService,
		Ratings:        ratingService,
		Metrics:        httpMetrics,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}

	if stripeClient != nil {
		events, err := stripewebhook.NewService(stripewebhook.ServiceParams{Orders: orderService, Logger: logg})
		if err != nil {
			return err
		}
		ledger, err := stripewebhook.NewEventLedger(redisClient, stripeEventTTL, "stripe-events")
		if err != nil {
			return err
		}
		deps.StripeSigner = stripeClient
		deps.StripeEvents = events
		deps.StripeLedger = ledger
	}

	server := api.NewServer(cfg, routes.NewRouter(deps))

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     server.Addr,
		"instance": instance.GetID(),
	})
	logg.Info(logCtx, "starting api server")

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
