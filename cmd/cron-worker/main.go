package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/gocart-backend/internal/cart"
	"github.com/angelmondragon/gocart-backend/internal/cron"
	"github.com/angelmondragon/gocart-backend/internal/orders"
	product "github.com/angelmondragon/gocart-backend/internal/products"
	"github.com/angelmondragon/gocart-backend/pkg/config"
	"github.com/angelmondragon/gocart-backend/pkg/db"
	"github.com/angelmondragon/gocart-backend/pkg/instance"
	"github.com/angelmondragon/gocart-backend/pkg/logger"
	"github.com/angelmondragon/gocart-backend/pkg/metrics"
	"github.com/angelmondragon/gocart-backend/pkg/migrate"
	"github.com/angelmondragon/gocart-backend/pkg/redis"
)

const serviceName = "cron-worker"

func main() {
	once := flag.Bool("once", false, "run every job a single time and exit")
	flag.Parse()

	bootLog := logger.New(logger.Options{ServiceName: serviceName})
	if err := godotenv.Load(); err != nil {
		bootLog.Warn(context.Background(), ".env file not found, relying on environment")
	}
	cfg, err := config.Load()
	if err != nil {
		bootLog.Error(context.Background(), "config.load_failed", err)
		os.Exit(1)
	}
	cfg.Service.Kind = serviceName

	logg := logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogOutputFormat(),
	})
	if err := run(cfg, logg, *once); err != nil {
		logg.Error(context.Background(), "cron.worker_failed", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger, once bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"interval": cfg.Cron.Interval.String(),
		"instance": instance.GetID(),
	})

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer dbClient.Close()
	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("dev migrations: %w", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer redisClient.Close()

	service, err := buildScheduler(cfg, logg, dbClient, redisClient)
	if err != nil {
		return err
	}

	if once {
		logg.Info(ctx, "cron.run_once")
		return service.RunOnce(ctx)
	}
	logg.Info(ctx, "cron.started")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// buildScheduler wires the jobs the worker owns. Only the stale unpaid order
// sweep runs today.
func buildScheduler(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client) (*cron.Service, error) {
	conn := dbClient.DB()
	cartService, err := cart.NewService(cart.ServiceParams{
		Repo:     cart.NewRepository(conn),
		Tx:       dbClient,
		Products: product.NewRepository(conn),
		Cache:    redisClient,
		CacheTTL: cfg.Cart.CacheTTL,
		Logger:   logg,
	})
	if err != nil {
		return nil, fmt.Errorf("cart service: %w", err)
	}
	orderService, err := orders.NewService(orders.ServiceParams{
		Repo:    orders.NewRepository(conn),
		Tx:      dbClient,
		Cart:    cartService,
		Metrics: metrics.NewOrderMetrics(prometheus.DefaultRegisterer),
		Logger:  logg,
	})
	if err != nil {
		return nil, fmt.Errorf("order service: %w", err)
	}
	staleOrders, err := cron.NewStaleOrdersJob(cron.StaleOrdersJobParams{
		Logger:    logg,
		Orders:    orderService,
		OlderThan: cfg.Orders.StaleUnpaidAfter,
	})
	if err != nil {
		return nil, fmt.Errorf("stale orders job: %w", err)
	}
	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(serviceName), cfg.Cron.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("cron lock: %w", err)
	}
	return cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(staleOrders),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
}
