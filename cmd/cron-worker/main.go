package main

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-backend/internal/cron"
	"github.com/angelmondragon/storefront-backend/pkg/boot"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/migrate"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

const day = 24 * time.Hour

func main() {
	boot.Main("cron-worker", run)
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	outboxJob, err := cron.OutboxRetentionJob(
		logg, dbClient, outbox.NewRepository(dbClient.DB()),
		time.Duration(cfg.Outbox.RetentionDays)*day, cfg.Outbox.MaxAttempts,
	)
	if err != nil {
		return err
	}
	dlqJob, err := cron.DLQRetentionJob(
		logg, dbClient, outbox.NewDeadLetters(dbClient.DB()),
		time.Duration(cfg.Outbox.DLQRetentionDays)*day,
	)
	if err != nil {
		return err
	}

	lock, err := cron.NewRedisLock(redisClient, redis.LockKey("cron-worker", cfg.App.Env), 0)
	if err != nil {
		return err
	}
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(outboxJob, dlqJob),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Outbox.CleanupInterval,
	})
	if err != nil {
		return err
	}

	ctx = logg.WithField(ctx, "interval", cfg.Outbox.CleanupInterval.String())

	listener := metrics.Listen(ctx, cfg.Outbox.CronMetricsAddr, prometheus.DefaultGatherer, logg)
	defer func() { err = multierr.Append(err, listener.Shutdown(ctx)) }()

	logg.Info(ctx, "starting cron worker")
	if err := service.Run(ctx); !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
