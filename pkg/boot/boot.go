// Package boot is the startup sequence shared by the long-running binaries:
// .env, config, logger, signal handling and exit status.
package boot

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// Service is a binary's body. It returns once ctx is cancelled or it fails.
type Service func(ctx context.Context, cfg *config.Config, logg *logger.Logger) error

// Load reads .env when present, then the environment. The returned logger is
// usable even when err is not nil.
func Load(name string, dotenv ...string) (*config.Config, *logger.Logger, error) {
	logg := logger.New(logger.Options{ServiceName: name})
	if err := godotenv.Load(dotenv...); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, logg, err
		}
		logg.Debug(context.Background(), ".env not found, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, logg, err
	}
	return cfg, logger.New(logger.Options{
		ServiceName: name,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Env:         cfg.App.Env,
	}), nil
}

// Main runs svc until SIGINT or SIGTERM and exits non-zero if it fails.
func Main(name string, svc Service) {
	cfg, logg, err := Load(name)
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = svc(ctx, cfg, logg)
	stop()

	if err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(context.Background(), name+" stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(context.Background(), name+" shut down")
}
