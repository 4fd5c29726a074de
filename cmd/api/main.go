package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-backend/api/routes"
	"github.com/angelmondragon/storefront-backend/internal/address"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/internal/coupons"
	"github.com/angelmondragon/storefront-backend/internal/guests"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/shipping"
	"github.com/angelmondragon/storefront-backend/pkg/boot"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/env"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/migrate"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
	"github.com/angelmondragon/storefront-backend/pkg/stripe"
)

const shutdownTimeout = 15 * time.Second

func main() {
	boot.Main("api", run)
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

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	params, err := buildServices(ctx, cfg, logg, dbClient, redisClient, checkoutMetrics)
	if err != nil {
		return err
	}
	params.Config = cfg
	params.Logger = logg
	params.DB = dbClient
	params.Redis = redisClient
	params.Gatherer = registry

	server := &http.Server{
		Addr:              ":" + env.Get(cfg.App.Port, "PORT"),
		Handler:           routes.NewRouter(params),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	ctx = logg.WithField(ctx, "addr", server.Addr)

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(ctx, "shutdown signal received; draining requests")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func buildServices(
	ctx context.Context,
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	checkoutMetrics *metrics.CheckoutMetrics,
) (routes.RouterParams, error) {
	var p routes.RouterParams
	gormDB := dbClient.DB()

	catalogSvc, err := catalog.NewService(catalog.NewRepository(gormDB), redisClient, logg)
	if err != nil {
		return p, err
	}
	cartRepo := cart.NewRepository(gormDB)
	cartSvc, err := cart.NewService(cartRepo, catalogSvc)
	if err != nil {
		return p, err
	}
	couponSvc, err := coupons.NewService(coupons.NewRepository(gormDB), logg)
	if err != nil {
		return p, err
	}
	shippingSvc, err := shipping.NewService(shipping.NewRepository(gormDB))
	if err != nil {
		return p, err
	}
	addressSvc, err := address.NewService(address.NewRepository(gormDB))
	if err != nil {
		return p, err
	}
	orderRepo := orders.NewRepository(gormDB)
	orderSvc, err := orders.NewService(orderRepo)
	if err != nil {
		return p, err
	}
	guestRepo := guests.NewRepository(gormDB)
	events := outbox.NewService(outbox.NewRepository(gormDB), logg)

	guestSvc, err := guests.NewService(guests.ServiceParams{
		DB:      dbClient,
		Guests:  guestRepo,
		Orders:  orderRepo,
		Outbox:  events,
		Metrics: checkoutMetrics,
		Logger:  logg,
	})
	if err != nil {
		return p, err
	}

	checkoutParams := checkout.ServiceParams{
		DB:        dbClient,
		Carts:     cartSvc,
		CartStore: cartRepo,
		Addresses: addressSvc,
		Coupons:   couponSvc,
		Shipping:  shippingSvc,
		Orders:    orderRepo,
		Guests:    guestRepo,
		Outbox:    events,
		Metrics:   checkoutMetrics,
		Logger:    logg,
		Currency:  cfg.Storefront.Currency,
	}
	if cfg.Stripe.APIKey == "" {
		logg.Warn(ctx, "stripe api key not set; online payment disabled")
	} else {
		payments, err := stripe.NewClient(ctx, cfg.Stripe, logg)
		if err != nil {
			return p, err
		}
		checkoutParams.Payments = payments
	}
	checkoutSvc, err := checkout.NewService(checkoutParams)
	if err != nil {
		return p, err
	}

	p.Catalog = catalogSvc
	p.Carts = cartSvc
	p.Checkout = checkoutSvc
	p.Coupons = couponSvc
	p.Shipping = shippingSvc
	p.Addresses = addressSvc
	p.Orders = orderSvc
	p.Guests = guestSvc
	return p, nil
}
