package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/address"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/internal/coupons"
	"github.com/angelmondragon/storefront-backend/internal/guests"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/shipping"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// RedisStore is the slice of the redis client the HTTP layer needs.
type RedisStore interface {
	middleware.IdempotencyStore
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
	Ping(ctx context.Context) error
}

type RouterParams struct {
	Config    *config.Config
	Logger    *logger.Logger
	DB        controllers.Pinger
	Redis     RedisStore
	Gatherer  prometheus.Gatherer
	Catalog   catalog.Service
	Carts     cart.Service
	Checkout  checkout.Service
	Coupons   coupons.Service
	Shipping  shipping.Service
	Addresses address.Service
	Orders    orders.Service
	Guests    guests.Service
}

func NewRouter(p RouterParams) http.Handler {
	cfg, logg := p.Config, p.Logger
	premium := cfg.Storefront.PremiumPlan

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.Storefront.CORSOrigins),
	)

	readiness := map[string]controllers.Pinger{"db": p.DB, "redis": p.Redis}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	gatherer := p.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	idempotent := middleware.Idempotency(p.Redis, middleware.IdempotencyTTL, logg)
	orderIdempotent := middleware.Idempotency(p.Redis, middleware.OrderIdempotencyTTL, logg)

	r.Route("/api/v1", func(r chi.Router) {
		// storefront routes: guests welcome, a bearer token upgrades the caller
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(cfg.JWT, logg))

			r.Get("/products", controllers.ProductList(p.Catalog, logg))
			r.Get("/shipping", controllers.ShippingSettings(p.Shipping, logg))
			r.Post("/cart/quote", controllers.CartQuote(p.Checkout, premium, logg))

			guestLimit := middleware.GuestRateLimit(middleware.GuestLimit{
				Name:   "checkout",
				Window: cfg.GuestRateLimit.Window,
				Limit:  cfg.GuestRateLimit.Limit,
			}, p.Redis, logg)
			r.With(guestLimit, orderIdempotent).Post("/orders", controllers.OrderPlace(p.Checkout, premium, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Get("/cart", controllers.CartGet(p.Carts, p.Checkout, premium, logg))
			r.With(idempotent).Put("/cart", controllers.CartReplace(p.Carts, logg))
			r.Delete("/cart", controllers.CartClear(p.Carts, logg))

			r.Post("/coupons/validate", controllers.CouponValidate(p.Coupons, logg))

			r.Get("/addresses", controllers.AddressList(p.Addresses, logg))
			r.With(idempotent).Post("/addresses", controllers.AddressCreate(p.Addresses, logg))

			r.Get("/orders", controllers.OrderList(p.Orders, logg))
			r.With(idempotent).Post("/guest/link", controllers.GuestLink(p.Guests, logg))
		})
	})

	return r
}
