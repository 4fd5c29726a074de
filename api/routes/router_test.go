package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	pkgAuth "github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type memoryRedis struct {
	data    map[string]string
	allow   bool
	windows int
}

func newMemoryRedis() *memoryRedis {
	return &memoryRedis{data: map[string]string{}, allow: true}
}

func (m *memoryRedis) Get(_ context.Context, key string) (string, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (m *memoryRedis) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = fmt.Sprint(value)
	return true, nil
}

func (m *memoryRedis) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *memoryRedis) IdempotencyKey(scope, id string) string {
	return "idem:" + scope + ":" + id
}

func (m *memoryRedis) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memoryRedis) FixedWindowAllow(context.Context, string, int64, time.Duration) (bool, int64, error) {
	m.windows++
	return m.allow, int64(m.windows), nil
}

func (m *memoryRedis) Ping(context.Context) error {
	return nil
}

type stubCheckout struct {
	placed int
}

func (s *stubCheckout) Quote(context.Context, checkout.Identity, checkout.QuoteInput) (*checkout.QuoteResult, error) {
	return &checkout.QuoteResult{}, nil
}

func (s *stubCheckout) Place(context.Context, checkout.Identity, checkout.PlaceOrderInput) (*checkout.Result, error) {
	s.placed++
	return &checkout.Result{State: enums.CheckoutStateCOD, ClearCart: true}, nil
}

type stubOrders struct {
	userID string
}

func (s *stubOrders) List(_ context.Context, userID string, _ pagination.Params) (*orders.OrderList, error) {
	s.userID = userID
	return &orders.OrderList{Orders: []orders.OrderView{}}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App:            config.AppConfig{Env: "test"},
		JWT:            config.JWTConfig{Secret: "secret", Issuer: "storefront"},
		Storefront:     config.StorefrontConfig{Currency: "AED", PremiumPlan: "plus"},
		GuestRateLimit: config.GuestRateLimitConfig{Window: time.Minute, Limit: 5},
	}
}

type fixture struct {
	handler  http.Handler
	redis    *memoryRedis
	checkout *stubCheckout
	orders   *stubOrders
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	f := fixture{redis: newMemoryRedis(), checkout: &stubCheckout{}, orders: &stubOrders{}}
	f.handler = NewRouter(RouterParams{
		Config:   testConfig(),
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		DB:       stubPinger{},
		Redis:    f.redis,
		Gatherer: prometheus.NewRegistry(),
		Checkout: f.checkout,
		Orders:   f.orders,
	})
	return f
}

func bearer(t *testing.T, subject string) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(testConfig().JWT, time.Now(), time.Hour, pkgAuth.AccessTokenPayload{
		Subject: subject,
		Email:   "member@example.com",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return "Bearer " + token
}

func guestOrderBody() string {
	return `{"items":{"` + uuid.NewString() + `":1},"paymentMethod":"COD","guestInfo":{"name":"Sam","email":"sam@example.com","phone":"1","address":"Street 1"}}`
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{"/health/live", "/health/ready", "/metrics"} {
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, rec.Code)
		}
	}
}

func TestMemberRoutesRequireToken(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/cart"},
		{http.MethodGet, "/api/v1/orders"},
		{http.MethodGet, "/api/v1/addresses"},
		{http.MethodPost, "/api/v1/coupons/validate"},
		{http.MethodPost, "/api/v1/guest/link"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401 got %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestMemberOrderListUsesSubject(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", bearer(t, "user-9"))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if f.orders.userID != "user-9" {
		t.Fatalf("expected subject user-9, got %q", f.orders.userID)
	}
}

func TestGuestCheckoutNeedsIdempotencyKey(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(guestOrderBody())))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without Idempotency-Key, got %d", rec.Code)
	}
	if f.checkout.placed != 0 {
		t.Fatalf("checkout should not run")
	}
}

func TestGuestCheckoutReplaysRetries(t *testing.T) {
	f := newFixture(t)
	body := guestOrderBody()

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
		req.Header.Set("Idempotency-Key", "retry-1")
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("attempt %d: expected 201 got %d: %s", i, rec.Code, rec.Body.String())
		}
	}
	if f.checkout.placed != 1 {
		t.Fatalf("expected one placement, got %d", f.checkout.placed)
	}
}

func TestGuestCheckoutRateLimited(t *testing.T) {
	f := newFixture(t)
	f.redis.allow = false

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(guestOrderBody()))
	req.Header.Set("Idempotency-Key", "limited")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", rec.Code)
	}
	if f.checkout.placed != 0 {
		t.Fatalf("checkout should not run when limited")
	}
}

func TestMemberCheckoutSkipsGuestLimit(t *testing.T) {
	f := newFixture(t)
	f.redis.allow = false

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{"paymentMethod":"COD","addressId":"`+uuid.NewString()+`"}`))
	req.Header.Set("Idempotency-Key", "member")
	req.Header.Set("Authorization", bearer(t, "user-1"))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if f.redis.windows != 0 {
		t.Fatalf("members should not consume guest windows")
	}
}
