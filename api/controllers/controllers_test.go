package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/internal/coupons"
	"github.com/angelmondragon/storefront-backend/internal/guests"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/pricing"
	pkgAuth "github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func memberContext(plan string) context.Context {
	return middleware.WithClaims(context.Background(), &pkgAuth.AccessTokenClaims{
		Email:            "member@example.com",
		Phone:            "+971500000001",
		Plan:             plan,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	})
}

type errorBody struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body
}

type stubCheckout struct {
	identity checkout.Identity
	placed   checkout.PlaceOrderInput
	quoted   checkout.QuoteInput
	result   *checkout.Result
	quote    *checkout.QuoteResult
	err      error
}

func (s *stubCheckout) Quote(_ context.Context, identity checkout.Identity, input checkout.QuoteInput) (*checkout.QuoteResult, error) {
	s.identity = identity
	s.quoted = input
	return s.quote, s.err
}

func (s *stubCheckout) Place(_ context.Context, identity checkout.Identity, input checkout.PlaceOrderInput) (*checkout.Result, error) {
	s.identity = identity
	s.placed = input
	return s.result, s.err
}

func TestOrderPlaceGuest(t *testing.T) {
	stub := &stubCheckout{result: &checkout.Result{State: enums.CheckoutStateCOD, ClearCart: true}}
	body := `{"items":{"` + uuid.NewString() + `":2},"paymentMethod":"COD","guestInfo":{"name":"Sam","email":"sam@example.com","phone":"1","address":"Street 1"}}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	rec := httptest.NewRecorder()
	OrderPlace(stub, "plus", testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if !stub.identity.Guest() {
		t.Fatalf("expected guest identity, got %+v", stub.identity)
	}
	if stub.placed.Guest == nil || stub.placed.Guest.Email != "sam@example.com" {
		t.Fatalf("guest contact not forwarded: %+v", stub.placed.Guest)
	}
}

func TestOrderPlaceMemberPremiumFromClaims(t *testing.T) {
	stub := &stubCheckout{result: &checkout.Result{State: enums.CheckoutStateCOD}}
	addressID := uuid.New()
	body := `{"addressId":"` + addressID.String() + `","paymentMethod":"COD"}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body)).WithContext(memberContext("plus"))
	rec := httptest.NewRecorder()
	OrderPlace(stub, "plus", testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rec.Code)
	}
	if stub.identity.UserID != "user-1" || !stub.identity.Premium {
		t.Fatalf("unexpected identity %+v", stub.identity)
	}
	if stub.placed.AddressID == nil || *stub.placed.AddressID != addressID {
		t.Fatalf("address id not forwarded")
	}
}

func TestOrderPlaceRejectsMalformedAddressID(t *testing.T) {
	stub := &stubCheckout{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{"addressId":"nope","paymentMethod":"COD"}`))
	rec := httptest.NewRecorder()
	OrderPlace(stub, "plus", testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestOrderPlacePaymentFailureCarriesOrderID(t *testing.T) {
	orderID := uuid.NewString()
	stub := &stubCheckout{err: pkgerrors.New(pkgerrors.CodePaymentInitiation, "could not start payment").
		WithDetails(map[string]any{"orderId": orderID})}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{"paymentMethod":"STRIPE"}`)).WithContext(memberContext(""))
	rec := httptest.NewRecorder()
	OrderPlace(stub, "plus", testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 got %d", rec.Code)
	}
	body := decodeError(t, rec)
	if body.Error.Details["orderId"] != orderID {
		t.Fatalf("expected orderId detail, got %v", body.Error.Details)
	}
}

type stubCoupons struct {
	code  string
	scope coupons.Scope
	err   error
}

func (s *stubCoupons) Validate(_ context.Context, code string, scope coupons.Scope) (*coupons.Applied, error) {
	s.code = code
	s.scope = scope
	if s.err != nil {
		return nil, s.err
	}
	discount, err := pricing.NewDiscount(enums.DiscountPercentage, decimal.NewFromInt(10))
	if err != nil {
		return nil, err
	}
	return &coupons.Applied{
		Coupon:   models.Coupon{Code: "SAVE10", DiscountType: enums.DiscountPercentage, Discount: decimal.NewFromInt(10)},
		Discount: discount,
	}, nil
}

func TestCouponValidateRequiresCode(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/coupons/validate", strings.NewReader(`{"cartTotal":"100"}`))
	CouponValidate(&stubCoupons{}, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestCouponValidateReportsDiscount(t *testing.T) {
	stub := &stubCoupons{}
	storeID := uuid.New()
	body := `{"code":"save10","cartTotal":"250","storeId":"` + storeID.String() + `"}`
	rec := httptest.NewRecorder()
	CouponValidate(stub, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/coupons/validate", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.code != "save10" || len(stub.scope.StoreIDs) != 1 || stub.scope.StoreIDs[0] != storeID {
		t.Fatalf("unexpected validate call %q %+v", stub.code, stub.scope)
	}
	if !stub.scope.Subtotal.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("unexpected subtotal %s", stub.scope.Subtotal)
	}
	var payload struct {
		Data couponResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Data.DiscountAmount != "25.00" || payload.Data.Code != "SAVE10" {
		t.Fatalf("unexpected payload %+v", payload.Data)
	}
}

func TestCouponValidateNotFound(t *testing.T) {
	stub := &stubCoupons{err: pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")}
	rec := httptest.NewRecorder()
	CouponValidate(stub, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/coupons/validate", strings.NewReader(`{"code":"nope","cartTotal":"10"}`)))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
	if msg := decodeError(t, rec).Error.Message; msg != "coupon not found" {
		t.Fatalf("unexpected message %q", msg)
	}
}

type stubCatalog struct {
	sort enums.ProductSort
}

func (s *stubCatalog) List(_ context.Context, sortKey enums.ProductSort) ([]catalog.ProductView, error) {
	s.sort = sortKey
	return nil, nil
}

func (s *stubCatalog) Resolve(context.Context, []uuid.UUID) ([]catalog.ProductView, error) {
	return nil, nil
}

func TestProductListSortKeys(t *testing.T) {
	stub := &stubCatalog{}
	rec := httptest.NewRecorder()
	ProductList(stub, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products?sortBy=rating", nil))
	if rec.Code != http.StatusOK || stub.sort != enums.ProductSortRating {
		t.Fatalf("expected rating sort, got %d %q", rec.Code, stub.sort)
	}
	if !strings.Contains(rec.Body.String(), `"products":[]`) {
		t.Fatalf("expected empty product array, got %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	ProductList(stub, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products?sortBy=price", nil))
	if rec.Code != http.StatusOK || stub.sort != enums.ProductSortNewest {
		t.Fatalf("expected unknown sort to fall back to newest, got %d %q", rec.Code, stub.sort)
	}
}

type stubGuests struct {
	userID  string
	contact guests.Contact
}

func (s *stubGuests) Link(_ context.Context, userID string, contact guests.Contact) (guests.LinkResult, error) {
	s.userID = userID
	s.contact = contact
	return guests.LinkResult{Linked: true, Count: 2, Message: "linked"}, nil
}

func TestGuestLinkUsesTokenContact(t *testing.T) {
	stub := &stubGuests{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/guest/link", nil).WithContext(memberContext(""))
	rec := httptest.NewRecorder()
	GuestLink(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if stub.userID != "user-1" || stub.contact.Email != "member@example.com" || stub.contact.Phone != "+971500000001" {
		t.Fatalf("unexpected link call %q %+v", stub.userID, stub.contact)
	}
}

func TestGuestLinkRequiresClaims(t *testing.T) {
	rec := httptest.NewRecorder()
	GuestLink(&stubGuests{}, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/guest/link", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

type stubOrders struct {
	list   orders.OrderList
	limit  int
	cursor string
}

func (s *stubOrders) List(_ context.Context, _ string, params pagination.Params) (*orders.OrderList, error) {
	s.limit = params.Limit
	s.cursor = params.Cursor
	return &s.list, nil
}

func TestOrderListParsesPaging(t *testing.T) {
	stub := &stubOrders{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?limit=5&cursor=abc", nil).WithContext(memberContext(""))
	rec := httptest.NewRecorder()
	OrderList(stub, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || stub.limit != 5 || stub.cursor != "abc" {
		t.Fatalf("unexpected paging %d %d %q", rec.Code, stub.limit, stub.cursor)
	}

	rec = httptest.NewRecorder()
	OrderList(stub, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders?limit=500", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for out of range limit, got %d", rec.Code)
	}
}

type pingerFunc func(context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthReadyReportsDependency(t *testing.T) {
	cfg := &config.Config{}
	ok := pingerFunc(func(context.Context) error { return nil })
	down := pingerFunc(func(context.Context) error { return io.ErrUnexpectedEOF })

	rec := httptest.NewRecorder()
	HealthReady(cfg, testLogger(), map[string]Pinger{"db": ok, "redis": ok}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	HealthReady(cfg, testLogger(), map[string]Pinger{"db": ok, "redis": down}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rec.Code)
	}
}
