package coupons

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type couponFinder interface {
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
}

// Scope describes the cart a coupon is being applied to.
type Scope struct {
	Subtotal   decimal.Decimal
	ProductIDs []uuid.UUID
	StoreIDs   []uuid.UUID
}

// Applied is an accepted coupon together with its pricing discount.
type Applied struct {
	Coupon   models.Coupon
	Discount pricing.Discount
}

// Service validates coupon codes against a cart.
type Service interface {
	Validate(ctx context.Context, code string, scope Scope) (*Applied, error)
}

type service struct {
	repo couponFinder
	logg *logger.Logger
	now  func() time.Time
}

func NewService(repo couponFinder, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg, now: time.Now}, nil
}

// NormalizeCode trims and upper-cases a user supplied code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate looks code up and checks it against scope. An unknown code is a
// not-found error; every scoping rejection is a validation error with its own
// message.
func (s *service) Validate(ctx context.Context, code string, scope Scope) (*Applied, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}

	coupon, err := s.repo.FindByCode(ctx, normalized)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load coupon")
	}
	if coupon == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
	}

	if coupon.ExpiresAt != nil && !s.now().Before(*coupon.ExpiresAt) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon has expired")
	}
	if coupon.StoreID != nil && !allFromStore(scope.StoreIDs, *coupon.StoreID) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon is not valid for this store")
	}
	if len(coupon.ProductIDs) > 0 && !anyApplicable(coupon, scope.ProductIDs) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon does not apply to the products in your cart")
	}
	if coupon.MinCartTotal != nil && scope.Subtotal.LessThan(*coupon.MinCartTotal) {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "cart total must be at least %s to use this coupon", coupon.MinCartTotal.StringFixed(2)).
			WithDetails(map[string]any{"minCartTotal": coupon.MinCartTotal.String()})
	}

	// An out-of-range stored magnitude is a data fault; log it for admins.
	discount, err := pricing.NewDiscount(coupon.DiscountType, coupon.Discount)
	if err != nil {
		s.logg.Error(s.logg.WithField(ctx, "coupon_code", coupon.Code), "stored coupon has an invalid discount", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "coupon is misconfigured")
	}
	return &Applied{Coupon: *coupon, Discount: discount}, nil
}

func allFromStore(storeIDs []uuid.UUID, want uuid.UUID) bool {
	if len(storeIDs) == 0 {
		return false
	}
	for _, id := range storeIDs {
		if id != want {
			return false
		}
	}
	return true
}

func anyApplicable(coupon *models.Coupon, productIDs []uuid.UUID) bool {
	for _, id := range productIDs {
		if coupon.ProductIDs.Contains(id) {
			return true
		}
	}
	return false
}
