package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/coupons"
	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type couponValidateRequest struct {
	Code       string          `json:"code" validate:"required,notblank,max=64"`
	CartTotal  decimal.Decimal `json:"cartTotal"`
	ProductIDs []uuid.UUID     `json:"productIds"`
	StoreID    *uuid.UUID      `json:"storeId"`
}

type couponResponse struct {
	Code           string             `json:"code"`
	Description    string             `json:"description"`
	DiscountType   enums.DiscountType `json:"discountType"`
	Discount       decimal.Decimal    `json:"discount"`
	DiscountAmount string             `json:"discountAmount"`
}

// CouponValidate checks a code against the cart the client describes.
// Unknown codes answer 404, scoping rejections 400.
func CouponValidate(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload couponValidateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		scope := coupons.Scope{Subtotal: payload.CartTotal, ProductIDs: payload.ProductIDs}
		if payload.StoreID != nil {
			scope.StoreIDs = []uuid.UUID{*payload.StoreID}
		}

		applied, err := svc.Validate(r.Context(), payload.Code, scope)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		amount := pricing.DiscountAmount(applied.Discount, payload.CartTotal)
		responses.WriteSuccess(w, couponResponse{
			Code:           applied.Coupon.Code,
			Description:    applied.Coupon.Description,
			DiscountType:   applied.Coupon.DiscountType,
			Discount:       applied.Coupon.Discount,
			DiscountAmount: pricing.FormatAmount(amount, true),
		})
	}
}
