package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	cartsvc "github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

const maxCouponCodeLen = 64

type cartRequest struct {
	Items types.QuantityMap `json:"items"`
}

type quoteRequest struct {
	Items      types.QuantityMap `json:"items"`
	CouponCode string            `json:"couponCode"`
}

// CartGet returns the saved cart priced and quoted for the caller.
func CartGet(carts cartsvc.Service, svc checkout.Service, premiumPlan string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		priced, err := carts.Get(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if priced.Empty() {
			responses.WriteSuccess(w, checkout.QuoteResult{Cart: priced})
			return
		}

		result, err := svc.Quote(r.Context(), identityFrom(r.Context(), premiumPlan), checkout.QuoteInput{Items: priced.Quantities()})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CartReplace overwrites the saved cart with the submitted quantity map.
func CartReplace(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload cartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		priced, err := svc.Replace(r.Context(), middleware.UserIDFromContext(r.Context()), payload.Items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, priced)
	}
}

func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Clear(r.Context(), middleware.UserIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// CartQuote prices a cart for guests and members alike. Members may omit
// items to quote their saved cart.
func CartQuote(svc checkout.Service, premiumPlan string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload quoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Quote(r.Context(), identityFrom(r.Context(), premiumPlan), checkout.QuoteInput{
			Items:      payload.Items,
			CouponCode: validators.SanitizeString(payload.CouponCode, maxCouponCodeLen),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
