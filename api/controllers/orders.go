package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/internal/checkout/helpers"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

type placeOrderRequest struct {
	Items         types.QuantityMap     `json:"items"`
	AddressID     string                `json:"addressId"`
	PaymentMethod string                `json:"paymentMethod" validate:"required,notblank"`
	CouponCode    string                `json:"couponCode"`
	Guest         *helpers.GuestContact `json:"guestInfo"`
}

func (p placeOrderRequest) toInput() (checkout.PlaceOrderInput, error) {
	input := checkout.PlaceOrderInput{
		Items:         p.Items,
		PaymentMethod: p.PaymentMethod,
		CouponCode:    validators.SanitizeString(p.CouponCode, maxCouponCodeLen),
		Guest:         p.Guest,
	}
	if raw := strings.TrimSpace(p.AddressID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return checkout.PlaceOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid addressId")
		}
		input.AddressID = &id
	}
	return input, nil
}

// OrderPlace runs checkout for guests and members. A payment initiation
// failure still answers with the stored order id in the error details.
func OrderPlace(svc checkout.Service, premiumPlan string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload placeOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Place(r.Context(), identityFrom(r.Context(), premiumPlan), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// OrderList returns the caller's orders newest first, cursor paginated.
func OrderList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), middleware.UserIDFromContext(r.Context()), pagination.Params{
			Limit:  limit,
			Cursor: validators.QueryString(r, "cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
