package controllers

import (
	"context"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
)

// identityFrom builds the checkout identity from verified claims only.
func identityFrom(ctx context.Context, premiumPlan string) checkout.Identity {
	claims := middleware.ClaimsFromContext(ctx)
	if claims == nil {
		return checkout.Identity{}
	}
	return checkout.Identity{
		UserID:  claims.Subject,
		Premium: premiumPlan != "" && claims.HasPlan(premiumPlan),
	}
}
