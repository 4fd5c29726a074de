package helpers

import (
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// GuestContact is the contact block a guest submits at checkout.
type GuestContact struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Normalize trims every field and lower-cases the email.
func (g GuestContact) Normalize() GuestContact {
	return GuestContact{
		Name:    strings.TrimSpace(g.Name),
		Email:   strings.ToLower(strings.TrimSpace(g.Email)),
		Phone:   strings.TrimSpace(g.Phone),
		Address: strings.TrimSpace(g.Address),
	}
}

// ValidateGuestContact requires all four guest fields and reports the missing
// ones in the error details.
func ValidateGuestContact(guest *GuestContact) (GuestContact, error) {
	if guest == nil {
		return GuestContact{}, pkgerrors.New(pkgerrors.CodeValidation, "guest information is required").
			WithDetails(map[string]any{"missing": []string{"name", "email", "phone", "address"}})
	}
	normalized := guest.Normalize()
	var missing []string
	if normalized.Name == "" {
		missing = append(missing, "name")
	}
	if normalized.Email == "" {
		missing = append(missing, "email")
	}
	if normalized.Phone == "" {
		missing = append(missing, "phone")
	}
	if normalized.Address == "" {
		missing = append(missing, "address")
	}
	if len(missing) > 0 {
		return GuestContact{}, pkgerrors.New(pkgerrors.CodeValidation, "please fill in all guest information").
			WithDetails(map[string]any{"missing": missing})
	}
	return normalized, nil
}

// ValidatePaymentMethod parses raw input into a supported payment method.
func ValidatePaymentMethod(raw string) (enums.PaymentMethod, error) {
	method, err := enums.ParsePaymentMethod(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unsupported payment method")
	}
	return method, nil
}

// InitialOrderStatus is the status an order is written with for method.
func InitialOrderStatus(method enums.PaymentMethod) enums.OrderStatus {
	if method.RequiresOnlineSettlement() {
		return enums.OrderStatusAwaitingPayment
	}
	return enums.OrderStatusConfirmed
}
