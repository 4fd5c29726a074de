package enums

import "strings"

// PaymentMethod describes how a buyer intends to settle an order.
type PaymentMethod string

const (
	// PaymentMethodCOD settles on delivery; the order is confirmed at placement.
	PaymentMethodCOD PaymentMethod = "COD"
	// PaymentMethodStripe redirects the buyer to a hosted payment page.
	PaymentMethodStripe PaymentMethod = "STRIPE"
)

var paymentMethods = []PaymentMethod{PaymentMethodCOD, PaymentMethodStripe}

func (p PaymentMethod) String() string { return string(p) }

func (p PaymentMethod) IsValid() bool { return oneOf(p, paymentMethods) }

// RequiresOnlineSettlement reports whether placement must be followed by a
// payment session before the order can be confirmed.
func (p PaymentMethod) RequiresOnlineSettlement() bool {
	return p == PaymentMethodStripe
}

// ParsePaymentMethod is case-insensitive.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	return lookup("payment method", strings.ToUpper(strings.TrimSpace(value)), paymentMethods)
}
