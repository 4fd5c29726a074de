package enums

// CheckoutState tracks how far a single checkout request progressed.
type CheckoutState string

const (
	CheckoutStateDraft           CheckoutState = "DRAFT"
	CheckoutStateValidated       CheckoutState = "VALIDATED"
	CheckoutStatePlaced          CheckoutState = "PLACED"
	CheckoutStateCOD             CheckoutState = "COD"
	CheckoutStateAwaitingPayment CheckoutState = "AWAITING_PAYMENT"
)

func (s CheckoutState) String() string {
	return string(s)
}

// Terminal reports whether the checkout reached one of its two end states.
func (s CheckoutState) Terminal() bool {
	return s == CheckoutStateCOD || s == CheckoutStateAwaitingPayment
}
