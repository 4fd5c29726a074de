package checkout

import (
	"fmt"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

var transitions = map[enums.CheckoutState][]enums.CheckoutState{
	enums.CheckoutStateDraft:     {enums.CheckoutStateValidated},
	enums.CheckoutStateValidated: {enums.CheckoutStatePlaced},
	enums.CheckoutStatePlaced:    {enums.CheckoutStateCOD, enums.CheckoutStateAwaitingPayment},
}

// CanTransition reports whether a checkout may move from one state to another.
func CanTransition(from, to enums.CheckoutState) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// progress records the states a single checkout passes through.
type progress struct {
	state enums.CheckoutState
}

func newProgress() *progress {
	return &progress{state: enums.CheckoutStateDraft}
}

func (p *progress) advance(to enums.CheckoutState) error {
	if !CanTransition(p.state, to) {
		return fmt.Errorf("illegal checkout transition %s -> %s", p.state, to)
	}
	p.state = to
	return nil
}

// settledState is the terminal state reached after placement for method.
func settledState(method enums.PaymentMethod) enums.CheckoutState {
	if method.RequiresOnlineSettlement() {
		return enums.CheckoutStateAwaitingPayment
	}
	return enums.CheckoutStateCOD
}
