package auth

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload is the identity asserted when minting a token.
type AccessTokenPayload struct {
	Subject string
	Email   string
	Phone   string
	Plan    string
}

// AccessTokenClaims are the verified claims handed to handlers. Subject is
// the identity provider's user id. Email and Phone are the verified contact
// fields used to reconcile guest orders.
type AccessTokenClaims struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone_number,omitempty"`
	Plan  string `json:"plan,omitempty"`
	jwt.RegisteredClaims
}

// HasPlan reports whether the token carries the given membership plan.
func (c *AccessTokenClaims) HasPlan(plan string) bool {
	if c == nil || plan == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(c.Plan), plan)
}
