package enums

import "strings"

// DiscountType selects how a coupon's discount magnitude is interpreted.
type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountFixed      DiscountType = "FIXED"
)

var discountTypes = []DiscountType{DiscountPercentage, DiscountFixed}

func (d DiscountType) String() string { return string(d) }

func (d DiscountType) IsValid() bool { return oneOf(d, discountTypes) }

func ParseDiscountType(value string) (DiscountType, error) {
	return lookup("discount type", strings.ToUpper(strings.TrimSpace(value)), discountTypes)
}
