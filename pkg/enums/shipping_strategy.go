package enums

import "strings"

// ShippingStrategy names the fee computation mode stored in the shipping settings row.
type ShippingStrategy string

const (
	ShippingFlatRate    ShippingStrategy = "FLAT_RATE"
	ShippingPerItem     ShippingStrategy = "PER_ITEM"
	ShippingWeightBased ShippingStrategy = "WEIGHT_BASED"
	ShippingFree        ShippingStrategy = "FREE"
)

func (s ShippingStrategy) String() string { return string(s) }

func (s ShippingStrategy) IsValid() bool {
	return oneOf(s, []ShippingStrategy{ShippingFlatRate, ShippingPerItem, ShippingWeightBased, ShippingFree})
}

// NormalizeShippingStrategy upper-cases and trims raw input. Unknown values
// are returned as-is so callers can still tell them apart from known ones.
func NormalizeShippingStrategy(value string) ShippingStrategy {
	return ShippingStrategy(strings.ToUpper(strings.TrimSpace(value)))
}
