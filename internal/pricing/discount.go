package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

var hundred = decimal.NewFromInt(100)

// Discount is a closed set of coupon discount arms.
type Discount interface {
	Type() enums.DiscountType
	Magnitude() decimal.Decimal
	amount(subtotal decimal.Decimal) decimal.Decimal
}

// Percentage takes Rate percent off the subtotal. Rate is in (0, 100].
type Percentage struct {
	Rate decimal.Decimal
}

// Fixed takes a flat Amount off, never more than the subtotal.
type Fixed struct {
	Amount decimal.Decimal
}

func (Percentage) Type() enums.DiscountType { return enums.DiscountPercentage }
func (Fixed) Type() enums.DiscountType      { return enums.DiscountFixed }

func (p Percentage) Magnitude() decimal.Decimal { return p.Rate }
func (f Fixed) Magnitude() decimal.Decimal      { return f.Amount }

func (p Percentage) amount(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(p.Rate).Div(hundred)
}

func (f Fixed) amount(subtotal decimal.Decimal) decimal.Decimal {
	return decimal.Min(f.Amount, subtotal)
}

// NewDiscount validates a raw coupon magnitude against its type.
func NewDiscount(kind enums.DiscountType, magnitude decimal.Decimal) (Discount, error) {
	switch kind {
	case enums.DiscountPercentage:
		if !magnitude.IsPositive() || magnitude.GreaterThan(hundred) {
			return nil, fmt.Errorf("percentage discount must be in (0, 100], got %s", magnitude)
		}
		return Percentage{Rate: magnitude}, nil
	case enums.DiscountFixed:
		if !magnitude.IsPositive() {
			return nil, fmt.Errorf("fixed discount must be positive, got %s", magnitude)
		}
		return Fixed{Amount: magnitude}, nil
	default:
		return nil, fmt.Errorf("unsupported discount type %q", kind)
	}
}

// DiscountAmount is the amount d takes off subtotal. A nil discount and a
// non-positive subtotal both yield zero.
func DiscountAmount(d Discount, subtotal decimal.Decimal) decimal.Decimal {
	if d == nil || !subtotal.IsPositive() {
		return decimal.Zero
	}
	return d.amount(subtotal)
}
