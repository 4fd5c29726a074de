package pricing

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Input is everything the engine needs to price a resolved cart.
type Input struct {
	Subtotal decimal.Decimal
	Units    int
	Shipping ShippingConfig
	// Discount is nil when no coupon was applied.
	Discount Discount
	// WaiveShipping zeroes the fee for premium members. The stored shipping
	// settings are left untouched.
	WaiveShipping bool
}

// Quote holds full-precision amounts. Rounding only happens in Display*.
type Quote struct {
	Subtotal        decimal.Decimal `json:"subtotal"`
	ShippingFee     decimal.Decimal `json:"shippingFee"`
	Discount        decimal.Decimal `json:"discount"`
	Total           decimal.Decimal `json:"total"`
	DiscountApplied bool            `json:"discountApplied"`
	ShippingWaived  bool            `json:"shippingWaived"`
}

// Compute prices a cart: total = subtotal + shipping - discount.
func Compute(in Input) Quote {
	q := Quote{Subtotal: in.Subtotal}

	if in.WaiveShipping {
		q.ShippingFee = decimal.Zero
		q.ShippingWaived = true
	} else {
		q.ShippingFee = ShippingFee(in.Shipping, in.Subtotal, in.Units)
	}

	if in.Discount != nil {
		q.Discount = DiscountAmount(in.Discount, in.Subtotal)
		q.DiscountApplied = true
	} else {
		q.Discount = decimal.Zero
	}

	q.Total = q.Subtotal.Add(q.ShippingFee).Sub(q.Discount)
	return q
}

// DisplayTotal renders the total the way the storefront shows it: fixed two
// decimals when a coupon was applied, locale grouping otherwise.
func (q Quote) DisplayTotal() string {
	return FormatAmount(q.Total, q.DiscountApplied)
}

func (q Quote) DisplaySubtotal() string {
	return FormatAmount(q.Subtotal, false)
}

func (q Quote) DisplayDiscount() string {
	return FormatAmount(q.Discount, true)
}

// FormatAmount renders amount with two fixed decimals when fixed is set.
// Otherwise it groups thousands and keeps up to three fraction digits,
// e.g. 1234.5 becomes "1,234.5".
func FormatAmount(amount decimal.Decimal, fixed bool) string {
	if fixed {
		return amount.StringFixed(2)
	}
	return message.NewPrinter(language.English).Sprint(number.Decimal(amount.InexactFloat64(), number.MaxFractionDigits(3)))
}
