package helpers

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// OrderItems snapshots the unit price of every resolved cart line.
func OrderItems(c cart.Cart) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(c.Lines))
	for _, line := range c.Lines {
		items = append(items, models.OrderItem{
			ProductID: line.Product.ID,
			Quantity:  line.Quantity,
			Price:     line.Product.Price,
		})
	}
	return items
}

// ProductIDs lists the resolved product ids in cart order.
func ProductIDs(c cart.Cart) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.Lines))
	for _, line := range c.Lines {
		ids = append(ids, line.Product.ID)
	}
	return ids
}

// StoreIDs lists the distinct owning stores of the cart lines.
func StoreIDs(c cart.Cart) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(c.Lines))
	ids := make([]uuid.UUID, 0, len(c.Lines))
	for _, line := range c.Lines {
		if _, ok := seen[line.Product.StoreID]; ok {
			continue
		}
		seen[line.Product.StoreID] = struct{}{}
		ids = append(ids, line.Product.StoreID)
	}
	return ids
}

// OrderAmounts are the quote amounts as persisted on an order.
type OrderAmounts struct {
	Subtotal    decimal.Decimal
	ShippingFee decimal.Decimal
	Discount    decimal.Decimal
	Total       decimal.Decimal
}

// StoredAmounts rounds a quote to the two decimals of the order columns.
// The total is recomposed from the rounded parts so the row always adds up.
func StoredAmounts(q pricing.Quote) OrderAmounts {
	out := OrderAmounts{
		Subtotal:    q.Subtotal.Round(2),
		ShippingFee: q.ShippingFee.Round(2),
		Discount:    q.Discount.Round(2),
	}
	out.Total = out.Subtotal.Add(out.ShippingFee).Sub(out.Discount)
	return out
}
