package cart

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// Line is a resolved product with its requested quantity.
type Line struct {
	Product   catalog.ProductView `json:"product"`
	Quantity  int                 `json:"quantity"`
	LineTotal decimal.Decimal     `json:"lineTotal"`
}

// Cart is a priced cart. Units is the sum of all line quantities.
type Cart struct {
	Lines    []Line          `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Units    int             `json:"units"`
}

func (c Cart) Empty() bool {
	return len(c.Lines) == 0
}

// Aggregate merges a quantity map with a catalog projection. Lines follow
// the projection's order. Keys are matched by parsed id, so every spelling of
// one product adds to the same line. Entries with no positive quantity, and
// ids missing from the projection, contribute nothing.
func Aggregate(quantities types.QuantityMap, products []catalog.ProductView) Cart {
	byProduct := quantities.ByProduct()
	out := Cart{Lines: []Line{}, Subtotal: decimal.Zero}
	for _, product := range products {
		qty := byProduct[product.ID]
		if qty <= 0 {
			continue
		}
		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(qty)))
		out.Lines = append(out.Lines, Line{Product: product, Quantity: qty, LineTotal: lineTotal})
		out.Subtotal = out.Subtotal.Add(lineTotal)
		out.Units += qty
	}
	return out
}

// Quantities converts the resolved lines back to a quantity map, which drops
// stale entries from the original.
func (c Cart) Quantities() types.QuantityMap {
	out := make(types.QuantityMap, len(c.Lines))
	for _, line := range c.Lines {
		out[line.Product.ID.String()] = line.Quantity
	}
	return out
}
