package types

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// QuantityMap is the raw cart shape: product id to requested count. Zero or
// negative counts mean "not in cart".
type QuantityMap map[string]int

// Positive returns a copy holding only entries with a count above zero.
func (q QuantityMap) Positive() QuantityMap {
	out := make(QuantityMap, len(q))
	for id, qty := range q {
		if qty > 0 {
			out[id] = qty
		}
	}
	return out
}

// ByProduct sums positive counts per parsed product id. uuid.Parse accepts
// any casing and the braced or urn forms, so spellings of one id share a line.
// Keys that are not UUIDs can never match a catalog row and are skipped.
func (q QuantityMap) ByProduct() map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(q))
	for key, qty := range q {
		if qty <= 0 {
			continue
		}
		id, err := uuid.Parse(key)
		if err != nil {
			continue
		}
		out[id] += qty
	}
	return out
}

// ProductIDs returns the distinct ids with a positive count, sorted for
// stable queries.
func (q QuantityMap) ProductIDs() []uuid.UUID {
	ids := slices.Collect(maps.Keys(q.ByProduct()))
	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		return strings.Compare(a.String(), b.String())
	})
	return ids
}

// Canonical rewrites product keys in lowercase hyphenated form, summing
// counts that named the same product and dropping products with no positive
// count. Keys that are not UUIDs are kept as given.
func (q QuantityMap) Canonical() QuantityMap {
	out := make(QuantityMap, len(q))
	for key, qty := range q {
		if _, err := uuid.Parse(key); err != nil {
			out[key] = qty
		}
	}
	for id, qty := range q.ByProduct() {
		out[id.String()] = qty
	}
	return out
}

// Validate rejects negative counts, which can only come from a malformed client.
func (q QuantityMap) Validate() error {
	for id, qty := range q {
		if qty < 0 {
			return fmt.Errorf("quantity for %s must not be negative", id)
		}
	}
	return nil
}
