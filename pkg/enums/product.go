package enums

import "strings"

// ProductSort is the catalog ordering requested by the storefront.
type ProductSort string

const (
	ProductSortNewest ProductSort = "newest"
	ProductSortOrders ProductSort = "orders"
	ProductSortRating ProductSort = "rating"
)

var productSorts = []ProductSort{ProductSortNewest, ProductSortOrders, ProductSortRating}

func (s ProductSort) String() string { return string(s) }

func (s ProductSort) IsValid() bool { return oneOf(s, productSorts) }

// ParseProductSort maps raw query input to a sort key. Empty input is newest.
func ParseProductSort(value string) (ProductSort, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return ProductSortNewest, nil
	}
	return lookup("sort", normalized, productSorts)
}
