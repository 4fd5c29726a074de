package catalog

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// StoreSummary is the owning store as shown next to a product.
type StoreSummary struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Username string    `json:"username"`
	Logo     *string   `json:"logo,omitempty"`
	IsActive bool      `json:"isActive"`
}

// ProductView is a display-ready product with its order and rating aggregates.
type ProductView struct {
	ID            uuid.UUID        `json:"id"`
	StoreID       uuid.UUID        `json:"storeId"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Category      string           `json:"category"`
	Price         decimal.Decimal  `json:"price"`
	MRP           *decimal.Decimal `json:"mrp,omitempty"`
	Images        []string         `json:"images"`
	InStock       bool             `json:"inStock"`
	Store         StoreSummary     `json:"store"`
	TotalOrders   int              `json:"totalOrders"`
	AverageRating float64          `json:"averageRating"`
	RatingCount   int              `json:"ratingCount"`
	CreatedAt     time.Time        `json:"createdAt"`
}

// Eligible reports whether a product may be displayed or priced into a cart.
func Eligible(p models.Product) bool {
	return p.InStock && p.Store != nil && p.Store.IsActive
}

// Project turns raw product rows (with Store, Ratings and OrderedUnits loaded)
// into views. Out-of-stock products and products of inactive stores are
// dropped. The result is ordered by sortKey, newest first for ties.
func Project(products []models.Product, sortKey enums.ProductSort) []ProductView {
	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		if !Eligible(p) {
			continue
		}
		views = append(views, project(p))
	}
	Sort(views, sortKey)
	return views
}

func project(p models.Product) ProductView {
	view := ProductView{
		ID:          p.ID,
		StoreID:     p.StoreID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		MRP:         p.MRP,
		Images:      append([]string{}, p.Images...),
		InStock:     p.InStock,
		CreatedAt:   p.CreatedAt,
		Store: StoreSummary{
			ID:       p.Store.ID,
			Name:     p.Store.Name,
			Username: p.Store.Username,
			Logo:     p.Store.Logo,
			IsActive: p.Store.IsActive,
		},
	}

	view.TotalOrders = p.OrderedUnits

	if n := len(p.Ratings); n > 0 {
		sum := 0
		for _, r := range p.Ratings {
			sum += r.Rating
		}
		view.AverageRating = float64(sum) / float64(n)
		view.RatingCount = n
	}
	return view
}

// Sort orders views in place. Every key sorts descending; newest is by
// creation time.
func Sort(views []ProductView, sortKey enums.ProductSort) {
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].CreatedAt.After(views[j].CreatedAt)
	})
	switch sortKey {
	case enums.ProductSortOrders:
		sort.SliceStable(views, func(i, j int) bool {
			return views[i].TotalOrders > views[j].TotalOrders
		})
	case enums.ProductSortRating:
		sort.SliceStable(views, func(i, j int) bool {
			return views[i].AverageRating > views[j].AverageRating
		})
	}
}

// Index maps product id to view for cart resolution.
func Index(views []ProductView) map[uuid.UUID]ProductView {
	out := make(map[uuid.UUID]ProductView, len(views))
	for _, v := range views {
		out[v.ID] = v
	}
	return out
}
