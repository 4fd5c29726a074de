package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Repository loads product rows with everything projection needs.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// ListInStock returns in-stock products, newest first. When ids is non-empty
// only those products are loaded. Store activity is filtered by the projector.
func (r *Repository) ListInStock(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	q := r.DB(ctx).
		Preload("Store").
		Preload("Ratings").
		Where("in_stock = ?", true)
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}

	var products []models.Product
	if err := q.Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, err
	}
	if err := r.fillOrderedUnits(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

type orderedUnits struct {
	ProductID uuid.UUID
	Units     int
}

// fillOrderedUnits sets OrderedUnits from one grouped query over order_items.
func (r *Repository) fillOrderedUnits(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}

	var rows []orderedUnits
	err := r.DB(ctx).
		Model(&models.OrderItem{}).
		Select("product_id, COALESCE(SUM(quantity), 0) AS units").
		Where("product_id IN ?", ids).
		Group("product_id").
		Scan(&rows).Error
	if err != nil {
		return err
	}

	units := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		units[row.ProductID] = row.Units
	}
	for i := range products {
		products[i].OrderedUnits = units[products[i].ID]
	}
	return nil
}
