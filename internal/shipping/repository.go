package shipping

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Find returns the singleton settings row, or nil when it was never saved.
func (r *Repository) Find(ctx context.Context) (*models.ShippingSetting, error) {
	return repo.FindOne[models.ShippingSetting](r.DB(ctx), "id = ?", models.ShippingSettingID)
}
