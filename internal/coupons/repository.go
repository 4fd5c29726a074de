package coupons

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Repository reads coupons. Coupons are managed by admin tooling only.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// FindByCode returns nil, nil when no coupon carries code.
func (r *Repository) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	return repo.FindOne[models.Coupon](r.DB(ctx), "code = ?", code)
}
