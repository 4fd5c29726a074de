package address

import (
	"context"

	"github.com/google/uuid"
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

func (r *Repository) ListByUser(ctx context.Context, userID string) ([]models.Address, error) {
	var rows []models.Address
	err := r.DB(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) Create(ctx context.Context, address *models.Address) error {
	return r.DB(ctx).Create(address).Error
}

// FindForUser returns nil when the address does not exist or belongs to someone else.
func (r *Repository) FindForUser(ctx context.Context, id uuid.UUID, userID string) (*models.Address, error) {
	return repo.FindOne[models.Address](r.DB(ctx), "id = ? AND user_id = ?", id, userID)
}
