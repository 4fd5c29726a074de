package cart

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// Repository persists the quantity map of authenticated users.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	return &Repository{Base: r.Bind(tx)}
}

// Find returns the stored quantities for userID. A user without a record has
// an empty cart.
func (r *Repository) Find(ctx context.Context, userID string) (types.QuantityMap, error) {
	var record models.CartRecord
	err := r.DB(ctx).Where("user_id = ?", userID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.QuantityMap{}, nil
	}
	if err != nil {
		return nil, err
	}
	if record.Items == nil {
		return types.QuantityMap{}, nil
	}
	return record.Items, nil
}

// Save replaces the stored quantities for userID.
func (r *Repository) Save(ctx context.Context, userID string, items types.QuantityMap) error {
	record := models.CartRecord{UserID: userID, Items: items.Positive()}
	return r.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"items", "updated_at"}),
	}).Create(&record).Error
}

// Clear empties the cart of userID.
func (r *Repository) Clear(ctx context.Context, userID string) error {
	return r.DB(ctx).Where("user_id = ?", userID).Delete(&models.CartRecord{}).Error
}
