package models

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// CartRecord is the persisted quantity map of an authenticated user. Guests
// keep their cart client-side and submit it with the checkout request.
type CartRecord struct {
	UserID    string            `gorm:"column:user_id;primaryKey"`
	Items     types.QuantityMap `gorm:"column:items;type:jsonb;serializer:json;not null"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
