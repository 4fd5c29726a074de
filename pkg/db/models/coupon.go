package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dbtypes "github.com/angelmondragon/storefront-backend/pkg/db/types"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Coupon is read-only from the checkout engine's perspective. Empty
// ProductIDs and nil StoreID mean the coupon is not scoped by them.
type Coupon struct {
	Code         string             `gorm:"column:code;primaryKey"`
	Description  string             `gorm:"column:description;not null;default:''"`
	DiscountType enums.DiscountType `gorm:"column:discount_type;not null"`
	Discount     decimal.Decimal    `gorm:"column:discount;type:numeric(12,2);not null"`
	ProductIDs   dbtypes.UUIDArray  `gorm:"column:product_ids;type:uuid[]"`
	StoreID      *uuid.UUID         `gorm:"column:store_id;type:uuid"`
	MinCartTotal *decimal.Decimal   `gorm:"column:min_cart_total;type:numeric(12,2)"`
	ExpiresAt    *time.Time         `gorm:"column:expires_at"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
}
