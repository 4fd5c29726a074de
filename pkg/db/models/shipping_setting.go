package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShippingSetting is the singleton row edited by admins. Every column is
// nullable; pricing applies defaults for anything left unset.
type ShippingSetting struct {
	ID                  string           `gorm:"column:id;primaryKey"`
	Enabled             *bool            `gorm:"column:enabled"`
	ShippingType        *string          `gorm:"column:shipping_type"`
	FlatRate            *decimal.Decimal `gorm:"column:flat_rate;type:numeric(12,2)"`
	PerItemFee          *decimal.Decimal `gorm:"column:per_item_fee;type:numeric(12,2)"`
	MaxItemFee          *decimal.Decimal `gorm:"column:max_item_fee;type:numeric(12,2)"`
	FreeShippingMin     *decimal.Decimal `gorm:"column:free_shipping_min;type:numeric(12,2)"`
	WeightUnit          *string          `gorm:"column:weight_unit"`
	BaseWeight          *decimal.Decimal `gorm:"column:base_weight;type:numeric(12,3)"`
	BaseWeightFee       *decimal.Decimal `gorm:"column:base_weight_fee;type:numeric(12,2)"`
	AdditionalWeightFee *decimal.Decimal `gorm:"column:additional_weight_fee;type:numeric(12,2)"`
	UpdatedAt           time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// ShippingSettingID is the primary key of the singleton row.
const ShippingSettingID = "default"
