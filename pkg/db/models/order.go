package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Order is the immutable snapshot written at checkout. Owner fields are
// mutually exclusive: UserID is set when IsGuest is false, the Guest* contact
// fields when it is true. Guest reconciliation is the only writer that flips
// ownership after creation.
type Order struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        *string             `gorm:"column:user_id;index"`
	IsGuest       bool                `gorm:"column:is_guest;not null;default:false"`
	GuestName     *string             `gorm:"column:guest_name"`
	GuestEmail    *string             `gorm:"column:guest_email;index"`
	GuestPhone    *string             `gorm:"column:guest_phone;index"`
	AddressID     *uuid.UUID          `gorm:"column:address_id;type:uuid"`
	GuestAddress  *string             `gorm:"column:guest_address"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;not null"`
	Status        enums.OrderStatus   `gorm:"column:status;not null"`
	IsPaid        bool                `gorm:"column:is_paid;not null;default:false"`
	Currency      string              `gorm:"column:currency;not null"`
	Subtotal      decimal.Decimal     `gorm:"column:subtotal;type:numeric(12,2);not null"`
	ShippingFee   decimal.Decimal     `gorm:"column:shipping_fee;type:numeric(12,2);not null"`
	Discount      decimal.Decimal     `gorm:"column:discount;type:numeric(12,2);not null"`
	Total         decimal.Decimal     `gorm:"column:total;type:numeric(12,2);not null"`
	CouponCode    *string             `gorm:"column:coupon_code"`
	OrderItems    []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

// OrderItem is a price snapshot of one product at placement time.
type OrderItem struct {
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;primaryKey"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;primaryKey"`
	Quantity  int             `gorm:"column:quantity;not null"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
}
