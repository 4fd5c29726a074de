package payloads

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// OrderPlacedEvent is emitted once an order and its lines are committed.
type OrderPlacedEvent struct {
	OrderID       uuid.UUID           `json:"order_id"`
	UserID        *string             `json:"user_id,omitempty"`
	IsGuest       bool                `json:"is_guest"`
	GuestEmail    *string             `json:"guest_email,omitempty"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	Status        enums.OrderStatus   `json:"status"`
	Currency      string              `json:"currency"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	ShippingFee   decimal.Decimal     `json:"shipping_fee"`
	Discount      decimal.Decimal     `json:"discount"`
	Total         decimal.Decimal     `json:"total"`
	CouponCode    *string             `json:"coupon_code,omitempty"`
	Items         []OrderPlacedItem   `json:"items"`
}

type OrderPlacedItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// GuestOrdersLinkedEvent reports a completed guest-to-account transfer.
type GuestOrdersLinkedEvent struct {
	GuestID  uuid.UUID   `json:"guest_id"`
	UserID   string      `json:"user_id"`
	OrderIDs []uuid.UUID `json:"order_ids"`
}
