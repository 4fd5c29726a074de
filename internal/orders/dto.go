package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// OrderItemView is one price-snapshot line of an order.
type OrderItemView struct {
	ProductID uuid.UUID       `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// OrderView is the order shape returned to the owner.
type OrderView struct {
	ID            uuid.UUID           `json:"id"`
	Status        enums.OrderStatus   `json:"status"`
	PaymentMethod enums.PaymentMethod `json:"paymentMethod"`
	IsPaid        bool                `json:"isPaid"`
	IsGuest       bool                `json:"isGuest"`
	AddressID     *uuid.UUID          `json:"addressId,omitempty"`
	GuestAddress  *string             `json:"guestAddress,omitempty"`
	Currency      string              `json:"currency"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	ShippingFee   decimal.Decimal     `json:"shippingFee"`
	Discount      decimal.Decimal     `json:"discount"`
	Total         decimal.Decimal     `json:"total"`
	CouponCode    *string             `json:"couponCode,omitempty"`
	Items         []OrderItemView     `json:"orderItems"`
	CreatedAt     time.Time           `json:"createdAt"`
}

// OrderList wraps the paginated orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderView `json:"orders"`
	NextCursor string      `json:"nextCursor,omitempty"`
}

func NewOrderView(order models.Order) OrderView {
	items := make([]OrderItemView, 0, len(order.OrderItems))
	for _, item := range order.OrderItems {
		items = append(items, OrderItemView{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return OrderView{
		ID:            order.ID,
		Status:        order.Status,
		PaymentMethod: order.PaymentMethod,
		IsPaid:        order.IsPaid,
		IsGuest:       order.IsGuest,
		AddressID:     order.AddressID,
		GuestAddress:  order.GuestAddress,
		Currency:      order.Currency,
		Subtotal:      order.Subtotal,
		ShippingFee:   order.ShippingFee,
		Discount:      order.Discount,
		Total:         order.Total,
		CouponCode:    order.CouponCode,
		Items:         items,
		CreatedAt:     order.CreatedAt,
	}
}
