package enums

// OrderStatus is the persisted status of a placed order.
type OrderStatus string

const (
	OrderStatusConfirmed       OrderStatus = "confirmed"
	OrderStatusAwaitingPayment OrderStatus = "awaiting_payment"
	OrderStatusPaid            OrderStatus = "paid"
)

var orderStatuses = []OrderStatus{OrderStatusConfirmed, OrderStatusAwaitingPayment, OrderStatusPaid}

func (s OrderStatus) String() string { return string(s) }

func (s OrderStatus) IsValid() bool { return oneOf(s, orderStatuses) }

func ParseOrderStatus(value string) (OrderStatus, error) {
	return lookup("order status", value, orderStatuses)
}
