package enums

// OutboxAggregateType identifies the root entity an outbox row describes.
type OutboxAggregateType string

const (
	AggregateOrder         OutboxAggregateType = "order"
	AggregateGuestIdentity OutboxAggregateType = "guest_identity"
)

func (a OutboxAggregateType) IsValid() bool {
	return oneOf(a, []OutboxAggregateType{AggregateOrder, AggregateGuestIdentity})
}

func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	a := OutboxAggregateType(value)
	if !a.IsValid() {
		return "", lookupErr("aggregate type", value)
	}
	return a, nil
}

// OutboxEventType names a domain event. Each type is owned by exactly one
// aggregate type.
type OutboxEventType string

const (
	EventOrderPlaced       OutboxEventType = "order_placed"
	EventGuestOrdersLinked OutboxEventType = "guest_orders_linked"
)

var eventOwners = map[OutboxEventType]OutboxAggregateType{
	EventOrderPlaced:       AggregateOrder,
	EventGuestOrdersLinked: AggregateGuestIdentity,
}

func (e OutboxEventType) IsValid() bool {
	_, ok := eventOwners[e]
	return ok
}

// Aggregate is the aggregate type events of this kind are keyed by.
func (e OutboxEventType) Aggregate() OutboxAggregateType {
	return eventOwners[e]
}

func ParseOutboxEventType(value string) (OutboxEventType, error) {
	e := OutboxEventType(value)
	if !e.IsValid() {
		return "", lookupErr("event type", value)
	}
	return e, nil
}
