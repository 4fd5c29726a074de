// Package registry maps outbox rows to Pub/Sub topics and typed payloads.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
	"github.com/angelmondragon/storefront-backend/pkg/outbox/payloads"
)

// ErrPermanent marks rows that will never publish no matter how often they
// are retried. Test with errors.Is.
var ErrPermanent = errors.New("permanent outbox failure")

// Permanent tags err with ErrPermanent.
func Permanent(err error) error {
	if err == nil || errors.Is(err, ErrPermanent) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrPermanent, err)
}

func permanentf(format string, args ...any) error {
	return Permanent(fmt.Errorf(format, args...))
}

// Route binds an event type to the aggregate it must describe and its topic.
type Route struct {
	EventType     enums.OutboxEventType
	AggregateType enums.OutboxAggregateType
	Topic         string
}

// Decoder turns an envelope's data into a typed payload.
type Decoder func(data json.RawMessage) (any, error)

type decoderKey struct {
	eventType enums.OutboxEventType
	version   int
}

// Registry is built once at startup and read concurrently afterwards.
type Registry struct {
	routes   map[enums.OutboxEventType]Route
	decoders map[decoderKey]Decoder
}

// Resolved is a validated outbox row ready to publish.
type Resolved struct {
	Route    Route
	Envelope outbox.PayloadEnvelope
	Payload  any
}

// New registers every storefront event on the orders topic with its v1
// payload decoder.
func New(cfg config.PubSubConfig) (*Registry, error) {
	if cfg.OrdersTopic == "" {
		return nil, errors.New("orders topic is required")
	}
	r := Empty()
	for _, event := range []enums.OutboxEventType{enums.EventOrderPlaced, enums.EventGuestOrdersLinked} {
		r.Add(Route{EventType: event, AggregateType: event.Aggregate(), Topic: cfg.OrdersTopic})
	}
	r.AddDecoder(enums.EventOrderPlaced, 1, As[payloads.OrderPlacedEvent]())
	r.AddDecoder(enums.EventGuestOrdersLinked, 1, As[payloads.GuestOrdersLinkedEvent]())
	return r, nil
}

func Empty() *Registry {
	return &Registry{
		routes:   map[enums.OutboxEventType]Route{},
		decoders: map[decoderKey]Decoder{},
	}
}

func (r *Registry) Add(route Route) {
	r.routes[route.EventType] = route
}

func (r *Registry) AddDecoder(eventType enums.OutboxEventType, version int, decode Decoder) {
	r.decoders[decoderKey{eventType, version}] = decode
}

// As decodes into a fresh *T.
func As[T any]() Decoder {
	return func(data json.RawMessage) (any, error) {
		target := new(T)
		if err := json.Unmarshal(data, target); err != nil {
			return nil, err
		}
		return target, nil
	}
}

// Decode looks up the decoder for eventType@version.
func (r *Registry) Decode(eventType enums.OutboxEventType, version int, data json.RawMessage) (any, error) {
	decode, ok := r.decoders[decoderKey{eventType, version}]
	if !ok {
		return nil, fmt.Errorf("no decoder for %s@v%d", eventType, version)
	}
	return decode(data)
}

// Resolve validates a row against its route and decodes its payload. Every
// failure is permanent: the row is stored and will not change.
func (r *Registry) Resolve(row models.OutboxEvent) (*Resolved, error) {
	route, ok := r.routes[row.EventType]
	if !ok {
		return nil, permanentf("unsupported event type %s", row.EventType)
	}
	if route.AggregateType != row.AggregateType {
		return nil, permanentf("%s expects aggregate %s, row has %s", row.EventType, route.AggregateType, row.AggregateType)
	}
	if row.AggregateID == uuid.Nil {
		return nil, permanentf("%s row has no aggregate id", row.EventType)
	}
	env, err := outbox.DecodeEnvelope(row.Payload)
	if err != nil {
		return nil, Permanent(err)
	}
	payload, err := r.Decode(row.EventType, env.Version, env.Data)
	if err != nil {
		return nil, Permanent(err)
	}
	return &Resolved{Route: route, Envelope: env, Payload: payload}, nil
}
