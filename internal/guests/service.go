package guests

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
	"github.com/angelmondragon/storefront-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type reconciliationRecorder interface {
	RecordReconciliation(outcome string, linked int)
}

var (
	errNoOrders      = errors.New("no guest orders")
	errAlreadyLinked = errors.New("guest already converted")
)

// LinkResult is returned for every reconciliation attempt; a miss is not an error.
type LinkResult struct {
	Message string `json:"message"`
	Linked  bool   `json:"linked"`
	Count   int    `json:"count"`
}

type Service interface {
	Link(ctx context.Context, userID string, contact Contact) (LinkResult, error)
}

type ServiceParams struct {
	DB      txRunner
	Guests  Store
	Orders  orders.Repository
	Outbox  eventEmitter
	Metrics reconciliationRecorder
	Logger  *logger.Logger
}

type service struct {
	db      txRunner
	guests  Store
	orders  orders.Repository
	outbox  eventEmitter
	metrics reconciliationRecorder
	logg    *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Guests == nil {
		return nil, fmt.Errorf("guest repository required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		db:      params.DB,
		guests:  params.Guests,
		orders:  params.Orders,
		outbox:  params.Outbox,
		metrics: params.Metrics,
		logg:    params.Logger,
	}, nil
}

// NormalizeContact lower-cases emails and trims both fields so guest rows and
// login claims compare equal.
func NormalizeContact(email, phone string) Contact {
	return Contact{
		Email: strings.ToLower(strings.TrimSpace(email)),
		Phone: strings.TrimSpace(phone),
	}
}

// Link moves the orders of an unconverted guest matching contact onto userID.
// The guest is claimed with a conditional update inside the same transaction
// as the reassignment, so a guest converts at most once and a failed
// reassignment leaves it claimable.
func (s *service) Link(ctx context.Context, userID string, contact Contact) (LinkResult, error) {
	if strings.TrimSpace(userID) == "" {
		return LinkResult{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	contact = NormalizeContact(contact.Email, contact.Phone)
	if contact.Empty() {
		s.record(metrics.OutcomeFailed, 0)
		return LinkResult{}, pkgerrors.New(pkgerrors.CodeValidation, "email or phone required")
	}
	ctx = s.logg.WithUserID(ctx, userID)
	ctx = s.logg.WithContact(ctx, contact.Email, contact.Phone)

	guest, err := s.guests.FindUnconverted(ctx, contact)
	if err != nil {
		s.record(metrics.OutcomeFailed, 0)
		return LinkResult{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find guest identity")
	}
	if guest == nil {
		s.record(metrics.OutcomeNoGuest, 0)
		return notLinked(), nil
	}
	ctx = s.logg.WithGuestID(ctx, guest.ID.String())

	var moved int64
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		claimed, err := s.guests.WithTx(tx).MarkConverted(ctx, guest.ID)
		if err != nil {
			return err
		}
		if !claimed {
			return errAlreadyLinked
		}

		orderRepo := s.orders.WithTx(tx)
		ids, err := orderRepo.FindGuestOrderIDs(ctx, orders.GuestContact{Email: contact.Email, Phone: contact.Phone})
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return errNoOrders
		}
		moved, err = orderRepo.ReassignGuestOrders(ctx, ids, userID)
		if err != nil {
			return err
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventGuestOrdersLinked,
			AggregateType: enums.AggregateGuestIdentity,
			AggregateID:   guest.ID,
			Actor:         &outbox.ActorRef{UserID: userID},
			Data: payloads.GuestOrdersLinkedEvent{
				GuestID:  guest.ID,
				UserID:   userID,
				OrderIDs: ids,
			},
		})
	})

	switch {
	case errors.Is(err, errNoOrders):
		s.record(metrics.OutcomeNoOrders, 0)
		return notLinked(), nil
	case errors.Is(err, errAlreadyLinked):
		s.logg.Info(ctx, "guest identity already converted")
		s.record(metrics.OutcomeAlreadyLinked, 0)
		return notLinked(), nil
	case err != nil:
		s.logg.Error(ctx, "guest order linking failed", err)
		s.record(metrics.OutcomeFailed, 0)
		return LinkResult{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "link guest orders")
	}

	count := int(moved)
	s.record(metrics.OutcomeLinked, count)
	s.logg.Info(s.logg.WithField(ctx, "orders_linked", count), "guest orders linked")
	return LinkResult{
		Message: fmt.Sprintf("Successfully linked %d guest order(s) to your account", count),
		Linked:  true,
		Count:   count,
	}, nil
}

func (s *service) record(outcome string, linked int) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordReconciliation(outcome, linked)
}

func notLinked() LinkResult {
	return LinkResult{Message: "No guest orders found", Linked: false}
}
