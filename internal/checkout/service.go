package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/checkout/helpers"
	"github.com/angelmondragon/storefront-backend/internal/coupons"
	"github.com/angelmondragon/storefront-backend/internal/guests"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
	"github.com/angelmondragon/storefront-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

const (
	pathGuest         = "guest"
	pathAuthenticated = "authenticated"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartPricer interface {
	Price(ctx context.Context, items types.QuantityMap) (cart.Cart, error)
}

type addressResolver interface {
	Owned(ctx context.Context, userID string, id uuid.UUID) (*models.Address, error)
}

type couponValidator interface {
	Validate(ctx context.Context, code string, scope coupons.Scope) (*coupons.Applied, error)
}

type shippingLoader interface {
	Config(ctx context.Context) (pricing.ShippingConfig, error)
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type paymentCollaborator interface {
	CreatePaymentSession(ctx context.Context, order models.Order) (string, error)
}

type checkoutRecorder interface {
	IncOrder(path, paymentMethod string)
	IncFailure(code string)
	ObserveCheckout(path string, duration time.Duration)
}

// Identity is the caller as asserted by the bearer token. A zero UserID
// means guest checkout.
type Identity struct {
	UserID  string
	Premium bool
}

func (i Identity) Guest() bool {
	return strings.TrimSpace(i.UserID) == ""
}

// PlaceOrderInput is a checkout request. Authenticated callers may omit
// Items to check out their persisted cart.
type PlaceOrderInput struct {
	Items         types.QuantityMap
	AddressID     *uuid.UUID
	PaymentMethod string
	CouponCode    string
	Guest         *helpers.GuestContact
}

// QuoteInput prices a cart without placing anything.
type QuoteInput struct {
	Items      types.QuantityMap
	CouponCode string
}

// Display carries the storefront renderings of a quote.
type Display struct {
	Subtotal    string `json:"subtotal"`
	ShippingFee string `json:"shippingFee"`
	Discount    string `json:"discount"`
	Total       string `json:"total"`
}

// QuoteResult is a priced cart with its totals.
type QuoteResult struct {
	Cart       cart.Cart     `json:"cart"`
	Quote      pricing.Quote `json:"quote"`
	Display    Display       `json:"display"`
	CouponCode string        `json:"couponCode,omitempty"`
}

// Result is the outcome of a placed order. The caller performs the
// redirect and the client-side cart clearing it describes.
type Result struct {
	Order       orders.OrderView    `json:"order"`
	State       enums.CheckoutState `json:"state"`
	RedirectURL string              `json:"redirectUrl,omitempty"`
	ClearCart   bool                `json:"clearCart"`
	Display     Display             `json:"display"`
}

// Service runs checkout: quoting and order placement.
type Service interface {
	Quote(ctx context.Context, identity Identity, input QuoteInput) (*QuoteResult, error)
	Place(ctx context.Context, identity Identity, input PlaceOrderInput) (*Result, error)
}

type ServiceParams struct {
	DB        txRunner
	Carts     cartPricer
	CartStore cart.CartRepository
	Addresses addressResolver
	Coupons   couponValidator
	Shipping  shippingLoader
	Orders    orders.Repository
	Guests    guests.Store
	Outbox    outboxPublisher
	// Payments may be nil, in which case online payment is unavailable.
	Payments paymentCollaborator
	Metrics  checkoutRecorder
	Logger   *logger.Logger
	Currency string
}

type service struct {
	db        txRunner
	carts     cartPricer
	cartStore cart.CartRepository
	addresses addressResolver
	coupons   couponValidator
	shipping  shippingLoader
	orders    orders.Repository
	guests    guests.Store
	outbox    outboxPublisher
	payments  paymentCollaborator
	metrics   checkoutRecorder
	logg      *logger.Logger
	currency  string
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.DB == nil:
		return nil, fmt.Errorf("tx runner required")
	case params.Carts == nil:
		return nil, fmt.Errorf("cart pricer required")
	case params.CartStore == nil:
		return nil, fmt.Errorf("cart repository required")
	case params.Addresses == nil:
		return nil, fmt.Errorf("address resolver required")
	case params.Coupons == nil:
		return nil, fmt.Errorf("coupon validator required")
	case params.Shipping == nil:
		return nil, fmt.Errorf("shipping loader required")
	case params.Orders == nil:
		return nil, fmt.Errorf("orders repository required")
	case params.Guests == nil:
		return nil, fmt.Errorf("guest repository required")
	case params.Outbox == nil:
		return nil, fmt.Errorf("outbox publisher required")
	case params.Logger == nil:
		return nil, fmt.Errorf("logger required")
	}
	currency := strings.ToUpper(strings.TrimSpace(params.Currency))
	if currency == "" {
		return nil, fmt.Errorf("currency required")
	}
	return &service{
		db:        params.DB,
		carts:     params.Carts,
		cartStore: params.CartStore,
		addresses: params.Addresses,
		coupons:   params.Coupons,
		shipping:  params.Shipping,
		orders:    params.Orders,
		guests:    params.Guests,
		outbox:    params.Outbox,
		payments:  params.Payments,
		metrics:   params.Metrics,
		logg:      params.Logger,
		currency:  currency,
	}, nil
}

func (s *service) Quote(ctx context.Context, identity Identity, input QuoteInput) (*QuoteResult, error) {
	priced, err := s.resolveCart(ctx, identity, input.Items)
	if err != nil {
		return nil, err
	}
	applied, err := s.applyCoupon(ctx, identity, input.CouponCode, priced)
	if err != nil {
		return nil, err
	}
	quote, err := s.price(ctx, identity, priced, applied)
	if err != nil {
		return nil, err
	}
	result := &QuoteResult{Cart: priced, Quote: quote, Display: display(quote)}
	if applied != nil {
		result.CouponCode = applied.Coupon.Code
	}
	return result, nil
}

// Place walks a checkout from DRAFT to COD or AWAITING_PAYMENT. Validation
// finishes before anything is written; the order, its items, the guest
// identity, the order_placed event and the cart clear commit together.
func (s *service) Place(ctx context.Context, identity Identity, input PlaceOrderInput) (*Result, error) {
	started := time.Now()
	path := pathAuthenticated
	if identity.Guest() {
		path = pathGuest
	} else {
		ctx = s.logg.WithUserID(ctx, identity.UserID)
	}

	result, err := s.place(ctx, identity, input)
	if err != nil {
		s.recordFailure(err)
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.IncOrder(path, result.Order.PaymentMethod.String())
		s.metrics.ObserveCheckout(path, time.Since(started))
	}
	return result, nil
}

func (s *service) place(ctx context.Context, identity Identity, input PlaceOrderInput) (*Result, error) {
	state := newProgress()

	method, err := helpers.ValidatePaymentMethod(input.PaymentMethod)
	if err != nil {
		return nil, err
	}
	if method.RequiresOnlineSettlement() && s.payments == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "online payment is not available")
	}

	priced, err := s.resolveCart(ctx, identity, input.Items)
	if err != nil {
		return nil, err
	}
	if priced.Empty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "your cart is empty")
	}

	order := models.Order{
		PaymentMethod: method,
		Status:        helpers.InitialOrderStatus(method),
		Currency:      s.currency,
		OrderItems:    helpers.OrderItems(priced),
	}

	var guest helpers.GuestContact
	if identity.Guest() {
		guest, err = helpers.ValidateGuestContact(input.Guest)
		if err != nil {
			return nil, err
		}
		order.IsGuest = true
		order.GuestName = &guest.Name
		order.GuestEmail = &guest.Email
		order.GuestPhone = &guest.Phone
		order.GuestAddress = &guest.Address
	} else {
		var addressID uuid.UUID
		if input.AddressID != nil {
			addressID = *input.AddressID
		}
		address, err := s.addresses.Owned(ctx, identity.UserID, addressID)
		if err != nil {
			return nil, err
		}
		userID := identity.UserID
		order.UserID = &userID
		order.AddressID = &address.ID
	}

	applied, err := s.applyCoupon(ctx, identity, input.CouponCode, priced)
	if err != nil {
		return nil, err
	}
	quote, err := s.price(ctx, identity, priced, applied)
	if err != nil {
		return nil, err
	}
	if applied != nil {
		code := applied.Coupon.Code
		order.CouponCode = &code
	}
	amounts := helpers.StoredAmounts(quote)
	order.Subtotal = amounts.Subtotal
	order.ShippingFee = amounts.ShippingFee
	order.Discount = amounts.Discount
	order.Total = amounts.Total

	if err := state.advance(enums.CheckoutStateValidated); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checkout state")
	}

	clearStored := !identity.Guest() && !method.RequiresOnlineSettlement()
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.orders.WithTx(tx).Create(ctx, &order); err != nil {
			return err
		}
		if identity.Guest() {
			if _, err := s.guests.WithTx(tx).Ensure(ctx, models.GuestUser{
				Name:  guest.Name,
				Email: guest.Email,
				Phone: guest.Phone,
			}); err != nil {
				return err
			}
		}
		if err := s.outbox.Emit(ctx, tx, orderPlacedEvent(order, identity)); err != nil {
			return err
		}
		if clearStored {
			return s.cartStore.WithTx(tx).Clear(ctx, identity.UserID)
		}
		return nil
	})
	if err != nil {
		s.logg.Error(ctx, "order placement failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeStoreWrite, err, "could not place order")
	}
	if err := state.advance(enums.CheckoutStatePlaced); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checkout state")
	}

	ctx = s.logg.WithOrder(ctx, order.ID.String(), order.IsGuest)
	ctx = s.logg.WithFields(ctx, map[string]any{
		"payment_method": method.String(),
		"total":          order.Total.String(),
	})
	s.logg.Info(ctx, "order placed")

	result := &Result{
		Order:   orders.NewOrderView(order),
		Display: display(quote),
	}

	if method.RequiresOnlineSettlement() {
		redirect, err := s.payments.CreatePaymentSession(ctx, order)
		if err != nil {
			s.logg.Error(ctx, "payment session request failed", err)
			return nil, pkgerrors.Wrap(pkgerrors.CodePaymentInitiation, err, "could not start payment").
				WithDetails(map[string]any{"orderId": order.ID.String()})
		}
		s.logg.Info(ctx, "payment session requested")
		result.RedirectURL = redirect
	} else {
		result.ClearCart = true
	}

	if err := state.advance(settledState(method)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checkout state")
	}
	result.State = state.state
	return result, nil
}

// resolveCart prices the submitted items, falling back to the persisted
// cart for authenticated callers who submit none.
func (s *service) resolveCart(ctx context.Context, identity Identity, items types.QuantityMap) (cart.Cart, error) {
	if len(items) == 0 && !identity.Guest() {
		stored, err := s.cartStore.Find(ctx, identity.UserID)
		if err != nil {
			return cart.Cart{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
		}
		items = stored
	}
	return s.carts.Price(ctx, items)
}

func (s *service) applyCoupon(ctx context.Context, identity Identity, code string, priced cart.Cart) (*coupons.Applied, error) {
	if coupons.NormalizeCode(code) == "" {
		return nil, nil
	}
	if identity.Guest() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "please sign in to use a coupon")
	}
	return s.coupons.Validate(ctx, code, coupons.Scope{
		Subtotal:   priced.Subtotal,
		ProductIDs: helpers.ProductIDs(priced),
		StoreIDs:   helpers.StoreIDs(priced),
	})
}

func (s *service) price(ctx context.Context, identity Identity, priced cart.Cart, applied *coupons.Applied) (pricing.Quote, error) {
	shippingCfg, err := s.shipping.Config(ctx)
	if err != nil {
		return pricing.Quote{}, err
	}
	in := pricing.Input{
		Subtotal:      priced.Subtotal,
		Units:         priced.Units,
		Shipping:      shippingCfg,
		WaiveShipping: identity.Premium && !identity.Guest(),
	}
	if applied != nil {
		in.Discount = applied.Discount
	}
	return pricing.Compute(in), nil
}

func (s *service) recordFailure(err error) {
	if s.metrics == nil {
		return
	}
	code := pkgerrors.CodeInternal
	if typed := pkgerrors.As(err); typed != nil {
		code = typed.Code()
	}
	s.metrics.IncFailure(string(code))
}

func display(q pricing.Quote) Display {
	return Display{
		Subtotal:    q.DisplaySubtotal(),
		ShippingFee: pricing.FormatAmount(q.ShippingFee, false),
		Discount:    q.DisplayDiscount(),
		Total:       q.DisplayTotal(),
	}
}

func orderPlacedEvent(order models.Order, identity Identity) outbox.DomainEvent {
	items := make([]payloads.OrderPlacedItem, 0, len(order.OrderItems))
	for _, item := range order.OrderItems {
		items = append(items, payloads.OrderPlacedItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	actor := &outbox.ActorRef{UserID: identity.UserID, Guest: identity.Guest()}
	return outbox.DomainEvent{
		EventType:     enums.EventOrderPlaced,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         actor,
		Data: payloads.OrderPlacedEvent{
			OrderID:       order.ID,
			UserID:        order.UserID,
			IsGuest:       order.IsGuest,
			GuestEmail:    order.GuestEmail,
			PaymentMethod: order.PaymentMethod,
			Status:        order.Status,
			Currency:      order.Currency,
			Subtotal:      order.Subtotal,
			ShippingFee:   order.ShippingFee,
			Discount:      order.Discount,
			Total:         order.Total,
			CouponCode:    order.CouponCode,
			Items:         items,
		},
	}
}
