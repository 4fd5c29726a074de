package stripe

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const (
	testEnv = "test"
	liveEnv = "live"
)

var (
	errAPIKeyRequired   = errors.New("stripe api key is required")
	errInvalidStripeEnv = fmt.Errorf("stripe environment must be %q or %q", testEnv, liveEnv)
	errNonPositiveTotal = errors.New("order total must be positive")
)

var minorUnits = decimal.NewFromInt(100)

type sessionAPI interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// Client creates hosted checkout sessions for orders paid online.
type Client struct {
	sessions    sessionAPI
	environment string
	successURL  string
	cancelURL   string
	logg        *logger.Logger
}

// NewClient initializes Stripe once with the configured key and env.
func NewClient(ctx context.Context, cfg config.StripeConfig, logg *logger.Logger) (*Client, error) {
	env, err := normalizeEnv(cfg.Environment())
	if err != nil {
		return nil, err
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	if err := validateAPIKey(env, apiKey); err != nil {
		return nil, err
	}

	api := client.New(apiKey, nil)

	if logg != nil {
		logg.Info(ctx, fmt.Sprintf("stripe client initialized (%s)", env))
	}

	return newClient(api.CheckoutSessions, env, cfg, logg), nil
}

func newClient(sessions sessionAPI, env string, cfg config.StripeConfig, logg *logger.Logger) *Client {
	return &Client{
		sessions:    sessions,
		environment: env,
		successURL:  cfg.SuccessURL,
		cancelURL:   cfg.CancelURL,
		logg:        logg,
	}
}

// Environment reports the normalized Stripe environment in use.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// CreatePaymentSession opens a checkout session charging the order total and
// returns the hosted page URL the shopper is redirected to.
func (c *Client) CreatePaymentSession(ctx context.Context, order models.Order) (string, error) {
	if c == nil || c.sessions == nil {
		return "", errors.New("stripe client not initialized")
	}
	amount, err := ToMinorUnits(order.Total)
	if err != nil {
		return "", err
	}

	orderID := order.ID.String()
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(withOrderID(c.successURL, orderID)),
		CancelURL:         stripe.String(c.cancelURL),
		ClientReferenceID: stripe.String(orderID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(order.Currency)),
					UnitAmount: stripe.Int64(amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("Order %s", orderID)),
					},
				},
			},
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{"order_id": orderID},
		},
	}
	if order.GuestEmail != nil && *order.GuestEmail != "" {
		params.CustomerEmail = stripe.String(*order.GuestEmail)
	}
	params.Context = ctx

	session, err := c.sessions.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe: create checkout session: %w", err)
	}
	if session == nil || session.URL == "" {
		return "", errors.New("stripe: checkout session has no url")
	}

	if c.logg != nil {
		logCtx := c.logg.WithFields(ctx, map[string]any{
			"order_id":   orderID,
			"session_id": session.ID,
		})
		c.logg.Info(logCtx, "stripe checkout session created")
	}
	return session.URL, nil
}

// ToMinorUnits converts a decimal amount to the integer cents Stripe expects.
func ToMinorUnits(amount decimal.Decimal) (int64, error) {
	cents := amount.Mul(minorUnits).Round(0)
	if !cents.IsPositive() {
		return 0, errNonPositiveTotal
	}
	return cents.IntPart(), nil
}

func withOrderID(raw, orderID string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Set("orderId", orderID)
	u.RawQuery = q.Encode()
	return u.String()
}

func normalizeEnv(raw string) (string, error) {
	env := strings.TrimSpace(strings.ToLower(raw))
	if env == "" {
		env = testEnv
	}
	switch env {
	case testEnv, liveEnv:
		return env, nil
	default:
		return "", errInvalidStripeEnv
	}
}

func validateAPIKey(env, key string) error {
	switch env {
	case testEnv:
		if strings.HasPrefix(key, "sk_test") || strings.HasPrefix(key, "rk_test") {
			return nil
		}
		return fmt.Errorf("stripe environment %q requires a test secret key (sk_test/rk_test)", testEnv)
	case liveEnv:
		if strings.HasPrefix(key, "sk_live") || strings.HasPrefix(key, "rk_live") {
			return nil
		}
		return fmt.Errorf("stripe environment %q requires a live secret key (sk_live/rk_live)", liveEnv)
	default:
		return errInvalidStripeEnv
	}
}
