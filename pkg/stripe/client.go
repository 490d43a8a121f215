// Package stripe opens PaymentIntents for card orders and exposes the
// webhook signing secret.
package stripe

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/paymentintent"

	"github.com/angelmondragon/gocart-backend/pkg/config"
	"github.com/angelmondragon/gocart-backend/pkg/logger"
)

// PaymentIntent metadata keys read back by the webhook.
const (
	MetadataOrderID = "order_id"
	MetadataUserID  = "user_id"
)

// keyPrefixes lists the secret and restricted key prefixes valid per mode.
var keyPrefixes = map[string][]string{
	"test": {"sk_test_", "rk_test_"},
	"live": {"sk_live_", "rk_live_"},
}

type PaymentIntentRequest struct {
	OrderID string
	UserID  string
	Amount  decimal.Decimal
}

type PaymentIntent struct {
	ID           string
	ClientSecret string
}

type Client struct {
	mode          string
	signingSecret string
	currency      string
	create        func(*stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// NewClient checks that the key matches the configured mode and sets the
// package-level Stripe key.
func NewClient(ctx context.Context, cfg config.StripeConfig, logg *logger.Logger) (*Client, error) {
	mode := cfg.Environment()
	prefixes, known := keyPrefixes[mode]
	if !known {
		return nil, fmt.Errorf("stripe environment must be test or live, got %q", mode)
	}
	key := strings.TrimSpace(cfg.APIKey)
	secret := strings.TrimSpace(cfg.Secret)
	switch {
	case key == "":
		return nil, errors.New("stripe api key is required")
	case secret == "":
		return nil, errors.New("stripe webhook secret is required")
	case !slices.ContainsFunc(prefixes, func(p string) bool { return strings.HasPrefix(key, p) }):
		return nil, fmt.Errorf("stripe %s mode needs a %s key", mode, strings.Join(prefixes, " or "))
	}

	stripe.Key = key
	currency := strings.ToLower(strings.TrimSpace(cfg.Currency))
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}
	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{"stripe_mode": mode, "currency": currency}), "stripe.ready")
	}
	return &Client{mode: mode, signingSecret: secret, currency: currency, create: paymentintent.New}, nil
}

// CreatePaymentIntent charges the order total. The order id is carried in
// metadata and doubles as the Stripe idempotency key.
func (c *Client) CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (*PaymentIntent, error) {
	if c == nil || c.create == nil {
		return nil, errors.New("stripe client not initialized")
	}
	params, err := c.intentParams(ctx, req)
	if err != nil {
		return nil, err
	}
	intent, err := c.create(params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent for order %s: %w", req.OrderID, err)
	}
	return &PaymentIntent{ID: intent.ID, ClientSecret: intent.ClientSecret}, nil
}

func (c *Client) intentParams(ctx context.Context, req PaymentIntentRequest) (*stripe.PaymentIntentParams, error) {
	cents, err := ToMinorUnits(req.Amount)
	if err != nil {
		return nil, err
	}
	params := &stripe.PaymentIntentParams{
		Amount:                  stripe.Int64(cents),
		Currency:                stripe.String(c.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{Enabled: stripe.Bool(true)},
	}
	params.Context = ctx
	params.SetIdempotencyKey("order-" + req.OrderID)
	params.AddMetadata(MetadataOrderID, req.OrderID)
	if req.UserID != "" {
		params.AddMetadata(MetadataUserID, req.UserID)
	}
	return params, nil
}

// ToMinorUnits converts a two-decimal amount to cents. Negative amounts and
// sub-cent precision are rejected.
func ToMinorUnits(amount decimal.Decimal) (int64, error) {
	if amount.IsNegative() {
		return 0, fmt.Errorf("amount must be non-negative, got %s", amount)
	}
	cents := amount.Shift(2)
	if !cents.IsInteger() {
		return 0, fmt.Errorf("amount %s has more than two decimal places", amount)
	}
	return cents.IntPart(), nil
}

func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.mode
}

func (c *Client) SigningSecret() string {
	if c == nil {
		return ""
	}
	return c.signingSecret
}
