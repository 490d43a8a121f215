package stripewebhook

import (
	"context"
	"encoding/json"
	"strings"

	pkgerrors "github.com/angelmondragon/gocart-backend/pkg/errors"
	"github.com/angelmondragon/gocart-backend/pkg/logger"
	pkgstripe "github.com/angelmondragon/gocart-backend/pkg/stripe"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
)

type orderPayer interface {
	MarkPaid(ctx context.Context, orderID uuid.UUID, paymentIntentID string) error
}

type ServiceParams struct {
	Orders orderPayer
	Logger *logger.Logger
}

// Service applies Stripe payment events to orders.
type Service struct {
	orders orderPayer
	logg   *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order service required")
	}
	return &Service{orders: params.Orders, logg: params.Logger}, nil
}

func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		intent, orderID, err := decodeIntent(event)
		if err != nil {
			return err
		}
		return s.orders.MarkPaid(ctx, orderID, intent.ID)
	case stripe.EventTypePaymentIntentPaymentFailed:
		intent, orderID, err := decodeIntent(event)
		if err != nil {
			return err
		}
		if s.logg != nil {
			fields := map[string]any{"payment_intent_id": intent.ID}
			if intent.LastPaymentError != nil {
				fields["error_code"] = string(intent.LastPaymentError.Code)
			}
			s.logg.Warn(s.logg.WithFields(s.logg.WithOrderID(ctx, orderID.String()), fields), "order.payment_failed")
		}
		return nil
	default:
		return nil
	}
}

func decodeIntent(event *stripe.Event) (*stripe.PaymentIntent, uuid.UUID, error) {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return nil, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode payment intent event")
	}
	raw := strings.TrimSpace(intent.Metadata[pkgstripe.MetadataOrderID])
	if raw == "" {
		return nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id missing from payment intent metadata")
	}
	orderID, err := uuid.Parse(raw)
	if err != nil {
		return nil, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id in payment intent metadata")
	}
	return &intent, orderID, nil
}
