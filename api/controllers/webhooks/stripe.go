package webhooks

import (
	"context"
	"io"
	"net/http"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"

	"github.com/angelmondragon/gocart-backend/api/responses"
	pkgerrors "github.com/angelmondragon/gocart-backend/pkg/errors"
	"github.com/angelmondragon/gocart-backend/pkg/logger"
)

const maxWebhookBytes = 64 << 10

type StripeEventHandler interface {
	HandleEvent(ctx context.Context, event *stripe.Event) error
}

type eventLedger interface {
	Claim(ctx context.Context, eventID string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

type signingSecret interface {
	SigningSecret() string
}

// StripeWebhook verifies the Stripe-Signature header and forwards each event once.
func StripeWebhook(svc StripeEventHandler, client signingSecret, ledger eventLedger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil || client == nil || ledger == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeDependency, "payments are not configured"))
			return
		}

		payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
			return
		}

		sigHeader := r.Header.Get("Stripe-Signature")
		if sigHeader == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.Validation("stripe signature missing"))
			return
		}

		event, err := webhook.ConstructEventWithOptions(payload, sigHeader, client.SigningSecret(), webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Webhook signature verification failed"))
			return
		}
		if logg != nil {
			ctx = logg.WithFields(ctx, map[string]any{"stripe_event_id": event.ID, "stripe_event_type": string(event.Type)})
		}

		fresh, err := ledger.Claim(ctx, event.ID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim stripe event"))
			return
		}
		if !fresh {
			responses.WriteSuccess(w, map[string]bool{"received": true})
			return
		}

		if err := svc.HandleEvent(ctx, &event); err != nil {
			if pkgerrors.HTTPStatus(err) < http.StatusInternalServerError {
				// a redelivery would fail the same way; acknowledge so Stripe stops retrying
				if logg != nil {
					logg.Warn(logg.WithField(ctx, "error", err.Error()), "stripe.event_rejected")
				}
				responses.WriteSuccess(w, map[string]bool{"received": true})
				return
			}
			_ = ledger.Forget(ctx, event.ID)
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(ctx, "stripe.event_processed")
		}
		responses.WriteSuccess(w, map[string]bool{"received": true})
	}
}
