package webhooks

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"

	"github.com/angelmondragon/orgshop-backend/api/responses"
	stripewebhook "github.com/angelmondragon/orgshop-backend/internal/webhooks/stripe"
	pkgerrors "github.com/angelmondragon/orgshop-backend/pkg/errors"
	"github.com/angelmondragon/orgshop-backend/pkg/logger"
)

type StripeWebhookService interface {
	HandleEvent(ctx context.Context, event *stripe.Event) stripewebhook.Outcome
}

type stripeWebhookGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
}

type stripeClient interface {
	SigningSecret() string
}

// StripeWebhook receives payment events. The signature is verified over
// the raw body before any JSON is trusted; once it checks out the
// processor is always acknowledged with a 200, whatever the pipeline
// does downstream, so a processor retry cannot double-fulfill.
func StripeWebhook(svc StripeWebhookService, client stripeClient, guard stripeWebhookGuard, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}
		if client == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stripe client unavailable"))
			return
		}
		if guard == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "idempotency guard unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		sigHeader := r.Header.Get("Stripe-Signature")
		if sigHeader == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "stripe signature missing"))
			return
		}

		event, err := webhook.ConstructEvent(payload, sigHeader, client.SigningSecret())
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid signature"))
			return
		}

		alreadyProcessed, err := guard.CheckAndMark(ctx, event.ID)
		if err != nil {
			// Nothing has been dispatched yet, so failing closed here
			// only asks the processor to redeliver; it cannot
			// double-fulfill.
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
			return
		}
		if alreadyProcessed {
			responses.WriteSuccess(w, stripewebhook.Outcome{Acknowledged: true})
			return
		}

		outcome := svc.HandleEvent(ctx, &event)

		if logg != nil {
			logg.Info(ctx, fmt.Sprintf("stripe event %s acknowledged (fulfilled=%t)", event.ID, outcome.Fulfilled))
		}
		responses.WriteSuccess(w, outcome)
	}
}
