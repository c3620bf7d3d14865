package stripewebhook

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"

	"github.com/angelmondragon/orgshop-backend/internal/fulfillment"
	"github.com/angelmondragon/orgshop-backend/internal/orders"
	"github.com/angelmondragon/orgshop-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/orgshop-backend/pkg/errors"
	"github.com/angelmondragon/orgshop-backend/pkg/logger"
	"github.com/angelmondragon/orgshop-backend/pkg/metrics"
	"github.com/angelmondragon/orgshop-backend/pkg/types"
)

// Fulfillment outcome reasons recorded on receipts and metrics.
const (
	ReasonNone               = "none"
	ReasonBadPayload         = "bad_payload"
	ReasonMissingEmail       = "missing_customer_email"
	ReasonMissingSnapshot    = "missing_cart_snapshot"
	ReasonNoFulfillableItems = "no_fulfillable_items"
	ReasonFulfillmentFailed  = "fulfillment_failed"
	ReasonOrderLookupFailed  = "order_lookup_failed"
	ReasonOrderWriteFailed   = "order_write_failed"
	ReasonAlreadyProcessed   = "already_processed"
)

// metadataItemsKey matches the key the checkout initiator writes.
const metadataItemsKey = "items"

// Outcome reports what a verified delivery produced. Acknowledged is
// always true once the signature checked out; Fulfilled says whether a
// fulfillment order was created, and Reason explains a false value.
type Outcome struct {
	Acknowledged bool   `json:"acknowledged"`
	Fulfilled    bool   `json:"fulfilled"`
	Reason       string `json:"reason,omitempty"`
}

// ServiceParams wires the webhook dispatcher's collaborators.
type ServiceParams struct {
	Fulfillment fulfillment.Service
	Orders      orders.Service
	Receipts    *Repository
	Metrics     *metrics.WebhookMetrics
	Logger      *logger.Logger
}

// Service routes verified payment events into the fulfillment pipeline.
type Service struct {
	fulfillment fulfillment.Service
	orders      orders.Service
	receipts    *Repository
	metrics     *metrics.WebhookMetrics
	logg        *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Fulfillment == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service required")
	}
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders service required")
	}
	if params.Receipts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "receipt repository required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		fulfillment: params.Fulfillment,
		orders:      params.Orders,
		receipts:    params.Receipts,
		metrics:     params.Metrics,
		logg:        params.Logger,
	}, nil
}

// HandleEvent dispatches one verified event. It never returns an error:
// the payment processor is always acknowledged once the signature
// checked out, and downstream failures are logged and recorded on the
// receipt rather than re-signaled, so a processor retry cannot create a
// duplicate fulfillment order.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) Outcome {
	s.metrics.IncReceived(string(event.Type))

	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		return Outcome{Acknowledged: true}
	}

	ctx = s.logg.WithEventID(ctx, event.ID)
	outcome, sessionID := s.dispatchCompletedSession(ctx, event)

	s.recordOutcome(ctx, event, sessionID, outcome)
	return outcome
}

func (s *Service) dispatchCompletedSession(ctx context.Context, event *stripe.Event) (Outcome, string) {
	if event.Data == nil {
		return s.failed(ctx, ReasonBadPayload, fmt.Errorf("event has no data")), ""
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return s.failed(ctx, ReasonBadPayload, err), ""
	}

	ctx = s.logg.WithSessionID(ctx, session.ID)

	// The redis guard only dedupes by event id; Stripe can replay a
	// session under a fresh event id, so the order record is the
	// authoritative replay check. Without it the pipeline must not run.
	existing, err := s.orders.FindBySession(ctx, session.ID)
	if err != nil {
		return s.failed(ctx, ReasonOrderLookupFailed, err), session.ID
	}
	if existing != nil {
		s.logg.Info(ctx, "session already fulfilled, dropping replay")
		return Outcome{Acknowledged: true, Fulfilled: false, Reason: ReasonAlreadyProcessed}, session.ID
	}

	email := customerEmail(&session)
	if email == "" {
		return s.failed(ctx, ReasonMissingEmail, fmt.Errorf("session has no customer email")), session.ID
	}

	snapshot, err := decodeSnapshot(session.Metadata[metadataItemsKey])
	if err != nil || len(snapshot) == 0 {
		return s.failed(ctx, ReasonMissingSnapshot, err), session.ID
	}

	order, err := s.fulfillment.Fulfill(ctx, fulfillment.FulfillInput{
		SessionID: session.ID,
		Recipient: recipientFromSession(&session, email),
		Items:     snapshot,
	})
	if err != nil {
		reason := ReasonFulfillmentFailed
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNoFulfillableItems {
			reason = ReasonNoFulfillableItems
		}
		return s.failed(ctx, reason, err), session.ID
	}

	// Payment and fulfillment have both succeeded at this point; the
	// local record write is best effort and never re-signaled.
	outcome := Outcome{Acknowledged: true, Fulfilled: true, Reason: ReasonNone}

	recorded, err := s.orders.RecordOrder(ctx, orders.RecordOrderInput{
		StripeSessionID: session.ID,
		CustomerEmail:   email,
		CustomerName:    customerName(&session),
		TotalCents:      session.AmountTotal,
		ShippingAddress: shippingAddress(&session),
		Items:           toOrderItems(snapshot),
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeConflict {
			// Lost a race with a concurrent delivery of the same
			// session; the row exists, so this is a duplicate, not
			// a write failure.
			s.logg.Warn(ctx, "order already recorded for session, treating as replay")
			outcome.Reason = ReasonAlreadyProcessed
			s.metrics.IncFulfilled()
			return outcome, session.ID
		}
		s.logg.Error(ctx, "order record write failed after fulfillment", err)
		outcome.Reason = ReasonOrderWriteFailed
		s.metrics.IncFailed(ReasonOrderWriteFailed)
		return outcome, session.ID
	}

	if err := s.orders.MarkProcessing(ctx, recorded.ID, order.ID); err != nil {
		// Tolerated: the order row exists, only the status update lagged.
		s.logg.Error(ctx, "order status update failed", err)
	}

	s.metrics.IncFulfilled()
	return outcome, session.ID
}

func (s *Service) failed(ctx context.Context, reason string, err error) Outcome {
	if err != nil {
		s.logg.Error(ctx, "fulfillment pipeline failed: "+reason, err)
	} else {
		s.logg.Warn(ctx, "fulfillment pipeline failed: "+reason)
	}
	s.metrics.IncFailed(reason)
	return Outcome{Acknowledged: true, Fulfilled: false, Reason: reason}
}

func (s *Service) recordOutcome(ctx context.Context, event *stripe.Event, sessionID string, outcome Outcome) {
	receipt := &models.WebhookReceipt{
		EventID:         event.ID,
		EventType:       string(event.Type),
		StripeSessionID: sessionID,
		Fulfilled:       outcome.Fulfilled,
		Reason:          outcome.Reason,
	}
	if err := s.receipts.Create(ctx, receipt); err != nil {
		s.logg.Error(ctx, "webhook receipt write failed", err)
	}
}

func decodeSnapshot(raw string) ([]types.CartSnapshotItem, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("session metadata has no cart snapshot")
	}
	var items []types.CartSnapshotItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decode cart snapshot: %w", err)
	}
	return items, nil
}

func toOrderItems(snapshot []types.CartSnapshotItem) []types.OrderItem {
	items := make([]types.OrderItem, 0, len(snapshot))
	for _, entry := range snapshot {
		key, err := types.ParseCartItemKey(entry.ID)
		if err != nil {
			key = types.CartItemKey{ProductID: entry.ID}
		}
		items = append(items, types.OrderItem{
			ProductID:      key.ProductID,
			VariantID:      key.VariantID,
			Name:           entry.Name,
			UnitPriceCents: entry.PriceCents,
			Quantity:       entry.Quantity,
			StripePriceID:  entry.StripePriceID,
		})
	}
	return items
}

func customerEmail(session *stripe.CheckoutSession) string {
	if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
		return session.CustomerDetails.Email
	}
	return session.CustomerEmail
}

func customerName(session *stripe.CheckoutSession) *string {
	if session.CustomerDetails == nil {
		return nil
	}
	name := strings.TrimSpace(session.CustomerDetails.Name)
	if name == "" {
		return nil
	}
	return &name
}

func shippingAddress(session *stripe.CheckoutSession) *types.Address {
	if session.CustomerDetails == nil || session.CustomerDetails.Address == nil {
		return nil
	}
	src := session.CustomerDetails.Address
	addr := types.Address{
		Line1:      src.Line1,
		Line2:      src.Line2,
		City:       src.City,
		State:      src.State,
		PostalCode: src.PostalCode,
		Country:    src.Country,
	}.Normalized()
	return &addr
}

func recipientFromSession(session *stripe.CheckoutSession, email string) fulfillment.RecipientInput {
	recipient := fulfillment.RecipientInput{Email: email}
	if details := session.CustomerDetails; details != nil {
		recipient.Name = details.Name
		recipient.Phone = details.Phone
		if addr := shippingAddress(session); addr != nil {
			recipient.Address = *addr
		}
	}
	return recipient
}
