package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"

	"github.com/angelmondragon/orgshop-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/orgshop-backend/pkg/errors"
	"github.com/angelmondragon/orgshop-backend/pkg/types"
)

// metadataItemsKey holds the serialized cart snapshot on the session.
const metadataItemsKey = "items"

// metadataValueLimit is the processor's per-value metadata cap. A cart
// that serializes past it cannot be reconstructed by the webhook
// pipeline, so session creation is refused up front.
const metadataValueLimit = 500

// Service creates hosted checkout sessions.
type Service interface {
	CreateSession(ctx context.Context, input CreateSessionInput) (*SessionDTO, error)
}

// CreateSessionInput holds the validated payload to start a checkout.
type CreateSessionInput struct {
	Email string
	Items []types.CartSnapshotItem
}

// SessionDTO carries the hosted payment page redirect.
type SessionDTO struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type sessionCreator interface {
	CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionCreateParams) (*stripe.CheckoutSession, error)
}

type service struct {
	sessions sessionCreator
	cfg      config.CheckoutConfig
}

// NewService constructs a checkout service instance.
func NewService(sessions sessionCreator, cfg config.CheckoutConfig) (Service, error) {
	if sessions == nil {
		return nil, fmt.Errorf("session creator required")
	}
	if cfg.SuccessURL == "" || cfg.CancelURL == "" {
		return nil, fmt.Errorf("checkout redirect urls required")
	}
	return &service{sessions: sessions, cfg: cfg}, nil
}

// CreateSession builds one line item per cart entry and serializes the
// cart into session metadata so the webhook handler can reconstruct the
// purchase later. Session creation has no side effect on the cart.
func (s *service) CreateSession(ctx context.Context, input CreateSessionInput) (*SessionDTO, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	snapshot, err := json.Marshal(input.Items)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal cart snapshot")
	}
	if len(snapshot) > metadataValueLimit {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart too large for checkout session metadata").
			WithDetails(map[string]any{"bytes": len(snapshot), "limit": metadataValueLimit})
	}

	params := &stripe.CheckoutSessionCreateParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail: stripe.String(input.Email),
		SuccessURL:    stripe.String(s.cfg.SuccessURL),
		CancelURL:     stripe.String(s.cfg.CancelURL),
		Metadata:      map[string]string{metadataItemsKey: string(snapshot)},
	}
	for _, item := range input.Items {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionCreateLineItemParams{
			Price:    stripe.String(item.StripePriceID),
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}

	session, err := s.sessions.CreateCheckoutSession(ctx, params)
	if err != nil {
		return nil, err
	}

	return &SessionDTO{ID: session.ID, URL: session.URL}, nil
}

func validateInput(input CreateSessionInput) error {
	if strings.TrimSpace(input.Email) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer email is required")
	}
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	for _, item := range input.Items {
		if strings.TrimSpace(item.StripePriceID) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %q is missing a price reference", item.ID))
		}
		if item.Quantity < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %q quantity must be at least 1", item.ID))
		}
	}
	return nil
}
