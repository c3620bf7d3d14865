package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/orgshop-backend/pkg/db"
	"github.com/angelmondragon/orgshop-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/orgshop-backend/pkg/errors"
	"github.com/angelmondragon/orgshop-backend/pkg/types"
)

const sessionUniqueIndex = "idx_orders_stripe_session_id"

// Service writes the local order record for a completed checkout.
type Service interface {
	RecordOrder(ctx context.Context, input RecordOrderInput) (*models.Order, error)
	FindBySession(ctx context.Context, sessionID string) (*models.Order, error)
	MarkProcessing(ctx context.Context, orderID uuid.UUID, fulfillmentOrderID int64) error
}

// RecordOrderInput holds the order snapshot extracted from a completed
// checkout session.
type RecordOrderInput struct {
	StripeSessionID string
	CustomerEmail   string
	CustomerName    *string
	TotalCents      int64
	ShippingAddress *types.Address
	Items           []types.OrderItem
}

type service struct {
	repo *Repository
}

// NewService constructs an order writer instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{repo: repo}, nil
}

// RecordOrder inserts exactly one row per checkout session. The insert
// carries no explicit status so the storage default applies; a replayed
// session surfaces as CodeConflict via the session unique index.
func (s *service) RecordOrder(ctx context.Context, input RecordOrderInput) (*models.Order, error) {
	if strings.TrimSpace(input.StripeSessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout session id is required")
	}
	if strings.TrimSpace(input.CustomerEmail) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer email is required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one item")
	}

	order := &models.Order{
		StripeSessionID: input.StripeSessionID,
		CustomerEmail:   input.CustomerEmail,
		CustomerName:    input.CustomerName,
		TotalCents:      input.TotalCents,
		ShippingAddress: input.ShippingAddress,
		Items:           input.Items,
	}

	created, err := s.repo.Create(ctx, order)
	if err != nil {
		if db.IsUniqueViolation(err, sessionUniqueIndex) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order already recorded for session")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order")
	}
	return created, nil
}

// FindBySession returns the order recorded for a checkout session, or
// nil when no order exists yet. Webhook dispatch checks this before
// fulfilling so a replayed session is a no-op instead of a second
// partner order.
func (s *service) FindBySession(ctx context.Context, sessionID string) (*models.Order, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout session id is required")
	}
	order, err := s.repo.FindBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find order by session")
	}
	return order, nil
}

// MarkProcessing attaches the fulfillment order id and advances the
// status. Callers treat a failure here as log-only; payment and
// fulfillment have both already succeeded.
func (s *service) MarkProcessing(ctx context.Context, orderID uuid.UUID, fulfillmentOrderID int64) error {
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if err := s.repo.SetProcessing(ctx, orderID, fulfillmentOrderID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: mark order processing")
	}
	return nil
}
