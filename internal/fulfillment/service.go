package fulfillment

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/stripe/stripe-go/v84"

	pkgerrors "github.com/angelmondragon/orgshop-backend/pkg/errors"
	"github.com/angelmondragon/orgshop-backend/pkg/logger"
	"github.com/angelmondragon/orgshop-backend/pkg/printful"
	"github.com/angelmondragon/orgshop-backend/pkg/types"
)

const (
	metaPrintfulVariantID = "printful_variant_id"

	// defaultRecipientName fills in when the payment processor has no
	// customer name on the session.
	defaultRecipientName = "Customer"
)

// Service maps a completed checkout to a fulfillment order.
type Service interface {
	Fulfill(ctx context.Context, input FulfillInput) (*printful.Order, error)
}

// FulfillInput is the purchase recovered from a completed checkout
// session: who to ship to and the cart snapshot of what was bought.
type FulfillInput struct {
	SessionID string
	Recipient RecipientInput
	Items     []types.CartSnapshotItem
}

// RecipientInput carries the customer contact and shipping details as
// the payment processor reported them, before defaulting.
type RecipientInput struct {
	Name    string
	Email   string
	Phone   string
	Address types.Address
}

type catalogResolver interface {
	GetPrice(ctx context.Context, priceID string) (*stripe.Price, error)
	GetProduct(ctx context.Context, productID string) (*stripe.Product, error)
}

type orderCreator interface {
	CreateOrder(ctx context.Context, req printful.OrderRequest) (*printful.Order, error)
}

type service struct {
	catalog catalogResolver
	partner orderCreator
	logg    *logger.Logger
}

// NewService constructs a fulfillment mapper instance.
func NewService(catalog catalogResolver, partner orderCreator, logg *logger.Logger) (Service, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog resolver required")
	}
	if partner == nil {
		return nil, fmt.Errorf("order creator required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{catalog: catalog, partner: partner, logg: logg}, nil
}

// Fulfill resolves each purchased item back to a partner variant id and
// submits one fulfillment order. Items that cannot be mapped are dropped
// with a warning; partial fulfillment beats failing the whole purchase.
// Zero mappable items fails the event and nothing is submitted.
func (s *service) Fulfill(ctx context.Context, input FulfillInput) (*printful.Order, error) {
	if strings.TrimSpace(input.SessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout session id is required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart snapshot is empty")
	}

	lines := make([]printful.OrderItem, 0, len(input.Items))
	for _, item := range input.Items {
		line, ok, err := s.resolveItem(ctx, item)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNoFulfillableItems, "no items could be mapped to fulfillment variants").
			WithDetails(map[string]any{"session_id": input.SessionID, "items": len(input.Items)})
	}

	req := printful.OrderRequest{
		ExternalID: input.SessionID,
		Recipient:  buildRecipient(input.Recipient),
		Items:      lines,
	}

	order, err := s.partner.CreateOrder(ctx, req)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// resolveItem walks price -> parent product -> partner variant id. A
// missing link drops the item; a failed catalog lookup aborts the event.
func (s *service) resolveItem(ctx context.Context, item types.CartSnapshotItem) (printful.OrderItem, bool, error) {
	lctx := s.logg.WithField(ctx, "item_id", item.ID)

	if strings.TrimSpace(item.StripePriceID) == "" {
		s.logg.Warn(lctx, "dropping item without a price reference")
		return printful.OrderItem{}, false, nil
	}

	price, err := s.catalog.GetPrice(ctx, item.StripePriceID)
	if err != nil {
		return printful.OrderItem{}, false, err
	}
	if price.Product == nil || price.Product.ID == "" {
		s.logg.Warn(lctx, "dropping item whose price has no parent product")
		return printful.OrderItem{}, false, nil
	}

	product, err := s.catalog.GetProduct(ctx, price.Product.ID)
	if err != nil {
		return printful.OrderItem{}, false, err
	}

	raw := strings.TrimSpace(product.Metadata[metaPrintfulVariantID])
	if raw == "" {
		s.logg.Warn(lctx, "dropping item without a fulfillment variant id")
		return printful.OrderItem{}, false, nil
	}
	variantID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.logg.Warn(s.logg.WithField(lctx, "printful_variant_id", raw), "dropping item with malformed fulfillment variant id")
		return printful.OrderItem{}, false, nil
	}

	qty := item.Quantity
	if qty < 1 {
		qty = 1
	}

	return printful.OrderItem{
		VariantID: variantID,
		Quantity:  qty,
		Name:      item.Name,
	}, true, nil
}

func buildRecipient(in RecipientInput) printful.Recipient {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = defaultRecipientName
	}
	addr := in.Address.Normalized()

	return printful.Recipient{
		Name:        name,
		Address1:    addr.Line1,
		Address2:    addr.Line2,
		City:        addr.City,
		StateCode:   addr.State,
		CountryCode: addr.Country,
		Zip:         addr.PostalCode,
		Phone:       in.Phone,
		Email:       in.Email,
	}
}
