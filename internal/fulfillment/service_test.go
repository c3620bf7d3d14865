package fulfillment

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stripe/stripe-go/v84"

	pkgerrors "github.com/angelmondragon/orgshop-backend/pkg/errors"
	"github.com/angelmondragon/orgshop-backend/pkg/logger"
	"github.com/angelmondragon/orgshop-backend/pkg/printful"
	"github.com/angelmondragon/orgshop-backend/pkg/types"
)

type stubCatalog struct {
	prices   map[string]*stripe.Price
	products map[string]*stripe.Product
	priceErr error
}

func (s *stubCatalog) GetPrice(ctx context.Context, priceID string) (*stripe.Price, error) {
	if s.priceErr != nil {
		return nil, s.priceErr
	}
	price, ok := s.prices[priceID]
	if !ok {
		return nil, errors.New("price not found")
	}
	return price, nil
}

func (s *stubCatalog) GetProduct(ctx context.Context, productID string) (*stripe.Product, error) {
	product, ok := s.products[productID]
	if !ok {
		return nil, errors.New("product not found")
	}
	return product, nil
}

type stubPartner struct {
	req     *printful.OrderRequest
	order   *printful.Order
	failErr error
}

func (s *stubPartner) CreateOrder(ctx context.Context, req printful.OrderRequest) (*printful.Order, error) {
	s.req = &req
	if s.failErr != nil {
		return nil, s.failErr
	}
	return s.order, nil
}

func quietLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func mappableCatalog() *stubCatalog {
	return &stubCatalog{
		prices: map[string]*stripe.Price{
			"price_hoodie":  {ID: "price_hoodie", Product: &stripe.Product{ID: "prod_hoodie"}},
			"price_sticker": {ID: "price_sticker", Product: &stripe.Product{ID: "prod_sticker"}},
		},
		products: map[string]*stripe.Product{
			"prod_hoodie":  {ID: "prod_hoodie", Metadata: map[string]string{"printful_variant_id": "10001"}},
			"prod_sticker": {ID: "prod_sticker", Metadata: map[string]string{}},
		},
	}
}

func snapshot() []types.CartSnapshotItem {
	return []types.CartSnapshotItem{
		{ID: "p1-v1", Name: "Hoodie", PriceCents: 2000, Quantity: 2, StripePriceID: "price_hoodie"},
		{ID: "p2", Name: "Stickers", PriceCents: 1500, Quantity: 1, StripePriceID: "price_sticker"},
	}
}

func TestFulfillDropsUnmappableItems(t *testing.T) {
	partner := &stubPartner{order: &printful.Order{ID: 555, Status: "draft"}}
	svc, err := NewService(mappableCatalog(), partner, quietLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	order, err := svc.Fulfill(context.Background(), FulfillInput{
		SessionID: "cs_1",
		Recipient: RecipientInput{
			Name:    "Jo Student",
			Email:   "jo@example.org",
			Address: types.Address{Line1: "1 Campus Dr", City: "Tulsa", State: "OK", PostalCode: "74104"},
		},
		Items: snapshot(),
	})
	if err != nil {
		t.Fatalf("Fulfill: %v", err)
	}
	if order.ID != 555 {
		t.Fatalf("expected partner order id 555, got %d", order.ID)
	}

	if partner.req == nil {
		t.Fatal("expected an order request to reach the partner")
	}
	if partner.req.ExternalID != "cs_1" {
		t.Fatalf("expected session id as external reference, got %q", partner.req.ExternalID)
	}
	// The sticker has no fulfillment variant id and is dropped.
	if len(partner.req.Items) != 1 {
		t.Fatalf("expected 1 surviving item, got %d", len(partner.req.Items))
	}
	line := partner.req.Items[0]
	if line.VariantID != 10001 || line.Quantity != 2 {
		t.Fatalf("unexpected line %+v", line)
	}
	if partner.req.Recipient.CountryCode != "US" {
		t.Fatalf("expected country default US, got %q", partner.req.Recipient.CountryCode)
	}
}

func TestFulfillNoFulfillableItems(t *testing.T) {
	catalog := mappableCatalog()
	partner := &stubPartner{order: &printful.Order{ID: 1}}
	svc, err := NewService(catalog, partner, quietLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Fulfill(context.Background(), FulfillInput{
		SessionID: "cs_2",
		Items: []types.CartSnapshotItem{
			{ID: "p2", Name: "Stickers", Quantity: 1, StripePriceID: "price_sticker"},
			{ID: "p3", Name: "No price ref", Quantity: 1},
		},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNoFulfillableItems {
		t.Fatalf("expected no-fulfillable-items error, got %v", err)
	}
	if partner.req != nil {
		t.Fatal("no order must be submitted when nothing is mappable")
	}
}

func TestFulfillPropagatesCatalogFailure(t *testing.T) {
	catalog := mappableCatalog()
	catalog.priceErr = pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("stripe down"), "retrieve stripe price")
	partner := &stubPartner{order: &printful.Order{ID: 1}}
	svc, err := NewService(catalog, partner, quietLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Fulfill(context.Background(), FulfillInput{SessionID: "cs_3", Items: snapshot()})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if partner.req != nil {
		t.Fatal("no order must be submitted when resolution fails")
	}
}

func TestFulfillPropagatesPartnerFailure(t *testing.T) {
	partner := &stubPartner{failErr: pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("printful 500"), "printful: create order")}
	svc, err := NewService(mappableCatalog(), partner, quietLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Fulfill(context.Background(), FulfillInput{SessionID: "cs_4", Items: snapshot()})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestFulfillValidation(t *testing.T) {
	svc, err := NewService(mappableCatalog(), &stubPartner{}, quietLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Fulfill(context.Background(), FulfillInput{Items: snapshot()})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for missing session, got %v", err)
	}

	_, err = svc.Fulfill(context.Background(), FulfillInput{SessionID: "cs_5"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for empty snapshot, got %v", err)
	}
}

func TestBuildRecipientDefaults(t *testing.T) {
	got := buildRecipient(RecipientInput{})
	if got.Name != defaultRecipientName {
		t.Fatalf("expected default name, got %q", got.Name)
	}
	if got.CountryCode != "US" {
		t.Fatalf("expected default country, got %q", got.CountryCode)
	}
	if got.Address1 != "" || got.Phone != "" {
		t.Fatalf("expected empty address defaults, got %+v", got)
	}
}
