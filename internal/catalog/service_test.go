package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stripe/stripe-go/v84"

	pkgerrors "github.com/angelmondragon/orgshop-backend/pkg/errors"
)

type stubLister struct {
	listFn func(ctx context.Context) ([]*stripe.Product, error)
}

func (s *stubLister) ListActiveProducts(ctx context.Context) ([]*stripe.Product, error) {
	return s.listFn(ctx)
}

func listing(id, name, priceID string, cents int64, meta map[string]string) *stripe.Product {
	return &stripe.Product{
		ID:           id,
		Name:         name,
		Active:       true,
		Metadata:     meta,
		DefaultPrice: &stripe.Price{ID: priceID, UnitAmount: cents},
	}
}

func TestListProductsGroupsVariantsByBaseName(t *testing.T) {
	lister := &stubLister{listFn: func(ctx context.Context) ([]*stripe.Product, error) {
		return []*stripe.Product{
			listing("prod_1", "Org Hoodie - Black / M", "price_1", 4500, map[string]string{
				"printful_product_id": "301",
				"printful_variant_id": "10001",
				"category":            "apparel",
			}),
			listing("prod_2", "Org Hoodie - Black / L", "price_2", 4500, map[string]string{
				"printful_variant_id": "10002",
			}),
			listing("prod_3", "Sticker Pack", "price_3", 500, map[string]string{
				"inventory": "42",
			}),
		}, nil
	}}

	svc, err := NewService(lister)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	products, err := svc.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}

	hoodie := products[0]
	if hoodie.Name != "Org Hoodie" {
		t.Fatalf("expected base name %q, got %q", "Org Hoodie", hoodie.Name)
	}
	if hoodie.ID != "prod_1" || hoodie.StripePriceID != "price_1" {
		t.Fatalf("expected representative fields from first listing, got %+v", hoodie)
	}
	if hoodie.Category != "apparel" {
		t.Fatalf("expected category from representative metadata, got %q", hoodie.Category)
	}
	if hoodie.Inventory != dropShipInventory {
		t.Fatalf("expected drop-ship inventory, got %d", hoodie.Inventory)
	}
	if len(hoodie.Variants) != 2 {
		t.Fatalf("expected 2 hoodie variants, got %d", len(hoodie.Variants))
	}
	first := hoodie.Variants[0]
	if first.Color != "Black" || first.Size != "M" {
		t.Fatalf("expected Black/M, got %s/%s", first.Color, first.Size)
	}
	if first.PrintfulVariantID != "10001" {
		t.Fatalf("expected printful variant id, got %q", first.PrintfulVariantID)
	}

	stickers := products[1]
	if stickers.Inventory != 42 {
		t.Fatalf("expected metadata inventory, got %d", stickers.Inventory)
	}
	if len(stickers.Variants) != 1 {
		t.Fatalf("expected single default variant, got %d", len(stickers.Variants))
	}
	v := stickers.Variants[0]
	if v.Name != defaultVariantLabel || v.Color != defaultVariantLabel || v.Size != defaultVariantLabel {
		t.Fatalf("expected default variant label, got %+v", v)
	}
}

func TestListProductsWrapsFetchFailure(t *testing.T) {
	lister := &stubLister{listFn: func(ctx context.Context) ([]*stripe.Product, error) {
		return nil, errors.New("stripe down")
	}}

	svc, err := NewService(lister)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.ListProducts(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestSplitVariantName(t *testing.T) {
	cases := []struct {
		name  string
		base  string
		label string
	}{
		{"Org Hoodie - Black / M", "Org Hoodie", "Black / M"},
		{"Org Tee - Navy / S - Limited", "Org Tee", "Navy / S - Limited"},
		{"Sticker Pack", "Sticker Pack", defaultVariantLabel},
		{"Mug - ", "Mug", defaultVariantLabel},
	}

	for _, tc := range cases {
		base, label := splitVariantName(tc.name)
		if base != tc.base || label != tc.label {
			t.Errorf("splitVariantName(%q) = %q, %q; want %q, %q", tc.name, base, label, tc.base, tc.label)
		}
	}
}

func TestSplitVariantLabel(t *testing.T) {
	cases := []struct {
		label string
		color string
		size  string
	}{
		{"Black / M", "Black", "M"},
		{"Heather Grey", "Heather Grey", defaultVariantLabel},
		{"Navy / ", "Navy", defaultVariantLabel},
	}

	for _, tc := range cases {
		color, size := splitVariantLabel(tc.label)
		if color != tc.color || size != tc.size {
			t.Errorf("splitVariantLabel(%q) = %q, %q; want %q, %q", tc.label, color, size, tc.color, tc.size)
		}
	}
}

func TestInventoryForDefaultsToZero(t *testing.T) {
	cases := []struct {
		meta map[string]string
		want int
	}{
		{map[string]string{"inventory": "7"}, 7},
		{map[string]string{"inventory": "not-a-number"}, 0},
		{map[string]string{"inventory": "-3"}, 0},
		{map[string]string{}, 0},
		{map[string]string{"printful_product_id": "301"}, dropShipInventory},
	}

	for _, tc := range cases {
		got := inventoryFor(&stripe.Product{Metadata: tc.meta})
		if got != tc.want {
			t.Errorf("inventoryFor(%v) = %d, want %d", tc.meta, got, tc.want)
		}
	}
}
