package types

import (
	"fmt"
	"strings"
)

// CartItemKey identifies a cart entry by product and optional variant.
// The wire format is the legacy composite id "{productID}-{variantID}"
// (variant omitted when empty); internally the two fields stay separate so
// product ids containing hyphens cannot be mis-split on the way out.
type CartItemKey struct {
	ProductID string
	VariantID string
}

// ParseCartItemKey decodes the composite wire id. Everything after the
// first hyphen is treated as the variant id; no hyphen means no variant.
func ParseCartItemKey(raw string) (CartItemKey, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return CartItemKey{}, fmt.Errorf("cart item id is required")
	}
	product, variant, found := strings.Cut(id, "-")
	if !found {
		return CartItemKey{ProductID: id}, nil
	}
	if product == "" {
		return CartItemKey{}, fmt.Errorf("cart item id %q has empty product id", raw)
	}
	return CartItemKey{ProductID: product, VariantID: variant}, nil
}

// String renders the composite wire id.
func (k CartItemKey) String() string {
	if k.VariantID == "" {
		return k.ProductID
	}
	return k.ProductID + "-" + k.VariantID
}

// HasVariant reports whether the key addresses a specific variant.
func (k CartItemKey) HasVariant() bool {
	return k.VariantID != ""
}

// CartSnapshotItem is the cart entry shape serialized into checkout
// session metadata so the webhook pipeline can reconstruct the purchase
// without a cart lookup.
type CartSnapshotItem struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	PriceCents    int64  `json:"price"`
	Quantity      int    `json:"quantity"`
	StripePriceID string `json:"stripe_price_id"`
}
