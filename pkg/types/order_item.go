package types

// OrderItem is the denormalized line-item snapshot stored on an order row.
// It deliberately copies name/price at purchase time so later catalog edits
// cannot rewrite order history.
type OrderItem struct {
	ProductID      string `json:"product_id"`
	VariantID      string `json:"variant_id,omitempty"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int    `json:"quantity"`
	StripePriceID  string `json:"stripe_price_id,omitempty"`
}
