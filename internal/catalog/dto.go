package catalog

// ProductDTO is the storefront product payload returned to clients. It is
// assembled from the payment catalog at read time and never persisted.
type ProductDTO struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Description     string       `json:"description"`
	PriceCents      int64        `json:"price_cents"`
	ImageURL        string       `json:"image_url"`
	Category        string       `json:"category"`
	StripeProductID string       `json:"stripe_product_id"`
	StripePriceID   string       `json:"stripe_price_id"`
	Inventory       int          `json:"inventory"`
	IsActive        bool         `json:"is_active"`
	Variants        []VariantDTO `json:"variants"`
}

// VariantDTO is one purchasable variation of a product.
type VariantDTO struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Color             string `json:"color"`
	Size              string `json:"size"`
	PriceCents        int64  `json:"price_cents"`
	StripeProductID   string `json:"stripe_product_id"`
	StripePriceID     string `json:"stripe_price_id"`
	PrintfulVariantID string `json:"printful_variant_id"`
	IsAvailable       bool   `json:"is_available"`
}
