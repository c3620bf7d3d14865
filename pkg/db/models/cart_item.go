package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem persists one entry of a user's cart. Identity is the
// (user_id, product_id, variant_id) triple; a product without a variant
// stores the empty string so the composite unique index still applies.
type CartItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID         string    `gorm:"column:user_id;not null;uniqueIndex:idx_cart_items_user_product_variant,priority:1"`
	ProductID      string    `gorm:"column:product_id;not null;uniqueIndex:idx_cart_items_user_product_variant,priority:2"`
	VariantID      string    `gorm:"column:variant_id;not null;default:'';uniqueIndex:idx_cart_items_user_product_variant,priority:3"`
	Name           string    `gorm:"column:name;not null"`
	UnitPriceCents int64     `gorm:"column:unit_price_cents;not null"`
	ImageURL       string    `gorm:"column:image_url;not null;default:''"`
	Quantity       int       `gorm:"column:quantity;not null"`
	StripePriceID  string    `gorm:"column:stripe_price_id;not null;default:''"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
