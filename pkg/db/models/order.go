package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/orgshop-backend/pkg/enums"
	"github.com/angelmondragon/orgshop-backend/pkg/types"
)

// Order is the local record of a completed checkout session. Exactly one
// row exists per session: stripe_session_id carries a unique index so
// replayed webhooks cannot insert a second order.
type Order struct {
	ID               uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StripeSessionID  string            `gorm:"column:stripe_session_id;not null;uniqueIndex:idx_orders_stripe_session_id"`
	CustomerEmail    string            `gorm:"column:customer_email;not null"`
	CustomerName     *string           `gorm:"column:customer_name"`
	TotalCents       int64             `gorm:"column:total_cents;not null"`
	ShippingAddress  *types.Address    `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	Items            []types.OrderItem `gorm:"column:items;type:jsonb;serializer:json"`
	Status           enums.OrderStatus `gorm:"column:status;not null;default:'created'"`
	FulfillmentOrder *int64            `gorm:"column:fulfillment_order_id"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
