package models

import (
	"time"

	"github.com/google/uuid"
)

// WebhookReceipt records the outcome of one verified webhook event so
// operators can query fulfillment failures without grepping logs.
type WebhookReceipt struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EventID         string    `gorm:"column:event_id;not null;uniqueIndex:idx_webhook_receipts_event_id"`
	EventType       string    `gorm:"column:event_type;not null"`
	StripeSessionID string    `gorm:"column:stripe_session_id;not null;default:''"`
	Fulfilled       bool      `gorm:"column:fulfilled;not null;default:false"`
	Reason          string    `gorm:"column:reason;not null;default:''"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
}
