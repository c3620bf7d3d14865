package stripewebhook

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/orgshop-backend/pkg/db/models"
)

// Repository persists webhook receipts.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a receipt repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts one receipt row.
func (r *Repository) Create(ctx context.Context, receipt *models.WebhookReceipt) error {
	if receipt.ID == uuid.Nil {
		receipt.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(receipt).Error
}

// FindByEventID loads the receipt recorded for an event.
func (r *Repository) FindByEventID(ctx context.Context, eventID string) (*models.WebhookReceipt, error) {
	var receipt models.WebhookReceipt
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		First(&receipt).Error
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}
