package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/orgshop-backend/pkg/db/models"
	"github.com/angelmondragon/orgshop-backend/pkg/enums"
)

// Repository exposes persistence operations for order rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the order. Status is left to the storage default.
func (r *Repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// FindBySessionID loads the order recorded for a checkout session.
func (r *Repository) FindBySessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("stripe_session_id = ?", sessionID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// SetProcessing attaches the fulfillment order id and moves the order
// to processing in one update.
func (r *Repository) SetProcessing(ctx context.Context, orderID uuid.UUID, fulfillmentOrderID int64) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]any{
			"status":               enums.OrderStatusProcessing,
			"fulfillment_order_id": fulfillmentOrderID,
		}).Error
}
