package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/orgshop-backend/pkg/db/models"
	"github.com/angelmondragon/orgshop-backend/pkg/types"
)

// Repository exposes persistence operations for cart rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// ListByUser returns the user's cart rows in insertion order.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]models.CartItem, error) {
	var rows []models.CartItem
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpsertItems writes every item keyed on (user, product, variant),
// updating the row in place on conflict. Concurrent readers never
// observe a transiently empty cart, which rules out delete-then-insert.
func (r *Repository) UpsertItems(ctx context.Context, userID string, items []models.CartItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].UserID = userID
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"},
				{Name: "product_id"},
				{Name: "variant_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "unit_price_cents", "image_url", "quantity", "stripe_price_id", "updated_at",
			}),
		}).
		Create(&items).Error
}

// PruneExcept deletes the user's rows whose (product, variant) key is
// not in keep. An empty keep set removes every row for the user.
func (r *Repository) PruneExcept(ctx context.Context, userID string, keep []types.CartItemKey) error {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if len(keep) > 0 {
		pairs := make([][]any, 0, len(keep))
		for _, key := range keep {
			pairs = append(pairs, []any{key.ProductID, key.VariantID})
		}
		q = q.Where("(product_id, variant_id) NOT IN ?", pairs)
	}
	return q.Delete(&models.CartItem{}).Error
}

// DeleteByKey removes the matching row scoped to the user. Missing rows
// are not an error.
func (r *Repository) DeleteByKey(ctx context.Context, userID string, key types.CartItemKey) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ? AND variant_id = ?", userID, key.ProductID, key.VariantID).
		Delete(&models.CartItem{}).Error
}

// DeleteByUser removes every row owned by the user.
func (r *Repository) DeleteByUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartItem{}).Error
}
