package cart

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/orgshop-backend/pkg/db"
	"github.com/angelmondragon/orgshop-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/orgshop-backend/pkg/errors"
	"github.com/angelmondragon/orgshop-backend/pkg/types"
)

// Service exposes the per-user cart operations.
type Service interface {
	Get(ctx context.Context, userID string) ([]ItemDTO, error)
	Replace(ctx context.Context, userID string, items []ItemDTO) ([]ItemDTO, error)
	DeleteItem(ctx context.Context, userID, itemID string) error
	Clear(ctx context.Context, userID string) error
}

type service struct {
	repo     *Repository
	dbClient *db.Client
}

// NewService constructs a cart service instance.
func NewService(repo *Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

// Get returns the user's cart in insertion order.
func (s *service) Get(ctx context.Context, userID string) ([]ItemDTO, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, storageErr(err, "db: list cart items")
	}

	items := make([]ItemDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, toItemDTO(row))
	}
	return items, nil
}

// Replace upserts the full item list keyed on (user, product, variant)
// and prunes rows absent from it, then returns the resulting cart.
// Duplicate composite ids in the payload merge by summing quantities.
func (s *service) Replace(ctx context.Context, userID string, items []ItemDTO) ([]ItemDTO, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	rows, keys, err := mergeItems(items)
	if err != nil {
		return nil, err
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.UpsertItems(ctx, userID, rows); err != nil {
			return err
		}
		return txRepo.PruneExcept(ctx, userID, keys)
	}); err != nil {
		return nil, storageErr(err, "db: replace cart items")
	}

	return s.Get(ctx, userID)
}

// DeleteItem removes one composite-id entry scoped to the user.
func (s *service) DeleteItem(ctx context.Context, userID, itemID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}

	key, err := types.ParseCartItemKey(itemID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cart item id")
	}

	if err := s.repo.DeleteByKey(ctx, userID, key); err != nil {
		return storageErr(err, "db: delete cart item")
	}
	return nil
}

// Clear drops every row owned by the user.
func (s *service) Clear(ctx context.Context, userID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}

	if err := s.repo.DeleteByUser(ctx, userID); err != nil {
		return storageErr(err, "db: clear cart")
	}
	return nil
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity required")
	}
	return nil
}

// storageErr distinguishes a missing backing table, which is a
// deployment problem, from ordinary database failures.
func storageErr(err error, msg string) error {
	if db.IsUndefinedTable(err) {
		return pkgerrors.Wrap(pkgerrors.CodeStorageUnavailable, err, msg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}

func mergeItems(items []ItemDTO) ([]models.CartItem, []types.CartItemKey, error) {
	merged := make(map[types.CartItemKey]*models.CartItem, len(items))
	keys := make([]types.CartItemKey, 0, len(items))

	for _, item := range items {
		key, err := types.ParseCartItemKey(item.ID)
		if err != nil {
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cart item id")
		}
		if item.Quantity < 1 {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %q quantity must be at least 1", item.ID))
		}

		if existing, ok := merged[key]; ok {
			existing.Quantity += item.Quantity
			continue
		}

		merged[key] = &models.CartItem{
			ProductID:      key.ProductID,
			VariantID:      key.VariantID,
			Name:           item.Name,
			UnitPriceCents: item.PriceCents,
			ImageURL:       item.ImageURL,
			Quantity:       item.Quantity,
			StripePriceID:  item.StripePriceID,
		}
		keys = append(keys, key)
	}

	rows := make([]models.CartItem, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, *merged[key])
	}
	return rows, keys, nil
}
