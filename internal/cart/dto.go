package cart

import (
	"github.com/angelmondragon/orgshop-backend/pkg/db/models"
	"github.com/angelmondragon/orgshop-backend/pkg/types"
)

// ItemDTO is the wire shape of one cart entry. ID is the composite
// productId[-variantId] key the storefront client addresses items by.
type ItemDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	PriceCents    int64  `json:"price"`
	ImageURL      string `json:"image"`
	Quantity      int    `json:"quantity"`
	StripePriceID string `json:"stripe_price_id"`
}

func toItemDTO(row models.CartItem) ItemDTO {
	key := types.CartItemKey{ProductID: row.ProductID, VariantID: row.VariantID}
	return ItemDTO{
		ID:            key.String(),
		Name:          row.Name,
		PriceCents:    row.UnitPriceCents,
		ImageURL:      row.ImageURL,
		Quantity:      row.Quantity,
		StripePriceID: row.StripePriceID,
	}
}
