package controllers

import (
	"net/http"

	"github.com/angelmondragon/orgshop-backend/api/responses"
	"github.com/angelmondragon/orgshop-backend/api/validators"
	checkoutsvc "github.com/angelmondragon/orgshop-backend/internal/checkout"
	pkgerrors "github.com/angelmondragon/orgshop-backend/pkg/errors"
	"github.com/angelmondragon/orgshop-backend/pkg/logger"
	"github.com/angelmondragon/orgshop-backend/pkg/types"
)

type createCheckoutRequest struct {
	Email string                `json:"email" validate:"required,email"`
	Items []checkoutItemPayload `json:"items" validate:"required,min=1,dive"`
}

type checkoutItemPayload struct {
	ID            string `json:"id" validate:"required"`
	Name          string `json:"name"`
	PriceCents    int64  `json:"price" validate:"min=0"`
	Quantity      int    `json:"quantity" validate:"min=1"`
	StripePriceID string `json:"stripe_price_id" validate:"required"`
}

// CheckoutCreate starts a hosted checkout session and returns its
// redirect URL. The cart itself is untouched; abandoning the hosted
// page costs nothing.
func CheckoutCreate(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload createCheckoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]types.CartSnapshotItem, 0, len(payload.Items))
		for _, entry := range payload.Items {
			items = append(items, types.CartSnapshotItem{
				ID:            entry.ID,
				Name:          entry.Name,
				PriceCents:    entry.PriceCents,
				Quantity:      entry.Quantity,
				StripePriceID: entry.StripePriceID,
			})
		}

		session, err := svc.CreateSession(r.Context(), checkoutsvc.CreateSessionInput{
			Email: payload.Email,
			Items: items,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	}
}
