package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/orgshop-backend/api/middleware"
	"github.com/angelmondragon/orgshop-backend/api/responses"
	"github.com/angelmondragon/orgshop-backend/api/validators"
	cartsvc "github.com/angelmondragon/orgshop-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/orgshop-backend/pkg/errors"
	"github.com/angelmondragon/orgshop-backend/pkg/logger"
)

const maxItemNameLen = 200

type replaceCartRequest struct {
	Items []cartItemPayload `json:"items" validate:"dive"`
}

type cartItemPayload struct {
	ID            string `json:"id" validate:"required"`
	Name          string `json:"name"`
	PriceCents    int64  `json:"price" validate:"min=0"`
	ImageURL      string `json:"image"`
	Quantity      int    `json:"quantity" validate:"min=1"`
	StripePriceID string `json:"stripe_price_id"`
}

// CartGet returns the caller's cart in insertion order.
func CartGet(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		items, err := svc.Get(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": items})
	}
}

// CartReplace upserts the full cart from the request body.
func CartReplace(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload replaceCartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]cartsvc.ItemDTO, 0, len(payload.Items))
		for _, entry := range payload.Items {
			items = append(items, cartsvc.ItemDTO{
				ID:            entry.ID,
				Name:          validators.SanitizeString(entry.Name, maxItemNameLen),
				PriceCents:    entry.PriceCents,
				ImageURL:      validators.SanitizeString(entry.ImageURL, 0),
				Quantity:      entry.Quantity,
				StripePriceID: entry.StripePriceID,
			})
		}

		updated, err := svc.Replace(r.Context(), middleware.UserIDFromContext(r.Context()), items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": updated})
	}
}

// CartDeleteItem removes one composite-id entry.
func CartDeleteItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		itemID := chi.URLParam(r, "itemID")
		if err := svc.DeleteItem(r.Context(), middleware.UserIDFromContext(r.Context()), itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"deleted": itemID})
	}
}

// CartClear drops the caller's whole cart.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		if err := svc.Clear(r.Context(), middleware.UserIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}
