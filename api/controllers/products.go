package controllers

import (
	"net/http"

	"github.com/angelmondragon/orgshop-backend/api/responses"
	catalogsvc "github.com/angelmondragon/orgshop-backend/internal/catalog"
	pkgerrors "github.com/angelmondragon/orgshop-backend/pkg/errors"
	"github.com/angelmondragon/orgshop-backend/pkg/logger"
)

// ListProducts serves the public storefront catalog.
func ListProducts(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		products, err := svc.ListProducts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}
