package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// ProductList serves the storefront catalog ordered by sortBy. Unknown keys
// fall back to newest.
func ProductList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sortKey, err := enums.ParseProductSort(r.URL.Query().Get("sortBy"))
		if err != nil {
			if logg != nil {
				logg.Warn(logg.WithField(r.Context(), "sort_by", r.URL.Query().Get("sortBy")), "unknown sort key, using newest")
			}
			sortKey = enums.ProductSortNewest
		}

		views, err := svc.List(r.Context(), sortKey)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if views == nil {
			views = []catalog.ProductView{}
		}
		responses.WriteSuccess(w, map[string]any{"products": views, "sortBy": sortKey})
	}
}
