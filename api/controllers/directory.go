package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomasvidal/stockpilot-backend/api/responses"
	"github.com/tomasvidal/stockpilot-backend/api/validators"
	catalogsvc "github.com/tomasvidal/stockpilot-backend/internal/catalog"
	locationsvc "github.com/tomasvidal/stockpilot-backend/internal/locations"
	"github.com/tomasvidal/stockpilot-backend/pkg/enums"
	pkgerrors "github.com/tomasvidal/stockpilot-backend/pkg/errors"
	"github.com/tomasvidal/stockpilot-backend/pkg/logger"
)

// LocationList returns the location directory, optionally filtered by kind.
func LocationList(svc locationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := locationsvc.ListFilter{
			ActiveOnly: r.URL.Query().Get("active") == "true",
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("kind")); raw != "" {
			kind, err := enums.ParseLocationKind(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid kind"))
				return
			}
			filter.Kind = &kind
		}

		locations, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"locations": locations})
	}
}

// LocationDetail returns one location by id.
func LocationDetail(svc locationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locationID, err := validators.ParsePathUUID(chi.URLParam(r, "locationID"), "locationID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		location, err := svc.Get(r.Context(), locationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, location)
	}
}

// ProductList returns paginated catalog products.
func ProductList(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), catalogsvc.ListFilter{
			ActiveOnly: r.URL.Query().Get("active") == "true",
			Search:     strings.TrimSpace(r.URL.Query().Get("search")),
			Pagination: params,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"products":    result.Products,
			"next_cursor": result.NextCursor,
		})
	}
}

// ProductDetail returns one product by id, or by sku when requested.
func ProductDetail(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "productID")

		if sku := strings.TrimSpace(r.URL.Query().Get("by")); sku == "sku" {
			product, err := svc.GetBySKU(r.Context(), raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, product)
			return
		}

		productID, err := validators.ParsePathUUID(raw, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Get(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}
