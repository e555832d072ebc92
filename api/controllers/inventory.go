package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tomasvidal/stockpilot-backend/api/responses"
	"github.com/tomasvidal/stockpilot-backend/api/validators"
	inventorysvc "github.com/tomasvidal/stockpilot-backend/internal/inventory"
	ledgersvc "github.com/tomasvidal/stockpilot-backend/internal/ledger"
	"github.com/tomasvidal/stockpilot-backend/pkg/enums"
	pkgerrors "github.com/tomasvidal/stockpilot-backend/pkg/errors"
	"github.com/tomasvidal/stockpilot-backend/pkg/logger"
)

type createRecordRequest struct {
	ProductID   string  `json:"product_id" validate:"required,uuid"`
	LocationID  string  `json:"location_id" validate:"required,uuid"`
	Quantity    int     `json:"quantity" validate:"min=0"`
	CostPrice   string  `json:"cost_price" validate:"required"`
	RetailPrice string  `json:"retail_price" validate:"required"`
	ExpiryDate  *string `json:"expiry_date,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

// InventoryCreateRecord seeds a product/location pair with opening stock.
func InventoryCreateRecord(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createRecordRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, _ := uuid.Parse(payload.ProductID)
		locationID, _ := uuid.Parse(payload.LocationID)

		cost, err := decimal.NewFromString(payload.CostPrice)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cost price"))
			return
		}
		retail, err := decimal.NewFromString(payload.RetailPrice)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid retail price"))
			return
		}

		var expiry *time.Time
		if payload.ExpiryDate != nil {
			parsed, err := time.Parse(time.RFC3339, *payload.ExpiryDate)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid expiry date"))
				return
			}
			expiry = &parsed
		}

		record, err := svc.CreateRecord(r.Context(), inventorysvc.CreateRecordInput{
			ProductID:   productID,
			LocationID:  locationID,
			Quantity:    payload.Quantity,
			CostPrice:   cost,
			RetailPrice: retail,
			ExpiryDate:  expiry,
			ActorID:     actor,
			Notes:       payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, record)
	}
}

type adjustmentRequest struct {
	ProductID   string  `json:"product_id" validate:"required,uuid"`
	LocationID  string  `json:"location_id" validate:"required,uuid"`
	Mode        string  `json:"mode" validate:"required"`
	Quantity    int     `json:"quantity" validate:"min=0"`
	Reason      string  `json:"reason" validate:"required"`
	Notes       *string `json:"notes,omitempty"`
	CostPrice   *string `json:"cost_price,omitempty"`
	RetailPrice *string `json:"retail_price,omitempty"`
}

// InventoryAdjust applies a manual add, remove or set against one record.
func InventoryAdjust(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload adjustmentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		mode, err := enums.ParseAdjustmentMode(strings.TrimSpace(payload.Mode))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid mode"))
			return
		}
		reason, err := enums.ParseAdjustmentReason(strings.TrimSpace(payload.Reason))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid reason"))
			return
		}

		productID, _ := uuid.Parse(payload.ProductID)
		locationID, _ := uuid.Parse(payload.LocationID)

		input := inventorysvc.AdjustmentInput{
			ProductID:  productID,
			LocationID: locationID,
			Mode:       mode,
			Quantity:   payload.Quantity,
			Reason:     reason,
			Notes:      payload.Notes,
			ActorID:    actor,
		}
		if payload.CostPrice != nil {
			cost, err := decimal.NewFromString(*payload.CostPrice)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cost price"))
				return
			}
			input.CostPrice = &cost
		}
		if payload.RetailPrice != nil {
			retail, err := decimal.NewFromString(*payload.RetailPrice)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid retail price"))
				return
			}
			input.RetailPrice = &retail
		}

		result, err := svc.ApplyAdjustment(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// InventoryList returns paginated records, optionally filtered.
func InventoryList(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		locationID, err := validators.ParseQueryUUID(r, "location_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParseQueryUUID(r, "product_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := inventorysvc.ListFilter{
			LocationID: locationID,
			ProductID:  productID,
			Pagination: params,
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseInventoryStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			filter.Status = &status
		}

		result, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"records":     result.Records,
			"next_cursor": result.NextCursor,
		})
	}
}

// InventoryDetail returns one record by id.
func InventoryDetail(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recordID, err := validators.ParsePathUUID(chi.URLParam(r, "recordID"), "recordID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Get(r.Context(), recordID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, record)
	}
}

// InventoryLedger lists a record's movement history, newest first.
func InventoryLedger(svc ledgersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recordID, err := validators.ParsePathUUID(chi.URLParam(r, "recordID"), "recordID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), recordID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"entries":     result.Entries,
			"next_cursor": result.NextCursor,
		})
	}
}

// InventoryReplay recomputes a record's quantity from its full history.
func InventoryReplay(svc ledgersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recordID, err := validators.ParsePathUUID(chi.URLParam(r, "recordID"), "recordID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Replay(r.Context(), recordID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// InventoryLowStock lists records at or under their catalog threshold.
func InventoryLowStock(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locationID, err := validators.ParseQueryUUID(r, "location_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListLowStock(r.Context(), locationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"records": rows})
	}
}
