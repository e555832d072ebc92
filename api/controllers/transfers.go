package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tomasvidal/stockpilot-backend/api/responses"
	"github.com/tomasvidal/stockpilot-backend/api/validators"
	transfersvc "github.com/tomasvidal/stockpilot-backend/internal/transfers"
	"github.com/tomasvidal/stockpilot-backend/pkg/enums"
	pkgerrors "github.com/tomasvidal/stockpilot-backend/pkg/errors"
	"github.com/tomasvidal/stockpilot-backend/pkg/logger"
)

type createTransferRequest struct {
	SourceID string  `json:"source_id" validate:"required,uuid"`
	DestID   string  `json:"destination_id" validate:"required,uuid"`
	Type     string  `json:"type" validate:"required"`
	Notes    *string `json:"notes,omitempty"`
}

// TransferCreate opens a draft transfer between two locations.
func TransferCreate(svc transfersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transfer service unavailable"))
			return
		}

		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createTransferRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kind, err := enums.ParseTransferType(strings.TrimSpace(payload.Type))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid transfer type"))
			return
		}

		sourceID, _ := uuid.Parse(payload.SourceID)
		destID, _ := uuid.Parse(payload.DestID)

		transfer, err := svc.Create(r.Context(), transfersvc.CreateInput{
			SourceID: sourceID,
			DestID:   destID,
			Type:     kind,
			Notes:    payload.Notes,
			ActorID:  actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, transfer)
	}
}

// TransferList returns paginated transfers, optionally filtered.
func TransferList(svc transfersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sourceID, err := validators.ParseQueryUUID(r, "source_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		destID, err := validators.ParseQueryUUID(r, "destination_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := transfersvc.ListFilter{
			SourceID:   sourceID,
			DestID:     destID,
			Pagination: params,
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseTransferStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			filter.Status = &status
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
			kind, err := enums.ParseTransferType(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid type"))
				return
			}
			filter.Type = &kind
		}

		result, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"transfers":   result.Transfers,
			"next_cursor": result.NextCursor,
		})
	}
}

// TransferDetail returns one transfer with its items.
func TransferDetail(svc transfersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		transferID, err := validators.ParsePathUUID(chi.URLParam(r, "transferID"), "transferID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		transfer, err := svc.Get(r.Context(), transferID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, transfer)
	}
}

type transferItemRequest struct {
	ProductID   string  `json:"product_id" validate:"required,uuid"`
	Quantity    int     `json:"quantity" validate:"required,min=1"`
	TargetCost  *string `json:"target_cost,omitempty"`
	TargetPrice *string `json:"target_price,omitempty"`
	PriceReason *string `json:"price_reason,omitempty"`
}

// TransferAddItem appends a product line to a draft or pending transfer.
func TransferAddItem(svc transfersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		transferID, err := validators.ParsePathUUID(chi.URLParam(r, "transferID"), "transferID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload transferItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, _ := uuid.Parse(payload.ProductID)

		input := transfersvc.AddItemInput{
			TransferID:  transferID,
			ProductID:   productID,
			Quantity:    payload.Quantity,
			PriceReason: payload.PriceReason,
			ActorID:     actor,
		}
		input.TargetCost, input.TargetPrice, err = parsePriceOverrides(payload.TargetCost, payload.TargetPrice)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		transfer, err := svc.AddItem(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, transfer)
	}
}

type updateTransferItemRequest struct {
	Quantity    *int    `json:"quantity,omitempty" validate:"omitempty,min=1"`
	TargetCost  *string `json:"target_cost,omitempty"`
	TargetPrice *string `json:"target_price,omitempty"`
	PriceReason *string `json:"price_reason,omitempty"`
}

// TransferUpdateItem patches a line on an editable transfer.
func TransferUpdateItem(svc transfersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		transferID, err := validators.ParsePathUUID(chi.URLParam(r, "transferID"), "transferID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := validators.ParsePathUUID(chi.URLParam(r, "itemID"), "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateTransferItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := transfersvc.UpdateItemInput{
			TransferID:  transferID,
			ItemID:      itemID,
			Quantity:    payload.Quantity,
			PriceReason: payload.PriceReason,
			ActorID:     actor,
		}
		input.TargetCost, input.TargetPrice, err = parsePriceOverrides(payload.TargetCost, payload.TargetPrice)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		transfer, err := svc.UpdateItem(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, transfer)
	}
}

// TransferRemoveItem drops a line from an editable transfer.
func TransferRemoveItem(svc transfersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		transferID, err := validators.ParsePathUUID(chi.URLParam(r, "transferID"), "transferID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := validators.ParsePathUUID(chi.URLParam(r, "itemID"), "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		transfer, err := svc.RemoveItem(r.Context(), transfersvc.RemoveItemInput{
			TransferID: transferID,
			ItemID:     itemID,
			ActorID:    actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, transfer)
	}
}

type receiptLineRequest struct {
	ItemID      string `json:"item_id" validate:"required,uuid"`
	ReceivedQty int    `json:"received_quantity" validate:"min=0"`
}

type transitionRequest struct {
	Target   string               `json:"target" validate:"required"`
	Notes    *string              `json:"notes,omitempty"`
	Receipts []receiptLineRequest `json:"receipts,omitempty" validate:"omitempty,dive"`
}

// TransferTransition moves a transfer along its lifecycle.
func TransferTransition(svc transfersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transfer service unavailable"))
			return
		}

		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		transferID, err := validators.ParsePathUUID(chi.URLParam(r, "transferID"), "transferID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload transitionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target, err := enums.ParseTransferStatus(strings.TrimSpace(payload.Target))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid target status"))
			return
		}

		receipts := make([]transfersvc.ReceiptLine, 0, len(payload.Receipts))
		for _, line := range payload.Receipts {
			itemID, parseErr := uuid.Parse(line.ItemID)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid receipt item id"))
				return
			}
			receipts = append(receipts, transfersvc.ReceiptLine{
				ItemID:      itemID,
				ReceivedQty: line.ReceivedQty,
			})
		}

		transfer, err := svc.Transition(r.Context(), transfersvc.TransitionInput{
			TransferID: transferID,
			Target:     target,
			Notes:      payload.Notes,
			Receipts:   receipts,
			ActorID:    actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, transfer)
	}
}

func parsePriceOverrides(cost, price *string) (*decimal.Decimal, *decimal.Decimal, error) {
	var costOut, priceOut *decimal.Decimal
	if cost != nil {
		parsed, err := decimal.NewFromString(*cost)
		if err != nil {
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid target cost")
		}
		costOut = &parsed
	}
	if price != nil {
		parsed, err := decimal.NewFromString(*price)
		if err != nil {
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid target price")
		}
		priceOut = &parsed
	}
	return costOut, priceOut, nil
}
