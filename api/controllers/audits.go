package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tomasvidal/stockpilot-backend/api/responses"
	"github.com/tomasvidal/stockpilot-backend/api/validators"
	auditsvc "github.com/tomasvidal/stockpilot-backend/internal/audits"
	"github.com/tomasvidal/stockpilot-backend/pkg/enums"
	pkgerrors "github.com/tomasvidal/stockpilot-backend/pkg/errors"
	"github.com/tomasvidal/stockpilot-backend/pkg/logger"
)

type auditAssignmentRequest struct {
	UserID string   `json:"user_id" validate:"required,uuid"`
	Zones  []string `json:"zones" validate:"required,min=1"`
}

type createAuditRequest struct {
	WarehouseID string                   `json:"warehouse_id" validate:"required,uuid"`
	Notes       *string                  `json:"notes,omitempty"`
	Assignments []auditAssignmentRequest `json:"assignments,omitempty" validate:"omitempty,dive"`
}

// AuditCreate plans an audit and snapshots the warehouse's expected counts.
func AuditCreate(svc auditsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "audit service unavailable"))
			return
		}

		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createAuditRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		warehouseID, _ := uuid.Parse(payload.WarehouseID)

		assignments := make([]auditsvc.AssignmentInput, 0, len(payload.Assignments))
		for _, a := range payload.Assignments {
			userID, parseErr := uuid.Parse(a.UserID)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid assignment user id"))
				return
			}
			assignments = append(assignments, auditsvc.AssignmentInput{
				UserID: userID,
				Zones:  a.Zones,
			})
		}

		audit, err := svc.Create(r.Context(), auditsvc.CreateInput{
			WarehouseID: warehouseID,
			Notes:       payload.Notes,
			Assignments: assignments,
			ActorID:     actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, audit)
	}
}

// AuditList returns paginated audits, optionally filtered.
func AuditList(svc auditsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		warehouseID, err := validators.ParseQueryUUID(r, "warehouse_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := auditsvc.ListFilter{
			WarehouseID: warehouseID,
			Pagination:  params,
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseAuditStatus(raw)
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
			"audits":      result.Audits,
			"next_cursor": result.NextCursor,
		})
	}
}

// AuditDetail returns one audit with its items and assignments.
func AuditDetail(svc auditsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auditID, err := validators.ParsePathUUID(chi.URLParam(r, "auditID"), "auditID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		audit, err := svc.Get(r.Context(), auditID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, audit)
	}
}

// AuditStart refreshes the snapshot and opens counting.
func AuditStart(svc auditsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		auditID, err := validators.ParsePathUUID(chi.URLParam(r, "auditID"), "auditID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		audit, err := svc.Start(r.Context(), auditID, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, audit)
	}
}

type recordCountRequest struct {
	ItemID     string `json:"item_id" validate:"required,uuid"`
	CountedQty int    `json:"counted_quantity" validate:"min=0"`
}

// AuditRecordCount stores a physical count for one audit item.
func AuditRecordCount(svc auditsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		auditID, err := validators.ParsePathUUID(chi.URLParam(r, "auditID"), "auditID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload recordCountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, _ := uuid.Parse(payload.ItemID)

		item, err := svc.RecordCount(r.Context(), auditsvc.CountInput{
			AuditID:    auditID,
			ItemID:     itemID,
			CountedQty: payload.CountedQty,
			ActorID:    actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, item)
	}
}

type completeAuditRequest struct {
	Notes *string `json:"notes,omitempty"`
}

// AuditComplete reconciles every item and closes the audit.
func AuditComplete(svc auditsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "audit service unavailable"))
			return
		}

		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		auditID, err := validators.ParsePathUUID(chi.URLParam(r, "auditID"), "auditID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload completeAuditRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		audit, err := svc.Complete(r.Context(), auditsvc.CompleteInput{
			AuditID: auditID,
			Notes:   payload.Notes,
			ActorID: actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, audit)
	}
}

// AuditCancel abandons a planned or in-progress audit.
func AuditCancel(svc auditsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		auditID, err := validators.ParsePathUUID(chi.URLParam(r, "auditID"), "auditID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		audit, err := svc.Cancel(r.Context(), auditID, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, audit)
	}
}
