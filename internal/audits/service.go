package audits

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/tomasvidal/stockpilot-backend/internal/inventory"
	"github.com/tomasvidal/stockpilot-backend/pkg/db/models"
	"github.com/tomasvidal/stockpilot-backend/pkg/enums"
	pkgerrors "github.com/tomasvidal/stockpilot-backend/pkg/errors"
	"github.com/tomasvidal/stockpilot-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type locationSource interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Location, error)
}

// inventoryOps is the slice of the inventory service audits depend on.
type inventoryOps interface {
	ApplyAdjustmentTx(ctx context.Context, tx *gorm.DB, input inventory.AdjustmentInput) (*inventory.AdjustmentResult, error)
	ListByLocationTx(ctx context.Context, tx *gorm.DB, locationID uuid.UUID) ([]models.InventoryRecord, error)
}

// Service runs physical stock counts and folds discrepancies back into
// inventory on completion.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Audit, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Audit, error)
	List(ctx context.Context, filter ListFilter) (*ListResult, error)
	Start(ctx context.Context, auditID, actorID uuid.UUID) (*models.Audit, error)
	RecordCount(ctx context.Context, input CountInput) (*models.AuditItem, error)
	Complete(ctx context.Context, input CompleteInput) (*models.Audit, error)
	Cancel(ctx context.Context, auditID, actorID uuid.UUID) (*models.Audit, error)
}

// AssignmentInput maps one counter to the zones they will cover.
type AssignmentInput struct {
	UserID uuid.UUID
	Zones  []string
}

// CreateInput plans an audit for one warehouse.
type CreateInput struct {
	WarehouseID uuid.UUID
	Notes       *string
	Assignments []AssignmentInput
	ActorID     uuid.UUID
}

// CountInput records a physical count for one audit item.
type CountInput struct {
	AuditID    uuid.UUID
	ItemID     uuid.UUID
	CountedQty int
	ActorID    uuid.UUID
}

// CompleteInput closes an audit and reconciles every item.
type CompleteInput struct {
	AuditID uuid.UUID
	Notes   *string
	ActorID uuid.UUID
}

type service struct {
	repo      Repository
	inventory inventoryOps
	locations locationSource
	tx        txRunner
	metrics   *metrics.EngineMetrics
	now       func() time.Time
}

// NewService builds an audit service with the required dependencies.
func NewService(repo Repository, inv inventoryOps, locations locationSource, tx txRunner, engineMetrics *metrics.EngineMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	if inv == nil {
		return nil, fmt.Errorf("inventory operations required")
	}
	if locations == nil {
		return nil, fmt.Errorf("location source required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:      repo,
		inventory: inv,
		locations: locations,
		tx:        tx,
		metrics:   engineMetrics,
		now:       time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Audit, error) {
	if input.WarehouseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "warehouse id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}
	for _, assignment := range input.Assignments {
		if assignment.UserID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignment user id required")
		}
	}

	warehouse, err := s.locations.FindByID(ctx, input.WarehouseID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "warehouse not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load warehouse")
	}
	if warehouse.Kind != enums.LocationKindWarehouse {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "audits can only target warehouses")
	}
	if !warehouse.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "warehouse must be active")
	}

	audit := &models.Audit{
		ID:          uuid.New(),
		ReferenceNo: s.newReferenceNo(),
		WarehouseID: input.WarehouseID,
		Status:      enums.AuditStatusPlanned,
		Notes:       input.Notes,
		CreatedBy:   input.ActorID,
	}

	var result *models.Audit
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, audit); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create audit")
		}

		if err := s.snapshotItems(ctx, tx, repo, audit); err != nil {
			return err
		}

		assignments := make([]models.AuditAssignment, 0, len(input.Assignments))
		for _, assignment := range input.Assignments {
			assignments = append(assignments, models.AuditAssignment{
				ID:      uuid.New(),
				AuditID: audit.ID,
				UserID:  assignment.UserID,
				Zones:   pq.StringArray(assignment.Zones),
			})
		}
		if err := repo.CreateAssignments(ctx, assignments); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create audit assignments")
		}

		reloaded, err := repo.FindByID(ctx, audit.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload audit")
		}
		result = reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Audit, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "audit id required")
	}
	audit, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "audit not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load audit")
	}
	return audit, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	result, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list audits")
	}
	return result, nil
}

// Start moves a planned audit to in progress and refreshes every expected
// quantity, so counters compare against stock as of the walk, not planning.
func (s *service) Start(ctx context.Context, auditID, actorID uuid.UUID) (*models.Audit, error) {
	if auditID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "audit id required")
	}
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}

	var result *models.Audit
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		audit, err := s.load(ctx, repo, auditID)
		if err != nil {
			return err
		}
		if audit.Status != enums.AuditStatusPlanned {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition,
				fmt.Sprintf("cannot start an audit that is %s", audit.Status))
		}

		if err := repo.DeleteItemsByAudit(ctx, audit.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear planned snapshot")
		}
		if err := s.snapshotItems(ctx, tx, repo, audit); err != nil {
			return err
		}

		now := s.now().UTC()
		if err := repo.Update(ctx, audit.ID, map[string]any{
			"status":     enums.AuditStatusInProgress,
			"started_at": now,
			"updated_at": now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "start audit")
		}

		reloaded, err := repo.FindByID(ctx, audit.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload audit")
		}
		result = reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) RecordCount(ctx context.Context, input CountInput) (*models.AuditItem, error) {
	if input.AuditID == uuid.Nil || input.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "audit id and item id required")
	}
	if input.CountedQty < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "counted quantity cannot be negative")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}

	var result *models.AuditItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		audit, err := s.load(ctx, repo, input.AuditID)
		if err != nil {
			return err
		}
		if audit.Status != enums.AuditStatusInProgress {
			return pkgerrors.New(pkgerrors.CodeAuditNotInProgress,
				fmt.Sprintf("counts can only be recorded while the audit is in progress, not %s", audit.Status))
		}

		item, err := repo.FindItem(ctx, input.ItemID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "audit item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load audit item")
		}
		if item.AuditID != audit.ID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "audit item not found")
		}

		now := s.now().UTC()
		if err := repo.UpdateItem(ctx, item.ID, map[string]any{
			"counted_quantity": input.CountedQty,
			"status":           enums.AuditItemStatusCounted,
			"counted_by":       input.ActorID,
			"counted_at":       now,
			"updated_at":       now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record count")
		}

		item.CountedQty = &input.CountedQty
		item.Status = enums.AuditItemStatusCounted
		item.CountedBy = &input.ActorID
		item.CountedAt = &now
		result = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Complete reconciles every item in one transaction. Items never counted
// assume their expected quantity with no ledger entry; non-zero discrepancies
// set the record to the counted quantity through the adjustment primitive.
// Completing an already-completed audit is a no-op.
func (s *service) Complete(ctx context.Context, input CompleteInput) (*models.Audit, error) {
	if input.AuditID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "audit id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}

	var result *models.Audit
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		audit, err := s.load(ctx, repo, input.AuditID)
		if err != nil {
			return err
		}
		if audit.Status == enums.AuditStatusCompleted {
			result = audit
			return nil
		}
		if audit.Status != enums.AuditStatusInProgress {
			return pkgerrors.New(pkgerrors.CodeAuditNotInProgress,
				fmt.Sprintf("cannot complete an audit that is %s", audit.Status))
		}

		now := s.now().UTC()
		entryType := enums.LedgerEntryTypeAuditAdjustment
		for i := range audit.Items {
			item := &audit.Items[i]

			counted := item.ExpectedQty
			if item.CountedQty != nil {
				counted = *item.CountedQty
			}
			discrepancy := counted - item.ExpectedQty

			status := enums.AuditItemStatusCounted
			if discrepancy != 0 {
				status = enums.AuditItemStatusReconciled
				_, err := s.inventory.ApplyAdjustmentTx(ctx, tx, inventory.AdjustmentInput{
					ProductID:   item.ProductID,
					LocationID:  audit.WarehouseID,
					Mode:        enums.AdjustmentModeSet,
					Quantity:    counted,
					Reason:      enums.AdjustmentReasonAudit,
					ActorID:     input.ActorID,
					ReferenceID: &audit.ID,
					EntryType:   &entryType,
				})
				if err != nil {
					return err
				}
			}

			if err := repo.UpdateItem(ctx, item.ID, map[string]any{
				"counted_quantity": counted,
				"discrepancy":      discrepancy,
				"status":           status,
				"updated_at":       now,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve audit item")
			}
		}

		updates := map[string]any{
			"status":       enums.AuditStatusCompleted,
			"completed_by": input.ActorID,
			"completed_at": now,
			"updated_at":   now,
		}
		if input.Notes != nil {
			updates["notes"] = *input.Notes
		}
		if err := repo.Update(ctx, audit.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete audit")
		}

		s.metrics.IncAuditCompletion()

		reloaded, err := repo.FindByID(ctx, audit.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload audit")
		}
		result = reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Cancel(ctx context.Context, auditID, actorID uuid.UUID) (*models.Audit, error) {
	if auditID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "audit id required")
	}
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}

	var result *models.Audit
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		audit, err := s.load(ctx, repo, auditID)
		if err != nil {
			return err
		}
		if audit.Status != enums.AuditStatusPlanned && audit.Status != enums.AuditStatusInProgress {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition,
				fmt.Sprintf("cannot cancel an audit that is %s", audit.Status))
		}

		now := s.now().UTC()
		if err := repo.Update(ctx, audit.ID, map[string]any{
			"status":     enums.AuditStatusCancelled,
			"updated_at": now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel audit")
		}

		reloaded, err := repo.FindByID(ctx, audit.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload audit")
		}
		result = reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// snapshotItems copies current warehouse records into pending audit items.
func (s *service) snapshotItems(ctx context.Context, tx *gorm.DB, repo Repository, audit *models.Audit) error {
	records, err := s.inventory.ListByLocationTx(ctx, tx, audit.WarehouseID)
	if err != nil {
		return err
	}

	items := make([]models.AuditItem, 0, len(records))
	for _, record := range records {
		items = append(items, models.AuditItem{
			ID:          uuid.New(),
			AuditID:     audit.ID,
			RecordID:    record.ID,
			ProductID:   record.ProductID,
			ExpectedQty: record.Quantity,
			Status:      enums.AuditItemStatusPending,
		})
	}
	if err := repo.CreateItems(ctx, items); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "snapshot audit items")
	}
	return nil
}

func (s *service) load(ctx context.Context, repo Repository, auditID uuid.UUID) (*models.Audit, error) {
	audit, err := repo.FindByID(ctx, auditID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "audit not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load audit")
	}
	return audit, nil
}

func (s *service) newReferenceNo() string {
	stamp := s.now().UTC().Format("20060102")
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("AUD-%s-%s", stamp, suffix)
}
