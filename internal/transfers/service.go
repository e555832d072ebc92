package transfers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
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

// inventoryOps is the slice of the inventory service transfers depend on.
type inventoryOps interface {
	ApplyAdjustmentTx(ctx context.Context, tx *gorm.DB, input inventory.AdjustmentInput) (*inventory.AdjustmentResult, error)
	Reserve(ctx context.Context, tx *gorm.DB, productID, locationID uuid.UUID, qty int) error
	Release(ctx context.Context, tx *gorm.DB, productID, locationID uuid.UUID, qty int) error
	GetByProductLocation(ctx context.Context, productID, locationID uuid.UUID) (*models.InventoryRecord, error)
}

// Service drives transfers through their approval and movement pipeline.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Transfer, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Transfer, error)
	List(ctx context.Context, filter ListFilter) (*ListResult, error)
	AddItem(ctx context.Context, input AddItemInput) (*models.Transfer, error)
	UpdateItem(ctx context.Context, input UpdateItemInput) (*models.Transfer, error)
	RemoveItem(ctx context.Context, input RemoveItemInput) (*models.Transfer, error)
	Transition(ctx context.Context, input TransitionInput) (*models.Transfer, error)
}

// CreateInput opens a draft transfer between two locations.
type CreateInput struct {
	SourceID uuid.UUID
	DestID   uuid.UUID
	Type     enums.TransferType
	Notes    *string
	ActorID  uuid.UUID
}

// AddItemInput appends a product line to an editable transfer.
type AddItemInput struct {
	TransferID  uuid.UUID
	ProductID   uuid.UUID
	Quantity    int
	TargetCost  *decimal.Decimal
	TargetPrice *decimal.Decimal
	PriceReason *string
	ActorID     uuid.UUID
}

// UpdateItemInput edits quantity or target prices on an editable transfer.
type UpdateItemInput struct {
	TransferID  uuid.UUID
	ItemID      uuid.UUID
	Quantity    *int
	TargetCost  *decimal.Decimal
	TargetPrice *decimal.Decimal
	PriceReason *string
	ActorID     uuid.UUID
}

// RemoveItemInput drops a line from an editable transfer.
type RemoveItemInput struct {
	TransferID uuid.UUID
	ItemID     uuid.UUID
	ActorID    uuid.UUID
}

// ReceiptLine overrides the received quantity for one item on completion.
type ReceiptLine struct {
	ItemID      uuid.UUID
	ReceivedQty int
}

// TransitionInput moves a transfer to the target status.
type TransitionInput struct {
	TransferID uuid.UUID
	Target     enums.TransferStatus
	Notes      *string
	Receipts   []ReceiptLine
	ActorID    uuid.UUID
}

// allowedTransitions is the normative lifecycle table. Anything absent is an
// invalid transition, including every move out of a terminal status.
var allowedTransitions = map[enums.TransferStatus][]enums.TransferStatus{
	enums.TransferStatusDraft:     {enums.TransferStatusPending, enums.TransferStatusCancelled},
	enums.TransferStatusPending:   {enums.TransferStatusApproved, enums.TransferStatusRejected, enums.TransferStatusCancelled},
	enums.TransferStatusApproved:  {enums.TransferStatusInTransit, enums.TransferStatusCancelled},
	enums.TransferStatusInTransit: {enums.TransferStatusCompleted, enums.TransferStatusCancelled},
}

func transitionAllowed(from, to enums.TransferStatus) bool {
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

type service struct {
	repo      Repository
	inventory inventoryOps
	locations locationSource
	tx        txRunner
	metrics   *metrics.EngineMetrics
	now       func() time.Time
}

// NewService builds a transfer service with the required dependencies.
func NewService(repo Repository, inv inventoryOps, locations locationSource, tx txRunner, engineMetrics *metrics.EngineMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("transfer repository required")
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

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Transfer, error) {
	if input.SourceID == uuid.Nil || input.DestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "source and destination location ids required")
	}
	if input.SourceID == input.DestID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "source and destination must differ")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transfer type must be relocation or restock")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}

	source, err := s.loadLocation(ctx, input.SourceID)
	if err != nil {
		return nil, err
	}
	dest, err := s.loadLocation(ctx, input.DestID)
	if err != nil {
		return nil, err
	}
	if source.Kind != enums.LocationKindWarehouse {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transfers must originate from a warehouse")
	}
	if dest.Kind != input.Type.DestinationKind() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("%s transfers must target a %s", input.Type, input.Type.DestinationKind()))
	}
	if !source.IsActive || !dest.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "both locations must be active")
	}

	transfer := &models.Transfer{
		ID:          uuid.New(),
		ReferenceNo: s.newReferenceNo(),
		SourceID:    input.SourceID,
		DestID:      input.DestID,
		Type:        input.Type,
		Status:      enums.TransferStatusDraft,
		TotalCost:   decimal.Zero,
		TotalRetail: decimal.Zero,
		Notes:       input.Notes,
		RequestedBy: input.ActorID,
	}
	if err := s.repo.Create(ctx, transfer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create transfer")
	}
	return transfer, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Transfer, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transfer id required")
	}
	transfer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transfer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transfer")
	}
	return transfer, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	result, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transfers")
	}
	return result, nil
}

func (s *service) AddItem(ctx context.Context, input AddItemInput) (*models.Transfer, error) {
	if input.TransferID == uuid.Nil || input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transfer id and product id required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}

	var updated *models.Transfer
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		transfer, err := s.loadEditable(ctx, repo, input.TransferID)
		if err != nil {
			return err
		}
		for _, item := range transfer.Items {
			if item.ProductID == input.ProductID {
				return pkgerrors.New(pkgerrors.CodeConflict, "product already on transfer")
			}
		}

		record, err := s.inventory.GetByProductLocation(ctx, input.ProductID, transfer.SourceID)
		if err != nil {
			if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product has no stock record at source")
			}
			return err
		}
		if input.Quantity > record.AvailableToPromise() {
			s.metrics.IncStockRejection("transfer_item")
			return pkgerrors.New(pkgerrors.CodeInsufficientStock,
				fmt.Sprintf("only %d units available at source", record.AvailableToPromise()))
		}
		// A submitted transfer already holds reservations; keep them in step.
		if transfer.Status == enums.TransferStatusPending {
			if err := s.inventory.Reserve(ctx, tx, input.ProductID, transfer.SourceID, input.Quantity); err != nil {
				return err
			}
		}

		item := &models.TransferItem{
			ID:                uuid.New(),
			TransferID:        transfer.ID,
			ProductID:         input.ProductID,
			Quantity:          input.Quantity,
			SourceCostPrice:   record.CostPrice,
			SourceRetailPrice: record.RetailPrice,
			TargetCostPrice:   record.CostPrice,
			TargetRetailPrice: record.RetailPrice,
			PriceReason:       input.PriceReason,
		}
		if input.TargetCost != nil {
			item.TargetCostPrice = *input.TargetCost
		}
		if input.TargetPrice != nil {
			item.TargetRetailPrice = *input.TargetPrice
		}
		if err := repo.CreateItem(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create transfer item")
		}

		transfer.Items = append(transfer.Items, *item)
		if err := s.writeTotals(ctx, repo, transfer); err != nil {
			return err
		}
		updated = transfer
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) UpdateItem(ctx context.Context, input UpdateItemInput) (*models.Transfer, error) {
	if input.TransferID == uuid.Nil || input.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transfer id and item id required")
	}
	if input.Quantity != nil && *input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}

	var updated *models.Transfer
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		transfer, err := s.loadEditable(ctx, repo, input.TransferID)
		if err != nil {
			return err
		}

		item, err := s.findItem(transfer, input.ItemID)
		if err != nil {
			return err
		}

		updates := map[string]any{}
		if input.Quantity != nil && *input.Quantity != item.Quantity {
			if transfer.Status == enums.TransferStatusPending {
				// Swap the reservation for the new quantity.
				if err := s.inventory.Release(ctx, tx, item.ProductID, transfer.SourceID, item.Quantity); err != nil {
					return err
				}
				if err := s.inventory.Reserve(ctx, tx, item.ProductID, transfer.SourceID, *input.Quantity); err != nil {
					return err
				}
			} else {
				record, err := s.inventory.GetByProductLocation(ctx, item.ProductID, transfer.SourceID)
				if err != nil {
					return err
				}
				if *input.Quantity > record.AvailableToPromise() {
					s.metrics.IncStockRejection("transfer_item")
					return pkgerrors.New(pkgerrors.CodeInsufficientStock,
						fmt.Sprintf("only %d units available at source", record.AvailableToPromise()))
				}
			}
			updates["quantity"] = *input.Quantity
			item.Quantity = *input.Quantity
		}
		if input.TargetCost != nil {
			updates["target_cost_price"] = *input.TargetCost
			item.TargetCostPrice = *input.TargetCost
		}
		if input.TargetPrice != nil {
			updates["target_retail_price"] = *input.TargetPrice
			item.TargetRetailPrice = *input.TargetPrice
		}
		if input.PriceReason != nil {
			updates["price_reason"] = *input.PriceReason
			item.PriceReason = input.PriceReason
		}
		if len(updates) == 0 {
			updated = transfer
			return nil
		}

		if err := repo.UpdateItem(ctx, item.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update transfer item")
		}
		if err := s.writeTotals(ctx, repo, transfer); err != nil {
			return err
		}
		updated = transfer
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) RemoveItem(ctx context.Context, input RemoveItemInput) (*models.Transfer, error) {
	if input.TransferID == uuid.Nil || input.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transfer id and item id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}

	var updated *models.Transfer
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		transfer, err := s.loadEditable(ctx, repo, input.TransferID)
		if err != nil {
			return err
		}
		item, err := s.findItem(transfer, input.ItemID)
		if err != nil {
			return err
		}
		if transfer.Status == enums.TransferStatusPending {
			if err := s.inventory.Release(ctx, tx, item.ProductID, transfer.SourceID, item.Quantity); err != nil {
				return err
			}
		}

		if err := repo.DeleteItem(ctx, input.ItemID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete transfer item")
		}

		remaining := transfer.Items[:0]
		for _, item := range transfer.Items {
			if item.ID != input.ItemID {
				remaining = append(remaining, item)
			}
		}
		transfer.Items = remaining
		if err := s.writeTotals(ctx, repo, transfer); err != nil {
			return err
		}
		updated = transfer
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Transition(ctx context.Context, input TransitionInput) (*models.Transfer, error) {
	if input.TransferID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transfer id required")
	}
	if !input.Target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid target status")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}

	var result *models.Transfer
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		transfer, err := repo.FindByID(ctx, input.TransferID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "transfer not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transfer")
		}

		if transfer.Status == input.Target {
			result = transfer
			return nil
		}
		if !transitionAllowed(transfer.Status, input.Target) {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition,
				fmt.Sprintf("cannot move transfer from %s to %s", transfer.Status, input.Target))
		}

		from := transfer.Status
		now := s.now().UTC()
		updates := map[string]any{"status": input.Target, "updated_at": now}

		switch input.Target {
		case enums.TransferStatusPending:
			if len(transfer.Items) == 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "cannot submit a transfer with no items")
			}
			for _, item := range transfer.Items {
				if err := s.inventory.Reserve(ctx, tx, item.ProductID, transfer.SourceID, item.Quantity); err != nil {
					return err
				}
			}
			updates["submitted_at"] = now

		case enums.TransferStatusApproved:
			updates["approved_by"] = input.ActorID
			updates["approved_at"] = now

		case enums.TransferStatusRejected:
			if err := s.releaseAll(ctx, tx, transfer); err != nil {
				return err
			}
			updates["rejected_by"] = input.ActorID
			updates["rejected_at"] = now

		case enums.TransferStatusInTransit:
			if err := s.shipAll(ctx, tx, transfer, input.ActorID); err != nil {
				return err
			}
			updates["shipped_at"] = now

		case enums.TransferStatusCompleted:
			if err := s.receiveAll(ctx, tx, repo, transfer, input.Receipts, input.ActorID); err != nil {
				return err
			}
			updates["completed_by"] = input.ActorID
			updates["completed_at"] = now

		case enums.TransferStatusCancelled:
			if err := s.cancelCompensation(ctx, tx, transfer, from, input.ActorID); err != nil {
				return err
			}
			updates["cancelled_by"] = input.ActorID
			updates["cancelled_at"] = now
		}

		if input.Notes != nil {
			updates["notes"] = *input.Notes
		}
		if err := repo.Update(ctx, transfer.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update transfer status")
		}

		s.metrics.IncTransferTransition(from.String(), input.Target.String())

		reloaded, err := repo.FindByID(ctx, transfer.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload transfer")
		}
		result = reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// shipAll removes every item from the source record, releasing the
// reservation placed at submit as part of the same transaction.
func (s *service) shipAll(ctx context.Context, tx *gorm.DB, transfer *models.Transfer, actorID uuid.UUID) error {
	entryType := enums.LedgerEntryTypeTransferOut
	for _, item := range transfer.Items {
		if err := s.inventory.Release(ctx, tx, item.ProductID, transfer.SourceID, item.Quantity); err != nil {
			return err
		}
		_, err := s.inventory.ApplyAdjustmentTx(ctx, tx, inventory.AdjustmentInput{
			ProductID:   item.ProductID,
			LocationID:  transfer.SourceID,
			Mode:        enums.AdjustmentModeRemove,
			Quantity:    item.Quantity,
			Reason:      enums.AdjustmentReasonTransfer,
			ActorID:     actorID,
			ReferenceID: &transfer.ID,
			EntryType:   &entryType,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// receiveAll adds stock at the destination at target prices. Shortfall goes
// back to the source in the same transaction so every shipped unit is
// accounted for.
func (s *service) receiveAll(ctx context.Context, tx *gorm.DB, repo Repository, transfer *models.Transfer, receipts []ReceiptLine, actorID uuid.UUID) error {
	received := map[uuid.UUID]int{}
	for _, line := range receipts {
		received[line.ItemID] = line.ReceivedQty
	}

	inType := enums.LedgerEntryTypeTransferIn
	for i := range transfer.Items {
		item := &transfer.Items[i]

		qty, ok := received[item.ID]
		if !ok {
			qty = item.Quantity
		}
		if qty < 0 || qty > item.Quantity {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("received quantity for item %s must be between 0 and %d", item.ID, item.Quantity))
		}
		residual := item.Quantity - qty

		if qty > 0 {
			_, err := s.inventory.ApplyAdjustmentTx(ctx, tx, inventory.AdjustmentInput{
				ProductID:   item.ProductID,
				LocationID:  transfer.DestID,
				Mode:        enums.AdjustmentModeAdd,
				Quantity:    qty,
				Reason:      enums.AdjustmentReasonTransfer,
				ActorID:     actorID,
				ReferenceID: &transfer.ID,
				EntryType:   &inType,
				CostPrice:   &item.TargetCostPrice,
				RetailPrice: &item.TargetRetailPrice,
			})
			if err != nil {
				return err
			}
		}

		if residual > 0 {
			_, err := s.inventory.ApplyAdjustmentTx(ctx, tx, inventory.AdjustmentInput{
				ProductID:   item.ProductID,
				LocationID:  transfer.SourceID,
				Mode:        enums.AdjustmentModeAdd,
				Quantity:    residual,
				Reason:      enums.AdjustmentReasonShortfall,
				ActorID:     actorID,
				ReferenceID: &transfer.ID,
				EntryType:   &inType,
			})
			if err != nil {
				return err
			}
		}

		if err := repo.UpdateItem(ctx, item.ID, map[string]any{
			"received_qty": qty,
			"residual_qty": residual,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record item receipt")
		}
	}
	return nil
}

// cancelCompensation undoes whatever side effects the current status has
// accumulated: reservations before ship, the source decrement after.
func (s *service) cancelCompensation(ctx context.Context, tx *gorm.DB, transfer *models.Transfer, from enums.TransferStatus, actorID uuid.UUID) error {
	switch from {
	case enums.TransferStatusDraft:
		return nil
	case enums.TransferStatusPending, enums.TransferStatusApproved:
		return s.releaseAll(ctx, tx, transfer)
	case enums.TransferStatusInTransit:
		inType := enums.LedgerEntryTypeTransferIn
		for _, item := range transfer.Items {
			_, err := s.inventory.ApplyAdjustmentTx(ctx, tx, inventory.AdjustmentInput{
				ProductID:   item.ProductID,
				LocationID:  transfer.SourceID,
				Mode:        enums.AdjustmentModeAdd,
				Quantity:    item.Quantity,
				Reason:      enums.AdjustmentReasonCancelation,
				ActorID:     actorID,
				ReferenceID: &transfer.ID,
				EntryType:   &inType,
			})
			if err != nil {
				return err
			}
		}
		return nil
	}
	return nil
}

func (s *service) releaseAll(ctx context.Context, tx *gorm.DB, transfer *models.Transfer) error {
	for _, item := range transfer.Items {
		if err := s.inventory.Release(ctx, tx, item.ProductID, transfer.SourceID, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) loadEditable(ctx context.Context, repo Repository, transferID uuid.UUID) (*models.Transfer, error) {
	transfer, err := repo.FindByID(ctx, transferID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transfer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transfer")
	}
	if !transfer.Status.Editable() {
		return nil, pkgerrors.New(pkgerrors.CodeTransferLocked,
			fmt.Sprintf("items cannot change while transfer is %s", transfer.Status))
	}
	return transfer, nil
}

func (s *service) findItem(transfer *models.Transfer, itemID uuid.UUID) (*models.TransferItem, error) {
	for i := range transfer.Items {
		if transfer.Items[i].ID == itemID {
			return &transfer.Items[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transfer item not found")
}

// writeTotals recomputes denormalized totals from the in-memory items.
func (s *service) writeTotals(ctx context.Context, repo Repository, transfer *models.Transfer) error {
	totalItems := 0
	totalCost := decimal.Zero
	totalRetail := decimal.Zero
	for _, item := range transfer.Items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		totalItems += item.Quantity
		totalCost = totalCost.Add(item.SourceCostPrice.Mul(qty))
		totalRetail = totalRetail.Add(item.SourceRetailPrice.Mul(qty))
	}

	transfer.TotalItems = totalItems
	transfer.TotalCost = totalCost
	transfer.TotalRetail = totalRetail
	if err := repo.Update(ctx, transfer.ID, map[string]any{
		"total_items":  totalItems,
		"total_cost":   totalCost,
		"total_retail": totalRetail,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update transfer totals")
	}
	return nil
}

func (s *service) loadLocation(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	location, err := s.locations.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "location not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load location")
	}
	return location, nil
}

func (s *service) newReferenceNo() string {
	stamp := s.now().UTC().Format("20060102")
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("TRF-%s-%s", stamp, suffix)
}
