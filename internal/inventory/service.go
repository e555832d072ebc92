package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tomasvidal/stockpilot-backend/pkg/db/models"
	"github.com/tomasvidal/stockpilot-backend/pkg/enums"
	pkgerrors "github.com/tomasvidal/stockpilot-backend/pkg/errors"
	"github.com/tomasvidal/stockpilot-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// LedgerRecorder appends an immutable entry inside the caller's transaction.
type LedgerRecorder interface {
	Record(ctx context.Context, tx *gorm.DB, entry *models.LedgerEntry) error
}

// Service exposes inventory record operations. Every quantity mutation goes
// through an adjustment so the record update and its ledger entry commit in
// one transaction.
type Service interface {
	CreateRecord(ctx context.Context, input CreateRecordInput) (*models.InventoryRecord, error)
	ApplyAdjustment(ctx context.Context, input AdjustmentInput) (*AdjustmentResult, error)
	ApplyAdjustmentTx(ctx context.Context, tx *gorm.DB, input AdjustmentInput) (*AdjustmentResult, error)
	Reserve(ctx context.Context, tx *gorm.DB, productID, locationID uuid.UUID, qty int) error
	Release(ctx context.Context, tx *gorm.DB, productID, locationID uuid.UUID, qty int) error
	Get(ctx context.Context, id uuid.UUID) (*models.InventoryRecord, error)
	GetByProductLocation(ctx context.Context, productID, locationID uuid.UUID) (*models.InventoryRecord, error)
	List(ctx context.Context, filter ListFilter) (*ListResult, error)
	ListByLocationTx(ctx context.Context, tx *gorm.DB, locationID uuid.UUID) ([]models.InventoryRecord, error)
	ListLowStock(ctx context.Context, locationID *uuid.UUID) ([]LowStockRow, error)
}

// CreateRecordInput seeds a new product/location pair with opening stock.
type CreateRecordInput struct {
	ProductID   uuid.UUID
	LocationID  uuid.UUID
	Quantity    int
	CostPrice   decimal.Decimal
	RetailPrice decimal.Decimal
	ExpiryDate  *time.Time
	ActorID     uuid.UUID
	Notes       *string
}

// AdjustmentInput mutates an existing record's quantity.
type AdjustmentInput struct {
	ProductID  uuid.UUID
	LocationID uuid.UUID
	Mode       enums.AdjustmentMode
	Quantity   int
	Reason     enums.AdjustmentReason
	Notes      *string
	ActorID    uuid.UUID

	// ReferenceID and EntryType are set by transfer and audit flows so their
	// ledger entries carry provenance instead of the plain mode mapping.
	ReferenceID *uuid.UUID
	EntryType   *enums.LedgerEntryType

	// Optional price overrides applied together with the quantity change.
	CostPrice   *decimal.Decimal
	RetailPrice *decimal.Decimal
}

// AdjustmentResult pairs the updated record with the entry that recorded it.
type AdjustmentResult struct {
	Record *models.InventoryRecord `json:"record"`
	Entry  *models.LedgerEntry     `json:"entry"`
}

type service struct {
	repo    Repository
	ledger  LedgerRecorder
	tx      txRunner
	metrics *metrics.EngineMetrics
	now     func() time.Time
}

// NewService builds an inventory service with the required dependencies.
func NewService(repo Repository, ledger LedgerRecorder, tx txRunner, engineMetrics *metrics.EngineMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("ledger recorder required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:    repo,
		ledger:  ledger,
		tx:      tx,
		metrics: engineMetrics,
		now:     time.Now,
	}, nil
}

func (s *service) CreateRecord(ctx context.Context, input CreateRecordInput) (*models.InventoryRecord, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.LocationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "opening quantity cannot be negative")
	}
	if input.CostPrice.IsNegative() || input.RetailPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "prices cannot be negative")
	}

	now := s.now().UTC()
	record := &models.InventoryRecord{
		ID:          uuid.New(),
		ProductID:   input.ProductID,
		LocationID:  input.LocationID,
		Quantity:    input.Quantity,
		ReservedQty: 0,
		CostPrice:   input.CostPrice,
		RetailPrice: input.RetailPrice,
		Status:      models.DeriveStatus(input.Quantity, input.ExpiryDate, now),
		ExpiryDate:  input.ExpiryDate,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if existing, err := repo.FindByProductLocation(ctx, input.ProductID, input.LocationID); err == nil && existing != nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "inventory record already exists for product and location")
		} else if err != nil && err != gorm.ErrRecordNotFound {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing record")
		}

		if err := repo.Create(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create inventory record")
		}

		entry := &models.LedgerEntry{
			ID:          uuid.New(),
			RecordID:    record.ID,
			ProductID:   record.ProductID,
			LocationID:  record.LocationID,
			Type:        enums.LedgerEntryTypeInitial,
			Quantity:    input.Quantity,
			PreviousQty: 0,
			NewQty:      input.Quantity,
			Reason:      enums.AdjustmentReasonReceiving,
			Notes:       input.Notes,
			ActorID:     input.ActorID,
		}
		if err := s.ledger.Record(ctx, tx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write initial ledger entry")
		}
		s.metrics.IncLedgerEntry(entry.Type.String())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *service) ApplyAdjustment(ctx context.Context, input AdjustmentInput) (*AdjustmentResult, error) {
	var result *AdjustmentResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r, err := s.ApplyAdjustmentTx(ctx, tx, input)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ApplyAdjustmentTx is the single mutation primitive. Transfer and audit
// flows call it inside their own transactions so a record update is never
// visible without its ledger entry.
func (s *service) ApplyAdjustmentTx(ctx context.Context, tx *gorm.DB, input AdjustmentInput) (*AdjustmentResult, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for adjustment")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.LocationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}
	if !input.Mode.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "adjustment mode must be add, remove or set")
	}
	if !input.Reason.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid adjustment reason")
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if input.Quantity == 0 && input.Mode != enums.AdjustmentModeSet {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive for add and remove")
	}
	if input.EntryType != nil && !input.EntryType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid ledger entry type")
	}

	started := s.now()
	repo := s.repo.WithTx(tx)

	record, err := repo.FindByProductLocation(ctx, input.ProductID, input.LocationID)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory record")
		}
		// First add or set creates the record; there is nothing to remove from.
		if input.Mode == enums.AdjustmentModeRemove {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory record not found")
		}
		return s.createFromAdjustment(ctx, tx, input, started)
	}

	previous := record.Quantity
	newQty, err := s.resolveNewQuantity(record, input)
	if err != nil {
		return nil, err
	}

	record.Quantity = newQty
	if input.CostPrice != nil {
		record.CostPrice = *input.CostPrice
	}
	if input.RetailPrice != nil {
		record.RetailPrice = *input.RetailPrice
	}
	record.Status = models.DeriveStatus(record.Quantity, record.ExpiryDate, s.now().UTC())

	if err := repo.UpdateGuarded(ctx, record); err != nil {
		if err == ErrVersionConflict {
			return nil, pkgerrors.New(pkgerrors.CodeConcurrentModification, "inventory record changed concurrently")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update inventory record")
	}

	magnitude := newQty - previous
	if magnitude < 0 {
		magnitude = -magnitude
	}

	entry := &models.LedgerEntry{
		ID:          uuid.New(),
		RecordID:    record.ID,
		ProductID:   record.ProductID,
		LocationID:  record.LocationID,
		Type:        s.resolveEntryType(input),
		Quantity:    magnitude,
		PreviousQty: previous,
		NewQty:      newQty,
		Reason:      input.Reason,
		Notes:       input.Notes,
		ActorID:     input.ActorID,
		ReferenceID: input.ReferenceID,
	}
	if err := s.ledger.Record(ctx, tx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write ledger entry")
	}

	s.metrics.IncLedgerEntry(entry.Type.String())
	s.metrics.ObserveAdjustment(input.Mode.String(), s.now().Sub(started))

	return &AdjustmentResult{Record: record, Entry: entry}, nil
}

// createFromAdjustment seeds a record the first time stock arrives at a
// product/location pair. The opening entry is typed initial regardless of
// mode, unless the caller forced a type (transfer receive does).
func (s *service) createFromAdjustment(ctx context.Context, tx *gorm.DB, input AdjustmentInput, started time.Time) (*AdjustmentResult, error) {
	repo := s.repo.WithTx(tx)
	now := s.now().UTC()

	record := &models.InventoryRecord{
		ID:         uuid.New(),
		ProductID:  input.ProductID,
		LocationID: input.LocationID,
		Quantity:   input.Quantity,
		Status:     models.DeriveStatus(input.Quantity, nil, now),
	}
	if input.CostPrice != nil {
		record.CostPrice = *input.CostPrice
	}
	if input.RetailPrice != nil {
		record.RetailPrice = *input.RetailPrice
	}

	if err := repo.Create(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create inventory record")
	}

	entryType := enums.LedgerEntryTypeInitial
	if input.EntryType != nil {
		entryType = *input.EntryType
	}
	entry := &models.LedgerEntry{
		ID:          uuid.New(),
		RecordID:    record.ID,
		ProductID:   record.ProductID,
		LocationID:  record.LocationID,
		Type:        entryType,
		Quantity:    input.Quantity,
		PreviousQty: 0,
		NewQty:      input.Quantity,
		Reason:      input.Reason,
		Notes:       input.Notes,
		ActorID:     input.ActorID,
		ReferenceID: input.ReferenceID,
	}
	if err := s.ledger.Record(ctx, tx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write ledger entry")
	}

	s.metrics.IncLedgerEntry(entry.Type.String())
	s.metrics.ObserveAdjustment(input.Mode.String(), s.now().Sub(started))

	return &AdjustmentResult{Record: record, Entry: entry}, nil
}

// resolveNewQuantity applies the mode and enforces that stock already
// committed to transfers cannot be removed or set away.
func (s *service) resolveNewQuantity(record *models.InventoryRecord, input AdjustmentInput) (int, error) {
	switch input.Mode {
	case enums.AdjustmentModeAdd:
		return record.Quantity + input.Quantity, nil

	case enums.AdjustmentModeRemove:
		if input.Quantity > record.AvailableToPromise() {
			s.metrics.IncStockRejection("adjustment")
			return 0, pkgerrors.New(pkgerrors.CodeInsufficientStock,
				fmt.Sprintf("cannot remove %d, only %d available", input.Quantity, record.AvailableToPromise()))
		}
		return record.Quantity - input.Quantity, nil

	case enums.AdjustmentModeSet:
		if input.Quantity < record.ReservedQty {
			s.metrics.IncStockRejection("adjustment")
			return 0, pkgerrors.New(pkgerrors.CodeInsufficientStock,
				fmt.Sprintf("cannot set quantity below %d reserved units", record.ReservedQty))
		}
		return input.Quantity, nil

	default:
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "adjustment mode must be add, remove or set")
	}
}

func (s *service) resolveEntryType(input AdjustmentInput) enums.LedgerEntryType {
	if input.EntryType != nil {
		return *input.EntryType
	}
	switch input.Mode {
	case enums.AdjustmentModeAdd:
		return enums.LedgerEntryTypeAdd
	case enums.AdjustmentModeRemove:
		return enums.LedgerEntryTypeRemove
	default:
		return enums.LedgerEntryTypeSet
	}
}

// Reserve commits available stock to a pending transfer. Reservations do not
// change on-hand quantity, so no ledger entry is written.
func (s *service) Reserve(ctx context.Context, tx *gorm.DB, productID, locationID uuid.UUID, qty int) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for reservation")
	}
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "reservation quantity must be positive")
	}

	repo := s.repo.WithTx(tx)
	record, err := repo.FindByProductLocation(ctx, productID, locationID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "inventory record not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory record")
	}
	if qty > record.AvailableToPromise() {
		s.metrics.IncStockRejection("reservation")
		return pkgerrors.New(pkgerrors.CodeInsufficientStock,
			fmt.Sprintf("cannot reserve %d, only %d available", qty, record.AvailableToPromise()))
	}

	record.ReservedQty += qty
	if err := repo.UpdateGuarded(ctx, record); err != nil {
		if err == ErrVersionConflict {
			return pkgerrors.New(pkgerrors.CodeConcurrentModification, "inventory record changed concurrently")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve inventory")
	}
	return nil
}

// Release returns previously reserved units without touching on-hand stock.
func (s *service) Release(ctx context.Context, tx *gorm.DB, productID, locationID uuid.UUID, qty int) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for release")
	}
	if qty <= 0 {
		return nil
	}

	repo := s.repo.WithTx(tx)
	record, err := repo.FindByProductLocation(ctx, productID, locationID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "inventory record not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory record")
	}

	record.ReservedQty -= qty
	if record.ReservedQty < 0 {
		record.ReservedQty = 0
	}
	if err := repo.UpdateGuarded(ctx, record); err != nil {
		if err == ErrVersionConflict {
			return pkgerrors.New(pkgerrors.CodeConcurrentModification, "inventory record changed concurrently")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release inventory")
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.InventoryRecord, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "record id required")
	}
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory record not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory record")
	}
	return record, nil
}

func (s *service) GetByProductLocation(ctx context.Context, productID, locationID uuid.UUID) (*models.InventoryRecord, error) {
	if productID == uuid.Nil || locationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id and location id required")
	}
	record, err := s.repo.FindByProductLocation(ctx, productID, locationID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory record not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory record")
	}
	return record, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	result, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inventory records")
	}
	return result, nil
}

// ListByLocationTx reads every record at a location inside the caller's
// transaction, so audit snapshots see a consistent set.
func (s *service) ListByLocationTx(ctx context.Context, tx *gorm.DB, locationID uuid.UUID) ([]models.InventoryRecord, error) {
	if locationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location id required")
	}
	records, err := s.repo.WithTx(tx).ListAllByLocation(ctx, locationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inventory records")
	}
	return records, nil
}

func (s *service) ListLowStock(ctx context.Context, locationID *uuid.UUID) ([]LowStockRow, error) {
	rows, err := s.repo.ListLowStock(ctx, locationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list low stock records")
	}
	return rows, nil
}
