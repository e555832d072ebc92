package transfers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tomasvidal/stockpilot-backend/internal/inventory"
	"github.com/tomasvidal/stockpilot-backend/internal/ledger"
	"github.com/tomasvidal/stockpilot-backend/pkg/db/models"
	"github.com/tomasvidal/stockpilot-backend/pkg/enums"
	pkgerrors "github.com/tomasvidal/stockpilot-backend/pkg/errors"
)

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(tx)
	})
}

type locationRepo struct {
	db *gorm.DB
}

func (r locationRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	var location models.Location
	if err := r.db.WithContext(ctx).First(&location, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &location, nil
}

type fixture struct {
	db        *gorm.DB
	transfers Service
	inventory inventory.Service
	warehouse *models.Location
	store     *models.Location
	actor     uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := "file:transfers_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Location{},
		&models.InventoryRecord{},
		&models.LedgerEntry{},
		&models.Transfer{},
		&models.TransferItem{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	warehouse := &models.Location{ID: uuid.New(), Code: "WH-1", Name: "Central", Kind: enums.LocationKindWarehouse, IsActive: true}
	store := &models.Location{ID: uuid.New(), Code: "ST-1", Name: "Downtown", Kind: enums.LocationKindStore, IsActive: true}
	for _, loc := range []*models.Location{warehouse, store} {
		if err := db.Create(loc).Error; err != nil {
			t.Fatalf("seed location: %v", err)
		}
	}

	runner := testTxRunner{db: db}
	recorder := ledger.NewRecorder(ledger.NewRepository(db))
	invSvc, err := inventory.NewService(inventory.NewRepository(db), recorder, runner, nil)
	if err != nil {
		t.Fatalf("build inventory service: %v", err)
	}
	svc, err := NewService(NewRepository(db), invSvc, locationRepo{db: db}, runner, nil)
	if err != nil {
		t.Fatalf("build transfer service: %v", err)
	}

	return &fixture{
		db:        db,
		transfers: svc,
		inventory: invSvc,
		warehouse: warehouse,
		store:     store,
		actor:     uuid.New(),
	}
}

func (f *fixture) seedStock(t *testing.T, productID uuid.UUID, qty int) {
	t.Helper()
	if _, err := f.inventory.CreateRecord(context.Background(), inventory.CreateRecordInput{
		ProductID:   productID,
		LocationID:  f.warehouse.ID,
		Quantity:    qty,
		CostPrice:   decimal.NewFromInt(4),
		RetailPrice: decimal.NewFromInt(10),
		ActorID:     f.actor,
	}); err != nil {
		t.Fatalf("seed stock: %v", err)
	}
}

func (f *fixture) warehouseQty(t *testing.T, productID uuid.UUID) (int, int) {
	t.Helper()
	record, err := f.inventory.GetByProductLocation(context.Background(), productID, f.warehouse.ID)
	if err != nil {
		t.Fatalf("load warehouse record: %v", err)
	}
	return record.Quantity, record.ReservedQty
}

func (f *fixture) draftWithItem(t *testing.T, productID uuid.UUID, qty int) *models.Transfer {
	t.Helper()
	ctx := context.Background()
	transfer, err := f.transfers.Create(ctx, CreateInput{
		SourceID: f.warehouse.ID,
		DestID:   f.store.ID,
		Type:     enums.TransferTypeRestock,
		ActorID:  f.actor,
	})
	if err != nil {
		t.Fatalf("create transfer: %v", err)
	}
	transfer, err = f.transfers.AddItem(ctx, AddItemInput{
		TransferID: transfer.ID,
		ProductID:  productID,
		Quantity:   qty,
		ActorID:    f.actor,
	})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	return transfer
}

func (f *fixture) transition(t *testing.T, id uuid.UUID, target enums.TransferStatus) *models.Transfer {
	t.Helper()
	transfer, err := f.transfers.Transition(context.Background(), TransitionInput{
		TransferID: id,
		Target:     target,
		ActorID:    f.actor,
	})
	if err != nil {
		t.Fatalf("transition to %s: %v", target, err)
	}
	return transfer
}

func TestCreateValidatesLocationPairing(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	_, err := f.transfers.Create(ctx, CreateInput{
		SourceID: f.store.ID,
		DestID:   f.warehouse.ID,
		Type:     enums.TransferTypeRelocation,
		ActorID:  f.actor,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for store source, got %v", err)
	}

	_, err = f.transfers.Create(ctx, CreateInput{
		SourceID: f.warehouse.ID,
		DestID:   f.warehouse.ID,
		Type:     enums.TransferTypeRelocation,
		ActorID:  f.actor,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for same location, got %v", err)
	}

	// Relocation must target a warehouse, not a store.
	_, err = f.transfers.Create(ctx, CreateInput{
		SourceID: f.warehouse.ID,
		DestID:   f.store.ID,
		Type:     enums.TransferTypeRelocation,
		ActorID:  f.actor,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for relocation to store, got %v", err)
	}
}

func TestTransferFullLifecycle(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	productID := uuid.New()
	f.seedStock(t, productID, 50)

	transfer := f.draftWithItem(t, productID, 10)
	if transfer.TotalItems != 10 {
		t.Fatalf("expected total items 10, got %d", transfer.TotalItems)
	}
	if !transfer.TotalCost.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("expected total cost 40, got %s", transfer.TotalCost)
	}

	transfer = f.transition(t, transfer.ID, enums.TransferStatusPending)
	if qty, reserved := f.warehouseQty(t, productID); qty != 50 || reserved != 10 {
		t.Fatalf("after submit expected 50/10, got %d/%d", qty, reserved)
	}

	transfer = f.transition(t, transfer.ID, enums.TransferStatusApproved)
	transfer = f.transition(t, transfer.ID, enums.TransferStatusInTransit)
	if qty, reserved := f.warehouseQty(t, productID); qty != 40 || reserved != 0 {
		t.Fatalf("after ship expected 40/0, got %d/%d", qty, reserved)
	}

	transfer = f.transition(t, transfer.ID, enums.TransferStatusCompleted)
	if transfer.Status != enums.TransferStatusCompleted {
		t.Fatalf("expected completed, got %s", transfer.Status)
	}

	dest, err := f.inventory.GetByProductLocation(ctx, productID, f.store.ID)
	if err != nil {
		t.Fatalf("load store record: %v", err)
	}
	if dest.Quantity != 10 {
		t.Fatalf("expected 10 units at store, got %d", dest.Quantity)
	}
	if !dest.RetailPrice.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("store record should carry target retail price, got %s", dest.RetailPrice)
	}

	var entries []models.LedgerEntry
	if err := f.db.Where("reference_id = ?", transfer.ID).Find(&entries).Error; err != nil {
		t.Fatalf("load ledger entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 transfer entries, got %d", len(entries))
	}
	deltas := map[enums.LedgerEntryType]int{}
	for _, entry := range entries {
		deltas[entry.Type] = entry.SignedDelta()
	}
	if deltas[enums.LedgerEntryTypeTransferOut] != -10 {
		t.Fatalf("unexpected outbound delta %d", deltas[enums.LedgerEntryTypeTransferOut])
	}
	if deltas[enums.LedgerEntryTypeTransferIn] != 10 {
		t.Fatalf("unexpected inbound delta %d", deltas[enums.LedgerEntryTypeTransferIn])
	}
}

func TestSubmitReservesAndProtectsStock(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	productID := uuid.New()
	f.seedStock(t, productID, 50)

	transfer := f.draftWithItem(t, productID, 10)
	f.transition(t, transfer.ID, enums.TransferStatusPending)

	// 40 promisable units remain; removing 45 must fail.
	_, err := f.inventory.ApplyAdjustment(ctx, inventory.AdjustmentInput{
		ProductID:  productID,
		LocationID: f.warehouse.ID,
		Mode:       enums.AdjustmentModeRemove,
		Quantity:   45,
		Reason:     enums.AdjustmentReasonDamage,
		ActorID:    f.actor,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
}

func TestSubmitWithoutItemsFails(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	transfer, err := f.transfers.Create(ctx, CreateInput{
		SourceID: f.warehouse.ID,
		DestID:   f.store.ID,
		Type:     enums.TransferTypeRestock,
		ActorID:  f.actor,
	})
	if err != nil {
		t.Fatalf("create transfer: %v", err)
	}

	_, err = f.transfers.Transition(ctx, TransitionInput{
		TransferID: transfer.ID,
		Target:     enums.TransferStatusPending,
		ActorID:    f.actor,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPartialReceiptReturnsResidualToSource(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	productID := uuid.New()
	f.seedStock(t, productID, 50)

	transfer := f.draftWithItem(t, productID, 10)
	f.transition(t, transfer.ID, enums.TransferStatusPending)
	f.transition(t, transfer.ID, enums.TransferStatusApproved)
	transfer = f.transition(t, transfer.ID, enums.TransferStatusInTransit)

	itemID := transfer.Items[0].ID
	transfer, err := f.transfers.Transition(ctx, TransitionInput{
		TransferID: transfer.ID,
		Target:     enums.TransferStatusCompleted,
		Receipts:   []ReceiptLine{{ItemID: itemID, ReceivedQty: 7}},
		ActorID:    f.actor,
	})
	if err != nil {
		t.Fatalf("receive: %v", err)
	}

	item := transfer.Items[0]
	if item.ReceivedQty == nil || *item.ReceivedQty != 7 || item.ResidualQty != 3 {
		t.Fatalf("unexpected receipt fields: %+v", item)
	}

	dest, err := f.inventory.GetByProductLocation(ctx, productID, f.store.ID)
	if err != nil {
		t.Fatalf("load store record: %v", err)
	}
	if dest.Quantity != 7 {
		t.Fatalf("expected 7 units at store, got %d", dest.Quantity)
	}

	// 50 - 10 shipped + 3 returned.
	if qty, _ := f.warehouseQty(t, productID); qty != 43 {
		t.Fatalf("expected 43 units back at warehouse, got %d", qty)
	}

	// Conservation: shipped units all land somewhere.
	total := dest.Quantity + item.ResidualQty
	if total != 10 {
		t.Fatalf("conservation broken: received %d + residual %d != 10", dest.Quantity, item.ResidualQty)
	}
}

func TestCancelAfterShipCompensatesSource(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	productID := uuid.New()
	f.seedStock(t, productID, 50)

	transfer := f.draftWithItem(t, productID, 10)
	f.transition(t, transfer.ID, enums.TransferStatusPending)
	f.transition(t, transfer.ID, enums.TransferStatusApproved)
	f.transition(t, transfer.ID, enums.TransferStatusInTransit)

	if qty, _ := f.warehouseQty(t, productID); qty != 40 {
		t.Fatalf("expected 40 after ship, got %d", qty)
	}

	transfer = f.transition(t, transfer.ID, enums.TransferStatusCancelled)
	if transfer.Status != enums.TransferStatusCancelled {
		t.Fatalf("expected cancelled, got %s", transfer.Status)
	}
	if qty, reserved := f.warehouseQty(t, productID); qty != 50 || reserved != 0 {
		t.Fatalf("expected stock restored to 50/0, got %d/%d", qty, reserved)
	}
}

func TestCancelPendingReleasesReservations(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	productID := uuid.New()
	f.seedStock(t, productID, 50)

	transfer := f.draftWithItem(t, productID, 10)
	f.transition(t, transfer.ID, enums.TransferStatusPending)
	f.transition(t, transfer.ID, enums.TransferStatusCancelled)

	if qty, reserved := f.warehouseQty(t, productID); qty != 50 || reserved != 0 {
		t.Fatalf("expected 50/0 after cancel, got %d/%d", qty, reserved)
	}
}

func TestTerminalStatusRejectsTransitions(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	productID := uuid.New()
	f.seedStock(t, productID, 50)

	transfer := f.draftWithItem(t, productID, 10)
	f.transition(t, transfer.ID, enums.TransferStatusPending)
	f.transition(t, transfer.ID, enums.TransferStatusApproved)
	f.transition(t, transfer.ID, enums.TransferStatusInTransit)
	f.transition(t, transfer.ID, enums.TransferStatusCompleted)

	_, err := f.transfers.Transition(ctx, TransitionInput{
		TransferID: transfer.ID,
		Target:     enums.TransferStatusCancelled,
		ActorID:    f.actor,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestSkippingApprovalIsRejected(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	productID := uuid.New()
	f.seedStock(t, productID, 50)

	transfer := f.draftWithItem(t, productID, 10)
	f.transition(t, transfer.ID, enums.TransferStatusPending)

	_, err := f.transfers.Transition(ctx, TransitionInput{
		TransferID: transfer.ID,
		Target:     enums.TransferStatusInTransit,
		ActorID:    f.actor,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeInvalidTransition) {
		t.Fatalf("expected invalid transition for pending to in_transit, got %v", err)
	}
}

func TestItemsLockedAfterApproval(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	productID := uuid.New()
	f.seedStock(t, productID, 50)

	transfer := f.draftWithItem(t, productID, 10)
	f.transition(t, transfer.ID, enums.TransferStatusPending)
	f.transition(t, transfer.ID, enums.TransferStatusApproved)

	_, err := f.transfers.AddItem(ctx, AddItemInput{
		TransferID: transfer.ID,
		ProductID:  uuid.New(),
		Quantity:   1,
		ActorID:    f.actor,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeTransferLocked) {
		t.Fatalf("expected transfer locked, got %v", err)
	}
}

func TestPendingItemEditsKeepReservationsInStep(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	productID := uuid.New()
	f.seedStock(t, productID, 50)

	transfer := f.draftWithItem(t, productID, 10)
	f.transition(t, transfer.ID, enums.TransferStatusPending)

	newQty := 25
	transfer, err := f.transfers.UpdateItem(ctx, UpdateItemInput{
		TransferID: transfer.ID,
		ItemID:     transfer.Items[0].ID,
		Quantity:   &newQty,
		ActorID:    f.actor,
	})
	if err != nil {
		t.Fatalf("update item: %v", err)
	}
	if qty, reserved := f.warehouseQty(t, productID); qty != 50 || reserved != 25 {
		t.Fatalf("expected 50/25 after quantity edit, got %d/%d", qty, reserved)
	}

	transfer, err = f.transfers.RemoveItem(ctx, RemoveItemInput{
		TransferID: transfer.ID,
		ItemID:     transfer.Items[0].ID,
		ActorID:    f.actor,
	})
	if err != nil {
		t.Fatalf("remove item: %v", err)
	}
	if qty, reserved := f.warehouseQty(t, productID); qty != 50 || reserved != 0 {
		t.Fatalf("expected 50/0 after item removal, got %d/%d", qty, reserved)
	}
	if transfer.TotalItems != 0 {
		t.Fatalf("expected empty totals, got %d", transfer.TotalItems)
	}
}

func TestInsufficientStockOnSubmitRollsBack(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	productA := uuid.New()
	productB := uuid.New()
	f.seedStock(t, productA, 50)
	f.seedStock(t, productB, 2)

	transfer := f.draftWithItem(t, productA, 10)
	// Second line exceeds what product B has on hand.
	if err := f.db.Create(&models.TransferItem{
		ID:                uuid.New(),
		TransferID:        transfer.ID,
		ProductID:         productB,
		Quantity:          5,
		SourceCostPrice:   decimal.NewFromInt(4),
		SourceRetailPrice: decimal.NewFromInt(10),
		TargetCostPrice:   decimal.NewFromInt(4),
		TargetRetailPrice: decimal.NewFromInt(10),
	}).Error; err != nil {
		t.Fatalf("seed oversized item: %v", err)
	}

	_, err := f.transfers.Transition(ctx, TransitionInput{
		TransferID: transfer.ID,
		Target:     enums.TransferStatusPending,
		ActorID:    f.actor,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	// The partial reservation on product A must have rolled back.
	if qty, reserved := f.warehouseQty(t, productA); qty != 50 || reserved != 0 {
		t.Fatalf("expected rollback to 50/0, got %d/%d", qty, reserved)
	}
}
