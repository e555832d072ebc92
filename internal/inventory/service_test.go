package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

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

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:inventory_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.InventoryRecord{}, &models.LedgerEntry{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	recorder := ledger.NewRecorder(ledger.NewRepository(db))
	svc, err := NewService(NewRepository(db), recorder, testTxRunner{db: db}, nil)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func TestCreateRecordWritesInitialEntry(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	actor := uuid.New()

	record, err := svc.CreateRecord(ctx, CreateRecordInput{
		ProductID:   uuid.New(),
		LocationID:  uuid.New(),
		Quantity:    40,
		CostPrice:   decimal.NewFromFloat(4.50),
		RetailPrice: decimal.NewFromFloat(9.99),
		ActorID:     actor,
	})
	if err != nil {
		t.Fatalf("create record: %v", err)
	}
	if record.Status != enums.InventoryStatusAvailable {
		t.Fatalf("expected available status, got %s", record.Status)
	}

	var entries []models.LedgerEntry
	if err := db.Where("record_id = ?", record.ID).Find(&entries).Error; err != nil {
		t.Fatalf("load entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Type != enums.LedgerEntryTypeInitial {
		t.Fatalf("expected initial entry, got %s", entry.Type)
	}
	if entry.PreviousQty != 0 || entry.NewQty != 40 || entry.Quantity != 40 {
		t.Fatalf("unexpected entry quantities: %+v", entry)
	}
	if entry.ActorID != actor {
		t.Fatalf("actor not stamped on entry")
	}
}

func TestCreateRecordRejectsDuplicatePair(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	productID := uuid.New()
	locationID := uuid.New()

	input := CreateRecordInput{
		ProductID:   productID,
		LocationID:  locationID,
		Quantity:    5,
		CostPrice:   decimal.NewFromInt(1),
		RetailPrice: decimal.NewFromInt(2),
		ActorID:     uuid.New(),
	}
	if _, err := svc.CreateRecord(ctx, input); err != nil {
		t.Fatalf("create record: %v", err)
	}

	_, err := svc.CreateRecord(ctx, input)
	if !pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestApplyAdjustmentAddRemoveSet(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	actor := uuid.New()
	productID := uuid.New()
	locationID := uuid.New()

	if _, err := svc.CreateRecord(ctx, CreateRecordInput{
		ProductID:   productID,
		LocationID:  locationID,
		Quantity:    10,
		CostPrice:   decimal.NewFromInt(3),
		RetailPrice: decimal.NewFromInt(6),
		ActorID:     actor,
	}); err != nil {
		t.Fatalf("seed record: %v", err)
	}

	result, err := svc.ApplyAdjustment(ctx, AdjustmentInput{
		ProductID:  productID,
		LocationID: locationID,
		Mode:       enums.AdjustmentModeAdd,
		Quantity:   15,
		Reason:     enums.AdjustmentReasonReceiving,
		ActorID:    actor,
	})
	if err != nil {
		t.Fatalf("add adjustment: %v", err)
	}
	if result.Record.Quantity != 25 {
		t.Fatalf("expected quantity 25 after add, got %d", result.Record.Quantity)
	}
	if result.Entry.Type != enums.LedgerEntryTypeAdd || result.Entry.PreviousQty != 10 || result.Entry.NewQty != 25 {
		t.Fatalf("unexpected add entry: %+v", result.Entry)
	}

	result, err = svc.ApplyAdjustment(ctx, AdjustmentInput{
		ProductID:  productID,
		LocationID: locationID,
		Mode:       enums.AdjustmentModeRemove,
		Quantity:   5,
		Reason:     enums.AdjustmentReasonDamage,
		ActorID:    actor,
	})
	if err != nil {
		t.Fatalf("remove adjustment: %v", err)
	}
	if result.Record.Quantity != 20 {
		t.Fatalf("expected quantity 20 after remove, got %d", result.Record.Quantity)
	}
	if result.Entry.SignedDelta() != -5 {
		t.Fatalf("expected signed delta -5, got %d", result.Entry.SignedDelta())
	}

	result, err = svc.ApplyAdjustment(ctx, AdjustmentInput{
		ProductID:  productID,
		LocationID: locationID,
		Mode:       enums.AdjustmentModeSet,
		Quantity:   0,
		Reason:     enums.AdjustmentReasonCorrection,
		ActorID:    actor,
	})
	if err != nil {
		t.Fatalf("set adjustment: %v", err)
	}
	if result.Record.Quantity != 0 {
		t.Fatalf("expected quantity 0 after set, got %d", result.Record.Quantity)
	}
	if result.Record.Status != enums.InventoryStatusOutOfStock {
		t.Fatalf("expected out_of_stock status, got %s", result.Record.Status)
	}
	if result.Entry.Quantity != 20 {
		t.Fatalf("set entry magnitude should be 20, got %d", result.Entry.Quantity)
	}
}

func TestApplyAdjustmentInsufficientStock(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	actor := uuid.New()
	productID := uuid.New()
	locationID := uuid.New()

	if _, err := svc.CreateRecord(ctx, CreateRecordInput{
		ProductID:   productID,
		LocationID:  locationID,
		Quantity:    5,
		CostPrice:   decimal.NewFromInt(1),
		RetailPrice: decimal.NewFromInt(2),
		ActorID:     actor,
	}); err != nil {
		t.Fatalf("seed record: %v", err)
	}

	_, err := svc.ApplyAdjustment(ctx, AdjustmentInput{
		ProductID:  productID,
		LocationID: locationID,
		Mode:       enums.AdjustmentModeRemove,
		Quantity:   6,
		Reason:     enums.AdjustmentReasonDamage,
		ActorID:    actor,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	// Nothing was written.
	var count int64
	if err := db.Model(&models.LedgerEntry{}).Where("type <> ?", enums.LedgerEntryTypeInitial).Count(&count).Error; err != nil {
		t.Fatalf("count entries: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no adjustment entries, got %d", count)
	}
}

func TestReservedStockIsProtected(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	actor := uuid.New()
	productID := uuid.New()
	locationID := uuid.New()

	if _, err := svc.CreateRecord(ctx, CreateRecordInput{
		ProductID:   productID,
		LocationID:  locationID,
		Quantity:    10,
		CostPrice:   decimal.NewFromInt(1),
		RetailPrice: decimal.NewFromInt(2),
		ActorID:     actor,
	}); err != nil {
		t.Fatalf("seed record: %v", err)
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Reserve(ctx, tx, productID, locationID, 7)
	}); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	// Only 3 units remain promisable.
	_, err := svc.ApplyAdjustment(ctx, AdjustmentInput{
		ProductID:  productID,
		LocationID: locationID,
		Mode:       enums.AdjustmentModeRemove,
		Quantity:   4,
		Reason:     enums.AdjustmentReasonDamage,
		ActorID:    actor,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected insufficient stock for reserved units, got %v", err)
	}

	_, err = svc.ApplyAdjustment(ctx, AdjustmentInput{
		ProductID:  productID,
		LocationID: locationID,
		Mode:       enums.AdjustmentModeSet,
		Quantity:   5,
		Reason:     enums.AdjustmentReasonCorrection,
		ActorID:    actor,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected set below reserved to fail, got %v", err)
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Release(ctx, tx, productID, locationID, 7)
	}); err != nil {
		t.Fatalf("release: %v", err)
	}

	if _, err := svc.ApplyAdjustment(ctx, AdjustmentInput{
		ProductID:  productID,
		LocationID: locationID,
		Mode:       enums.AdjustmentModeRemove,
		Quantity:   4,
		Reason:     enums.AdjustmentReasonDamage,
		ActorID:    actor,
	}); err != nil {
		t.Fatalf("remove after release: %v", err)
	}
}

func TestReserveBeyondAvailableFails(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	productID := uuid.New()
	locationID := uuid.New()

	if _, err := svc.CreateRecord(ctx, CreateRecordInput{
		ProductID:   productID,
		LocationID:  locationID,
		Quantity:    3,
		CostPrice:   decimal.NewFromInt(1),
		RetailPrice: decimal.NewFromInt(2),
		ActorID:     uuid.New(),
	}); err != nil {
		t.Fatalf("seed record: %v", err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Reserve(ctx, tx, productID, locationID, 4)
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
}

func TestRemoveOnMissingRecordFails(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	_, err := svc.ApplyAdjustment(ctx, AdjustmentInput{
		ProductID:  uuid.New(),
		LocationID: uuid.New(),
		Mode:       enums.AdjustmentModeRemove,
		Quantity:   1,
		Reason:     enums.AdjustmentReasonDamage,
		ActorID:    uuid.New(),
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestFirstAddCreatesRecordWithInitialEntry(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	cost := decimal.NewFromFloat(2.25)
	retail := decimal.NewFromFloat(5.00)

	result, err := svc.ApplyAdjustment(ctx, AdjustmentInput{
		ProductID:   uuid.New(),
		LocationID:  uuid.New(),
		Mode:        enums.AdjustmentModeAdd,
		Quantity:    12,
		Reason:      enums.AdjustmentReasonReceiving,
		ActorID:     uuid.New(),
		CostPrice:   &cost,
		RetailPrice: &retail,
	})
	if err != nil {
		t.Fatalf("first add: %v", err)
	}
	if result.Record.Quantity != 12 {
		t.Fatalf("expected quantity 12, got %d", result.Record.Quantity)
	}
	if result.Entry.Type != enums.LedgerEntryTypeInitial {
		t.Fatalf("opening entry should be initial, got %s", result.Entry.Type)
	}
	if !result.Record.CostPrice.Equal(cost) || !result.Record.RetailPrice.Equal(retail) {
		t.Fatalf("prices not applied: %+v", result.Record)
	}
}

func TestExpiredRecordStatus(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	actor := uuid.New()
	productID := uuid.New()
	locationID := uuid.New()
	past := time.Now().Add(-24 * time.Hour)

	record, err := svc.CreateRecord(ctx, CreateRecordInput{
		ProductID:   productID,
		LocationID:  locationID,
		Quantity:    8,
		CostPrice:   decimal.NewFromInt(1),
		RetailPrice: decimal.NewFromInt(2),
		ExpiryDate:  &past,
		ActorID:     actor,
	})
	if err != nil {
		t.Fatalf("create record: %v", err)
	}
	if record.Status != enums.InventoryStatusExpired {
		t.Fatalf("expected expired status, got %s", record.Status)
	}

	// Zero quantity wins over expiry.
	result, err := svc.ApplyAdjustment(ctx, AdjustmentInput{
		ProductID:  productID,
		LocationID: locationID,
		Mode:       enums.AdjustmentModeSet,
		Quantity:   0,
		Reason:     enums.AdjustmentReasonExpiry,
		ActorID:    actor,
	})
	if err != nil {
		t.Fatalf("set adjustment: %v", err)
	}
	if result.Record.Status != enums.InventoryStatusOutOfStock {
		t.Fatalf("expected out_of_stock, got %s", result.Record.Status)
	}
}

func TestVersionConflictSurfacesAsConcurrentModification(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	actor := uuid.New()
	productID := uuid.New()
	locationID := uuid.New()

	record, err := svc.CreateRecord(ctx, CreateRecordInput{
		ProductID:   productID,
		LocationID:  locationID,
		Quantity:    10,
		CostPrice:   decimal.NewFromInt(1),
		RetailPrice: decimal.NewFromInt(2),
		ActorID:     actor,
	})
	if err != nil {
		t.Fatalf("create record: %v", err)
	}

	// Simulate a writer that slipped in between load and update.
	repo := NewRepository(db)
	stale := *record
	if err := db.Model(&models.InventoryRecord{}).
		Where("id = ?", record.ID).
		Update("version", record.Version+1).Error; err != nil {
		t.Fatalf("bump version: %v", err)
	}

	err = repo.UpdateGuarded(ctx, &stale)
	if err != ErrVersionConflict {
		t.Fatalf("expected version conflict, got %v", err)
	}
}
