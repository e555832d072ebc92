package ledger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tomasvidal/stockpilot-backend/pkg/db/models"
	"github.com/tomasvidal/stockpilot-backend/pkg/enums"
	pkgerrors "github.com/tomasvidal/stockpilot-backend/pkg/errors"
	"github.com/tomasvidal/stockpilot-backend/pkg/pagination"
)

type recordRepo struct {
	db *gorm.DB
}

func (r recordRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryRecord, error) {
	var record models.InventoryRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:ledger_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.InventoryRecord{}, &models.LedgerEntry{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedRecord(t *testing.T, db *gorm.DB, quantity int) *models.InventoryRecord {
	t.Helper()
	record := &models.InventoryRecord{
		ID:          uuid.New(),
		ProductID:   uuid.New(),
		LocationID:  uuid.New(),
		Quantity:    quantity,
		CostPrice:   decimal.NewFromInt(2),
		RetailPrice: decimal.NewFromInt(5),
		Status:      enums.InventoryStatusAvailable,
	}
	if err := db.Create(record).Error; err != nil {
		t.Fatalf("seed record: %v", err)
	}
	return record
}

func appendEntry(t *testing.T, db *gorm.DB, record *models.InventoryRecord, entryType enums.LedgerEntryType, prev, next int) *models.LedgerEntry {
	t.Helper()
	magnitude := next - prev
	if magnitude < 0 {
		magnitude = -magnitude
	}
	entry := &models.LedgerEntry{
		ID:          uuid.New(),
		RecordID:    record.ID,
		ProductID:   record.ProductID,
		LocationID:  record.LocationID,
		Type:        entryType,
		Quantity:    magnitude,
		PreviousQty: prev,
		NewQty:      next,
		Reason:      enums.AdjustmentReasonCorrection,
		ActorID:     uuid.New(),
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("seed entry: %v", err)
	}
	return entry
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db), recordRepo{db: db})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func TestReplayConsistentHistory(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	record := seedRecord(t, db, 35)
	appendEntry(t, db, record, enums.LedgerEntryTypeInitial, 0, 50)
	appendEntry(t, db, record, enums.LedgerEntryTypeRemove, 50, 40)
	appendEntry(t, db, record, enums.LedgerEntryTypeSet, 40, 35)

	result, err := svc.Replay(ctx, record.ID)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if result.EntryCount != 3 {
		t.Fatalf("expected 3 entries, got %d", result.EntryCount)
	}
	if result.ComputedQty != 35 {
		t.Fatalf("expected computed quantity 35, got %d", result.ComputedQty)
	}
	if !result.Consistent {
		t.Fatalf("expected consistent replay: %+v", result)
	}
	if len(result.ChainBreaks) != 0 {
		t.Fatalf("expected no chain breaks, got %v", result.ChainBreaks)
	}
}

func TestReplayDetectsDrift(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	record := seedRecord(t, db, 35)
	appendEntry(t, db, record, enums.LedgerEntryTypeInitial, 0, 50)
	appendEntry(t, db, record, enums.LedgerEntryTypeRemove, 50, 40)

	// Quantity mutated without a ledger entry.
	result, err := svc.Replay(ctx, record.ID)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if result.Consistent {
		t.Fatal("expected inconsistent replay when record drifted from ledger")
	}
	if result.ComputedQty != 40 || result.RecordQty != 35 {
		t.Fatalf("unexpected replay quantities: %+v", result)
	}
}

func TestReplayFlagsChainBreak(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	record := seedRecord(t, db, 30)
	appendEntry(t, db, record, enums.LedgerEntryTypeInitial, 0, 50)
	// Entry claims to start from 45 but the chain is at 50.
	broken := appendEntry(t, db, record, enums.LedgerEntryTypeRemove, 45, 30)

	result, err := svc.Replay(ctx, record.ID)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if len(result.ChainBreaks) != 1 || result.ChainBreaks[0] != broken.ID {
		t.Fatalf("expected chain break on %s, got %v", broken.ID, result.ChainBreaks)
	}
	if result.Consistent {
		t.Fatal("chain break must mark replay inconsistent")
	}
}

func TestReplayMissingRecord(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)

	_, err := svc.Replay(context.Background(), uuid.New())
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListByRecordPaginates(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	record := seedRecord(t, db, 0)
	prev := 0
	for i := 1; i <= 4; i++ {
		appendEntry(t, db, record, enums.LedgerEntryTypeAdd, prev, prev+i)
		prev += i
	}

	page, err := svc.List(ctx, record.ID, pagination.Params{Limit: 3})
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(page.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(page.Entries))
	}
	if page.NextCursor == "" {
		t.Fatal("expected next cursor for remaining entries")
	}

	rest, err := svc.List(ctx, record.ID, pagination.Params{Limit: 3, Cursor: page.NextCursor})
	if err != nil {
		t.Fatalf("list second page: %v", err)
	}
	if len(rest.Entries) != 1 {
		t.Fatalf("expected 1 entry on second page, got %d", len(rest.Entries))
	}
	if rest.NextCursor != "" {
		t.Fatalf("expected empty cursor on final page, got %s", rest.NextCursor)
	}
}
