package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tomasvidal/stockpilot-backend/pkg/db/models"
	"github.com/tomasvidal/stockpilot-backend/pkg/enums"
	"github.com/tomasvidal/stockpilot-backend/pkg/pagination"
)

// ErrVersionConflict is returned when a guarded update matched no rows
// because the record version moved underneath the caller.
var ErrVersionConflict = errors.New("inventory record version conflict")

// ListFilter narrows inventory listings.
type ListFilter struct {
	LocationID *uuid.UUID
	ProductID  *uuid.UUID
	Status     *enums.InventoryStatus
	Pagination pagination.Params
}

// ListResult is one page of inventory records plus the cursor for the next.
type ListResult struct {
	Records    []models.InventoryRecord
	NextCursor string
}

// LowStockRow joins a record with the catalog threshold that flagged it.
type LowStockRow struct {
	RecordID          uuid.UUID             `json:"record_id"`
	ProductID         uuid.UUID             `json:"product_id"`
	LocationID        uuid.UUID             `json:"location_id"`
	SKU               string                `json:"sku"`
	ProductName       string                `json:"product_name"`
	Quantity          int                   `json:"quantity"`
	ReservedQty       int                   `json:"reserved_quantity"`
	LowStockThreshold int                   `json:"low_stock_threshold"`
	Status            enums.InventoryStatus `json:"status"`
}

// Repository manages persistence for inventory records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, record *models.InventoryRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryRecord, error)
	FindByProductLocation(ctx context.Context, productID, locationID uuid.UUID) (*models.InventoryRecord, error)
	UpdateGuarded(ctx context.Context, record *models.InventoryRecord) error
	List(ctx context.Context, filter ListFilter) (*ListResult, error)
	ListAllByLocation(ctx context.Context, locationID uuid.UUID) ([]models.InventoryRecord, error)
	ListLowStock(ctx context.Context, locationID *uuid.UUID) ([]LowStockRow, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an inventory repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, record *models.InventoryRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryRecord, error) {
	var record models.InventoryRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) FindByProductLocation(ctx context.Context, productID, locationID uuid.UUID) (*models.InventoryRecord, error) {
	var record models.InventoryRecord
	err := r.db.WithContext(ctx).
		First(&record, "product_id = ? AND location_id = ?", productID, locationID).
		Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// UpdateGuarded writes quantity-bearing fields with a version guard. The
// in-memory record's version is bumped on success so follow-up updates in
// the same transaction keep working.
func (r *repository) UpdateGuarded(ctx context.Context, record *models.InventoryRecord) error {
	res := r.db.WithContext(ctx).
		Model(&models.InventoryRecord{}).
		Where("id = ? AND version = ?", record.ID, record.Version).
		Updates(map[string]any{
			"quantity":     record.Quantity,
			"reserved_qty": record.ReservedQty,
			"cost_price":   record.CostPrice,
			"retail_price": record.RetailPrice,
			"status":       record.Status,
			"expiry_date":  record.ExpiryDate,
			"version":      record.Version + 1,
			"updated_at":   time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	record.Version++
	return nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	pageSize := pagination.NormalizeLimit(filter.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(filter.Pagination.Limit)

	cursor, err := pagination.ParseCursor(filter.Pagination.Cursor)
	if err != nil {
		return nil, err
	}

	qb := r.db.WithContext(ctx).Model(&models.InventoryRecord{})
	if filter.LocationID != nil {
		qb = qb.Where("location_id = ?", *filter.LocationID)
	}
	if filter.ProductID != nil {
		qb = qb.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Status != nil {
		qb = qb.Where("status = ?", *filter.Status)
	}
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var records []models.InventoryRecord
	if err := qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&records).Error; err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(records) > pageSize {
		records = records[:pageSize]
		last := records[len(records)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	return &ListResult{Records: records, NextCursor: nextCursor}, nil
}

// ListAllByLocation returns every record at a location without paging.
// Audit snapshots need the full set in one transaction.
func (r *repository) ListAllByLocation(ctx context.Context, locationID uuid.UUID) ([]models.InventoryRecord, error) {
	var records []models.InventoryRecord
	err := r.db.WithContext(ctx).
		Where("location_id = ?", locationID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&records).
		Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) ListLowStock(ctx context.Context, locationID *uuid.UUID) ([]LowStockRow, error) {
	qb := r.db.WithContext(ctx).
		Table("inventory_records ir").
		Select("ir.id AS record_id, ir.product_id, ir.location_id, p.sku, p.name AS product_name, " +
			"ir.quantity, ir.reserved_qty, p.low_stock_threshold, ir.status").
		Joins("JOIN products p ON p.id = ir.product_id").
		Where("p.low_stock_threshold > 0 AND ir.quantity <= p.low_stock_threshold")
	if locationID != nil {
		qb = qb.Where("ir.location_id = ?", *locationID)
	}

	var rows []LowStockRow
	if err := qb.Order("ir.quantity ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
