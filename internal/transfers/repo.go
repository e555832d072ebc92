package transfers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tomasvidal/stockpilot-backend/pkg/db/models"
	"github.com/tomasvidal/stockpilot-backend/pkg/enums"
	"github.com/tomasvidal/stockpilot-backend/pkg/pagination"
)

// ListFilter narrows transfer listings.
type ListFilter struct {
	SourceID   *uuid.UUID
	DestID     *uuid.UUID
	Status     *enums.TransferStatus
	Type       *enums.TransferType
	Pagination pagination.Params
}

// ListResult is one page of transfers plus the cursor for the next.
type ListResult struct {
	Transfers  []models.Transfer
	NextCursor string
}

// Repository manages persistence for transfers and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, transfer *models.Transfer) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Transfer, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	List(ctx context.Context, filter ListFilter) (*ListResult, error)
	CreateItem(ctx context.Context, item *models.TransferItem) error
	FindItem(ctx context.Context, id uuid.UUID) (*models.TransferItem, error)
	UpdateItem(ctx context.Context, id uuid.UUID, updates map[string]any) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a transfer repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, transfer *models.Transfer) error {
	return r.db.WithContext(ctx).Create(transfer).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Transfer, error) {
	var transfer models.Transfer
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&transfer, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &transfer, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Transfer{}).
		Where("id = ?", id).
		Updates(updates).
		Error
}

func (r *repository) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	pageSize := pagination.NormalizeLimit(filter.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(filter.Pagination.Limit)

	cursor, err := pagination.ParseCursor(filter.Pagination.Cursor)
	if err != nil {
		return nil, err
	}

	qb := r.db.WithContext(ctx).Model(&models.Transfer{})
	if filter.SourceID != nil {
		qb = qb.Where("source_location_id = ?", *filter.SourceID)
	}
	if filter.DestID != nil {
		qb = qb.Where("destination_location_id = ?", *filter.DestID)
	}
	if filter.Status != nil {
		qb = qb.Where("status = ?", *filter.Status)
	}
	if filter.Type != nil {
		qb = qb.Where("type = ?", *filter.Type)
	}
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var transfers []models.Transfer
	if err := qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&transfers).Error; err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(transfers) > pageSize {
		transfers = transfers[:pageSize]
		last := transfers[len(transfers)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	return &ListResult{Transfers: transfers, NextCursor: nextCursor}, nil
}

func (r *repository) CreateItem(ctx context.Context, item *models.TransferItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) FindItem(ctx context.Context, id uuid.UUID) (*models.TransferItem, error) {
	var item models.TransferItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) UpdateItem(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.TransferItem{}).
		Where("id = ?", id).
		Updates(updates).
		Error
}

func (r *repository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.TransferItem{}).
		Error
}
