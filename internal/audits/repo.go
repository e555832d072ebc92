package audits

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tomasvidal/stockpilot-backend/pkg/db/models"
	"github.com/tomasvidal/stockpilot-backend/pkg/enums"
	"github.com/tomasvidal/stockpilot-backend/pkg/pagination"
)

// ListFilter narrows audit listings.
type ListFilter struct {
	WarehouseID *uuid.UUID
	Status      *enums.AuditStatus
	Pagination  pagination.Params
}

// ListResult is one page of audits plus the cursor for the next.
type ListResult struct {
	Audits     []models.Audit
	NextCursor string
}

// Repository manages persistence for audits, their items and assignments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, audit *models.Audit) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Audit, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	List(ctx context.Context, filter ListFilter) (*ListResult, error)
	CreateItems(ctx context.Context, items []models.AuditItem) error
	FindItem(ctx context.Context, itemID uuid.UUID) (*models.AuditItem, error)
	UpdateItem(ctx context.Context, itemID uuid.UUID, updates map[string]any) error
	DeleteItemsByAudit(ctx context.Context, auditID uuid.UUID) error
	CreateAssignments(ctx context.Context, assignments []models.AuditAssignment) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an audit repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, audit *models.Audit) error {
	return r.db.WithContext(ctx).Create(audit).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Audit, error) {
	var audit models.Audit
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("audit_items.created_at ASC")
		}).
		Preload("Assignments").
		First(&audit, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &audit, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Audit{}).
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

	qb := r.db.WithContext(ctx).Model(&models.Audit{})
	if filter.WarehouseID != nil {
		qb = qb.Where("warehouse_id = ?", *filter.WarehouseID)
	}
	if filter.Status != nil {
		qb = qb.Where("status = ?", *filter.Status)
	}
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var audits []models.Audit
	if err := qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&audits).Error; err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(audits) > pageSize {
		audits = audits[:pageSize]
		last := audits[len(audits)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	return &ListResult{Audits: audits, NextCursor: nextCursor}, nil
}

func (r *repository) CreateItems(ctx context.Context, items []models.AuditItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) FindItem(ctx context.Context, itemID uuid.UUID) (*models.AuditItem, error) {
	var item models.AuditItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", itemID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) UpdateItem(ctx context.Context, itemID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.AuditItem{}).
		Where("id = ?", itemID).
		Updates(updates).
		Error
}

func (r *repository) DeleteItemsByAudit(ctx context.Context, auditID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("audit_id = ?", auditID).
		Delete(&models.AuditItem{}).
		Error
}

func (r *repository) CreateAssignments(ctx context.Context, assignments []models.AuditAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&assignments).Error
}
