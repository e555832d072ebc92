package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tomasvidal/stockpilot-backend/internal/repo"
	"github.com/tomasvidal/stockpilot-backend/pkg/db/models"
	"github.com/tomasvidal/stockpilot-backend/pkg/pagination"
)

// ListFilter narrows catalog listings.
type ListFilter struct {
	ActiveOnly bool
	Search     string
	Pagination pagination.Params
}

// ListResult is one page of products plus the cursor for the next.
type ListResult struct {
	Products   []models.Product
	NextCursor string
}

// Repository reads the product catalog.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindBySKU(ctx context.Context, sku string) (*models.Product, error)
	List(ctx context.Context, filter ListFilter) (*ListResult, error)
}

type repository struct {
	repo.Base
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var product models.Product
	if err := r.DB(ctx).First(&product, "sku = ?", sku).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	pageSize := pagination.NormalizeLimit(filter.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(filter.Pagination.Limit)

	cursor, err := pagination.ParseCursor(filter.Pagination.Cursor)
	if err != nil {
		return nil, err
	}

	qb := r.DB(ctx).Model(&models.Product{})
	if filter.ActiveOnly {
		qb = qb.Where("is_active = ?", true)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		qb = qb.Where("sku LIKE ? OR name LIKE ?", pattern, pattern)
	}
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var products []models.Product
	if err := qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&products).Error; err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(products) > pageSize {
		products = products[:pageSize]
		last := products[len(products)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	return &ListResult{Products: products, NextCursor: nextCursor}, nil
}
