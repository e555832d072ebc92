package locations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tomasvidal/stockpilot-backend/internal/repo"
	"github.com/tomasvidal/stockpilot-backend/pkg/db/models"
	"github.com/tomasvidal/stockpilot-backend/pkg/enums"
)

// ListFilter narrows the location directory listing.
type ListFilter struct {
	Kind       *enums.LocationKind
	ActiveOnly bool
}

// Repository reads the location directory.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Location, error)
	FindByCode(ctx context.Context, code string) (*models.Location, error)
	List(ctx context.Context, filter ListFilter) ([]models.Location, error)
}

type repository struct {
	repo.Base
}

// NewRepository returns a location repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	var location models.Location
	if err := r.DB(ctx).First(&location, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &location, nil
}

func (r *repository) FindByCode(ctx context.Context, code string) (*models.Location, error) {
	var location models.Location
	if err := r.DB(ctx).First(&location, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &location, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.Location, error) {
	qb := r.DB(ctx).Model(&models.Location{})
	if filter.Kind != nil {
		qb = qb.Where("kind = ?", *filter.Kind)
	}
	if filter.ActiveOnly {
		qb = qb.Where("is_active = ?", true)
	}

	var locations []models.Location
	if err := qb.Order("code ASC").Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}
