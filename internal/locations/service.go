package locations

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tomasvidal/stockpilot-backend/pkg/db/models"
	pkgerrors "github.com/tomasvidal/stockpilot-backend/pkg/errors"
)

// Service exposes read access to the location directory. The directory is
// owned elsewhere; the engine only resolves and validates sites.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Location, error)
	List(ctx context.Context, filter ListFilter) ([]models.Location, error)
}

type service struct {
	repo Repository
}

// NewService builds a location service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("location repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location id required")
	}
	location, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "location not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load location")
	}
	return location, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]models.Location, error) {
	locations, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list locations")
	}
	return locations, nil
}
