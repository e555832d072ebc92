package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tomasvidal/stockpilot-backend/pkg/enums"
)

// Location is a stocking site, either a warehouse or a retail store.
// The directory itself is owned by an external system; the engine only
// validates existence and kind.
type Location struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Code      string             `gorm:"column:code;not null;uniqueIndex"`
	Name      string             `gorm:"column:name;not null"`
	Kind      enums.LocationKind `gorm:"column:kind;type:location_kind_enum;not null"`
	Address   *string            `gorm:"column:address"`
	IsActive  bool               `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
