package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tomasvidal/stockpilot-backend/pkg/enums"
)

// Audit is a physical stock count for one warehouse, reconciled against
// recorded quantities on completion.
type Audit struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	ReferenceNo string            `gorm:"column:reference_no;not null;uniqueIndex"`
	WarehouseID uuid.UUID         `gorm:"column:warehouse_id;type:uuid;not null;index"`
	Status      enums.AuditStatus `gorm:"column:status;type:audit_status_enum;not null;default:'planned'"`
	Notes       *string           `gorm:"column:notes"`

	CreatedBy   uuid.UUID  `gorm:"column:created_by;type:uuid;not null"`
	CompletedBy *uuid.UUID `gorm:"column:completed_by;type:uuid"`

	StartedAt   *time.Time `gorm:"column:started_at"`
	CompletedAt *time.Time `gorm:"column:completed_at"`

	Items       []AuditItem       `gorm:"foreignKey:AuditID;constraint:OnDelete:CASCADE"`
	Assignments []AuditAssignment `gorm:"foreignKey:AuditID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
