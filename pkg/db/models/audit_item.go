package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tomasvidal/stockpilot-backend/pkg/enums"
)

// AuditItem is one counted line of an audit. ExpectedQty is snapshotted from
// the inventory record when the audit starts; Discrepancy is resolved on
// completion.
type AuditItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	AuditID   uuid.UUID `gorm:"column:audit_id;type:uuid;not null;index"`
	RecordID  uuid.UUID `gorm:"column:record_id;type:uuid;not null"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null"`

	ExpectedQty int                   `gorm:"column:expected_quantity;not null"`
	CountedQty  *int                  `gorm:"column:counted_quantity"`
	Discrepancy *int                  `gorm:"column:discrepancy"`
	Status      enums.AuditItemStatus `gorm:"column:status;type:audit_item_status_enum;not null;default:'pending'"`

	CountedBy *uuid.UUID `gorm:"column:counted_by;type:uuid"`
	CountedAt *time.Time `gorm:"column:counted_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
