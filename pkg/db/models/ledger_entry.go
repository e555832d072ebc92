package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tomasvidal/stockpilot-backend/pkg/enums"
)

// LedgerEntry records one immutable quantity mutation against an inventory
// record. Entries are written in the same transaction as the mutation they
// describe and are never edited or deleted.
type LedgerEntry struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	RecordID   uuid.UUID `gorm:"column:record_id;type:uuid;not null;index"`
	ProductID  uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	LocationID uuid.UUID `gorm:"column:location_id;type:uuid;not null"`

	Type enums.LedgerEntryType `gorm:"column:type;type:ledger_entry_type_enum;not null"`
	// Quantity is the magnitude of the change, always >= 0; direction is
	// derived from Type plus the previous/new pair.
	Quantity    int `gorm:"column:quantity;not null"`
	PreviousQty int `gorm:"column:previous_quantity;not null"`
	NewQty      int `gorm:"column:new_quantity;not null"`

	Reason  enums.AdjustmentReason `gorm:"column:reason;type:adjustment_reason_enum;not null"`
	Notes   *string                `gorm:"column:notes"`
	ActorID uuid.UUID              `gorm:"column:actor_id;type:uuid;not null"`
	// ReferenceID points at the transfer or audit that caused the mutation.
	ReferenceID *uuid.UUID `gorm:"column:reference_id;type:uuid;index"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
}

// SignedDelta returns the quantity change this entry applied to the record.
func (e *LedgerEntry) SignedDelta() int {
	return e.NewQty - e.PreviousQty
}
