package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tomasvidal/stockpilot-backend/pkg/enums"
)

// Transfer moves stock between two locations through an approval pipeline.
type Transfer struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	ReferenceNo string               `gorm:"column:reference_no;not null;uniqueIndex"`
	SourceID    uuid.UUID            `gorm:"column:source_location_id;type:uuid;not null;index"`
	DestID      uuid.UUID            `gorm:"column:destination_location_id;type:uuid;not null;index"`
	Type        enums.TransferType   `gorm:"column:type;type:transfer_type_enum;not null"`
	Status      enums.TransferStatus `gorm:"column:status;type:transfer_status_enum;not null;default:'draft'"`

	TotalItems  int             `gorm:"column:total_items;not null;default:0"`
	TotalCost   decimal.Decimal `gorm:"column:total_cost;type:numeric(14,2);not null"`
	TotalRetail decimal.Decimal `gorm:"column:total_retail;type:numeric(14,2);not null"`
	Notes       *string         `gorm:"column:notes"`

	RequestedBy uuid.UUID  `gorm:"column:requested_by;type:uuid;not null"`
	ApprovedBy  *uuid.UUID `gorm:"column:approved_by;type:uuid"`
	RejectedBy  *uuid.UUID `gorm:"column:rejected_by;type:uuid"`
	CompletedBy *uuid.UUID `gorm:"column:completed_by;type:uuid"`
	CancelledBy *uuid.UUID `gorm:"column:cancelled_by;type:uuid"`

	SubmittedAt *time.Time `gorm:"column:submitted_at"`
	ApprovedAt  *time.Time `gorm:"column:approved_at"`
	RejectedAt  *time.Time `gorm:"column:rejected_at"`
	ShippedAt   *time.Time `gorm:"column:shipped_at"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
	CancelledAt *time.Time `gorm:"column:cancelled_at"`

	Items []TransferItem `gorm:"foreignKey:TransferID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
