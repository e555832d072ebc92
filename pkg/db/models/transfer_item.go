package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferItem is one product line on a transfer. Source prices are a
// snapshot taken when the line is added; target prices are what the
// destination record adopts on receipt.
type TransferItem struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	TransferID uuid.UUID `gorm:"column:transfer_id;type:uuid;not null;index"`
	ProductID  uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Quantity   int       `gorm:"column:quantity;not null"`

	SourceCostPrice   decimal.Decimal `gorm:"column:source_cost_price;type:numeric(12,2);not null"`
	SourceRetailPrice decimal.Decimal `gorm:"column:source_retail_price;type:numeric(12,2);not null"`
	TargetCostPrice   decimal.Decimal `gorm:"column:target_cost_price;type:numeric(12,2);not null"`
	TargetRetailPrice decimal.Decimal `gorm:"column:target_retail_price;type:numeric(12,2);not null"`
	PriceReason       *string         `gorm:"column:price_reason"`

	// ReceivedQty is set on completion. ResidualQty is the shipped-but-not-
	// received remainder, returned to the source in the same transaction so
	// quantity is conserved.
	ReceivedQty *int `gorm:"column:received_qty"`
	ResidualQty int  `gorm:"column:residual_qty;not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
