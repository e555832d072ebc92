package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product carries the catalog fields the ledger reads: identity and
// reference prices. Everything else about the catalog lives elsewhere.
type Product struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	SKU               string          `gorm:"column:sku;not null;uniqueIndex"`
	Name              string          `gorm:"column:name;not null"`
	Unit              string          `gorm:"column:unit;not null;default:'each'"`
	CostPrice         decimal.Decimal `gorm:"column:cost_price;type:numeric(12,2);not null"`
	RetailPrice       decimal.Decimal `gorm:"column:retail_price;type:numeric(12,2);not null"`
	LowStockThreshold int             `gorm:"column:low_stock_threshold;not null;default:0"`
	IsActive          bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
