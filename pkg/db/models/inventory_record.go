package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tomasvidal/stockpilot-backend/pkg/enums"
)

// InventoryRecord tracks on-hand and reserved counts for one product at one
// location. Records are never deleted; a zero-quantity record persists so
// history and reorder thresholds stay queryable.
type InventoryRecord struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	ProductID   uuid.UUID             `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_inventory_product_location"`
	LocationID  uuid.UUID             `gorm:"column:location_id;type:uuid;not null;uniqueIndex:idx_inventory_product_location"`
	Quantity    int                   `gorm:"column:quantity;not null;default:0"`
	ReservedQty int                   `gorm:"column:reserved_qty;not null;default:0"`
	CostPrice   decimal.Decimal       `gorm:"column:cost_price;type:numeric(12,2);not null"`
	RetailPrice decimal.Decimal       `gorm:"column:retail_price;type:numeric(12,2);not null"`
	Status      enums.InventoryStatus `gorm:"column:status;type:inventory_status_enum;not null"`
	ExpiryDate  *time.Time            `gorm:"column:expiry_date"`
	// Version guards against lost updates alongside row locks.
	Version   int64     `gorm:"column:version;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// AvailableToPromise returns on-hand stock not yet committed to a transfer.
func (r *InventoryRecord) AvailableToPromise() int {
	return r.Quantity - r.ReservedQty
}

// DeriveStatus computes the status an inventory record must carry for the
// given quantity. Status is a pure function of record state.
func DeriveStatus(quantity int, expiry *time.Time, now time.Time) enums.InventoryStatus {
	if quantity <= 0 {
		return enums.InventoryStatusOutOfStock
	}
	if expiry != nil && expiry.Before(now) {
		return enums.InventoryStatusExpired
	}
	return enums.InventoryStatusAvailable
}
