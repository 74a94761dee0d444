package models

import (
	"time"

	"github.com/google/uuid"
)

// StockRecord holds the current stock snapshot for one (store, SKU) pair.
// It is owned by the inventory ledger engine and mutated only through ledger
// operations; quantity_available is derived, never stored.
type StockRecord struct {
	ID                uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	StoreID           uuid.UUID  `gorm:"column:store_id;type:uuid;not null;uniqueIndex:ux_stock_records_store_sku"`
	ProductSKU        string     `gorm:"column:product_sku;not null;uniqueIndex:ux_stock_records_store_sku"`
	QuantityOnHand    int        `gorm:"column:quantity_on_hand;not null;default:0"`
	QuantityReserved  int        `gorm:"column:quantity_reserved;not null;default:0"`
	QuantityIncoming  int        `gorm:"column:quantity_incoming;not null;default:0"`
	VerificationToken *string    `gorm:"column:verification_token"`
	PendingOrderID    *uuid.UUID `gorm:"column:pending_order_id;type:uuid"`
	LastRestocked     *time.Time `gorm:"column:last_restocked"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// QuantityAvailable is always computed from on-hand minus reserved.
func (s StockRecord) QuantityAvailable() int {
	return s.QuantityOnHand - s.QuantityReserved
}
