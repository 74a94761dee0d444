package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sampleloop/sampleloop-backend/pkg/enums"
)

// LedgerEntry records one immutable inventory-affecting event. Replaying all
// entries for a (store, SKU) pair in creation order from zero reproduces
// every balance_after and the stock record's current quantity_on_hand.
type LedgerEntry struct {
	ID            uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	StoreID       uuid.UUID             `gorm:"column:store_id;type:uuid;not null;index:idx_ledger_entries_store_sku"`
	ProductSKU    string                `gorm:"column:product_sku;not null;index:idx_ledger_entries_store_sku"`
	Type          enums.LedgerEntryType `gorm:"column:type;type:ledger_entry_type_enum;not null"`
	QuantityDelta int                   `gorm:"column:quantity_delta;not null"`
	BalanceAfter  int                   `gorm:"column:balance_after;not null"`
	Notes         *string               `gorm:"column:notes"`
	CreatedAt     time.Time             `gorm:"column:created_at;autoCreateTime"`
}
