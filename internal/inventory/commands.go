package inventory

import "github.com/google/uuid"

// Each mutating operation takes its own command type carrying exactly the
// fields that operation validates. There is no generic partial-update path.

// ReserveCommand holds stock aside for a pending purchase intent.
type ReserveCommand struct {
	StoreID    uuid.UUID
	ProductSKU string
	Quantity   int
	Notes      *string
}

// ReleaseCommand returns previously reserved stock to the available pool.
type ReleaseCommand struct {
	StoreID    uuid.UUID
	ProductSKU string
	Quantity   int
	Notes      *string
}

// ConsumeCommand burns reserved stock when a purchase intent is fulfilled.
type ConsumeCommand struct {
	StoreID    uuid.UUID
	ProductSKU string
	Quantity   int
	Notes      *string
}

// AdjustCommand applies a signed manual correction with a required reason.
type AdjustCommand struct {
	StoreID    uuid.UUID
	ProductSKU string
	Delta      int
	Reason     string
}

// RedeemSampleCommand decrements a unit handed out as a customer sample.
type RedeemSampleCommand struct {
	StoreID    uuid.UUID
	ProductSKU string
	Quantity   int
	CustomerID *uuid.UUID
}

// LedgerQuery selects a page of ledger history, newest entries first.
type LedgerQuery struct {
	StoreID    uuid.UUID
	ProductSKU string
	Limit      int
	Cursor     string
}
