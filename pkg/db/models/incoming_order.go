package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sampleloop/sampleloop-backend/pkg/enums"
)

// IncomingOrder is one wholesale line item awaiting physical receipt.
// Receiving is a one-way, one-time transition; orders sharing a
// verification token belong to the same physical shipment.
type IncomingOrder struct {
	ID                 uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey"`
	StockRecordID      uuid.UUID                 `gorm:"column:stock_record_id;type:uuid;not null"`
	StoreID            uuid.UUID                 `gorm:"column:store_id;type:uuid;not null"`
	ProductSKU         string                    `gorm:"column:product_sku;not null"`
	QuantityOrdered    int                       `gorm:"column:quantity_ordered;not null"`
	QuantityReceived   int                       `gorm:"column:quantity_received;not null;default:0"`
	Status             enums.IncomingOrderStatus `gorm:"column:status;type:incoming_order_status_enum;not null;default:pending"`
	VerificationToken  string                    `gorm:"column:verification_token;not null;index:idx_incoming_orders_token"`
	ShopifyOrderNumber *string                   `gorm:"column:shopify_order_number"`
	CreatedAt          time.Time                 `gorm:"column:created_at;autoCreateTime"`
	ReceivedAt         *time.Time                `gorm:"column:received_at"`
}
