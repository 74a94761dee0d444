package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sampleloop/sampleloop-backend/pkg/enums"
)

// PurchaseIntent is a customer's request to buy, completed by store staff.
// Fulfilled and cancelled are terminal and reached exactly once.
type PurchaseIntent struct {
	ID                 uuid.UUID                  `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID         uuid.UUID                  `gorm:"column:customer_id;type:uuid;not null"`
	StoreID            uuid.UUID                  `gorm:"column:store_id;type:uuid;not null"`
	ProductSKU         string                     `gorm:"column:product_sku;not null"`
	Quantity           int                        `gorm:"column:quantity;not null;default:1"`
	Status             enums.PurchaseIntentStatus `gorm:"column:status;type:purchase_intent_status_enum;not null;default:pending"`
	DiscountPercent    int                        `gorm:"column:discount_percent;not null;default:0"`
	FinalPriceCents    *int                       `gorm:"column:final_price_cents"`
	FulfilledByStaffID *uuid.UUID                 `gorm:"column:fulfilled_by_staff_id;type:uuid"`
	FulfilledAt        *time.Time                 `gorm:"column:fulfilled_at"`
	CreatedAt          time.Time                  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time                  `gorm:"column:updated_at;autoUpdateTime"`
}
