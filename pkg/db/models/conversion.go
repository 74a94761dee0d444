package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversion records one qualifying sample-to-purchase attribution. The
// attribution recorder is the sole writer of commission_amount_cents.
type Conversion struct {
	ID                    uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	PurchaseIntentID      uuid.UUID `gorm:"column:purchase_intent_id;type:uuid;not null;uniqueIndex:ux_conversions_intent"`
	CustomerID            uuid.UUID `gorm:"column:customer_id;type:uuid;not null"`
	OrgID                 uuid.UUID `gorm:"column:org_id;type:uuid;not null"`
	StoreID               uuid.UUID `gorm:"column:store_id;type:uuid;not null"`
	OrderTotalCents       int       `gorm:"column:order_total_cents;not null"`
	CommissionAmountCents int       `gorm:"column:commission_amount_cents;not null"`
	Paid                  bool      `gorm:"column:paid;not null;default:false"`
	PurchaseDate          time.Time `gorm:"column:purchase_date;not null"`
	DaysToConversion      int       `gorm:"column:days_to_conversion;not null"`
	CreatedAt             time.Time `gorm:"column:created_at;autoCreateTime"`
}
