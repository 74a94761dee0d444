package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer is an end customer reached through a display QR code.
type Customer struct {
	ID                uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Phone             string     `gorm:"column:phone;not null;uniqueIndex:ux_customers_phone"`
	SampleDate        *time.Time `gorm:"column:sample_date"`
	AttributedStoreID *uuid.UUID `gorm:"column:attributed_store_id;type:uuid"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
