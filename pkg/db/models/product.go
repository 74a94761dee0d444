package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalog entry identified by SKU across the platform.
type Product struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OrgID            uuid.UUID `gorm:"column:org_id;type:uuid;not null"`
	SKU              string    `gorm:"column:sku;not null;uniqueIndex:ux_products_sku"`
	Name             string    `gorm:"column:name;not null"`
	RetailPriceCents int       `gorm:"column:retail_price_cents;not null;default:0"`
	Active           bool      `gorm:"column:active;not null;default:true"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
