package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sampleloop/sampleloop-backend/pkg/enums"
)

// Notification is a store-facing message produced after a core transaction
// commits. Delivery is best effort and never feeds back into the core.
type Notification struct {
	ID        uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey"`
	StoreID   uuid.UUID                 `gorm:"column:store_id;type:uuid;not null;index:idx_notifications_store"`
	Channel   enums.NotificationChannel `gorm:"column:channel;type:notification_channel_enum;not null;default:in_app"`
	Recipient string                    `gorm:"column:recipient"`
	Title     string                    `gorm:"column:title;not null"`
	Body      string                    `gorm:"column:body;not null"`
	ReadAt    *time.Time                `gorm:"column:read_at"`
	CreatedAt time.Time                 `gorm:"column:created_at;autoCreateTime"`
}
