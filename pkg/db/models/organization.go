package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Organization is a brand tenant. CommissionRate is a whole percentage;
// AttributionWindowDays bounds sample-to-purchase credit.
type Organization struct {
	ID                    uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Name                  string         `gorm:"column:name;not null"`
	CommissionRate        int            `gorm:"column:commission_rate;not null;default:10"`
	AttributionWindowDays int            `gorm:"column:attribution_window_days;not null;default:30"`
	NotificationChannels  pq.StringArray `gorm:"column:notification_channels;type:text[]"`
	CreatedAt             time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
