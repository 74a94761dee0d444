package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sampleloop/sampleloop-backend/pkg/enums"
)

// Display is a physical QR-coded unit. DisplayID is the human-readable label
// printed on the unit and never changes. OwnerOrgID is set at creation and
// never transfers; AssignedOrgID survives resets.
type Display struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	DisplayID     string              `gorm:"column:display_id;not null;uniqueIndex:ux_displays_display_id"`
	Status        enums.DisplayStatus `gorm:"column:status;type:display_status_enum;not null;default:inventory"`
	OwnerOrgID    uuid.UUID           `gorm:"column:owner_org_id;type:uuid;not null"`
	AssignedOrgID *uuid.UUID          `gorm:"column:assigned_org_id;type:uuid"`
	StoreID       *uuid.UUID          `gorm:"column:store_id;type:uuid"`
	ActivatedAt   *time.Time          `gorm:"column:activated_at"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
