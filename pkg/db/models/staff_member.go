package models

import (
	"time"

	"github.com/google/uuid"
)

// StaffMember is a store employee who can complete purchase intents.
// PointsBalance is the running total of commission points awarded.
type StaffMember struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	StoreID       uuid.UUID `gorm:"column:store_id;type:uuid;not null;index:idx_staff_members_store"`
	Name          string    `gorm:"column:name;not null"`
	Phone         string    `gorm:"column:phone"`
	PointsBalance int       `gorm:"column:points_balance;not null;default:0"`
	Active        bool      `gorm:"column:active;not null;default:true"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// PointsEntry is one append-only points award or deduction for a staff member.
type PointsEntry struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	StaffID   uuid.UUID `gorm:"column:staff_id;type:uuid;not null;index:idx_points_entries_staff"`
	Amount    int       `gorm:"column:amount;not null"`
	Reason    string    `gorm:"column:reason;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
