package enums

import "fmt"

// DisplayStatus maps to the display_status_enum enum in Postgres.
type DisplayStatus string

const (
	DisplayStatusInventory DisplayStatus = "inventory"
	DisplayStatusSold      DisplayStatus = "sold"
	DisplayStatusActive    DisplayStatus = "active"
	DisplayStatusInactive  DisplayStatus = "inactive"
)

var validDisplayStatuses = []DisplayStatus{
	DisplayStatusInventory,
	DisplayStatusSold,
	DisplayStatusActive,
	DisplayStatusInactive,
}

// String implements fmt.Stringer.
func (s DisplayStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known DisplayStatus.
func (s DisplayStatus) IsValid() bool {
	for _, candidate := range validDisplayStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseDisplayStatus converts raw input into a DisplayStatus.
func ParseDisplayStatus(value string) (DisplayStatus, error) {
	for _, candidate := range validDisplayStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid display status %q", value)
}
