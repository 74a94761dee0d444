package enums

import "fmt"

// PurchaseIntentStatus maps to the purchase_intent_status_enum enum in Postgres.
// Fulfilled and cancelled are terminal.
type PurchaseIntentStatus string

const (
	PurchaseIntentStatusPending   PurchaseIntentStatus = "pending"
	PurchaseIntentStatusFulfilled PurchaseIntentStatus = "fulfilled"
	PurchaseIntentStatusCancelled PurchaseIntentStatus = "cancelled"
)

var validPurchaseIntentStatuses = []PurchaseIntentStatus{
	PurchaseIntentStatusPending,
	PurchaseIntentStatusFulfilled,
	PurchaseIntentStatusCancelled,
}

// String implements fmt.Stringer.
func (s PurchaseIntentStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known PurchaseIntentStatus.
func (s PurchaseIntentStatus) IsValid() bool {
	for _, candidate := range validPurchaseIntentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status permits no further transitions.
func (s PurchaseIntentStatus) IsTerminal() bool {
	return s == PurchaseIntentStatusFulfilled || s == PurchaseIntentStatusCancelled
}

// ParsePurchaseIntentStatus converts raw input into a PurchaseIntentStatus.
func ParsePurchaseIntentStatus(value string) (PurchaseIntentStatus, error) {
	for _, candidate := range validPurchaseIntentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid purchase intent status %q", value)
}
