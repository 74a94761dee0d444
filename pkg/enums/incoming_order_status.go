package enums

import "fmt"

// IncomingOrderStatus tracks the one-way wholesale receiving workflow.
type IncomingOrderStatus string

const (
	IncomingOrderStatusPending  IncomingOrderStatus = "pending"
	IncomingOrderStatusReceived IncomingOrderStatus = "received"
)

var validIncomingOrderStatuses = []IncomingOrderStatus{
	IncomingOrderStatusPending,
	IncomingOrderStatusReceived,
}

// String implements fmt.Stringer.
func (s IncomingOrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known IncomingOrderStatus.
func (s IncomingOrderStatus) IsValid() bool {
	for _, candidate := range validIncomingOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseIncomingOrderStatus converts raw input into an IncomingOrderStatus.
func ParseIncomingOrderStatus(value string) (IncomingOrderStatus, error) {
	for _, candidate := range validIncomingOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid incoming order status %q", value)
}
