package db

import "strings"

// IsUniqueViolation reports whether the provided error is a unique
// constraint violation. When constraintName is provided it must appear in
// the message too; sqlite reports the column list instead of the constraint
// name, so its violations always match.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return true
	}
	if !strings.Contains(msg, "duplicate key value") {
		return false
	}
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return true
}
