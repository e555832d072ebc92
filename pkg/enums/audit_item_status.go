package enums

import "fmt"

// AuditItemStatus tracks a single line of a stock count.
type AuditItemStatus string

const (
	AuditItemStatusPending    AuditItemStatus = "pending"
	AuditItemStatusCounted    AuditItemStatus = "counted"
	AuditItemStatusReconciled AuditItemStatus = "reconciled"
)

var validAuditItemStatuses = []AuditItemStatus{
	AuditItemStatusPending,
	AuditItemStatusCounted,
	AuditItemStatusReconciled,
}

// String implements fmt.Stringer.
func (s AuditItemStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known AuditItemStatus.
func (s AuditItemStatus) IsValid() bool {
	for _, candidate := range validAuditItemStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Resolved reports whether the item no longer blocks audit completion.
func (s AuditItemStatus) Resolved() bool {
	return s == AuditItemStatusCounted || s == AuditItemStatusReconciled
}

// ParseAuditItemStatus converts raw input into an AuditItemStatus.
func ParseAuditItemStatus(value string) (AuditItemStatus, error) {
	for _, candidate := range validAuditItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid audit item status %q", value)
}
