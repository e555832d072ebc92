package enums

import "fmt"

// AuditStatus tracks the lifecycle of a physical stock count.
type AuditStatus string

const (
	AuditStatusPlanned    AuditStatus = "planned"
	AuditStatusInProgress AuditStatus = "in_progress"
	AuditStatusCompleted  AuditStatus = "completed"
	AuditStatusCancelled  AuditStatus = "cancelled"
)

var validAuditStatuses = []AuditStatus{
	AuditStatusPlanned,
	AuditStatusInProgress,
	AuditStatusCompleted,
	AuditStatusCancelled,
}

// String implements fmt.Stringer.
func (s AuditStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known AuditStatus.
func (s AuditStatus) IsValid() bool {
	for _, candidate := range validAuditStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseAuditStatus converts raw input into an AuditStatus.
func ParseAuditStatus(value string) (AuditStatus, error) {
	for _, candidate := range validAuditStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid audit status %q", value)
}
