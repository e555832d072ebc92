package enums

import "fmt"

// AdjustmentMode selects how an adjustment amount is applied to a record.
type AdjustmentMode string

const (
	AdjustmentModeAdd    AdjustmentMode = "add"
	AdjustmentModeRemove AdjustmentMode = "remove"
	AdjustmentModeSet    AdjustmentMode = "set"
)

var validAdjustmentModes = []AdjustmentMode{
	AdjustmentModeAdd,
	AdjustmentModeRemove,
	AdjustmentModeSet,
}

// String implements fmt.Stringer.
func (m AdjustmentMode) String() string {
	return string(m)
}

// IsValid reports whether the value is a known AdjustmentMode.
func (m AdjustmentMode) IsValid() bool {
	for _, candidate := range validAdjustmentModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseAdjustmentMode converts raw input into an AdjustmentMode.
func ParseAdjustmentMode(value string) (AdjustmentMode, error) {
	for _, candidate := range validAdjustmentModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid adjustment mode %q", value)
}
