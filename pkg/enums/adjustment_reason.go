package enums

import "fmt"

// AdjustmentReason maps to the adjustment_reason_enum enum in Postgres.
type AdjustmentReason string

const (
	AdjustmentReasonReceiving   AdjustmentReason = "receiving"
	AdjustmentReasonCorrection  AdjustmentReason = "correction"
	AdjustmentReasonDamage      AdjustmentReason = "damage"
	AdjustmentReasonExpiry      AdjustmentReason = "expiry"
	AdjustmentReasonTheft       AdjustmentReason = "theft"
	AdjustmentReasonTransfer    AdjustmentReason = "transfer"
	AdjustmentReasonShortfall   AdjustmentReason = "transfer_shortfall"
	AdjustmentReasonCancelation AdjustmentReason = "transfer_cancelled"
	AdjustmentReasonAudit       AdjustmentReason = "audit"
)

var validAdjustmentReasons = []AdjustmentReason{
	AdjustmentReasonReceiving,
	AdjustmentReasonCorrection,
	AdjustmentReasonDamage,
	AdjustmentReasonExpiry,
	AdjustmentReasonTheft,
	AdjustmentReasonTransfer,
	AdjustmentReasonShortfall,
	AdjustmentReasonCancelation,
	AdjustmentReasonAudit,
}

// String implements fmt.Stringer.
func (r AdjustmentReason) String() string {
	return string(r)
}

// IsValid reports whether the value is a known AdjustmentReason.
func (r AdjustmentReason) IsValid() bool {
	for _, candidate := range validAdjustmentReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseAdjustmentReason converts raw input into an AdjustmentReason.
func ParseAdjustmentReason(value string) (AdjustmentReason, error) {
	for _, candidate := range validAdjustmentReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid adjustment reason %q", value)
}
