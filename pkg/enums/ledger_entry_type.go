package enums

import "fmt"

// LedgerEntryType maps to the ledger_entry_type_enum enum in Postgres.
type LedgerEntryType string

const (
	LedgerEntryTypeAdd             LedgerEntryType = "add"
	LedgerEntryTypeRemove          LedgerEntryType = "remove"
	LedgerEntryTypeSet             LedgerEntryType = "set"
	LedgerEntryTypeTransferIn      LedgerEntryType = "transfer_in"
	LedgerEntryTypeTransferOut     LedgerEntryType = "transfer_out"
	LedgerEntryTypeAuditAdjustment LedgerEntryType = "audit_adjustment"
	LedgerEntryTypeInitial         LedgerEntryType = "initial"
)

var validLedgerEntryTypes = []LedgerEntryType{
	LedgerEntryTypeAdd,
	LedgerEntryTypeRemove,
	LedgerEntryTypeSet,
	LedgerEntryTypeTransferIn,
	LedgerEntryTypeTransferOut,
	LedgerEntryTypeAuditAdjustment,
	LedgerEntryTypeInitial,
}

// String implements fmt.Stringer.
func (t LedgerEntryType) String() string {
	return string(t)
}

// IsValid reports whether the value matches the canonical ledger entry enum.
func (t LedgerEntryType) IsValid() bool {
	for _, candidate := range validLedgerEntryTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// Inbound reports whether entries of this type increase the on-hand quantity.
// Set and audit adjustments can move either way and report false.
func (t LedgerEntryType) Inbound() bool {
	switch t {
	case LedgerEntryTypeAdd, LedgerEntryTypeTransferIn, LedgerEntryTypeInitial:
		return true
	}
	return false
}

// ParseLedgerEntryType converts raw input into LedgerEntryType.
func ParseLedgerEntryType(value string) (LedgerEntryType, error) {
	for _, candidate := range validLedgerEntryTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ledger entry type %q", value)
}
