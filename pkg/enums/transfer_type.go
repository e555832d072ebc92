package enums

import "fmt"

// TransferType distinguishes warehouse relocations from store restocks.
type TransferType string

const (
	// TransferTypeRelocation moves stock warehouse to warehouse.
	TransferTypeRelocation TransferType = "relocation"
	// TransferTypeRestock moves stock warehouse to store.
	TransferTypeRestock TransferType = "restock"
)

var validTransferTypes = []TransferType{
	TransferTypeRelocation,
	TransferTypeRestock,
}

// String implements fmt.Stringer.
func (t TransferType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TransferType.
func (t TransferType) IsValid() bool {
	for _, candidate := range validTransferTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// DestinationKind returns the location kind the destination must have.
func (t TransferType) DestinationKind() LocationKind {
	if t == TransferTypeRestock {
		return LocationKindStore
	}
	return LocationKindWarehouse
}

// ParseTransferType converts raw input into a TransferType.
func ParseTransferType(value string) (TransferType, error) {
	for _, candidate := range validTransferTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transfer type %q", value)
}
