package enums

import "fmt"

// LocationKind distinguishes the two stocking location types.
type LocationKind string

const (
	LocationKindWarehouse LocationKind = "warehouse"
	LocationKindStore     LocationKind = "store"
)

var validLocationKinds = []LocationKind{
	LocationKindWarehouse,
	LocationKindStore,
}

// String implements fmt.Stringer.
func (k LocationKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known LocationKind.
func (k LocationKind) IsValid() bool {
	for _, candidate := range validLocationKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseLocationKind converts raw input into a LocationKind.
func ParseLocationKind(value string) (LocationKind, error) {
	for _, candidate := range validLocationKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid location kind %q", value)
}
