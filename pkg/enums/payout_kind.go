package enums

import "fmt"

// PayoutKind distinguishes what a reward option pays out. Currency payouts
// are credited to the player's balance; item payouts land in the inventory.
// The two are mutually exclusive for any single reward option.
type PayoutKind string

const (
	PayoutKindCurrency PayoutKind = "currency"
	PayoutKindItem     PayoutKind = "item"
)

var validPayoutKinds = []PayoutKind{
	PayoutKindCurrency,
	PayoutKindItem,
}

// String implements fmt.Stringer.
func (k PayoutKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known PayoutKind.
func (k PayoutKind) IsValid() bool {
	for _, candidate := range validPayoutKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParsePayoutKind converts raw input into a PayoutKind.
func ParsePayoutKind(value string) (PayoutKind, error) {
	for _, candidate := range validPayoutKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payout kind %q", value)
}
