package enums

import "fmt"

// ItemSource records the
// provenance of an inventory item.
type ItemSource string

const (
	ItemSourceCase       ItemSource = "case"
	ItemSourceWheel      ItemSource = "wheel"
	ItemSourceAdminGrant ItemSource = "admin_grant"
)

var validItemSources = []ItemSource{
	ItemSourceCase,
	ItemSourceWheel,
	ItemSourceAdminGrant,
}

// String implements fmt.Stringer.
func (s ItemSource) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ItemSource.
func (s ItemSource) IsValid() bool {
	for _, candidate := range validItemSources {
		if candidate == s {
			return true
		}
	}
	return false
}

// ItemSourceForPoolKind maps a pool kind to the provenance tag stamped onto
// items won from that pool.
func ItemSourceForPoolKind(kind PoolKind) ItemSource {
	if kind == PoolKindWheel {
		return ItemSourceWheel
	}
	return ItemSourceCase
}

// ParseItemSource converts raw input into an ItemSource.
func ParseItemSource(value string) (ItemSource, error) {
	for _, candidate := range validItemSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item source %q", value)
}
