package enums

import "fmt"

// Rarity is the display tier of an item, derived deterministically from
// the item's value.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

var validRarities = []Rarity{
	RarityCommon,
	RarityUncommon,
	RarityRare,
	RarityEpic,
	RarityLegendary,
}

// Value thresholds for derived tiers.
const (
	legendaryThreshold = 1000
	epicThreshold      = 500
	rareThreshold      = 200
	uncommonThreshold  = 100
)

var rarityColors = map[Rarity]string{
	RarityCommon:    "#b0b0b0",
	RarityUncommon:  "#00ff00",
	RarityRare:      "#0070ff",
	RarityEpic:      "#a335ee",
	RarityLegendary: "#ff8000",
}

// RarityForValue derives the rarity tier for an item value. The mapping is a
// pure function so repeated calls for the same value always agree.
func RarityForValue(value int64) Rarity {
	switch {
	case value >= legendaryThreshold:
		return RarityLegendary
	case value >= epicThreshold:
		return RarityEpic
	case value >= rareThreshold:
		return RarityRare
	case value >= uncommonThreshold:
		return RarityUncommon
	default:
		return RarityCommon
	}
}

// String implements fmt.Stringer.
func (r Rarity) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Rarity.
func (r Rarity) IsValid() bool {
	for _, candidate := range validRarities {
		if candidate == r {
			return true
		}
	}
	return false
}

// Color returns the display hex color for the tier.
func (r Rarity) Color() string {
	if color, ok := rarityColors[r]; ok {
		return color
	}
	return rarityColors[RarityCommon]
}

// ParseRarity converts raw input into a Rarity.
func ParseRarity(value string) (Rarity, error) {
	for _, candidate := range validRarities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rarity %q", value)
}
