package enums

import "fmt"

// PoolKind distinguishes case pools from wheel pools.
type PoolKind string

const (
	PoolKindCase  PoolKind = "case"
	PoolKindWheel PoolKind = "wheel"
)

var validPoolKinds = []PoolKind{
	PoolKindCase,
	PoolKindWheel,
}

// String implements fmt.Stringer.
func (k PoolKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known PoolKind.
func (k PoolKind) IsValid() bool {
	for _, candidate := range validPoolKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParsePoolKind converts raw input into a PoolKind.
func ParsePoolKind(value string) (PoolKind, error) {
	for _, candidate := range validPoolKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pool kind %q", value)
}
