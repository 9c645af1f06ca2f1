package enums

import "fmt"

// ItemStatus is the lifecycle state of an inventory item.
//
// The lifecycle is one-directional:
//
//	owned -> sold
//	owned -> withdrawal_requested -> withdrawn
//
// sold and withdrawn are terminal; rows are never deleted so the full
// history remains queryable.
type ItemStatus string

const (
	ItemStatusOwned               ItemStatus = "owned"
	ItemStatusSold                ItemStatus = "sold"
	ItemStatusWithdrawalRequested ItemStatus = "withdrawal_requested"
	ItemStatusWithdrawn           ItemStatus = "withdrawn"
)

var validItemStatuses = []ItemStatus{
	ItemStatusOwned,
	ItemStatusSold,
	ItemStatusWithdrawalRequested,
	ItemStatusWithdrawn,
}

var itemStatusTransitions = map[ItemStatus][]ItemStatus{
	ItemStatusOwned:               {ItemStatusSold, ItemStatusWithdrawalRequested},
	ItemStatusWithdrawalRequested: {ItemStatusWithdrawn},
	ItemStatusSold:                {},
	ItemStatusWithdrawn:           {},
}

// String implements fmt.Stringer.
func (s ItemStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ItemStatus.
func (s ItemStatus) IsValid() bool {
	for _, candidate := range validItemStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s ItemStatus) IsTerminal() bool {
	return len(itemStatusTransitions[s]) == 0 && s.IsValid()
}

// CanTransitionTo reports whether the lifecycle allows moving to target.
func (s ItemStatus) CanTransitionTo(target ItemStatus) bool {
	for _, candidate := range itemStatusTransitions[s] {
		if candidate == target {
			return true
		}
	}
	return false
}

// ParseItemStatus converts raw input into an ItemStatus.
func ParseItemStatus(value string) (ItemStatus, error) {
	for _, candidate := range validItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item status %q", value)
}
