package enums

import "fmt"

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateInventoryItem OutboxAggregateType = "inventory_item"
	AggregateWalletEntry   OutboxAggregateType = "wallet_entry"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateInventoryItem,
	AggregateWalletEntry,
}

// IsValid reports whether the value is a known OutboxAggregateType.
func (t OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// OutboxEventType names a domain event drained through the outbox.
type OutboxEventType string

const (
	EventWithdrawalRequested OutboxEventType = "withdrawal.requested"
	EventWithdrawalCompleted OutboxEventType = "withdrawal.completed"
)

var validOutboxEventTypes = []OutboxEventType{
	EventWithdrawalRequested,
	EventWithdrawalCompleted,
}

// IsValid reports whether the value is a known OutboxEventType.
func (t OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// OutboxDLQErrorReason classifies why a row was dead-lettered.
type OutboxDLQErrorReason string

const (
	DLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
	DLQReasonMaxAttempts  OutboxDLQErrorReason = "max_attempts"
)

// ParseOutboxEventType converts raw input into an OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}
