package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/nakawin/casino-backend/pkg/enums"
)

// WithdrawalRequestedEvent is emitted when a player asks for a physical payout
// of an inventory item. Fulfillment staff consume it downstream.
type WithdrawalRequestedEvent struct {
	ItemID       uuid.UUID    `json:"itemId"`
	UserID       uuid.UUID    `json:"userId"`
	ItemName     string       `json:"itemName"`
	ItemValue    int64        `json:"itemValue"`
	Rarity       enums.Rarity `json:"rarity"`
	GameNickname string       `json:"gameNickname,omitempty"`
	GameServer   string       `json:"gameServer,omitempty"`
	RequestedAt  time.Time    `json:"requestedAt"`
}

// WithdrawalCompletedEvent is emitted when an admin marks the payout delivered.
type WithdrawalCompletedEvent struct {
	ItemID      uuid.UUID `json:"itemId"`
	UserID      uuid.UUID `json:"userId"`
	CompletedBy uuid.UUID `json:"completedBy"`
	CompletedAt time.Time `json:"completedAt"`
}
