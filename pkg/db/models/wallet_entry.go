package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nakawin/casino-backend/pkg/enums"
)

// WalletEntry records one immutable balance mutation. Amount is signed:
// debits are negative, credits positive. BalanceAfter snapshots the balance
// the mutation produced so the ledger can be audited without replay.
type WalletEntry struct {
	ID            uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	UserID        uuid.UUID             `gorm:"column:user_id;type:uuid;not null;index"`
	Type          enums.WalletEntryType `gorm:"column:type;not null"`
	Amount        int64                 `gorm:"column:amount;not null"`
	BalanceAfter  int64                 `gorm:"column:balance_after;not null"`
	TransactionID uuid.UUID             `gorm:"column:transaction_id;type:uuid;not null;index"`
	Metadata      json.RawMessage       `gorm:"column:metadata;type:jsonb"`
	CreatedAt     time.Time             `gorm:"column:created_at;autoCreateTime"`
}

func (e *WalletEntry) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
