package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nakawin/casino-backend/pkg/enums"
)

// InventoryItem is an item a player holds (or once held). Items are created
// from a snapshot of the winning reward option, so later pool edits never
// rewrite what a player actually won. Rows are never deleted; terminal
// statuses keep the audit trail.
type InventoryItem struct {
	ID                    uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	UserID                uuid.UUID        `gorm:"column:user_id;type:uuid;not null;index:idx_inventory_user_status"`
	Name                  string           `gorm:"column:name;type:text;not null"`
	Image                 string           `gorm:"column:image;type:text;not null;default:''"`
	Value                 int64            `gorm:"column:value;not null"`
	Rarity                enums.Rarity     `gorm:"column:rarity;not null"`
	Source                enums.ItemSource `gorm:"column:source;not null"`
	SourcePoolID          *uuid.UUID       `gorm:"column:source_pool_id;type:uuid"`
	Status                enums.ItemStatus `gorm:"column:status;not null;default:'owned';index:idx_inventory_user_status"`
	TransactionID         *uuid.UUID       `gorm:"column:transaction_id;type:uuid"`
	ObtainedAt            time.Time        `gorm:"column:obtained_at;autoCreateTime"`
	SoldAt                *time.Time       `gorm:"column:sold_at"`
	WithdrawalRequestedAt *time.Time       `gorm:"column:withdrawal_requested_at"`
	WithdrawnAt           *time.Time       `gorm:"column:withdrawn_at"`
	UpdatedAt             time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *InventoryItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
