package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a player account. Balance is mutated exclusively through
// the wallet service; both reads and conditional debits go through SQL so the
// column is the single source of truth.
type User struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Username       string     `gorm:"column:username;type:text;not null;uniqueIndex"`
	PasswordHash   string     `gorm:"column:password_hash;not null"`
	GameNickname   string     `gorm:"column:game_nickname;not null"`
	GameServer     string     `gorm:"column:game_server;not null"`
	Balance        int64      `gorm:"column:balance;not null;default:0"`
	LifetimeSpent  int64      `gorm:"column:lifetime_spent;not null;default:0"`
	LifetimeWon    int64      `gorm:"column:lifetime_won;not null;default:0"`
	SystemRole     *string    `gorm:"column:system_role"`
	IsActive       bool       `gorm:"column:is_active;not null;default:true"`
	LastLoginAt    *time.Time `gorm:"column:last_login_at"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the id app-side so inserts work the same on postgres
// and the sqlite test backend.
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
