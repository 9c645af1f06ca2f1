package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/nakawin/casino-backend/pkg/db/models"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID            uuid.UUID  `json:"id"`
	Username      string     `json:"username"`
	GameNickname  string     `json:"game_nickname"`
	GameServer    string     `json:"game_server"`
	Balance       int64      `json:"balance"`
	LifetimeSpent int64      `json:"lifetime_spent"`
	LifetimeWon   int64      `json:"lifetime_won"`
	IsActive      bool       `json:"is_active"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
	SystemRole    *string    `json:"system_role,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Username     string
	PasswordHash string
	GameNickname string
	GameServer   string
	Balance      int64
	SystemRole   *string
	IsActive     *bool
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:            u.ID,
		Username:      u.Username,
		GameNickname:  u.GameNickname,
		GameServer:    u.GameServer,
		Balance:       u.Balance,
		LifetimeSpent: u.LifetimeSpent,
		LifetimeWon:   u.LifetimeWon,
		IsActive:      u.IsActive,
		LastLoginAt:   u.LastLoginAt,
		SystemRole:    u.SystemRole,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	isActive := true
	if c.IsActive != nil {
		isActive = *c.IsActive
	}

	return &models.User{
		Username:     c.Username,
		PasswordHash: c.PasswordHash,
		GameNickname: c.GameNickname,
		GameServer:   c.GameServer,
		Balance:      c.Balance,
		IsActive:     isActive,
		SystemRole:   c.SystemRole,
	}
}
