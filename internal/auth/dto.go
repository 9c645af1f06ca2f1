package auth

import (
	"github.com/nakawin/casino-backend/internal/users"
)

// RegisterRequest captures the payload required to create a player account.
type RegisterRequest struct {
	Username     string `json:"username" validate:"required,min=3,max=32"`
	Password     string `json:"password" validate:"required,min=8"`
	GameNickname string `json:"game_nickname" validate:"required"`
	GameServer   string `json:"game_server" validate:"required"`
}

// LoginRequest captures the credentials sent to the login endpoints.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse contains the token pair and user produced by a successful
// login or registration.
type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *users.UserDTO `json:"user"`
}

// RefreshRequest carries the expired access token alongside the refresh token
// so the session can be rotated.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshResponse contains the rotated token pair.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
