package auth

import (
	"github.com/angelmondragon/gocart-backend/internal/users"
	"github.com/angelmondragon/gocart-backend/pkg/enums"
	"github.com/google/uuid"
)

// RegisterRequest is the signup payload.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Image    string `json:"image,omitempty" validate:"omitempty,url"`
}

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries the last access token (expired tokens are accepted) and its refresh token.
type RefreshRequest struct {
	AccessToken  string `json:"accessToken" validate:"required"`
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// ChangePasswordRequest swaps the caller's password after re-checking the current one.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

// StoreSummary is the slice of the caller's store surfaced by /auth/me.
type StoreSummary struct {
	ID       uuid.UUID         `json:"id"`
	Name     string            `json:"name"`
	Username string            `json:"username"`
	Status   enums.StoreStatus `json:"status"`
	IsActive bool              `json:"isActive"`
}

// TokenPair is the access/refresh pair handed to clients.
type TokenPair struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// AuthResponse contains the tokens and user produced by register and login.
type AuthResponse struct {
	TokenPair
	User *users.UserDTO `json:"user"`
}

// MeResponse describes the authenticated caller.
type MeResponse struct {
	User  *users.UserDTO `json:"user"`
	Store *StoreSummary  `json:"store"`
}
