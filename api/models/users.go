package models

import (
	"time"

	"github.com/votaseguro/election-ledger/storage"
)

type UserRegisterRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	WalletAddress string `json:"walletAddress"`
	Tokens        int    `json:"tokens"`
}

type AssignTokensRequest struct {
	Tokens *int `json:"tokens"`
}

type SetActiveRequest struct {
	Active *bool `json:"active"`
}

// UpdateProfileRequest leaves nil fields untouched.
type UpdateProfileRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

type UserResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	WalletAddress   string    `json:"walletAddress"`
	TokensAssigned  int       `json:"tokensAssigned"`
	TokensUsed      int       `json:"tokensUsed"`
	TokensRemaining int       `json:"tokensRemaining"`
	RegisteredAt    time.Time `json:"registeredAt"`
	Active          bool      `json:"active"`
}

func TransformUserFromStorage(u *storage.User) UserResponse {
	remaining := u.TokensRemaining()
	if remaining < 0 {
		remaining = 0
	}
	return UserResponse{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		WalletAddress:   u.WalletAddress,
		TokensAssigned:  u.TokensAssigned,
		TokensUsed:      u.TokensUsed,
		TokensRemaining: remaining,
		RegisteredAt:    u.RegisteredAt,
		Active:          u.Active,
	}
}
