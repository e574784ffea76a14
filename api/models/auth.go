package models

import "time"

type AdminLoginRequest struct {
	Password string `json:"password"`
}

type VoterLoginRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	WalletAddress string `json:"walletAddress"`
}

type LoginResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expiresAt"`
	Role      string        `json:"role"`
	User      *UserResponse `json:"user,omitempty"`
}
