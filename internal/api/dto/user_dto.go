package dto

import "time"

// UserRegisterRequest carries new-account payloads.
type UserRegisterRequest struct {
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Password   string   `json:"password"`
	Groups     []string `json:"groups"`
	TerminalID *string  `json:"terminal_id"`
}

// UserLoginRequest carries login payloads.
type UserLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse returns an issued token.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
