package dto

import "github.com/hongminglow/eros-desk/internal/models"

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string          `json:"token"`
	ExpiresAt int64           `json:"expires_at"`
	User      models.Identity `json:"user"`
}

type MeResponse struct {
	Session     models.Session `json:"session"`
	Permissions []string       `json:"permissions"`
}

type CreateUserRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
	Role        string `json:"role"`
}
