package models

import (
	"strings"
	"time"
)

// Identity is an authenticated principal as stored by the credential store.
type Identity struct {
	ID                  string     `json:"id"`
	Email               string     `json:"email"`
	DisplayName         string     `json:"display_name"`
	Role                Role       `json:"role"`
	Active              bool       `json:"active"`
	PasswordHash        string     `json:"-"`
	LastAuthenticatedAt *time.Time `json:"last_authenticated_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

// NormalizeEmail lowercases and trims an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
