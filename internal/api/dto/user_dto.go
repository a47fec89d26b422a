package dto

import (
	"time"

	"github.com/spec-kit/exchange-service/internal/domain"
)

// RegisterRequest payload.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Age      int    `json:"age"`
	Location string `json:"location"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries an issued token.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the public view of a member.
type UserResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Age       int         `json:"age"`
	Location  string      `json:"location"`
	Credits   int         `json:"credits"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

// SkillResponse is a taxonomy tag.
type SkillResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProfileResponse bundles a user with their skills.
type ProfileResponse struct {
	User   UserResponse    `json:"user"`
	Skills []SkillResponse `json:"skills"`
}
