package dto

import (
	"time"

	"github.com/atelierworks/atelier-backend/models"
	"github.com/google/uuid"
)

// Principal is the authenticated identity plus resolved tenant and role for
// one request. Derived per-request by the auth middleware, never persisted.
type Principal struct {
	UserID   uuid.UUID   `json:"userId"`
	TenantID uuid.UUID   `json:"tenantId"`
	Role     models.Role `json:"role"`
}

// IsAdmin reports whether the principal carries the admin role
func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// RegisterRequest represents the signup payload. TenantName is the new
// organization created alongside the identity.
type RegisterRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	Name       string `json:"name"`
	TenantName string `json:"tenantName" binding:"required"`
}

// LoginRequest represents the login payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned on successful login/registration
type AuthResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      models.User `json:"user"`
	TenantID  uuid.UUID   `json:"tenantId"`
	Role      models.Role `json:"role"`
}
