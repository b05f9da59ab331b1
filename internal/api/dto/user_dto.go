package dto

import (
	"time"

	"github.com/coursehub/course-service/internal/domain"
)

// UserResponse is the public view of an account. The password hash is never
// part of any response shape.
type UserResponse struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	IsActive   bool      `json:"is_active"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// UserResponseFrom converts a resolved identity.
func UserResponseFrom(identity domain.Identity) UserResponse {
	return UserResponse{
		ID:         identity.ID,
		Email:      identity.Email,
		Role:       string(identity.Role),
		IsActive:   identity.IsActive,
		IsVerified: identity.IsVerified,
		CreatedAt:  identity.CreatedAt,
		UpdatedAt:  identity.UpdatedAt,
	}
}

// UserUpdateRequest carries the mutable account fields.
type UserUpdateRequest struct {
	Password *string `json:"password" validate:"omitempty,min=8"`
}

// MessageResponse is a minimal confirmation body.
type MessageResponse struct {
	Message string `json:"message"`
}
