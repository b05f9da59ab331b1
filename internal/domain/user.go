package domain

import "time"

// Role enumerates account roles on the platform.
type Role string

const (
	RoleUser    Role = "USER"
	RoleManager Role = "MANAGER"
	RoleAdmin   Role = "ADMIN"
)

// PrivilegedRoles lists the roles permitted to manage user records.
func PrivilegedRoles() []Role {
	return []Role{RoleAdmin, RoleManager}
}

// User is the domain model for platform accounts.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         Role
	IsActive     bool
	IsVerified   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity is the resolved, credential-free view of a user. Authorization
// decisions are made against it, never against raw token claims.
type Identity struct {
	ID         string
	Email      string
	Role       Role
	IsActive   bool
	IsVerified bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IdentityOf strips credentials from a user record.
func IdentityOf(u *User) Identity {
	return Identity{
		ID:         u.ID,
		Email:      u.Email,
		Role:       u.Role,
		IsActive:   u.IsActive,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
