// Package models defines server-side data models persisted in the database.
package models

import (
	"strings"
	"time"
)

// Role is the closed set of user roles. Access decisions dispatch on this
// type instead of comparing raw strings at call sites.
type Role string

const (
	RoleSuperAdmin Role = "superadmin"
	RoleUsuario    Role = "usuario"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleSuperAdmin || r == RoleUsuario
}

type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullname"`
	// PasswordHash is only populated by credential lookups and is cleared
	// before a User leaves the service layer. Never serialized.
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NormalizeEmail lowercases and trims an email address. Applied before
// every read and write that touches the email column.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
