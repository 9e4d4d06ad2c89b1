// Package access holds the pure access-control decisions. No I/O, no side
// effects: callers load the resource and pass its owner id in.
package access

import (
	"github.com/avolkov/taskhub/internal/common"
	"github.com/avolkov/taskhub/internal/server/models"
)

// CanAccess reports whether the identity may view, update, or delete a
// resource owned by resourceOwnerID. Superadmins may access everything;
// everyone else only their own rows.
func CanAccess(identity *models.User, resourceOwnerID string) bool {
	if identity == nil {
		return false
	}
	if identity.Role == models.RoleSuperAdmin {
		return true
	}
	return identity.ID == resourceOwnerID
}

// RequireRole gates an operation on an exact role. A missing identity is
// the same Forbidden as a role mismatch.
func RequireRole(identity *models.User, role models.Role) error {
	if identity == nil {
		return common.ErrorForbidden
	}
	if identity.Role != role {
		return common.ErrorForbidden
	}
	return nil
}
