package rbac

import (
	"github.com/pulseboard/pulseboard-backend/internal/domain"
	"github.com/pulseboard/pulseboard-backend/internal/pkg/errors"
)

var roleHierarchy = map[string]int{
	domain.RoleOwner:   3,
	domain.RoleManager: 2,
	domain.RoleMember:  1,
}

// HasPermission reports whether userRole sits at or above requiredRole in the
// owner >= manager >= member order. Unknown roles never pass.
func HasPermission(userRole, requiredRole string) bool {
	userRank, ok := roleHierarchy[userRole]
	if !ok {
		return false
	}
	requiredRank, ok := roleHierarchy[requiredRole]
	if !ok {
		return false
	}
	return userRank >= requiredRank
}

// Require returns ErrForbidden when userRole is below requiredRole.
func Require(userRole, requiredRole string) error {
	if !HasPermission(userRole, requiredRole) {
		return errors.ErrForbidden
	}
	return nil
}
