package auth

import (
	"context"

	"github.com/tidewatch/tidewatch/internal/common/auth/permission"
)

type PermissionChecker interface {
	UserHasPermission(ctx context.Context, perm permission.Permission) bool
}

// PrincipalPermissionChecker grants permissions through group membership.
// A permission missing from the mapping is denied to everyone.
type PrincipalPermissionChecker struct {
	permissionGroupMap map[permission.Permission][]string
}

func NewPrincipalPermissionChecker(permissionGroupMap map[permission.Permission][]string) *PrincipalPermissionChecker {
	return &PrincipalPermissionChecker{permissionGroupMap: permissionGroupMap}
}

// UserHasPermission reports whether the principal in ctx belongs to any of
// the groups granted perm.
func (checker *PrincipalPermissionChecker) UserHasPermission(ctx context.Context, perm permission.Permission) bool {
	principal := GetPrincipal(ctx)
	for _, group := range checker.permissionGroupMap[perm] {
		if principal.IsInGroup(group) {
			return true
		}
	}
	return false
}
