package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidewatch/tidewatch/internal/common/auth"
	"github.com/tidewatch/tidewatch/internal/common/auth/permission"
)

// ErrNoPermission is returned when an authenticated client asks for an
// action its groups do not grant. Error messages look like
// "viewer" does not have permission refresh_jobs
type ErrNoPermission struct {
	// Principal that attempted the action.
	Principal auth.Principal
	// One entry per reason the action was denied.
	Reasons []string
}

func (err *ErrNoPermission) Error() string {
	name := err.Principal.GetName()
	var b strings.Builder
	for i, reason := range err.Reasons {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%q %s", name, reason)
	}
	return b.String()
}

// checkPermission gates handler actions on perm. A failure comes back as an
// *ErrNoPermission naming the principal, which the middleware maps to 403.
func checkPermission(checker auth.PermissionChecker, ctx context.Context, perm permission.Permission) error {
	if !checker.UserHasPermission(ctx, perm) {
		return &ErrNoPermission{
			Principal: auth.GetPrincipal(ctx),
			Reasons: []string{
				fmt.Sprintf("does not have permission %s", perm),
			},
		}
	}
	return nil
}
