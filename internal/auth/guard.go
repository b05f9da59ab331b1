package auth

import (
	"fmt"

	"github.com/coursehub/course-service/internal/domain"
	apperrors "github.com/coursehub/course-service/pkg/util"
)

// Policy selects how role membership and resource ownership combine into an
// authorization decision.
type Policy string

const (
	// PolicyRoleAndOwner requires a permitted role AND ownership. This matches
	// the historical behavior of the platform and is the default.
	PolicyRoleAndOwner Policy = "role_and_owner"
	// PolicyRoleOrOwner allows privileged roles to act on any user and every
	// user to act on their own record.
	PolicyRoleOrOwner Policy = "role_or_owner"
	// PolicyOwnerOnly ignores roles entirely.
	PolicyOwnerOnly Policy = "owner_only"
	// PolicyRoleOnly ignores ownership entirely.
	PolicyRoleOnly Policy = "role_only"
)

// ParsePolicy validates a configured policy name.
func ParsePolicy(name string) (Policy, error) {
	switch Policy(name) {
	case PolicyRoleAndOwner, PolicyRoleOrOwner, PolicyOwnerOnly, PolicyRoleOnly:
		return Policy(name), nil
	}
	return "", fmt.Errorf("unknown access policy %q", name)
}

// Guard is the authorization decision point for user-record access.
type Guard struct {
	permitted map[domain.Role]struct{}
	policy    Policy
}

// NewGuard builds a guard with an explicit permitted-role set.
func NewGuard(policy Policy, permitted ...domain.Role) *Guard {
	set := make(map[domain.Role]struct{}, len(permitted))
	for _, role := range permitted {
		set[role] = struct{}{}
	}
	return &Guard{permitted: set, policy: policy}
}

// Authorize decides allow/deny for the caller acting on the record owned by
// ownerEmail. A deny is always a permission error, never a not-found:
// resource existence is the caller's concern and is checked separately.
func (g *Guard) Authorize(caller domain.Identity, ownerEmail string) error {
	_, hasRole := g.permitted[caller.Role]
	isOwner := caller.Email == ownerEmail

	var allowed bool
	switch g.policy {
	case PolicyRoleOrOwner:
		allowed = hasRole || isOwner
	case PolicyOwnerOnly:
		allowed = isOwner
	case PolicyRoleOnly:
		allowed = hasRole
	default:
		allowed = hasRole && isOwner
	}

	if !allowed {
		return apperrors.NewForbidden("permission denied")
	}
	return nil
}
