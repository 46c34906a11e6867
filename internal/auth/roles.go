package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/washline/laundry-service/internal/domain"
	apperrors "github.com/washline/laundry-service/pkg/util/errorutil"
)

// RoleSet is the flat set of roles an operation accepts.
type RoleSet map[domain.Role]struct{}

// Roles builds a RoleSet.
func Roles(roles ...domain.Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, role := range roles {
		set[role] = struct{}{}
	}
	return set
}

// AnyRole accepts every known role.
func AnyRole() RoleSet {
	return Roles(domain.RoleCustomer, domain.RoleStaff, domain.RoleAdmin, domain.RoleSuperadmin)
}

// Has reports membership.
func (s RoleSet) Has(role domain.Role) bool {
	_, ok := s[role]
	return ok
}

// DenyReason explains a refused request.
type DenyReason string

const (
	ReasonUnauthenticated DenyReason = "unauthenticated"
	ReasonForbidden       DenyReason = "forbidden"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

// Err converts a denial into its API error. Allowed decisions return nil.
func (d Decision) Err() error {
	switch {
	case d.Allowed:
		return nil
	case d.Reason == ReasonUnauthenticated:
		return apperrors.NewUnauthenticated("authentication required")
	default:
		return apperrors.NewForbidden("insufficient role")
	}
}

// Authorize checks the principal against the allowed roles.
func Authorize(principal *Principal, allowed RoleSet) Decision {
	if principal == nil {
		return Decision{Reason: ReasonUnauthenticated}
	}
	if !allowed.Has(principal.Role) {
		return Decision{Reason: ReasonForbidden}
	}
	return Decision{Allowed: true}
}

// RequireRoles rejects the request unless the caller holds one of the roles.
func RequireRoles(roles ...domain.Role) fiber.Handler {
	allowed := Roles(roles...)
	return func(c *fiber.Ctx) error {
		principal, _ := PrincipalFromContext(c)
		if err := Authorize(principal, allowed).Err(); err != nil {
			return err
		}
		return c.Next()
	}
}

// RequireAuthenticated rejects anonymous callers.
func RequireAuthenticated() fiber.Handler {
	return RequireRoles(domain.RoleCustomer, domain.RoleStaff, domain.RoleAdmin, domain.RoleSuperadmin)
}
