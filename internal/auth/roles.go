package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/quote-service/internal/domain"
)

// roleCapabilities maps staff roles to the quote capabilities they hold.
// Agents read quotes but cannot create or revise them.
var roleCapabilities = map[domain.StaffRole][]domain.Capability{
	domain.StaffRoleAgent:    {},
	domain.StaffRoleTeamLead: {domain.CapabilityQuotesCreate, domain.CapabilityQuotesUpdate},
	domain.StaffRoleAdmin:    {domain.CapabilityQuotesCreate, domain.CapabilityQuotesUpdate},
}

// CapabilitiesForRole returns the capability set granted to a role.
func CapabilitiesForRole(role domain.StaffRole) []domain.Capability {
	return roleCapabilities[role]
}

// PermissionContextFor resolves a principal's capability set once, for
// passing into every lifecycle operation.
func PermissionContextFor(principal *Principal) domain.PermissionContext {
	if principal == nil || principal.Staff == nil {
		return domain.NewPermissionContext("")
	}
	return domain.NewPermissionContext(principal.Staff.ID, CapabilitiesForRole(principal.Staff.Role)...)
}

// RequireStaff ensures a staff member is authenticated.
func RequireStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Staff == nil {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		return c.Next()
	}
}
