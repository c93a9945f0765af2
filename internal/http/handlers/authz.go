package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/auth"
	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
)

const localsClaims = "claims"

func bearerToken(c *fiber.Ctx) string {
	h := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// Identify verifies the bearer token when one is sent and attaches the
// claims. Requests without a token continue anonymously; a bad token is
// rejected outright.
func Identify(v *auth.Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok := bearerToken(c)
		if tok == "" {
			return c.Next()
		}
		claims, err := v.Verify(c.UserContext(), tok)
		if err != nil {
			return respondError(c, "auth.token", auth.ErrAuthInvalid)
		}
		c.Locals(localsClaims, claims)
		c.Locals(applog.LocalsAccountID, claims.AccountID)
		return c.Next()
	}
}

// ClaimsFrom returns the verified claims of the request, or nil for guests.
func ClaimsFrom(c *fiber.Ctx) *auth.Claims {
	cl, _ := c.Locals(localsClaims).(*auth.Claims)
	return cl
}

// RequireRole lets through authenticated, approved accounts of one of roles.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cl := ClaimsFrom(c)
		if cl == nil {
			return respondError(c, "auth.required", auth.ErrAuthInvalid)
		}
		allowed := false
		for _, r := range roles {
			if cl.Role == r {
				allowed = true
				break
			}
		}
		if !allowed || (cl.Role != domain.RoleCustomer && !cl.Approved) {
			applog.Security(c, "access.denied", map[string]any{"role": cl.Role, "need": roles, "approved": cl.Approved})
			return c.Status(fiber.StatusForbidden).JSON(errorBody(services.KindAccessForbidden, "Access Forbidden", nil))
		}
		return c.Next()
	}
}

func RequireCustomer() fiber.Handler { return RequireRole(domain.RoleCustomer) }

func RequireAdmin() fiber.Handler { return RequireRole(domain.RoleAdmin) }

func RequireVendor() fiber.Handler { return RequireRole(domain.RoleVendor) }
