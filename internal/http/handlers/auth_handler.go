package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/auth"
	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type AuthHandler struct {
	Auth   *services.AuthService
	Tokens *auth.Issuer
}

type signupReq struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (h *AuthHandler) signup(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req signupReq
		if err := c.BodyParser(&req); err != nil {
			return respondError(c, "auth.signup", invalid("body", "malformed request body"))
		}
		id, err := h.Auth.Signup(c.UserContext(), role, req.Name, req.Email, req.Password)
		if err != nil {
			return respondError(c, "auth.signup", err)
		}
		applog.Audit(c, "auth.signup", map[string]any{"role": role, "account_id": id})
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id, "email": req.Email, "type": role})
	}
}

// POST /customers/signup
func (h *AuthHandler) CustomerSignup(c *fiber.Ctx) error { return h.signup(domain.RoleCustomer)(c) }

// POST /vendors/signup
func (h *AuthHandler) VendorSignup(c *fiber.Ctx) error { return h.signup(domain.RoleVendor)(c) }

// Token implements the OAuth2 password grant on POST /token. A customer's
// guest cart is folded into the stored cart before the token is returned.
func (h *AuthHandler) Token(c *fiber.Ctx) error {
	email := c.FormValue("username")
	pass := c.FormValue("password")
	if _, ok := validate.Email(email); !ok || pass == "" {
		applog.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": "bad_format"})
		return badCredentials(c)
	}

	guest := guestLines(c, h.Tokens)
	tok, acct, merged, err := h.Auth.Login(c.UserContext(), email, pass, guest)
	if err != nil {
		if errors.Is(err, services.ErrBadCreds) {
			applog.Security(c, "auth.login.fail", map[string]any{"email": email})
			return badCredentials(c)
		}
		return respondError(c, "auth.login", err)
	}
	if acct.Role == domain.RoleCustomer && len(guest) > 0 {
		expireGuestCart(c)
	}

	applog.Audit(c, "auth.login.success", map[string]any{"email": acct.Email, "type": acct.Role, "merged_lines": merged})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"access_token": tok,
		"token_type":   "bearer",
		"expires_in":   int(h.Tokens.TTL() / time.Second),
	})
}

func badCredentials(c *fiber.Ctx) error {
	c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	return c.Status(fiber.StatusUnauthorized).JSON(errorBody(services.KindAuthInvalid, "Incorrect username or password", nil))
}

// GET /customer-page
func (h *AuthHandler) CustomerPage(c *fiber.Ctx) error {
	acct, err := h.Auth.Profile(c.UserContext(), ClaimsFrom(c))
	if err != nil {
		return respondError(c, "customer.page", err)
	}
	return c.JSON(fiber.Map{"customer_name": acct.Name, "email": acct.Email})
}
