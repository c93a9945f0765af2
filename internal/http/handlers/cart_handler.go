package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/auth"
	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

const guestCartCookie = "guest_cart"

type CartHandler struct {
	Cart   *services.CartService
	Tokens *auth.Issuer
}

// guestLines reads the signed guest cart cookie. A missing or tampered
// cookie is an empty cart.
func guestLines(c *fiber.Ctx, tokens *auth.Issuer) []domain.CartLine {
	raw := c.Cookies(guestCartCookie)
	if raw == "" {
		return nil
	}
	lines, err := tokens.VerifyGuestCart(raw)
	if err != nil {
		applog.Security(c, "cart.guest.invalid", nil)
		return nil
	}
	return lines
}

func setGuestCart(c *fiber.Ctx, tokens *auth.Issuer, lines []domain.CartLine) error {
	tok, err := tokens.IssueGuestCart(lines)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     guestCartCookie,
		Value:    tok,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(30 * 24 * time.Hour),
	})
	return nil
}

func expireGuestCart(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     guestCartCookie,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
}

type addItemReq struct {
	ProductID int64 `json:"productId" form:"productId"`
	Quantity  *int  `json:"quantity" form:"quantity"`
}

// POST /cart/items
func (h *CartHandler) Add(c *fiber.Ctx) error {
	var req addItemReq
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, "cart.add", invalid("body", "productId and quantity must be integers"))
	}
	if req.ProductID < 1 {
		return respondError(c, "cart.add", invalid("productId", "required"))
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	if qty < 1 || qty > validate.MaxQty {
		return respondError(c, "cart.add", services.ErrInvalidQuantity)
	}

	if cl := ClaimsFrom(c); cl != nil {
		if !cl.IsCustomer() {
			return respondError(c, "cart.add", services.ErrAccessForbidden)
		}
		view, err := h.Cart.Add(c.UserContext(), cl.AccountID, req.ProductID, qty)
		if err != nil {
			return respondError(c, "cart.add", err)
		}
		applog.Audit(c, "cart.add", map[string]any{"product_id": req.ProductID, "qty": qty})
		return c.JSON(view)
	}

	lines, view, err := h.Cart.AddGuest(c.UserContext(), guestLines(c, h.Tokens), req.ProductID, qty)
	if err != nil {
		return respondError(c, "cart.add", err)
	}
	if err := setGuestCart(c, h.Tokens, lines); err != nil {
		return respondError(c, "cart.add", err)
	}
	applog.Info(c, "cart.add.guest", map[string]any{"product_id": req.ProductID, "qty": qty})
	return c.JSON(view)
}

// GET /cart
func (h *CartHandler) View(c *fiber.Ctx) error {
	if cl := ClaimsFrom(c); cl != nil {
		if !cl.IsCustomer() {
			return respondError(c, "cart.view", services.ErrAccessForbidden)
		}
		view, err := h.Cart.View(c.UserContext(), cl.AccountID)
		if err != nil {
			return respondError(c, "cart.view", err)
		}
		return c.JSON(view)
	}
	view, err := h.Cart.Project(c.UserContext(), guestLines(c, h.Tokens))
	if err != nil {
		return respondError(c, "cart.view", err)
	}
	return c.JSON(view)
}
