package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/services"
)

type OrderHandler struct {
	Checkout *services.CheckoutService
	Orders   *services.OrderQueryService
}

type placeReq struct {
	AddressID int64 `json:"addressId" form:"addressId"`
}

// POST /orders
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	cl := ClaimsFrom(c)
	var req placeReq
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return respondError(c, "order.place", invalid("addressId", "must be an integer"))
		}
	}
	if req.AddressID < 0 {
		return respondError(c, "order.place", invalid("addressId", "must be positive"))
	}

	res, err := h.Checkout.Checkout(c.UserContext(), cl.AccountID, req.AddressID)
	if err != nil {
		return respondError(c, "order.place", err)
	}
	if res.Next != "" {
		applog.Info(c, "order.place.address", map[string]any{"next": res.Next})
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"next": res.Next})
	}

	pl := res.Placement
	applog.Audit(c, "order.place", map[string]any{
		"order_id":     pl.OrderID,
		"order_number": pl.OrderNumber,
		"total":        pl.Total.StringFixed(2),
	})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"orderId":     pl.OrderID,
		"orderNumber": pl.OrderNumber,
		"total":       pl.Total.StringFixed(2),
		"addressId":   pl.AddressID,
	})
}

// GET /orders
func (h *OrderHandler) History(c *fiber.Ctx) error {
	list, err := h.Orders.History(c.UserContext(), ClaimsFrom(c).AccountID)
	if err != nil {
		return respondError(c, "order.history", err)
	}
	return c.JSON(fiber.Map{"orders": list})
}

// GET /orders/:number
func (h *OrderHandler) View(c *fiber.Ctx) error {
	number := c.Params("number")
	o, err := h.Orders.ByNumber(c.UserContext(), ClaimsFrom(c), number)
	if err != nil {
		if services.KindOf(err) == services.KindNotFound {
			applog.Security(c, "access.denied.order", map[string]any{"order_number": number})
		}
		return respondError(c, "order.view", err)
	}
	return c.JSON(o)
}
