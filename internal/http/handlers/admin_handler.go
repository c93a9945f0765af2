package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type AdminHandler struct {
	Orders *services.OrderQueryService
	Auth   *services.AuthService
}

// GET /admin/orders
func (h *AdminHandler) ListOrders(c *fiber.Ctx) error {
	list, total, err := h.Orders.Latest(c.UserContext(), c.QueryInt("limit", 100))
	if err != nil {
		return respondError(c, "admin.orders.list", err)
	}
	return c.JSON(fiber.Map{"orders": list, "count": total})
}

type statusReq struct {
	Status string `json:"status" form:"status"`
}

// POST /admin/orders/:id/status
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return respondError(c, "admin.orders.update", invalid("id", "must be a positive integer"))
	}
	var req statusReq
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, "admin.orders.update", invalid("body", "malformed request body"))
	}
	if err := h.Orders.SetStatus(c.UserContext(), id, req.Status); err != nil {
		return respondError(c, "admin.orders.update", err)
	}
	applog.Audit(c, "admin.orders.update", map[string]any{"order_id": id, "status": req.Status})
	return c.JSON(fiber.Map{"orderId": id, "status": req.Status})
}

// POST /admin/vendors/:id/approve
func (h *AdminHandler) ApproveVendor(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return respondError(c, "admin.vendors.approve", invalid("id", "must be a positive integer"))
	}
	if err := h.Auth.ApproveVendor(c.UserContext(), id); err != nil {
		return respondError(c, "admin.vendors.approve", err)
	}
	applog.Audit(c, "admin.vendors.approve", map[string]any{"vendor_id": id})
	return c.JSON(fiber.Map{"vendorId": id, "approved": true})
}
