package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
)

type AddressHandler struct {
	Addresses *services.AddressService
}

type addressReq struct {
	Type       string `json:"type" form:"type"`
	Line1      string `json:"line1" form:"line1"`
	City       string `json:"city" form:"city"`
	PostalCode string `json:"postalCode" form:"postalCode"`
	Country    string `json:"country" form:"country"`
}

// GET /addresses
func (h *AddressHandler) List(c *fiber.Ctx) error {
	list, err := h.Addresses.List(c.UserContext(), ClaimsFrom(c).AccountID)
	if err != nil {
		return respondError(c, "address.list", err)
	}
	return c.JSON(fiber.Map{"addresses": list})
}

// POST /addresses
func (h *AddressHandler) Create(c *fiber.Ctx) error {
	var req addressReq
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, "address.create", invalid("body", "malformed request body"))
	}
	a, err := h.Addresses.Create(c.UserContext(), domain.Address{
		CustomerID: ClaimsFrom(c).AccountID,
		Type:       req.Type,
		Line1:      req.Line1,
		City:       req.City,
		PostalCode: req.PostalCode,
		Country:    req.Country,
	})
	if err != nil {
		return respondError(c, "address.create", err)
	}
	applog.Audit(c, "address.create", map[string]any{"address_id": a.ID, "type": a.Type})
	return c.Status(fiber.StatusCreated).JSON(a)
}
