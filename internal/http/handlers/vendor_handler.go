package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type VendorHandler struct {
	Catalog *services.CatalogService
}

type newProductReq struct {
	Name       string `json:"name" form:"name"`
	Price      string `json:"price" form:"price"`
	Stock      int    `json:"stock" form:"stock"`
	CategoryID int64  `json:"categoryId" form:"categoryId"`
	ImageURL   string `json:"imageUrl" form:"imageUrl"`
}

// POST /vendor/products
func (h *VendorHandler) CreateProduct(c *fiber.Ctx) error {
	var req newProductReq
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, "vendor.product.create", invalid("body", "malformed request body"))
	}
	price, ok := validate.Price(req.Price)
	if !ok {
		return respondError(c, "vendor.product.create", invalid("price", "non-negative amount with at most two decimals"))
	}
	p, err := h.Catalog.CreateProduct(c.UserContext(), ClaimsFrom(c).AccountID, services.NewProduct{
		CategoryID: req.CategoryID,
		Name:       req.Name,
		Price:      price,
		Stock:      req.Stock,
		ImageURL:   req.ImageURL,
	})
	if err != nil {
		return respondError(c, "vendor.product.create", err)
	}
	applog.Audit(c, "vendor.product.create", map[string]any{"product_id": p.ID, "slug": p.Slug})
	return c.Status(fiber.StatusCreated).JSON(viewOf(p))
}

type stockReq struct {
	Stock *int `json:"stock" form:"stock"`
}

// POST /vendor/products/:id/stock
func (h *VendorHandler) SetStock(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return respondError(c, "vendor.stock.set", invalid("id", "must be a positive integer"))
	}
	var req stockReq
	if err := c.BodyParser(&req); err != nil || req.Stock == nil {
		return respondError(c, "vendor.stock.set", invalid("stock", "required non-negative integer"))
	}
	if err := h.Catalog.SetStock(c.UserContext(), ClaimsFrom(c).AccountID, id, *req.Stock); err != nil {
		return respondError(c, "vendor.stock.set", err)
	}
	applog.Audit(c, "vendor.stock.set", map[string]any{"product_id": id, "stock": *req.Stock})
	return c.JSON(fiber.Map{"productId": id, "stock": *req.Stock})
}
