package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type CatalogHandler struct {
	Catalog *services.CatalogService
}

type productView struct {
	domain.Product
	StockStatus string `json:"stockStatus"`
}

func viewOf(p domain.Product) productView {
	return productView{Product: p, StockStatus: domain.StockStatus(p.Stock)}
}

// GET /categories
func (h *CatalogHandler) Categories(c *fiber.Ctx) error {
	cats, err := h.Catalog.ListCategories(c.UserContext())
	if err != nil {
		return respondError(c, "catalog.categories", err)
	}
	return c.JSON(fiber.Map{"categories": cats})
}

// GET /products?category=&q=&page=
func (h *CatalogHandler) Products(c *fiber.Ctx) error {
	var catID int64
	if raw := c.Query("category"); raw != "" {
		id, ok := validate.ID(raw)
		if !ok {
			return respondError(c, "catalog.products", invalid("category", "must be a positive integer"))
		}
		catID = id
	}
	q := ""
	if raw := c.Query("q"); raw != "" {
		v, ok := validate.Q(raw)
		if !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "q"})
			return respondError(c, "catalog.products", invalid("q", "letters, digits, spaces and - ' _ only"))
		}
		q = v
	}
	page := c.QueryInt("page", 1)

	list, err := h.Catalog.Search(c.UserContext(), q, catID, page, 12)
	if err != nil {
		return respondError(c, "catalog.products", err)
	}
	out := make([]productView, 0, len(list))
	for _, p := range list {
		out = append(out, viewOf(p))
	}
	return c.JSON(fiber.Map{"products": out, "page": page})
}

// GET /products/:slug
func (h *CatalogHandler) Product(c *fiber.Ctx) error {
	slug, ok := validate.Slug(c.Params("slug"))
	if !ok {
		return respondError(c, "catalog.product", services.ErrNotFound)
	}
	p, err := h.Catalog.BySlug(c.UserContext(), slug)
	if err != nil {
		return respondError(c, "catalog.product", err)
	}
	return c.JSON(viewOf(p))
}
