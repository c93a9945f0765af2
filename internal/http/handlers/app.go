package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"storefront/internal/config"
	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
)

// NewApp builds the fiber app with middleware and every route mounted.
func NewApp(cfg config.Config, d *Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          ErrorHandler,
		BodyLimit:             1 << 20, // 1 MiB
		DisableStartupMessage: true,
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimit,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return cfg.RateLimit <= 0 || c.Path() == "/healthz" || c.Path() == "/readyz"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(errorBody(services.KindInvalidInput, "rate limit exceeded, retry soon", nil))
		},
	}))
	app.Use(Identify(d.Verifier))

	// Health
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Get("/readyz", func(c *fiber.Ctx) error {
		if !d.Ready.Load() {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"ready": false})
		}
		if err := d.DB.PingContext(c.UserContext()); err != nil {
			applog.Error(c, "readyz.db", err, nil)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"ready": false})
		}
		return c.JSON(fiber.Map{"ready": true})
	})

	// Auth (login throttled)
	app.Post("/customers/signup", d.AuthHandler.CustomerSignup)
	app.Post("/vendors/signup", d.AuthHandler.VendorSignup)
	app.Post("/token", limiter.New(limiter.Config{
		Max:        cfg.LoginLimit,
		Expiration: cfg.LoginWindow,
		Next:       func(*fiber.Ctx) bool { return cfg.LoginLimit <= 0 },
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|login"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(errorBody(services.KindAuthInvalid, "Too many attempts. Please try again later.", nil))
		},
	}), d.AuthHandler.Token)
	app.Get("/customer-page", RequireCustomer(), d.AuthHandler.CustomerPage)

	// Catalog
	app.Get("/categories", d.CatalogHandler.Categories)
	app.Get("/products", d.CatalogHandler.Products)
	app.Get("/products/:slug", d.CatalogHandler.Product)

	// Cart, guests included
	app.Get("/cart", d.CartHandler.View)
	app.Post("/cart/items", d.CartHandler.Add)

	// Addresses & orders
	app.Get("/addresses", RequireCustomer(), d.AddressHandler.List)
	app.Post("/addresses", RequireCustomer(), d.AddressHandler.Create)
	app.Post("/orders", RequireCustomer(), d.OrderHandler.Place)
	app.Get("/orders", RequireCustomer(), d.OrderHandler.History)
	app.Get("/orders/:number", RequireRole(domain.RoleCustomer, domain.RoleAdmin), d.OrderHandler.View)

	// Vendor
	vendor := app.Group("/vendor", RequireVendor())
	vendor.Post("/products", d.VendorHandler.CreateProduct)
	vendor.Post("/products/:id/stock", d.VendorHandler.SetStock)

	// Admin
	admin := app.Group("/admin", RequireAdmin())
	admin.Get("/orders", d.AdminHandler.ListOrders)
	admin.Post("/orders/:id/status", d.AdminHandler.UpdateOrderStatus)
	admin.Post("/vendors/:id/approve", d.AdminHandler.ApproveVendor)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(errorBody(services.KindNotFound, "Page not found", nil))
	})
	return app
}
