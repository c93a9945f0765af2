package handlers_test

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestRoleGuards(t *testing.T) {
	h := newHarness(t)
	alice := h.login(t, "alice@storefront.test")
	vendor := h.login(t, "vendor@storefront.test")
	admin := h.login(t, "admin@storefront.test")

	cases := []struct {
		name, method, path, token string
		code                      int
	}{
		{"anonymous orders", "GET", "/orders", "", fiber.StatusUnauthorized},
		{"anonymous customer page", "GET", "/customer-page", "", fiber.StatusUnauthorized},
		{"vendor on customer page", "GET", "/customer-page", vendor, fiber.StatusForbidden},
		{"customer on admin", "GET", "/admin/orders", alice, fiber.StatusForbidden},
		{"vendor on admin", "GET", "/admin/orders", vendor, fiber.StatusForbidden},
		{"customer on vendor", "POST", "/vendor/products", alice, fiber.StatusForbidden},
		{"admin on admin", "GET", "/admin/orders", admin, fiber.StatusOK},
		{"customer page", "GET", "/customer-page", alice, fiber.StatusOK},
		{"garbage token on public route", "GET", "/categories", "garbage", fiber.StatusUnauthorized},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := h.do(t, c.method, c.path, nil, c.token)
			assert.Equal(t, c.code, r.StatusCode, r.Raw)
			if c.code == fiber.StatusForbidden {
				assert.Equal(t, "access_forbidden", r.errKind())
				assert.Equal(t, "Access Forbidden", r.Body["error"].(map[string]any)["detail"])
			}
		})
	}
	assert.Contains(t, h.actions(zapcore.WarnLevel), "access.denied")
}

func TestVendorApprovalFlow(t *testing.T) {
	h := newHarness(t)
	r := h.do(t, "POST", "/vendors/signup", map[string]any{"name": "Radio Hut", "email": "hut@example.com", "password": "Str0ng!pass"}, "")
	require.Equal(t, fiber.StatusCreated, r.StatusCode, r.Raw)
	vendorID := r.Body["id"].(float64)

	tokenFor := func() string {
		r := h.token(t, "hut@example.com", "Str0ng!pass")
		require.Equal(t, fiber.StatusCreated, r.StatusCode, r.Raw)
		return r.Body["access_token"].(string)
	}
	product := map[string]any{"name": "Zenith Trans-Oceanic", "price": "89.90", "stock": 3, "categoryId": 2}

	r = h.do(t, "POST", "/vendor/products", product, tokenFor())
	assert.Equal(t, fiber.StatusForbidden, r.StatusCode, "unapproved vendor")

	admin := h.login(t, "admin@storefront.test")
	r = h.do(t, "POST", "/admin/vendors/"+ftoa(vendorID)+"/approve", nil, admin)
	require.Equal(t, fiber.StatusOK, r.StatusCode, r.Raw)

	tok := tokenFor()
	r = h.do(t, "POST", "/vendor/products", product, tok)
	require.Equal(t, fiber.StatusCreated, r.StatusCode, r.Raw)
	assert.Equal(t, "zenith-trans-oceanic", r.Body["slug"])
	assert.Equal(t, "in stock", r.Body["stockStatus"])
	pid := r.Body["id"].(float64)

	r = h.do(t, "POST", "/vendor/products/"+ftoa(pid)+"/stock", map[string]any{"stock": 0}, tok)
	require.Equal(t, fiber.StatusOK, r.StatusCode, r.Raw)

	r = h.do(t, "GET", "/products/zenith-trans-oceanic", nil, "")
	require.Equal(t, fiber.StatusOK, r.StatusCode)
	assert.Equal(t, "out of stock", r.Body["stockStatus"])

	// the seeded vendor does not own it
	other := h.login(t, "vendor@storefront.test")
	r = h.do(t, "POST", "/vendor/products/"+ftoa(pid)+"/stock", map[string]any{"stock": 9}, other)
	assert.Equal(t, fiber.StatusNotFound, r.StatusCode)

	r = h.do(t, "POST", "/vendor/products", map[string]any{"name": "Bad", "price": "-1", "categoryId": 2}, tok)
	assert.Equal(t, fiber.StatusBadRequest, r.StatusCode)
}

func TestAdminOrderStatus(t *testing.T) {
	h := newHarness(t)
	alice := h.login(t, "alice@storefront.test")
	h.do(t, "POST", "/cart/items", map[string]any{"productId": 2, "quantity": 1}, alice)
	r := h.do(t, "POST", "/orders", nil, alice)
	require.Equal(t, fiber.StatusCreated, r.StatusCode, r.Raw)
	orderID := r.Body["orderId"].(float64)
	number := r.Body["orderNumber"].(string)

	admin := h.login(t, "admin@storefront.test")
	r = h.do(t, "POST", "/admin/orders/"+ftoa(orderID)+"/status", map[string]any{"status": "paid"}, admin)
	require.Equal(t, fiber.StatusOK, r.StatusCode, r.Raw)
	r = h.do(t, "POST", "/admin/orders/"+ftoa(orderID)+"/status", map[string]any{"status": "lost"}, admin)
	assert.Equal(t, fiber.StatusBadRequest, r.StatusCode)

	r = h.do(t, "GET", "/admin/orders", nil, admin)
	require.Equal(t, fiber.StatusOK, r.StatusCode)
	assert.Equal(t, float64(1), r.Body["count"])

	r = h.do(t, "GET", "/orders/"+number, nil, alice)
	assert.Equal(t, "paid", r.Body["status"])
	assert.Contains(t, h.actions(zapcore.InfoLevel), "admin.orders.update")
}
