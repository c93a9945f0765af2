package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func lineQty(t *testing.T, r reply, productID float64) float64 {
	t.Helper()
	lines, _ := r.Body["lines"].([]any)
	for _, l := range lines {
		m := l.(map[string]any)
		if m["productId"] == productID {
			return m["quantity"].(float64)
		}
	}
	return 0
}

func TestGuestCartMergedOnLogin(t *testing.T) {
	h := newHarness(t)
	tok := h.login(t, "alice@storefront.test")
	r := h.do(t, "POST", "/cart/items", map[string]any{"productId": 1, "quantity": 3}, tok)
	require.Equal(t, fiber.StatusOK, r.StatusCode, r.Raw)
	assert.Nil(t, r.cookie("guest_cart"), "customers do not get a guest cookie")

	// a guest adds the same product
	r = h.do(t, "POST", "/cart/items", map[string]any{"productId": 1, "quantity": 2}, "")
	require.Equal(t, fiber.StatusOK, r.StatusCode, r.Raw)
	guest := r.cookie("guest_cart")
	require.NotNil(t, guest)
	assert.True(t, guest.HttpOnly)

	r = h.do(t, "GET", "/cart", nil, "", &http.Cookie{Name: guest.Name, Value: guest.Value})
	assert.Equal(t, float64(2), lineQty(t, r, 1))
	assert.Equal(t, "259.98", r.Body["total"])

	r = h.token(t, "alice@storefront.test", password, &http.Cookie{Name: guest.Name, Value: guest.Value})
	require.Equal(t, fiber.StatusCreated, r.StatusCode, r.Raw)
	assert.Equal(t, "bearer", r.Body["token_type"])
	expired := r.cookie("guest_cart")
	require.NotNil(t, expired, "guest cookie is cleared")
	assert.Empty(t, expired.Value)

	tok, _ = r.Body["access_token"].(string)
	r = h.do(t, "GET", "/cart", nil, tok)
	require.Equal(t, fiber.StatusOK, r.StatusCode)
	assert.Equal(t, float64(5), lineQty(t, r, 1))
	assert.Equal(t, "649.95", r.Body["total"])
}

func TestGuestCartTamperedCookieIsEmpty(t *testing.T) {
	h := newHarness(t)
	r := h.do(t, "GET", "/cart", nil, "", &http.Cookie{Name: "guest_cart", Value: "eyJhbGciOiJub25lIn0.e30."})
	require.Equal(t, fiber.StatusOK, r.StatusCode)
	assert.Empty(t, r.Body["lines"])
	assert.Contains(t, h.actions(zapcore.WarnLevel), "cart.guest.invalid")
}

func TestAddItemValidation(t *testing.T) {
	h := newHarness(t)
	cases := []struct {
		name string
		body any
		kind string
		code int
	}{
		{"zero quantity", map[string]any{"productId": 1, "quantity": 0}, "invalid_input", 400},
		{"negative quantity", map[string]any{"productId": 1, "quantity": -2}, "invalid_input", 400},
		{"fractional quantity", map[string]any{"productId": 1, "quantity": 2.5}, "invalid_input", 400},
		{"missing product", map[string]any{"quantity": 1}, "invalid_input", 400},
		{"unknown product", map[string]any{"productId": 404, "quantity": 1}, "not_found", 404},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := h.do(t, "POST", "/cart/items", c.body, "")
			assert.Equal(t, c.code, r.StatusCode, r.Raw)
			assert.Equal(t, c.kind, r.errKind())
		})
	}
}

func TestDefaultQuantityIsOne(t *testing.T) {
	h := newHarness(t)
	r := h.do(t, "POST", "/cart/items", map[string]any{"productId": 2}, "")
	require.Equal(t, fiber.StatusOK, r.StatusCode, r.Raw)
	assert.Equal(t, float64(1), lineQty(t, r, 2))
}
