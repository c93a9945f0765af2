package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/services"
)

var kindStatus = map[services.Kind]int{
	services.KindAuthInvalid:          fiber.StatusUnauthorized,
	services.KindAccessForbidden:      fiber.StatusForbidden,
	services.KindNotFound:             fiber.StatusNotFound,
	services.KindInvalidInput:         fiber.StatusBadRequest,
	services.KindConflict:             fiber.StatusConflict,
	services.KindEmptyCart:            fiber.StatusConflict,
	services.KindProductUnavailable:   fiber.StatusConflict,
	services.KindInsufficientStock:    fiber.StatusConflict,
	services.KindOrderNumberExhausted: fiber.StatusServiceUnavailable,
	services.KindStoreUnavailable:     fiber.StatusServiceUnavailable,
}

const storeUnavailableDetail = "Something went wrong. Please try again."

// StatusOf returns the HTTP status for an error kind.
func StatusOf(k services.Kind) int {
	if s, ok := kindStatus[k]; ok {
		return s
	}
	return fiber.StatusInternalServerError
}

func errorBody(kind services.Kind, detail string, extra fiber.Map) fiber.Map {
	e := fiber.Map{"kind": kind, "detail": detail}
	for k, v := range extra {
		e[k] = v
	}
	return fiber.Map{"error": e}
}

// respondError writes the error envelope for err and logs it under action.
// Storage failures are logged in full but reach the client only as a kind.
func respondError(c *fiber.Ctx, action string, err error) error {
	kind := services.KindOf(err)
	status := StatusOf(kind)
	detail := err.Error()
	var extra fiber.Map

	switch kind {
	case services.KindStoreUnavailable:
		detail = storeUnavailableDetail
		applog.Error(c, action+".fail", err, nil)
	case services.KindAuthInvalid:
		c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
		applog.Security(c, action+".fail", map[string]any{"kind": kind})
	case services.KindInsufficientStock:
		if errors.Is(err, services.ErrStockContention) {
			detail = services.ErrStockContention.Error()
		}
		applog.Info(c, action+".fail", map[string]any{"kind": kind, "detail": detail})
	case services.KindAccessForbidden:
		detail = "Access Forbidden"
		applog.Security(c, action+".fail", map[string]any{"kind": kind})
	default:
		applog.Info(c, action+".fail", map[string]any{"kind": kind, "detail": detail})
	}

	var stock *services.InsufficientStockError
	if errors.As(err, &stock) {
		extra = fiber.Map{
			"productId": stock.ProductID,
			"requested": stock.Requested,
			"available": stock.Available,
			"shortfall": stock.Shortfall(),
		}
	}
	var unav *services.ProductUnavailableError
	if errors.As(err, &unav) {
		extra = fiber.Map{"productId": unav.ProductID}
	}
	var inv *services.InvalidInputError
	if errors.As(err, &inv) {
		extra = fiber.Map{"field": inv.Field}
	}
	return c.Status(status).JSON(errorBody(kind, detail, extra))
}

// ErrorHandler is the app level fallback for errors no handler translated.
// fiber errors below 500 keep their status; everything else is reported as
// store_unavailable without the underlying text.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		kind := services.KindInvalidInput
		switch fe.Code {
		case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
			kind = services.KindNotFound
		case fiber.StatusUnauthorized:
			kind = services.KindAuthInvalid
		case fiber.StatusForbidden:
			kind = services.KindAccessForbidden
		}
		return c.Status(fe.Code).JSON(errorBody(kind, fe.Message, nil))
	}
	applog.Error(c, "server.error", err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(errorBody(services.KindStoreUnavailable, storeUnavailableDetail, nil))
}

func invalid(field, reason string) error {
	return &services.InvalidInputError{Field: field, Reason: reason}
}
