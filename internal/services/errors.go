package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"storefront/internal/auth"
)

// Kind is the stable, client facing name of a failure.
type Kind string

const (
	KindAuthInvalid          Kind = "auth_invalid"
	KindAccessForbidden      Kind = "access_forbidden"
	KindNotFound             Kind = "not_found"
	KindInvalidInput         Kind = "invalid_input"
	KindConflict             Kind = "conflict"
	KindEmptyCart            Kind = "empty_cart"
	KindProductUnavailable   Kind = "product_unavailable"
	KindInsufficientStock    Kind = "insufficient_stock"
	KindOrderNumberExhausted Kind = "order_number_exhausted"
	KindStoreUnavailable     Kind = "store_unavailable"
)

var (
	ErrBadCreds             = errors.New("incorrect username or password")
	ErrAccessForbidden      = errors.New("access forbidden")
	ErrNotFound             = errors.New("not found")
	ErrEmailTaken           = errors.New("email already exists")
	ErrSlugTaken            = errors.New("no free slug for this product name")
	ErrInvalidQuantity      = errors.New("quantity must be a positive integer")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrOrderNumberExhausted = errors.New("could not allocate a unique order number")
	// ErrStockContention means the stock lock could not be acquired in time.
	// It is reported in the insufficient stock class.
	ErrStockContention = errors.New("stock is busy, please retry")
)

// InvalidInputError names the offending field.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string { return e.Field + ": " + e.Reason }

type ProductUnavailableError struct {
	ProductID int64
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("product %d is no longer available", e.ProductID)
}

type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Shortfall() int { return e.Requested - e.Available }

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d (short by %d)",
		e.ProductID, e.Requested, e.Available, e.Shortfall())
}

// KindOf classifies err. Anything unrecognised is a store failure, which is
// safe to retry from the client because nothing was committed.
func KindOf(err error) Kind {
	var (
		inv   *InvalidInputError
		unav  *ProductUnavailableError
		stock *InsufficientStockError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, auth.ErrAuthInvalid):
		return KindAuthInvalid
	case errors.Is(err, ErrBadCreds):
		return KindAuthInvalid
	case errors.Is(err, ErrAccessForbidden):
		return KindAccessForbidden
	case errors.Is(err, ErrNotFound), errors.Is(err, sql.ErrNoRows):
		return KindNotFound
	case errors.As(err, &inv), errors.Is(err, ErrInvalidQuantity):
		return KindInvalidInput
	case errors.Is(err, ErrEmailTaken), errors.Is(err, ErrSlugTaken):
		return KindConflict
	case errors.Is(err, ErrEmptyCart):
		return KindEmptyCart
	case errors.As(err, &unav):
		return KindProductUnavailable
	case errors.As(err, &stock), errors.Is(err, ErrStockContention):
		return KindInsufficientStock
	case errors.Is(err, ErrOrderNumberExhausted):
		return KindOrderNumberExhausted
	}
	return KindStoreUnavailable
}

// isLockTimeout reports whether err means we gave up waiting on the store
// write lock, either sqlite's busy timeout or our own deadline.
func isLockTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code() & 0xff
		return code == sqlite3.SQLITE_BUSY || code == sqlite3.SQLITE_LOCKED
	}
	return false
}
