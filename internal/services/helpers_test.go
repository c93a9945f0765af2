package services_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	"storefront/internal/repos"
)

// seeded accounts
const (
	alice int64 = 1
	bob   int64 = 2
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func filedb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(filepath.Join(t.TempDir(), "shop.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func addProduct(t *testing.T, db *sqlx.DB, name, price string, stock int) int64 {
	t.Helper()
	id, err := repos.NewProductRepo(db).Create(context.Background(), domain.Product{
		CategoryID: 1,
		VendorID:   1,
		Name:       name,
		Slug:       "test-" + name,
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
	}, "")
	require.NoError(t, err)
	return id
}

func addToCart(t *testing.T, db *sqlx.DB, customerID, productID int64, qty int) {
	t.Helper()
	require.NoError(t, repos.NewCartRepo(db).AddItem(context.Background(), customerID, productID, qty))
}

func stockOf(t *testing.T, db *sqlx.DB, productID int64) int {
	t.Helper()
	p, err := repos.NewProductRepo(db).Get(context.Background(), productID)
	require.NoError(t, err)
	return p.Stock
}

func orderCount(t *testing.T, db *sqlx.DB) int {
	t.Helper()
	n, err := repos.NewOrderRepo(db).Count(context.Background())
	require.NoError(t, err)
	return n
}

func cartOf(t *testing.T, db *sqlx.DB, customerID int64) []domain.CartLine {
	t.Helper()
	lines, err := repos.NewCartRepo(db).Lines(context.Background(), customerID)
	require.NoError(t, err)
	return lines
}
