package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	"storefront/internal/repos"
	"storefront/internal/services"
)

func TestAddItem(t *testing.T) {
	lines := []domain.CartLine{{ProductID: 1, Quantity: 3}}

	got, err := services.AddItem(lines, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []domain.CartLine{{ProductID: 1, Quantity: 5}}, got)
	assert.Equal(t, 3, lines[0].Quantity, "input must not be modified")

	got, err = services.AddItem(got, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, []domain.CartLine{{ProductID: 1, Quantity: 5}, {ProductID: 2, Quantity: 1}}, got)

	for _, bad := range []int{0, -1} {
		_, err := services.AddItem(lines, 1, bad)
		assert.ErrorIs(t, err, services.ErrInvalidQuantity)
	}
}

func TestMergeLines(t *testing.T) {
	persisted := []domain.CartLine{{ProductID: 7, Quantity: 3}}
	guest := []domain.CartLine{{ProductID: 7, Quantity: 2}, {ProductID: 8, Quantity: 1}, {ProductID: 9, Quantity: 0}}

	got := services.MergeLines(persisted, guest)
	assert.Equal(t, []domain.CartLine{{ProductID: 7, Quantity: 5}, {ProductID: 8, Quantity: 1}}, got)
}

func TestBuildView(t *testing.T) {
	catalog := map[int64]domain.Product{
		1: {ID: 1, Name: "X", Price: decimal.RequireFromString("10.00"), Stock: 4, PrimaryImage: "/x.jpg"},
		2: {ID: 2, Name: "Y", Price: decimal.RequireFromString("5.00"), Stock: 0},
	}
	lines := []domain.CartLine{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}, {ProductID: 3, Quantity: 9}}

	v := services.BuildView(lines, func(id int64) (domain.Product, bool) {
		p, ok := catalog[id]
		return p, ok
	})
	require.Len(t, v.Lines, 2, "gone products are left out")
	assert.Equal(t, domain.InStock, v.Lines[0].StockStatus)
	assert.Equal(t, domain.OutOfStock, v.Lines[1].StockStatus)
	assert.Equal(t, "/x.jpg", v.Lines[0].Image)
	assert.True(t, v.Lines[0].Subtotal.Equal(decimal.RequireFromString("20.00")))
	assert.True(t, v.Total.Equal(decimal.RequireFromString("25.00")), "total %s", v.Total)
}

func TestCartService_AddAndView(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	svc := services.NewCartService(repos.NewCartRepo(db), repos.NewProductRepo(db))

	_, err := svc.Add(ctx, bob, 1, 2)
	require.NoError(t, err)
	v, err := svc.Add(ctx, bob, 1, 1)
	require.NoError(t, err)
	require.Len(t, v.Lines, 1)
	assert.Equal(t, 3, v.Lines[0].Quantity)
	assert.True(t, v.Total.Equal(decimal.RequireFromString("389.97")), "total %s", v.Total)

	_, err = svc.Add(ctx, bob, 999, 1)
	assert.Equal(t, services.KindNotFound, services.KindOf(err))

	_, err = svc.Add(ctx, bob, 1, 0)
	assert.ErrorIs(t, err, services.ErrInvalidQuantity)

	// a product removed from the catalog vanishes from the view, not from storage
	addToCart(t, db, bob, 555, 1)
	v, err = svc.View(ctx, bob)
	require.NoError(t, err)
	assert.Len(t, v.Lines, 1)
	assert.Len(t, cartOf(t, db, bob), 2)
}

func TestCartService_AddGuest(t *testing.T) {
	db := memdb(t)
	svc := services.NewCartService(repos.NewCartRepo(db), repos.NewProductRepo(db))

	lines, v, err := svc.AddGuest(context.Background(), []domain.CartLine{{ProductID: 2, Quantity: 1}}, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []domain.CartLine{{ProductID: 2, Quantity: 3}}, lines)
	assert.True(t, v.Total.Equal(decimal.RequireFromString("597.00")), "total %s", v.Total)
	assert.Empty(t, cartOf(t, db, alice))
}
