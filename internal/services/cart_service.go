package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/repos"
)

// AddItem adds qty of productID to lines. An existing line grows, otherwise a
// new one is appended. lines is not modified.
func AddItem(lines []domain.CartLine, productID int64, qty int) ([]domain.CartLine, error) {
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}
	out := make([]domain.CartLine, 0, len(lines)+1)
	found := false
	for _, l := range lines {
		if l.ProductID == productID {
			l.Quantity += qty
			found = true
		}
		out = append(out, l)
	}
	if !found {
		out = append(out, domain.CartLine{ProductID: productID, Quantity: qty})
	}
	return out, nil
}

// MergeLines applies AddItem for every guest line against persisted.
// Guest lines with a non-positive quantity are ignored.
func MergeLines(persisted, guest []domain.CartLine) []domain.CartLine {
	out := append([]domain.CartLine(nil), persisted...)
	for _, g := range guest {
		if merged, err := AddItem(out, g.ProductID, g.Quantity); err == nil {
			out = merged
		}
	}
	return out
}

type CartViewLine struct {
	ProductID   int64           `json:"productId"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Stock       int             `json:"stock"`
	StockStatus string          `json:"stockStatus"`
	Image       string          `json:"image,omitempty"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type CartView struct {
	Lines []CartViewLine  `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

// BuildView projects lines against the catalog. Lines whose product lookup
// fails are left out of the projection.
func BuildView(lines []domain.CartLine, lookup func(int64) (domain.Product, bool)) CartView {
	v := CartView{Lines: []CartViewLine{}, Total: decimal.Zero}
	for _, l := range lines {
		p, ok := lookup(l.ProductID)
		if !ok {
			continue
		}
		sub := p.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		v.Lines = append(v.Lines, CartViewLine{
			ProductID:   p.ID,
			Name:        p.Name,
			Price:       p.Price,
			Quantity:    l.Quantity,
			Stock:       p.Stock,
			StockStatus: domain.StockStatus(p.Stock),
			Image:       p.PrimaryImage,
			Subtotal:    sub,
		})
		v.Total = v.Total.Add(sub)
	}
	return v
}

type CartService struct {
	Carts *repos.CartRepo
	Prods *repos.ProductRepo
}

func NewCartService(carts *repos.CartRepo, prods *repos.ProductRepo) *CartService {
	return &CartService{Carts: carts, Prods: prods}
}

func (s *CartService) ensureProduct(ctx context.Context, productID int64) error {
	if _, err := s.Prods.Get(ctx, productID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("product %d: %w", productID, ErrNotFound)
		}
		return err
	}
	return nil
}

// Add puts qty of productID into the customer's persisted cart.
func (s *CartService) Add(ctx context.Context, customerID, productID int64, qty int) (CartView, error) {
	if qty < 1 {
		return CartView{}, ErrInvalidQuantity
	}
	if err := s.ensureProduct(ctx, productID); err != nil {
		return CartView{}, err
	}
	if err := s.Carts.AddItem(ctx, customerID, productID, qty); err != nil {
		return CartView{}, err
	}
	return s.View(ctx, customerID)
}

// AddGuest is Add for a cart held by the client; it returns the new lines to
// be re-signed into the guest token.
func (s *CartService) AddGuest(ctx context.Context, lines []domain.CartLine, productID int64, qty int) ([]domain.CartLine, CartView, error) {
	if qty < 1 {
		return nil, CartView{}, ErrInvalidQuantity
	}
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, CartView{}, err
	}
	updated, err := AddItem(lines, productID, qty)
	if err != nil {
		return nil, CartView{}, err
	}
	v, err := s.Project(ctx, updated)
	return updated, v, err
}

func (s *CartService) View(ctx context.Context, customerID int64) (CartView, error) {
	lines, err := s.Carts.Lines(ctx, customerID)
	if err != nil {
		return CartView{}, err
	}
	return s.Project(ctx, lines)
}

// Project joins lines with current catalog data.
func (s *CartService) Project(ctx context.Context, lines []domain.CartLine) (CartView, error) {
	ids := make([]int64, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	products, err := s.Prods.GetMany(ctx, ids)
	if err != nil {
		return CartView{}, err
	}
	return BuildView(lines, func(id int64) (domain.Product, bool) {
		p, ok := products[id]
		return p, ok
	}), nil
}
