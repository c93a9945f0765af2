package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type CartRepo struct{ q sqlx.ExtContext }

func NewCartRepo(q sqlx.ExtContext) *CartRepo { return &CartRepo{q: q} }

func (r *CartRepo) WithTx(tx *sqlx.Tx) *CartRepo { return &CartRepo{q: tx} }

// Lines returns the persisted cart lines of a customer, product id order.
func (r *CartRepo) Lines(ctx context.Context, customerID int64) ([]domain.CartLine, error) {
	out := []domain.CartLine{}
	err := sqlx.SelectContext(ctx, r.q, &out, `
	  SELECT product_id, quantity
	  FROM cart_items
	  WHERE customer_id = ?
	  ORDER BY product_id
	`, customerID)
	return out, err
}

// AddItem adds qty to the customer's line for productID, creating it if needed.
func (r *CartRepo) AddItem(ctx context.Context, customerID, productID int64, qty int) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO cart_items(customer_id, product_id, quantity, created_at, updated_at)
		VALUES(?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(customer_id, product_id) DO UPDATE
		SET quantity = cart_items.quantity + excluded.quantity, updated_at = CURRENT_TIMESTAMP
	`, customerID, productID, qty)
	return err
}

func (r *CartRepo) Clear(ctx context.Context, customerID int64) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM cart_items WHERE customer_id = ?`, customerID)
	return err
}

// Merge folds guest lines into the persisted cart. Lines for products that no
// longer exist are skipped. Returns how many lines were applied.
func (r *CartRepo) Merge(ctx context.Context, customerID int64, lines []domain.CartLine) (int, error) {
	applied := 0
	for _, l := range lines {
		res, err := r.q.ExecContext(ctx, `
			INSERT INTO cart_items(customer_id, product_id, quantity, created_at, updated_at)
			SELECT ?, p.id, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP
			FROM products p WHERE p.id = ?
			ON CONFLICT(customer_id, product_id) DO UPDATE SET
			  quantity = cart_items.quantity + excluded.quantity,
			  updated_at = CURRENT_TIMESTAMP
		`, customerID, l.Quantity, l.ProductID)
		if err != nil {
			return applied, err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			applied++
		}
	}
	return applied, nil
}
