package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type OrderRepo struct{ q sqlx.ExtContext }

func NewOrderRepo(q sqlx.ExtContext) *OrderRepo { return &OrderRepo{q: q} }

func (r *OrderRepo) WithTx(tx *sqlx.Tx) *OrderRepo { return &OrderRepo{q: tx} }

const orderCols = `id, order_number, customer_id, address_id, total_amount, status, created_at`

// Create inserts a new order header and returns its id.
func (r *OrderRepo) Create(ctx context.Context, o domain.Order) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
	  INSERT INTO orders
	    (order_number, customer_id, address_id, total_amount, status, created_at)
	  VALUES
	    (?,            ?,           ?,          ?,            ?,      CURRENT_TIMESTAMP)
	`, o.OrderNumber, o.CustomerID, o.AddressID, o.Total.String(), o.Status)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// InsertLine inserts a single order line.
func (r *OrderRepo) InsertLine(ctx context.Context, l domain.OrderLine) error {
	_, err := r.q.ExecContext(ctx, `
	  INSERT INTO order_items(order_id, product_id, quantity, unit_price)
	  VALUES(?, ?, ?, ?)
	`, l.OrderID, l.ProductID, l.Quantity, l.UnitPrice.String())
	return err
}

func (r *OrderRepo) NumberExists(ctx context.Context, number string) (bool, error) {
	var n int
	err := sqlx.GetContext(ctx, r.q, &n, `SELECT COUNT(*) FROM orders WHERE order_number = ?`, number)
	return n > 0, err
}

func (r *OrderRepo) Get(ctx context.Context, id int64) (domain.Order, error) {
	var o domain.Order
	err := sqlx.GetContext(ctx, r.q, &o, `SELECT `+orderCols+` FROM orders WHERE id = ?`, id)
	return o, err
}

func (r *OrderRepo) ByNumber(ctx context.Context, number string) (domain.Order, []domain.OrderLine, error) {
	var o domain.Order
	if err := sqlx.GetContext(ctx, r.q, &o, `SELECT `+orderCols+` FROM orders WHERE order_number = ?`, number); err != nil {
		return domain.Order{}, nil, err
	}
	lines, err := r.Lines(ctx, o.ID)
	if err != nil {
		return domain.Order{}, nil, err
	}
	return o, lines, nil
}

func (r *OrderRepo) Lines(ctx context.Context, orderID int64) ([]domain.OrderLine, error) {
	out := []domain.OrderLine{}
	err := sqlx.SelectContext(ctx, r.q, &out, `
		SELECT oi.order_id, oi.product_id, COALESCE(p.name,'') AS name, oi.quantity, oi.unit_price
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ?
		ORDER BY oi.product_id
	`, orderID)
	return out, err
}

func (r *OrderRepo) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error) {
	out := []domain.Order{}
	err := sqlx.SelectContext(ctx, r.q, &out, `
		SELECT `+orderCols+`
		FROM orders
		WHERE customer_id = ?
		ORDER BY datetime(created_at) DESC, id DESC
	`, customerID)
	return out, err
}

func (r *OrderRepo) ListLatest(ctx context.Context, limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	out := []domain.Order{}
	err := sqlx.SelectContext(ctx, r.q, &out, `
		SELECT `+orderCols+`
		FROM orders
		ORDER BY datetime(created_at) DESC, id DESC
		LIMIT ?
	`, limit)
	return out, err
}

func (r *OrderRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.q, &n, `SELECT COUNT(*) FROM orders`)
	return n, err
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, id int64, status string) (bool, error) {
	res, err := r.q.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
