package repos

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

// ErrStockGuard is returned when a guarded decrement matched no row, i.e.
// the product had less stock than requested.
var ErrStockGuard = errors.New("insufficient stock")

type ProductRepo struct{ q sqlx.ExtContext }

func NewProductRepo(q sqlx.ExtContext) *ProductRepo { return &ProductRepo{q: q} }

// WithTx returns a repo bound to tx.
func (r *ProductRepo) WithTx(tx *sqlx.Tx) *ProductRepo { return &ProductRepo{q: tx} }

const productCols = `
    p.id, p.category_id, p.vendor_id, p.name, p.slug, p.price, p.stock,
    COALESCE((SELECT url FROM product_images i WHERE i.product_id = p.id AND i.is_primary = 1 LIMIT 1), '') AS primary_image,
    p.created_at`

func (r *ProductRepo) Get(ctx context.Context, id int64) (domain.Product, error) {
	var p domain.Product
	err := sqlx.GetContext(ctx, r.q, &p, `SELECT `+productCols+` FROM products p WHERE p.id = ?`, id)
	return p, err
}

func (r *ProductRepo) BySlug(ctx context.Context, slug string) (domain.Product, error) {
	var p domain.Product
	err := sqlx.GetContext(ctx, r.q, &p, `SELECT `+productCols+` FROM products p WHERE p.slug = ?`, slug)
	return p, err
}

// GetMany returns the products that still exist among ids, keyed by id.
func (r *ProductRepo) GetMany(ctx context.Context, ids []int64) (map[int64]domain.Product, error) {
	out := make(map[int64]domain.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(`SELECT `+productCols+` FROM products p WHERE p.id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var rows []domain.Product
	if err := sqlx.SelectContext(ctx, r.q, &rows, r.q.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, p := range rows {
		out[p.ID] = p
	}
	return out, nil
}

func (r *ProductRepo) Search(ctx context.Context, q string, categoryID int64, limit, offset int) ([]domain.Product, error) {
	where := `1 = 1`
	args := []any{}
	if q != "" {
		where += ` AND LOWER(p.name) LIKE ?`
		args = append(args, "%"+q+"%")
	}
	if categoryID != 0 {
		where += ` AND p.category_id = ?`
		args = append(args, categoryID)
	}
	args = append(args, limit, offset)

	out := []domain.Product{}
	err := sqlx.SelectContext(ctx, r.q, &out, `
	  SELECT `+productCols+`
	  FROM products p
	  WHERE `+where+`
	  ORDER BY p.created_at DESC, p.id DESC
	  LIMIT ? OFFSET ?`, args...)
	return out, err
}

func (r *ProductRepo) SlugTaken(ctx context.Context, slug string) (bool, error) {
	var n int
	err := sqlx.GetContext(ctx, r.q, &n, `SELECT COUNT(*) FROM products WHERE slug = ?`, slug)
	return n > 0, err
}

// Create inserts a product and, if imageURL is set, its primary image.
func (r *ProductRepo) Create(ctx context.Context, p domain.Product, imageURL string) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
	  INSERT INTO products(category_id, vendor_id, name, slug, price, stock, created_at)
	  VALUES(?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, p.CategoryID, p.VendorID, p.Name, p.Slug, p.Price.String(), p.Stock)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if imageURL != "" {
		if _, err := r.q.ExecContext(ctx, `
		  INSERT INTO product_images(product_id, url, is_primary) VALUES(?, ?, 1)
		`, id, imageURL); err != nil {
			return 0, err
		}
	}
	return id, nil
}

// SetStock overwrites stock for a product owned by vendorID.
func (r *ProductRepo) SetStock(ctx context.Context, vendorID, productID int64, stock int) (bool, error) {
	res, err := r.q.ExecContext(ctx, `UPDATE products SET stock = ? WHERE id = ? AND vendor_id = ?`, stock, productID, vendorID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// DecrementStock subtracts qty only if enough stock exists.
func (r *ProductRepo) DecrementStock(ctx context.Context, productID int64, qty int) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE products
		SET stock = stock - ?
		WHERE id = ? AND stock >= ?
	`, qty, productID, qty)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStockGuard
	}
	return nil
}
