package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type CategoryRepo struct{ q sqlx.ExtContext }

func NewCategoryRepo(q sqlx.ExtContext) *CategoryRepo { return &CategoryRepo{q: q} }

func (r *CategoryRepo) WithTx(tx *sqlx.Tx) *CategoryRepo { return &CategoryRepo{q: tx} }

func (r *CategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	out := []domain.Category{}
	err := sqlx.SelectContext(ctx, r.q, &out, `
  SELECT id, name, COALESCE(created_at,'') AS created_at
  FROM categories
  ORDER BY name
`)
	return out, err
}

func (r *CategoryRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var n int
	err := sqlx.GetContext(ctx, r.q, &n, `SELECT COUNT(*) FROM categories WHERE id = ?`, id)
	return n > 0, err
}
