package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type AddressRepo struct{ q sqlx.ExtContext }

func NewAddressRepo(q sqlx.ExtContext) *AddressRepo { return &AddressRepo{q: q} }

func (r *AddressRepo) WithTx(tx *sqlx.Tx) *AddressRepo { return &AddressRepo{q: tx} }

const addressCols = `id, customer_id, type, line1, city, postal_code, country`

func (r *AddressRepo) List(ctx context.Context, customerID int64) ([]domain.Address, error) {
	out := []domain.Address{}
	err := sqlx.SelectContext(ctx, r.q, &out, `
	  SELECT `+addressCols+` FROM addresses WHERE customer_id = ? ORDER BY id
	`, customerID)
	return out, err
}

// Get returns the address only if it belongs to customerID.
func (r *AddressRepo) Get(ctx context.Context, customerID, id int64) (domain.Address, error) {
	var a domain.Address
	err := sqlx.GetContext(ctx, r.q, &a, `
	  SELECT `+addressCols+` FROM addresses WHERE id = ? AND customer_id = ?
	`, id, customerID)
	return a, err
}

// DemotePrimary turns the customer's current primary address into a shipping one.
func (r *AddressRepo) DemotePrimary(ctx context.Context, customerID int64) error {
	_, err := r.q.ExecContext(ctx, `
	  UPDATE addresses SET type = 'shipping' WHERE customer_id = ? AND type = 'primary'
	`, customerID)
	return err
}

func (r *AddressRepo) Create(ctx context.Context, a domain.Address) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
	  INSERT INTO addresses(customer_id, type, line1, city, postal_code, country)
	  VALUES(?, ?, ?, ?, ?, ?)
	`, a.CustomerID, a.Type, a.Line1, a.City, a.PostalCode, a.Country)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
