package repos

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

// AccountRepo reads and writes the per-role credential tables.
type AccountRepo struct{ DB *sqlx.DB }

func NewAccountRepo(db *sqlx.DB) *AccountRepo { return &AccountRepo{DB: db} }

func table(role string) (string, error) {
	switch role {
	case domain.RoleCustomer:
		return "customers", nil
	case domain.RoleAdmin:
		return "admins", nil
	case domain.RoleVendor:
		return "vendors", nil
	}
	return "", fmt.Errorf("unknown role %q", role)
}

func (r *AccountRepo) ByEmail(ctx context.Context, role, email string) (*domain.Account, error) {
	t, err := table(role)
	if err != nil {
		return nil, err
	}
	approved := "approved"
	if role == domain.RoleCustomer {
		approved = "1 AS approved"
	}
	var a domain.Account
	err = r.DB.GetContext(ctx, &a, `SELECT id,email,name,password_hash,`+approved+` FROM `+t+` WHERE LOWER(email)=LOWER(?)`, email)
	if err != nil {
		return nil, err
	}
	a.Role = role
	return &a, nil
}

func (r *AccountRepo) ByID(ctx context.Context, role string, id int64) (*domain.Account, error) {
	t, err := table(role)
	if err != nil {
		return nil, err
	}
	approved := "approved"
	if role == domain.RoleCustomer {
		approved = "1 AS approved"
	}
	var a domain.Account
	err = r.DB.GetContext(ctx, &a, `SELECT id,email,name,password_hash,`+approved+` FROM `+t+` WHERE id=?`, id)
	if err != nil {
		return nil, err
	}
	a.Role = role
	return &a, nil
}

func (r *AccountRepo) EmailTaken(ctx context.Context, role, email string) (bool, error) {
	t, err := table(role)
	if err != nil {
		return false, err
	}
	var n int
	err = r.DB.GetContext(ctx, &n, `SELECT COUNT(*) FROM `+t+` WHERE LOWER(email)=LOWER(?)`, email)
	return n > 0, err
}

func (r *AccountRepo) Create(ctx context.Context, role, name, email, hash string) (int64, error) {
	t, err := table(role)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx, `INSERT INTO `+t+`(name,email,password_hash) VALUES(?,?,?)`, name, email, hash)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ApproveVendor flips the approval flag; false means no such vendor.
func (r *AccountRepo) ApproveVendor(ctx context.Context, id int64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `UPDATE vendors SET approved=1 WHERE id=?`, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
