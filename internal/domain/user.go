package domain

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
	RoleVendor   = "vendor"
)

// Account is a row from one of the per-role credential tables.
type Account struct {
	ID       int64  `db:"id"`
	Email    string `db:"email"`
	Name     string `db:"name"`
	Hash     string `db:"password_hash"`
	Approved bool   `db:"approved"`
	Role     string `db:"-"`
}
