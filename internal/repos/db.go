package repos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	applog "storefront/internal/log"
)

// DefaultLockTimeout is how long a connection waits on the sqlite write lock
// before giving up with SQLITE_BUSY.
const DefaultLockTimeout = 5 * time.Second

func OpenDB(dsn string) (*sqlx.DB, error) {
	return OpenDBWithLockTimeout(dsn, DefaultLockTimeout)
}

func OpenDBWithLockTimeout(dsn string, lockTimeout time.Duration) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", withPragmas(dsn, lockTimeout))
	if err != nil {
		return nil, err
	}
	if isMemory(dsn) {
		// every connection to :memory: is its own database
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}
	if err := seedAccounts(db); err != nil {
		return nil, err
	}
	return db, nil
}

func isMemory(dsn string) bool {
	return strings.HasPrefix(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// withPragmas appends per-connection settings: foreign keys, a bounded busy
// wait and BEGIN IMMEDIATE so writers serialize at transaction start.
func withPragmas(dsn string, lockTimeout time.Duration) string {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	params := []string{
		"_pragma=foreign_keys(1)",
		fmt.Sprintf("_pragma=busy_timeout(%d)", lockTimeout.Milliseconds()),
		"_txlock=immediate",
	}
	if !isMemory(dsn) {
		params = append(params, "_pragma=journal_mode(WAL)")
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

// Store hands out transactions. Every WithTx call owns its transaction and
// releases it on all paths.
type Store struct{ db *sqlx.DB }

func NewStore(db *sqlx.DB) *Store { return &Store{db: db} }

func (s *Store) DB() *sqlx.DB { return s.db }

// WithTx runs fn inside a transaction. The transaction commits only when fn
// returns nil; errors, panics and context cancellation roll it back.
func (s *Store) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	if err = ctx.Err(); err != nil {
		return err
	}
	return tx.Commit()
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
-- Credentials, one table per role
CREATE TABLE IF NOT EXISTS customers(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_customers_email ON customers(LOWER(email));

CREATE TABLE IF NOT EXISTS admins(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  approved INTEGER NOT NULL DEFAULT 1,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_admins_email ON admins(LOWER(email));

CREATE TABLE IF NOT EXISTS vendors(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  approved INTEGER NOT NULL DEFAULT 0,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_vendors_email ON vendors(LOWER(email));

-- Addresses
CREATE TABLE IF NOT EXISTS addresses(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  customer_id INTEGER NOT NULL REFERENCES customers(id) ON DELETE CASCADE,
  type TEXT NOT NULL CHECK (type IN ('primary','shipping','billing')),
  line1 TEXT NOT NULL,
  city TEXT NOT NULL,
  postal_code TEXT NOT NULL,
  country TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_addresses_customer ON addresses(customer_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_addresses_primary ON addresses(customer_id) WHERE type = 'primary';

-- Catalog
CREATE TABLE IF NOT EXISTS categories(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name_nocase ON categories(LOWER(name));

CREATE TABLE IF NOT EXISTS products(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE RESTRICT,
  vendor_id INTEGER NOT NULL REFERENCES vendors(id) ON DELETE RESTRICT,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  price TEXT NOT NULL CHECK (CAST(price AS REAL) >= 0),
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id);
CREATE INDEX IF NOT EXISTS idx_products_vendor   ON products(vendor_id);
CREATE INDEX IF NOT EXISTS idx_products_name     ON products(LOWER(name));

CREATE TABLE IF NOT EXISTS product_images(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  url TEXT NOT NULL,
  is_primary INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_product_images_product ON product_images(product_id);

-- Carts
CREATE TABLE IF NOT EXISTS cart_items(
  customer_id INTEGER NOT NULL REFERENCES customers(id) ON DELETE CASCADE,
  product_id  INTEGER NOT NULL,
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  created_at TEXT,
  updated_at TEXT,
  PRIMARY KEY (customer_id, product_id)
);

-- Orders
CREATE TABLE IF NOT EXISTS orders(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  order_number TEXT NOT NULL UNIQUE,
  customer_id INTEGER NOT NULL REFERENCES customers(id),
  address_id INTEGER NOT NULL REFERENCES addresses(id),
  total_amount TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','paid','shipped','cancelled')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_orders_customer   ON orders(customer_id);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);

CREATE TABLE IF NOT EXISTS order_items(
  order_id   INTEGER NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  product_id INTEGER NOT NULL REFERENCES products(id),
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  unit_price TEXT NOT NULL,
  PRIMARY KEY (order_id, product_id)
);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM categories`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	applog.L().Info("seed.catalog")

	hash, err := bcrypt.GenerateFromPassword([]byte("Passw0rd!"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	tx.MustExec(`INSERT INTO categories(id,name) VALUES
	  (1,'Consoles'),
	  (2,'Radios'),
	  (3,'Accessories')`)

	tx.MustExec(`INSERT INTO vendors(id,name,email,password_hash,approved) VALUES
	  (1,'Retro Supply','vendor@storefront.test',?,1)`, string(hash))

	tx.MustExec(`INSERT INTO products(id,category_id,vendor_id,name,slug,price,stock) VALUES
	  (1,1,1,'Game Boy Color','game-boy-color','129.99',8),
	  (2,1,1,'NES Console','nes-console','199.00',5),
	  (3,2,1,'Philco 1939','philco-1939','349.50',2),
	  (4,3,1,'Link Cable','link-cable','10.00',0)`)

	tx.MustExec(`INSERT INTO product_images(product_id,url,is_primary) VALUES
	  (1,'/images/game-boy-color/main.jpg',1),
	  (2,'/images/nes-console/main.jpg',1),
	  (3,'/images/philco-1939/main.jpg',1)`)

	return tx.Commit()
}

// seedAccounts ensures demo customer and admin accounts exist (idempotent).
func seedAccounts(db *sqlx.DB) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("Passw0rd!"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	customers := []struct{ Name, Email string }{
		{"Alice", "alice@storefront.test"},
		{"Bob", "bob@storefront.test"},
	}
	for _, c := range customers {
		if _, err := tx.Exec(`
			INSERT INTO customers(name,email,password_hash)
			SELECT ?,?,? WHERE NOT EXISTS (SELECT 1 FROM customers WHERE LOWER(email)=LOWER(?))
		`, c.Name, c.Email, string(hash), c.Email); err != nil {
			return err
		}
	}
	// Alice can check out straight away
	if _, err := tx.Exec(`
		INSERT INTO addresses(customer_id,type,line1,city,postal_code,country)
		SELECT c.id,'primary','1 Main St','College Park','20742','US'
		FROM customers c
		WHERE LOWER(c.email)='alice@storefront.test'
		  AND NOT EXISTS (SELECT 1 FROM addresses a WHERE a.customer_id=c.id)
	`); err != nil {
		return err
	}
	if _, err := tx.Exec(`
		INSERT INTO admins(name,email,password_hash,approved)
		SELECT 'Admin','admin@storefront.test',?,1
		WHERE NOT EXISTS (SELECT 1 FROM admins WHERE LOWER(email)='admin@storefront.test')
	`, string(hash)); err != nil {
		return err
	}

	return tx.Commit()
}
