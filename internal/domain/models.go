package domain

import "github.com/shopspring/decimal"

type Category struct {
	ID        int64  `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	CreatedAt string `db:"created_at" json:"-"`
}

type Product struct {
	ID           int64           `db:"id" json:"id"`
	CategoryID   int64           `db:"category_id" json:"categoryId"`
	VendorID     int64           `db:"vendor_id" json:"vendorId"`
	Name         string          `db:"name" json:"name"`
	Slug         string          `db:"slug" json:"slug"`
	Price        decimal.Decimal `db:"price" json:"price"`
	Stock        int             `db:"stock" json:"stock"`
	PrimaryImage string          `db:"primary_image" json:"image,omitempty"`
	CreatedAt    string          `db:"created_at" json:"-"`
}

const (
	InStock    = "in stock"
	OutOfStock = "out of stock"
)

// StockStatus reports the customer facing availability label for a stock count.
func StockStatus(stock int) string {
	if stock > 0 {
		return InStock
	}
	return OutOfStock
}

// CartLine is one (product, quantity) pairing, either persisted for a
// customer or carried in a guest cart token.
type CartLine struct {
	ProductID int64 `db:"product_id" json:"productId"`
	Quantity  int   `db:"quantity" json:"quantity"`
}

type Address struct {
	ID         int64  `db:"id" json:"id"`
	CustomerID int64  `db:"customer_id" json:"-"`
	Type       string `db:"type" json:"type"` // primary | shipping | billing
	Line1      string `db:"line1" json:"line1"`
	City       string `db:"city" json:"city"`
	PostalCode string `db:"postal_code" json:"postalCode"`
	Country    string `db:"country" json:"country"`
}

const AddressPrimary = "primary"

type Order struct {
	ID          int64           `db:"id" json:"orderId"`
	OrderNumber string          `db:"order_number" json:"orderNumber"`
	CustomerID  int64           `db:"customer_id" json:"customerId"`
	AddressID   int64           `db:"address_id" json:"addressId"`
	Total       decimal.Decimal `db:"total_amount" json:"total"`
	Status      string          `db:"status" json:"status"`
	CreatedAt   string          `db:"created_at" json:"createdAt"`
}

type OrderLine struct {
	OrderID   int64           `db:"order_id" json:"-"`
	ProductID int64           `db:"product_id" json:"productId"`
	Name      string          `db:"name" json:"name"`
	Quantity  int             `db:"quantity" json:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price" json:"unitPrice"`
}

const (
	OrderPending   = "pending"
	OrderPaid      = "paid"
	OrderShipped   = "shipped"
	OrderCancelled = "cancelled"
)
