package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/events"
	applog "storefront/internal/log"
	"storefront/internal/repos"
)

// Address steps returned instead of an order when checkout cannot proceed yet.
const (
	NextAddressRequired          = "address_required"
	NextAddressSelectionRequired = "address_selection_required"
)

type Placement struct {
	OrderID     int64           `json:"orderId"`
	OrderNumber string          `json:"orderNumber"`
	Total       decimal.Decimal `json:"total"`
	AddressID   int64           `json:"addressId"`
}

// CheckoutResult holds either the pending address step or the placed order.
type CheckoutResult struct {
	Next      string
	Placement *Placement
}

type CheckoutService struct {
	Store     *repos.Store
	Addresses *repos.AddressRepo
	Carts     *repos.CartRepo
	Prods     *repos.ProductRepo
	Orders    *repos.OrderRepo
	Numbers   *OrderNumbers
	Events    events.Publisher
	Timeout   time.Duration
}

func NewCheckoutService(db *sqlx.DB, pub events.Publisher, timeout time.Duration) *CheckoutService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &CheckoutService{
		Store:     repos.NewStore(db),
		Addresses: repos.NewAddressRepo(db),
		Carts:     repos.NewCartRepo(db),
		Prods:     repos.NewProductRepo(db),
		Orders:    repos.NewOrderRepo(db),
		Numbers:   NewOrderNumbers(),
		Events:    pub,
		Timeout:   timeout,
	}
}

// ResolveAddress picks the delivery address. addressID 0 means the caller did
// not choose one, in which case the primary address is used if there is one.
// A non-empty next step means checkout has to stop and ask the customer.
func (s *CheckoutService) ResolveAddress(ctx context.Context, customerID, addressID int64) (domain.Address, string, error) {
	list, err := s.Addresses.List(ctx, customerID)
	if err != nil {
		return domain.Address{}, "", err
	}
	if len(list) == 0 {
		return domain.Address{}, NextAddressRequired, nil
	}
	if addressID != 0 {
		for _, a := range list {
			if a.ID == addressID {
				return a, "", nil
			}
		}
		return domain.Address{}, "", fmt.Errorf("address %d: %w", addressID, ErrNotFound)
	}
	for _, a := range list {
		if a.Type == domain.AddressPrimary {
			return a, "", nil
		}
	}
	return domain.Address{}, NextAddressSelectionRequired, nil
}

// Checkout runs the address step and, when an address is resolved, places the order.
func (s *CheckoutService) Checkout(ctx context.Context, customerID, addressID int64) (CheckoutResult, error) {
	addr, next, err := s.ResolveAddress(ctx, customerID, addressID)
	if err != nil {
		return CheckoutResult{}, err
	}
	if next != "" {
		return CheckoutResult{Next: next}, nil
	}
	pl, err := s.Place(ctx, customerID, addr.ID)
	if err != nil {
		return CheckoutResult{}, err
	}
	return CheckoutResult{Placement: &pl}, nil
}

// Place converts the customer's cart into a pending order delivered to
// addressID. Reading the cart, checking stock, writing the order and its
// lines, decrementing stock and clearing the cart happen in one transaction.
func (s *CheckoutService) Place(ctx context.Context, customerID, addressID int64) (Placement, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	var pl Placement
	err := s.Store.WithTx(ctx, func(tx *sqlx.Tx) error {
		carts := s.Carts.WithTx(tx)
		prods := s.Prods.WithTx(tx)
		orders := s.Orders.WithTx(tx)

		lines, err := carts.Lines(ctx, customerID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		products := make([]domain.Product, len(lines))
		for i, l := range lines {
			p, err := prods.Get(ctx, l.ProductID)
			if errors.Is(err, sql.ErrNoRows) {
				return &ProductUnavailableError{ProductID: l.ProductID}
			}
			if err != nil {
				return err
			}
			products[i] = p
		}

		total := decimal.Zero
		for i, l := range lines {
			total = total.Add(products[i].Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
		}

		for i, l := range lines {
			if products[i].Stock < l.Quantity {
				return &InsufficientStockError{ProductID: l.ProductID, Requested: l.Quantity, Available: products[i].Stock}
			}
		}

		number, err := s.Numbers.Next(ctx, orders.NumberExists)
		if err != nil {
			return err
		}

		orderID, err := orders.Create(ctx, domain.Order{
			OrderNumber: number,
			CustomerID:  customerID,
			AddressID:   addressID,
			Total:       total,
			Status:      domain.OrderPending,
		})
		if err != nil {
			return err
		}
		for i, l := range lines {
			if err := orders.InsertLine(ctx, domain.OrderLine{
				OrderID:   orderID,
				ProductID: l.ProductID,
				Quantity:  l.Quantity,
				UnitPrice: products[i].Price,
			}); err != nil {
				return err
			}
		}

		for _, l := range lines {
			err := prods.DecrementStock(ctx, l.ProductID, l.Quantity)
			if errors.Is(err, repos.ErrStockGuard) {
				available := 0
				if p, gerr := prods.Get(ctx, l.ProductID); gerr == nil {
					available = p.Stock
				}
				return &InsufficientStockError{ProductID: l.ProductID, Requested: l.Quantity, Available: available}
			}
			if err != nil {
				return err
			}
		}

		if err := carts.Clear(ctx, customerID); err != nil {
			return err
		}

		pl = Placement{OrderID: orderID, OrderNumber: number, Total: total, AddressID: addressID}
		return nil
	})
	if err != nil {
		if KindOf(err) == KindStoreUnavailable && isLockTimeout(err) {
			applog.L().Warn("order.place.contention", zap.Int64("customer_id", customerID), zap.Error(err))
			return Placement{}, ErrStockContention
		}
		return Placement{}, err
	}

	// best effort, the order is already committed
	if perr := s.Events.PublishOrderPlaced(context.WithoutCancel(ctx), events.OrderPlaced{
		OrderID:     pl.OrderID,
		OrderNumber: pl.OrderNumber,
		CustomerID:  customerID,
		Total:       pl.Total,
		PlacedAt:    time.Now().UTC(),
	}); perr != nil {
		applog.L().Warn("order.event.publish.fail", zap.String("order_number", pl.OrderNumber), zap.Error(perr))
	}
	return pl, nil
}
