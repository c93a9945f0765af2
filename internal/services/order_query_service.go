package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"storefront/internal/auth"
	"storefront/internal/domain"
	"storefront/internal/repos"
	"storefront/internal/validate"
)

type OrderDetail struct {
	domain.Order
	Lines []domain.OrderLine `json:"lines"`
}

// OrderQueryService serves order history and the admin order desk.
type OrderQueryService struct {
	Orders *repos.OrderRepo
}

func NewOrderQueryService(db *sqlx.DB) *OrderQueryService {
	return &OrderQueryService{Orders: repos.NewOrderRepo(db)}
}

func (s *OrderQueryService) History(ctx context.Context, customerID int64) ([]domain.Order, error) {
	return s.Orders.ListByCustomer(ctx, customerID)
}

// ByNumber returns the order to its owner or to an admin. Anyone else gets
// not found, so order numbers cannot be probed.
func (s *OrderQueryService) ByNumber(ctx context.Context, who *auth.Claims, number string) (OrderDetail, error) {
	o, lines, err := s.Orders.ByNumber(ctx, number)
	if errors.Is(err, sql.ErrNoRows) {
		return OrderDetail{}, fmt.Errorf("order %s: %w", number, ErrNotFound)
	}
	if err != nil {
		return OrderDetail{}, err
	}
	if who.Role != domain.RoleAdmin && !(who.IsCustomer() && who.AccountID == o.CustomerID) {
		return OrderDetail{}, fmt.Errorf("order %s: %w", number, ErrNotFound)
	}
	return OrderDetail{Order: o, Lines: lines}, nil
}

func (s *OrderQueryService) Latest(ctx context.Context, limit int) ([]domain.Order, int, error) {
	list, err := s.Orders.ListLatest(ctx, limit)
	if err != nil {
		return nil, 0, err
	}
	n, err := s.Orders.Count(ctx)
	return list, n, err
}

func (s *OrderQueryService) SetStatus(ctx context.Context, orderID int64, status string) error {
	st, ok := validate.OrderStatus(status)
	if !ok {
		return &InvalidInputError{Field: "status", Reason: "pending, paid, shipped or cancelled"}
	}
	ok, err := s.Orders.UpdateStatus(ctx, orderID, st)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("order %d: %w", orderID, ErrNotFound)
	}
	return nil
}
