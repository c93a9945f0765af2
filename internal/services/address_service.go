package services

import (
	"context"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
	"storefront/internal/repos"
	"storefront/internal/validate"
)

type AddressService struct {
	Addresses *repos.AddressRepo
	Store     *repos.Store
}

func NewAddressService(db *sqlx.DB) *AddressService {
	return &AddressService{Addresses: repos.NewAddressRepo(db), Store: repos.NewStore(db)}
}

func (s *AddressService) List(ctx context.Context, customerID int64) ([]domain.Address, error) {
	return s.Addresses.List(ctx, customerID)
}

// Create stores a new address. A new primary address demotes the previous
// primary to shipping in the same transaction.
func (s *AddressService) Create(ctx context.Context, a domain.Address) (domain.Address, error) {
	var ok bool
	if a.Type, ok = validate.AddressType(a.Type); !ok {
		return domain.Address{}, &InvalidInputError{Field: "type", Reason: "primary, shipping or billing"}
	}
	if a.Line1, ok = validate.Line(a.Line1); !ok {
		return domain.Address{}, &InvalidInputError{Field: "line1", Reason: "required, at most 120 characters"}
	}
	if a.City, ok = validate.Line(a.City); !ok {
		return domain.Address{}, &InvalidInputError{Field: "city", Reason: "required, at most 120 characters"}
	}
	if a.PostalCode, ok = validate.Postal(a.PostalCode); !ok {
		return domain.Address{}, &InvalidInputError{Field: "postalCode", Reason: "invalid postal code"}
	}
	if a.Country, ok = validate.Country(a.Country); !ok {
		return domain.Address{}, &InvalidInputError{Field: "country", Reason: "two letter country code"}
	}

	err := s.Store.WithTx(ctx, func(tx *sqlx.Tx) error {
		addrs := s.Addresses.WithTx(tx)
		if a.Type == domain.AddressPrimary {
			if err := addrs.DemotePrimary(ctx, a.CustomerID); err != nil {
				return err
			}
		}
		id, err := addrs.Create(ctx, a)
		if err != nil {
			return err
		}
		a.ID = id
		return nil
	})
	if err != nil {
		return domain.Address{}, err
	}
	return a, nil
}
