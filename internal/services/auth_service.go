package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/auth"
	"storefront/internal/domain"
	"storefront/internal/repos"
	"storefront/internal/validate"
)

// loginOrder is the order credential tables are checked in.
var loginOrder = []string{domain.RoleCustomer, domain.RoleAdmin, domain.RoleVendor}

type AuthService struct {
	Accounts *repos.AccountRepo
	Carts    *repos.CartRepo
	Store    *repos.Store
	Tokens   *auth.Issuer
}

func NewAuthService(db *sqlx.DB, tokens *auth.Issuer) *AuthService {
	return &AuthService{
		Accounts: repos.NewAccountRepo(db),
		Carts:    repos.NewCartRepo(db),
		Store:    repos.NewStore(db),
		Tokens:   tokens,
	}
}

// Signup creates a customer or vendor account. Vendors start unapproved.
func (s *AuthService) Signup(ctx context.Context, role, name, email, password string) (int64, error) {
	if role != domain.RoleCustomer && role != domain.RoleVendor {
		return 0, ErrAccessForbidden
	}
	name, ok := validate.Name(name)
	if !ok {
		return 0, &InvalidInputError{Field: "name", Reason: "must be 1-50 characters"}
	}
	email, ok = validate.Email(email)
	if !ok {
		return 0, &InvalidInputError{Field: "email", Reason: "invalid email"}
	}
	if !validate.Password(password) {
		return 0, &InvalidInputError{Field: "password", Reason: "8-72 characters with upper, lower, digit and symbol"}
	}
	taken, err := s.Accounts.EmailTaken(ctx, role, email)
	if err != nil {
		return 0, err
	}
	if taken {
		return 0, ErrEmailTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}
	return s.Accounts.Create(ctx, role, name, email, string(hash))
}

// Authenticate checks email and password against customers, admins and
// vendors in that order.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*domain.Account, error) {
	for _, role := range loginOrder {
		a, err := s.Accounts.ByEmail(ctx, role, email)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if bcrypt.CompareHashAndPassword([]byte(a.Hash), []byte(password)) == nil {
			return a, nil
		}
	}
	return nil, ErrBadCreds
}

// Login authenticates and issues a session token. For customers the guest
// cart lines are merged into the persisted cart first, in one transaction,
// so a token is only handed out once the merge is durable.
func (s *AuthService) Login(ctx context.Context, email, password string, guest []domain.CartLine) (string, *domain.Account, int, error) {
	a, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return "", nil, 0, err
	}
	merged := 0
	if a.Role == domain.RoleCustomer && len(guest) > 0 {
		err := s.Store.WithTx(ctx, func(tx *sqlx.Tx) error {
			n, err := s.Carts.WithTx(tx).Merge(ctx, a.ID, MergeLines(nil, guest))
			merged = n
			return err
		})
		if err != nil {
			return "", nil, 0, err
		}
	}
	tok, err := s.Tokens.Issue(a)
	if err != nil {
		return "", nil, 0, err
	}
	return tok, a, merged, nil
}

// Profile loads the account behind verified claims.
func (s *AuthService) Profile(ctx context.Context, claims *auth.Claims) (*domain.Account, error) {
	a, err := s.Accounts.ByID(ctx, claims.Role, claims.AccountID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

func (s *AuthService) ApproveVendor(ctx context.Context, vendorID int64) error {
	ok, err := s.Accounts.ApproveVendor(ctx, vendorID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
