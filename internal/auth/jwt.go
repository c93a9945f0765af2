package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"storefront/internal/domain"
)

// ErrAuthInvalid covers every way a token can fail verification: bad
// signature, expired, wrong type or missing fields.
var ErrAuthInvalid = errors.New("invalid or expired token")

const (
	typeSession   = "session"
	typeGuestCart = "guest_cart"
)

// Claims is the verified identity handed to the rest of the app. Subject
// carries the account email.
type Claims struct {
	AccountID int64  `json:"customer_id"`
	Name      string `json:"name"`
	Role      string `json:"type"`
	Approved  bool   `json:"approved"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

func (c *Claims) Email() string { return c.Subject }

// IsCustomer reports whether the claims belong to a customer account.
func (c *Claims) IsCustomer() bool { return c.Role == domain.RoleCustomer }

type guestCartClaims struct {
	Lines     []domain.CartLine `json:"lines"`
	TokenType string            `json:"typ"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret   []byte
	ttl      time.Duration
	guestTTL time.Duration
	now      func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, guestTTL: 30 * 24 * time.Hour, now: time.Now}
}

// Issue signs a session token for a. Non-customer roles carry their approval flag.
func (i *Issuer) Issue(a *domain.Account) (string, error) {
	now := i.now()
	claims := Claims{
		AccountID: a.ID,
		Name:      a.Name,
		Role:      a.Role,
		Approved:  a.Role == domain.RoleCustomer || a.Approved,
		TokenType: typeSession,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Verify parses a session token and returns its claims or ErrAuthInvalid.
func (i *Issuer) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, i.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrAuthInvalid, err)
	}
	if claims.TokenType != typeSession || claims.Subject == "" || claims.AccountID == 0 {
		return nil, ErrAuthInvalid
	}
	switch claims.Role {
	case domain.RoleCustomer, domain.RoleAdmin, domain.RoleVendor:
	default:
		return nil, ErrAuthInvalid
	}
	return claims, nil
}

// IssueGuestCart signs the anonymous cart lines for the guest_cart cookie.
func (i *Issuer) IssueGuestCart(lines []domain.CartLine) (string, error) {
	now := i.now()
	claims := guestCartClaims{
		Lines:     lines,
		TokenType: typeGuestCart,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.guestTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// VerifyGuestCart returns the lines carried by a guest cart token.
func (i *Issuer) VerifyGuestCart(tokenStr string) ([]domain.CartLine, error) {
	claims := &guestCartClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, i.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !token.Valid || claims.TokenType != typeGuestCart {
		return nil, ErrAuthInvalid
	}
	return claims.Lines, nil
}

// TTL is the lifetime of session tokens.
func (i *Issuer) TTL() time.Duration { return i.ttl }

func (i *Issuer) keyFunc(*jwt.Token) (interface{}, error) { return i.secret, nil }
