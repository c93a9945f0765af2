package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/auth"
	"storefront/internal/domain"
	"storefront/internal/services"
)

func newAuth(t *testing.T) (*services.AuthService, *auth.Issuer) {
	t.Helper()
	tokens := auth.NewIssuer("test-secret", time.Hour)
	return services.NewAuthService(memdb(t), tokens), tokens
}

func TestLogin_MergesGuestCart(t *testing.T) {
	svc, tokens := newAuth(t)
	ctx := context.Background()
	require.NoError(t, svc.Carts.AddItem(ctx, alice, 1, 3))

	guest := []domain.CartLine{{ProductID: 1, Quantity: 2}, {ProductID: 404, Quantity: 1}}
	tok, acct, merged, err := svc.Login(ctx, "alice@storefront.test", "Passw0rd!", guest)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, acct.Role)
	assert.Equal(t, 1, merged, "missing products are skipped")

	lines, err := svc.Carts.Lines(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, []domain.CartLine{{ProductID: 1, Quantity: 5}}, lines)

	claims, err := tokens.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "alice@storefront.test", claims.Email())
	assert.Equal(t, alice, claims.AccountID)
	assert.True(t, claims.IsCustomer())
}

func TestLogin_RoleOrderAndBadCreds(t *testing.T) {
	svc, tokens := newAuth(t)
	ctx := context.Background()

	tok, acct, _, err := svc.Login(ctx, "ADMIN@storefront.test", "Passw0rd!", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, acct.Role)
	claims, err := tokens.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	assert.True(t, claims.Approved)

	_, acct, _, err = svc.Login(ctx, "vendor@storefront.test", "Passw0rd!", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleVendor, acct.Role)

	_, _, _, err = svc.Login(ctx, "alice@storefront.test", "wrong", nil)
	assert.ErrorIs(t, err, services.ErrBadCreds)
	assert.Equal(t, services.KindAuthInvalid, services.KindOf(err))

	_, _, _, err = svc.Login(ctx, "nobody@storefront.test", "Passw0rd!", nil)
	assert.ErrorIs(t, err, services.ErrBadCreds)
}

func TestSignup(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()

	id, err := svc.Signup(ctx, domain.RoleVendor, "Radio Shack", "shack@example.com", "Str0ng!pass")
	require.NoError(t, err)
	assert.NotZero(t, id)

	_, acct, _, err := svc.Login(ctx, "shack@example.com", "Str0ng!pass", nil)
	require.NoError(t, err)
	assert.False(t, acct.Approved, "vendors start unapproved")

	require.NoError(t, svc.ApproveVendor(ctx, id))
	_, acct, _, err = svc.Login(ctx, "shack@example.com", "Str0ng!pass", nil)
	require.NoError(t, err)
	assert.True(t, acct.Approved)

	_, err = svc.Signup(ctx, domain.RoleCustomer, "Alice Again", "Alice@Storefront.test", "Str0ng!pass")
	assert.ErrorIs(t, err, services.ErrEmailTaken)
	assert.Equal(t, services.KindConflict, services.KindOf(err))

	_, err = svc.Signup(ctx, domain.RoleCustomer, "Carol", "carol@example.com", "weak")
	assert.Equal(t, services.KindInvalidInput, services.KindOf(err))

	_, err = svc.Signup(ctx, domain.RoleAdmin, "Mallory", "mallory@example.com", "Str0ng!pass")
	assert.ErrorIs(t, err, services.ErrAccessForbidden)

	assert.Equal(t, services.KindNotFound, services.KindOf(svc.ApproveVendor(ctx, 999)))
}
