package handlers

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/atomic"

	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/events"
	"storefront/internal/repos"
	"storefront/internal/services"
)

type Deps struct {
	DB       *sqlx.DB
	Verifier *auth.Verifier
	// Ready flips to false while the server drains on shutdown.
	Ready *atomic.Bool

	AuthHandler    *AuthHandler
	CatalogHandler *CatalogHandler
	CartHandler    *CartHandler
	AddressHandler *AddressHandler
	OrderHandler   *OrderHandler
	VendorHandler  *VendorHandler
	AdminHandler   *AdminHandler
}

// NewDeps wires services and handlers. cache and pub may be nil.
func NewDeps(db *sqlx.DB, cfg config.Config, cache *auth.TokenCache, pub events.Publisher) *Deps {
	tokens := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)

	authSvc := services.NewAuthService(db, tokens)
	catalogSvc := services.NewCatalogService(db)
	cartSvc := services.NewCartService(repos.NewCartRepo(db), repos.NewProductRepo(db))
	addrSvc := services.NewAddressService(db)
	checkoutSvc := services.NewCheckoutService(db, pub, cfg.CheckoutTimeout)
	orderSvc := services.NewOrderQueryService(db)

	return &Deps{
		DB:       db,
		Verifier: &auth.Verifier{Issuer: tokens, Cache: cache},
		Ready:    atomic.NewBool(true),

		AuthHandler:    &AuthHandler{Auth: authSvc, Tokens: tokens},
		CatalogHandler: &CatalogHandler{Catalog: catalogSvc},
		CartHandler:    &CartHandler{Cart: cartSvc, Tokens: tokens},
		AddressHandler: &AddressHandler{Addresses: addrSvc},
		OrderHandler:   &OrderHandler{Checkout: checkoutSvc, Orders: orderSvc},
		VendorHandler:  &VendorHandler{Catalog: catalogSvc},
		AdminHandler:   &AdminHandler{Orders: orderSvc, Auth: authSvc},
	}
}
