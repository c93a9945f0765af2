package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/repos"
	"storefront/internal/validate"
)

const maxSlugTries = 20

type CatalogService struct {
	Cats  *repos.CategoryRepo
	Prods *repos.ProductRepo
	Store *repos.Store
}

func NewCatalogService(db *sqlx.DB) *CatalogService {
	return &CatalogService{
		Cats:  repos.NewCategoryRepo(db),
		Prods: repos.NewProductRepo(db),
		Store: repos.NewStore(db),
	}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.Cats.List(ctx)
}

func (s *CatalogService) Search(ctx context.Context, q string, categoryID int64, page, pageSize int) ([]domain.Product, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 12
	}
	offset := (page - 1) * pageSize
	return s.Prods.Search(ctx, q, categoryID, pageSize, offset)
}

func (s *CatalogService) BySlug(ctx context.Context, slug string) (domain.Product, error) {
	p, err := s.Prods.BySlug(ctx, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, fmt.Errorf("product %q: %w", slug, ErrNotFound)
	}
	return p, err
}

type NewProduct struct {
	CategoryID int64
	Name       string
	Price      decimal.Decimal
	Stock      int
	ImageURL   string
}

// CreateProduct lists a product for an approved vendor. The slug is derived
// from the name and suffixed until it is unique.
func (s *CatalogService) CreateProduct(ctx context.Context, vendorID int64, in NewProduct) (domain.Product, error) {
	name, ok := validate.Name(in.Name)
	if !ok {
		return domain.Product{}, &InvalidInputError{Field: "name", Reason: "must be 1-50 characters"}
	}
	base := validate.Slugify(name)
	if base == "" {
		return domain.Product{}, &InvalidInputError{Field: "name", Reason: "needs at least one letter or digit"}
	}
	if in.Price.IsNegative() {
		return domain.Product{}, &InvalidInputError{Field: "price", Reason: "must not be negative"}
	}
	if in.Stock < 0 {
		return domain.Product{}, &InvalidInputError{Field: "stock", Reason: "must not be negative"}
	}

	var created domain.Product
	err := s.Store.WithTx(ctx, func(tx *sqlx.Tx) error {
		ok, err := s.Cats.WithTx(tx).Exists(ctx, in.CategoryID)
		if err != nil {
			return err
		}
		if !ok {
			return &InvalidInputError{Field: "categoryId", Reason: "unknown category"}
		}
		prods := s.Prods.WithTx(tx)
		slug := ""
		for i := 0; i < maxSlugTries && slug == ""; i++ {
			cand := base
			if i > 0 {
				cand = fmt.Sprintf("%s-%d", base, i+1)
			}
			taken, err := prods.SlugTaken(ctx, cand)
			if err != nil {
				return err
			}
			if !taken {
				slug = cand
			}
		}
		if slug == "" {
			return ErrSlugTaken
		}
		id, err := prods.Create(ctx, domain.Product{
			CategoryID: in.CategoryID,
			VendorID:   vendorID,
			Name:       name,
			Slug:       slug,
			Price:      in.Price,
			Stock:      in.Stock,
		}, in.ImageURL)
		if err != nil {
			return err
		}
		created, err = prods.Get(ctx, id)
		return err
	})
	return created, err
}

// SetStock overwrites stock on a product the vendor owns.
func (s *CatalogService) SetStock(ctx context.Context, vendorID, productID int64, stock int) error {
	if stock < 0 {
		return &InvalidInputError{Field: "stock", Reason: "must not be negative"}
	}
	ok, err := s.Prods.SetStock(ctx, vendorID, productID, stock)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("product %d: %w", productID, ErrNotFound)
	}
	return nil
}
