package catalog

import (
	"context"
	"errors"

	dErrors "giftlist/pkg/domain-errors"
	"giftlist/pkg/platform/sentinel"
)

// Store is the persistence surface the catalog needs. The upsert methods
// exist for the bulk product loader; the API itself is read-only.
type Store interface {
	ListBrands(ctx context.Context) ([]*Brand, error)
	ListCurrencies(ctx context.Context) ([]*Currency, error)
	ListProducts(ctx context.Context) ([]*Product, error)
	FindProduct(ctx context.Context, id int64) (*Product, error)
	FindBrand(ctx context.Context, id int64) (*Brand, error)
	UpsertBrand(ctx context.Context, name string) (*Brand, error)
	UpsertCurrency(ctx context.Context, code string) (*Currency, error)
	SaveProduct(ctx context.Context, product *Product) (*Product, error)
}

// Service exposes catalog listings to the transport layer.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) ListBrands(ctx context.Context) ([]*Brand, error) {
	brands, err := s.store.ListBrands(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list brands")
	}
	return brands, nil
}

func (s *Service) ListCurrencies(ctx context.Context) ([]*Currency, error) {
	currencies, err := s.store.ListCurrencies(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list currencies")
	}
	return currencies, nil
}

func (s *Service) ListProducts(ctx context.Context) ([]*Product, error) {
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list products")
	}
	return products, nil
}

// GetProduct resolves a product by ID for the accounting core.
func (s *Service) GetProduct(ctx context.Context, id int64) (*Product, error) {
	product, err := s.store.FindProduct(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "product not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load product")
	}
	return product, nil
}
