package loader

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"giftlist/internal/catalog"
	catalogstore "giftlist/internal/catalog/store"
)

type LoaderSuite struct {
	suite.Suite
	ctx    context.Context
	store  *catalogstore.Memory
	loader *Loader
}

func (s *LoaderSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = catalogstore.NewMemory()
	s.loader = New(s.store, slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
}

func TestLoaderSuite(t *testing.T) {
	suite.Run(t, new(LoaderSuite))
}

func (s *LoaderSuite) writeFile(name, content string) string {
	path := filepath.Join(s.T().TempDir(), name)
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o600))
	return path
}

func (s *LoaderSuite) TestLoadsProductsWithBrandAndCurrency() {
	path := s.writeFile("products.json", `[
		{"id": 10, "name": "Casserole", "brand": "Le Creuset", "price": "199.99GBP", "in_stock_quantity": 5},
		{"id": 11, "name": "Mixer", "brand": "KitchenAid", "price": "349.00usd", "in_stock_quantity": 2}
	]`)

	result, err := s.loader.Load(s.ctx, path)
	s.Require().NoError(err)
	s.Equal(int64(2), result.Succeeded)
	s.Equal(int64(0), result.Failed)

	product, err := s.store.FindProduct(s.ctx, 10)
	s.Require().NoError(err)
	s.Equal("Casserole", product.Name)
	s.True(product.Price.Equal(decimal.RequireFromString("199.99")))
	s.Equal("GBP", product.CurrencyCode)
	s.Equal(5, product.StockQty)

	// Lowercase currency suffixes normalize to the upper-case code.
	mixer, err := s.store.FindProduct(s.ctx, 11)
	s.Require().NoError(err)
	s.Equal("USD", mixer.CurrencyCode)

	currencies, err := s.store.ListCurrencies(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(currencies, 2)

	brands, err := s.store.ListBrands(s.ctx)
	s.Require().NoError(err)
	s.Len(brands, 2)
}

func (s *LoaderSuite) TestMissingCurrencySuffixDefaults() {
	path := s.writeFile("products.json", `[
		{"id": 1, "name": "Teapot", "brand": "Wedgwood", "price": "42.50", "in_stock_quantity": 1}
	]`)

	result, err := s.loader.Load(s.ctx, path)
	s.Require().NoError(err)
	s.Equal(int64(1), result.Succeeded)

	product, err := s.store.FindProduct(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(catalog.DefaultCurrency, product.CurrencyCode)

	// No suffix means no currency row is created.
	currencies, err := s.store.ListCurrencies(s.ctx)
	s.Require().NoError(err)
	s.Empty(currencies)
}

func (s *LoaderSuite) TestBadRowsCountedNotFatal() {
	path := s.writeFile("products.json", `[
		{"id": 1, "name": "Good", "brand": "Acme", "price": "10.00", "in_stock_quantity": 1},
		{"id": 2, "name": "NoBrand", "brand": "", "price": "10.00", "in_stock_quantity": 1},
		{"id": 3, "name": "BadPrice", "brand": "Acme", "price": "ten pounds", "in_stock_quantity": 1},
		{"id": 4, "name": "", "brand": "Acme", "price": "10.00", "in_stock_quantity": 1}
	]`)

	result, err := s.loader.Load(s.ctx, path)
	s.Require().NoError(err)
	s.Equal(int64(1), result.Succeeded)
	s.Equal(int64(3), result.Failed)
}

func (s *LoaderSuite) TestUnreadableFileCountsOneFailure() {
	good := s.writeFile("good.json", `[
		{"id": 1, "name": "Good", "brand": "Acme", "price": "10.00", "in_stock_quantity": 1}
	]`)

	result, err := s.loader.Load(s.ctx, good, filepath.Join(s.T().TempDir(), "missing.json"))
	s.Require().NoError(err)
	s.Equal(int64(1), result.Succeeded)
	s.Equal(int64(1), result.Failed)
}

func (s *LoaderSuite) TestParsePrice() {
	price, code, hadCurrency, err := parsePrice("19.99GBP")
	s.Require().NoError(err)
	s.True(price.Equal(decimal.RequireFromString("19.99")))
	s.Equal("GBP", code)
	s.True(hadCurrency)

	price, code, hadCurrency, err = parsePrice("11")
	s.Require().NoError(err)
	s.True(price.Equal(decimal.RequireFromString("11")))
	s.Equal(catalog.DefaultCurrency, code)
	s.False(hadCurrency)

	_, _, _, err = parsePrice("GBP19.99")
	s.Error(err)
	_, _, _, err = parsePrice("")
	s.Error(err)
}
