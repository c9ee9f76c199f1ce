package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"giftlist/internal/catalog"
	"giftlist/pkg/platform/sentinel"
)

// Postgres persists the catalog in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) ListBrands(ctx context.Context) ([]*catalog.Brand, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM brands ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	defer rows.Close()

	var out []*catalog.Brand
	for rows.Next() {
		var b catalog.Brand
		if err := rows.Scan(&b.ID, &b.Name); err != nil {
			return nil, fmt.Errorf("scan brand: %w", err)
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}

func (s *Postgres) ListCurrencies(ctx context.Context) ([]*catalog.Currency, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT code, name, gbp_conversion FROM currencies ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list currencies: %w", err)
	}
	defer rows.Close()

	var out []*catalog.Currency
	for rows.Next() {
		var c catalog.Currency
		var name sql.NullString
		if err := rows.Scan(&c.Code, &name, &c.GBPConversion); err != nil {
			return nil, fmt.Errorf("scan currency: %w", err)
		}
		c.Name = name.String
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (s *Postgres) ListProducts(ctx context.Context) ([]*catalog.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, price, stock_qty, brand_id, currency_code FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []*catalog.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Postgres) FindProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, price, stock_qty, brand_id, currency_code FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return p, nil
}

func (s *Postgres) FindBrand(ctx context.Context, id int64) (*catalog.Brand, error) {
	var b catalog.Brand
	err := s.db.QueryRowContext(ctx, `SELECT id, name FROM brands WHERE id = $1`, id).
		Scan(&b.ID, &b.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find brand: %w", err)
	}
	return &b, nil
}

// UpsertBrand inserts a brand, returning the existing row on a name clash.
func (s *Postgres) UpsertBrand(ctx context.Context, name string) (*catalog.Brand, error) {
	var b catalog.Brand
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO brands (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name
	`, name).Scan(&b.ID, &b.Name)
	if err != nil {
		return nil, fmt.Errorf("upsert brand: %w", err)
	}
	return &b, nil
}

// UpsertCurrency inserts a currency code if it is not known yet.
func (s *Postgres) UpsertCurrency(ctx context.Context, code string) (*catalog.Currency, error) {
	code = strings.ToUpper(code)
	var c catalog.Currency
	var name sql.NullString
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO currencies (code) VALUES ($1)
		ON CONFLICT (code) DO UPDATE SET code = EXCLUDED.code
		RETURNING code, name, gbp_conversion
	`, code).Scan(&c.Code, &name, &c.GBPConversion)
	if err != nil {
		return nil, fmt.Errorf("upsert currency: %w", err)
	}
	c.Name = name.String
	return &c, nil
}

// SaveProduct inserts or overwrites a product. Loader rows may carry explicit
// IDs; those update in place.
func (s *Postgres) SaveProduct(ctx context.Context, product *catalog.Product) (*catalog.Product, error) {
	currency := product.CurrencyCode
	if currency == "" {
		currency = catalog.DefaultCurrency
	}

	var saved catalog.Product
	var err error
	if product.ID == 0 {
		err = s.db.QueryRowContext(ctx, `
			INSERT INTO products (name, price, stock_qty, brand_id, currency_code)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, name, price, stock_qty, brand_id, currency_code
		`, product.Name, product.Price, product.StockQty, product.BrandID, currency).
			Scan(&saved.ID, &saved.Name, &saved.Price, &saved.StockQty, &saved.BrandID, &saved.CurrencyCode)
	} else {
		err = s.db.QueryRowContext(ctx, `
			INSERT INTO products (id, name, price, stock_qty, brand_id, currency_code)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				price = EXCLUDED.price,
				stock_qty = EXCLUDED.stock_qty,
				brand_id = EXCLUDED.brand_id,
				currency_code = EXCLUDED.currency_code
			RETURNING id, name, price, stock_qty, brand_id, currency_code
		`, product.ID, product.Name, product.Price, product.StockQty, product.BrandID, currency).
			Scan(&saved.ID, &saved.Name, &saved.Price, &saved.StockQty, &saved.BrandID, &saved.CurrencyCode)
	}
	if err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}
	return &saved, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*catalog.Product, error) {
	var p catalog.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.StockQty, &p.BrandID, &p.CurrencyCode); err != nil {
		return nil, err
	}
	return &p, nil
}
