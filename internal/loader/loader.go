// Package loader imports product rows from JSON files into the catalog.
// Failures are per-row: a bad row is logged and counted, never aborts the
// run.
package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"giftlist/internal/catalog"
)

// priceRe matches prices with an optional trailing currency code, e.g.
// "19.99GBP" or "11.00".
var priceRe = regexp.MustCompile(`^([0-9]+(?:\.[0-9]+)?)([A-Za-z]{3})?$`)

// Catalog is the write surface the loader needs.
type Catalog interface {
	UpsertBrand(ctx context.Context, name string) (*catalog.Brand, error)
	UpsertCurrency(ctx context.Context, code string) (*catalog.Currency, error)
	SaveProduct(ctx context.Context, product *catalog.Product) (*catalog.Product, error)
}

// Result counts the outcome of a load run.
type Result struct {
	Succeeded int64
	Failed    int64
}

// Loader reads product files and upserts rows into the catalog.
type Loader struct {
	catalog Catalog
	logger  *slog.Logger
	// fileWorkers bounds how many files are parsed at once; rows within a
	// file stay sequential so row errors keep a stable order per file.
	fileWorkers int
}

func New(store Catalog, logger *slog.Logger) *Loader {
	return &Loader{catalog: store, logger: logger, fileWorkers: 4}
}

type productRow struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Brand    string `json:"brand"`
	Price    string `json:"price"`
	StockQty int    `json:"in_stock_quantity"`
}

// Load processes every file, counting row-level successes and failures. The
// returned error only reflects infrastructure problems (context cancelled);
// unreadable files count as one failure each and processing continues.
func (l *Loader) Load(ctx context.Context, paths ...string) (Result, error) {
	var succeeded, failed atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.fileWorkers)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			rows, err := readFile(path)
			if err != nil {
				l.logger.Error("skipping unreadable product file", "path", path, "error", err)
				failed.Add(1)
				return nil
			}
			for _, row := range rows {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := l.loadRow(ctx, row); err != nil {
					l.logger.Error("product row failed", "path", path, "product", row.Name, "error", err)
					failed.Add(1)
					continue
				}
				succeeded.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{Succeeded: succeeded.Load(), Failed: failed.Load()}, err
	}
	return Result{Succeeded: succeeded.Load(), Failed: failed.Load()}, nil
}

func readFile(path string) ([]productRow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rows []productRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return rows, nil
}

func (l *Loader) loadRow(ctx context.Context, row productRow) error {
	if row.Name == "" {
		return fmt.Errorf("row has no name")
	}
	if row.Brand == "" {
		return fmt.Errorf("row has no brand")
	}

	price, currencyCode, hadCurrency, err := parsePrice(row.Price)
	if err != nil {
		return err
	}

	brand, err := l.catalog.UpsertBrand(ctx, row.Brand)
	if err != nil {
		return fmt.Errorf("upsert brand: %w", err)
	}
	if hadCurrency {
		if _, err := l.catalog.UpsertCurrency(ctx, currencyCode); err != nil {
			return fmt.Errorf("upsert currency: %w", err)
		}
	}
	if row.StockQty < 0 {
		return fmt.Errorf("negative stock quantity %d", row.StockQty)
	}

	_, err = l.catalog.SaveProduct(ctx, &catalog.Product{
		ID:           row.ID,
		Name:         row.Name,
		Price:        price,
		StockQty:     row.StockQty,
		BrandID:      brand.ID,
		CurrencyCode: currencyCode,
	})
	return err
}

// parsePrice splits an optional trailing currency code off a price string.
func parsePrice(raw string) (decimal.Decimal, string, bool, error) {
	match := priceRe.FindStringSubmatch(raw)
	if match == nil {
		return decimal.Decimal{}, "", false, fmt.Errorf("unparseable price %q", raw)
	}
	price, err := decimal.NewFromString(match[1])
	if err != nil {
		return decimal.Decimal{}, "", false, fmt.Errorf("unparseable price %q: %w", raw, err)
	}
	if match[2] != "" {
		return price, strings.ToUpper(match[2]), true, nil
	}
	return price, catalog.DefaultCurrency, false, nil
}
