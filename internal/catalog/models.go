// Package catalog is the read-mostly product catalog: brands, currencies and
// the global product list gift items are drawn from.
package catalog

import "github.com/shopspring/decimal"

// DefaultCurrency is assumed for products loaded without an explicit
// currency code.
const DefaultCurrency = "GBP"

// Brand groups products by manufacturer. Names are unique case-insensitively.
type Brand struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Currency binds products to their original currency. Conversion rates would
// come from a ForEx provider; keeping the column lets rates be refreshed
// without a schema change.
type Currency struct {
	Code          string   `json:"code"`
	Name          string   `json:"name,omitempty"`
	GBPConversion *float64 `json:"gbp_conversion,omitempty"`
}

// Product is a catalog entry, independent of any registry. Products with
// zero stock cannot be added to a gift list.
type Product struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	StockQty     int             `json:"qty"`
	BrandID      int64           `json:"brand"`
	CurrencyCode string          `json:"currency"`
}
