package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"giftlist/internal/report"
)

func TestRenderEmptySummary(t *testing.T) {
	doc, err := Render("Gift list report", &report.Summary{})
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
}

func TestRenderWithRows(t *testing.T) {
	summary := &report.Summary{
		Purchased: []*report.PurchasedRow{{
			ProductName:   "Casserole",
			BrandName:     "Le Creuset",
			UnitPrice:     decimal.RequireFromString("199.99"),
			QtyPurchased:  1,
			RecipientName: "Pat",
			DatePaid:      time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			Total:         decimal.RequireFromString("199.99"),
		}},
		Remaining: []*report.RemainingRow{{
			ProductName:  "Kettle",
			BrandName:    "Acme",
			UnitPrice:    decimal.RequireFromString("25.00"),
			RemainingQty: 2,
		}},
	}
	doc, err := Render("Gift list report", summary)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
	require.Greater(t, len(doc), 1000)
}
