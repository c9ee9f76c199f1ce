// Package pdf lays out the registry report as a printable document: a
// purchased-items table followed by a remaining-items table.
package pdf

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/go-pdf/fpdf"

	"giftlist/internal/report"
)

const (
	colProduct = 55.0
	colBrand   = 35.0
	colNum     = 25.0
	rowHeight  = 7.0
)

// Render produces the PDF bytes for a report summary.
func Render(title string, summary *report.Summary) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle(title, false)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	doc.Ln(4)

	renderPurchased(doc, summary.Purchased)
	doc.Ln(8)
	renderRemaining(doc, summary.Remaining)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func renderPurchased(doc *fpdf.Fpdf, rows []*report.PurchasedRow) {
	sectionHeader(doc, "Purchased items")
	tableHeader(doc, []headerCol{
		{"Product", colProduct}, {"Brand", colBrand}, {"Unit price", colNum},
		{"Qty", 15}, {"Guest", colBrand}, {"Date paid", 30},
	})

	doc.SetFont("Helvetica", "", 9)
	if len(rows) == 0 {
		doc.CellFormat(0, rowHeight, "No purchases yet", "1", 1, "L", false, 0, "")
		return
	}
	for _, r := range rows {
		doc.CellFormat(colProduct, rowHeight, r.ProductName, "1", 0, "L", false, 0, "")
		doc.CellFormat(colBrand, rowHeight, r.BrandName, "1", 0, "L", false, 0, "")
		doc.CellFormat(colNum, rowHeight, r.UnitPrice.StringFixed(2), "1", 0, "R", false, 0, "")
		doc.CellFormat(15, rowHeight, strconv.Itoa(r.QtyPurchased), "1", 0, "R", false, 0, "")
		doc.CellFormat(colBrand, rowHeight, r.RecipientName, "1", 0, "L", false, 0, "")
		doc.CellFormat(30, rowHeight, r.DatePaid.Format("2006-01-02"), "1", 1, "L", false, 0, "")
	}
}

func renderRemaining(doc *fpdf.Fpdf, rows []*report.RemainingRow) {
	sectionHeader(doc, "Remaining items")
	tableHeader(doc, []headerCol{
		{"Product", colProduct}, {"Brand", colBrand},
		{"Unit price", colNum}, {"Remaining", colNum},
	})

	doc.SetFont("Helvetica", "", 9)
	if len(rows) == 0 {
		doc.CellFormat(0, rowHeight, "Everything has been purchased", "1", 1, "L", false, 0, "")
		return
	}
	for _, r := range rows {
		doc.CellFormat(colProduct, rowHeight, r.ProductName, "1", 0, "L", false, 0, "")
		doc.CellFormat(colBrand, rowHeight, r.BrandName, "1", 0, "L", false, 0, "")
		doc.CellFormat(colNum, rowHeight, r.UnitPrice.StringFixed(2), "1", 0, "R", false, 0, "")
		doc.CellFormat(colNum, rowHeight, strconv.Itoa(r.RemainingQty), "1", 1, "R", false, 0, "")
	}
}

type headerCol struct {
	label string
	width float64
}

func sectionHeader(doc *fpdf.Fpdf, label string) {
	doc.SetFont("Helvetica", "B", 12)
	doc.CellFormat(0, 8, label, "", 1, "L", false, 0, "")
}

func tableHeader(doc *fpdf.Fpdf, cols []headerCol) {
	doc.SetFont("Helvetica", "B", 9)
	doc.SetFillColor(230, 230, 230)
	for i, c := range cols {
		ln := 0
		if i == len(cols)-1 {
			ln = 1
		}
		doc.CellFormat(c.width, rowHeight, c.label, "1", ln, "L", true, 0, "")
	}
}
