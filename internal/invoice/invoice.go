// Package invoice renders a customer order as a single-page PDF. Rendering
// is a pure function of the order, its line items and the user; the
// creation date is pinned to the order date so identical input produces
// identical bytes.
package invoice

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/oaklandbooks/bookstore-api/internal/order"
	"github.com/oaklandbooks/bookstore-api/internal/user"
)

func Generate(o *order.Order, items []order.Item, u *user.User) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(o.OrderDate)
	pdf.SetTitle(fmt.Sprintf("Invoice #INV-%06d", o.ID), false)
	pdf.AddPage()

	// Header
	pdf.SetFont("Helvetica", "B", 24)
	pdf.SetTextColor(79, 70, 229)
	pdf.Cell(100, 10, "BOOKSTORE")
	pdf.SetFont("Helvetica", "", 16)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 10, "INVOICE", "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(102, 102, 102)
	pdf.Cell(100, 6, "Online Bookstore")
	pdf.CellFormat(0, 6, fmt.Sprintf("#INV-%06d", o.ID), "", 1, "R", false, 0, "")

	pdf.SetDrawColor(238, 238, 238)
	pdf.Line(10, pdf.GetY()+4, 200, pdf.GetY()+4)
	pdf.Ln(10)

	// Bill-to and order-detail blocks side by side.
	top := pdf.GetY()
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(0, 0, 0)
	pdf.Cell(95, 6, "Bill To:")
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(51, 51, 51)
	pdf.Cell(95, 5, u.FullName())
	pdf.Ln(5)
	pdf.Cell(95, 5, u.Email)
	pdf.Ln(5)
	if u.Address != "" {
		pdf.Cell(95, 5, u.Address)
		pdf.Ln(5)
	}

	pdf.SetXY(110, top)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(0, 0, 0)
	pdf.Cell(90, 6, "Order Details:")
	pdf.SetXY(110, top+6)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(51, 51, 51)
	pdf.Cell(90, 5, "Order Date: "+o.OrderDate.Format("2006-01-02"))
	pdf.SetXY(110, top+11)
	pdf.Cell(90, 5, fmt.Sprintf("Order ID: %d", o.ID))
	pdf.SetXY(110, top+16)
	pdf.Cell(90, 5, "Payment: "+o.CardNumber)

	pdf.SetY(top + 30)

	// Line-item table.
	pdf.SetFillColor(79, 70, 229)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(75, 8, "Item", "", 0, "L", true, 0, "")
	pdf.CellFormat(45, 8, "ISBN", "", 0, "L", true, 0, "")
	pdf.CellFormat(15, 8, "Qty", "", 0, "C", true, 0, "")
	pdf.CellFormat(25, 8, "Price", "", 0, "R", true, 0, "")
	pdf.CellFormat(30, 8, "Total", "", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(51, 51, 51)
	total := decimal.Zero
	for i, it := range items {
		fill := i%2 == 0
		pdf.SetFillColor(249, 250, 251)
		price, err := decimal.NewFromString(it.PriceAtPurchase)
		if err != nil {
			return nil, fmt.Errorf("bad price snapshot for %s: %w", it.BookISBN, err)
		}
		sub := price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		total = total.Add(sub)

		title := truncate(it.Title, 40)
		pdf.CellFormat(75, 7, title, "", 0, "L", fill, 0, "")
		pdf.CellFormat(45, 7, it.BookISBN, "", 0, "L", fill, 0, "")
		pdf.CellFormat(15, 7, fmt.Sprintf("%d", it.Quantity), "", 0, "C", fill, 0, "")
		pdf.CellFormat(25, 7, "$"+price.StringFixed(2), "", 0, "R", fill, 0, "")
		pdf.CellFormat(30, 7, "$"+sub.StringFixed(2), "", 1, "R", fill, 0, "")
	}

	pdf.Ln(6)
	pdf.Line(110, pdf.GetY(), 200, pdf.GetY())
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(160, 6, "Subtotal:", "", 0, "R", false, 0, "")
	pdf.CellFormat(30, 6, "$"+total.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(160, 7, "Total:", "", 0, "R", false, 0, "")
	pdf.CellFormat(30, 7, "$"+total.StringFixed(2), "", 1, "R", false, 0, "")

	// Footer
	pdf.SetY(-30)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(102, 102, 102)
	pdf.CellFormat(0, 5, "Thank you for your purchase!", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, "Bookstore Online - Your trusted source for books", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// truncate cuts on a rune boundary; a byte slice could split a multi-byte
// character and feed invalid UTF-8 to the PDF encoder.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
