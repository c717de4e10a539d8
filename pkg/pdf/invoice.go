// Package pdf renders invoices as A4 PDF documents.
package pdf

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Party is an address block on the document.
type Party struct {
	Name    string
	Email   string
	Address string
	TaxID   string
}

// BankDetails are printed in the payment section.
type BankDetails struct {
	BankName      string
	AccountHolder string
	AccountNumber string
	SwiftCode     string
}

// Line is one item row. Amounts are already formatted.
type Line struct {
	Name        string
	Description string
	Quantity    string
	Unit        string
	UnitPrice   string
	Total       string
}

// Invoice is everything the renderer prints. Amounts are already
// formatted in the invoice currency.
type Invoice struct {
	Number        string
	Status        string
	IssueDate     string
	DueDate       string
	Currency      string
	PurchaseOrder string
	PaymentTerms  string
	From          Party
	To            Party
	Bank          *BankDetails
	Lines         []Line
	Subtotal      string
	Discount      string
	Shipping      string
	TaxRate       string
	TaxAmount     string
	Total         string
	Notes         string
	Terms         string
}

const (
	pageMargin = 15.0
	lineHeight = 5.0
)

// column widths of the item table, summing to the printable width
var itemColumns = []struct {
	title string
	width float64
	align string
}{
	{"Item", 80, "L"},
	{"Qty", 20, "R"},
	{"Unit", 20, "L"},
	{"Price", 30, "R"},
	{"Amount", 30, "R"},
}

// Document wraps a gofpdf document and knows the invoice layout.
type Document struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

// NewDocument creates an empty A4 portrait document.
func NewDocument() *Document {
	p := gofpdf.New("P", "mm", "A4", "")
	p.SetMargins(pageMargin, pageMargin, pageMargin)
	p.SetAutoPageBreak(true, pageMargin)
	return &Document{
		pdf: p,
		tr:  p.UnicodeTranslatorFromDescriptor(""),
	}
}

// Render writes inv to w.
func Render(w io.Writer, inv *Invoice) error {
	return NewDocument().Invoice(inv).Output(w)
}

// Invoice lays out one invoice on a new page.
func (d *Document) Invoice(inv *Invoice) *Document {
	d.pdf.AddPage()
	d.header(inv)
	d.parties(inv)
	d.items(inv.Lines)
	d.totals(inv)
	d.payment(inv)
	return d
}

// Output writes the document, or the first layout error.
func (d *Document) Output(w io.Writer) error {
	if err := d.pdf.Error(); err != nil {
		return fmt.Errorf("pdf: layout failed: %w", err)
	}
	if err := d.pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: write failed: %w", err)
	}
	return nil
}

func (d *Document) header(inv *Invoice) {
	d.pdf.SetFont("Helvetica", "B", 20)
	d.pdf.CellFormat(100, 10, d.tr("INVOICE"), "", 0, "L", false, 0, "")
	d.pdf.SetFont("Helvetica", "", 10)
	d.pdf.CellFormat(0, 10, d.tr(inv.Number), "", 1, "R", false, 0, "")

	d.pdf.SetFont("Helvetica", "", 9)
	meta := [][2]string{
		{"Issue date", inv.IssueDate},
		{"Due date", inv.DueDate},
		{"Currency", inv.Currency},
		{"Status", inv.Status},
		{"Purchase order", inv.PurchaseOrder},
		{"Payment terms", inv.PaymentTerms},
	}
	for _, m := range meta {
		if m[1] == "" {
			continue
		}
		d.pdf.CellFormat(35, lineHeight, d.tr(m[0]+":"), "", 0, "L", false, 0, "")
		d.pdf.CellFormat(0, lineHeight, d.tr(m[1]), "", 1, "L", false, 0, "")
	}
	d.pdf.Ln(4)
}

func (d *Document) parties(inv *Invoice) {
	y := d.pdf.GetY()
	d.party("From", inv.From, pageMargin, y)
	left := d.pdf.GetY()
	d.party("Bill to", inv.To, 110, y)
	if left > d.pdf.GetY() {
		d.pdf.SetY(left)
	}
	d.pdf.Ln(4)
}

func (d *Document) party(title string, p Party, x, y float64) {
	d.pdf.SetXY(x, y)
	d.pdf.SetFont("Helvetica", "B", 10)
	d.pdf.CellFormat(85, 6, d.tr(title), "", 2, "L", false, 0, "")
	d.pdf.SetFont("Helvetica", "", 9)
	lines := []string{p.Name, p.Address, p.Email}
	if p.TaxID != "" {
		lines = append(lines, "Tax ID: "+p.TaxID)
	}
	for _, l := range lines {
		if l == "" {
			continue
		}
		d.pdf.SetX(x)
		d.pdf.MultiCell(85, lineHeight, d.tr(l), "", "L", false)
	}
}

func (d *Document) items(lines []Line) {
	d.pdf.SetFont("Helvetica", "B", 9)
	d.pdf.SetFillColor(235, 235, 235)
	for _, c := range itemColumns {
		d.pdf.CellFormat(c.width, 7, c.title, "B", 0, c.align, true, 0, "")
	}
	d.pdf.Ln(-1)

	d.pdf.SetFont("Helvetica", "", 9)
	for _, l := range lines {
		name := l.Name
		if l.Description != "" {
			name += " - " + l.Description
		}
		cells := []string{name, l.Quantity, l.Unit, l.UnitPrice, l.Total}
		for i, c := range itemColumns {
			d.pdf.CellFormat(c.width, 6, d.tr(fit(cells[i], c.width)), "", 0, c.align, false, 0, "")
		}
		d.pdf.Ln(-1)
	}
	d.pdf.Ln(2)
}

func (d *Document) totals(inv *Invoice) {
	rows := [][2]string{{"Subtotal", inv.Subtotal}}
	if inv.Discount != "" {
		rows = append(rows, [2]string{"Discount", "-" + inv.Discount})
	}
	if inv.Shipping != "" {
		rows = append(rows, [2]string{"Shipping", inv.Shipping})
	}
	tax := "Tax"
	if inv.TaxRate != "" {
		tax = fmt.Sprintf("Tax (%s%%)", inv.TaxRate)
	}
	rows = append(rows, [2]string{tax, inv.TaxAmount})

	d.pdf.SetFont("Helvetica", "", 9)
	for _, r := range rows {
		d.pdf.CellFormat(150, lineHeight, d.tr(r[0]), "", 0, "R", false, 0, "")
		d.pdf.CellFormat(30, lineHeight, d.tr(r[1]), "", 1, "R", false, 0, "")
	}
	d.pdf.SetFont("Helvetica", "B", 11)
	d.pdf.CellFormat(150, 8, "Total", "T", 0, "R", false, 0, "")
	d.pdf.CellFormat(30, 8, d.tr(strings.TrimSpace(inv.Total+" "+inv.Currency)), "T", 1, "R", false, 0, "")
	d.pdf.Ln(4)
}

func (d *Document) payment(inv *Invoice) {
	if inv.Bank != nil {
		d.section("Payment details", []string{
			inv.Bank.BankName,
			labelled("Account holder", inv.Bank.AccountHolder),
			labelled("Account", inv.Bank.AccountNumber),
			labelled("SWIFT/BIC", inv.Bank.SwiftCode),
		})
	}
	if inv.Notes != "" {
		d.section("Notes", []string{inv.Notes})
	}
	if inv.Terms != "" {
		d.section("Terms", []string{inv.Terms})
	}
}

func (d *Document) section(title string, lines []string) {
	d.pdf.SetFont("Helvetica", "B", 10)
	d.pdf.CellFormat(0, 6, d.tr(title), "", 1, "L", false, 0, "")
	d.pdf.SetFont("Helvetica", "", 9)
	for _, l := range lines {
		if l == "" {
			continue
		}
		d.pdf.MultiCell(0, lineHeight, d.tr(l), "", "L", false)
	}
	d.pdf.Ln(2)
}

func labelled(label, value string) string {
	if value == "" {
		return ""
	}
	return label + ": " + value
}

// fit truncates s so that it roughly fits a column of the given width in mm
func fit(s string, width float64) string {
	max := int(width / 1.9)
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
