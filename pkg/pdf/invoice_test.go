package pdf

import (
	"bytes"
	"strings"
	"testing"
)

func sampleInvoice() *Invoice {
	return &Invoice{
		Number:    "ACME-0007",
		Status:    "Pending",
		IssueDate: "2026-03-01",
		DueDate:   "2026-03-31",
		Currency:  "EUR",
		From:      Party{Name: "Acme GmbH", Address: "Hauptstraße 1\n10115 Berlin", TaxID: "DE123"},
		To:        Party{Name: "Globex", Email: "billing@globex.test"},
		Bank:      &BankDetails{BankName: "Sparkasse", AccountNumber: "DE89 3704 0044 0532 0130 00"},
		Lines: []Line{
			{Name: "Consulting", Quantity: "2", Unit: "h", UnitPrice: "150.00", Total: "300.00"},
			{Name: strings.Repeat("long name ", 20), Quantity: "1", UnitPrice: "1.00", Total: "1.00"},
		},
		Subtotal:  "301.00",
		TaxRate:   "19",
		TaxAmount: "57.19",
		Total:     "358.19",
		Notes:     "Thank you",
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, sampleInvoice()); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatalf("expected PDF header, got %q", buf.Bytes()[:8])
	}
}

func TestRenderManyLinesAddsPages(t *testing.T) {
	inv := sampleInvoice()
	for i := 0; i < 120; i++ {
		inv.Lines = append(inv.Lines, Line{Name: "Widget", Quantity: "1", UnitPrice: "1.00", Total: "1.00"})
	}
	doc := NewDocument().Invoice(inv)
	if doc.pdf.PageNo() < 2 {
		t.Fatalf("expected page break, got %d pages", doc.pdf.PageNo())
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("output: %v", err)
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		in    string
		width float64
		want  string
	}{
		{"short", 80, "short"},
		{"abcdefghijklmnop", 20, "abcdefg..."},
	}
	for _, tt := range tests {
		if got := fit(tt.in, tt.width); got != tt.want {
			t.Fatalf("expected %q got %q", tt.want, got)
		}
	}
}
