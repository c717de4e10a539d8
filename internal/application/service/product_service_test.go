package service

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/sangkips/invoicer-api/pkg/spreadsheet"
)

func TestUpdateProductFrozenOnceReferenced(t *testing.T) {
	s := newStore()
	svc := NewProductService(fakeProductRepo{s})
	product := s.addProduct("Widget", "10", "USD")
	s.referenced[product.ID] = true

	newPrice := dec("12")
	eur := "eur"
	unit := "box"
	name := "Widget v2"
	samePrice := dec("10.00")

	tests := []struct {
		name  string
		input *UpdateProductInput
		code  int
	}{
		{"price", &UpdateProductInput{ID: product.ID, Price: &newPrice}, http.StatusConflict},
		{"currency", &UpdateProductInput{ID: product.ID, Currency: &eur}, http.StatusConflict},
		{"unit", &UpdateProductInput{ID: product.ID, Unit: &unit}, http.StatusConflict},
		{"name is free", &UpdateProductInput{ID: product.ID, Name: &name}, 0},
		{"same price is not a change", &UpdateProductInput{ID: product.ID, Price: &samePrice}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateProduct(ownerCtx(), tt.input)
			if appCode(err) != tt.code {
				t.Fatalf("expected %d got %v", tt.code, err)
			}
		})
	}

	s.referenced[product.ID] = false
	updated, err := svc.UpdateProduct(ownerCtx(), &UpdateProductInput{ID: product.ID, Price: &newPrice, Currency: &eur})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.Price.Equal(newPrice) || updated.Currency != "EUR" {
		t.Fatalf("expected 12 EUR got %s %s", updated.Price, updated.Currency)
	}
}

func TestCreateProductValidation(t *testing.T) {
	s := newStore()
	svc := NewProductService(fakeProductRepo{s})

	if _, err := svc.CreateProduct(ownerCtx(), &CreateProductInput{Name: "x", Price: dec("-1"), Currency: "USD"}); appCode(err) != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for negative price got %v", err)
	}
	if _, err := svc.CreateProduct(ownerCtx(), &CreateProductInput{Name: "x", Price: dec("1"), Currency: "dollars"}); appCode(err) != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for bad currency got %v", err)
	}
	p, err := svc.CreateProduct(ownerCtx(), &CreateProductInput{Name: " Widget ", Price: dec("1"), Currency: "usd"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Widget" || p.Currency != "USD" || !p.IsActive || p.UserID != testOwner {
		t.Fatalf("unexpected product %+v", p)
	}
}

func TestImportProducts(t *testing.T) {
	s := newStore()
	svc := NewProductService(fakeProductRepo{s})

	var buf bytes.Buffer
	err := spreadsheet.WriteRows(&buf, "Products", ProductImportColumns, [][]string{
		{"Hosting", "Monthly plan", "month", "25", "usd", ""},
		{"", "", "", "10", "USD", ""},
		{"Support", "", "h", "-5", "USD", ""},
		{"Licence", "", "", "99.90", "", "no"},
		{"hosting", "", "", "30", "USD", ""},
		{"Audit", "", "", "500", "euro", ""},
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	res, err := svc.ImportProducts(ownerCtx(), &buf, "GBP")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalRows != 6 || res.Successful != 2 || res.Failed != 4 {
		t.Fatalf("unexpected result %+v", res)
	}

	wantFields := []string{"name", "price", "name", "currency"}
	for i, e := range res.Errors {
		if e.Field != wantFields[i] {
			t.Fatalf("error %d: expected field %s got %s (%s)", i, wantFields[i], e.Field, e.Message)
		}
	}
	if res.Errors[2].Row != 6 || !strings.Contains(res.Errors[2].Message, "row 2") {
		t.Fatalf("duplicate must point at the first occurrence: %+v", res.Errors[2])
	}

	all, _ := fakeProductRepo{s}.ListAll(ownerCtx())
	if len(all) != 2 {
		t.Fatalf("expected 2 stored products got %d", len(all))
	}
	for _, p := range all {
		if p.Name == "Licence" && (p.Currency != "GBP" || p.IsActive) {
			t.Fatalf("expected default currency and inactive flag, got %+v", p)
		}
	}
}

func TestImportProductsRejectsBadFile(t *testing.T) {
	svc := NewProductService(fakeProductRepo{newStore()})
	if _, err := svc.ImportProducts(ownerCtx(), strings.NewReader("nope"), "USD"); appCode(err) != http.StatusBadRequest {
		t.Fatalf("expected 400 got %v", err)
	}
}

func TestWriteImportTemplate(t *testing.T) {
	svc := NewProductService(fakeProductRepo{newStore()})
	var buf bytes.Buffer
	if err := svc.WriteImportTemplate(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows, err := spreadsheet.ReadRows(&buf, ProductImportColumns...)
	if err != nil || len(rows) != 1 {
		t.Fatalf("template must be importable, got %d rows %v", len(rows), err)
	}
}
