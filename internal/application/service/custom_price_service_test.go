package service

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
)

func TestSetCustomPrice(t *testing.T) {
	s := newStore()
	svc := NewCustomPriceService(fakePriceRepo{s}, fakeCustomerRepo{s}, fakeProductRepo{s})
	customer := s.addCustomer("Globex")
	product := s.addProduct("Widget", "10", "EUR")
	ctx := ownerCtx()

	price, err := svc.SetCustomPrice(ctx, &SetCustomPriceInput{CustomerID: customer.ID, ProductID: product.ID, Price: dec("8")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price.Currency != "EUR" {
		t.Fatalf("currency must default to the product's, got %s", price.Currency)
	}

	again, err := svc.SetCustomPrice(ctx, &SetCustomPriceInput{CustomerID: customer.ID, ProductID: product.ID, Price: dec("7.5")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.ID != price.ID || len(s.prices) != 1 || !s.prices[price.ID].Price.Equal(dec("7.5")) {
		t.Fatalf("setting a price twice must replace the override")
	}

	list, _ := svc.ListForCustomer(ctx, customer.ID)
	if len(list) != 1 {
		t.Fatalf("expected one override got %d", len(list))
	}

	tests := []struct {
		name  string
		input *SetCustomPriceInput
		code  int
	}{
		{"negative", &SetCustomPriceInput{CustomerID: customer.ID, ProductID: product.ID, Price: dec("-1")}, http.StatusUnprocessableEntity},
		{"unknown customer", &SetCustomPriceInput{CustomerID: uuid.New(), ProductID: product.ID, Price: dec("1")}, http.StatusNotFound},
		{"unknown product", &SetCustomPriceInput{CustomerID: customer.ID, ProductID: uuid.New(), Price: dec("1")}, http.StatusNotFound},
	}
	for _, tt := range tests {
		if _, err := svc.SetCustomPrice(ctx, tt.input); appCode(err) != tt.code {
			t.Fatalf("%s: expected %d got %v", tt.name, tt.code, err)
		}
	}

	if err := svc.DeleteCustomPrice(ctx, price.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.DeleteCustomPrice(ctx, price.ID); appCode(err) != http.StatusNotFound {
		t.Fatalf("expected 404 got %v", err)
	}
}
