package editor

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvalidReason explains why a line item cannot be saved as-is.
type InvalidReason string

const (
	// ReasonCurrency: the product is priced in another currency and the
	// customer has no override for it.
	ReasonCurrency InvalidReason = "currency"
	// ReasonCustomPrice: an override exists but is in another currency too.
	ReasonCustomPrice InvalidReason = "customPrice"
)

// InvalidItem pairs a line item with the reason it is invalid.
type InvalidItem struct {
	Item   LineItem      `json:"item"`
	Reason InvalidReason `json:"reason"`
}

// AnalyzeItems classifies every item of the draft and returns the invalid
// ones in draft order.
func AnalyzeItems(form FormData, idx *Indexes) []InvalidItem {
	invalid := make([]InvalidItem, 0)
	for _, item := range form.Items {
		if reason, bad := classifyItem(item, form.Currency, form.CustomerID, idx); bad {
			invalid = append(invalid, InvalidItem{Item: item, Reason: reason})
		}
	}
	return invalid
}

func classifyItem(item LineItem, currency string, customerID *uuid.UUID, idx *Indexes) (InvalidReason, bool) {
	if !item.IsCatalogue() {
		return "", false
	}

	// a product that disappeared from the catalogue is treated like a currency mismatch
	product, ok := idx.Products[*item.ProductID]
	if !ok {
		return ReasonCurrency, true
	}
	if product.Currency == currency {
		return "", false
	}

	if customerID == nil {
		return ReasonCurrency, true
	}
	cp := idx.CustomPriceFor(*customerID, product.ID)
	if cp == nil {
		return ReasonCurrency, true
	}
	if cp.Currency == currency {
		return "", false
	}
	return ReasonCustomPrice, true
}

// resolvePrice picks the price a catalogue product should carry in a draft
// billed in currency to the given customer: the customer's override when its
// currency matches, else the catalogue price when that matches.
func resolvePrice(productID uuid.UUID, customerID *uuid.UUID, currency string, idx *Indexes) (decimal.Decimal, bool) {
	product, ok := idx.Products[productID]
	if !ok {
		return decimal.Zero, false
	}
	if customerID != nil {
		if cp := idx.CustomPriceFor(*customerID, productID); cp != nil && cp.Currency == currency {
			return cp.Price, true
		}
	}
	if product.Currency == currency {
		return product.Price, true
	}
	return decimal.Zero, false
}
