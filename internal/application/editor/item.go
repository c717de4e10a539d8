package editor

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is one row of a draft invoice. ProductID is nil for items that
// do not reference the catalogue; Custom marks rows the user explicitly
// added as free text.
type LineItem struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   *uuid.UUID      `json:"product_id,omitempty"`
	Custom      bool            `json:"custom"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Unit        string          `json:"unit"`
	Quantity    decimal.Decimal `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Total       decimal.Decimal `json:"total"`
}

// IsCatalogue reports whether the item references a catalogue product.
func (i LineItem) IsCatalogue() bool {
	return i.ProductID != nil
}

// CreateItem returns an empty item with a fresh id.
func CreateItem() LineItem {
	return LineItem{
		ID:       uuid.New(),
		Quantity: decimal.Zero,
		Price:    decimal.Zero,
		Total:    decimal.Zero,
	}
}

// CreateCustomItem returns an empty free-text item with a fresh id.
func CreateCustomItem() LineItem {
	item := CreateItem()
	item.Custom = true
	return item
}

// DuplicateItem returns a copy of item under a new id.
func DuplicateItem(item LineItem) LineItem {
	dup := item
	dup.ID = uuid.New()
	if item.ProductID != nil {
		pid := *item.ProductID
		dup.ProductID = &pid
	}
	return dup
}

func (i LineItem) withTotal() LineItem {
	i.Total = LineTotal(i.Quantity, i.Price)
	return i
}
