package request

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/invoicer-api/internal/application/editor"
	"github.com/sangkips/invoicer-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// OpenSessionRequest starts an editor session, on an existing invoice when
// InvoiceID is set
type OpenSessionRequest struct {
	InvoiceID *uuid.UUID `json:"invoice_id"`
}

// UpdateFieldsRequest changes several plain form fields at once. Dates use
// the YYYY-MM-DD layout.
type UpdateFieldsRequest struct {
	InvoiceNumber *string             `json:"invoice_number"`
	Status        *enum.InvoiceStatus `json:"status"`
	IssueDate     *string             `json:"issue_date"`
	DueDate       *string             `json:"due_date"`
	PurchaseOrder *string             `json:"purchase_order"`
	PaymentTerms  *string             `json:"payment_terms"`
	TaxRate       *decimal.Decimal    `json:"tax_rate"`
	Discount      *decimal.Decimal    `json:"discount"`
	Shipping      *decimal.Decimal    `json:"shipping"`
	Notes         *string             `json:"notes"`
	Terms         *string             `json:"terms"`
}

// ToPatch converts the request into an editor patch
func (r UpdateFieldsRequest) ToPatch() (editor.FormPatch, error) {
	patch := editor.FormPatch{
		InvoiceNumber: r.InvoiceNumber,
		Status:        r.Status,
		PurchaseOrder: r.PurchaseOrder,
		PaymentTerms:  r.PaymentTerms,
		TaxRate:       r.TaxRate,
		Discount:      r.Discount,
		Shipping:      r.Shipping,
		Notes:         r.Notes,
		Terms:         r.Terms,
	}
	var err error
	if patch.IssueDate, err = parseDate("issue_date", r.IssueDate); err != nil {
		return patch, err
	}
	if patch.DueDate, err = parseDate("due_date", r.DueDate); err != nil {
		return patch, err
	}
	return patch, nil
}

func parseDate(field string, value *string) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	t, err := time.Parse(editor.DateLayout, *value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must use YYYY-MM-DD", editor.ErrInvalidFieldValue, field)
	}
	return &t, nil
}

// UpdateFieldRequest changes a single form field by key
type UpdateFieldRequest struct {
	Key   string `json:"key" binding:"required"`
	Value any    `json:"value"`
}

// FieldValue returns the value in the shape the editor expects. Numbers are
// decoded as json.Number so amounts keep their exact decimal text.
func (r UpdateFieldRequest) FieldValue() any {
	n, ok := r.Value.(json.Number)
	if !ok {
		return r.Value
	}
	if r.Key == "status" {
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
	}
	return n
}

// SelectRequest selects a sender profile, bank account or customer.
// A null ID clears the customer.
type SelectRequest struct {
	ID *uuid.UUID `json:"id"`
}

// AddItemRequest appends a line item
type AddItemRequest struct {
	Custom bool `json:"custom"`
}

// UpdateItemRequest changes a line item. Setting product_id fills the item
// from the catalogue before the explicit fields are applied.
type UpdateItemRequest struct {
	ProductID   *uuid.UUID       `json:"product_id"`
	Custom      bool             `json:"custom"`
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Unit        *string          `json:"unit"`
	Quantity    *decimal.Decimal `json:"quantity"`
	Price       *decimal.Decimal `json:"price"`
}

// ToPatch converts the request into an editor item patch
func (r UpdateItemRequest) ToPatch() editor.ItemPatch {
	return editor.ItemPatch{
		ProductID:   r.ProductID,
		Custom:      r.Custom,
		Name:        r.Name,
		Description: r.Description,
		Unit:        r.Unit,
		Quantity:    r.Quantity,
		Price:       r.Price,
	}
}

// ReorderItemsRequest moves the item at OldIndex to NewIndex
type ReorderItemsRequest struct {
	OldIndex *int `json:"old_index" binding:"required"`
	NewIndex *int `json:"new_index" binding:"required"`
}
