package editor

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/invoicer-api/internal/domain/entity"
	"github.com/sangkips/invoicer-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of issue and due dates.
const DateLayout = "2006-01-02"

// FormData is the invoice being edited.
//
// Currency always equals the currency of the selected bank account. It is
// only written by SelectBankAccount and SelectSenderProfile.
type FormData struct {
	InvoiceNumber   string             `json:"invoice_number"`
	Status          enum.InvoiceStatus `json:"status"`
	SenderProfileID *uuid.UUID         `json:"sender_profile_id,omitempty"`
	BankAccountID   *uuid.UUID         `json:"bank_account_id,omitempty"`
	CustomerID      *uuid.UUID         `json:"customer_id,omitempty"`
	IssueDate       time.Time          `json:"issue_date"`
	DueDate         time.Time          `json:"due_date"`
	Currency        string             `json:"currency"`
	PurchaseOrder   string             `json:"purchase_order"`
	PaymentTerms    string             `json:"payment_terms"`
	TaxRate         decimal.Decimal    `json:"tax_rate"`
	Discount        decimal.Decimal    `json:"discount"`
	Shipping        decimal.Decimal    `json:"shipping"`
	Notes           string             `json:"notes"`
	Terms           string             `json:"terms"`
	Items           []LineItem         `json:"items"`
}

// clone copies the form so the previous value is never modified in place.
func (f FormData) clone() FormData {
	next := f
	next.Items = append(make([]LineItem, 0, len(f.Items)), f.Items...)
	return next
}

func (f FormData) itemIndex(id uuid.UUID) int {
	for i, it := range f.Items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// FormPatch updates plain form fields. Nil pointers leave a field unchanged.
// Selections and currency are changed through their own operations.
type FormPatch struct {
	InvoiceNumber *string
	Status        *enum.InvoiceStatus
	IssueDate     *time.Time
	DueDate       *time.Time
	PurchaseOrder *string
	PaymentTerms  *string
	TaxRate       *decimal.Decimal
	Discount      *decimal.Decimal
	Shipping      *decimal.Decimal
	Notes         *string
	Terms         *string
}

func (p FormPatch) validate() error {
	if p.Status != nil && !p.Status.IsValid() {
		return fmt.Errorf("%w: status %d", ErrInvalidFieldValue, int(*p.Status))
	}
	for name, v := range map[string]*decimal.Decimal{"tax_rate": p.TaxRate, "discount": p.Discount, "shipping": p.Shipping} {
		if v != nil && v.IsNegative() {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidFieldValue, name)
		}
	}
	return nil
}

func (p FormPatch) apply(f FormData) FormData {
	if p.InvoiceNumber != nil {
		f.InvoiceNumber = *p.InvoiceNumber
	}
	if p.Status != nil {
		f.Status = *p.Status
	}
	if p.IssueDate != nil {
		f.IssueDate = *p.IssueDate
	}
	if p.DueDate != nil {
		f.DueDate = *p.DueDate
	}
	if p.PurchaseOrder != nil {
		f.PurchaseOrder = *p.PurchaseOrder
	}
	if p.PaymentTerms != nil {
		f.PaymentTerms = *p.PaymentTerms
	}
	if p.TaxRate != nil {
		f.TaxRate = *p.TaxRate
	}
	if p.Discount != nil {
		f.Discount = *p.Discount
	}
	if p.Shipping != nil {
		f.Shipping = *p.Shipping
	}
	if p.Notes != nil {
		f.Notes = *p.Notes
	}
	if p.Terms != nil {
		f.Terms = *p.Terms
	}
	return f
}

// fieldPatch turns a single key/value update into a FormPatch.
func fieldPatch(key string, value any) (FormPatch, error) {
	var p FormPatch
	var err error
	switch key {
	case "invoice_number":
		p.InvoiceNumber, err = asString(key, value)
	case "purchase_order":
		p.PurchaseOrder, err = asString(key, value)
	case "payment_terms":
		p.PaymentTerms, err = asString(key, value)
	case "notes":
		p.Notes, err = asString(key, value)
	case "terms":
		p.Terms, err = asString(key, value)
	case "status":
		p.Status, err = asStatus(value)
	case "issue_date":
		p.IssueDate, err = asDate(key, value)
	case "due_date":
		p.DueDate, err = asDate(key, value)
	case "tax_rate":
		p.TaxRate, err = asDecimal(key, value)
	case "discount":
		p.Discount, err = asDecimal(key, value)
	case "shipping":
		p.Shipping, err = asDecimal(key, value)
	case "currency", "sender_profile_id", "bank_account_id", "customer_id", "items":
		return p, fmt.Errorf("%w: %s is changed through its own operation", ErrUnknownField, key)
	default:
		return p, fmt.Errorf("%w: %s", ErrUnknownField, key)
	}
	return p, err
}

func asString(key string, value any) (*string, error) {
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("%w: %s expects a string", ErrInvalidFieldValue, key)
	}
	return &s, nil
}

func asStatus(value any) (*enum.InvoiceStatus, error) {
	var s enum.InvoiceStatus
	switch v := value.(type) {
	case enum.InvoiceStatus:
		s = v
	case string:
		parsed, err := enum.ParseInvoiceStatus(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFieldValue, err)
		}
		s = parsed
	case int:
		s = enum.InvoiceStatus(v)
	case float64:
		if v != math.Trunc(v) {
			return nil, fmt.Errorf("%w: status %v is not a whole number", ErrInvalidFieldValue, v)
		}
		s = enum.InvoiceStatus(int(v))
	default:
		return nil, fmt.Errorf("%w: status has type %T", ErrInvalidFieldValue, value)
	}
	return &s, nil
}

func asDate(key string, value any) (*time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return &v, nil
	case string:
		t, err := time.Parse(DateLayout, v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must use YYYY-MM-DD", ErrInvalidFieldValue, key)
		}
		return &t, nil
	}
	return nil, fmt.Errorf("%w: %s has type %T", ErrInvalidFieldValue, key, value)
}

func asDecimal(key string, value any) (*decimal.Decimal, error) {
	var d decimal.Decimal
	switch v := value.(type) {
	case decimal.Decimal:
		d = v
	case string:
		parsed, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s is not a number", ErrInvalidFieldValue, key)
		}
		d = parsed
	case json.Number:
		parsed, err := decimal.NewFromString(v.String())
		if err != nil {
			return nil, fmt.Errorf("%w: %s is not a number", ErrInvalidFieldValue, key)
		}
		d = parsed
	case float64:
		d = decimal.NewFromFloat(v)
	case int:
		d = decimal.NewFromInt(int64(v))
	case int64:
		d = decimal.NewFromInt(v)
	default:
		return nil, fmt.Errorf("%w: %s has type %T", ErrInvalidFieldValue, key, value)
	}
	return &d, nil
}

// ItemPatch updates a line item. Setting ProductID links the item to a
// catalogue product and fills its name, description, unit and price; the
// explicit fields of the same patch are applied afterwards. Custom turns the
// item back into free text.
type ItemPatch struct {
	ProductID   *uuid.UUID
	Custom      bool
	Name        *string
	Description *string
	Unit        *string
	Quantity    *decimal.Decimal
	Price       *decimal.Decimal
}

func (p ItemPatch) validate() error {
	if p.Quantity != nil && p.Quantity.IsNegative() {
		return fmt.Errorf("%w: quantity must not be negative", ErrInvalidFieldValue)
	}
	if p.Price != nil && p.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidFieldValue)
	}
	return nil
}

// formFromInvoice loads a persisted invoice into a form.
func formFromInvoice(inv *entity.Invoice) FormData {
	form := FormData{
		InvoiceNumber:   inv.InvoiceNumber,
		Status:          inv.Status,
		SenderProfileID: copyID(inv.SenderProfileID),
		BankAccountID:   copyID(inv.BankAccountID),
		CustomerID:      copyID(inv.CustomerID),
		IssueDate:       inv.IssueDate,
		DueDate:         inv.DueDate,
		Currency:        inv.Currency,
		PurchaseOrder:   inv.PurchaseOrder,
		PaymentTerms:    inv.PaymentTerms,
		TaxRate:         inv.TaxRate,
		Discount:        inv.Discount,
		Shipping:        inv.Shipping,
		Notes:           inv.Notes,
		Terms:           inv.Terms,
		Items:           make([]LineItem, 0, len(inv.Items)),
	}
	for _, it := range inv.Items {
		form.Items = append(form.Items, LineItem{
			ID:          it.ID,
			ProductID:   copyID(it.ProductID),
			Custom:      it.ProductID == nil,
			Name:        it.Name,
			Description: it.Description,
			Unit:        it.Unit,
			Quantity:    it.Quantity,
			Price:       it.UnitPrice,
		}.withTotal())
	}
	return form
}

func copyID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
