package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/invoicer-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice represents a persisted invoice. Sender, customer and bank account
// details are snapshotted when the invoice is written so later edits to the
// reference data do not alter issued documents.
type Invoice struct {
	ID              uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	UserID          uuid.UUID          `gorm:"type:uuid;not null;index" json:"user_id"`
	InvoiceNumber   string             `gorm:"size:100;not null;uniqueIndex:idx_invoice_sender_number" json:"invoice_number"`
	Status          enum.InvoiceStatus `gorm:"default:0;index" json:"status"`
	SenderProfileID *uuid.UUID         `gorm:"type:uuid;index;uniqueIndex:idx_invoice_sender_number" json:"sender_profile_id,omitempty"`
	BankAccountID   *uuid.UUID         `gorm:"type:uuid" json:"bank_account_id,omitempty"`
	CustomerID      *uuid.UUID         `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	IssueDate       time.Time          `gorm:"type:date" json:"issue_date"`
	DueDate         time.Time          `gorm:"type:date" json:"due_date"`
	Currency        string             `gorm:"size:3;not null" json:"currency"`
	PurchaseOrder   string             `gorm:"size:100" json:"purchase_order"`
	PaymentTerms    string             `gorm:"size:255" json:"payment_terms"`
	TaxRate         decimal.Decimal    `gorm:"type:decimal(7,4);default:0" json:"tax_rate"`
	Discount        decimal.Decimal    `gorm:"type:decimal(15,4);default:0" json:"discount"`
	Shipping        decimal.Decimal    `gorm:"type:decimal(15,4);default:0" json:"shipping"`
	Subtotal        decimal.Decimal    `gorm:"type:decimal(15,4);default:0" json:"subtotal"`
	TaxAmount       decimal.Decimal    `gorm:"type:decimal(15,4);default:0" json:"tax_amount"`
	Total           decimal.Decimal    `gorm:"type:decimal(15,4);default:0" json:"total"`
	Notes           string             `gorm:"type:text" json:"notes"`
	Terms           string             `gorm:"type:text" json:"terms"`

	// Snapshots taken at write time
	SenderName        string `gorm:"size:255" json:"sender_name"`
	SenderEmail       string `gorm:"size:255" json:"sender_email"`
	SenderAddress     string `gorm:"type:text" json:"sender_address"`
	SenderTaxID       string `gorm:"size:50" json:"sender_tax_id"`
	CustomerName      string `gorm:"size:255" json:"customer_name"`
	CustomerEmail     string `gorm:"size:255" json:"customer_email"`
	CustomerAddress   string `gorm:"type:text" json:"customer_address"`
	CustomerTaxID     string `gorm:"size:50" json:"customer_tax_id"`
	BankName          string `gorm:"size:255" json:"bank_name"`
	BankAccountHolder string `gorm:"size:255" json:"bank_account_holder"`
	BankAccountNumber string `gorm:"size:100" json:"bank_account_number"`
	BankSwiftCode     string `gorm:"size:20" json:"bank_swift_code"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Items []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
}

// BeforeCreate generates a UUID before creating a new invoice
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// InvoiceItem represents a line item of an invoice. A nil ProductID marks a
// free-text custom item.
type InvoiceItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	Position    int             `gorm:"not null" json:"position"`
	ProductID   *uuid.UUID      `gorm:"type:uuid;index" json:"product_id,omitempty"`
	Name        string          `gorm:"size:255" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Unit        string          `gorm:"size:50" json:"unit"`
	Quantity    decimal.Decimal `gorm:"type:decimal(15,4);not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(15,4);not null" json:"unit_price"`
	Total       decimal.Decimal `gorm:"type:decimal(15,4);not null" json:"total"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new invoice item
func (ii *InvoiceItem) BeforeCreate(tx *gorm.DB) error {
	if ii.ID == uuid.Nil {
		ii.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the InvoiceItem model
func (InvoiceItem) TableName() string {
	return "invoice_items"
}
