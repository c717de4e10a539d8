package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SenderProfile is a business identity invoices are issued from.
// Every profile owns its own invoice numbering sequence.
type SenderProfile struct {
	ID                   uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	UserID               uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Name                 string         `gorm:"size:255;not null" json:"name"`
	Email                *string        `gorm:"size:255" json:"email,omitempty"`
	Phone                *string        `gorm:"size:50" json:"phone,omitempty"`
	TaxID                *string        `gorm:"size:50" json:"tax_id,omitempty"`
	Address              *string        `gorm:"type:text" json:"address,omitempty"`
	InvoicePrefix        string         `gorm:"size:20;not null;default:'INV'" json:"invoice_prefix"`
	InvoiceCounter       int            `gorm:"not null;default:0" json:"invoice_counter"`
	DefaultBankAccountID *uuid.UUID     `gorm:"type:uuid" json:"default_bank_account_id,omitempty"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	BankAccounts []BankAccount `gorm:"foreignKey:SenderProfileID" json:"bank_accounts,omitempty"`
}

// BeforeCreate generates a UUID before creating a new sender profile
func (s *SenderProfile) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the SenderProfile model
func (SenderProfile) TableName() string {
	return "sender_profiles"
}

// BankAccount is a payout account belonging to a sender profile.
// Its currency decides the currency of every invoice paid into it.
type BankAccount struct {
	ID              uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	UserID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	SenderProfileID uuid.UUID      `gorm:"type:uuid;not null;index" json:"sender_profile_id"`
	BankName        string         `gorm:"size:255;not null" json:"bank_name"`
	AccountHolder   string         `gorm:"size:255" json:"account_holder"`
	AccountNumber   string         `gorm:"size:100;not null" json:"account_number"`
	SwiftCode       *string        `gorm:"size:20" json:"swift_code,omitempty"`
	Currency        string         `gorm:"size:3;not null" json:"currency"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new bank account
func (b *BankAccount) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the BankAccount model
func (BankAccount) TableName() string {
	return "bank_accounts"
}
