package request

import "github.com/google/uuid"

// SenderProfileRequest creates or updates a sender profile
type SenderProfileRequest struct {
	Name                 *string    `json:"name" binding:"omitempty,min=1,max=255"`
	Email                *string    `json:"email" binding:"omitempty,email"`
	Phone                *string    `json:"phone"`
	TaxID                *string    `json:"tax_id"`
	Address              *string    `json:"address"`
	InvoicePrefix        *string    `json:"invoice_prefix" binding:"omitempty,max=20"`
	DefaultBankAccountID *uuid.UUID `json:"default_bank_account_id"`
}

// BankAccountRequest creates or updates a bank account
type BankAccountRequest struct {
	BankName      *string `json:"bank_name"`
	AccountHolder *string `json:"account_holder"`
	AccountNumber *string `json:"account_number"`
	SwiftCode     *string `json:"swift_code" binding:"omitempty,max=20"`
	Currency      string  `json:"currency" binding:"omitempty,len=3"`
	MakeDefault   bool    `json:"make_default"`
}
