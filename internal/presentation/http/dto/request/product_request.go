package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a product creation request
type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required,min=1,max=255"`
	Description *string         `json:"description"`
	Unit        string          `json:"unit" binding:"omitempty,max=50"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency" binding:"required,len=3"`
	IsActive    *bool           `json:"is_active"`
}

// UpdateProductRequest represents a product update request
type UpdateProductRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string          `json:"description"`
	Unit        *string          `json:"unit" binding:"omitempty,max=50"`
	Price       *decimal.Decimal `json:"price"`
	Currency    *string          `json:"currency" binding:"omitempty,len=3"`
	IsActive    *bool            `json:"is_active"`
}

// ProductFilterRequest represents product filter parameters
type ProductFilterRequest struct {
	Search     string `form:"search"`
	Currency   string `form:"currency"`
	ActiveOnly bool   `form:"active_only"`
	SortBy     string `form:"sort_by"`
	SortOrder  string `form:"sort_order"`
	Page       int    `form:"page"`
	PerPage    int    `form:"per_page"`
}

// SetCustomPriceRequest creates or replaces a customer's price for a product
type SetCustomPriceRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency" binding:"omitempty,len=3"`
}
