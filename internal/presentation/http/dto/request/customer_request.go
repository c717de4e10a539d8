package request

// CreateCustomerRequest represents a customer creation request
type CreateCustomerRequest struct {
	Name     string  `json:"name" binding:"required,min=1,max=255"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Phone    *string `json:"phone"`
	TaxID    *string `json:"tax_id"`
	Address  *string `json:"address"`
	Currency string  `json:"currency" binding:"omitempty,len=3"`
}

// UpdateCustomerRequest represents a customer update request
type UpdateCustomerRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1,max=255"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Phone    *string `json:"phone"`
	TaxID    *string `json:"tax_id"`
	Address  *string `json:"address"`
	Currency *string `json:"currency" binding:"omitempty,len=3"`
}
