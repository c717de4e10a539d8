package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/invoicer-api/internal/domain/entity"
	"github.com/sangkips/invoicer-api/internal/domain/repository"
	infraRepo "github.com/sangkips/invoicer-api/internal/infrastructure/repository"
	"github.com/sangkips/invoicer-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// CustomPriceService manages per-customer product price overrides
type CustomPriceService struct {
	priceRepo    repository.CustomPriceRepository
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
}

// NewCustomPriceService creates a new custom price service
func NewCustomPriceService(
	priceRepo repository.CustomPriceRepository,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
) *CustomPriceService {
	return &CustomPriceService{
		priceRepo:    priceRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
	}
}

// SetCustomPriceInput represents the input to create or replace an override
type SetCustomPriceInput struct {
	CustomerID uuid.UUID
	ProductID  uuid.UUID
	Price      decimal.Decimal
	// Currency defaults to the product currency
	Currency string
}

// SetCustomPrice creates the override for a customer and product, or
// replaces the existing one.
func (s *CustomPriceService) SetCustomPrice(ctx context.Context, input *SetCustomPriceInput) (*entity.CustomPrice, error) {
	ownerID, ok := infraRepo.GetOwnerID(ctx)
	if !ok {
		return nil, apperror.ErrUnauthorized
	}
	if input.Price.IsNegative() {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "price", Message: "Price must not be negative"},
		})
	}

	customer, err := s.customerRepo.GetByID(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}
	product, err := s.productRepo.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}

	currency, err := normalizeCurrency(input.Currency, product.Currency)
	if err != nil {
		return nil, err
	}

	existing, err := s.priceRepo.GetByPair(ctx, customer.ID, product.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		existing.Price = input.Price
		existing.Currency = currency
		if err := s.priceRepo.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	price := &entity.CustomPrice{
		UserID:     ownerID,
		CustomerID: customer.ID,
		ProductID:  product.ID,
		Price:      input.Price,
		Currency:   currency,
	}
	if err := s.priceRepo.Create(ctx, price); err != nil {
		return nil, err
	}
	return price, nil
}

// ListForCustomer returns the overrides of one customer
func (s *CustomPriceService) ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]entity.CustomPrice, error) {
	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}
	prices, err := s.priceRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if prices == nil {
		prices = []entity.CustomPrice{}
	}
	return prices, nil
}

// DeleteCustomPrice removes an override
func (s *CustomPriceService) DeleteCustomPrice(ctx context.Context, id uuid.UUID) error {
	price, err := s.priceRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if price == nil {
		return apperror.NewNotFoundError("Custom price")
	}
	return s.priceRepo.Delete(ctx, id)
}
