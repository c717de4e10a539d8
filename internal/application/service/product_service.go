package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/invoicer-api/internal/domain/entity"
	"github.com/sangkips/invoicer-api/internal/domain/repository"
	infraRepo "github.com/sangkips/invoicer-api/internal/infrastructure/repository"
	"github.com/sangkips/invoicer-api/pkg/apperror"
	"github.com/sangkips/invoicer-api/pkg/pagination"
	"github.com/sangkips/invoicer-api/pkg/spreadsheet"
	"github.com/shopspring/decimal"
)

// ProductService handles product-related operations
type ProductService struct {
	productRepo repository.ProductRepository
}

// NewProductService creates a new product service
func NewProductService(productRepo repository.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// CreateProductInput represents the create product input
type CreateProductInput struct {
	Name        string
	Description *string
	Unit        string
	Price       decimal.Decimal
	Currency    string
	IsActive    *bool
}

// CreateProduct creates a new product
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*entity.Product, error) {
	ownerID, ok := infraRepo.GetOwnerID(ctx)
	if !ok {
		return nil, apperror.ErrUnauthorized
	}

	if input.Price.IsNegative() {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "price", Message: "Price must not be negative"},
		})
	}
	currency, err := normalizeCurrency(input.Currency, "")
	if err != nil {
		return nil, err
	}

	product := &entity.Product{
		UserID:      ownerID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Unit:        strings.TrimSpace(input.Unit),
		Price:       input.Price,
		Currency:    currency,
		IsActive:    true,
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// GetProduct retrieves a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// ListProducts lists products with filtering and pagination
func (s *ProductService) ListProducts(ctx context.Context, params *repository.ProductFilterParams) (*pagination.PaginatedResult[entity.Product], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	products, total, err := s.productRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(products, pag), nil
}

// UpdateProductInput represents the update product input
type UpdateProductInput struct {
	ID          uuid.UUID
	Name        *string
	Description *string
	Unit        *string
	Price       *decimal.Decimal
	Currency    *string
	IsActive    *bool
}

// UpdateProduct updates a product. Price, currency and unit cannot change
// once an invoice item references the product.
func (s *ProductService) UpdateProduct(ctx context.Context, input *UpdateProductInput) (*entity.Product, error) {
	product, err := s.GetProduct(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	frozenChange := (input.Price != nil && !input.Price.Equal(product.Price)) ||
		(input.Currency != nil && !strings.EqualFold(strings.TrimSpace(*input.Currency), product.Currency)) ||
		(input.Unit != nil && strings.TrimSpace(*input.Unit) != product.Unit)
	if frozenChange {
		referenced, err := s.productRepo.IsReferenced(ctx, product.ID)
		if err != nil {
			return nil, err
		}
		if referenced {
			return nil, apperror.NewConflictError("Price, currency and unit of a product used on an invoice cannot be changed")
		}
	}

	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.Unit != nil {
		product.Unit = strings.TrimSpace(*input.Unit)
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, apperror.NewValidationError([]apperror.FieldError{
				{Field: "price", Message: "Price must not be negative"},
			})
		}
		product.Price = *input.Price
	}
	if input.Currency != nil {
		currency, err := normalizeCurrency(*input.Currency, product.Currency)
		if err != nil {
			return nil, err
		}
		product.Currency = currency
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// DeleteProduct deletes a product
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, id)
}

// ImportResult contains the result of a product import operation
type ImportResult struct {
	TotalRows  int              `json:"total_rows"`
	Successful int              `json:"successful"`
	Failed     int              `json:"failed"`
	Errors     []ImportRowError `json:"errors,omitempty"`
}

// ImportRowError describes an error for a specific row during import
type ImportRowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ProductImportColumns are the header names of the import workbook
var ProductImportColumns = []string{"name", "description", "unit", "price", "currency", "active"}

// ImportProducts reads an .xlsx workbook and bulk-creates the valid rows.
// Rows with errors are reported and skipped.
func (s *ProductService) ImportProducts(ctx context.Context, r io.Reader, defaultCurrency string) (*ImportResult, error) {
	ownerID, ok := infraRepo.GetOwnerID(ctx)
	if !ok {
		return nil, apperror.ErrUnauthorized
	}

	rows, err := spreadsheet.ReadRows(r, "name", "price")
	if err != nil {
		return nil, apperror.Wrap(http.StatusBadRequest, "Invalid import file: "+err.Error(), err)
	}

	result := &ImportResult{TotalRows: len(rows)}
	var rowErrors []ImportRowError
	var valid []entity.Product
	seen := make(map[string]int)

	for _, row := range rows {
		name := row.Get("name")
		if name == "" {
			rowErrors = append(rowErrors, ImportRowError{Row: row.Number, Field: "name", Message: "Name is required"})
			continue
		}

		price, err := decimal.NewFromString(row.Get("price"))
		if err != nil || price.IsNegative() {
			rowErrors = append(rowErrors, ImportRowError{Row: row.Number, Field: "price", Message: "Price must be a non-negative number"})
			continue
		}

		currency, err := normalizeCurrency(row.Get("currency"), defaultCurrency)
		if err != nil {
			rowErrors = append(rowErrors, ImportRowError{Row: row.Number, Field: "currency", Message: "Currency must be a 3-letter ISO code"})
			continue
		}

		key := strings.ToLower(name) + "|" + currency
		if prev, dup := seen[key]; dup {
			rowErrors = append(rowErrors, ImportRowError{
				Row:     row.Number,
				Field:   "name",
				Message: fmt.Sprintf("Duplicate product '%s' in %s (same as row %d)", name, currency, prev),
			})
			continue
		}
		seen[key] = row.Number

		product := entity.Product{
			ID:       uuid.New(),
			UserID:   ownerID,
			Name:     name,
			Unit:     row.Get("unit"),
			Price:    price,
			Currency: currency,
			IsActive: parseActive(row.Get("active")),
		}
		if d := row.Get("description"); d != "" {
			product.Description = &d
		}
		valid = append(valid, product)
	}

	if len(valid) > 0 {
		if err := s.productRepo.CreateBatch(ctx, valid); err != nil {
			return nil, apperror.Wrap(http.StatusInternalServerError, "Failed to import products", err)
		}
	}

	result.Successful = len(valid)
	result.Failed = len(rowErrors)
	result.Errors = rowErrors

	return result, nil
}

// WriteImportTemplate writes an empty import workbook with an example row
func (s *ProductService) WriteImportTemplate(w io.Writer) error {
	return spreadsheet.WriteRows(w, "Products", ProductImportColumns, [][]string{
		{"Consulting hour", "Senior consultant", "h", "120.00", "USD", "yes"},
	})
}

func parseActive(v string) bool {
	switch strings.ToLower(v) {
	case "no", "false", "0", "inactive", "n":
		return false
	}
	return true
}
