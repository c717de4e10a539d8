package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/invoicer-api/internal/domain/entity"
	"github.com/sangkips/invoicer-api/pkg/pagination"
)

// ProductRepository defines the interface for product data operations
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	CreateBatch(ctx context.Context, products []entity.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *ProductFilterParams) ([]entity.Product, int64, error)
	ListAll(ctx context.Context) ([]entity.Product, error)
	// IsReferenced reports whether any invoice item points at the product
	IsReferenced(ctx context.Context, id uuid.UUID) (bool, error)
}

// ProductFilterParams contains filtering parameters for product queries
type ProductFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	Currency   string
	ActiveOnly bool
	SortBy     string
	SortOrder  string
}

// CustomPriceRepository defines the interface for per-customer price overrides
type CustomPriceRepository interface {
	Create(ctx context.Context, price *entity.CustomPrice) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.CustomPrice, error)
	GetByPair(ctx context.Context, customerID, productID uuid.UUID) (*entity.CustomPrice, error)
	Update(ctx context.Context, price *entity.CustomPrice) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]entity.CustomPrice, error)
	ListAll(ctx context.Context) ([]entity.CustomPrice, error)
}
