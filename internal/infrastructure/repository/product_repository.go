package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/invoicer-api/internal/domain/entity"
	domainRepo "github.com/sangkips/invoicer-api/internal/domain/repository"
	"github.com/sangkips/invoicer-api/pkg/pagination"
	"gorm.io/gorm"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) domainRepo.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// CreateBatch inserts products in a single transaction
func (r *productRepository) CreateBatch(ctx context.Context, products []entity.Product) error {
	if len(products) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&products, 100).Error
	})
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	err := r.db.WithContext(ctx).Scopes(OwnerScope(ctx)).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Scopes(OwnerScope(ctx)).Delete(&entity.Product{}, "id = ?", id).Error
}

var productSortColumns = []string{"name", "price", "currency", "created_at"}

func (r *productRepository) List(ctx context.Context, params *domainRepo.ProductFilterParams) ([]entity.Product, int64, error) {
	var products []entity.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Product{}).Scopes(OwnerScope(ctx))

	if params.Search != "" {
		query = query.Where("name ILIKE ? OR description ILIKE ?",
			"%"+params.Search+"%", "%"+params.Search+"%")
	}

	if params.Currency != "" {
		query = query.Where("currency = ?", params.Currency)
	}

	if params.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Order(pagination.SortClause(params.SortBy, params.SortOrder, productSortColumns, "created_at")).
		Find(&products).Error

	return products, total, err
}

func (r *productRepository) ListAll(ctx context.Context) ([]entity.Product, error) {
	var products []entity.Product
	err := r.db.WithContext(ctx).Scopes(OwnerScope(ctx)).
		Order("name ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepository) IsReferenced(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.InvoiceItem{}).
		Where("product_id = ?", id).
		Limit(1).
		Count(&count).Error
	return count > 0, err
}

type customPriceRepository struct {
	db *gorm.DB
}

// NewCustomPriceRepository creates a new custom price repository
func NewCustomPriceRepository(db *gorm.DB) domainRepo.CustomPriceRepository {
	return &customPriceRepository{db: db}
}

func (r *customPriceRepository) Create(ctx context.Context, price *entity.CustomPrice) error {
	return r.db.WithContext(ctx).Create(price).Error
}

func (r *customPriceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.CustomPrice, error) {
	var price entity.CustomPrice
	err := r.db.WithContext(ctx).Scopes(OwnerScope(ctx)).First(&price, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &price, err
}

func (r *customPriceRepository) GetByPair(ctx context.Context, customerID, productID uuid.UUID) (*entity.CustomPrice, error) {
	var price entity.CustomPrice
	err := r.db.WithContext(ctx).Scopes(OwnerScope(ctx)).
		Where("customer_id = ? AND product_id = ?", customerID, productID).
		First(&price).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &price, err
}

func (r *customPriceRepository) Update(ctx context.Context, price *entity.CustomPrice) error {
	return r.db.WithContext(ctx).Model(price).
		Select("price", "currency").
		Updates(price).Error
}

func (r *customPriceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Scopes(OwnerScope(ctx)).Delete(&entity.CustomPrice{}, "id = ?", id).Error
}

func (r *customPriceRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]entity.CustomPrice, error) {
	var prices []entity.CustomPrice
	err := r.db.WithContext(ctx).Scopes(OwnerScope(ctx)).
		Where("customer_id = ?", customerID).
		Order("created_at ASC").
		Find(&prices).Error
	return prices, err
}

func (r *customPriceRepository) ListAll(ctx context.Context) ([]entity.CustomPrice, error) {
	var prices []entity.CustomPrice
	err := r.db.WithContext(ctx).Scopes(OwnerScope(ctx)).
		Order("created_at ASC").
		Find(&prices).Error
	return prices, err
}
