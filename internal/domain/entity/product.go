package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a catalogue product or service.
// Price, Currency and Unit are frozen once an invoice item references the product.
type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string          `gorm:"size:255;not null" json:"name"`
	Description *string         `gorm:"type:text" json:"description,omitempty"`
	Unit        string          `gorm:"size:50" json:"unit"`
	Price       decimal.Decimal `gorm:"type:decimal(15,4);not null" json:"price"`
	Currency    string          `gorm:"size:3;not null" json:"currency"`
	IsActive    bool            `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	CustomPrices []CustomPrice `gorm:"foreignKey:ProductID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// CustomPrice overrides a product's price for one customer
type CustomPrice struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	CustomerID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_custom_price_pair" json:"customer_id"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_custom_price_pair" json:"product_id"`
	Price      decimal.Decimal `gorm:"type:decimal(15,4);not null" json:"price"`
	Currency   string          `gorm:"size:3;not null" json:"currency"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`

	// Relationships
	Customer Customer `gorm:"foreignKey:CustomerID" json:"-"`
	Product  Product  `gorm:"foreignKey:ProductID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new custom price
func (cp *CustomPrice) BeforeCreate(tx *gorm.DB) error {
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the CustomPrice model
func (CustomPrice) TableName() string {
	return "custom_prices"
}
