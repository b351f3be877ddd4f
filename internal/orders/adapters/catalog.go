package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"marketplace/internal/orders/domain"
	"marketplace/internal/orders/ports"
	apperrors "marketplace/pkg/errors"
)

// ProductModel is the GORM model for catalog products
type ProductModel struct {
	ID            uint    `gorm:"primaryKey"`
	MerchantID    uint    `gorm:"index;not null"`
	CategoryID    uint    `gorm:"index"`
	Name          string  `gorm:"size:255;not null"`
	SKU           string  `gorm:"size:64;uniqueIndex;not null"`
	Price         float64 `gorm:"not null"`
	StockQuantity int     `gorm:"not null;default:0"`
	Status        string  `gorm:"size:20;not null;default:'active'"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// PostgresCatalog implements the Catalog port using PostgreSQL
type PostgresCatalog struct {
	db *gorm.DB
}

// NewPostgresCatalog creates a new PostgreSQL catalog adapter
func NewPostgresCatalog(db *gorm.DB) *PostgresCatalog {
	return &PostgresCatalog{db: db}
}

// Migrate runs auto-migration for the product model
func (c *PostgresCatalog) Migrate() error {
	return c.db.AutoMigrate(&ProductModel{})
}

// GetProduct retrieves a product by ID
func (c *PostgresCatalog) GetProduct(ctx context.Context, id uint) (*ports.Product, error) {
	var model ProductModel

	result := c.db.WithContext(ctx).First(&model, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.NewProductNotFound(id)
		}
		return nil, apperrors.NewInternal("failed to get product", result.Error)
	}

	return &ports.Product{
		ID:            model.ID,
		MerchantID:    model.MerchantID,
		CategoryID:    model.CategoryID,
		Name:          model.Name,
		SKU:           model.SKU,
		Price:         model.Price,
		StockQuantity: model.StockQuantity,
		Status:        model.Status,
	}, nil
}

// AdjustStock applies delta to the product's stock in a single guarded
// UPDATE. The WHERE clause keeps stock from going negative; rows-affected
// tells the caller whether the reservation held. Never read-then-write.
func (c *PostgresCatalog) AdjustStock(ctx context.Context, id uint, delta int) (bool, error) {
	result := c.db.WithContext(ctx).
		Model(&ProductModel{}).
		Where("id = ? AND stock_quantity + ? >= 0", id, delta).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", delta))
	if result.Error != nil {
		return false, apperrors.NewInternal("failed to adjust stock", result.Error)
	}

	return result.RowsAffected == 1, nil
}
