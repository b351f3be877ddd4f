package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"marketplace/internal/customers/domain"
	apperrors "marketplace/pkg/errors"
)

// CustomerModel is the GORM model for customers (persistence layer)
type CustomerModel struct {
	ID            uint      `gorm:"primaryKey"`
	Name          string    `gorm:"size:100;not null"`
	Email         string    `gorm:"size:255;uniqueIndex;not null"`
	LastIP        string    `gorm:"size:45;index"`
	LastUserAgent string    `gorm:"size:512"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// PostgresCustomerRepository implements CustomerRepository using PostgreSQL
type PostgresCustomerRepository struct {
	db *gorm.DB
}

// NewPostgresCustomerRepository creates a new PostgreSQL customer repository
func NewPostgresCustomerRepository(db *gorm.DB) *PostgresCustomerRepository {
	return &PostgresCustomerRepository{db: db}
}

// Migrate runs auto-migration for the customer model
func (r *PostgresCustomerRepository) Migrate() error {
	return r.db.AutoMigrate(&CustomerModel{})
}

// Create creates a new customer
func (r *PostgresCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	model := customerToModel(customer)

	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		return apperrors.NewInternal("failed to create customer", result.Error)
	}

	customer.ID = model.ID
	customer.CreatedAt = model.CreatedAt
	customer.UpdatedAt = model.UpdatedAt
	return nil
}

// GetByID retrieves a customer by ID
func (r *PostgresCustomerRepository) GetByID(ctx context.Context, id uint) (*domain.Customer, error) {
	var model CustomerModel

	result := r.db.WithContext(ctx).First(&model, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.NewCustomerNotFound(id)
		}
		return nil, apperrors.NewInternal("failed to get customer", result.Error)
	}

	return customerToDomain(&model), nil
}

// GetByEmail retrieves a customer by email
func (r *PostgresCustomerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	var model CustomerModel

	result := r.db.WithContext(ctx).Where("email = ?", email).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("customer", email)
		}
		return nil, apperrors.NewInternal("failed to get customer by email", result.Error)
	}

	return customerToDomain(&model), nil
}

// UpdateSession records the customer's last seen IP and user agent
func (r *PostgresCustomerRepository) UpdateSession(ctx context.Context, id uint, ip, userAgent string) error {
	result := r.db.WithContext(ctx).
		Model(&CustomerModel{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"last_ip":         ip,
			"last_user_agent": userAgent,
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return apperrors.NewInternal("failed to update customer session", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewCustomerNotFound(id)
	}
	return nil
}

// customerToModel converts a domain entity to a GORM model
func customerToModel(customer *domain.Customer) *CustomerModel {
	return &CustomerModel{
		ID:            customer.ID,
		Name:          customer.Name,
		Email:         customer.Email,
		LastIP:        customer.LastIP,
		LastUserAgent: customer.LastUserAgent,
		CreatedAt:     customer.CreatedAt,
		UpdatedAt:     customer.UpdatedAt,
	}
}

// customerToDomain converts a GORM model to a domain entity
func customerToDomain(model *CustomerModel) *domain.Customer {
	return &domain.Customer{
		ID:            model.ID,
		Name:          model.Name,
		Email:         model.Email,
		LastIP:        model.LastIP,
		LastUserAgent: model.LastUserAgent,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}
