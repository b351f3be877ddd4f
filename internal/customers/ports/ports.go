package ports

import (
	"context"

	"marketplace/internal/customers/domain"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// Create creates a new customer
	Create(ctx context.Context, customer *domain.Customer) error

	// GetByID retrieves a customer by ID
	GetByID(ctx context.Context, id uint) (*domain.Customer, error)

	// GetByEmail retrieves a customer by email
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)

	// UpdateSession records the customer's last seen IP and user agent
	UpdateSession(ctx context.Context, id uint, ip, userAgent string) error
}
