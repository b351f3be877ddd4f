package adapters

import (
	"context"

	customersports "marketplace/internal/customers/ports"
	ordersports "marketplace/internal/orders/ports"
)

// Directory implements the orders-side CustomerDirectory port
type Directory struct {
	repo customersports.CustomerRepository
}

// NewDirectory creates a new customer directory adapter
func NewDirectory(repo customersports.CustomerRepository) *Directory {
	return &Directory{repo: repo}
}

// GetCustomer retrieves a customer by ID
func (d *Directory) GetCustomer(ctx context.Context, id uint) (*ordersports.CustomerInfo, error) {
	customer, err := d.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &ordersports.CustomerInfo{
		ID:    customer.ID,
		Name:  customer.Name,
		Email: customer.Email,
	}, nil
}
