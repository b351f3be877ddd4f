package application

import (
	"context"

	"marketplace/internal/customers/domain"
	"marketplace/internal/customers/ports"
	"marketplace/pkg/errors"
	"marketplace/pkg/logger"

	"go.uber.org/zap"
)

// CustomerUseCase handles customer account logic
type CustomerUseCase struct {
	repo ports.CustomerRepository
	log  *logger.Logger
}

// NewCustomerUseCase creates a new customer use case
func NewCustomerUseCase(repo ports.CustomerRepository, log *logger.Logger) *CustomerUseCase {
	return &CustomerUseCase{
		repo: repo,
		log:  log,
	}
}

// RegisterCustomerInput represents the input for registering a customer
type RegisterCustomerInput struct {
	Name  string
	Email string
}

// RegisterCustomer registers a new customer
func (uc *CustomerUseCase) RegisterCustomer(ctx context.Context, input RegisterCustomerInput) (*domain.Customer, error) {
	customer, err := domain.NewCustomer(input.Name, input.Email)
	if err != nil {
		return nil, err
	}

	// Check if email already exists
	existing, err := uc.repo.GetByEmail(ctx, customer.Email)
	if err != nil && !errors.Is(err, errors.CodeNotFound) {
		return nil, errors.NewInternal("failed to check email existence", err)
	}
	if existing != nil {
		return nil, domain.ErrEmailExists
	}

	if err := uc.repo.Create(ctx, customer); err != nil {
		return nil, errors.NewInternal("failed to create customer", err)
	}

	uc.log.WithContext(ctx).Info("customer registered",
		zap.Uint("customer_id", customer.ID),
		zap.String("email", customer.Email),
	)

	return customer, nil
}

// GetCustomer retrieves a customer by ID
func (uc *CustomerUseCase) GetCustomer(ctx context.Context, id uint) (*domain.Customer, error) {
	return uc.repo.GetByID(ctx, id)
}

// RecordSession updates the customer's last seen IP and user agent. These
// fields feed the fraud signal queries.
func (uc *CustomerUseCase) RecordSession(ctx context.Context, id uint, ip, userAgent string) error {
	if err := uc.repo.UpdateSession(ctx, id, ip, userAgent); err != nil {
		return err
	}

	uc.log.WithContext(ctx).Debug("customer session recorded",
		zap.Uint("customer_id", id),
		zap.String("ip", ip),
	)
	return nil
}
