package domain

import "marketplace/pkg/errors"

// Domain-specific errors
var (
	ErrNameRequired  = errors.NewValidation("name is required", nil)
	ErrNameLength    = errors.NewValidation("name must be between 2 and 100 characters", nil)
	ErrEmailRequired = errors.NewValidation("email is required", nil)
	ErrEmailInvalid  = errors.NewValidation("email format is invalid", nil)
	ErrEmailExists   = errors.NewConflict("email already registered")
)

// NewCustomerNotFound creates a not found error with the customer ID
func NewCustomerNotFound(id uint) error {
	return errors.NewNotFound("customer", id)
}
