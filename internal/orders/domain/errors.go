package domain

import (
	"fmt"

	"marketplace/pkg/errors"
)

// Domain-specific errors
var (
	ErrCustomerIDRequired = errors.NewValidation("customer_id is required", nil)
	ErrMerchantIDRequired = errors.NewValidation("merchant_id is required", nil)
	ErrNoItems            = errors.NewValidation("order must contain at least one item", nil)
	ErrInvalidQuantity    = errors.NewValidation("item quantity must be greater than 0", nil)
	ErrNegativeAmount     = errors.NewValidation("monetary amounts cannot be negative", nil)
)

// NewOrderNotFound creates a not found error with the order ID
func NewOrderNotFound(id uint) error {
	return errors.NewNotFound("order", id)
}

// NewProductNotFound creates a not found error with the product ID
func NewProductNotFound(id uint) error {
	return errors.NewNotFound("product", id)
}

// NewInsufficientStock creates a conflict error for an oversold product
func NewInsufficientStock(productID uint, requested, available int) error {
	return errors.NewConflict(fmt.Sprintf(
		"insufficient stock for product %d: requested %d, available %d",
		productID, requested, available,
	))
}

// NewProductNotAvailable creates a conflict error for an inactive product
func NewProductNotAvailable(productID uint) error {
	return errors.NewConflict(fmt.Sprintf("product %d is not available", productID))
}

// NewIllegalTransition creates a conflict error for a rejected status change
func NewIllegalTransition(axis string, from, to string) error {
	return errors.NewConflict(fmt.Sprintf(
		"illegal %s status transition from '%s' to '%s'", axis, from, to,
	))
}

// NewNotCancellable creates a conflict error for an ineligible cancellation
func NewNotCancellable(status OrderStatus) error {
	return errors.NewConflict(fmt.Sprintf(
		"order with status '%s' cannot be cancelled", status,
	))
}

// NewNotRefundable creates a conflict error for an ineligible refund
func NewNotRefundable(status PaymentStatus) error {
	return errors.NewConflict(fmt.Sprintf(
		"order with payment status '%s' cannot be refunded", status,
	))
}
