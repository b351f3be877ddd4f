package domain

import (
	"fmt"

	"marketplace/pkg/errors"
)

// Domain-specific errors
var (
	ErrBloggerIDRequired     = errors.NewValidation("blogger_id is required", nil)
	ErrProductIDRequired     = errors.NewValidation("product_id is required", nil)
	ErrNegativeRate          = errors.NewValidation("commission_rate cannot be negative", nil)
	ErrInvalidCommissionType = errors.NewValidation("commission_type must be 'percentage' or 'fixed'", nil)
)

// NewLinkNotFound creates a not found error with the affiliate code
func NewLinkNotFound(code string) error {
	return errors.NewNotFound("affiliate link", code)
}

// NewLinkInactive creates a conflict error for a deactivated link
func NewLinkInactive(code string) error {
	return errors.NewConflict(fmt.Sprintf("affiliate link '%s' is not active", code))
}
