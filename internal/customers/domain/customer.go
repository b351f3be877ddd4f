package domain

import (
	"regexp"
	"time"
)

// Customer represents a marketplace customer account. Session fields
// (LastIP, LastUserAgent) feed the fraud risk heuristics.
type Customer struct {
	ID            uint
	Name          string
	Email         string
	LastIP        string
	LastUserAgent string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// EmailRegex is the pattern for validating emails
var EmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Validate validates the customer entity
func (c *Customer) Validate() error {
	if c.Name == "" {
		return ErrNameRequired
	}
	if len(c.Name) < 2 || len(c.Name) > 100 {
		return ErrNameLength
	}
	if c.Email == "" {
		return ErrEmailRequired
	}
	if !EmailRegex.MatchString(c.Email) {
		return ErrEmailInvalid
	}
	return nil
}

// NewCustomer creates a new customer with validation
func NewCustomer(name, email string) (*Customer, error) {
	customer := &Customer{
		Name:      name,
		Email:     email,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := customer.Validate(); err != nil {
		return nil, err
	}

	return customer, nil
}
