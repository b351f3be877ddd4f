package ports

import (
	"context"
	"time"

	"marketplace/internal/orders/domain"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// Create creates a new order
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order by ID
	GetByID(ctx context.Context, id uint) (*domain.Order, error)

	// Update updates an existing order
	Update(ctx context.Context, order *domain.Order) error

	// AttachAffiliate patches only the order's attribution columns, leaving
	// concurrent status writes untouched
	AttachAffiliate(ctx context.Context, id, affiliateID uint, code string, commission float64) error

	// SaveCommissions patches only the commission columns and marks them
	// computed
	SaveCommissions(ctx context.Context, id uint, affiliateCommission, platformCommission float64) error

	// FlagFraud patches only the advisory fraud columns
	FlagFraud(ctx context.Context, id uint, status string, score int, analysis []byte) error

	// Delete deletes an order by ID
	Delete(ctx context.Context, id uint) error

	// ListByCustomer retrieves orders for a customer
	ListByCustomer(ctx context.Context, customerID uint) ([]*domain.Order, error)
}

// Product is the catalog view consumed by order creation
type Product struct {
	ID            uint
	MerchantID    uint
	CategoryID    uint
	Name          string
	SKU           string
	Price         float64
	StockQuantity int
	Status        string
}

// Active reports whether the product can be ordered
func (p *Product) Active() bool {
	return p.Status == "active"
}

// Catalog defines the interface to the product catalog and its stock ledger
type Catalog interface {
	// GetProduct retrieves a product by ID
	GetProduct(ctx context.Context, id uint) (*Product, error)

	// AdjustStock atomically applies delta to the product's stock and
	// reports false when the guarded update would drive stock below zero.
	// Never implemented as read-then-write.
	AdjustStock(ctx context.Context, id uint, delta int) (bool, error)
}

// Notifier delivers notifications to customers and merchants.
// Fire-and-forget: implementations log failures, callers never see them.
type Notifier interface {
	Notify(ctx context.Context, recipientID uint, kind, title, message string, data map[string]interface{})
}

// PaymentRecord is one row of the payment ledger
type PaymentRecord struct {
	OrderID     uint
	Type        string // payment | refund
	Method      string
	Amount      float64
	Status      string
	Description string
	CreatedAt   time.Time
}

// PaymentLedger defines the interface to the payment ledger collaborator
type PaymentLedger interface {
	// Insert appends a payment record
	Insert(ctx context.Context, record PaymentRecord) error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// PublishOrderCreated publishes an order created event
	PublishOrderCreated(ctx context.Context, order *domain.Order) error

	// PublishOrderCompleted publishes an order completed event
	PublishOrderCompleted(ctx context.Context, order *domain.Order) error
}

// CustomerInfo represents customer data from the customers subsystem
type CustomerInfo struct {
	ID    uint
	Name  string
	Email string
}

// CustomerDirectory validates that a customer exists
type CustomerDirectory interface {
	// GetCustomer retrieves a customer by ID
	GetCustomer(ctx context.Context, id uint) (*CustomerInfo, error)
}
