package ports

import (
	"context"

	"marketplace/internal/affiliate/domain"
)

// LinkRepository defines the interface for affiliate link persistence.
// Counter mutations are atomic in-place increments, never read-then-write.
type LinkRepository interface {
	// Create creates a new link
	Create(ctx context.Context, link *domain.Link) error

	// GetByCode retrieves a link by affiliate code
	GetByCode(ctx context.Context, code string) (*domain.Link, error)

	// RecordClick atomically increments the click counter and appends the
	// performance record
	RecordClick(ctx context.Context, code string, record domain.PerformanceRecord) error

	// RecordConversion atomically increments conversion counters and
	// appends the performance record
	RecordConversion(ctx context.Context, code string, amount, commission float64, record domain.PerformanceRecord) error
}

// Gamification awards experience points and achievements to bloggers.
// Fire-and-forget collaborator: failures are the adapter's to log.
type Gamification interface {
	AwardExperiencePoints(ctx context.Context, bloggerID uint, points int, reason string)
	AwardAchievement(ctx context.Context, bloggerID uint, key string)
}

// CommissionOrder is the order view the commission engine works on
type CommissionOrder struct {
	ID                  uint
	AffiliateID         uint
	TotalAmount         float64
	AffiliateCommission float64
	PlatformCommission  float64
	CommissionComputed  bool
}

// Orders is the order-side surface consumed by the commission engine
type Orders interface {
	// GetCommissionOrder retrieves the commission view of an order
	GetCommissionOrder(ctx context.Context, orderID uint) (*CommissionOrder, error)

	// AttachAffiliate patches the order with the converting link's
	// attribution and commission
	AttachAffiliate(ctx context.Context, orderID, affiliateID uint, code string, commission float64) error

	// SaveCommissions writes both commission amounts and marks them computed
	SaveCommissions(ctx context.Context, orderID uint, affiliateCommission, platformCommission float64) error
}

// Notifier delivers affiliate notifications, fire-and-forget
type Notifier interface {
	Notify(ctx context.Context, recipientID uint, kind, title, message string, data map[string]interface{})
}
