package ports

import (
	"context"
	"time"

	"marketplace/internal/fraud/domain"
)

// Orders is the order-side surface consumed by the fraud scorer
type Orders interface {
	// GetFacts retrieves the scoring inputs derived from an order
	GetFacts(ctx context.Context, orderID uint) (*domain.OrderFacts, error)

	// FlagSuspicious patches the order with the advisory analysis result.
	// Never touches the fulfillment axis.
	FlagSuspicious(ctx context.Context, orderID uint, analysis *domain.Analysis) error
}

// SignalSource collects customer-side signals from history
type SignalSource interface {
	// Collect gathers the behavioral, payment and device signals for a
	// customer as of the given order time
	Collect(ctx context.Context, customerID uint, clientIP, userAgent string, at time.Time) (*domain.Signals, error)
}

// Stats aggregates analyses over a trailing window
type Stats struct {
	Total        int64
	LowCount     int64
	MediumCount  int64
	HighCount    int64
	AverageScore float64
}

// AnalysisStore persists analyses and serves aggregate stats
type AnalysisStore interface {
	// Save persists one analysis
	Save(ctx context.Context, analysis *domain.Analysis) error

	// StatsSince aggregates analyses created after the given time
	StatsSince(ctx context.Context, since time.Time) (*Stats, error)
}
