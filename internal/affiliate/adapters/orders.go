package adapters

import (
	"context"

	"marketplace/internal/affiliate/ports"
	ordersports "marketplace/internal/orders/ports"
)

// OrderAdapter implements the affiliate-side Orders port on top of the
// orders repository. The two subsystems share one database; attribution and
// commission writes go through the order aggregate.
type OrderAdapter struct {
	repo ordersports.OrderRepository
}

// NewOrderAdapter creates a new order adapter
func NewOrderAdapter(repo ordersports.OrderRepository) *OrderAdapter {
	return &OrderAdapter{repo: repo}
}

// GetCommissionOrder retrieves the commission view of an order
func (a *OrderAdapter) GetCommissionOrder(ctx context.Context, orderID uint) (*ports.CommissionOrder, error) {
	order, err := a.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	return &ports.CommissionOrder{
		ID:                  order.ID,
		AffiliateID:         order.AffiliateID,
		TotalAmount:         order.TotalAmount,
		AffiliateCommission: order.AffiliateCommission,
		PlatformCommission:  order.PlatformCommission,
		CommissionComputed:  order.CommissionComputed,
	}, nil
}

// AttachAffiliate patches the order with conversion attribution. The write is
// scoped to the attribution columns so it cannot revert a concurrent status
// update on the request path.
func (a *OrderAdapter) AttachAffiliate(ctx context.Context, orderID, affiliateID uint, code string, commission float64) error {
	return a.repo.AttachAffiliate(ctx, orderID, affiliateID, code, commission)
}

// SaveCommissions writes both commission amounts and marks them computed,
// scoped to the commission columns.
func (a *OrderAdapter) SaveCommissions(ctx context.Context, orderID uint, affiliateCommission, platformCommission float64) error {
	return a.repo.SaveCommissions(ctx, orderID, affiliateCommission, platformCommission)
}
