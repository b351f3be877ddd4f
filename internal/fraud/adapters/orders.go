package adapters

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"marketplace/internal/fraud/domain"
	ordersports "marketplace/internal/orders/ports"
	apperrors "marketplace/pkg/errors"
	"marketplace/pkg/logger"
)

// FraudStatusSuspicious is the advisory flag written to high-risk orders
const FraudStatusSuspicious = "suspicious"

// OrderAdapter implements the fraud-side Orders port on top of the orders
// repository and the catalog.
type OrderAdapter struct {
	repo    ordersports.OrderRepository
	catalog ordersports.Catalog
	log     *logger.Logger
}

// NewOrderAdapter creates a new order adapter
func NewOrderAdapter(repo ordersports.OrderRepository, catalog ordersports.Catalog, log *logger.Logger) *OrderAdapter {
	return &OrderAdapter{
		repo:    repo,
		catalog: catalog,
		log:     log,
	}
}

// GetFacts derives the scoring inputs from an order. Category spread is
// resolved against the catalog; items whose product has since vanished are
// counted without a category.
func (a *OrderAdapter) GetFacts(ctx context.Context, orderID uint) (*domain.OrderFacts, error) {
	order, err := a.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	categories := make(map[uint]struct{})
	for _, item := range order.Items {
		product, err := a.catalog.GetProduct(ctx, item.ProductID)
		if err != nil {
			a.log.WithContext(ctx).Warn("product missing during fraud analysis",
				zap.Uint("product_id", item.ProductID),
				zap.Uint("order_id", orderID),
			)
			continue
		}
		categories[product.CategoryID] = struct{}{}
	}

	return &domain.OrderFacts{
		OrderID:            order.ID,
		CustomerID:         order.CustomerID,
		TotalAmount:        order.TotalAmount,
		ItemCount:          len(order.Items),
		DistinctCategories: len(categories),
		UserAgent:          order.UserAgent,
		ClientIP:           order.ClientIP,
		CreatedAt:          order.CreatedAt,
		CartCreatedAt:      order.CartCreatedAt,
	}, nil
}

// FlagSuspicious patches the order with the advisory analysis snapshot. The
// write is scoped to the fraud columns so it cannot revert a concurrent
// fulfillment or payment write on the same row.
func (a *OrderAdapter) FlagSuspicious(ctx context.Context, orderID uint, analysis *domain.Analysis) error {
	snapshot, err := json.Marshal(analysis)
	if err != nil {
		return apperrors.NewInternal("failed to encode fraud analysis", err)
	}

	return a.repo.FlagFraud(ctx, orderID, FraudStatusSuspicious, analysis.RiskScore, snapshot)
}
