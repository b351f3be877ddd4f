package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	customersdomain "marketplace/internal/customers/domain"
	"marketplace/internal/fraud/domain"
	apperrors "marketplace/pkg/errors"
)

// PostgresSignalSource collects fraud signals from the customers, orders and
// payments tables.
type PostgresSignalSource struct {
	db *gorm.DB
}

// NewPostgresSignalSource creates a new PostgreSQL signal source
func NewPostgresSignalSource(db *gorm.DB) *PostgresSignalSource {
	return &PostgresSignalSource{db: db}
}

// Collect gathers the customer's signals as of the given order time
func (s *PostgresSignalSource) Collect(ctx context.Context, customerID uint, clientIP, userAgent string, at time.Time) (*domain.Signals, error) {
	signals := &domain.Signals{}

	var customer struct {
		CreatedAt time.Time
	}
	err := s.db.WithContext(ctx).
		Table("customers").
		Select("created_at").
		Where("id = ?", customerID).
		Take(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, customersdomain.NewCustomerNotFound(customerID)
		}
		return nil, apperrors.NewInternal("failed to load customer", err)
	}
	signals.AccountCreatedAt = customer.CreatedAt

	var sharingIP int64
	if clientIP != "" {
		err = s.db.WithContext(ctx).
			Table("customers").
			Where("last_ip = ? AND id <> ?", clientIP, customerID).
			Count(&sharingIP).Error
		if err != nil {
			return nil, apperrors.NewInternal("failed to count accounts sharing IP", err)
		}
	}
	signals.AccountsSharingIP = int(sharingIP)

	var recentOrders int64
	err = s.db.WithContext(ctx).
		Table("orders").
		Where("customer_id = ? AND created_at > ?", customerID, at.Add(-24*time.Hour)).
		Count(&recentOrders).Error
	if err != nil {
		return nil, apperrors.NewInternal("failed to count recent orders", err)
	}
	signals.OrdersLast24h = int(recentOrders)

	var failedPayments int64
	err = s.db.WithContext(ctx).
		Table("payments").
		Joins("JOIN orders ON orders.id = payments.order_id").
		Where("orders.customer_id = ? AND payments.status = ? AND payments.created_at > ?",
			customerID, "failed", at.Add(-24*time.Hour)).
		Count(&failedPayments).Error
	if err != nil {
		return nil, apperrors.NewInternal("failed to count failed payments", err)
	}
	signals.FailedPaymentsLast24h = int(failedPayments)

	var paymentMethods int64
	err = s.db.WithContext(ctx).
		Table("payments").
		Joins("JOIN orders ON orders.id = payments.order_id").
		Where("orders.customer_id = ? AND payments.method <> '' AND payments.created_at > ?",
			customerID, at.Add(-7*24*time.Hour)).
		Distinct("payments.method").
		Count(&paymentMethods).Error
	if err != nil {
		return nil, apperrors.NewInternal("failed to count payment methods", err)
	}
	signals.PaymentMethodsLast7d = int(paymentMethods)

	var sameUserAgent int64
	if userAgent != "" {
		err = s.db.WithContext(ctx).
			Table("orders").
			Where("customer_id = ? AND user_agent = ?", customerID, userAgent).
			Count(&sameUserAgent).Error
		if err != nil {
			return nil, apperrors.NewInternal("failed to count orders by user agent", err)
		}
	}
	signals.OrdersWithSameUserAgent = int(sameUserAgent)

	return signals, nil
}
