package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"marketplace/internal/orders/domain"
	apperrors "marketplace/pkg/errors"
)

// OrderModel is the GORM model for orders (persistence layer)
type OrderModel struct {
	ID          uint   `gorm:"primaryKey"`
	OrderNumber string `gorm:"size:32;uniqueIndex;not null"`

	CustomerID    uint   `gorm:"index;not null"`
	MerchantID    uint   `gorm:"index;not null"`
	AffiliateID   uint   `gorm:"index"`
	AffiliateCode string `gorm:"size:64"`

	Status         string `gorm:"size:20;not null;default:'pending'"`
	PaymentStatus  string `gorm:"size:20;not null;default:'pending'"`
	ShippingStatus string `gorm:"size:20;not null;default:'pending'"`

	Items   []byte `gorm:"type:jsonb;not null"`
	History []byte `gorm:"type:jsonb"`

	Subtotal       float64 `gorm:"not null"`
	TaxAmount      float64 `gorm:"not null"`
	ShippingAmount float64 `gorm:"not null"`
	DiscountAmount float64 `gorm:"not null"`
	TotalAmount    float64 `gorm:"not null"`

	AffiliateCommission float64
	PlatformCommission  float64
	CommissionComputed  bool

	ShippingAddress string `gorm:"size:255"`
	TrackingNumber  string `gorm:"size:64"`
	TransactionID   string `gorm:"size:64"`

	DeliveredAt *time.Time
	CancelledAt *time.Time
	RefundedAt  *time.Time

	FraudStatus   string `gorm:"size:20"`
	FraudScore    int
	FraudAnalysis []byte `gorm:"type:jsonb"`

	ClientIP      string `gorm:"size:45"`
	UserAgent     string `gorm:"size:512;index"`
	CartCreatedAt *time.Time

	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// PostgresOrderRepository implements OrderRepository using PostgreSQL
type PostgresOrderRepository struct {
	db *gorm.DB
}

// NewPostgresOrderRepository creates a new PostgreSQL order repository
func NewPostgresOrderRepository(db *gorm.DB) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db}
}

// Migrate runs auto-migration for the order model
func (r *PostgresOrderRepository) Migrate() error {
	return r.db.AutoMigrate(&OrderModel{})
}

// Create creates a new order
func (r *PostgresOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	model, err := toModel(order)
	if err != nil {
		return apperrors.NewInternal("failed to encode order", err)
	}

	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		return apperrors.NewInternal("failed to create order", result.Error)
	}

	// Update domain entity with generated fields
	order.ID = model.ID
	order.CreatedAt = model.CreatedAt
	order.UpdatedAt = model.UpdatedAt

	return nil
}

// GetByID retrieves an order by ID
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id uint) (*domain.Order, error) {
	var model OrderModel

	result := r.db.WithContext(ctx).First(&model, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.NewOrderNotFound(id)
		}
		return nil, apperrors.NewInternal("failed to get order", result.Error)
	}

	return toDomain(&model)
}

// Update updates an existing order
func (r *PostgresOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	model, err := toModel(order)
	if err != nil {
		return apperrors.NewInternal("failed to encode order", err)
	}

	result := r.db.WithContext(ctx).Save(model)
	if result.Error != nil {
		return apperrors.NewInternal("failed to update order", result.Error)
	}

	order.UpdatedAt = model.UpdatedAt
	return nil
}

// AttachAffiliate patches the attribution columns. Scoped to its own columns
// so a racing status update on the same row is never reverted.
func (r *PostgresOrderRepository) AttachAffiliate(ctx context.Context, id, affiliateID uint, code string, commission float64) error {
	return r.patch(ctx, id, map[string]interface{}{
		"affiliate_id":         affiliateID,
		"affiliate_code":       code,
		"affiliate_commission": commission,
	}, "failed to attach affiliate to order")
}

// SaveCommissions patches the commission columns and marks them computed
func (r *PostgresOrderRepository) SaveCommissions(ctx context.Context, id uint, affiliateCommission, platformCommission float64) error {
	return r.patch(ctx, id, map[string]interface{}{
		"affiliate_commission": affiliateCommission,
		"platform_commission":  platformCommission,
		"commission_computed":  true,
	}, "failed to save order commissions")
}

// FlagFraud patches the advisory fraud columns
func (r *PostgresOrderRepository) FlagFraud(ctx context.Context, id uint, status string, score int, analysis []byte) error {
	return r.patch(ctx, id, map[string]interface{}{
		"fraud_status":   status,
		"fraud_score":    score,
		"fraud_analysis": analysis,
	}, "failed to flag order")
}

func (r *PostgresOrderRepository) patch(ctx context.Context, id uint, columns map[string]interface{}, message string) error {
	columns["updated_at"] = time.Now()

	result := r.db.WithContext(ctx).
		Model(&OrderModel{}).
		Where("id = ?", id).
		UpdateColumns(columns)
	if result.Error != nil {
		return apperrors.NewInternal(message, result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewOrderNotFound(id)
	}
	return nil
}

// Delete deletes an order by ID
func (r *PostgresOrderRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&OrderModel{}, id)
	if result.Error != nil {
		return apperrors.NewInternal("failed to delete order", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewOrderNotFound(id)
	}
	return nil
}

// ListByCustomer retrieves orders for a customer
func (r *PostgresOrderRepository) ListByCustomer(ctx context.Context, customerID uint) ([]*domain.Order, error) {
	var models []OrderModel

	result := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to list orders by customer", result.Error)
	}

	orders := make([]*domain.Order, len(models))
	for i := range models {
		order, err := toDomain(&models[i])
		if err != nil {
			return nil, err
		}
		orders[i] = order
	}

	return orders, nil
}

// toModel converts a domain entity to a GORM model
func toModel(order *domain.Order) (*OrderModel, error) {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return nil, err
	}
	history, err := json.Marshal(order.History)
	if err != nil {
		return nil, err
	}

	return &OrderModel{
		ID:                  order.ID,
		OrderNumber:         order.OrderNumber,
		CustomerID:          order.CustomerID,
		MerchantID:          order.MerchantID,
		AffiliateID:         order.AffiliateID,
		AffiliateCode:       order.AffiliateCode,
		Status:              string(order.Status),
		PaymentStatus:       string(order.PaymentStatus),
		ShippingStatus:      string(order.ShippingStatus),
		Items:               items,
		History:             history,
		Subtotal:            order.Subtotal,
		TaxAmount:           order.TaxAmount,
		ShippingAmount:      order.ShippingAmount,
		DiscountAmount:      order.DiscountAmount,
		TotalAmount:         order.TotalAmount,
		AffiliateCommission: order.AffiliateCommission,
		PlatformCommission:  order.PlatformCommission,
		CommissionComputed:  order.CommissionComputed,
		ShippingAddress:     order.ShippingAddress,
		TrackingNumber:      order.TrackingNumber,
		TransactionID:       order.TransactionID,
		DeliveredAt:         order.DeliveredAt,
		CancelledAt:         order.CancelledAt,
		RefundedAt:          order.RefundedAt,
		FraudStatus:         order.FraudStatus,
		FraudScore:          order.FraudScore,
		FraudAnalysis:       order.FraudAnalysis,
		ClientIP:            order.ClientIP,
		UserAgent:           order.UserAgent,
		CartCreatedAt:       order.CartCreatedAt,
		CreatedAt:           order.CreatedAt,
		UpdatedAt:           order.UpdatedAt,
	}, nil
}

// toDomain converts a GORM model to a domain entity
func toDomain(model *OrderModel) (*domain.Order, error) {
	var items []domain.OrderItem
	if len(model.Items) > 0 {
		if err := json.Unmarshal(model.Items, &items); err != nil {
			return nil, apperrors.NewInternal("failed to decode order items", err)
		}
	}
	var history []domain.HistoryEvent
	if len(model.History) > 0 {
		if err := json.Unmarshal(model.History, &history); err != nil {
			return nil, apperrors.NewInternal("failed to decode order history", err)
		}
	}

	return &domain.Order{
		ID:                  model.ID,
		OrderNumber:         model.OrderNumber,
		CustomerID:          model.CustomerID,
		MerchantID:          model.MerchantID,
		AffiliateID:         model.AffiliateID,
		AffiliateCode:       model.AffiliateCode,
		Status:              domain.OrderStatus(model.Status),
		PaymentStatus:       domain.PaymentStatus(model.PaymentStatus),
		ShippingStatus:      domain.ShippingStatus(model.ShippingStatus),
		Items:               items,
		History:             history,
		Subtotal:            model.Subtotal,
		TaxAmount:           model.TaxAmount,
		ShippingAmount:      model.ShippingAmount,
		DiscountAmount:      model.DiscountAmount,
		TotalAmount:         model.TotalAmount,
		AffiliateCommission: model.AffiliateCommission,
		PlatformCommission:  model.PlatformCommission,
		CommissionComputed:  model.CommissionComputed,
		ShippingAddress:     model.ShippingAddress,
		TrackingNumber:      model.TrackingNumber,
		TransactionID:       model.TransactionID,
		DeliveredAt:         model.DeliveredAt,
		CancelledAt:         model.CancelledAt,
		RefundedAt:          model.RefundedAt,
		FraudStatus:         model.FraudStatus,
		FraudScore:          model.FraudScore,
		FraudAnalysis:       model.FraudAnalysis,
		ClientIP:            model.ClientIP,
		UserAgent:           model.UserAgent,
		CartCreatedAt:       model.CartCreatedAt,
		CreatedAt:           model.CreatedAt,
		UpdatedAt:           model.UpdatedAt,
	}, nil
}
