package domain

import (
	"fmt"
	"math/rand"
	"time"
)

// DefaultTaxRate is applied to the subtotal unless the caller overrides it
const DefaultTaxRate = 0.10

// OrderItem is an immutable snapshot of a product line captured at order
// creation. Later catalog changes never alter a placed order.
type OrderItem struct {
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	SKU       string  `json:"sku"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Total     float64 `json:"total"`
}

// HistoryEvent is one entry of the append-only order audit trail
type HistoryEvent struct {
	Type      string    `json:"type"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Notes     string    `json:"notes,omitempty"`
}

// OrderInfo carries the non-item order attributes supplied at creation
type OrderInfo struct {
	AffiliateID     uint
	AffiliateCode   string
	ShippingAddress string
	ShippingAmount  float64
	DiscountAmount  float64
	TaxRate         *float64 // nil means DefaultTaxRate
	ClientIP        string
	UserAgent       string
	CartCreatedAt   *time.Time
}

// Order is the aggregate root of the order pipeline
type Order struct {
	ID          uint
	OrderNumber string

	CustomerID    uint
	MerchantID    uint
	AffiliateID   uint
	AffiliateCode string

	Status         OrderStatus
	PaymentStatus  PaymentStatus
	ShippingStatus ShippingStatus

	Items []OrderItem

	Subtotal       float64
	TaxAmount      float64
	ShippingAmount float64
	DiscountAmount float64
	TotalAmount    float64

	AffiliateCommission float64
	PlatformCommission  float64
	CommissionComputed  bool

	ShippingAddress string
	TrackingNumber  string
	TransactionID   string

	History []HistoryEvent

	DeliveredAt *time.Time
	CancelledAt *time.Time
	RefundedAt  *time.Time

	FraudStatus   string
	FraudScore    int
	FraudAnalysis []byte // JSON snapshot written by the fraud scorer

	ClientIP      string
	UserAgent     string
	CartCreatedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// GenerateOrderNumber builds a globally unique-enough order number.
// Collisions require two orders in the same millisecond drawing the same
// 3-digit suffix; accepted as negligible.
func GenerateOrderNumber() string {
	return fmt.Sprintf("ORD-%d-%03d", time.Now().UnixMilli(), rand.Intn(1000))
}

// NewOrder creates a pending order from item snapshots and computes totals
func NewOrder(customerID, merchantID uint, info OrderInfo, items []OrderItem) (*Order, error) {
	if customerID == 0 {
		return nil, ErrCustomerIDRequired
	}
	if merchantID == 0 {
		return nil, ErrMerchantIDRequired
	}
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	if info.ShippingAmount < 0 || info.DiscountAmount < 0 {
		return nil, ErrNegativeAmount
	}

	var subtotal float64
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		subtotal += item.Total
	}

	taxRate := DefaultTaxRate
	if info.TaxRate != nil {
		taxRate = *info.TaxRate
	}
	taxAmount := subtotal * taxRate
	totalAmount := subtotal + taxAmount + info.ShippingAmount - info.DiscountAmount
	if totalAmount < 0 {
		return nil, ErrNegativeAmount
	}

	now := time.Now()
	order := &Order{
		OrderNumber:     GenerateOrderNumber(),
		CustomerID:      customerID,
		MerchantID:      merchantID,
		AffiliateID:     info.AffiliateID,
		AffiliateCode:   info.AffiliateCode,
		Status:          OrderStatusPending,
		PaymentStatus:   PaymentStatusPending,
		ShippingStatus:  ShippingStatusPending,
		Items:           items,
		Subtotal:        subtotal,
		TaxAmount:       taxAmount,
		ShippingAmount:  info.ShippingAmount,
		DiscountAmount:  info.DiscountAmount,
		TotalAmount:     totalAmount,
		ShippingAddress: info.ShippingAddress,
		ClientIP:        info.ClientIP,
		UserAgent:       info.UserAgent,
		CartCreatedAt:   info.CartCreatedAt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	order.appendHistory("created", "", string(OrderStatusPending), "order placed")

	return order, nil
}

// TransitionStatus moves the fulfillment axis along a legal edge, appending
// a history event and stamping terminal timestamps
func (o *Order) TransitionStatus(next OrderStatus, notes string) error {
	if !next.Valid() {
		return NewIllegalTransition("order", string(o.Status), string(next))
	}
	if !o.Status.CanTransitionTo(next) {
		return NewIllegalTransition("order", string(o.Status), string(next))
	}

	o.appendHistory("status_change", string(o.Status), string(next), notes)
	o.Status = next
	now := time.Now()
	switch next {
	case OrderStatusDelivered:
		if o.DeliveredAt == nil {
			o.DeliveredAt = &now
		}
	case OrderStatusCancelled:
		if o.CancelledAt == nil {
			o.CancelledAt = &now
		}
	}
	o.UpdatedAt = now
	return nil
}

// TransitionPayment moves the payment axis along a legal edge
func (o *Order) TransitionPayment(next PaymentStatus, notes string) error {
	if !next.Valid() || !o.PaymentStatus.CanTransitionTo(next) {
		return NewIllegalTransition("payment", string(o.PaymentStatus), string(next))
	}

	o.appendHistory("payment_change", string(o.PaymentStatus), string(next), notes)
	o.PaymentStatus = next
	o.UpdatedAt = time.Now()
	return nil
}

// TransitionShipping moves the shipping axis along a legal edge
func (o *Order) TransitionShipping(next ShippingStatus, notes string) error {
	if !next.Valid() || !o.ShippingStatus.CanTransitionTo(next) {
		return NewIllegalTransition("shipping", string(o.ShippingStatus), string(next))
	}

	o.appendHistory("shipping_change", string(o.ShippingStatus), string(next), notes)
	o.ShippingStatus = next
	o.UpdatedAt = time.Now()
	return nil
}

// CanBeCancelled reports whether the fulfillment axis permits cancellation
func (o *Order) CanBeCancelled() bool {
	return o.Status.CanTransitionTo(OrderStatusCancelled)
}

// CanBeRefunded reports whether the payment axis permits a refund.
// Cancellation state is deliberately not consulted: cancel and refund are
// orthogonal operations.
func (o *Order) CanBeRefunded() bool {
	return o.PaymentStatus == PaymentStatusPaid
}

// MarkRefunded applies a refund: the payment axis moves to refunded and the
// fulfillment axis is stamped refunded by the refund operation itself, which
// owns this edge (it is not part of the public transition table).
func (o *Order) MarkRefunded(reason string) error {
	if !o.CanBeRefunded() {
		return NewNotRefundable(o.PaymentStatus)
	}
	if err := o.TransitionPayment(PaymentStatusRefunded, reason); err != nil {
		return err
	}
	o.appendHistory("status_change", string(o.Status), string(OrderStatusRefunded), reason)
	o.Status = OrderStatusRefunded
	now := time.Now()
	if o.RefundedAt == nil {
		o.RefundedAt = &now
	}
	o.UpdatedAt = now
	return nil
}

func (o *Order) appendHistory(eventType, from, to, notes string) {
	o.History = append(o.History, HistoryEvent{
		Type:      eventType,
		From:      from,
		To:        to,
		Timestamp: time.Now(),
		Notes:     notes,
	})
}
