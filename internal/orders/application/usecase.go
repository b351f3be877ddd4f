package application

import (
	"context"
	"fmt"
	"time"

	"marketplace/internal/orders/domain"
	"marketplace/internal/orders/ports"
	"marketplace/pkg/errors"
	"marketplace/pkg/logger"

	"go.uber.org/zap"
)

// OrderUseCase handles the order lifecycle: creation with inventory
// reservation, the three status axes, cancellation and refund.
type OrderUseCase struct {
	repo      ports.OrderRepository
	catalog   ports.Catalog
	customers ports.CustomerDirectory
	notifier  ports.Notifier
	ledger    ports.PaymentLedger
	publisher ports.EventPublisher
	log       *logger.Logger

	taxRate float64 // applied unless the order carries its own rate
}

// NewOrderUseCase creates a new order use case
func NewOrderUseCase(
	repo ports.OrderRepository,
	catalog ports.Catalog,
	customers ports.CustomerDirectory,
	notifier ports.Notifier,
	ledger ports.PaymentLedger,
	publisher ports.EventPublisher,
	log *logger.Logger,
	taxRate float64,
) *OrderUseCase {
	return &OrderUseCase{
		repo:      repo,
		catalog:   catalog,
		customers: customers,
		notifier:  notifier,
		ledger:    ledger,
		publisher: publisher,
		log:       log,
		taxRate:   taxRate,
	}
}

// CreateOrderItemInput is one requested line item
type CreateOrderItemInput struct {
	ProductID uint
	Quantity  int
}

// CreateOrderInput represents the input for creating an order
type CreateOrderInput struct {
	CustomerID uint
	MerchantID uint
	Items      []CreateOrderItemInput
	Info       domain.OrderInfo
}

// CreateOrderOutput represents the output of creating an order
type CreateOrderOutput struct {
	Order *domain.Order
}

// CreateOrder validates items against the catalog, snapshots them, computes
// totals, persists the order and only then reserves inventory. Reservation
// is all-or-nothing: if any item's atomic decrement fails, decrements already
// applied for this order are restored, the order is removed and a single
// conflict error is returned.
func (uc *OrderUseCase) CreateOrder(ctx context.Context, input CreateOrderInput) (*CreateOrderOutput, error) {
	if len(input.Items) == 0 {
		return nil, domain.ErrNoItems
	}

	if uc.customers != nil {
		if _, err := uc.customers.GetCustomer(ctx, input.CustomerID); err != nil {
			if errors.Is(err, errors.CodeNotFound) {
				return nil, errors.NewValidation("customer not found", map[string]interface{}{
					"customer_id": input.CustomerID,
				})
			}
			return nil, errors.Wrap(err, "failed to validate customer")
		}
	}

	// Validate every line item and build immutable snapshots. The stock
	// check here is advisory; the reservation below is the real guard.
	items := make([]domain.OrderItem, 0, len(input.Items))
	for _, line := range input.Items {
		if line.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}

		product, err := uc.catalog.GetProduct(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.Active() {
			return nil, domain.NewProductNotAvailable(product.ID)
		}
		if line.Quantity > product.StockQuantity {
			return nil, domain.NewInsufficientStock(product.ID, line.Quantity, product.StockQuantity)
		}

		items = append(items, domain.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			SKU:       product.SKU,
			Price:     product.Price,
			Quantity:  line.Quantity,
			Total:     product.Price * float64(line.Quantity),
		})
	}

	info := input.Info
	if info.TaxRate == nil {
		info.TaxRate = &uc.taxRate
	}

	order, err := domain.NewOrder(input.CustomerID, input.MerchantID, info, items)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.Create(ctx, order); err != nil {
		return nil, errors.NewInternal("failed to create order", err)
	}

	// Reserve inventory after the insert, one guarded decrement per
	// product. A failed decrement compensates everything applied so far.
	if err := uc.reserveItems(ctx, order); err != nil {
		return nil, err
	}

	uc.notifier.Notify(ctx, order.CustomerID, "order_created",
		"Order placed",
		fmt.Sprintf("Your order %s has been placed", order.OrderNumber),
		map[string]interface{}{"order_id": order.ID, "order_number": order.OrderNumber},
	)
	uc.notifier.Notify(ctx, order.MerchantID, "order_received",
		"New order",
		fmt.Sprintf("You have received order %s", order.OrderNumber),
		map[string]interface{}{"order_id": order.ID, "order_number": order.OrderNumber},
	)

	// Publish event (async consumers, don't fail on error)
	if uc.publisher != nil {
		if err := uc.publisher.PublishOrderCreated(ctx, order); err != nil {
			uc.log.WithContext(ctx).Error("failed to publish order created event",
				zap.Error(err),
				zap.Uint("order_id", order.ID),
			)
		}
	}

	uc.log.WithContext(ctx).Info("order created",
		zap.Uint("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.Uint("customer_id", order.CustomerID),
		zap.Float64("total_amount", order.TotalAmount),
	)

	return &CreateOrderOutput{Order: order}, nil
}

func (uc *OrderUseCase) reserveItems(ctx context.Context, order *domain.Order) error {
	for i, item := range order.Items {
		ok, err := uc.catalog.AdjustStock(ctx, item.ProductID, -item.Quantity)
		if err == nil && ok {
			continue
		}

		// Compensate: restore the decrements already applied, then
		// remove the inserted order.
		for j := 0; j < i; j++ {
			restored := order.Items[j]
			if _, restoreErr := uc.catalog.AdjustStock(ctx, restored.ProductID, restored.Quantity); restoreErr != nil {
				uc.log.WithContext(ctx).Error("failed to restore stock during compensation",
					zap.Error(restoreErr),
					zap.Uint("product_id", restored.ProductID),
					zap.Int("quantity", restored.Quantity),
				)
			}
		}
		if delErr := uc.repo.Delete(ctx, order.ID); delErr != nil {
			uc.log.WithContext(ctx).Error("failed to remove order after reservation failure",
				zap.Error(delErr),
				zap.Uint("order_id", order.ID),
			)
		}

		if err != nil {
			return errors.NewInternal("failed to reserve inventory", err)
		}
		return domain.NewInsufficientStock(item.ProductID, item.Quantity, 0)
	}
	return nil
}

// UpdateOrderStatusInput represents the input for a fulfillment status change
type UpdateOrderStatusInput struct {
	OrderID uint
	Status  domain.OrderStatus
	Notes   string
}

// UpdateOrderStatus moves the fulfillment axis along the transition table.
// Illegal edges are rejected and the order is left untouched.
func (uc *OrderUseCase) UpdateOrderStatus(ctx context.Context, input UpdateOrderStatusInput) (*domain.Order, error) {
	order, err := uc.repo.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}

	if err := order.TransitionStatus(input.Status, input.Notes); err != nil {
		return nil, err
	}

	if err := uc.repo.Update(ctx, order); err != nil {
		return nil, errors.NewInternal("failed to update order", err)
	}

	uc.notifier.Notify(ctx, order.CustomerID, "order_status",
		"Order update",
		fmt.Sprintf("Order %s is now %s", order.OrderNumber, order.Status),
		map[string]interface{}{"order_id": order.ID, "status": string(order.Status)},
	)

	if order.Status == domain.OrderStatusDelivered && uc.publisher != nil {
		if err := uc.publisher.PublishOrderCompleted(ctx, order); err != nil {
			uc.log.WithContext(ctx).Error("failed to publish order completed event",
				zap.Error(err),
				zap.Uint("order_id", order.ID),
			)
		}
	}

	uc.log.WithContext(ctx).Info("order status updated",
		zap.Uint("order_id", order.ID),
		zap.String("status", string(order.Status)),
	)

	return order, nil
}

// UpdatePaymentStatusInput represents the input for a payment status change
type UpdatePaymentStatusInput struct {
	OrderID       uint
	Status        domain.PaymentStatus
	TransactionID string
	Method        string
}

// UpdatePaymentStatus moves the payment axis. A successful payment also
// advances a pending order to confirmed and appends a ledger record.
func (uc *OrderUseCase) UpdatePaymentStatus(ctx context.Context, input UpdatePaymentStatusInput) (*domain.Order, error) {
	order, err := uc.repo.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}

	if err := order.TransitionPayment(input.Status, "payment status update"); err != nil {
		return nil, err
	}
	if input.TransactionID != "" {
		order.TransactionID = input.TransactionID
	}

	if input.Status == domain.PaymentStatusPaid && order.Status == domain.OrderStatusPending {
		if err := order.TransitionStatus(domain.OrderStatusConfirmed, "payment received"); err != nil {
			return nil, err
		}
	}

	if err := uc.repo.Update(ctx, order); err != nil {
		return nil, errors.NewInternal("failed to update order", err)
	}

	switch input.Status {
	case domain.PaymentStatusPaid:
		uc.insertLedgerRecord(ctx, order, "payment", input.Method, order.TotalAmount, "completed",
			fmt.Sprintf("payment for order %s", order.OrderNumber))
	case domain.PaymentStatusFailed:
		uc.insertLedgerRecord(ctx, order, "payment", input.Method, order.TotalAmount, "failed",
			fmt.Sprintf("failed payment for order %s", order.OrderNumber))
	}

	uc.notifier.Notify(ctx, order.CustomerID, "payment_status",
		"Payment update",
		fmt.Sprintf("Payment for order %s is %s", order.OrderNumber, order.PaymentStatus),
		map[string]interface{}{"order_id": order.ID, "payment_status": string(order.PaymentStatus)},
	)

	uc.log.WithContext(ctx).Info("payment status updated",
		zap.Uint("order_id", order.ID),
		zap.String("payment_status", string(order.PaymentStatus)),
	)

	return order, nil
}

// UpdateShippingStatusInput represents the input for a shipping status change
type UpdateShippingStatusInput struct {
	OrderID        uint
	Status         domain.ShippingStatus
	TrackingNumber string
}

// UpdateShippingStatus moves the informational shipping axis
func (uc *OrderUseCase) UpdateShippingStatus(ctx context.Context, input UpdateShippingStatusInput) (*domain.Order, error) {
	order, err := uc.repo.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}

	if err := order.TransitionShipping(input.Status, "shipping status update"); err != nil {
		return nil, err
	}
	if input.TrackingNumber != "" {
		order.TrackingNumber = input.TrackingNumber
	}

	if err := uc.repo.Update(ctx, order); err != nil {
		return nil, errors.NewInternal("failed to update order", err)
	}

	uc.notifier.Notify(ctx, order.CustomerID, "shipping_status",
		"Shipping update",
		fmt.Sprintf("Shipping for order %s is %s", order.OrderNumber, order.ShippingStatus),
		map[string]interface{}{"order_id": order.ID, "shipping_status": string(order.ShippingStatus), "tracking_number": order.TrackingNumber},
	)

	return order, nil
}

// CancelOrderInput represents the input for cancelling an order
type CancelOrderInput struct {
	OrderID uint
	Reason  string
}

// CancelOrder cancels an order that has not shipped and restores inventory
// for every line item. Payment state is not consulted: cancellation and
// refund are orthogonal, a paid cancelled order awaits a manual refund.
func (uc *OrderUseCase) CancelOrder(ctx context.Context, input CancelOrderInput) (*domain.Order, error) {
	order, err := uc.repo.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}

	if !order.CanBeCancelled() {
		return nil, domain.NewNotCancellable(order.Status)
	}

	if err := order.TransitionStatus(domain.OrderStatusCancelled, input.Reason); err != nil {
		return nil, err
	}

	if err := uc.repo.Update(ctx, order); err != nil {
		return nil, errors.NewInternal("failed to update order", err)
	}

	for _, item := range order.Items {
		if _, err := uc.catalog.AdjustStock(ctx, item.ProductID, item.Quantity); err != nil {
			uc.log.WithContext(ctx).Error("failed to restore stock on cancellation",
				zap.Error(err),
				zap.Uint("order_id", order.ID),
				zap.Uint("product_id", item.ProductID),
			)
		}
	}

	uc.notifier.Notify(ctx, order.CustomerID, "order_cancelled",
		"Order cancelled",
		fmt.Sprintf("Order %s has been cancelled: %s", order.OrderNumber, input.Reason),
		map[string]interface{}{"order_id": order.ID},
	)

	uc.log.WithContext(ctx).Info("order cancelled",
		zap.Uint("order_id", order.ID),
		zap.String("reason", input.Reason),
	)

	return order, nil
}

// RefundOrderInput represents the input for refunding an order
type RefundOrderInput struct {
	OrderID uint
	Amount  float64
	Reason  string
}

// RefundOrder refunds a paid order in full. Single-shot: partial and
// repeated refunds are not modeled.
func (uc *OrderUseCase) RefundOrder(ctx context.Context, input RefundOrderInput) (*domain.Order, error) {
	order, err := uc.repo.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}

	if input.Amount <= 0 || input.Amount > order.TotalAmount {
		return nil, errors.NewValidation("refund amount must be positive and not exceed the order total", map[string]interface{}{
			"amount":       input.Amount,
			"total_amount": order.TotalAmount,
		})
	}

	if err := order.MarkRefunded(input.Reason); err != nil {
		return nil, err
	}

	if err := uc.repo.Update(ctx, order); err != nil {
		return nil, errors.NewInternal("failed to update order", err)
	}

	uc.insertLedgerRecord(ctx, order, "refund", "", input.Amount, "completed",
		fmt.Sprintf("refund for order %s: %s", order.OrderNumber, input.Reason))

	uc.notifier.Notify(ctx, order.CustomerID, "order_refunded",
		"Order refunded",
		fmt.Sprintf("Order %s has been refunded", order.OrderNumber),
		map[string]interface{}{"order_id": order.ID, "amount": input.Amount},
	)

	uc.log.WithContext(ctx).Info("order refunded",
		zap.Uint("order_id", order.ID),
		zap.Float64("amount", input.Amount),
	)

	return order, nil
}

// GetOrder retrieves an order by ID
func (uc *OrderUseCase) GetOrder(ctx context.Context, id uint) (*domain.Order, error) {
	return uc.repo.GetByID(ctx, id)
}

// ListCustomerOrders retrieves all orders for a customer
func (uc *OrderUseCase) ListCustomerOrders(ctx context.Context, customerID uint) ([]*domain.Order, error) {
	return uc.repo.ListByCustomer(ctx, customerID)
}

func (uc *OrderUseCase) insertLedgerRecord(ctx context.Context, order *domain.Order, recordType, method string, amount float64, status, description string) {
	record := ports.PaymentRecord{
		OrderID:     order.ID,
		Type:        recordType,
		Method:      method,
		Amount:      amount,
		Status:      status,
		Description: description,
		CreatedAt:   time.Now(),
	}
	if err := uc.ledger.Insert(ctx, record); err != nil {
		uc.log.WithContext(ctx).Error("failed to insert payment record",
			zap.Error(err),
			zap.Uint("order_id", order.ID),
			zap.String("type", recordType),
		)
	}
}
