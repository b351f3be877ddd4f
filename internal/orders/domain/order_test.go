package domain

import (
	"regexp"
	"testing"
)

func testItems() []OrderItem {
	return []OrderItem{
		{ProductID: 1, Name: "Mechanical Keyboard", SKU: "KB-01", Price: 100000, Quantity: 2, Total: 200000},
		{ProductID: 2, Name: "Mouse Pad", SKU: "MP-01", Price: 50000, Quantity: 1, Total: 50000},
	}
}

func TestNewOrder_Totals(t *testing.T) {
	// Arrange
	items := testItems()

	// Act
	order, err := NewOrder(1, 2, OrderInfo{}, items)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if order.Subtotal != 250000 {
		t.Errorf("expected subtotal 250000, got %f", order.Subtotal)
	}

	if order.TaxAmount != 25000 {
		t.Errorf("expected tax 25000, got %f", order.TaxAmount)
	}

	if order.TotalAmount != 275000 {
		t.Errorf("expected total 275000, got %f", order.TotalAmount)
	}

	if order.Status != OrderStatusPending {
		t.Errorf("expected status pending, got %s", order.Status)
	}

	if order.PaymentStatus != PaymentStatusPending {
		t.Errorf("expected payment status pending, got %s", order.PaymentStatus)
	}

	if order.ShippingStatus != ShippingStatusPending {
		t.Errorf("expected shipping status pending, got %s", order.ShippingStatus)
	}

	if len(order.History) != 1 || order.History[0].Type != "created" {
		t.Errorf("expected a single created history event, got %+v", order.History)
	}
}

func TestNewOrder_ShippingAndDiscount(t *testing.T) {
	// Arrange
	info := OrderInfo{
		ShippingAmount: 15000,
		DiscountAmount: 5000,
	}

	// Act
	order, err := NewOrder(1, 2, info, testItems())

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// 250000 + 25000 + 15000 - 5000
	if order.TotalAmount != 285000 {
		t.Errorf("expected total 285000, got %f", order.TotalAmount)
	}
}

func TestNewOrder_TaxRateOverride(t *testing.T) {
	// Arrange
	zero := 0.0
	info := OrderInfo{TaxRate: &zero}

	// Act
	order, err := NewOrder(1, 2, info, testItems())

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if order.TaxAmount != 0 {
		t.Errorf("expected zero tax, got %f", order.TaxAmount)
	}

	if order.TotalAmount != 250000 {
		t.Errorf("expected total 250000, got %f", order.TotalAmount)
	}
}

func TestNewOrder_Validation(t *testing.T) {
	tests := []struct {
		name       string
		customerID uint
		merchantID uint
		info       OrderInfo
		items      []OrderItem
	}{
		{"missing customer", 0, 2, OrderInfo{}, testItems()},
		{"missing merchant", 1, 0, OrderInfo{}, testItems()},
		{"no items", 1, 2, OrderInfo{}, nil},
		{"zero quantity", 1, 2, OrderInfo{}, []OrderItem{{ProductID: 1, Price: 100, Quantity: 0}}},
		{"negative shipping", 1, 2, OrderInfo{ShippingAmount: -1}, testItems()},
		{"negative discount", 1, 2, OrderInfo{DiscountAmount: -1}, testItems()},
		{"discount exceeds total", 1, 2, OrderInfo{DiscountAmount: 999999}, testItems()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewOrder(tt.customerID, tt.merchantID, tt.info, tt.items); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestGenerateOrderNumber_Format(t *testing.T) {
	// Act
	number := GenerateOrderNumber()

	// Assert
	pattern := regexp.MustCompile(`^ORD-\d+-\d{3}$`)
	if !pattern.MatchString(number) {
		t.Errorf("order number %q does not match ORD-<ms>-<3 digits>", number)
	}
}

func TestTransitionStatus_LegalChain(t *testing.T) {
	// Arrange
	order, _ := NewOrder(1, 2, OrderInfo{}, testItems())

	// Act / Assert
	chain := []OrderStatus{
		OrderStatusConfirmed,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
	}
	for _, next := range chain {
		if err := order.TransitionStatus(next, "test"); err != nil {
			t.Fatalf("expected transition to %s to succeed, got %v", next, err)
		}
	}

	if order.DeliveredAt == nil {
		t.Error("expected DeliveredAt to be set on delivery")
	}

	// 1 created + 4 status changes
	if len(order.History) != 5 {
		t.Errorf("expected 5 history events, got %d", len(order.History))
	}
}

func TestTransitionStatus_IllegalEdgeLeavesOrderUntouched(t *testing.T) {
	// Arrange
	order, _ := NewOrder(1, 2, OrderInfo{}, testItems())
	historyBefore := len(order.History)

	// Act
	err := order.TransitionStatus(OrderStatusDelivered, "skipping ahead")

	// Assert
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if order.Status != OrderStatusPending {
		t.Errorf("expected status to remain pending, got %s", order.Status)
	}

	if len(order.History) != historyBefore {
		t.Errorf("expected history unchanged on rejected transition, got %d events", len(order.History))
	}
}

func TestTransitionStatus_UnknownValueRejected(t *testing.T) {
	// Arrange
	order, _ := NewOrder(1, 2, OrderInfo{}, testItems())

	// Act
	err := order.TransitionStatus(OrderStatus("teleported"), "")

	// Assert
	if err == nil {
		t.Fatal("expected error for unknown status value, got nil")
	}
}

func TestTransitionStatus_CancelledAtSetOnce(t *testing.T) {
	// Arrange
	order, _ := NewOrder(1, 2, OrderInfo{}, testItems())

	// Act
	if err := order.TransitionStatus(OrderStatusCancelled, "changed my mind"); err != nil {
		t.Fatalf("expected cancellation to succeed, got %v", err)
	}

	// Assert
	if order.CancelledAt == nil {
		t.Fatal("expected CancelledAt to be set")
	}

	if !order.Status.Terminal() {
		t.Error("expected cancelled to be terminal")
	}
}

func TestTransitionPayment_FailedRetry(t *testing.T) {
	// Arrange
	order, _ := NewOrder(1, 2, OrderInfo{}, testItems())

	// Act: fail, then retry straight to paid
	if err := order.TransitionPayment(PaymentStatusFailed, "card declined"); err != nil {
		t.Fatalf("expected pending->failed to succeed, got %v", err)
	}
	if err := order.TransitionPayment(PaymentStatusPaid, "second attempt"); err != nil {
		t.Fatalf("expected failed->paid to succeed, got %v", err)
	}

	// Assert
	if order.PaymentStatus != PaymentStatusPaid {
		t.Errorf("expected payment status paid, got %s", order.PaymentStatus)
	}
}

func TestTransitionPayment_RefundRequiresPaid(t *testing.T) {
	// Arrange
	order, _ := NewOrder(1, 2, OrderInfo{}, testItems())

	// Act
	err := order.TransitionPayment(PaymentStatusRefunded, "")

	// Assert
	if err == nil {
		t.Fatal("expected pending->refunded to be rejected")
	}
}

func TestMarkRefunded(t *testing.T) {
	// Arrange
	order, _ := NewOrder(1, 2, OrderInfo{}, testItems())
	if err := order.TransitionPayment(PaymentStatusPaid, ""); err != nil {
		t.Fatalf("expected payment to succeed, got %v", err)
	}

	// Act
	err := order.MarkRefunded("defective item")

	// Assert
	if err != nil {
		t.Fatalf("expected refund to succeed, got %v", err)
	}

	if order.PaymentStatus != PaymentStatusRefunded {
		t.Errorf("expected payment status refunded, got %s", order.PaymentStatus)
	}

	if order.Status != OrderStatusRefunded {
		t.Errorf("expected order status refunded, got %s", order.Status)
	}

	if order.RefundedAt == nil {
		t.Error("expected RefundedAt to be set")
	}
}

func TestMarkRefunded_SingleShot(t *testing.T) {
	// Arrange
	order, _ := NewOrder(1, 2, OrderInfo{}, testItems())
	order.TransitionPayment(PaymentStatusPaid, "")
	if err := order.MarkRefunded("first"); err != nil {
		t.Fatalf("expected first refund to succeed, got %v", err)
	}
	stamp := order.RefundedAt

	// Act
	err := order.MarkRefunded("second")

	// Assert
	if err == nil {
		t.Fatal("expected second refund to be rejected")
	}

	if order.RefundedAt != stamp {
		t.Error("expected RefundedAt to be unchanged by rejected refund")
	}
}

func TestMarkRefunded_RequiresPaid(t *testing.T) {
	// Arrange
	order, _ := NewOrder(1, 2, OrderInfo{}, testItems())

	// Act
	err := order.MarkRefunded("never paid")

	// Assert
	if err == nil {
		t.Fatal("expected refund on unpaid order to be rejected")
	}
}

func TestCanBeCancelled(t *testing.T) {
	tests := []struct {
		status OrderStatus
		want   bool
	}{
		{OrderStatusPending, true},
		{OrderStatusConfirmed, true},
		{OrderStatusProcessing, true},
		{OrderStatusShipped, false},
		{OrderStatusDelivered, false},
		{OrderStatusCancelled, false},
		{OrderStatusRefunded, false},
	}

	for _, tt := range tests {
		order := Order{Status: tt.status}
		if got := order.CanBeCancelled(); got != tt.want {
			t.Errorf("CanBeCancelled for %s: expected %v, got %v", tt.status, tt.want, got)
		}
	}
}

func TestTransitionShipping(t *testing.T) {
	// Arrange
	order, _ := NewOrder(1, 2, OrderInfo{}, testItems())

	// Act / Assert
	if err := order.TransitionShipping(ShippingStatusProcessing, ""); err != nil {
		t.Fatalf("expected pending->processing to succeed, got %v", err)
	}
	if err := order.TransitionShipping(ShippingStatusShipped, ""); err != nil {
		t.Fatalf("expected processing->shipped to succeed, got %v", err)
	}
	if err := order.TransitionShipping(ShippingStatusReturned, ""); err != nil {
		t.Fatalf("expected shipped->returned to succeed, got %v", err)
	}

	if err := order.TransitionShipping(ShippingStatusDelivered, ""); err == nil {
		t.Error("expected returned->delivered to be rejected")
	}
}
