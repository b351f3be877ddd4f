package domain

// OrderStatus is the fulfillment axis of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// PaymentStatus is the payment axis of an order
type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "pending"
	PaymentStatusPaid              PaymentStatus = "paid"
	PaymentStatusFailed            PaymentStatus = "failed"
	PaymentStatusRefunded          PaymentStatus = "refunded"
	PaymentStatusPartiallyRefunded PaymentStatus = "partially_refunded"
)

// ShippingStatus is the shipping axis of an order
type ShippingStatus string

const (
	ShippingStatusPending    ShippingStatus = "pending"
	ShippingStatusProcessing ShippingStatus = "processing"
	ShippingStatusShipped    ShippingStatus = "shipped"
	ShippingStatusDelivered  ShippingStatus = "delivered"
	ShippingStatusReturned   ShippingStatus = "returned"
)

// orderTransitions is the single source of truth for the fulfillment axis.
// delivered, cancelled and refunded have no outgoing edges.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
	OrderStatusRefunded:   {},
}

// paymentTransitions governs the payment axis. partially_refunded is a legal
// target from paid but no current operation produces it.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:           {PaymentStatusPaid, PaymentStatusFailed},
	PaymentStatusFailed:            {PaymentStatusPending, PaymentStatusPaid},
	PaymentStatusPaid:              {PaymentStatusRefunded, PaymentStatusPartiallyRefunded},
	PaymentStatusPartiallyRefunded: {PaymentStatusRefunded},
	PaymentStatusRefunded:          {},
}

// shippingTransitions governs the informational shipping axis.
var shippingTransitions = map[ShippingStatus][]ShippingStatus{
	ShippingStatusPending:    {ShippingStatusProcessing},
	ShippingStatusProcessing: {ShippingStatusShipped, ShippingStatusReturned},
	ShippingStatusShipped:    {ShippingStatusDelivered, ShippingStatusReturned},
	ShippingStatusDelivered:  {ShippingStatusReturned},
	ShippingStatusReturned:   {},
}

// Valid reports whether the value belongs to the enum
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// CanTransitionTo reports whether the edge s -> next is legal
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the status has no outgoing edges
func (s OrderStatus) Terminal() bool {
	return s.Valid() && len(orderTransitions[s]) == 0
}

// Valid reports whether the value belongs to the enum
func (s PaymentStatus) Valid() bool {
	_, ok := paymentTransitions[s]
	return ok
}

// CanTransitionTo reports whether the edge s -> next is legal
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether the value belongs to the enum
func (s ShippingStatus) Valid() bool {
	_, ok := shippingTransitions[s]
	return ok
}

// CanTransitionTo reports whether the edge s -> next is legal
func (s ShippingStatus) CanTransitionTo(next ShippingStatus) bool {
	for _, allowed := range shippingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
