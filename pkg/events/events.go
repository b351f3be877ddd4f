package events

import "time"

// Exchange names
const (
	ExchangeOrders        = "orders.events"
	ExchangeNotifications = "notifications.events"
	ExchangeGamification  = "gamification.events"
)

// Routing keys
const (
	RoutingKeyOrderCreated      = "order.created"
	RoutingKeyOrderCompleted    = "order.completed"
	RoutingKeyNotificationSend  = "notification.send"
	RoutingKeyExperienceAwarded = "gamification.xp"
	RoutingKeyAchievement       = "gamification.achievement"
)

// OrderCreatedEvent is published after an order is committed. Consumers
// (commission, fraud) re-read the order by ID; the payload carries just
// enough to route and correlate.
type OrderCreatedEvent struct {
	Version   string              `json:"version"`
	EventType string              `json:"event_type"`
	Timestamp time.Time           `json:"timestamp"`
	TraceID   string              `json:"trace_id"`
	Payload   OrderCreatedPayload `json:"payload"`
}

// OrderCreatedPayload contains order data
type OrderCreatedPayload struct {
	OrderID       uint      `json:"order_id"`
	OrderNumber   string    `json:"order_number"`
	CustomerID    uint      `json:"customer_id"`
	MerchantID    uint      `json:"merchant_id"`
	AffiliateCode string    `json:"affiliate_code,omitempty"`
	TotalAmount   float64   `json:"total_amount"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(orderID uint, orderNumber string, customerID, merchantID uint, affiliateCode string, totalAmount float64, createdAt time.Time, traceID string) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		Version:   "1.0",
		EventType: "order.created",
		Timestamp: time.Now(),
		TraceID:   traceID,
		Payload: OrderCreatedPayload{
			OrderID:       orderID,
			OrderNumber:   orderNumber,
			CustomerID:    customerID,
			MerchantID:    merchantID,
			AffiliateCode: affiliateCode,
			TotalAmount:   totalAmount,
			CreatedAt:     createdAt,
		},
	}
}

// OrderCompletedEvent is published when an order reaches delivered.
// Loyalty point accrual consumes it downstream.
type OrderCompletedEvent struct {
	Version   string                `json:"version"`
	EventType string                `json:"event_type"`
	Timestamp time.Time             `json:"timestamp"`
	TraceID   string                `json:"trace_id"`
	Payload   OrderCompletedPayload `json:"payload"`
}

// OrderCompletedPayload contains completion data
type OrderCompletedPayload struct {
	OrderID     uint      `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	CustomerID  uint      `json:"customer_id"`
	TotalAmount float64   `json:"total_amount"`
	DeliveredAt time.Time `json:"delivered_at"`
}

// NewOrderCompletedEvent creates a new OrderCompletedEvent
func NewOrderCompletedEvent(orderID uint, orderNumber string, customerID uint, totalAmount float64, deliveredAt time.Time, traceID string) *OrderCompletedEvent {
	return &OrderCompletedEvent{
		Version:   "1.0",
		EventType: "order.completed",
		Timestamp: time.Now(),
		TraceID:   traceID,
		Payload: OrderCompletedPayload{
			OrderID:     orderID,
			OrderNumber: orderNumber,
			CustomerID:  customerID,
			TotalAmount: totalAmount,
			DeliveredAt: deliveredAt,
		},
	}
}

// NotificationEvent carries a fire-and-forget notification for the
// delivery service. No reply is consumed.
type NotificationEvent struct {
	Version   string              `json:"version"`
	EventType string              `json:"event_type"`
	Timestamp time.Time           `json:"timestamp"`
	TraceID   string              `json:"trace_id"`
	Payload   NotificationPayload `json:"payload"`
}

// NotificationPayload contains the notification content
type NotificationPayload struct {
	RecipientID uint                   `json:"recipient_id"`
	Kind        string                 `json:"kind"`
	Title       string                 `json:"title"`
	Message     string                 `json:"message"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// NewNotificationEvent creates a new NotificationEvent
func NewNotificationEvent(recipientID uint, kind, title, message string, data map[string]interface{}, traceID string) *NotificationEvent {
	return &NotificationEvent{
		Version:   "1.0",
		EventType: "notification.send",
		Timestamp: time.Now(),
		TraceID:   traceID,
		Payload: NotificationPayload{
			RecipientID: recipientID,
			Kind:        kind,
			Title:       title,
			Message:     message,
			Data:        data,
		},
	}
}

// ExperienceAwardedEvent credits experience points to a blogger account.
type ExperienceAwardedEvent struct {
	Version   string            `json:"version"`
	EventType string            `json:"event_type"`
	Timestamp time.Time         `json:"timestamp"`
	TraceID   string            `json:"trace_id"`
	Payload   ExperiencePayload `json:"payload"`
}

// ExperiencePayload contains the award data
type ExperiencePayload struct {
	BloggerID uint   `json:"blogger_id"`
	Points    int    `json:"points"`
	Reason    string `json:"reason"`
}

// NewExperienceAwardedEvent creates a new ExperienceAwardedEvent
func NewExperienceAwardedEvent(bloggerID uint, points int, reason, traceID string) *ExperienceAwardedEvent {
	return &ExperienceAwardedEvent{
		Version:   "1.0",
		EventType: "gamification.xp",
		Timestamp: time.Now(),
		TraceID:   traceID,
		Payload: ExperiencePayload{
			BloggerID: bloggerID,
			Points:    points,
			Reason:    reason,
		},
	}
}

// AchievementEvent grants a named achievement to a blogger account.
type AchievementEvent struct {
	Version   string             `json:"version"`
	EventType string             `json:"event_type"`
	Timestamp time.Time          `json:"timestamp"`
	TraceID   string             `json:"trace_id"`
	Payload   AchievementPayload `json:"payload"`
}

// AchievementPayload contains the achievement data
type AchievementPayload struct {
	BloggerID uint   `json:"blogger_id"`
	Key       string `json:"key"`
}

// NewAchievementEvent creates a new AchievementEvent
func NewAchievementEvent(bloggerID uint, key, traceID string) *AchievementEvent {
	return &AchievementEvent{
		Version:   "1.0",
		EventType: "gamification.achievement",
		Timestamp: time.Now(),
		TraceID:   traceID,
		Payload: AchievementPayload{
			BloggerID: bloggerID,
			Key:       key,
		},
	}
}
