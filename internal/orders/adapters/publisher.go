package adapters

import (
	"context"
	"time"

	"marketplace/internal/orders/domain"
	"marketplace/pkg/events"
	"marketplace/pkg/logger"
	"marketplace/pkg/rabbitmq"
)

// RabbitMQPublisher implements EventPublisher using RabbitMQ
type RabbitMQPublisher struct {
	publisher *rabbitmq.Publisher
	log       *logger.Logger
}

// NewRabbitMQPublisher creates a new RabbitMQ event publisher
func NewRabbitMQPublisher(publisher *rabbitmq.Publisher, log *logger.Logger) *RabbitMQPublisher {
	return &RabbitMQPublisher{
		publisher: publisher,
		log:       log,
	}
}

// PublishOrderCreated publishes an order created event
func (p *RabbitMQPublisher) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	traceID := logger.GetTraceID(ctx)

	event := events.NewOrderCreatedEvent(
		order.ID,
		order.OrderNumber,
		order.CustomerID,
		order.MerchantID,
		order.AffiliateCode,
		order.TotalAmount,
		order.CreatedAt,
		traceID,
	)

	return p.publisher.Publish(ctx, events.RoutingKeyOrderCreated, event)
}

// PublishOrderCompleted publishes an order completed event
func (p *RabbitMQPublisher) PublishOrderCompleted(ctx context.Context, order *domain.Order) error {
	traceID := logger.GetTraceID(ctx)

	deliveredAt := time.Now()
	if order.DeliveredAt != nil {
		deliveredAt = *order.DeliveredAt
	}

	event := events.NewOrderCompletedEvent(
		order.ID,
		order.OrderNumber,
		order.CustomerID,
		order.TotalAmount,
		deliveredAt,
		traceID,
	)

	return p.publisher.Publish(ctx, events.RoutingKeyOrderCompleted, event)
}
