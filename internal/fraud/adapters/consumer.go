package adapters

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"marketplace/internal/fraud/application"
	"marketplace/pkg/events"
	"marketplace/pkg/logger"
	"marketplace/pkg/rabbitmq"
)

// OrderCreatedConsumer consumes OrderCreated events and scores the order off
// the request path. Scoring failures never propagate: analysis is advisory
// and must not fail order creation.
type OrderCreatedConsumer struct {
	consumer *rabbitmq.Consumer
	useCase  *application.FraudUseCase
	log      *logger.Logger
}

// NewOrderCreatedConsumer creates a new consumer for OrderCreated events
func NewOrderCreatedConsumer(conn *rabbitmq.Connection, useCase *application.FraudUseCase, log *logger.Logger) (*OrderCreatedConsumer, error) {
	consumer, err := rabbitmq.NewConsumer(
		conn,
		"fraud.order-created", // queue name
		events.ExchangeOrders, // exchange
		[]string{events.RoutingKeyOrderCreated},
		log,
	)
	if err != nil {
		return nil, err
	}

	return &OrderCreatedConsumer{
		consumer: consumer,
		useCase:  useCase,
		log:      log,
	}, nil
}

// Start starts consuming OrderCreated events
func (c *OrderCreatedConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

func (c *OrderCreatedConsumer) handleMessage(ctx context.Context, body []byte) error {
	var event events.OrderCreatedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.log.WithContext(ctx).Error("failed to unmarshal OrderCreatedEvent",
			zap.Error(err),
		)
		return nil
	}

	if _, err := c.useCase.AnalyzeOrder(ctx, event.Payload.OrderID); err != nil {
		c.log.WithContext(ctx).Error("fraud analysis failed",
			zap.Error(err),
			zap.Uint("order_id", event.Payload.OrderID),
		)
	}

	return nil
}
