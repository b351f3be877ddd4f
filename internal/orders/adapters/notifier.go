package adapters

import (
	"context"

	"go.uber.org/zap"

	"marketplace/pkg/events"
	"marketplace/pkg/logger"
	"marketplace/pkg/rabbitmq"
)

// RabbitMQNotifier implements the Notifier port by handing notifications to
// the delivery service over RabbitMQ. Fire-and-forget: publish failures are
// logged, never surfaced to the caller.
type RabbitMQNotifier struct {
	publisher *rabbitmq.Publisher
	log       *logger.Logger
}

// NewRabbitMQNotifier creates a new RabbitMQ notifier
func NewRabbitMQNotifier(publisher *rabbitmq.Publisher, log *logger.Logger) *RabbitMQNotifier {
	return &RabbitMQNotifier{
		publisher: publisher,
		log:       log,
	}
}

// Notify publishes a notification event
func (n *RabbitMQNotifier) Notify(ctx context.Context, recipientID uint, kind, title, message string, data map[string]interface{}) {
	traceID := logger.GetTraceID(ctx)
	event := events.NewNotificationEvent(recipientID, kind, title, message, data, traceID)

	if err := n.publisher.Publish(ctx, events.RoutingKeyNotificationSend, event); err != nil {
		n.log.WithContext(ctx).Error("failed to publish notification",
			zap.Error(err),
			zap.Uint("recipient_id", recipientID),
			zap.String("kind", kind),
		)
	}
}
