package adapters

import (
	"context"

	"go.uber.org/zap"

	"marketplace/pkg/events"
	"marketplace/pkg/logger"
	"marketplace/pkg/rabbitmq"
)

// RabbitMQGamification implements the Gamification port by publishing award
// events for the gamification service. Fire-and-forget.
type RabbitMQGamification struct {
	publisher *rabbitmq.Publisher
	log       *logger.Logger
}

// NewRabbitMQGamification creates a new RabbitMQ gamification adapter
func NewRabbitMQGamification(publisher *rabbitmq.Publisher, log *logger.Logger) *RabbitMQGamification {
	return &RabbitMQGamification{
		publisher: publisher,
		log:       log,
	}
}

// AwardExperiencePoints publishes an experience award event
func (g *RabbitMQGamification) AwardExperiencePoints(ctx context.Context, bloggerID uint, points int, reason string) {
	traceID := logger.GetTraceID(ctx)
	event := events.NewExperienceAwardedEvent(bloggerID, points, reason, traceID)

	if err := g.publisher.Publish(ctx, events.RoutingKeyExperienceAwarded, event); err != nil {
		g.log.WithContext(ctx).Error("failed to publish experience award",
			zap.Error(err),
			zap.Uint("blogger_id", bloggerID),
			zap.Int("points", points),
		)
	}
}

// AwardAchievement publishes an achievement event
func (g *RabbitMQGamification) AwardAchievement(ctx context.Context, bloggerID uint, key string) {
	traceID := logger.GetTraceID(ctx)
	event := events.NewAchievementEvent(bloggerID, key, traceID)

	if err := g.publisher.Publish(ctx, events.RoutingKeyAchievement, event); err != nil {
		g.log.WithContext(ctx).Error("failed to publish achievement",
			zap.Error(err),
			zap.Uint("blogger_id", bloggerID),
			zap.String("key", key),
		)
	}
}
