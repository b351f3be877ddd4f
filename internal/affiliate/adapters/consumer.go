package adapters

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"marketplace/internal/affiliate/application"
	"marketplace/pkg/errors"
	"marketplace/pkg/events"
	"marketplace/pkg/logger"
	"marketplace/pkg/rabbitmq"
)

// OrderCreatedConsumer consumes OrderCreated events and runs the commission
// work off the request path: conversion attribution when the order carries an
// affiliate code, then commission finalization.
type OrderCreatedConsumer struct {
	consumer *rabbitmq.Consumer
	useCase  *application.AffiliateUseCase
	log      *logger.Logger
}

// NewOrderCreatedConsumer creates a new consumer for OrderCreated events
func NewOrderCreatedConsumer(conn *rabbitmq.Connection, useCase *application.AffiliateUseCase, log *logger.Logger) (*OrderCreatedConsumer, error) {
	consumer, err := rabbitmq.NewConsumer(
		conn,
		"affiliate.order-created", // queue name
		events.ExchangeOrders,     // exchange
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
		return err
	}

	payload := event.Payload

	if payload.AffiliateCode != "" {
		_, err := c.useCase.TrackConversion(ctx, application.TrackConversionInput{
			Code:    payload.AffiliateCode,
			OrderID: payload.OrderID,
			Amount:  payload.TotalAmount,
		})
		if err != nil {
			// Business-rule rejections (unknown or inactive link,
			// vanished order) are final. Transient failures requeue;
			// the attribution marker keeps the retry from crediting
			// the conversion twice.
			if errors.Is(err, errors.CodeNotFound) || errors.Is(err, errors.CodeConflict) {
				c.log.WithContext(ctx).Warn("conversion not credited",
					zap.Error(err),
					zap.Uint("order_id", payload.OrderID),
					zap.String("affiliate_code", payload.AffiliateCode),
				)
			} else {
				return err
			}
		}
	}

	if err := c.useCase.CalculateCommissions(ctx, payload.OrderID); err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			c.log.WithContext(ctx).Warn("order vanished before commission calculation",
				zap.Uint("order_id", payload.OrderID),
			)
			return nil
		}
		return err
	}

	return nil
}
