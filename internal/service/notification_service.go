package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/exchange-service/internal/config"
	"github.com/spec-kit/exchange-service/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventExchangeProposed, n.handleExchangeProposed)
	n.dispatcher.Subscribe(events.EventExchangeConfirmed, n.handleStatusChange)
	n.dispatcher.Subscribe(events.EventExchangeStarted, n.handleStatusChange)
	n.dispatcher.Subscribe(events.EventExchangeCompleted, n.handleExchangeCompleted)
	n.dispatcher.Subscribe(events.EventExchangeCancelled, n.handleStatusChange)
	n.dispatcher.Subscribe(events.EventRatingSubmitted, n.handleRatingSubmitted)
	n.dispatcher.Subscribe(events.EventMessageAdded, n.handleMessageAdded)
}

func (n *NotificationService) handleExchangeProposed(ctx context.Context, event events.Event) error {
	n.logger.Info("ExchangeProposed", zap.String("exchange_id", event.ExchangeID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleStatusChange(ctx context.Context, event events.Event) error {
	n.logger.Info("ExchangeStatusChanged",
		zap.String("exchange_id", event.ExchangeID),
		zap.String("event_type", string(event.Type)),
		zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleExchangeCompleted(ctx context.Context, event events.Event) error {
	n.logger.Info("ExchangeCompleted", zap.String("exchange_id", event.ExchangeID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleRatingSubmitted(ctx context.Context, event events.Event) error {
	n.logger.Info("RatingSubmitted", zap.String("exchange_id", event.ExchangeID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleMessageAdded(ctx context.Context, event events.Event) error {
	n.logger.Info("ExchangeMessageAdded", zap.String("exchange_id", event.ExchangeID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("exchange_id", event.ExchangeID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("exchange_id", event.ExchangeID),
		zap.String("event_type", string(event.Type)))
}
