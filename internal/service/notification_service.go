package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/quote-service/internal/config"
	"github.com/spec-kit/quote-service/internal/events"
)

// NotificationService handles emitting notifications for quote lifecycle
// events. Delivery itself is stubbed; the subscriber is the audit-visible
// activity surface.
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
	n.dispatcher.Subscribe(events.EventQuoteCreated, n.handleQuoteCreated)
	n.dispatcher.Subscribe(events.EventQuoteUpdated, n.handleQuoteUpdated)
	n.dispatcher.Subscribe(events.EventQuoteSubmittedForApproval, n.handleQuoteSubmitted)
}

func (n *NotificationService) handleQuoteCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("QuoteCreated",
		zap.String("ticket_id", event.TicketID),
		zap.String("quote_id", event.QuoteID),
		zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleQuoteUpdated(ctx context.Context, event events.Event) error {
	n.logger.Info("QuoteUpdated",
		zap.String("ticket_id", event.TicketID),
		zap.String("quote_id", event.QuoteID),
		zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleQuoteSubmitted(ctx context.Context, event events.Event) error {
	n.logger.Info("QuoteSubmittedForApproval",
		zap.String("ticket_id", event.TicketID),
		zap.String("quote_id", event.QuoteID),
		zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("quote_id", event.QuoteID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("quote_id", event.QuoteID),
		zap.String("event_type", string(event.Type)))
}
