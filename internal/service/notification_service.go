package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/config"
	"github.com/spec-kit/ticket-bot/internal/events"
)

// NotificationService forwards lifecycle events to an optional webhook.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
	http       *http.Client
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
		http:       &http.Client{Timeout: 10 * time.Second},
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketOpened, n.handleEvent)
	n.dispatcher.Subscribe(events.EventTicketClaimed, n.handleEvent)
	n.dispatcher.Subscribe(events.EventTicketClosed, n.handleEvent)
	n.dispatcher.Subscribe(events.EventPanelPublished, n.handleEvent)
}

func (n *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("guild_id", event.GuildID),
		zap.String("channel_id", event.ChannelID))
	n.sendWebhook(ctx, event)
	return nil
}

// sendWebhook POSTs the event as JSON; delivery is best-effort.
func (n *NotificationService) sendWebhook(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	body, err := json.Marshal(event)
	if err != nil {
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		n.logger.Warn("webhook delivery failed", zap.Error(err))
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		n.logger.Warn("webhook rejected", zap.Int("status", resp.StatusCode))
	}
}
