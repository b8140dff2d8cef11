package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/platform"
	"github.com/spec-kit/ticket-bot/internal/store"
	"github.com/spec-kit/ticket-bot/internal/ticket"
	apperrors "github.com/spec-kit/ticket-bot/pkg/util"
)

const (
	defaultPanelTitle = "📩 Support Ticket"
	defaultPanelDesc  = "Silahkan pilih kategori di bawah untuk memulai chat dengan staff."
	panelColor        = 0x6366F1
)

// PanelService saves tenant configuration and republishes the intake
// panel. Every save posts a fresh panel message; stale panels are not
// cleaned up.
type PanelService struct {
	store      *store.Store
	client     platform.Client
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewPanelService constructs the service.
func NewPanelService(st *store.Store, client platform.Client, dispatcher events.Dispatcher, logger *zap.Logger) *PanelService {
	return &PanelService{store: st, client: client, dispatcher: dispatcher, logger: logger}
}

// SaveInput carries a dashboard save request.
type SaveInput struct {
	GuildID    string
	ChannelID  string
	CategoryID string
	Options    []domain.CategoryDefinition
	PanelTitle string
	PanelDesc  string
	PanelImage string
}

// Save overwrites channel/category/options for a tenant and publishes a
// basic panel to the intake channel.
func (s *PanelService) Save(ctx context.Context, in SaveInput) error {
	if err := s.persist(ctx, in, false); err != nil {
		return err
	}
	return s.publish(ctx, in, nil)
}

// SaveConfig additionally stores panel display metadata and publishes the
// richer panel variant.
func (s *PanelService) SaveConfig(ctx context.Context, in SaveInput) error {
	panel := &domain.PanelSettings{
		Title:    in.PanelTitle,
		Desc:     in.PanelDesc,
		ImageURL: in.PanelImage,
	}
	if err := s.persist(ctx, in, true); err != nil {
		return err
	}
	return s.publish(ctx, in, panel)
}

func (s *PanelService) persist(ctx context.Context, in SaveInput, withPanel bool) error {
	return s.store.Update(ctx, func(doc *domain.Document) error {
		cfg := doc.Guild(in.GuildID)
		cfg.ChannelID = in.ChannelID
		cfg.CategoryID = in.CategoryID
		cfg.Options = in.Options
		if withPanel {
			cfg.Panel = &domain.PanelSettings{
				Title:    in.PanelTitle,
				Desc:     in.PanelDesc,
				ImageURL: in.PanelImage,
			}
		}
		return nil
	})
}

// publish sends a new panel message; it never edits the previous one.
func (s *PanelService) publish(ctx context.Context, in SaveInput, panel *domain.PanelSettings) error {
	if _, err := s.client.Channel(ctx, in.ChannelID); err != nil {
		return apperrors.NewNotFound("channel", map[string]any{"channelId": in.ChannelID})
	}

	embed := platform.Embed{
		Title:       defaultPanelTitle,
		Description: defaultPanelDesc,
		Color:       panelColor,
	}
	options := make([]platform.SelectOption, 0, len(in.Options))

	if panel == nil {
		for _, opt := range in.Options {
			options = append(options, platform.SelectOption{Label: opt.Label, Value: opt.Value})
		}
	} else {
		if panel.Title != "" {
			embed.Title = panel.Title
		}
		if panel.Desc != "" {
			embed.Description = panel.Desc
		}
		if strings.HasPrefix(panel.ImageURL, "http") {
			embed.ImageURL = panel.ImageURL
		}
		embed.FooterText = "V2.0 Core Interface"
		embed.Timestamp = time.Now()
		for _, opt := range in.Options {
			options = append(options, platform.SelectOption{
				Label:       opt.Label,
				Value:       opt.Value,
				Description: "Buka ticket untuk " + opt.Label,
			})
		}
	}

	err := s.client.SendMessage(ctx, in.ChannelID, platform.Message{
		Embeds: []platform.Embed{embed},
		Components: []platform.ActionRow{{
			Select: &platform.SelectMenu{
				CustomID:    ticket.SelectCustomID,
				Placeholder: "Select a service...",
				Options:     options,
			},
		}},
	})
	if err != nil {
		return apperrors.NewUpstreamError("failed to publish panel", err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventPanelPublished,
			GuildID:   in.GuildID,
			ChannelID: in.ChannelID,
			Timestamp: time.Now(),
			Payload:   events.PanelPublishedPayload{ChannelID: in.ChannelID, Options: len(in.Options)},
		})
	}
	return nil
}
