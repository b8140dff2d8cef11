package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/platform"
	"github.com/spec-kit/ticket-bot/internal/platform/platformtest"
	"github.com/spec-kit/ticket-bot/internal/ticket"
	apperrors "github.com/spec-kit/ticket-bot/pkg/util"
)

func saveInput() SaveInput {
	return SaveInput{
		GuildID:    "g1",
		ChannelID:  "panel-chan",
		CategoryID: "cat-1",
		Options: []domain.CategoryDefinition{
			{Value: "billing", Label: "Billing Help", Type: domain.CategoryPurchase},
			{Value: "general", Label: "General", Type: domain.CategorySupport},
		},
	}
}

func TestSavePersistsAndPublishesPanel(t *testing.T) {
	st := newTestStore(t)
	client := platformtest.NewFakeClient()
	client.Channels["panel-chan"] = &platform.Channel{ID: "panel-chan", GuildID: "g1"}
	svc := NewPanelService(st, client, nil, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, svc.Save(ctx, saveInput()))

	_ = st.View(ctx, func(doc *domain.Document) {
		cfg := doc.Guilds["g1"]
		require.NotNil(t, cfg)
		assert.Equal(t, "panel-chan", cfg.ChannelID)
		assert.Equal(t, "cat-1", cfg.CategoryID)
		assert.Len(t, cfg.Options, 2)
		assert.Nil(t, cfg.Panel)
	})

	sent := client.LastSent()
	require.NotNil(t, sent)
	assert.Equal(t, "panel-chan", sent.ChannelID)
	require.Len(t, sent.Message.Embeds, 1)
	assert.Equal(t, "📩 Support Ticket", sent.Message.Embeds[0].Title)
	assert.Equal(t, 0x6366F1, sent.Message.Embeds[0].Color)

	require.Len(t, sent.Message.Components, 1)
	menu := sent.Message.Components[0].Select
	require.NotNil(t, menu)
	assert.Equal(t, ticket.SelectCustomID, menu.CustomID)
	require.Len(t, menu.Options, 2)
	assert.Empty(t, menu.Options[0].Description)
}

func TestSaveConfigPublishesRichPanel(t *testing.T) {
	st := newTestStore(t)
	client := platformtest.NewFakeClient()
	client.Channels["panel-chan"] = &platform.Channel{ID: "panel-chan", GuildID: "g1"}
	svc := NewPanelService(st, client, nil, zap.NewNop())
	ctx := context.Background()

	in := saveInput()
	in.PanelTitle = "Custom Title"
	in.PanelDesc = "Custom description"
	in.PanelImage = "https://example.com/banner.png"
	require.NoError(t, svc.SaveConfig(ctx, in))

	_ = st.View(ctx, func(doc *domain.Document) {
		require.NotNil(t, doc.Guilds["g1"].Panel)
		assert.Equal(t, "Custom Title", doc.Guilds["g1"].Panel.Title)
	})

	sent := client.LastSent()
	require.NotNil(t, sent)
	embed := sent.Message.Embeds[0]
	assert.Equal(t, "Custom Title", embed.Title)
	assert.Equal(t, "Custom description", embed.Description)
	assert.Equal(t, "https://example.com/banner.png", embed.ImageURL)
	assert.Equal(t, "V2.0 Core Interface", embed.FooterText)

	menu := sent.Message.Components[0].Select
	assert.Equal(t, "Buka ticket untuk Billing Help", menu.Options[0].Description)
}

func TestSaveConfigIgnoresNonHTTPImage(t *testing.T) {
	st := newTestStore(t)
	client := platformtest.NewFakeClient()
	client.Channels["panel-chan"] = &platform.Channel{ID: "panel-chan", GuildID: "g1"}
	svc := NewPanelService(st, client, nil, zap.NewNop())

	in := saveInput()
	in.PanelImage = "not-a-url"
	require.NoError(t, svc.SaveConfig(context.Background(), in))

	sent := client.LastSent()
	require.NotNil(t, sent)
	assert.Empty(t, sent.Message.Embeds[0].ImageURL)
}

func TestSavedConfigRoundTripsThroughStats(t *testing.T) {
	st := newTestStore(t)
	client := platformtest.NewFakeClient()
	client.Channels["panel-chan"] = &platform.Channel{ID: "panel-chan", GuildID: "g1"}
	panels := NewPanelService(st, client, nil, zap.NewNop())
	stats := NewStatsService(st, client, "role-staff")
	ctx := context.Background()

	in := saveInput()
	require.NoError(t, panels.Save(ctx, in))

	view, err := stats.Overview(ctx)
	require.NoError(t, err)
	require.NotNil(t, view.Config)
	// Same options, same order, same fields.
	assert.Equal(t, in.Options, view.Config.Options)
	assert.Equal(t, in.ChannelID, view.Config.ChannelID)
	assert.Equal(t, in.CategoryID, view.Config.CategoryID)
}

func TestSaveUnknownChannelFails(t *testing.T) {
	st := newTestStore(t)
	client := platformtest.NewFakeClient()
	svc := NewPanelService(st, client, nil, zap.NewNop())

	err := svc.Save(context.Background(), saveInput())
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)

	// Config still landed; only the publish failed.
	_ = st.View(context.Background(), func(doc *domain.Document) {
		assert.NotNil(t, doc.Guilds["g1"])
	})
	assert.Nil(t, client.LastSent())
}
