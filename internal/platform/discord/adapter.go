// Package discord implements the platform interfaces on top of the
// Discord gateway and REST API.
package discord

import (
	"bytes"
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/platform"
)

const historyPageSize = 100

// InteractionHandler consumes normalized interactions.
type InteractionHandler func(ctx context.Context, ev *platform.Interaction)

// Adapter owns the discordgo session and implements platform.Client.
type Adapter struct {
	session *discordgo.Session
	handler InteractionHandler
	logger  *zap.Logger
}

// NewAdapter builds the adapter; Open must be called before use.
func NewAdapter(token string, logger *zap.Logger) (*Adapter, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent |
		discordgo.IntentsGuildMembers

	a := &Adapter{session: session, logger: logger}
	session.AddHandler(a.onReady)
	session.AddHandler(a.onInteractionCreate)
	return a, nil
}

// SetInteractionHandler wires the lifecycle engine.
func (a *Adapter) SetInteractionHandler(h InteractionHandler) {
	a.handler = h
}

// Open connects the gateway session.
func (a *Adapter) Open() error {
	return a.session.Open()
}

// Close shuts the session down.
func (a *Adapter) Close() error {
	return a.session.Close()
}

func (a *Adapter) onReady(s *discordgo.Session, r *discordgo.Ready) {
	a.logger.Info("bot online", zap.String("user", r.User.Username))
}

// CreateChannel makes a private text channel. The deny grant hides the
// channel from the everyone role; allow grants open it to the creator and
// the bot.
func (a *Adapter) CreateChannel(ctx context.Context, guildID string, params platform.ChannelCreate) (*platform.Channel, error) {
	overwrites := make([]*discordgo.PermissionOverwrite, 0, len(params.Grants))
	for _, grant := range params.Grants {
		if grant.Allow {
			overwrites = append(overwrites, &discordgo.PermissionOverwrite{
				ID:   grant.ID,
				Type: discordgo.PermissionOverwriteTypeMember,
				Allow: discordgo.PermissionViewChannel |
					discordgo.PermissionSendMessages |
					discordgo.PermissionAttachFiles |
					discordgo.PermissionReadMessageHistory |
					discordgo.PermissionEmbedLinks,
			})
			continue
		}
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:   grant.ID,
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: discordgo.PermissionViewChannel,
		})
	}

	channel, err := a.session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:                 params.Name,
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                params.Topic,
		ParentID:             params.ParentID,
		PermissionOverwrites: overwrites,
	})
	if err != nil {
		return nil, err
	}
	return toChannel(channel), nil
}

// SendMessage posts content, embeds, components and files in one call.
func (a *Adapter) SendMessage(ctx context.Context, channelID string, msg platform.Message) error {
	send := &discordgo.MessageSend{
		Content:    msg.Content,
		Embeds:     toEmbeds(msg.Embeds),
		Components: toComponents(msg.Components),
	}
	for _, file := range msg.Files {
		send.Files = append(send.Files, &discordgo.File{
			Name:        file.Name,
			ContentType: file.ContentType,
			Reader:      bytes.NewReader(file.Data),
		})
	}
	_, err := a.session.ChannelMessageSendComplex(channelID, send)
	return err
}

// SetChannelTopic rewrites the topic, the per-ticket state side-channel.
func (a *Adapter) SetChannelTopic(ctx context.Context, channelID, topic string) error {
	_, err := a.session.ChannelEdit(channelID, &discordgo.ChannelEdit{Topic: topic})
	return err
}

// DeleteChannel removes the channel.
func (a *Adapter) DeleteChannel(ctx context.Context, channelID string) error {
	_, err := a.session.ChannelDelete(channelID)
	return err
}

// ChannelMessages pages through the whole history, returning oldest first.
func (a *Adapter) ChannelMessages(ctx context.Context, channelID string) ([]platform.Message, error) {
	var history []platform.Message
	beforeID := ""
	for {
		page, err := a.session.ChannelMessages(channelID, historyPageSize, beforeID, "", "")
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		for _, m := range page {
			history = append(history, fromMessage(m))
		}
		beforeID = page[len(page)-1].ID
		if len(page) < historyPageSize {
			break
		}
	}
	// Discord returns newest first.
	for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
		history[i], history[j] = history[j], history[i]
	}
	return history, nil
}

// Channel fetches a channel, preferring state cache.
func (a *Adapter) Channel(ctx context.Context, channelID string) (*platform.Channel, error) {
	if channel, err := a.session.State.Channel(channelID); err == nil {
		return toChannel(channel), nil
	}
	channel, err := a.session.Channel(channelID)
	if err != nil {
		return nil, err
	}
	return toChannel(channel), nil
}

// User fetches a user by id.
func (a *Adapter) User(ctx context.Context, userID string) (*platform.User, error) {
	user, err := a.session.User(userID)
	if err != nil {
		return nil, err
	}
	return &platform.User{ID: user.ID, Username: user.Username, IconURL: user.AvatarURL("64")}, nil
}

// MemberHasRole checks cached member data only; an uncached member counts
// as not holding the role. Staleness is accepted to avoid rate limits.
func (a *Adapter) MemberHasRole(guildID, userID, roleID string) bool {
	member, err := a.session.State.Member(guildID, userID)
	if err != nil || member == nil {
		return false
	}
	for _, r := range member.Roles {
		if r == roleID {
			return true
		}
	}
	return false
}

// BotUserID returns the service identity's user id.
func (a *Adapter) BotUserID() string {
	if a.session.State != nil && a.session.State.User != nil {
		return a.session.State.User.ID
	}
	return ""
}

func toChannel(c *discordgo.Channel) *platform.Channel {
	return &platform.Channel{ID: c.ID, GuildID: c.GuildID, Name: c.Name, Topic: c.Topic}
}

func fromMessage(m *discordgo.Message) platform.Message {
	msg := platform.Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		Content:   m.Content,
		Timestamp: m.Timestamp,
	}
	if m.Author != nil {
		msg.AuthorID = m.Author.ID
		msg.AuthorName = m.Author.Username
		msg.AuthorIcon = m.Author.AvatarURL("64")
		msg.Bot = m.Author.Bot
	}
	for _, emb := range m.Embeds {
		e := platform.Embed{Title: emb.Title, Description: emb.Description, Color: emb.Color}
		if ts, err := time.Parse(time.RFC3339, emb.Timestamp); err == nil {
			e.Timestamp = ts
		}
		msg.Embeds = append(msg.Embeds, e)
	}
	for _, att := range m.Attachments {
		msg.Attachments = append(msg.Attachments, platform.Attachment{
			URL:      att.URL,
			Filename: att.Filename,
			Width:    att.Width,
			Height:   att.Height,
		})
	}
	return msg
}

func toEmbeds(embeds []platform.Embed) []*discordgo.MessageEmbed {
	out := make([]*discordgo.MessageEmbed, 0, len(embeds))
	for _, emb := range embeds {
		converted := &discordgo.MessageEmbed{
			Title:       emb.Title,
			Description: emb.Description,
			Color:       emb.Color,
		}
		if emb.FooterText != "" {
			converted.Footer = &discordgo.MessageEmbedFooter{Text: emb.FooterText}
		}
		if emb.ImageURL != "" {
			converted.Image = &discordgo.MessageEmbedImage{URL: emb.ImageURL}
		}
		if !emb.Timestamp.IsZero() {
			converted.Timestamp = emb.Timestamp.Format(time.RFC3339)
		}
		for _, field := range emb.Fields {
			converted.Fields = append(converted.Fields, &discordgo.MessageEmbedField{
				Name:   field.Name,
				Value:  field.Value,
				Inline: field.Inline,
			})
		}
		out = append(out, converted)
	}
	return out
}

func toComponents(rows []platform.ActionRow) []discordgo.MessageComponent {
	out := make([]discordgo.MessageComponent, 0, len(rows))
	for _, row := range rows {
		actionsRow := discordgo.ActionsRow{}
		if row.Select != nil {
			menu := discordgo.SelectMenu{
				CustomID:    row.Select.CustomID,
				Placeholder: row.Select.Placeholder,
			}
			for _, opt := range row.Select.Options {
				menu.Options = append(menu.Options, discordgo.SelectMenuOption{
					Label:       opt.Label,
					Value:       opt.Value,
					Description: opt.Description,
				})
			}
			actionsRow.Components = append(actionsRow.Components, menu)
		}
		for _, btn := range row.Buttons {
			button := discordgo.Button{
				CustomID: btn.CustomID,
				Label:    btn.Label,
				Style:    toButtonStyle(btn.Style),
				Disabled: btn.Disabled,
			}
			if btn.Emoji != "" {
				button.Emoji = &discordgo.ComponentEmoji{Name: btn.Emoji}
			}
			actionsRow.Components = append(actionsRow.Components, button)
		}
		out = append(out, actionsRow)
	}
	return out
}

func toButtonStyle(style platform.ButtonStyle) discordgo.ButtonStyle {
	switch style {
	case platform.ButtonPrimary:
		return discordgo.PrimaryButton
	case platform.ButtonSecondary:
		return discordgo.SecondaryButton
	case platform.ButtonSuccess:
		return discordgo.SuccessButton
	case platform.ButtonDanger:
		return discordgo.DangerButton
	default:
		return discordgo.SecondaryButton
	}
}

func fromButtonStyle(style discordgo.ButtonStyle) platform.ButtonStyle {
	switch style {
	case discordgo.PrimaryButton:
		return platform.ButtonPrimary
	case discordgo.SecondaryButton:
		return platform.ButtonSecondary
	case discordgo.SuccessButton:
		return platform.ButtonSuccess
	case discordgo.DangerButton:
		return platform.ButtonDanger
	default:
		return platform.ButtonSecondary
	}
}

func toModalComponents(fields []platform.TextField) []discordgo.MessageComponent {
	out := make([]discordgo.MessageComponent, 0, len(fields))
	for _, field := range fields {
		style := discordgo.TextInputShort
		if field.Style == platform.TextFieldParagraph {
			style = discordgo.TextInputParagraph
		}
		out = append(out, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.TextInput{
				CustomID:    field.CustomID,
				Label:       field.Label,
				Style:       style,
				Placeholder: field.Placeholder,
				Required:    field.Required,
				MinLength:   field.MinLength,
				MaxLength:   field.MaxLength,
			},
		}})
	}
	return out
}

func ephemeralFlags(ephemeral bool) discordgo.MessageFlags {
	if ephemeral {
		return discordgo.MessageFlagsEphemeral
	}
	return 0
}

var _ platform.Client = (*Adapter)(nil)
