package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/platform"
)

// onInteractionCreate normalizes a gateway interaction and hands it to the
// engine. Unsupported interaction types are ignored.
func (a *Adapter) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if a.handler == nil || i.Member == nil || i.Member.User == nil {
		return
	}

	ev := &platform.Interaction{
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		Member: platform.Member{
			ID:        i.Member.User.ID,
			Username:  i.Member.User.Username,
			Roles:     i.Member.Roles,
			CanManage: i.Member.Permissions&discordgo.PermissionManageMessages != 0,
		},
		Responder: &interactionResponder{session: s, interaction: i.Interaction},
	}

	switch i.Type {
	case discordgo.InteractionMessageComponent:
		data := i.MessageComponentData()
		ev.CustomID = data.CustomID
		ev.Values = data.Values
		if data.ComponentType == discordgo.SelectMenuComponent {
			ev.Kind = platform.KindSelectMenu
		} else {
			ev.Kind = platform.KindButton
		}
		if i.Message != nil {
			ev.Components = fromComponents(i.Message.Components)
		}
	case discordgo.InteractionModalSubmit:
		data := i.ModalSubmitData()
		ev.CustomID = data.CustomID
		ev.Kind = platform.KindModalSubmit
		ev.Fields = modalFields(data.Components)
	default:
		return
	}

	// Topic and name come from the channel itself; the engine treats the
	// topic as the per-ticket state side-channel.
	if channel, err := a.Channel(context.Background(), i.ChannelID); err == nil {
		ev.ChannelName = channel.Name
		ev.ChannelTopic = channel.Topic
	} else {
		a.logger.Debug("channel lookup failed", zap.String("channel_id", i.ChannelID), zap.Error(err))
	}

	a.handler(context.Background(), ev)
}

func fromComponents(components []discordgo.MessageComponent) []platform.ActionRow {
	rows := make([]platform.ActionRow, 0, len(components))
	for _, component := range components {
		actionsRow, ok := component.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		row := platform.ActionRow{}
		for _, inner := range actionsRow.Components {
			switch c := inner.(type) {
			case *discordgo.Button:
				emoji := ""
				if c.Emoji != nil {
					emoji = c.Emoji.Name
				}
				row.Buttons = append(row.Buttons, platform.Button{
					CustomID: c.CustomID,
					Label:    c.Label,
					Style:    fromButtonStyle(c.Style),
					Emoji:    emoji,
					Disabled: c.Disabled,
				})
			case *discordgo.SelectMenu:
				menu := &platform.SelectMenu{CustomID: c.CustomID, Placeholder: c.Placeholder}
				for _, opt := range c.Options {
					menu.Options = append(menu.Options, platform.SelectOption{
						Label:       opt.Label,
						Value:       opt.Value,
						Description: opt.Description,
					})
				}
				row.Select = menu
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func modalFields(components []discordgo.MessageComponent) map[string]string {
	fields := make(map[string]string)
	for _, component := range components {
		actionsRow, ok := component.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range actionsRow.Components {
			if input, ok := inner.(*discordgo.TextInput); ok {
				fields[input.CustomID] = input.Value
			}
		}
	}
	return fields
}

// interactionResponder answers one interaction through the webhook API.
type interactionResponder struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction
}

func (r *interactionResponder) Reply(ctx context.Context, resp platform.Response) error {
	return r.session.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: resp.Content,
			Embeds:  toEmbeds(resp.Embeds),
			Flags:   ephemeralFlags(resp.Ephemeral),
		},
	})
}

func (r *interactionResponder) FollowUp(ctx context.Context, resp platform.Response) error {
	_, err := r.session.FollowupMessageCreate(r.interaction, true, &discordgo.WebhookParams{
		Content: resp.Content,
		Embeds:  toEmbeds(resp.Embeds),
		Flags:   ephemeralFlags(resp.Ephemeral),
	})
	return err
}

func (r *interactionResponder) ShowModal(ctx context.Context, m platform.Modal) error {
	return r.session.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID:   m.CustomID,
			Title:      m.Title,
			Components: toModalComponents(m.Fields),
		},
	})
}

func (r *interactionResponder) UpdateComponents(ctx context.Context, rows []platform.ActionRow) error {
	return r.session.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Components: toComponents(rows),
		},
	})
}

var _ platform.Responder = (*interactionResponder)(nil)
