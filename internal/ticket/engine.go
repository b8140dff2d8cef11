// Package ticket implements the ticket lifecycle engine: category
// selection, form collection, channel creation, claim, close, transcript
// archival and staff point accounting.
package ticket

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/config"
	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/locale"
	"github.com/spec-kit/ticket-bot/internal/platform"
	"github.com/spec-kit/ticket-bot/internal/store"
	"github.com/spec-kit/ticket-bot/internal/transcript"
	"github.com/spec-kit/ticket-bot/internal/worker"
)

// Fixed component identifiers; these are wire constants shared with
// existing panel messages and must not change.
const (
	SelectCustomID    = "ticket_select"
	ButtonPayIndo     = "pay_indo"
	ButtonPayGlobal   = "pay_global"
	ButtonClaim       = "claim_ticket"
	ButtonClose       = "close_ticket"
	ModalTicketPrefix = "modal_ticket_"
	ModalConfirmClose = "modal_confirm_close"

	fieldDetail      = "input_detail"
	fieldLang        = "input_lang"
	fieldCloseReason = "close_reason"
)

// Embed palette.
const (
	colorIndigo = 0x6366F1
	colorViolet = 0xA050FF
	colorRose   = 0xF43F5E
	colorGreen  = 0x22C55E
	colorRed    = 0xFF4747
)

const unclaimedMarker = "⚠️ *Tidak diklaim*"

// Engine drives the ticket state machine. One inbound interaction is
// handled to completion before the next; the store mutex is the only lock.
type Engine struct {
	store       *store.Store
	client      platform.Client
	transcripts transcript.Generator
	deleter     *worker.Deleter
	dispatcher  events.Dispatcher
	cfg         config.DiscordConfig
	logger      *zap.Logger
}

// Dependencies bundles collaborators for the engine.
type Dependencies struct {
	Store       *store.Store
	Client      platform.Client
	Transcripts transcript.Generator
	Deleter     *worker.Deleter
	Dispatcher  events.Dispatcher
	Config      config.DiscordConfig
	Logger      *zap.Logger
}

// NewEngine constructs the engine.
func NewEngine(deps Dependencies) *Engine {
	return &Engine{
		store:       deps.Store,
		client:      deps.Client,
		transcripts: deps.Transcripts,
		deleter:     deps.Deleter,
		dispatcher:  deps.Dispatcher,
		cfg:         deps.Config,
		logger:      deps.Logger,
	}
}

// HandleInteraction routes one inbound event through the state machine.
// It is the failure-isolating boundary: every path produces a user-visible
// response, including panics and unexpected errors.
func (e *Engine) HandleInteraction(ctx context.Context, ev *platform.Interaction) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("interaction handler panic", zap.Any("panic", r), zap.String("custom_id", ev.CustomID))
			e.notifyFailure(ctx, ev)
		}
	}()

	var err error
	switch {
	case ev.Kind == platform.KindSelectMenu && ev.CustomID == SelectCustomID:
		err = e.handleCategorySelect(ctx, ev)
	case ev.Kind == platform.KindButton:
		err = e.handleButton(ctx, ev)
	case ev.Kind == platform.KindModalSubmit && strings.HasPrefix(ev.CustomID, ModalTicketPrefix):
		err = e.handleOpenTicket(ctx, ev)
	case ev.Kind == platform.KindModalSubmit && ev.CustomID == ModalConfirmClose:
		err = e.handleConfirmClose(ctx, ev)
	default:
		return
	}
	if err != nil {
		e.reportError(ctx, ev, err)
	}
}

func (e *Engine) handleButton(ctx context.Context, ev *platform.Interaction) error {
	switch ev.CustomID {
	case ButtonPayIndo:
		return e.handlePayIndo(ctx, ev)
	case ButtonPayGlobal:
		return e.handlePayGlobal(ctx, ev)
	case ButtonClaim:
		return e.handleClaim(ctx, ev)
	case ButtonClose:
		return e.handleCloseRequest(ctx, ev)
	}
	return nil
}

// handleCategorySelect presents the intake form for the chosen category.
// No store mutation happens here.
func (e *Engine) handleCategorySelect(ctx context.Context, ev *platform.Interaction) error {
	if len(ev.Values) == 0 {
		return nil
	}
	selected := ev.Values[0]

	var opt domain.CategoryDefinition
	var matched bool
	_ = e.store.View(ctx, func(doc *domain.Document) {
		if cfg, ok := doc.Guilds[ev.GuildID]; ok {
			opt, matched = cfg.FindOption(selected)
		}
	})

	label := "Ticket"
	question := "Detail Pesanan"
	if matched {
		if opt.Label != "" {
			label = opt.Label
		}
		if opt.Question != "" {
			question = opt.Question
		}
	}

	return ev.Responder.ShowModal(ctx, platform.Modal{
		CustomID: ModalTicketPrefix + selected,
		Title:    "Formulir " + label,
		Fields: []platform.TextField{
			{
				CustomID: fieldDetail,
				Label:    truncate(question, 45),
				Style:    platform.TextFieldParagraph,
				Required: true,
			},
			{
				CustomID:    fieldLang,
				Label:       "Language: id / en",
				Placeholder: "id / en",
				Style:       platform.TextFieldShort,
				Required:    true,
				MinLength:   2,
				MaxLength:   2,
			},
		},
	})
}

// handleOpenTicket creates the ticket channel from a submitted form. The
// counter and histogram increments land before channel creation and are
// not rolled back if it fails; a wasted sequence number is acceptable, a
// reused one is not.
func (e *Engine) handleOpenTicket(ctx context.Context, ev *platform.Interaction) error {
	categoryValue := strings.TrimPrefix(ev.CustomID, ModalTicketPrefix)
	detail := ev.Fields[fieldDetail]
	lang := locale.ResolveLang(ev.Fields[fieldLang])
	text := locale.Table(lang)

	var (
		opt      domain.CategoryDefinition
		matched  bool
		sequence int
	)
	err := e.store.Update(ctx, func(doc *domain.Document) error {
		cfg := doc.Guild(ev.GuildID)
		opt, matched = cfg.FindOption(categoryValue)
		cfg.TicketCount++
		sequence = cfg.TicketCount
		doc.History[dateKey(time.Now())]++
		return nil
	})
	if err != nil {
		return err
	}

	// Config may have drifted between menu render and submission; an
	// unmatched key degrades to a support ticket under the raw key.
	moduleType := domain.CategorySupport
	if matched && opt.Type != "" {
		moduleType = opt.Type
	}

	padded := fmt.Sprintf("%03d", sequence)
	topic := EncodeTopic(moduleType, lang, ev.Member.ID)

	channel, err := e.client.CreateChannel(ctx, ev.GuildID, platform.ChannelCreate{
		Name:     fmt.Sprintf("%s-%s-%s", padded, lang, categoryValue),
		ParentID: e.parentCategoryID(ctx, ev.GuildID),
		Topic:    topic,
		Grants: []platform.PermissionGrant{
			{ID: ev.GuildID, Allow: false},
			{ID: ev.Member.ID, Allow: true},
			{ID: e.client.BotUserID(), Allow: true},
		},
	})
	if err != nil {
		// Creation failure aborts the transition; the ticket does not exist.
		return fmt.Errorf("create ticket channel: %w", err)
	}

	err = e.store.Update(ctx, func(doc *domain.Document) error {
		doc.Tickets[channel.ID] = &domain.TicketRecord{
			ChannelID:     channel.ID,
			GuildID:       ev.GuildID,
			Sequence:      sequence,
			CategoryValue: categoryValue,
			Type:          moduleType,
			Lang:          lang,
			CreatorID:     ev.Member.ID,
			Status:        domain.TicketStatusOpen,
			CreatedAt:     time.Now(),
		}
		return nil
	})
	if err != nil {
		e.logger.Error("failed to persist ticket record", zap.String("channel_id", channel.ID), zap.Error(err))
	}

	embedColor := colorIndigo
	footer := text.SupportWait
	switch moduleType {
	case domain.CategoryPurchase:
		embedColor = colorViolet
		footer = text.PayDesc
	case domain.CategoryGiveaway:
		embedColor = colorRose
		footer = text.GiveawayWait
	}

	label := "TICKET"
	if matched && opt.Label != "" {
		label = opt.Label
	}

	row := platform.ActionRow{Buttons: []platform.Button{
		{CustomID: ButtonClaim, Label: text.BtnClaim, Style: platform.ButtonSecondary, Emoji: "🙋‍♂️"},
		{CustomID: ButtonClose, Label: text.BtnClose, Style: platform.ButtonDanger},
	}}
	if moduleType == domain.CategoryPurchase {
		row.Buttons = append(row.Buttons,
			platform.Button{CustomID: ButtonPayIndo, Label: text.BtnIndo, Style: platform.ButtonSuccess, Emoji: "🇮🇩"},
			platform.Button{CustomID: ButtonPayGlobal, Label: text.BtnGlobal, Style: platform.ButtonPrimary, Emoji: "🌐"},
		)
	}

	content := mentionUser(ev.Member.ID)
	if e.cfg.StaffRoleID != "" {
		content += " | " + mentionRole(e.cfg.StaffRoleID)
	}

	sendErr := e.client.SendMessage(ctx, channel.ID, platform.Message{
		Content: content,
		Embeds: []platform.Embed{{
			Title: fmt.Sprintf("🎫 %s #%s", label, padded),
			Description: fmt.Sprintf("**%s:** %s\n**User:** %s\n**%s:**\n```%s```\n\n%s",
				text.Cat, strings.ToUpper(string(moduleType)), mentionUser(ev.Member.ID), text.Detail, detail, footer),
			Color:     embedColor,
			Timestamp: time.Now(),
		}},
		Components: []platform.ActionRow{row},
	})
	if sendErr != nil {
		// The channel exists, so the ticket is created; the missing intro
		// message is logged only.
		e.logger.Error("failed to send ticket intro", zap.String("channel_id", channel.ID), zap.Error(sendErr))
	}

	e.publish(ctx, events.Event{
		Type:      events.EventTicketOpened,
		GuildID:   ev.GuildID,
		ChannelID: channel.ID,
		Payload: events.TicketOpenedPayload{
			Sequence:      sequence,
			CategoryValue: categoryValue,
			Type:          moduleType,
			Lang:          lang,
			CreatorID:     ev.Member.ID,
		},
	})

	return ev.Responder.Reply(ctx, platform.Response{
		Content:   fmt.Sprintf("%s %s", text.Created, mentionChannel(channel.ID)),
		Ephemeral: true,
	})
}

// handleClaim records the first claim on a ticket. The claimer is written
// once; racing claims lose inside the store's single-writer update.
func (e *Engine) handleClaim(ctx context.Context, ev *platform.Interaction) error {
	if e.cfg.StaffRoleID == "" || !ev.Member.HasRole(e.cfg.StaffRoleID) {
		return ErrNotStaff
	}

	claimerID := ev.Member.ID
	err := e.store.Update(ctx, func(doc *domain.Document) error {
		rec, ok := doc.Tickets[ev.ChannelID]
		if !ok {
			// Channel predates ticket records; the topic is all we have.
			if TopicClaimed(ev.ChannelTopic) {
				return ErrAlreadyClaimed
			}
			return nil
		}
		if rec.Claimed() {
			return ErrAlreadyClaimed
		}
		rec.ClaimerID = &claimerID
		if domain.CanTransition(rec.Status, domain.TicketStatusClaimed) {
			rec.Status = domain.TicketStatusClaimed
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := e.client.SetChannelTopic(ctx, ev.ChannelID, AppendClaim(ev.ChannelTopic, claimerID)); err != nil {
		e.logger.Error("failed to update channel topic", zap.String("channel_id", ev.ChannelID), zap.Error(err))
	}

	// Re-render the action row with the claim button disabled; every other
	// button stays untouched.
	rows := make([]platform.ActionRow, len(ev.Components))
	for i, src := range ev.Components {
		row := platform.ActionRow{Select: src.Select}
		for _, btn := range src.Buttons {
			if btn.CustomID == ButtonClaim {
				btn.Disabled = true
				btn.Label = "Claimed by " + ev.Member.Username
			}
			row.Buttons = append(row.Buttons, btn)
		}
		rows[i] = row
	}
	if err := ev.Responder.UpdateComponents(ctx, rows); err != nil {
		e.logger.Error("failed to update claim button", zap.String("channel_id", ev.ChannelID), zap.Error(err))
	}

	info := ParseTopic(ev.ChannelTopic)
	text := locale.Table(info.Lang)
	if err := e.client.SendMessage(ctx, ev.ChannelID, platform.Message{
		Embeds: []platform.Embed{{
			Description: fmt.Sprintf("✅ %s %s", text.ClaimedBy, mentionUser(claimerID)),
			Color:       colorGreen,
		}},
	}); err != nil {
		e.logger.Error("failed to send claim notice", zap.String("channel_id", ev.ChannelID), zap.Error(err))
	}

	e.publish(ctx, events.Event{
		Type:      events.EventTicketClaimed,
		GuildID:   ev.GuildID,
		ChannelID: ev.ChannelID,
		Payload:   events.TicketClaimedPayload{ClaimerID: claimerID},
	})
	return nil
}

// handleCloseRequest collects the mandatory closing reason. Nothing is
// mutated until the form comes back.
func (e *Engine) handleCloseRequest(ctx context.Context, ev *platform.Interaction) error {
	if !ev.Member.CanManage {
		return ErrNoManagePermission
	}
	info := ParseTopic(ev.ChannelTopic)
	text := locale.Table(info.Lang)
	return ev.Responder.ShowModal(ctx, platform.Modal{
		CustomID: ModalConfirmClose,
		Title:    text.CloseReason,
		Fields: []platform.TextField{{
			CustomID: fieldCloseReason,
			Label:    text.CloseReason,
			Style:    platform.TextFieldShort,
			Required: true,
		}},
	})
}

// handleConfirmClose runs the closing sequence: point credit, transcript,
// archive summary, final notice, deferred deletion. After the initial
// acknowledgment, failures surface as a best-effort follow-up and nothing
// already done is rolled back.
func (e *Engine) handleConfirmClose(ctx context.Context, ev *platform.Interaction) error {
	reason := ev.Fields[fieldCloseReason]
	info := ParseTopic(ev.ChannelTopic)
	lang := info.Lang
	if lang == "" {
		lang = locale.DefaultLang
	}
	text := locale.Table(lang)

	var rec *domain.TicketRecord
	_ = e.store.View(ctx, func(doc *domain.Document) {
		if r, ok := doc.Tickets[ev.ChannelID]; ok {
			clone := *r
			rec = &clone
		}
	})

	// No record and no ticket tags in the topic: whatever channel this
	// form came from is not (or no longer) a ticket.
	if rec == nil && info.Type == "" && info.CreatorID == "" {
		return ErrTicketGone
	}

	claimerID := info.ClaimerID
	if rec.Claimed() {
		claimerID = *rec.ClaimerID
	}

	// Acknowledge before the slow work so the interaction cannot time out.
	if err := ev.Responder.Reply(ctx, platform.Response{Content: text.Preparing, Ephemeral: true}); err != nil {
		e.logger.Warn("failed to ack close", zap.String("channel_id", ev.ChannelID), zap.Error(err))
	}

	// Point credit goes to the claimer, never the closer. An unclaimed
	// ticket credits no one.
	totalPoints := 0
	if claimerID != "" {
		name := e.resolveUsername(ctx, claimerID)
		err := e.store.Update(ctx, func(doc *domain.Document) error {
			stat, ok := doc.StaffStats[claimerID]
			if !ok {
				stat = &domain.StaffStat{Name: name}
				doc.StaffStats[claimerID] = stat
			}
			stat.Points++
			totalPoints = stat.Points
			return nil
		})
		if err != nil {
			return fmt.Errorf("credit staff point: %w", err)
		}
	}

	err := e.store.Update(ctx, func(doc *domain.Document) error {
		if r, ok := doc.Tickets[ev.ChannelID]; ok && domain.CanTransition(r.Status, domain.TicketStatusClosing) {
			r.Status = domain.TicketStatusClosing
		}
		return nil
	})
	if err != nil {
		e.logger.Warn("failed to mark ticket closing", zap.String("channel_id", ev.ChannelID), zap.Error(err))
	}

	file, err := e.transcripts.Generate(ctx, &platform.Channel{
		ID:      ev.ChannelID,
		GuildID: ev.GuildID,
		Name:    ev.ChannelName,
		Topic:   ev.ChannelTopic,
	})
	if err != nil {
		return fmt.Errorf("generate transcript: %w", err)
	}

	e.sendArchiveSummary(ctx, ev, rec, info, claimerID, totalPoints, reason, file)

	// Final notice in the ticket channel, then the deferred delete. A late
	// interaction during the delay proceeds against a doomed channel.
	if err := e.client.SendMessage(ctx, ev.ChannelID, platform.Message{Content: "✅ " + text.Deleting}); err != nil {
		e.logger.Warn("failed to send deletion notice", zap.String("channel_id", ev.ChannelID), zap.Error(err))
	}
	e.deleter.Schedule(ev.ChannelID)

	e.publish(ctx, events.Event{
		Type:      events.EventTicketClosed,
		GuildID:   ev.GuildID,
		ChannelID: ev.ChannelID,
		Payload: events.TicketClosedPayload{
			ClaimerID: claimerID,
			CloserID:  ev.Member.ID,
			Reason:    reason,
			Points:    totalPoints,
		},
	})
	return nil
}

// sendArchiveSummary posts the closing summary plus transcript to the
// archive channel, resolved against the current configuration by matching
// the ticket's type against option values. Only categories whose value
// equals their type resolve a target; everything else skips silently, as
// does a missing or unreachable archive channel.
func (e *Engine) sendArchiveSummary(ctx context.Context, ev *platform.Interaction, rec *domain.TicketRecord, info TopicInfo, claimerID string, totalPoints int, reason string, file *platform.File) {
	ticketType := info.Type
	if rec != nil {
		ticketType = string(rec.Type)
	}

	var archiveID string
	_ = e.store.View(ctx, func(doc *domain.Document) {
		cfg, ok := doc.Guilds[ev.GuildID]
		if !ok {
			return
		}
		if opt, ok := cfg.FindOption(ticketType); ok {
			archiveID = opt.ArchiveChannelID
		}
	})
	if archiveID == "" {
		return
	}
	if _, err := e.client.Channel(ctx, archiveID); err != nil {
		e.logger.Debug("archive channel unavailable", zap.String("channel_id", archiveID), zap.Error(err))
		return
	}

	claimerField := unclaimedMarker
	summaryColor := colorRed
	if claimerID != "" {
		claimerField = mentionUser(claimerID)
		summaryColor = colorGreen
	}

	msg := platform.Message{
		Embeds: []platform.Embed{{
			Title: "📝 Ticket Transcript",
			Fields: []platform.EmbedField{
				{Name: "Category", Value: fmt.Sprintf("`%s`", ticketType), Inline: true},
				{Name: "Staff (Claimer)", Value: claimerField, Inline: true},
				{Name: "Closed By", Value: mentionUser(ev.Member.ID), Inline: true},
				{Name: "Total Points Staff", Value: fmt.Sprintf("`%d`", totalPoints), Inline: true},
				{Name: "Reason", Value: fmt.Sprintf("```%s```", reason)},
			},
			Color:     summaryColor,
			Timestamp: time.Now(),
		}},
	}
	if file != nil {
		msg.Files = []platform.File{*file}
	}
	if err := e.client.SendMessage(ctx, archiveID, msg); err != nil {
		e.logger.Error("failed to send archive summary", zap.String("channel_id", archiveID), zap.Error(err))
	}
}

func (e *Engine) handlePayIndo(ctx context.Context, ev *platform.Interaction) error {
	info := ParseTopic(ev.ChannelTopic)
	text := locale.Table(info.Lang)
	if err := ev.Responder.Reply(ctx, platform.Response{Content: text.QrisMsg, Ephemeral: true}); err != nil {
		return err
	}
	if e.cfg.QRISImagePath == "" {
		return nil
	}
	data, err := os.ReadFile(e.cfg.QRISImagePath)
	if err != nil {
		return nil
	}
	if err := e.client.SendMessage(ctx, ev.ChannelID, platform.Message{
		Files: []platform.File{{Name: "qris.png", ContentType: "image/png", Data: data}},
	}); err != nil {
		e.logger.Error("failed to send qris image", zap.String("channel_id", ev.ChannelID), zap.Error(err))
	}
	return nil
}

func (e *Engine) handlePayGlobal(ctx context.Context, ev *platform.Interaction) error {
	info := ParseTopic(ev.ChannelTopic)
	text := locale.Table(info.Lang)
	return ev.Responder.Reply(ctx, platform.Response{Content: text.GlobalMsg, Ephemeral: true})
}

// reportError maps typed rejections to localized ephemeral notices and
// anything else to a generic failure message.
func (e *Engine) reportError(ctx context.Context, ev *platform.Interaction, err error) {
	info := ParseTopic(ev.ChannelTopic)
	text := locale.Table(info.Lang)

	var content string
	switch {
	case errors.Is(err, ErrNotStaff):
		content = text.OnlyStaff
	case errors.Is(err, ErrAlreadyClaimed):
		content = text.AlreadyDone
	case errors.Is(err, ErrNoManagePermission):
		content = text.NoPermission
	case errors.Is(err, ErrTicketGone):
		content = text.CloseFailed
	default:
		e.logger.Error("interaction failed", zap.String("custom_id", ev.CustomID), zap.Error(err))
		content = text.CloseFailed
	}

	if replyErr := ev.Responder.Reply(ctx, platform.Response{Content: content, Ephemeral: true}); replyErr != nil {
		_ = ev.Responder.FollowUp(ctx, platform.Response{Content: content, Ephemeral: true})
	}
}

func (e *Engine) notifyFailure(ctx context.Context, ev *platform.Interaction) {
	info := ParseTopic(ev.ChannelTopic)
	text := locale.Table(info.Lang)
	if err := ev.Responder.Reply(ctx, platform.Response{Content: text.CloseFailed, Ephemeral: true}); err != nil {
		_ = ev.Responder.FollowUp(ctx, platform.Response{Content: text.CloseFailed, Ephemeral: true})
	}
}

// resolveUsername looks the user up for a first-credit display name,
// tolerating failure with a placeholder.
func (e *Engine) resolveUsername(ctx context.Context, userID string) string {
	user, err := e.client.User(ctx, userID)
	if err != nil || user == nil || user.Username == "" {
		return "Unknown Staff"
	}
	return user.Username
}

func (e *Engine) parentCategoryID(ctx context.Context, guildID string) string {
	var parentID string
	_ = e.store.View(ctx, func(doc *domain.Document) {
		if cfg, ok := doc.Guilds[guildID]; ok {
			parentID = cfg.CategoryID
		}
	})
	return parentID
}

func (e *Engine) publish(ctx context.Context, event events.Event) {
	if e.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = e.dispatcher.Publish(ctx, event)
}

// dateKey is the histogram key for a calendar date, process-wide clock.
func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// truncate cuts on runes, not bytes; labels must stay valid UTF-8.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func mentionUser(id string) string    { return "<@" + id + ">" }
func mentionRole(id string) string    { return "<@&" + id + ">" }
func mentionChannel(id string) string { return "<#" + id + ">" }
