package ticket

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/config"
	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/locale"
	"github.com/spec-kit/ticket-bot/internal/platform"
	"github.com/spec-kit/ticket-bot/internal/platform/platformtest"
	"github.com/spec-kit/ticket-bot/internal/store"
	"github.com/spec-kit/ticket-bot/internal/worker"
)

const (
	testGuild     = "g1"
	testStaffRole = "role-staff"
)

type fakeTranscripts struct {
	file *platform.File
	err  error
}

func (f *fakeTranscripts) Generate(ctx context.Context, channel *platform.Channel) (*platform.File, error) {
	return f.file, f.err
}

type fixture struct {
	engine *Engine
	client *platformtest.FakeClient
	store  *store.Store
	delete *worker.Deleter
	events []events.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st := store.New(store.NewFileBackend(filepath.Join(t.TempDir(), "database.json")), zap.NewNop())
	client := platformtest.NewFakeClient()
	deleter := worker.NewDeleter(client, st, time.Hour, zap.NewNop())
	t.Cleanup(deleter.Stop)

	f := &fixture{client: client, store: st, delete: deleter}

	dispatcher := events.NewInMemoryDispatcher()
	record := func(ctx context.Context, ev events.Event) error {
		f.events = append(f.events, ev)
		return nil
	}
	dispatcher.Subscribe(events.EventTicketOpened, record)
	dispatcher.Subscribe(events.EventTicketClaimed, record)
	dispatcher.Subscribe(events.EventTicketClosed, record)

	f.engine = NewEngine(Dependencies{
		Store:       st,
		Client:      client,
		Transcripts: &fakeTranscripts{file: &platform.File{Name: "transcript.html", ContentType: "text/html", Data: []byte("<html></html>")}},
		Deleter:     deleter,
		Dispatcher:  dispatcher,
		Config:      config.DiscordConfig{StaffRoleID: testStaffRole},
		Logger:      zap.NewNop(),
	})

	require.NoError(t, st.Update(context.Background(), func(doc *domain.Document) error {
		doc.Guilds[testGuild] = &domain.TenantConfig{
			ChannelID:  "panel-chan",
			CategoryID: "cat-1",
			Options: []domain.CategoryDefinition{
				{Value: "billing", Label: "Billing Help", Question: "Apa yang ingin dibeli?", Type: domain.CategoryPurchase},
				{Value: "general", Label: "General", Question: "Ada yang bisa dibantu?", Type: domain.CategorySupport},
				{Value: "purchase", Label: "Purchase", Question: "Apa yang ingin dibeli?", Type: domain.CategoryPurchase, ArchiveChannelID: "arch-1"},
			},
		}
		return nil
	}))
	client.Channels["arch-1"] = &platform.Channel{ID: "arch-1", GuildID: testGuild, Name: "archive"}
	return f
}

func (f *fixture) openTicket(t *testing.T, userID, category, lang string) (*platform.Channel, *platformtest.FakeResponder) {
	t.Helper()
	responder := &platformtest.FakeResponder{}
	f.engine.HandleInteraction(context.Background(), &platform.Interaction{
		Kind:      platform.KindModalSubmit,
		CustomID:  ModalTicketPrefix + category,
		Fields:    map[string]string{"input_detail": "need help", "input_lang": lang},
		GuildID:   testGuild,
		Member:    platform.Member{ID: userID, Username: "creator"},
		Responder: responder,
	})
	require.NotEmpty(t, f.client.Created, "expected a channel to be created")
	id := ""
	for chanID, ch := range f.client.Channels {
		if ch.Name == f.client.Created[len(f.client.Created)-1].Name {
			id = chanID
		}
	}
	require.NotEmpty(t, id)
	return f.client.Channels[id], responder
}

func TestCategorySelectShowsForm(t *testing.T) {
	f := newFixture(t)
	responder := &platformtest.FakeResponder{}

	f.engine.HandleInteraction(context.Background(), &platform.Interaction{
		Kind:      platform.KindSelectMenu,
		CustomID:  SelectCustomID,
		Values:    []string{"billing"},
		GuildID:   testGuild,
		Member:    platform.Member{ID: "u1"},
		Responder: responder,
	})

	require.Len(t, responder.Modals, 1)
	modal := responder.Modals[0]
	assert.Equal(t, ModalTicketPrefix+"billing", modal.CustomID)
	assert.Equal(t, "Formulir Billing Help", modal.Title)
	require.Len(t, modal.Fields, 2)
	assert.Equal(t, "Apa yang ingin dibeli?", modal.Fields[0].Label)
	assert.Equal(t, platform.TextFieldParagraph, modal.Fields[0].Style)
	assert.Equal(t, 2, modal.Fields[1].MaxLength)

	// No counter moves until the form comes back.
	_ = f.store.View(context.Background(), func(doc *domain.Document) {
		assert.Equal(t, 0, doc.Guild(testGuild).TicketCount)
	})
}

func TestOpenPurchaseTicket(t *testing.T) {
	f := newFixture(t)
	channel, responder := f.openTicket(t, "u1", "billing", "EN")

	assert.Equal(t, "001-en-billing", channel.Name)
	assert.Equal(t, "Type: purchase | Lang: en | User: u1", channel.Topic)

	created := f.client.Created[0]
	assert.Equal(t, "cat-1", created.ParentID)
	require.Len(t, created.Grants, 3)
	assert.Equal(t, platform.PermissionGrant{ID: testGuild, Allow: false}, created.Grants[0])
	assert.Equal(t, platform.PermissionGrant{ID: "u1", Allow: true}, created.Grants[1])
	assert.Equal(t, platform.PermissionGrant{ID: "bot-1", Allow: true}, created.Grants[2])

	intro := f.client.MessagesTo(channel.ID)
	require.Len(t, intro, 1)
	require.Len(t, intro[0].Embeds, 1)
	assert.Equal(t, 0xA050FF, intro[0].Embeds[0].Color)
	assert.Contains(t, intro[0].Embeds[0].Title, "#001")
	require.Len(t, intro[0].Components, 1)
	// Purchase tickets get claim, close and both payment buttons.
	require.Len(t, intro[0].Components[0].Buttons, 4)
	assert.Equal(t, ButtonClaim, intro[0].Components[0].Buttons[0].CustomID)
	assert.Equal(t, ButtonClose, intro[0].Components[0].Buttons[1].CustomID)
	assert.Equal(t, ButtonPayIndo, intro[0].Components[0].Buttons[2].CustomID)
	assert.Equal(t, ButtonPayGlobal, intro[0].Components[0].Buttons[3].CustomID)

	reply := responder.LastReply()
	require.NotNil(t, reply)
	assert.True(t, reply.Ephemeral)
	assert.Contains(t, reply.Content, "<#"+channel.ID+">")

	_ = f.store.View(context.Background(), func(doc *domain.Document) {
		assert.Equal(t, 1, doc.Guild(testGuild).TicketCount)
		rec := doc.Tickets[channel.ID]
		require.NotNil(t, rec)
		assert.Equal(t, domain.TicketStatusOpen, rec.Status)
		assert.Equal(t, domain.CategoryPurchase, rec.Type)
		assert.Equal(t, "billing", rec.CategoryValue)
		assert.Equal(t, "u1", rec.CreatorID)
		assert.False(t, rec.Claimed())
	})

	require.Len(t, f.events, 1)
	assert.Equal(t, events.EventTicketOpened, f.events[0].Type)
}

func TestOpenSupportTicketDefaultsLang(t *testing.T) {
	f := newFixture(t)
	channel, _ := f.openTicket(t, "u2", "general", "english")

	// Anything but "en" falls back to Indonesian.
	assert.Equal(t, "001-id-general", channel.Name)
	assert.Equal(t, "Type: support | Lang: id | User: u2", channel.Topic)

	intro := f.client.MessagesTo(channel.ID)
	require.Len(t, intro, 1)
	assert.Equal(t, 0x6366F1, intro[0].Embeds[0].Color)
	// No payment buttons on a support ticket.
	assert.Len(t, intro[0].Components[0].Buttons, 2)
}

func TestSequenceNumbersIncrease(t *testing.T) {
	f := newFixture(t)
	first, _ := f.openTicket(t, "u1", "general", "id")
	second, _ := f.openTicket(t, "u2", "general", "id")

	assert.Equal(t, "001-id-general", first.Name)
	assert.Equal(t, "002-id-general", second.Name)
}

func TestOpenTicketCounterSurvivesChannelFailure(t *testing.T) {
	f := newFixture(t)
	f.client.CreateErr = errors.New("upstream down")
	responder := &platformtest.FakeResponder{}

	f.engine.HandleInteraction(context.Background(), &platform.Interaction{
		Kind:      platform.KindModalSubmit,
		CustomID:  ModalTicketPrefix + "general",
		Fields:    map[string]string{"input_detail": "x", "input_lang": "id"},
		GuildID:   testGuild,
		Member:    platform.Member{ID: "u1"},
		Responder: responder,
	})

	// The sequence number is spent even though no channel exists; the next
	// ticket must not reuse it.
	_ = f.store.View(context.Background(), func(doc *domain.Document) {
		assert.Equal(t, 1, doc.Guild(testGuild).TicketCount)
		assert.Empty(t, doc.Tickets)
	})

	reply := responder.LastReply()
	require.NotNil(t, reply)
	assert.Equal(t, locale.Table("id").CloseFailed, reply.Content)

	f.client.CreateErr = nil
	channel, _ := f.openTicket(t, "u1", "general", "id")
	assert.Equal(t, "002-id-general", channel.Name)
}

func TestUnknownCategoryDegradesToSupport(t *testing.T) {
	f := newFixture(t)
	channel, _ := f.openTicket(t, "u1", "stale-key", "id")

	assert.Equal(t, "001-id-stale-key", channel.Name)
	assert.Equal(t, "Type: support | Lang: id | User: u1", channel.Topic)
}

func claimInteraction(channel *platform.Channel, member platform.Member, responder *platformtest.FakeResponder) *platform.Interaction {
	return &platform.Interaction{
		Kind:         platform.KindButton,
		CustomID:     ButtonClaim,
		GuildID:      testGuild,
		ChannelID:    channel.ID,
		ChannelName:  channel.Name,
		ChannelTopic: channel.Topic,
		Member:       member,
		Components: []platform.ActionRow{{Buttons: []platform.Button{
			{CustomID: ButtonClaim, Label: "Claim Ticket"},
			{CustomID: ButtonClose, Label: "Tutup Ticket"},
		}}},
		Responder: responder,
	}
}

func TestClaimByStaff(t *testing.T) {
	f := newFixture(t)
	channel, _ := f.openTicket(t, "u1", "billing", "id")
	responder := &platformtest.FakeResponder{}
	staff := platform.Member{ID: "s1", Username: "helper", Roles: []string{testStaffRole}}

	f.engine.HandleInteraction(context.Background(), claimInteraction(channel, staff, responder))

	assert.Empty(t, responder.Replies, "claim must not produce an error reply")
	assert.Equal(t, "Type: purchase | Lang: id | User: u1 | Claimed By: s1", f.client.Topics[channel.ID])

	require.Len(t, responder.Updates, 1)
	buttons := responder.Updates[0][0].Buttons
	require.Len(t, buttons, 2)
	assert.True(t, buttons[0].Disabled)
	assert.Equal(t, "Claimed by helper", buttons[0].Label)
	assert.False(t, buttons[1].Disabled)

	_ = f.store.View(context.Background(), func(doc *domain.Document) {
		rec := doc.Tickets[channel.ID]
		require.True(t, rec.Claimed())
		assert.Equal(t, "s1", *rec.ClaimerID)
		assert.Equal(t, domain.TicketStatusClaimed, rec.Status)
	})

	notices := f.client.MessagesTo(channel.ID)
	last := notices[len(notices)-1]
	require.Len(t, last.Embeds, 1)
	assert.Equal(t, 0x22C55E, last.Embeds[0].Color)
	assert.Contains(t, last.Embeds[0].Description, "<@s1>")
}

func TestClaimByNonStaffRejected(t *testing.T) {
	f := newFixture(t)
	channel, _ := f.openTicket(t, "u1", "billing", "id")
	responder := &platformtest.FakeResponder{}

	f.engine.HandleInteraction(context.Background(), claimInteraction(channel, platform.Member{ID: "u1", Username: "creator"}, responder))

	reply := responder.LastReply()
	require.NotNil(t, reply)
	assert.True(t, reply.Ephemeral)
	assert.Equal(t, locale.Table("id").OnlyStaff, reply.Content)

	_ = f.store.View(context.Background(), func(doc *domain.Document) {
		assert.False(t, doc.Tickets[channel.ID].Claimed())
	})
}

func TestSecondClaimRejected(t *testing.T) {
	f := newFixture(t)
	channel, _ := f.openTicket(t, "u1", "billing", "id")
	first := platform.Member{ID: "s1", Username: "helper", Roles: []string{testStaffRole}}
	second := platform.Member{ID: "s2", Username: "rival", Roles: []string{testStaffRole}}

	f.engine.HandleInteraction(context.Background(), claimInteraction(channel, first, &platformtest.FakeResponder{}))

	responder := &platformtest.FakeResponder{}
	f.engine.HandleInteraction(context.Background(), claimInteraction(channel, second, responder))

	reply := responder.LastReply()
	require.NotNil(t, reply)
	assert.Equal(t, locale.Table("id").AlreadyDone, reply.Content)

	// The first claimer is untouched.
	_ = f.store.View(context.Background(), func(doc *domain.Document) {
		assert.Equal(t, "s1", *doc.Tickets[channel.ID].ClaimerID)
	})
}

func TestClaimWithoutRecordFallsBackToTopic(t *testing.T) {
	f := newFixture(t)
	// A channel from before ticket records: topic only, already claimed.
	channel := &platform.Channel{
		ID:    "legacy-1",
		Name:  "004-id-general",
		Topic: "Type: support | Lang: id | User: u1 | Claimed By: s9",
	}
	f.client.Channels[channel.ID] = channel
	responder := &platformtest.FakeResponder{}
	staff := platform.Member{ID: "s1", Username: "helper", Roles: []string{testStaffRole}}

	f.engine.HandleInteraction(context.Background(), claimInteraction(channel, staff, responder))

	reply := responder.LastReply()
	require.NotNil(t, reply)
	assert.Equal(t, locale.Table("id").AlreadyDone, reply.Content)
}

func TestCloseRequestRequiresManagePermission(t *testing.T) {
	f := newFixture(t)
	channel, _ := f.openTicket(t, "u1", "billing", "id")
	responder := &platformtest.FakeResponder{}

	f.engine.HandleInteraction(context.Background(), &platform.Interaction{
		Kind:         platform.KindButton,
		CustomID:     ButtonClose,
		GuildID:      testGuild,
		ChannelID:    channel.ID,
		ChannelTopic: channel.Topic,
		Member:       platform.Member{ID: "u1"},
		Responder:    responder,
	})

	reply := responder.LastReply()
	require.NotNil(t, reply)
	assert.Equal(t, locale.Table("id").NoPermission, reply.Content)
	assert.Empty(t, responder.Modals)
}

func TestCloseRequestShowsReasonForm(t *testing.T) {
	f := newFixture(t)
	channel, _ := f.openTicket(t, "u1", "billing", "id")
	responder := &platformtest.FakeResponder{}

	f.engine.HandleInteraction(context.Background(), &platform.Interaction{
		Kind:         platform.KindButton,
		CustomID:     ButtonClose,
		GuildID:      testGuild,
		ChannelID:    channel.ID,
		ChannelTopic: channel.Topic,
		Member:       platform.Member{ID: "s1", CanManage: true},
		Responder:    responder,
	})

	require.Len(t, responder.Modals, 1)
	assert.Equal(t, ModalConfirmClose, responder.Modals[0].CustomID)
	require.Len(t, responder.Modals[0].Fields, 1)
	assert.Equal(t, "close_reason", responder.Modals[0].Fields[0].CustomID)
}

func confirmClose(f *fixture, channel *platform.Channel, closer platform.Member, reason string) *platformtest.FakeResponder {
	responder := &platformtest.FakeResponder{}
	f.engine.HandleInteraction(context.Background(), &platform.Interaction{
		Kind:         platform.KindModalSubmit,
		CustomID:     ModalConfirmClose,
		Fields:       map[string]string{"close_reason": reason},
		GuildID:      testGuild,
		ChannelID:    channel.ID,
		ChannelName:  channel.Name,
		ChannelTopic: f.client.Topics[channel.ID],
		Member:       closer,
		Responder:    responder,
	})
	return responder
}

func TestConfirmCloseCreditsClaimer(t *testing.T) {
	f := newFixture(t)
	f.client.Users["s1"] = &platform.User{ID: "s1", Username: "helper"}
	channel, _ := f.openTicket(t, "u1", "billing", "id")
	staff := platform.Member{ID: "s1", Username: "helper", Roles: []string{testStaffRole}}
	f.engine.HandleInteraction(context.Background(), claimInteraction(channel, staff, &platformtest.FakeResponder{}))

	closer := platform.Member{ID: "s2", Username: "boss", CanManage: true}
	responder := confirmClose(f, channel, closer, "resolved")

	reply := responder.LastReply()
	require.NotNil(t, reply)
	assert.Equal(t, locale.Table("id").Preparing, reply.Content)

	// The point lands on the claimer even though someone else closed.
	_ = f.store.View(context.Background(), func(doc *domain.Document) {
		require.Contains(t, doc.StaffStats, "s1")
		assert.Equal(t, 1, doc.StaffStats["s1"].Points)
		assert.Equal(t, "helper", doc.StaffStats["s1"].Name)
		assert.NotContains(t, doc.StaffStats, "s2")
		assert.Equal(t, domain.TicketStatusClosing, doc.Tickets[channel.ID].Status)
	})

	archive := f.client.MessagesTo("arch-1")
	require.Len(t, archive, 1)
	require.Len(t, archive[0].Embeds, 1)
	summary := archive[0].Embeds[0]
	assert.Equal(t, 0x22C55E, summary.Color)
	require.Len(t, summary.Fields, 5)
	assert.Equal(t, "<@s1>", summary.Fields[1].Value)
	assert.Equal(t, "<@s2>", summary.Fields[2].Value)
	assert.Equal(t, "`1`", summary.Fields[3].Value)
	assert.Contains(t, summary.Fields[4].Value, "resolved")
	require.Len(t, archive[0].Files, 1)
	assert.Equal(t, "transcript.html", archive[0].Files[0].Name)

	// Deletion is deferred, not immediate.
	assert.Empty(t, f.client.Deleted)
	assert.True(t, f.delete.Cancel(channel.ID), "a deletion timer should be armed")
}

func TestConfirmCloseUnclaimedCreditsNoOne(t *testing.T) {
	f := newFixture(t)
	channel, _ := f.openTicket(t, "u1", "billing", "id")

	closer := platform.Member{ID: "s2", Username: "boss", CanManage: true}
	confirmClose(f, channel, closer, "abandoned")

	_ = f.store.View(context.Background(), func(doc *domain.Document) {
		assert.Empty(t, doc.StaffStats)
	})

	archive := f.client.MessagesTo("arch-1")
	require.Len(t, archive, 1)
	summary := archive[0].Embeds[0]
	assert.Equal(t, 0xFF4747, summary.Color)
	assert.Equal(t, "⚠️ *Tidak diklaim*", summary.Fields[1].Value)
	assert.Equal(t, "`0`", summary.Fields[3].Value)
}

func TestConfirmCloseWithoutArchiveSkipsSummary(t *testing.T) {
	f := newFixture(t)
	// The general category has no archive channel configured.
	channel, _ := f.openTicket(t, "u1", "general", "id")

	closer := platform.Member{ID: "s2", CanManage: true}
	confirmClose(f, channel, closer, "done")

	assert.Empty(t, f.client.MessagesTo("arch-1"))
	// The deletion notice still lands in the ticket channel.
	notices := f.client.MessagesTo(channel.ID)
	last := notices[len(notices)-1]
	assert.Contains(t, last.Content, locale.Table("id").Deleting)
}

func TestArchiveResolvedByTypeNotCategoryValue(t *testing.T) {
	f := newFixture(t)
	// The archive id sits on a category whose value differs from its type.
	// Resolution matches option values against the ticket's type, so with
	// no option valued "purchase" the summary has nowhere to go.
	require.NoError(t, f.store.Update(context.Background(), func(doc *domain.Document) error {
		doc.Guild(testGuild).Options = []domain.CategoryDefinition{
			{Value: "billing", Label: "Billing Help", Type: domain.CategoryPurchase, ArchiveChannelID: "arch-1"},
		}
		return nil
	}))
	channel, _ := f.openTicket(t, "u1", "billing", "id")

	confirmClose(f, channel, platform.Member{ID: "s2", CanManage: true}, "done")

	assert.Empty(t, f.client.MessagesTo("arch-1"))
	// The rest of the closing sequence is unaffected.
	notices := f.client.MessagesTo(channel.ID)
	assert.Contains(t, notices[len(notices)-1].Content, locale.Table("id").Deleting)
	assert.True(t, f.delete.Cancel(channel.ID))
}

func TestConfirmCloseOnNonTicketChannelRejected(t *testing.T) {
	f := newFixture(t)
	responder := &platformtest.FakeResponder{}

	f.engine.HandleInteraction(context.Background(), &platform.Interaction{
		Kind:         platform.KindModalSubmit,
		CustomID:     ModalConfirmClose,
		Fields:       map[string]string{"close_reason": "oops"},
		GuildID:      testGuild,
		ChannelID:    "random-1",
		ChannelTopic: "general chatter",
		Member:       platform.Member{ID: "s2", CanManage: true},
		Responder:    responder,
	})

	reply := responder.LastReply()
	require.NotNil(t, reply)
	assert.Equal(t, locale.Table("id").CloseFailed, reply.Content)
	assert.Empty(t, f.client.Sent)
	assert.False(t, f.delete.Cancel("random-1"), "no deletion timer may be armed")
}

func TestCategorySelectTruncatesQuestionOnRunes(t *testing.T) {
	f := newFixture(t)
	question := strings.Repeat("é", 60)
	require.NoError(t, f.store.Update(context.Background(), func(doc *domain.Document) error {
		doc.Guild(testGuild).Options = []domain.CategoryDefinition{
			{Value: "general", Label: "General", Question: question, Type: domain.CategorySupport},
		}
		return nil
	}))
	responder := &platformtest.FakeResponder{}

	f.engine.HandleInteraction(context.Background(), &platform.Interaction{
		Kind:      platform.KindSelectMenu,
		CustomID:  SelectCustomID,
		Values:    []string{"general"},
		GuildID:   testGuild,
		Member:    platform.Member{ID: "u1"},
		Responder: responder,
	})

	require.Len(t, responder.Modals, 1)
	label := responder.Modals[0].Fields[0].Label
	assert.True(t, utf8.ValidString(label))
	assert.Equal(t, 45, utf8.RuneCountInString(label))
	assert.Equal(t, strings.Repeat("é", 45), label)
}

func TestPayGlobalButton(t *testing.T) {
	f := newFixture(t)
	channel, _ := f.openTicket(t, "u1", "billing", "en")
	responder := &platformtest.FakeResponder{}

	f.engine.HandleInteraction(context.Background(), &platform.Interaction{
		Kind:         platform.KindButton,
		CustomID:     ButtonPayGlobal,
		ChannelID:    channel.ID,
		ChannelTopic: channel.Topic,
		Member:       platform.Member{ID: "u1"},
		Responder:    responder,
	})

	reply := responder.LastReply()
	require.NotNil(t, reply)
	assert.True(t, reply.Ephemeral)
	assert.Equal(t, locale.Table("en").GlobalMsg, reply.Content)
}

func TestUnknownInteractionIgnored(t *testing.T) {
	f := newFixture(t)
	responder := &platformtest.FakeResponder{}

	f.engine.HandleInteraction(context.Background(), &platform.Interaction{
		Kind:      platform.KindButton,
		CustomID:  "something_else",
		Member:    platform.Member{ID: "u1"},
		Responder: responder,
	})

	assert.Empty(t, responder.Replies)
	assert.Empty(t, responder.Modals)
}
