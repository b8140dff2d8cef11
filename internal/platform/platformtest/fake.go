// Package platformtest provides in-memory fakes of the platform
// interfaces for unit tests.
package platformtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/spec-kit/ticket-bot/internal/platform"
)

// SentMessage records one SendMessage call.
type SentMessage struct {
	ChannelID string
	Message   platform.Message
}

// FakeClient is an in-memory platform.Client. Zero value is usable; errors
// can be injected per method.
type FakeClient struct {
	mu sync.Mutex

	BotID     string
	Channels  map[string]*platform.Channel
	Users     map[string]*platform.User
	History   map[string][]platform.Message
	RoleGrant map[string]bool // "guildID/userID/roleID" -> held

	Created  []platform.ChannelCreate
	Sent     []SentMessage
	Topics   map[string]string
	Deleted  []string
	nextChan int

	CreateErr error
	SendErr   error
	DeleteErr error
}

// NewFakeClient builds a fake with empty state.
func NewFakeClient() *FakeClient {
	return &FakeClient{
		BotID:     "bot-1",
		Channels:  make(map[string]*platform.Channel),
		Users:     make(map[string]*platform.User),
		History:   make(map[string][]platform.Message),
		RoleGrant: make(map[string]bool),
		Topics:    make(map[string]string),
	}
}

// GrantRole marks a member as holding a role for MemberHasRole checks.
func (f *FakeClient) GrantRole(guildID, userID, roleID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RoleGrant[guildID+"/"+userID+"/"+roleID] = true
}

func (f *FakeClient) CreateChannel(ctx context.Context, guildID string, params platform.ChannelCreate) (*platform.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	f.Created = append(f.Created, params)
	f.nextChan++
	channel := &platform.Channel{
		ID:      fmt.Sprintf("chan-%d", f.nextChan),
		GuildID: guildID,
		Name:    params.Name,
		Topic:   params.Topic,
	}
	f.Channels[channel.ID] = channel
	f.Topics[channel.ID] = params.Topic
	return channel, nil
}

func (f *FakeClient) SendMessage(ctx context.Context, channelID string, msg platform.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SendErr != nil {
		return f.SendErr
	}
	f.Sent = append(f.Sent, SentMessage{ChannelID: channelID, Message: msg})
	return nil
}

func (f *FakeClient) SetChannelTopic(ctx context.Context, channelID, topic string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Topics[channelID] = topic
	if channel, ok := f.Channels[channelID]; ok {
		channel.Topic = topic
	}
	return nil
}

func (f *FakeClient) DeleteChannel(ctx context.Context, channelID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.Deleted = append(f.Deleted, channelID)
	delete(f.Channels, channelID)
	return nil
}

func (f *FakeClient) ChannelMessages(ctx context.Context, channelID string) ([]platform.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.History[channelID], nil
}

func (f *FakeClient) Channel(ctx context.Context, channelID string) (*platform.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	channel, ok := f.Channels[channelID]
	if !ok {
		return nil, fmt.Errorf("channel %s not found", channelID)
	}
	copied := *channel
	return &copied, nil
}

func (f *FakeClient) User(ctx context.Context, userID string) (*platform.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.Users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s not found", userID)
	}
	return user, nil
}

func (f *FakeClient) MemberHasRole(guildID, userID, roleID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.RoleGrant[guildID+"/"+userID+"/"+roleID]
}

func (f *FakeClient) BotUserID() string { return f.BotID }

// DeletedChannels returns a snapshot of deleted channel ids, safe against
// concurrent deletions.
func (f *FakeClient) DeletedChannels() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Deleted...)
}

// LastSent returns the most recent message, or nil.
func (f *FakeClient) LastSent() *SentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Sent) == 0 {
		return nil
	}
	return &f.Sent[len(f.Sent)-1]
}

// MessagesTo returns every message sent to one channel.
func (f *FakeClient) MessagesTo(channelID string) []platform.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []platform.Message
	for _, sent := range f.Sent {
		if sent.ChannelID == channelID {
			out = append(out, sent.Message)
		}
	}
	return out
}

var _ platform.Client = (*FakeClient)(nil)

// FakeResponder records every response of a single interaction.
type FakeResponder struct {
	Replies   []platform.Response
	FollowUps []platform.Response
	Modals    []platform.Modal
	Updates   [][]platform.ActionRow

	ReplyErr error
}

func (r *FakeResponder) Reply(ctx context.Context, resp platform.Response) error {
	if r.ReplyErr != nil {
		return r.ReplyErr
	}
	r.Replies = append(r.Replies, resp)
	return nil
}

func (r *FakeResponder) FollowUp(ctx context.Context, resp platform.Response) error {
	r.FollowUps = append(r.FollowUps, resp)
	return nil
}

func (r *FakeResponder) ShowModal(ctx context.Context, m platform.Modal) error {
	r.Modals = append(r.Modals, m)
	return nil
}

func (r *FakeResponder) UpdateComponents(ctx context.Context, rows []platform.ActionRow) error {
	r.Updates = append(r.Updates, rows)
	return nil
}

// LastReply returns the most recent Reply, or nil.
func (r *FakeResponder) LastReply() *platform.Response {
	if len(r.Replies) == 0 {
		return nil
	}
	return &r.Replies[len(r.Replies)-1]
}

var _ platform.Responder = (*FakeResponder)(nil)
