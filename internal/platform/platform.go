// Package platform abstracts the group-chat platform: channels, rich
// messages, interactive components and member lookups. The engine depends
// only on these interfaces; the discord subpackage provides the real
// implementation.
package platform

import "context"

// Client is the outbound side of the platform.
type Client interface {
	// CreateChannel makes a private channel with explicit per-member
	// visibility grants.
	CreateChannel(ctx context.Context, guildID string, params ChannelCreate) (*Channel, error)
	// SendMessage posts a message to a channel.
	SendMessage(ctx context.Context, channelID string, msg Message) error
	// SetChannelTopic rewrites a channel's topic string.
	SetChannelTopic(ctx context.Context, channelID, topic string) error
	// DeleteChannel removes a channel.
	DeleteChannel(ctx context.Context, channelID string) error
	// ChannelMessages returns the full history of a channel, oldest first.
	ChannelMessages(ctx context.Context, channelID string) ([]Message, error)
	// Channel fetches a channel by id.
	Channel(ctx context.Context, channelID string) (*Channel, error)
	// User fetches a user by id.
	User(ctx context.Context, userID string) (*User, error)
	// MemberHasRole reports role membership, preferring cached data over
	// fetches to avoid rate limits. Unknown members count as not holding
	// the role.
	MemberHasRole(guildID, userID, roleID string) bool
	// BotUserID returns the service identity's own user id.
	BotUserID() string
}

// InteractionKind discriminates inbound interaction events.
type InteractionKind int

const (
	KindSelectMenu InteractionKind = iota + 1
	KindButton
	KindModalSubmit
)

// Member is the interaction author with its authorization context.
type Member struct {
	ID        string
	Username  string
	Roles     []string
	CanManage bool
}

// HasRole reports whether the member holds the given role id.
func (m Member) HasRole(roleID string) bool {
	for _, r := range m.Roles {
		if r == roleID {
			return true
		}
	}
	return false
}

// Interaction is a normalized inbound event: a menu selection, a button
// press or a modal submission.
type Interaction struct {
	Kind         InteractionKind
	CustomID     string
	Values       []string          // select menu selections
	Fields       map[string]string // modal inputs by custom id
	GuildID      string
	ChannelID    string
	ChannelName  string
	ChannelTopic string
	Member       Member
	// Components carries the source message's action rows for component
	// interactions, so handlers can re-render them.
	Components []ActionRow
	Responder  Responder
}

// Responder answers a single interaction. Reply must be called at most once
// per interaction; later messages go through FollowUp.
type Responder interface {
	Reply(ctx context.Context, r Response) error
	FollowUp(ctx context.Context, r Response) error
	ShowModal(ctx context.Context, m Modal) error
	// UpdateComponents acknowledges a component interaction by rewriting
	// the source message's action rows.
	UpdateComponents(ctx context.Context, rows []ActionRow) error
}
