package events

import (
	"time"

	"github.com/spec-kit/ticket-bot/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketOpened   EventType = "ticket_opened"
	EventTicketClaimed  EventType = "ticket_claimed"
	EventTicketClosed   EventType = "ticket_closed"
	EventPanelPublished EventType = "panel_published"
)

// Event represents a lifecycle event emitted by the engine or the
// dashboard services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	GuildID   string      `json:"guild_id"`
	ChannelID string      `json:"channel_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketOpenedPayload payload.
type TicketOpenedPayload struct {
	Sequence      int                 `json:"sequence"`
	CategoryValue string              `json:"category_value"`
	Type          domain.CategoryType `json:"type"`
	Lang          string              `json:"lang"`
	CreatorID     string              `json:"creator_id"`
}

// TicketClaimedPayload payload.
type TicketClaimedPayload struct {
	ClaimerID string `json:"claimer_id"`
}

// TicketClosedPayload payload.
type TicketClosedPayload struct {
	ClaimerID string `json:"claimer_id,omitempty"`
	CloserID  string `json:"closer_id"`
	Reason    string `json:"reason"`
	Points    int    `json:"points"`
}

// PanelPublishedPayload payload.
type PanelPublishedPayload struct {
	ChannelID string `json:"channel_id"`
	Options   int    `json:"options"`
}
