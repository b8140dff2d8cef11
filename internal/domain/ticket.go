package domain

import "time"

// TicketStatus enumerates lifecycle states for an open ticket channel.
// CategorySelectable and FormCollecting exist only inside a single
// interaction and are never persisted.
type TicketStatus string

const (
	TicketStatusOpen         TicketStatus = "open"
	TicketStatusClaimed      TicketStatus = "claimed"
	TicketStatusClosePending TicketStatus = "close_pending"
	TicketStatusClosing      TicketStatus = "closing"
	TicketStatusDeleted      TicketStatus = "deleted"
)

// TicketRecord is the explicit per-ticket state, keyed by channel id in the
// document. The channel topic carries the same information as a wire format
// for compatibility; the record is authoritative when present.
type TicketRecord struct {
	ChannelID     string       `json:"channelId"`
	GuildID       string       `json:"guildId"`
	Sequence      int          `json:"sequence"`
	CategoryValue string       `json:"categoryValue"`
	Type          CategoryType `json:"type"`
	Lang          string       `json:"lang"`
	CreatorID     string       `json:"creatorId"`
	ClaimerID     *string      `json:"claimerId,omitempty"`
	Status        TicketStatus `json:"status"`
	CreatedAt     time.Time    `json:"createdAt"`
}

var allowedTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusOpen:         {TicketStatusClaimed, TicketStatusClosePending, TicketStatusClosing},
	TicketStatusClaimed:      {TicketStatusClosePending, TicketStatusClosing},
	TicketStatusClosePending: {TicketStatusClaimed, TicketStatusClosing, TicketStatusClosePending},
	TicketStatusClosing:      {TicketStatusDeleted},
	TicketStatusDeleted:      {},
}

// CanTransition reports whether a status change is permitted by the
// lifecycle table. A deleted ticket accepts nothing.
func CanTransition(current, next TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Claimed reports whether the ticket carries a claimer. ClaimerID is
// write-once: once set it never changes.
func (t *TicketRecord) Claimed() bool {
	return t != nil && t.ClaimerID != nil && *t.ClaimerID != ""
}
