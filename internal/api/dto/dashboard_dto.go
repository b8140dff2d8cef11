package dto

import (
	"time"

	"github.com/spec-kit/ticket-bot/internal/domain"
)

// StaffEntryResponse is one leaderboard row.
type StaffEntryResponse struct {
	Name    string `json:"name"`
	Points  int    `json:"points"`
	IsStaff bool   `json:"isStaff"`
}

// StatsResponse is the aggregate dashboard payload.
type StatsResponse struct {
	StaffList    []StaffEntryResponse `json:"staffList"`
	TotalTickets int                  `json:"totalTickets"`
	Labels       []string             `json:"labels"`
	DataPoints   []int                `json:"dataPoints"`
	Config       *domain.TenantConfig `json:"config,omitempty"`
	FirstGuildID string               `json:"firstGuildId,omitempty"`
}

// SaveRequest carries both save endpoints' payloads; the panel fields are
// only honored by /api/save-config.
type SaveRequest struct {
	GuildID    string                      `json:"guildId"`
	ChannelID  string                      `json:"channelId"`
	CategoryID string                      `json:"categoryId"`
	Options    []domain.CategoryDefinition `json:"options"`
	PanelTitle string                      `json:"panelTitle"`
	PanelDesc  string                      `json:"panelDesc"`
	PanelImage string                      `json:"panelImage"`
}

// LoginRequest payload.
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse payload.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
