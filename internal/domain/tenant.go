package domain

// CategoryType selects the behavior of a ticket category.
type CategoryType string

const (
	CategorySupport  CategoryType = "support"
	CategoryPurchase CategoryType = "purchase"
	CategoryGiveaway CategoryType = "giveaway"
)

// CategoryDefinition is one entry of a tenant's intake menu.
type CategoryDefinition struct {
	Value            string       `json:"value"`
	Label            string       `json:"label"`
	Question         string       `json:"question"`
	Type             CategoryType `json:"type"`
	ArchiveChannelID string       `json:"transcriptId,omitempty"`
}

// PanelSettings holds display metadata for the intake panel message.
type PanelSettings struct {
	Title    string `json:"title"`
	Desc     string `json:"desc"`
	ImageURL string `json:"image,omitempty"`
}

// TenantConfig is the per-guild configuration written by the dashboard and
// read on every interaction.
type TenantConfig struct {
	ChannelID   string               `json:"channelId,omitempty"`
	CategoryID  string               `json:"categoryId,omitempty"`
	Options     []CategoryDefinition `json:"options,omitempty"`
	Panel       *PanelSettings       `json:"panel,omitempty"`
	TicketCount int                  `json:"ticketCount"`
}

// FindOption looks up a category by its stable key. The second return is
// false on a miss; callers degrade to defaults rather than fail.
func (c *TenantConfig) FindOption(value string) (CategoryDefinition, bool) {
	if c == nil {
		return CategoryDefinition{}, false
	}
	for _, opt := range c.Options {
		if opt.Value == value {
			return opt, true
		}
	}
	return CategoryDefinition{}, false
}
