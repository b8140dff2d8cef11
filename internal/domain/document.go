package domain

// Document is the whole persisted state. It is read and written as a single
// blob with last-writer-wins semantics; there is no row-level access.
type Document struct {
	Guilds     map[string]*TenantConfig `json:"guilds"`
	StaffStats map[string]*StaffStat    `json:"staffStats"`
	History    map[string]int           `json:"history"`
	Tickets    map[string]*TicketRecord `json:"tickets"`
}

// NewDocument returns an empty document with all maps initialized.
func NewDocument() *Document {
	return &Document{
		Guilds:     map[string]*TenantConfig{},
		StaffStats: map[string]*StaffStat{},
		History:    map[string]int{},
		Tickets:    map[string]*TicketRecord{},
	}
}

// Normalize fills nil maps after deserialization so callers never need
// nil checks before writing.
func (d *Document) Normalize() {
	if d.Guilds == nil {
		d.Guilds = map[string]*TenantConfig{}
	}
	if d.StaffStats == nil {
		d.StaffStats = map[string]*StaffStat{}
	}
	if d.History == nil {
		d.History = map[string]int{}
	}
	if d.Tickets == nil {
		d.Tickets = map[string]*TicketRecord{}
	}
}

// Guild returns the tenant config for a guild, creating it when absent.
func (d *Document) Guild(guildID string) *TenantConfig {
	cfg, ok := d.Guilds[guildID]
	if !ok {
		cfg = &TenantConfig{}
		d.Guilds[guildID] = cfg
	}
	return cfg
}

// TotalTickets sums ticket counters across all tenants.
func (d *Document) TotalTickets() int {
	total := 0
	for _, cfg := range d.Guilds {
		total += cfg.TicketCount
	}
	return total
}
