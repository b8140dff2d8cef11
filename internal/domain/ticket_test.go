package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(TicketStatusOpen, TicketStatusClaimed))
	assert.True(t, CanTransition(TicketStatusOpen, TicketStatusClosing))
	assert.True(t, CanTransition(TicketStatusClaimed, TicketStatusClosing))
	assert.True(t, CanTransition(TicketStatusClosing, TicketStatusDeleted))

	// A claimed ticket can never go back to open and a deleted ticket
	// accepts nothing.
	assert.False(t, CanTransition(TicketStatusClaimed, TicketStatusOpen))
	assert.False(t, CanTransition(TicketStatusClosing, TicketStatusOpen))
	assert.False(t, CanTransition(TicketStatusDeleted, TicketStatusOpen))
	assert.False(t, CanTransition(TicketStatusDeleted, TicketStatusClosing))
}

func TestTicketRecordClaimed(t *testing.T) {
	var nilRec *TicketRecord
	assert.False(t, nilRec.Claimed())

	rec := &TicketRecord{}
	assert.False(t, rec.Claimed())

	empty := ""
	rec.ClaimerID = &empty
	assert.False(t, rec.Claimed())

	claimer := "42"
	rec.ClaimerID = &claimer
	assert.True(t, rec.Claimed())
}

func TestDocumentGuildCreatesTenant(t *testing.T) {
	doc := NewDocument()
	cfg := doc.Guild("g1")
	cfg.TicketCount = 3

	assert.Same(t, cfg, doc.Guild("g1"))
	assert.Equal(t, 3, doc.TotalTickets())

	doc.Guild("g2").TicketCount = 2
	assert.Equal(t, 5, doc.TotalTickets())
}

func TestNormalizeFillsNilMaps(t *testing.T) {
	doc := &Document{}
	doc.Normalize()

	assert.NotNil(t, doc.Guilds)
	assert.NotNil(t, doc.StaffStats)
	assert.NotNil(t, doc.History)
	assert.NotNil(t, doc.Tickets)
}

func TestFindOption(t *testing.T) {
	cfg := &TenantConfig{Options: []CategoryDefinition{
		{Value: "billing", Label: "Billing Help", Type: CategoryPurchase},
		{Value: "general", Label: "General", Type: CategorySupport},
	}}

	opt, ok := cfg.FindOption("billing")
	assert.True(t, ok)
	assert.Equal(t, "Billing Help", opt.Label)

	_, ok = cfg.FindOption("missing")
	assert.False(t, ok)

	var nilCfg *TenantConfig
	_, ok = nilCfg.FindOption("billing")
	assert.False(t, ok)
}
