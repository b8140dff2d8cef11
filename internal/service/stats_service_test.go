package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/platform/platformtest"
	"github.com/spec-kit/ticket-bot/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(store.NewFileBackend(filepath.Join(t.TempDir(), "database.json")), zap.NewNop())
}

func TestOverviewEmptyDocument(t *testing.T) {
	st := newTestStore(t)
	svc := NewStatsService(st, platformtest.NewFakeClient(), "role-staff")

	view, err := svc.Overview(context.Background())
	require.NoError(t, err)

	assert.Empty(t, view.FirstGuildID)
	assert.Nil(t, view.Config)
	assert.Zero(t, view.TotalTickets)
	assert.NotNil(t, view.StaffList)
	assert.NotNil(t, view.Labels)
	assert.NotNil(t, view.DataPoints)
}

func TestOverviewLeaderboardFiltersByRole(t *testing.T) {
	st := newTestStore(t)
	client := platformtest.NewFakeClient()
	svc := NewStatsService(st, client, "role-staff")
	ctx := context.Background()

	require.NoError(t, st.Update(ctx, func(doc *domain.Document) error {
		doc.Guilds["g1"] = &domain.TenantConfig{TicketCount: 12}
		doc.StaffStats["s1"] = &domain.StaffStat{Name: "active", Points: 3}
		doc.StaffStats["s2"] = &domain.StaffStat{Name: "departed", Points: 9}
		doc.StaffStats["s3"] = &domain.StaffStat{Name: "also-active", Points: 3}
		return nil
	}))
	client.GrantRole("g1", "s1", "role-staff")
	client.GrantRole("g1", "s3", "role-staff")

	view, err := svc.Overview(ctx)
	require.NoError(t, err)

	assert.Equal(t, "g1", view.FirstGuildID)
	assert.Equal(t, 12, view.TotalTickets)
	// Ex-staff keep their stored points but never show up.
	require.Len(t, view.StaffList, 2)
	// Equal points order by name.
	assert.Equal(t, "active", view.StaffList[0].Name)
	assert.Equal(t, "also-active", view.StaffList[1].Name)
}

func TestOverviewPicksFirstGuildDeterministically(t *testing.T) {
	st := newTestStore(t)
	svc := NewStatsService(st, platformtest.NewFakeClient(), "role-staff")
	ctx := context.Background()

	require.NoError(t, st.Update(ctx, func(doc *domain.Document) error {
		doc.Guilds["zzz"] = &domain.TenantConfig{TicketCount: 1}
		doc.Guilds["aaa"] = &domain.TenantConfig{TicketCount: 2, ChannelID: "panel"}
		return nil
	}))

	view, err := svc.Overview(ctx)
	require.NoError(t, err)

	assert.Equal(t, "aaa", view.FirstGuildID)
	require.NotNil(t, view.Config)
	assert.Equal(t, "panel", view.Config.ChannelID)
	// Totals still span every tenant.
	assert.Equal(t, 3, view.TotalTickets)
}

func TestOverviewHistoryKeepsLastSevenDays(t *testing.T) {
	st := newTestStore(t)
	svc := NewStatsService(st, platformtest.NewFakeClient(), "role-staff")
	ctx := context.Background()

	require.NoError(t, st.Update(ctx, func(doc *domain.Document) error {
		doc.Guilds["g1"] = &domain.TenantConfig{}
		days := []string{
			"2025-03-01", "2025-03-02", "2025-03-03", "2025-03-04",
			"2025-03-05", "2025-03-06", "2025-03-07", "2025-03-08", "2025-03-09",
		}
		for i, day := range days {
			doc.History[day] = i + 1
		}
		return nil
	}))

	view, err := svc.Overview(ctx)
	require.NoError(t, err)

	require.Len(t, view.Labels, 7)
	assert.Equal(t, "2025-03-03", view.Labels[0])
	assert.Equal(t, "2025-03-09", view.Labels[6])
	assert.Equal(t, []int{3, 4, 5, 6, 7, 8, 9}, view.DataPoints)
}
