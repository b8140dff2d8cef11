package service

import (
	"context"
	"sort"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/platform"
	"github.com/spec-kit/ticket-bot/internal/store"
)

// StatsService builds the dashboard read model.
type StatsService struct {
	store       *store.Store
	client      platform.Client
	staffRoleID string
}

// NewStatsService constructs the service.
func NewStatsService(st *store.Store, client platform.Client, staffRoleID string) *StatsService {
	return &StatsService{store: st, client: client, staffRoleID: staffRoleID}
}

// StaffEntry is one leaderboard row.
type StaffEntry struct {
	Name    string
	Points  int
	IsStaff bool
}

// Overview aggregates everything the dashboard shows.
type Overview struct {
	StaffList    []StaffEntry
	TotalTickets int
	Labels       []string
	DataPoints   []int
	Config       *domain.TenantConfig
	FirstGuildID string
}

// Overview returns the aggregate view for the first known tenant. The
// leaderboard only includes members currently holding the staff role;
// points for ex-staff stay in storage but are not shown. Role checks use
// cached member data, accepting staleness over rate limits.
func (s *StatsService) Overview(ctx context.Context) (*Overview, error) {
	view := &Overview{StaffList: []StaffEntry{}, Labels: []string{}, DataPoints: []int{}}

	err := s.store.View(ctx, func(doc *domain.Document) {
		guildIDs := make([]string, 0, len(doc.Guilds))
		for id := range doc.Guilds {
			guildIDs = append(guildIDs, id)
		}
		if len(guildIDs) == 0 {
			return
		}
		sort.Strings(guildIDs)
		view.FirstGuildID = guildIDs[0]

		cfg := *doc.Guilds[view.FirstGuildID]
		view.Config = &cfg
		view.TotalTickets = doc.TotalTickets()

		for userID, stat := range doc.StaffStats {
			if !s.client.MemberHasRole(view.FirstGuildID, userID, s.staffRoleID) {
				continue
			}
			view.StaffList = append(view.StaffList, StaffEntry{
				Name:    stat.Name,
				Points:  stat.Points,
				IsStaff: true,
			})
		}
		sort.Slice(view.StaffList, func(i, j int) bool {
			if view.StaffList[i].Points != view.StaffList[j].Points {
				return view.StaffList[i].Points > view.StaffList[j].Points
			}
			return view.StaffList[i].Name < view.StaffList[j].Name
		})

		dates := make([]string, 0, len(doc.History))
		for date := range doc.History {
			dates = append(dates, date)
		}
		sort.Strings(dates)
		if len(dates) > 7 {
			dates = dates[len(dates)-7:]
		}
		view.Labels = dates
		for _, date := range dates {
			view.DataPoints = append(view.DataPoints, doc.History[date])
		}
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}
