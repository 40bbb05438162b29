package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stackassist-backend/internal/models"
)

// seedExpiries stores, relative to fixtureNow: a site expired yesterday, a site in two
// days, a hosting account in five days, an app renewing in twenty days, a site in sixty
// days and a site without a date.
func seedExpiries(t *testing.T, f *fixture) {
	t.Helper()
	tenant := f.owner.TenantID
	for _, site := range []*models.Site{
		{Name: "expired.test", ExpirationDate: f.at(-day)},
		{Name: "soon.test", ExpirationDate: f.at(2 * day)},
		{Name: "later.test", ExpirationDate: f.at(60 * day)},
		{Name: "undated.test"},
	} {
		_, err := f.store.Sites.Create(f.ctx, tenant, site)
		require.NoError(t, err)
	}
	_, err := f.store.HostingAccounts.Create(f.ctx, tenant, &models.HostingAccount{Provider: "Hostinger", ExpirationDate: f.at(5 * day)})
	require.NoError(t, err)
	_, err = f.store.MobileApps.Create(f.ctx, tenant, &models.MobileApp{AppName: "Bakery App", RenewalDate: f.at(20 * day)})
	require.NoError(t, err)
}

func TestReportService_Summary(t *testing.T) {
	f := newFixture(t)
	seedExpiries(t, f)
	seedClient(t, f, "Jane", "jane@client.test", "100")
	svc := NewReportService(f.store, f.authz, f.clock, f.logger)

	summary, err := svc.Summary(f.ctx, f.owner)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Clients)
	assert.Equal(t, 4, summary.Sites)
	assert.Equal(t, 1, summary.HostingAccounts)
	assert.Equal(t, 1, summary.MobileApps)
	assert.Equal(t, ExpiringCounts{Sites: 2, HostingAccounts: 1, MobileApps: 1}, summary.ExpiringSoon)
	assert.Equal(t, SummaryBuckets{ThreeDays: 1, OneWeek: 1, OneMonth: 1}, summary.Buckets)
}

func TestReportService_SummaryBucketsUseCalendarDays(t *testing.T) {
	f := newFixture(t)
	// 66 hours away rounds up to three days but falls after the third midnight.
	_, err := f.store.Sites.Create(f.ctx, f.owner.TenantID, &models.Site{Name: "edge.test", ExpirationDate: f.at(66 * time.Hour)})
	require.NoError(t, err)
	svc := NewReportService(f.store, f.authz, f.clock, f.logger)

	summary, err := svc.Summary(f.ctx, f.owner)
	require.NoError(t, err)
	assert.Equal(t, SummaryBuckets{OneWeek: 1}, summary.Buckets)

	analytics, err := svc.Analytics(f.ctx, f.owner)
	require.NoError(t, err)
	assert.Equal(t, 1, analytics.Total.WithinThree)
}

func TestReportService_SummaryHidesUnreadableModules(t *testing.T) {
	f := newFixture(t)
	seedExpiries(t, f)
	svc := NewReportService(f.store, f.authz, f.clock, f.logger)
	member := f.member(models.Permissions{Modules: models.ModulePermissions{Sites: true}})

	summary, err := svc.Summary(f.ctx, member)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Sites)
	assert.Zero(t, summary.HostingAccounts)
	assert.Zero(t, summary.MobileApps)
	assert.Equal(t, ExpiringCounts{Sites: 2}, summary.ExpiringSoon)
	assert.Equal(t, SummaryBuckets{ThreeDays: 1}, summary.Buckets)
}

func TestReportService_Analytics(t *testing.T) {
	f := newFixture(t)
	seedExpiries(t, f)
	svc := NewReportService(f.store, f.authz, f.clock, f.logger)

	analytics, err := svc.Analytics(f.ctx, f.owner)
	require.NoError(t, err)
	assert.Equal(t, AnalyticsBuckets{Expired: 1, WithinThree: 1, WithinSeven: 1, Later: 1}, analytics.Total)
	assert.Equal(t, &AnalyticsBuckets{Expired: 1, WithinThree: 1}, analytics.ByType[models.ItemTypeSite])
	assert.Equal(t, &AnalyticsBuckets{WithinSeven: 1}, analytics.ByType[models.ItemTypeHosting])
	assert.Equal(t, &AnalyticsBuckets{Later: 1}, analytics.ByType[models.ItemTypeApp])
}

func TestReportService_CriticalAlerts(t *testing.T) {
	f := newFixture(t)
	seedExpiries(t, f)
	svc := NewReportService(f.store, f.authz, f.clock, f.logger)

	alerts, err := svc.CriticalAlerts(f.ctx, f.owner)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "expired.test", alerts[0].Name)
	assert.Equal(t, -1, alerts[0].DaysUntil)
	assert.Equal(t, "soon.test", alerts[1].Name)
	assert.Equal(t, 2, alerts[1].DaysUntil)

	empty := newFixture(t)
	none, err := NewReportService(empty.store, empty.authz, empty.clock, empty.logger).CriticalAlerts(empty.ctx, empty.owner)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestReportService_UpcomingExpirations(t *testing.T) {
	f := newFixture(t)
	seedExpiries(t, f)
	svc := NewReportService(f.store, f.authz, f.clock, f.logger)

	items, err := svc.UpcomingExpirations(f.ctx, f.owner, 0, "")
	require.NoError(t, err)
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
	}
	assert.Equal(t, []string{"expired.test", "soon.test", "Hostinger", "Bakery App"}, names)

	sites, err := svc.UpcomingExpirations(f.ctx, f.owner, 90, models.ItemTypeSite)
	require.NoError(t, err)
	require.Len(t, sites, 3)
	assert.Equal(t, "later.test", sites[2].Name)
	assert.Equal(t, 60, sites[2].DaysUntil)

	_, err = svc.UpcomingExpirations(f.ctx, f.owner, 30, "domain")
	assert.ErrorIs(t, err, ErrValidation)

	member := f.member(models.Permissions{Modules: models.ModulePermissions{Sites: true}})
	_, err = svc.UpcomingExpirations(f.ctx, member, 30, models.ItemTypeHosting)
	assert.ErrorIs(t, err, ErrPermissionDenied)
	visible, err := svc.UpcomingExpirations(f.ctx, member, 30, itemTypeAll)
	require.NoError(t, err)
	assert.Len(t, visible, 2)
}

func TestReportService_TaskReport(t *testing.T) {
	f := newFixture(t)
	tasks := []*models.Task{
		{
			Title: "Launch", Status: models.TaskStatusCompleted, Priority: models.TaskPriorityHigh,
			CreatedAt: fixtureNow.Add(-5 * day),
			StatusHistory: []models.StatusChange{
				{Status: models.TaskStatusTodo, Timestamp: fixtureNow.Add(-5 * day)},
				{Status: models.TaskStatusInProgress, Timestamp: fixtureNow.Add(-4 * day)},
				{Status: models.TaskStatusCompleted, Timestamp: fixtureNow.Add(-2 * day)},
			},
		},
		{
			Title: "Old fix", Status: models.TaskStatusCompleted, Priority: models.TaskPriorityLow,
			CreatedAt: fixtureNow.Add(-10 * day),
			StatusHistory: []models.StatusChange{
				{Status: models.TaskStatusTodo, Timestamp: fixtureNow.Add(-10 * day)},
				{Status: models.TaskStatusCompleted, Timestamp: fixtureNow.Add(-9 * day)},
			},
		},
		{
			Title: "Backlog", Status: models.TaskStatusTodo, Priority: models.TaskPriorityMedium,
			CreatedAt:     fixtureNow.Add(-day),
			StatusHistory: []models.StatusChange{{Status: models.TaskStatusTodo, Timestamp: fixtureNow.Add(-day)}},
		},
	}
	for _, task := range tasks {
		_, err := f.store.Tasks.Create(f.ctx, f.owner.TenantID, task)
		require.NoError(t, err)
	}
	svc := NewReportService(f.store, f.authz, f.clock, f.logger)

	report, err := svc.TaskReport(f.ctx, f.owner)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, map[string]int{"todo": 1, "in-progress": 0, "completed": 2}, report.ByStatus)
	assert.Equal(t, map[string]int{"high": 1, "medium": 1, "low": 1}, report.ByPriority)
	assert.Equal(t, 2, report.AverageCompletionDays)
	assert.Equal(t, 3, report.StatusChanges)

	require.Len(t, report.CompletionTrend, 7)
	assert.Equal(t, DailyCount{Date: "2026-03-04", Completed: 0}, report.CompletionTrend[0])
	assert.Equal(t, DailyCount{Date: "2026-03-08", Completed: 1}, report.CompletionTrend[4])
	assert.Equal(t, "2026-03-10", report.CompletionTrend[6].Date)

	_, err = svc.TaskReport(f.ctx, f.member(models.Permissions{Modules: models.ModulePermissions{Sites: true}}))
	assert.ErrorIs(t, err, ErrPermissionDenied)
}
