package core

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"stackassist-backend/internal/db"
	"stackassist-backend/internal/models"
)

// ExpiringCounts counts items expiring within a month, per type. Already expired
// items are included.
type ExpiringCounts struct {
	Sites           int `json:"sites"`
	HostingAccounts int `json:"hostingAccounts"`
	MobileApps      int `json:"mobileApps"`
}

// SummaryBuckets partitions upcoming expiries: (now, +3d], (+3d, +7d], (+7d, +1 month].
type SummaryBuckets struct {
	ThreeDays int `json:"threeDays"`
	OneWeek   int `json:"oneWeek"`
	OneMonth  int `json:"oneMonth"`
}

// DashboardSummary is the dashboard overview. Modules the caller may not read are
// reported as zero.
type DashboardSummary struct {
	Clients         int            `json:"clients"`
	Sites           int            `json:"sites"`
	HostingAccounts int            `json:"hostingAccounts"`
	MobileApps      int            `json:"mobileApps"`
	ExpiringSoon    ExpiringCounts `json:"expiringSoon"`
	Buckets         SummaryBuckets `json:"buckets"`
}

// AnalyticsBuckets groups items by days until expiry.
type AnalyticsBuckets struct {
	Expired        int `json:"expired"`        // <= 0
	WithinThree    int `json:"withinThree"`    // 1..3
	WithinSeven    int `json:"withinSeven"`    // 4..7
	WithinFourteen int `json:"withinFourteen"` // 8..14
	Later          int `json:"later"`          // > 14
}

func (b *AnalyticsBuckets) add(days int) {
	switch {
	case days <= 0:
		b.Expired++
	case days <= 3:
		b.WithinThree++
	case days <= 7:
		b.WithinSeven++
	case days <= 14:
		b.WithinFourteen++
	default:
		b.Later++
	}
}

// ExpiryAnalytics covers items expiring within a month.
type ExpiryAnalytics struct {
	ByType map[string]*AnalyticsBuckets `json:"byType"`
	Total  AnalyticsBuckets             `json:"total"`
}

// DailyCount is the number of tasks first completed on Date (YYYY-MM-DD).
type DailyCount struct {
	Date      string `json:"date"`
	Completed int    `json:"completed"`
}

type TaskReport struct {
	Total                 int            `json:"total"`
	ByStatus              map[string]int `json:"byStatus"`
	ByPriority            map[string]int `json:"byPriority"`
	CompletionTrend       []DailyCount   `json:"completionTrend"`
	AverageCompletionDays int            `json:"averageCompletionDays"`
	StatusChanges         int            `json:"statusChanges"`
}

type reportService struct {
	store  *db.Store
	loader expiryLoader
	authz  *Authorizer
	clock  Clock
	logger *zap.Logger
}

// NewReportService creates a ReportService.
func NewReportService(store *db.Store, authz *Authorizer, clock Clock, logger *zap.Logger) ReportService {
	return &reportService{store: store, loader: newExpiryLoader(store), authz: authz, clock: clock, logger: logger}
}

// readable returns the item types whose module the caller may read.
func (s *reportService) readable(p models.Principal) (map[string]bool, error) {
	types := make(map[string]bool, len(itemModules))
	for itemType, module := range itemModules {
		ok, err := s.authz.Check(p, string(module), ActionRead)
		if err != nil {
			return nil, err
		}
		types[itemType] = ok
	}
	return types, nil
}

func (s *reportService) Summary(ctx context.Context, p models.Principal) (*DashboardSummary, error) {
	types, err := s.readable(p)
	if err != nil {
		return nil, err
	}
	summary := &DashboardSummary{}

	canReadClients, err := s.authz.Check(p, string(models.ModuleClients), ActionRead)
	if err != nil {
		return nil, err
	}
	if canReadClients {
		clients, err := s.store.Clients.List(ctx, p.TenantID)
		if err != nil {
			return nil, storeError("list clients", err)
		}
		summary.Clients = len(clients)
	}
	if types[models.ItemTypeSite] {
		sites, err := s.store.Sites.List(ctx, p.TenantID)
		if err != nil {
			return nil, storeError("list sites", err)
		}
		summary.Sites = len(sites)
	}
	if types[models.ItemTypeHosting] {
		accounts, err := s.store.HostingAccounts.List(ctx, p.TenantID)
		if err != nil {
			return nil, storeError("list hosting accounts", err)
		}
		summary.HostingAccounts = len(accounts)
	}
	if types[models.ItemTypeApp] {
		apps, err := s.store.MobileApps.List(ctx, p.TenantID)
		if err != nil {
			return nil, storeError("list mobile apps", err)
		}
		summary.MobileApps = len(apps)
	}

	now := s.clock.Now()
	oneMonth := monthsAhead(now, summaryMonths)
	items, err := s.loader.load(ctx, p.TenantID, types, now, oneMonth)
	if err != nil {
		return nil, err
	}
	threeDays := startOfDay(now).AddDate(0, 0, summaryThreeDays)
	oneWeek := startOfDay(now).AddDate(0, 0, summaryOneWeek)
	for _, item := range items {
		switch item.Type {
		case models.ItemTypeSite:
			summary.ExpiringSoon.Sites++
		case models.ItemTypeHosting:
			summary.ExpiringSoon.HostingAccounts++
		case models.ItemTypeApp:
			summary.ExpiringSoon.MobileApps++
		}
		d := item.ExpiryDate
		switch {
		case !d.After(now):
		case !d.After(threeDays):
			summary.Buckets.ThreeDays++
		case !d.After(oneWeek):
			summary.Buckets.OneWeek++
		default:
			summary.Buckets.OneMonth++
		}
	}
	return summary, nil
}

func (s *reportService) Analytics(ctx context.Context, p models.Principal) (*ExpiryAnalytics, error) {
	types, err := s.readable(p)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	items, err := s.loader.load(ctx, p.TenantID, types, now, monthsAhead(now, summaryMonths))
	if err != nil {
		return nil, err
	}

	analytics := &ExpiryAnalytics{ByType: make(map[string]*AnalyticsBuckets)}
	for itemType, ok := range types {
		if ok {
			analytics.ByType[itemType] = &AnalyticsBuckets{}
		}
	}
	for _, item := range items {
		analytics.ByType[item.Type].add(item.DaysUntil)
		analytics.Total.add(item.DaysUntil)
	}
	return analytics, nil
}

// CriticalAlerts lists items expiring within 72 hours, including those already expired.
func (s *reportService) CriticalAlerts(ctx context.Context, p models.Principal) ([]ExpiringItem, error) {
	types, err := s.readable(p)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	items, err := s.loader.load(ctx, p.TenantID, types, now, now.Add(criticalWindow))
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []ExpiringItem{}
	}
	return items, nil
}

// UpcomingExpirations lists items within the next three months that expire within
// days, optionally restricted to one item type.
func (s *reportService) UpcomingExpirations(ctx context.Context, p models.Principal, days int, itemType string) ([]ExpiringItem, error) {
	types, err := s.readable(p)
	if err != nil {
		return nil, err
	}
	if itemType != "" && itemType != itemTypeAll {
		if _, known := itemModules[itemType]; !known {
			return nil, wrapf(ErrValidation, "type must be one of [site hosting app all]")
		}
		if !types[itemType] {
			return nil, wrapf(ErrPermissionDenied, "cannot read "+itemType)
		}
		types = map[string]bool{itemType: true}
	}
	if days <= 0 {
		days = defaultUpcomingDays
	}

	now := s.clock.Now()
	items, err := s.loader.load(ctx, p.TenantID, types, now, monthsAhead(now, upcomingMonths))
	if err != nil {
		return nil, err
	}
	filtered := make([]ExpiringItem, 0, len(items))
	for _, item := range items {
		if item.DaysUntil <= days {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}

func (s *reportService) TaskReport(ctx context.Context, p models.Principal) (*TaskReport, error) {
	if err := s.authz.Authorize(p, string(models.ModuleTasks), ActionRead); err != nil {
		return nil, err
	}
	tasks, err := s.store.Tasks.List(ctx, p.TenantID)
	if err != nil {
		return nil, storeError("list tasks", err)
	}
	return buildTaskReport(tasks, s.clock.Now()), nil
}

func buildTaskReport(tasks []*models.Task, now time.Time) *TaskReport {
	report := &TaskReport{
		Total: len(tasks),
		ByStatus: map[string]int{
			models.TaskStatusTodo:       0,
			models.TaskStatusInProgress: 0,
			models.TaskStatusCompleted:  0,
		},
		ByPriority: map[string]int{
			models.TaskPriorityHigh:   0,
			models.TaskPriorityMedium: 0,
			models.TaskPriorityLow:    0,
		},
	}

	today := startOfDay(now)
	trend := make([]DailyCount, 7)
	for i := range trend {
		trend[i].Date = today.AddDate(0, 0, i-6).Format("2006-01-02")
	}

	var completed, totalDays int
	for _, task := range tasks {
		report.ByStatus[task.Status]++
		report.ByPriority[task.Priority]++

		for i := 1; i < len(task.StatusHistory); i++ {
			if task.StatusHistory[i].Status != task.StatusHistory[i-1].Status {
				report.StatusChanges++
			}
		}

		completedAt, ok := task.CompletedAt()
		if ok {
			day := startOfDay(completedAt.In(now.Location()))
			if offset := int(day.Sub(today).Hours() / 24); offset <= 0 && offset > -7 {
				trend[6+offset].Completed++
			}
		}
		if task.Status == models.TaskStatusCompleted && len(task.StatusHistory) > 0 {
			if !ok {
				completedAt = task.CreatedAt
			}
			completed++
			totalDays += int(completedAt.Sub(task.CreatedAt).Hours() / 24)
		}
	}
	report.CompletionTrend = trend
	if completed > 0 {
		report.AverageCompletionDays = int(math.Round(float64(totalDays) / float64(completed)))
	}
	return report
}
