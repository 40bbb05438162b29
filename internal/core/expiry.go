package core

import (
	"context"
	"math"
	"sort"
	"time"

	"stackassist-backend/internal/db"
	"stackassist-backend/internal/models"
)

// Expiry cutoffs. Each view keeps the boundaries the dashboard has always shown, so
// they are not uniform: the summary buckets count calendar days from today's
// midnight, the analytics and notices use rounded-up days until expiry, and the
// critical list uses an exact 72 hour window.
const (
	summaryThreeDays = 3 // calendar days
	summaryOneWeek   = 7 // calendar days
	summaryMonths    = 1 // calendar months, also the analytics and scan horizon
	upcomingMonths   = 3
	criticalWindow   = 72 * time.Hour

	defaultUpcomingDays = 30
)

// Notice thresholds in days until expiry.
const (
	noticeExpiryDay = 0
	noticeThreeDays = 3
	noticeTwoWeeks  = 14
	noticeOneMonth  = 30
)

// Item types accepted by the upcoming expirations filter besides the concrete ones.
const itemTypeAll = "all"

var itemModules = map[string]models.Module{
	models.ItemTypeSite:    models.ModuleSites,
	models.ItemTypeHosting: models.ModuleHosting,
	models.ItemTypeApp:     models.ModuleMobileApps,
}

// ExpiringItem is a site, hosting account or app with an expiry or renewal date.
type ExpiringItem struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Name       string    `json:"name"`
	ClientID   string    `json:"clientId,omitempty"`
	ExpiryDate time.Time `json:"expiryDate"`
	DaysUntil  int       `json:"daysUntilExpiry"`
}

// daysUntil rounds up, so anything later today counts as one day away and anything
// already past counts as zero or less.
func daysUntil(now, expiry time.Time) int {
	return int(math.Ceil(expiry.Sub(now).Hours() / 24))
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// monthsAhead is today's midnight plus n calendar months.
func monthsAhead(now time.Time, n int) time.Time {
	return startOfDay(now).AddDate(0, n, 0)
}

// classifyNotice maps days until expiry onto a notice threshold. Items more than
// noticeOneMonth days away get none.
func classifyNotice(days int) (models.NotificationType, bool) {
	switch {
	case days <= noticeExpiryDay:
		return models.NotifyExpiryDay, true
	case days <= noticeThreeDays:
		return models.NotifyThreeDays, true
	case days <= noticeTwoWeeks:
		return models.NotifyTwoWeeks, true
	case days <= noticeOneMonth:
		return models.NotifyOneMonth, true
	}
	return "", false
}

// expiryLoader reads the dated items of a tenant.
type expiryLoader struct {
	sites   db.SiteRepository
	hosting db.HostingAccountRepository
	apps    db.MobileAppRepository
}

func newExpiryLoader(store *db.Store) expiryLoader {
	return expiryLoader{sites: store.Sites, hosting: store.HostingAccounts, apps: store.MobileApps}
}

// load returns the items of the requested types expiring on or before until, closest
// first. Items without a date are skipped.
func (l expiryLoader) load(ctx context.Context, tenantID string, types map[string]bool, now, until time.Time) ([]ExpiringItem, error) {
	var items []ExpiringItem
	add := func(id, itemType, name, clientID string, date *time.Time) {
		if date == nil || date.IsZero() || date.After(until) {
			return
		}
		items = append(items, ExpiringItem{
			ID:         id,
			Type:       itemType,
			Name:       name,
			ClientID:   clientID,
			ExpiryDate: *date,
			DaysUntil:  daysUntil(now, *date),
		})
	}

	if types[models.ItemTypeSite] {
		sites, err := l.sites.List(ctx, tenantID)
		if err != nil {
			return nil, storeError("list sites", err)
		}
		for _, s := range sites {
			add(s.ID, models.ItemTypeSite, s.Name, s.ClientID, s.ExpirationDate)
		}
	}
	if types[models.ItemTypeHosting] {
		accounts, err := l.hosting.List(ctx, tenantID)
		if err != nil {
			return nil, storeError("list hosting accounts", err)
		}
		for _, h := range accounts {
			add(h.ID, models.ItemTypeHosting, h.Provider, "", h.ExpirationDate)
		}
	}
	if types[models.ItemTypeApp] {
		apps, err := l.apps.List(ctx, tenantID)
		if err != nil {
			return nil, storeError("list mobile apps", err)
		}
		for _, a := range apps {
			add(a.ID, models.ItemTypeApp, a.AppName, a.ClientID, a.RenewalDate)
		}
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].ExpiryDate.Before(items[j].ExpiryDate) })
	return items, nil
}

func allItemTypes() map[string]bool {
	return map[string]bool{models.ItemTypeSite: true, models.ItemTypeHosting: true, models.ItemTypeApp: true}
}
