package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stackassist-backend/internal/models"
	"stackassist-backend/pkg/cache"
	"stackassist-backend/pkg/mailer"
)

func newTestNotificationService(f *fixture, c cache.Cache) NotificationService {
	return NewNotificationService(f.store, f.outbox, c, f.authz, f.clock, f.logger)
}

// seedNotices stores one item per threshold plus one outside the scan horizon.
func seedNotices(t *testing.T, f *fixture) *models.Client {
	t.Helper()
	client := seedClient(t, f, "Jane", "jane@client.test", "100")
	tenant := f.owner.TenantID
	for _, site := range []*models.Site{
		{Name: "soon.test", ClientID: client.ID, ExpirationDate: f.at(2 * day)},
		{Name: "expired.test", ExpirationDate: f.at(-day)},
		{Name: "later.test", ExpirationDate: f.at(60 * day)},
	} {
		_, err := f.store.Sites.Create(f.ctx, tenant, site)
		require.NoError(t, err)
	}
	_, err := f.store.HostingAccounts.Create(f.ctx, tenant, &models.HostingAccount{Provider: "Hostinger", ExpirationDate: f.at(10 * day)})
	require.NoError(t, err)
	_, err = f.store.MobileApps.Create(f.ctx, tenant, &models.MobileApp{AppName: "Bakery App", RenewalDate: f.at(20 * day)})
	require.NoError(t, err)
	return client
}

func TestClassifyNotice(t *testing.T) {
	cases := []struct {
		days int
		want models.NotificationType
		ok   bool
	}{
		{-3, models.NotifyExpiryDay, true},
		{0, models.NotifyExpiryDay, true},
		{1, models.NotifyThreeDays, true},
		{3, models.NotifyThreeDays, true},
		{4, models.NotifyTwoWeeks, true},
		{14, models.NotifyTwoWeeks, true},
		{15, models.NotifyOneMonth, true},
		{30, models.NotifyOneMonth, true},
		{31, "", false},
	}
	for _, tc := range cases {
		got, ok := classifyNotice(tc.days)
		assert.Equal(t, tc.ok, ok, "days=%d", tc.days)
		assert.Equal(t, tc.want, got, "days=%d", tc.days)
	}
}

func TestNotificationService_ScanSendsEachNoticeOnce(t *testing.T) {
	f := newFixture(t)
	seedNotices(t, f)
	svc := newTestNotificationService(f, f.cache)

	result, err := svc.Scan(f.ctx, f.owner)
	require.NoError(t, err)
	assert.Equal(t, &ScanResult{TenantID: f.owner.TenantID, Checked: 4, Notified: 4}, result)
	assert.ElementsMatch(t, []string{
		"owner@agency.test", "jane@client.test",
		"owner@agency.test", "owner@agency.test", "owner@agency.test",
	}, f.outbox.recipients())

	notifications, err := svc.List(f.ctx, f.owner)
	require.NoError(t, err)
	require.Len(t, notifications, 4)
	byItem := map[string]*models.Notification{}
	for _, n := range notifications {
		assert.Equal(t, models.NotificationStatusSent, n.Status)
		byItem[n.ItemName] = n
	}
	assert.Equal(t, models.NotifyThreeDays, byItem["soon.test"].NotificationType)
	assert.Equal(t, models.NotifyExpiryDay, byItem["expired.test"].NotificationType)
	assert.Equal(t, models.NotifyTwoWeeks, byItem["Hostinger"].NotificationType)
	assert.Equal(t, models.NotifyOneMonth, byItem["Bakery App"].NotificationType)

	again, err := svc.Scan(f.ctx, f.owner)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Notified)
	assert.Equal(t, 4, again.Skipped)
	assert.Len(t, f.outbox.messages(), 5)
}

func TestNotificationService_NextThresholdNotifiesAgain(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.HostingAccounts.Create(f.ctx, f.owner.TenantID, &models.HostingAccount{Provider: "Hostinger", ExpirationDate: f.at(5 * day)})
	require.NoError(t, err)
	svc := newTestNotificationService(f, f.cache)

	_, err = svc.Scan(f.ctx, f.owner)
	require.NoError(t, err)
	f.clock.Advance(3 * day)
	result, err := svc.Scan(f.ctx, f.owner)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Notified)

	subjects := f.outbox.messages()
	require.Len(t, subjects, 2)
	assert.Contains(t, subjects[0].Body, "in two weeks")
	assert.Contains(t, subjects[1].Body, "in three days")
}

func TestNotificationService_DisabledThresholdSkipped(t *testing.T) {
	f := newFixture(t)
	seedNotices(t, f)
	svc := newTestNotificationService(f, f.cache)
	off := false
	_, err := svc.UpdateSettings(f.ctx, f.owner, models.UpdateNotificationSettingRequest{NotifyThreeDays: &off})
	require.NoError(t, err)

	result, err := svc.Scan(f.ctx, f.owner)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Notified)
	assert.Equal(t, 1, result.Skipped)
	assert.NotContains(t, f.outbox.recipients(), "jane@client.test")
}

func TestNotificationService_EmailDisabledKeepsPendingRecords(t *testing.T) {
	f := newFixture(t)
	seedNotices(t, f)
	svc := newTestNotificationService(f, f.cache)
	off := false
	setting, err := svc.UpdateSettings(f.ctx, f.owner, models.UpdateNotificationSettingRequest{EnableEmailNotifications: &off})
	require.NoError(t, err)
	assert.True(t, setting.NotifyOneMonth)

	result, err := svc.Scan(f.ctx, f.owner)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Notified)
	assert.Empty(t, f.outbox.messages())

	notifications, err := svc.List(f.ctx, f.owner)
	require.NoError(t, err)
	require.Len(t, notifications, 4)
	for _, n := range notifications {
		assert.Equal(t, models.NotificationStatusPending, n.Status)
	}
}

func TestNotificationService_FailedSendIsRetried(t *testing.T) {
	f := newFixture(t)
	seedNotices(t, f)
	f.outbox.fail = func(mailer.Message) error { return errRelayDown }
	svc := newTestNotificationService(f, f.cache)

	result, err := svc.Scan(f.ctx, f.owner)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Failed)

	notifications, err := svc.List(f.ctx, f.owner)
	require.NoError(t, err)
	for _, n := range notifications {
		assert.Equal(t, models.NotificationStatusFailed, n.Status)
	}

	f.outbox.fail = nil
	retry, err := svc.Scan(f.ctx, f.owner)
	require.NoError(t, err)
	assert.Equal(t, 4, retry.Notified)
}

type brokenCache struct {
	cache.Cache
}

func (brokenCache) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	return false, errors.New("redis: connection refused")
}

func TestNotificationService_SendsWhenDedupeUnavailable(t *testing.T) {
	f := newFixture(t)
	seedNotices(t, f)
	svc := newTestNotificationService(f, brokenCache{Cache: f.cache})

	result, err := svc.Scan(f.ctx, f.owner)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Notified)
}

func TestNotificationService_SettingsDefaults(t *testing.T) {
	f := newFixture(t)
	svc := newTestNotificationService(f, f.cache)

	setting, err := svc.GetSettings(f.ctx, f.owner)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultNotificationSetting(f.owner.TenantID), setting)

	stored, err := f.store.Settings.Get(f.ctx, f.owner.TenantID)
	require.NoError(t, err)
	assert.True(t, stored.EnableEmailNotifications)
}

func TestNotificationService_OwnerOnly(t *testing.T) {
	f := newFixture(t)
	svc := newTestNotificationService(f, f.cache)
	member := f.member(models.Permissions{CanCreate: true, Modules: models.ModulePermissions{Sites: true, Hosting: true, MobileApps: true}})

	_, err := svc.Scan(f.ctx, member)
	assert.ErrorIs(t, err, ErrPermissionDenied)
	_, err = svc.List(f.ctx, member)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestNotificationService_ScanAll(t *testing.T) {
	f := newFixture(t)
	seedNotices(t, f)
	require.NoError(t, f.store.Users.Create(f.ctx, &models.Tenant{ID: "owner-2", Email: "two@agency.test"}))
	_, err := f.store.HostingAccounts.Create(f.ctx, "owner-2", &models.HostingAccount{Provider: "Bluehost", ExpirationDate: f.at(day)})
	require.NoError(t, err)
	svc := newTestNotificationService(f, f.cache)

	require.NoError(t, svc.ScanAll(f.ctx))
	assert.Contains(t, f.outbox.recipients(), "two@agency.test")
	assert.Len(t, f.outbox.messages(), 6)
}

func TestExpiryNotice(t *testing.T) {
	item := ExpiringItem{Type: models.ItemTypeSite, Name: "bakery.test", ExpiryDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)}
	msg := expiryNotice("owner@agency.test", item, models.NotifyOneMonth)

	assert.Equal(t, "Expiration Notice: bakery.test", msg.Subject)
	assert.Contains(t, msg.Body, `Your site "bakery.test" is expiring in one month on April 1, 2026.`)
	assert.False(t, mailer.IsHTML(msg.Body))
}
