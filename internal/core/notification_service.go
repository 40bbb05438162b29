package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"stackassist-backend/internal/db"
	"stackassist-backend/internal/metrics"
	"stackassist-backend/internal/models"
	"stackassist-backend/pkg/cache"
	"stackassist-backend/pkg/mailer"
)

// noticeDedupeTTL outlives the longest threshold window, so a notice is sent once
// per item and threshold.
const noticeDedupeTTL = 35 * 24 * time.Hour

// ScanResult summarises one tenant's expiration scan.
type ScanResult struct {
	TenantID string `json:"tenantId"`
	Checked  int    `json:"checked"`
	Notified int    `json:"notified"`
	Skipped  int    `json:"skipped"`
	Failed   int    `json:"failed"`
}

type notificationService struct {
	store  *db.Store
	loader expiryLoader
	outbox Outbox
	cache  cache.Cache
	authz  *Authorizer
	clock  Clock
	logger *zap.Logger
}

// NewNotificationService creates a NotificationService. The cache remembers which
// notices were already sent.
func NewNotificationService(store *db.Store, outbox Outbox, c cache.Cache, authz *Authorizer, clock Clock, logger *zap.Logger) NotificationService {
	return &notificationService{
		store:  store,
		loader: newExpiryLoader(store),
		outbox: outbox,
		cache:  c,
		authz:  authz,
		clock:  clock,
		logger: logger,
	}
}

func (s *notificationService) List(ctx context.Context, p models.Principal) ([]*models.Notification, error) {
	if err := s.authz.Authorize(p, ObjectNotifications, ActionRead); err != nil {
		return nil, err
	}
	notifications, err := s.store.Notifications.List(ctx, p.TenantID)
	if err != nil {
		return nil, storeError("list notifications", err)
	}
	return notifications, nil
}

func (s *notificationService) GetSettings(ctx context.Context, p models.Principal) (*models.NotificationSetting, error) {
	if err := s.authz.Authorize(p, ObjectNotifications, ActionRead); err != nil {
		return nil, err
	}
	return s.settings(ctx, p.TenantID)
}

// settings loads the tenant's preferences, storing the defaults on first use.
func (s *notificationService) settings(ctx context.Context, tenantID string) (*models.NotificationSetting, error) {
	setting, err := s.store.Settings.Get(ctx, tenantID)
	if err == nil {
		return setting, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, storeError("get notification settings", err)
	}
	setting = models.DefaultNotificationSetting(tenantID)
	if err := s.store.Settings.Save(ctx, setting); err != nil {
		return nil, storeError("create notification settings", err)
	}
	return setting, nil
}

func (s *notificationService) UpdateSettings(ctx context.Context, p models.Principal, req models.UpdateNotificationSettingRequest) (*models.NotificationSetting, error) {
	if err := s.authz.Authorize(p, ObjectNotifications, ActionUpdate); err != nil {
		return nil, err
	}
	setting, err := s.settings(ctx, p.TenantID)
	if err != nil {
		return nil, err
	}
	if req.EnableEmailNotifications != nil {
		setting.EnableEmailNotifications = *req.EnableEmailNotifications
	}
	if req.NotifyOneMonth != nil {
		setting.NotifyOneMonth = *req.NotifyOneMonth
	}
	if req.NotifyTwoWeeks != nil {
		setting.NotifyTwoWeeks = *req.NotifyTwoWeeks
	}
	if req.NotifyThreeDays != nil {
		setting.NotifyThreeDays = *req.NotifyThreeDays
	}
	if req.NotifyOnExpiryDay != nil {
		setting.NotifyOnExpiryDay = *req.NotifyOnExpiryDay
	}
	if err := s.store.Settings.Save(ctx, setting); err != nil {
		return nil, storeError("save notification settings", err)
	}
	return setting, nil
}

func (s *notificationService) Scan(ctx context.Context, p models.Principal) (*ScanResult, error) {
	if err := s.authz.Authorize(p, ObjectNotifications, ActionCreate); err != nil {
		return nil, err
	}
	return s.ScanTenant(ctx, p.TenantID, s.clock.Now())
}

// ScanAll scans every registered tenant. A failing tenant does not stop the others.
func (s *notificationService) ScanAll(ctx context.Context) error {
	start := time.Now()
	ids, err := s.store.Users.ListIDs(ctx)
	if err != nil {
		metrics.RecordScan("all", time.Since(start), false)
		return storeError("list tenants", err)
	}

	var errs []error
	totals := ScanResult{}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		res, err := s.ScanTenant(ctx, id, s.clock.Now())
		if err != nil {
			s.logger.Error("expiration scan failed for tenant", zap.String("tenantId", id), zap.Error(err))
			errs = append(errs, fmt.Errorf("tenant %s: %w", id, err))
			continue
		}
		totals.Checked += res.Checked
		totals.Notified += res.Notified
		totals.Skipped += res.Skipped
		totals.Failed += res.Failed
	}

	err = errors.Join(errs...)
	metrics.RecordScan("all", time.Since(start), err == nil)
	s.logger.Info("expiration scan finished",
		zap.Int("tenants", len(ids)),
		zap.Int("checked", totals.Checked),
		zap.Int("notified", totals.Notified),
		zap.Int("skipped", totals.Skipped),
		zap.Int("failed", totals.Failed))
	return err
}

// ScanTenant writes a notification and emails the tenant and the client for every
// item that crossed an enabled threshold and was not notified for it yet.
func (s *notificationService) ScanTenant(ctx context.Context, tenantID string, now time.Time) (*ScanResult, error) {
	start := time.Now()
	result, err := s.scanTenant(ctx, tenantID, now)
	metrics.RecordScan("tenant", time.Since(start), err == nil)
	return result, err
}

func (s *notificationService) scanTenant(ctx context.Context, tenantID string, now time.Time) (*ScanResult, error) {
	setting, err := s.settings(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	items, err := s.loader.load(ctx, tenantID, allItemTypes(), now, monthsAhead(now, summaryMonths))
	if err != nil {
		return nil, err
	}

	var tenantEmail string
	if tenant, err := s.store.Users.Get(ctx, tenantID); err == nil {
		tenantEmail = tenant.Email
	} else if !errors.Is(err, db.ErrNotFound) {
		return nil, storeError("get tenant", err)
	}

	result := &ScanResult{TenantID: tenantID, Checked: len(items)}
	for _, item := range items {
		noticeType, ok := classifyNotice(item.DaysUntil)
		if !ok || !setting.Enabled(noticeType) {
			result.Skipped++
			continue
		}

		key := fmt.Sprintf("notified:%s:%s:%s:%s", tenantID, item.Type, item.ID, noticeType)
		first, err := s.cache.SetNX(ctx, key, now.Unix(), noticeDedupeTTL)
		if err != nil {
			s.logger.Warn("notice dedupe unavailable, sending anyway", zap.String("key", key), zap.Error(err))
			first = true
		}
		if !first {
			result.Skipped++
			continue
		}

		if err := s.notify(ctx, tenantID, tenantEmail, setting, item, noticeType, now); err != nil {
			s.logger.Warn("expiry notice failed",
				zap.String("tenantId", tenantID),
				zap.String("itemId", item.ID),
				zap.String("notificationType", string(noticeType)),
				zap.Error(err))
			if delErr := s.cache.Delete(ctx, key); delErr != nil {
				s.logger.Warn("failed to release notice dedupe key", zap.String("key", key), zap.Error(delErr))
			}
			result.Failed++
			continue
		}
		result.Notified++
	}
	return result, nil
}

func (s *notificationService) notify(ctx context.Context, tenantID, tenantEmail string, setting *models.NotificationSetting, item ExpiringItem, noticeType models.NotificationType, now time.Time) error {
	record := &models.Notification{
		Type:             item.Type,
		ItemID:           item.ID,
		ItemName:         item.Name,
		ExpiryDate:       item.ExpiryDate,
		NotificationDate: now,
		Status:           models.NotificationStatusPending,
		NotificationType: noticeType,
	}
	if _, err := s.store.Notifications.Create(ctx, tenantID, record); err != nil {
		return storeError("create notification", err)
	}
	if !setting.EnableEmailNotifications {
		metrics.RecordNotification(string(noticeType), record.Status)
		return nil
	}

	recipients := make([]string, 0, 2)
	if tenantEmail != "" {
		recipients = append(recipients, tenantEmail)
	}
	if item.ClientID != "" {
		client, err := s.store.Clients.Get(ctx, tenantID, item.ClientID)
		switch {
		case err == nil && client.Email != "":
			recipients = append(recipients, client.Email)
		case err != nil && !errors.Is(err, db.ErrNotFound):
			s.logger.Warn("failed to load client for expiry notice", zap.String("clientId", item.ClientID), zap.Error(err))
		}
	}

	var errs []error
	for _, to := range recipients {
		if err := s.outbox.Deliver(ctx, expiryNotice(to, item, noticeType)); err != nil {
			errs = append(errs, err)
		}
	}
	sendErr := errors.Join(errs...)

	record.Status = models.NotificationStatusSent
	if sendErr != nil {
		record.Status = models.NotificationStatusFailed
	}
	if err := s.store.Notifications.Update(ctx, tenantID, record.ID, record); err != nil {
		s.logger.Warn("failed to record notification status", zap.String("notificationId", record.ID), zap.Error(err))
	}
	metrics.RecordNotification(string(noticeType), record.Status)
	return sendErr
}

func expiryNotice(to string, item ExpiringItem, noticeType models.NotificationType) mailer.Message {
	return mailer.Message{
		To:      to,
		Subject: fmt.Sprintf("Expiration Notice: %s", item.Name),
		Body: fmt.Sprintf("Your %s %q is expiring %s on %s.\nPlease take necessary action to renew or update it.\nIf you have any questions, please contact support.\n",
			item.Type, item.Name, noticeType.Timeframe(), item.ExpiryDate.Format("January 2, 2006")),
	}
}
