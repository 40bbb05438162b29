package models

import "time"

// Item kinds that carry an expiry date.
const (
	ItemTypeSite    = "site"
	ItemTypeHosting = "hosting"
	ItemTypeApp     = "app"
)

// NotificationType is the expiry threshold that produced a notification.
type NotificationType string

const (
	NotifyOneMonth  NotificationType = "one_month"
	NotifyTwoWeeks  NotificationType = "two_weeks"
	NotifyThreeDays NotificationType = "three_days"
	NotifyExpiryDay NotificationType = "expiry_day"
)

// Timeframe is the phrase used for the threshold in notice emails.
func (n NotificationType) Timeframe() string {
	switch n {
	case NotifyOneMonth:
		return "in one month"
	case NotifyTwoWeeks:
		return "in two weeks"
	case NotifyThreeDays:
		return "in three days"
	case NotifyExpiryDay:
		return "today"
	}
	return ""
}

// Notification delivery states.
const (
	NotificationStatusPending = "pending"
	NotificationStatusSent    = "sent"
	NotificationStatusFailed  = "failed"
)

// Notification is the record written for each expiry notice.
type Notification struct {
	ID               string           `json:"id" firestore:"-"`
	UserID           string           `json:"userId" firestore:"userId"`
	Type             string           `json:"type" firestore:"type"`
	ItemID           string           `json:"itemId" firestore:"itemId"`
	ItemName         string           `json:"itemName" firestore:"itemName"`
	ExpiryDate       time.Time        `json:"expiryDate" firestore:"expiryDate"`
	NotificationDate time.Time        `json:"notificationDate" firestore:"notificationDate"`
	Status           string           `json:"status" firestore:"status"`
	NotificationType NotificationType `json:"notificationType" firestore:"notificationType"`
}

func (n *Notification) GetID() string               { return n.ID }
func (n *Notification) SetID(id string)             { n.ID = id }
func (n *Notification) GetTenantID() string         { return n.UserID }
func (n *Notification) SetTenantID(tenantID string) { n.UserID = tenantID }

// NotificationSetting holds a tenant's expiry notice preferences. One per tenant,
// keyed by the tenant id.
type NotificationSetting struct {
	UserID                   string `json:"userId" firestore:"userId"`
	EnableEmailNotifications bool   `json:"enableEmailNotifications" firestore:"enableEmailNotifications"`
	NotifyOneMonth           bool   `json:"notifyOneMonth" firestore:"notifyOneMonth"`
	NotifyTwoWeeks           bool   `json:"notifyTwoWeeks" firestore:"notifyTwoWeeks"`
	NotifyThreeDays          bool   `json:"notifyThreeDays" firestore:"notifyThreeDays"`
	NotifyOnExpiryDay        bool   `json:"notifyOnExpiryDay" firestore:"notifyOnExpiryDay"`
}

// DefaultNotificationSetting enables every threshold.
func DefaultNotificationSetting(tenantID string) *NotificationSetting {
	return &NotificationSetting{
		UserID:                   tenantID,
		EnableEmailNotifications: true,
		NotifyOneMonth:           true,
		NotifyTwoWeeks:           true,
		NotifyThreeDays:          true,
		NotifyOnExpiryDay:        true,
	}
}

// Enabled reports whether notices for threshold n are switched on.
func (s *NotificationSetting) Enabled(n NotificationType) bool {
	switch n {
	case NotifyOneMonth:
		return s.NotifyOneMonth
	case NotifyTwoWeeks:
		return s.NotifyTwoWeeks
	case NotifyThreeDays:
		return s.NotifyThreeDays
	case NotifyExpiryDay:
		return s.NotifyOnExpiryDay
	}
	return false
}
