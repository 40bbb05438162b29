package core

import (
	"context"
	"time"

	"stackassist-backend/internal/models"
	"stackassist-backend/pkg/mailer"
)

// IdentityProvider is the account backend behind sign-in and registration.
type IdentityProvider interface {
	// SignIn verifies a password and returns fresh tokens. Wrong credentials yield
	// ErrInvalidCredentials.
	SignIn(ctx context.Context, email, password string) (*models.AuthTokens, error)
	CreateUser(ctx context.Context, email, password string) (string, error)
	DeleteUser(ctx context.Context, uid string) error
	RevokeSessions(ctx context.Context, uid string) error
	// InviteLink returns a password setup link for email, creating the account first
	// when it does not exist yet.
	InviteLink(ctx context.Context, email, continueURL string) (string, error)
}

// Outbox hands an email to the delivery pipeline.
type Outbox interface {
	Deliver(ctx context.Context, msg mailer.Message) error
}

// ClientService manages the tenant's clients.
type ClientService interface {
	List(ctx context.Context, p models.Principal) ([]*models.Client, error)
	Get(ctx context.Context, p models.Principal, id string) (*models.Client, error)
	Create(ctx context.Context, p models.Principal, req models.CreateClientRequest) (*models.Client, error)
	Update(ctx context.Context, p models.Principal, id string, req models.UpdateClientRequest) (*models.Client, error)
	Delete(ctx context.Context, p models.Principal, id string) error
}

// SiteService manages websites.
type SiteService interface {
	List(ctx context.Context, p models.Principal) ([]*models.Site, error)
	Get(ctx context.Context, p models.Principal, id string) (*models.Site, error)
	Create(ctx context.Context, p models.Principal, req models.SiteRequest) (*models.Site, error)
	Update(ctx context.Context, p models.Principal, id string, req models.SiteRequest) (*models.Site, error)
	Delete(ctx context.Context, p models.Principal, id string) error
}

// HostingAccountService manages hosting accounts. Password hints are returned in clear.
type HostingAccountService interface {
	List(ctx context.Context, p models.Principal) ([]*models.HostingAccount, error)
	Get(ctx context.Context, p models.Principal, id string) (*models.HostingAccount, error)
	Create(ctx context.Context, p models.Principal, req models.HostingAccountRequest) (*models.HostingAccount, error)
	Update(ctx context.Context, p models.Principal, id string, req models.HostingAccountRequest) (*models.HostingAccount, error)
	Delete(ctx context.Context, p models.Principal, id string) error
}

// MobileAppService manages mobile apps. Creating an app also records a site for it.
type MobileAppService interface {
	List(ctx context.Context, p models.Principal) ([]*models.MobileApp, error)
	Get(ctx context.Context, p models.Principal, id string) (*models.MobileApp, error)
	Create(ctx context.Context, p models.Principal, req models.MobileAppRequest) (*models.MobileApp, error)
	Update(ctx context.Context, p models.Principal, id string, req models.MobileAppRequest) (*models.MobileApp, error)
	Delete(ctx context.Context, p models.Principal, id string) error
}

// DeveloperAccountService manages developer accounts with their derived app counts.
type DeveloperAccountService interface {
	List(ctx context.Context, p models.Principal) ([]*models.DeveloperAccount, error)
	Get(ctx context.Context, p models.Principal, id string) (*models.DeveloperAccount, error)
	Create(ctx context.Context, p models.Principal, req models.DeveloperAccountRequest) (*models.DeveloperAccount, error)
	Update(ctx context.Context, p models.Principal, id string, req models.DeveloperAccountRequest) (*models.DeveloperAccount, error)
	Delete(ctx context.Context, p models.Principal, id string) error
}

// TaskService manages tasks and their status history.
type TaskService interface {
	List(ctx context.Context, p models.Principal) ([]*models.Task, error)
	Get(ctx context.Context, p models.Principal, id string) (*models.Task, error)
	Create(ctx context.Context, p models.Principal, req models.CreateTaskRequest) (*models.Task, error)
	Update(ctx context.Context, p models.Principal, id string, req models.UpdateTaskRequest) (*models.Task, error)
	UpdateStatus(ctx context.Context, p models.Principal, id, status string) (*models.Task, error)
	Delete(ctx context.Context, p models.Principal, id string) error
}

// TeamService manages delegated access. Every operation is reserved to the owner.
type TeamService interface {
	ListMembers(ctx context.Context, p models.Principal) ([]*models.TeamMember, error)
	ListInvites(ctx context.Context, p models.Principal) ([]*models.TeamInvite, error)
	// Invite stores a pending member and its invite, then sends the invitation emails.
	// When an email leg fails the member is still returned together with an error
	// matching ErrInvitationDelivery.
	Invite(ctx context.Context, p models.Principal, req models.InviteMemberRequest) (*models.TeamMember, error)
	UpdateMember(ctx context.Context, p models.Principal, id string, req models.UpdateMemberRequest) (*models.TeamMember, error)
	RemoveMember(ctx context.Context, p models.Principal, id string) error
	SendInvitationEmail(ctx context.Context, p models.Principal, req models.SendInvitationEmailRequest) error
}

// NotificationService runs expiry scans and holds the tenant's notice preferences.
type NotificationService interface {
	List(ctx context.Context, p models.Principal) ([]*models.Notification, error)
	GetSettings(ctx context.Context, p models.Principal) (*models.NotificationSetting, error)
	UpdateSettings(ctx context.Context, p models.Principal, req models.UpdateNotificationSettingRequest) (*models.NotificationSetting, error)
	Scan(ctx context.Context, p models.Principal) (*ScanResult, error)
	ScanTenant(ctx context.Context, tenantID string, now time.Time) (*ScanResult, error)
	ScanAll(ctx context.Context) error
}

// ReportService computes the dashboard and report views.
type ReportService interface {
	Summary(ctx context.Context, p models.Principal) (*DashboardSummary, error)
	Analytics(ctx context.Context, p models.Principal) (*ExpiryAnalytics, error)
	CriticalAlerts(ctx context.Context, p models.Principal) ([]ExpiringItem, error)
	UpcomingExpirations(ctx context.Context, p models.Principal, days int, itemType string) ([]ExpiringItem, error)
	TaskReport(ctx context.Context, p models.Principal) (*TaskReport, error)
}

// MessageService is the tenant's team chat.
type MessageService interface {
	List(ctx context.Context, p models.Principal) ([]*models.Message, error)
	Post(ctx context.Context, p models.Principal, req models.PostMessageRequest) (*models.Message, error)
}

// OnboardingService issues and redeems client self-onboarding links.
type OnboardingService interface {
	Link(ctx context.Context, p models.Principal) (string, error)
	Describe(ctx context.Context, token string) (*OnboardingInfo, error)
	Submit(ctx context.Context, token string, req models.OnboardClientRequest) (*models.Client, error)
}

// AccountService returns the caller's profile.
type AccountService interface {
	Profile(ctx context.Context, p models.Principal) (*Profile, error)
}
