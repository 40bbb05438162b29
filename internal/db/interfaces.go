package db

import (
	"context"
	"time"

	"stackassist-backend/internal/models"
)

// Repository is the tenant-scoped contract shared by every owned entity type.
// List filters on the owner field. Get, Update and Delete re-check ownership and
// report records of other tenants as ErrNotFound.
type Repository[T any] interface {
	List(ctx context.Context, tenantID string) ([]*T, error)
	Get(ctx context.Context, tenantID, id string) (*T, error)
	Create(ctx context.Context, tenantID string, rec *T) (string, error)
	Update(ctx context.Context, tenantID, id string, rec *T) error
	Delete(ctx context.Context, tenantID, id string) error
}

// ClientRepository stores clients. Create and Update fail with a *ConflictError when
// the lower-cased email or the phone is already used by another client of the tenant.
type ClientRepository interface {
	Repository[models.Client]
}

type SiteRepository interface {
	Repository[models.Site]
}

type HostingAccountRepository interface {
	Repository[models.HostingAccount]
}

type MobileAppRepository interface {
	Repository[models.MobileApp]
}

type DeveloperAccountRepository interface {
	Repository[models.DeveloperAccount]
}

type TaskRepository interface {
	Repository[models.Task]
}

type NotificationRepository interface {
	Repository[models.Notification]
}

type MessageRepository interface {
	Repository[models.Message]
}

// UserRepository stores tenant profiles keyed by identity id.
type UserRepository interface {
	Get(ctx context.Context, userID string) (*models.Tenant, error)
	Create(ctx context.Context, tenant *models.Tenant) error
	ListIDs(ctx context.Context) ([]string, error)
}

// NotificationSettingRepository stores one settings document per tenant.
type NotificationSettingRepository interface {
	Get(ctx context.Context, tenantID string) (*models.NotificationSetting, error)
	Save(ctx context.Context, setting *models.NotificationSetting) error
}

// TeamRepository stores team members and their invites.
type TeamRepository interface {
	ListMembers(ctx context.Context, ownerID string) ([]*models.TeamMember, error)
	GetMember(ctx context.Context, ownerID, memberID string) (*models.TeamMember, error)
	// CreateMemberWithInvite writes the member and the invite together. It fails with a
	// *ConflictError when the email already belongs to the owner's team.
	CreateMemberWithInvite(ctx context.Context, member *models.TeamMember, invite *models.TeamInvite) error
	UpdateMember(ctx context.Context, ownerID, memberID string, member *models.TeamMember) error
	DeleteMember(ctx context.Context, ownerID, memberID string) error
	FindMembersByUserID(ctx context.Context, userID string) ([]*models.TeamMember, error)
	FindMembersByEmail(ctx context.Context, email string) ([]*models.TeamMember, error)
	// ActivateMember marks a pending member active for userID and accepts the matching invite.
	ActivateMember(ctx context.Context, member *models.TeamMember, userID string, at time.Time) error
	ListInvites(ctx context.Context, ownerID string) ([]*models.TeamInvite, error)
	UpdateInviteDelivery(ctx context.Context, ownerID, inviteID string, delivery models.InviteDelivery) error
}

// Store bundles every repository the services need.
type Store struct {
	Users             UserRepository
	Clients           ClientRepository
	Sites             SiteRepository
	HostingAccounts   HostingAccountRepository
	MobileApps        MobileAppRepository
	DeveloperAccounts DeveloperAccountRepository
	Tasks             TaskRepository
	Team              TeamRepository
	Notifications     NotificationRepository
	Settings          NotificationSettingRepository
	Messages          MessageRepository
}
