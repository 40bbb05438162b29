package models

import "time"

// Team member states. Members are created pending and become active once the
// invited person signs in.
const (
	MemberStatusActive   = "active"
	MemberStatusPending  = "pending"
	MemberStatusInactive = "inactive"
)

// Module names a section of the dashboard that can be granted to a team member.
type Module string

const (
	ModuleClients           Module = "clients"
	ModuleSites             Module = "sites"
	ModuleHosting           Module = "hosting"
	ModuleMobileApps        Module = "mobileApps"
	ModuleDeveloperAccounts Module = "developerAccounts"
	ModuleTasks             Module = "tasks"
)

// Modules lists every grantable module.
var Modules = []Module{
	ModuleClients,
	ModuleSites,
	ModuleHosting,
	ModuleMobileApps,
	ModuleDeveloperAccounts,
	ModuleTasks,
}

// ModulePermissions holds one visibility flag per dashboard module.
type ModulePermissions struct {
	Clients           bool `json:"clients" firestore:"clients"`
	Sites             bool `json:"sites" firestore:"sites"`
	Hosting           bool `json:"hosting" firestore:"hosting"`
	MobileApps        bool `json:"mobileApps" firestore:"mobileApps"`
	DeveloperAccounts bool `json:"developerAccounts" firestore:"developerAccounts"`
	Tasks             bool `json:"tasks" firestore:"tasks"`
}

// Allows reports whether module is enabled.
func (m ModulePermissions) Allows(module Module) bool {
	switch module {
	case ModuleClients:
		return m.Clients
	case ModuleSites:
		return m.Sites
	case ModuleHosting:
		return m.Hosting
	case ModuleMobileApps:
		return m.MobileApps
	case ModuleDeveloperAccounts:
		return m.DeveloperAccounts
	case ModuleTasks:
		return m.Tasks
	}
	return false
}

// Permissions is the delegated permission set of a team member.
type Permissions struct {
	CanCreate bool              `json:"canCreate" firestore:"canCreate"`
	CanEdit   bool              `json:"canEdit" firestore:"canEdit"`
	CanDelete bool              `json:"canDelete" firestore:"canDelete"`
	Modules   ModulePermissions `json:"modules" firestore:"modules"`
}

// DefaultPermissions is granted to new invitees: create only, no modules.
func DefaultPermissions() Permissions {
	return Permissions{CanCreate: true}
}

// TeamMember grants a person delegated access to the owner's tenant.
// UserID is the member's own identity and stays empty until the invite is accepted.
type TeamMember struct {
	ID           string      `json:"id" firestore:"-"`
	OwnerID      string      `json:"ownerId" firestore:"ownerId"`
	UserID       string      `json:"userId,omitempty" firestore:"userId,omitempty"`
	Email        string      `json:"email" firestore:"email"`
	Name         string      `json:"name" firestore:"name"`
	Role         string      `json:"role" firestore:"role"`
	Permissions  Permissions `json:"permissions" firestore:"permissions"`
	Status       string      `json:"status" firestore:"status"`
	InvitedBy    string      `json:"invitedBy" firestore:"invitedBy"`
	CreatedAt    time.Time   `json:"createdAt" firestore:"createdAt"`
	LastModified time.Time   `json:"lastModified" firestore:"lastModified"`
	ModifiedBy   string      `json:"modifiedBy,omitempty" firestore:"modifiedBy,omitempty"`
}

func (t *TeamMember) GetID() string               { return t.ID }
func (t *TeamMember) SetID(id string)             { t.ID = id }
func (t *TeamMember) GetTenantID() string         { return t.OwnerID }
func (t *TeamMember) SetTenantID(tenantID string) { t.OwnerID = tenantID }

// Invite states.
const (
	InviteStatusPending  = "pending"
	InviteStatusAccepted = "accepted"
)

// InviteDelivery records which invitation email legs went out.
type InviteDelivery struct {
	ResetLinkSent  bool   `json:"resetLinkSent" firestore:"resetLinkSent"`
	InvitationSent bool   `json:"invitationSent" firestore:"invitationSent"`
	LastError      string `json:"lastError,omitempty" firestore:"lastError,omitempty"`
}

// TeamInvite pairs an invited email with an owner until the invitee registers.
type TeamInvite struct {
	ID             string         `json:"id" firestore:"-"`
	OwnerID        string         `json:"ownerId" firestore:"ownerId"`
	OwnerEmail     string         `json:"ownerEmail" firestore:"ownerEmail"`
	Email          string         `json:"email" firestore:"email"`
	CompanyName    string         `json:"companyName" firestore:"companyName"`
	Status         string         `json:"status" firestore:"status"`
	Permissions    Permissions    `json:"permissions" firestore:"permissions"`
	DeliveryStatus InviteDelivery `json:"deliveryStatus" firestore:"deliveryStatus"`
	CreatedAt      time.Time      `json:"createdAt" firestore:"createdAt"`
	AcceptedAt     *time.Time     `json:"acceptedAt,omitempty" firestore:"acceptedAt,omitempty"`
}

func (t *TeamInvite) GetID() string               { return t.ID }
func (t *TeamInvite) SetID(id string)             { t.ID = id }
func (t *TeamInvite) GetTenantID() string         { return t.OwnerID }
func (t *TeamInvite) SetTenantID(tenantID string) { t.OwnerID = tenantID }
