package models

import "time"

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	CompanyName string `json:"companyName" validate:"required,max=200"`
}

// CreateClientRequest is the body for creating a client.
type CreateClientRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required,max=40"`
	Company string `json:"company" validate:"max=200"`
	Address string `json:"address" validate:"max=500"`
	Notes   string `json:"notes" validate:"max=4000"`
}

// UpdateClientRequest uses pointers to tell omitted fields from cleared ones.
type UpdateClientRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=40"`
	Company *string `json:"company,omitempty" validate:"omitempty,max=200"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=500"`
	Notes   *string `json:"notes,omitempty" validate:"omitempty,max=4000"`
	Status  *string `json:"status,omitempty" validate:"omitempty,oneof=pending_approval approved rejected"`
}

// SiteRequest is the body for creating or replacing a site.
type SiteRequest struct {
	Name                    string     `json:"name" validate:"required,max=200"`
	Type                    string     `json:"type" validate:"max=100"`
	URL                     string     `json:"url" validate:"required"`
	ClientID                string     `json:"clientId"`
	HostID                  string     `json:"hostId"`
	DomainPurchasedFrom     string     `json:"domainPurchasedFrom"`
	ExpirationDate          *time.Time `json:"expirationDate"`
	NameChanged             bool       `json:"nameChanged"`
	OldDomainName           string     `json:"oldDomainName"`
	OldDomainExpirationDate *time.Time `json:"oldDomainExpirationDate"`
	AmountPaid              float64    `json:"amountPaid" validate:"gte=0"`
	AmountUsedForCreation   float64    `json:"amountUsedForCreation" validate:"gte=0"`
}

// HostingAccountRequest is the body for creating or replacing a hosting account.
type HostingAccountRequest struct {
	Provider       string     `json:"provider" validate:"required,max=200"`
	ServerLoginURL string     `json:"serverLoginUrl"`
	HostType       string     `json:"hostType" validate:"omitempty,oneof=shared reseller vps dedicated"`
	Username       string     `json:"username"`
	Email          string     `json:"email" validate:"omitempty,email"`
	PasswordHint   string     `json:"passwordHint"`
	ExpirationDate *time.Time `json:"expirationDate"`
	Status         string     `json:"status" validate:"omitempty,oneof=active suspended reported expired 'needs renewal' other"`
}

// MobileAppRequest is the body for creating or replacing a mobile app.
type MobileAppRequest struct {
	AppName                  string     `json:"appName" validate:"required,max=200"`
	Platform                 string     `json:"platform" validate:"required,oneof=iOS Android Both"`
	ClientID                 string     `json:"clientId" validate:"required"`
	AppDomain                string     `json:"appDomain"`
	IOSDeveloperAccountID    string     `json:"iosDeveloperAccountId"`
	GoogleDeveloperAccountID string     `json:"googleDeveloperAccountId"`
	AppleLiveURL             string     `json:"appleLiveUrl"`
	GoogleLiveURL            string     `json:"googleLiveUrl"`
	AppCost                  float64    `json:"appCost" validate:"gte=0"`
	AmountSpent              float64    `json:"amountSpent" validate:"gte=0"`
	DateCreated              *time.Time `json:"dateCreated"`
	RenewalDate              *time.Time `json:"renewalDate"`
	Status                   string     `json:"status"`
	Version                  string     `json:"version"`
}

// DeveloperAccountRequest is the body for creating or replacing a developer account.
type DeveloperAccountRequest struct {
	AccountType  string     `json:"accountType" validate:"required,oneof=apple google"`
	Email        string     `json:"email" validate:"required,email"`
	MobileNumber string     `json:"mobileNumber"`
	CompanyName  string     `json:"companyName"`
	DUNS         string     `json:"duns"`
	ExpiryDate   *time.Time `json:"expiryDate"`
	Status       string     `json:"status"`
}

// CreateTaskRequest is the body for creating a task.
type CreateTaskRequest struct {
	Title       string     `json:"title" validate:"required,max=300"`
	Description string     `json:"description"`
	Status      string     `json:"status" validate:"omitempty,oneof=todo in-progress completed"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `json:"dueDate"`
}

// UpdateTaskRequest carries optional task changes. A status change is appended to
// the task's status history.
type UpdateTaskRequest struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,max=300"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty" validate:"omitempty,oneof=todo in-progress completed"`
	Priority    *string    `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

// UpdateTaskStatusRequest is the body of PATCH /tasks/:id/status.
type UpdateTaskStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=todo in-progress completed"`
}

// InviteMemberRequest is the body for inviting a team member.
type InviteMemberRequest struct {
	Email       string       `json:"email" validate:"required,email"`
	Name        string       `json:"name" validate:"required,max=200"`
	Role        string       `json:"role" validate:"required,max=100"`
	Permissions *Permissions `json:"permissions,omitempty"`
}

// UpdateMemberRequest changes a member's permissions, role or status.
type UpdateMemberRequest struct {
	Name        *string      `json:"name,omitempty" validate:"omitempty,max=200"`
	Role        *string      `json:"role,omitempty" validate:"omitempty,max=100"`
	Permissions *Permissions `json:"permissions,omitempty"`
	Status      *string      `json:"status,omitempty" validate:"omitempty,oneof=active pending inactive"`
}

// SendInvitationEmailRequest is the body of POST /team/invitations/send.
type SendInvitationEmailRequest struct {
	Email         string `json:"email" validate:"required,email"`
	TeamOwnerName string `json:"teamOwnerName"`
	CompanyName   string `json:"companyName"`
}

// UpdateNotificationSettingRequest replaces the tenant's notice preferences.
type UpdateNotificationSettingRequest struct {
	EnableEmailNotifications *bool `json:"enableEmailNotifications,omitempty"`
	NotifyOneMonth           *bool `json:"notifyOneMonth,omitempty"`
	NotifyTwoWeeks           *bool `json:"notifyTwoWeeks,omitempty"`
	NotifyThreeDays          *bool `json:"notifyThreeDays,omitempty"`
	NotifyOnExpiryDay        *bool `json:"notifyOnExpiryDay,omitempty"`
}

// PostMessageRequest is the body of POST /messages.
type PostMessageRequest struct {
	Content string `json:"content" validate:"required,max=4000"`
}

// OnboardClientRequest is submitted by a client through the onboarding link.
type OnboardClientRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,max=40"`
}
