package models

import "time"

// Hosting plan types.
const (
	HostTypeShared    = "shared"
	HostTypeReseller  = "reseller"
	HostTypeVPS       = "vps"
	HostTypeDedicated = "dedicated"
)

// Hosting account states.
const (
	HostingStatusActive       = "active"
	HostingStatusSuspended    = "suspended"
	HostingStatusReported     = "reported"
	HostingStatusExpired      = "expired"
	HostingStatusNeedsRenewal = "needs renewal"
	HostingStatusOther        = "other"
)

// HostingAccount is a hosting provider account. PasswordHint is stored encrypted.
type HostingAccount struct {
	ID             string     `json:"id" firestore:"-"`
	UserID         string     `json:"userId" firestore:"userId"`
	Provider       string     `json:"provider" firestore:"provider"`
	ServerLoginURL string     `json:"serverLoginUrl,omitempty" firestore:"serverLoginUrl,omitempty"`
	HostType       string     `json:"hostType,omitempty" firestore:"hostType,omitempty"`
	Username       string     `json:"username,omitempty" firestore:"username,omitempty"`
	Email          string     `json:"email,omitempty" firestore:"email,omitempty"`
	PasswordHint   string     `json:"passwordHint,omitempty" firestore:"passwordHint,omitempty"`
	ExpirationDate *time.Time `json:"expirationDate,omitempty" firestore:"expirationDate,omitempty"`
	Status         string     `json:"status" firestore:"status"`
}

func (h *HostingAccount) GetID() string               { return h.ID }
func (h *HostingAccount) SetID(id string)             { h.ID = id }
func (h *HostingAccount) GetTenantID() string         { return h.UserID }
func (h *HostingAccount) SetTenantID(tenantID string) { h.UserID = tenantID }
