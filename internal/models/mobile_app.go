package models

import "time"

// Mobile platforms.
const (
	PlatformIOS     = "iOS"
	PlatformAndroid = "Android"
	PlatformBoth    = "Both"
)

// MobileApp is a published app. ClientName is copied from the client at write time.
type MobileApp struct {
	ID                       string     `json:"id" firestore:"-"`
	UserID                   string     `json:"userId" firestore:"userId"`
	AppName                  string     `json:"appName" firestore:"appName"`
	Platform                 string     `json:"platform" firestore:"platform"`
	ClientID                 string     `json:"clientId" firestore:"clientId"`
	ClientName               string     `json:"clientName" firestore:"clientName"`
	AppDomain                string     `json:"appDomain,omitempty" firestore:"appDomain,omitempty"`
	IOSDeveloperAccountID    string     `json:"iosDeveloperAccountId,omitempty" firestore:"iosDeveloperAccountId,omitempty"`
	GoogleDeveloperAccountID string     `json:"googleDeveloperAccountId,omitempty" firestore:"googleDeveloperAccountId,omitempty"`
	AppleLiveURL             string     `json:"appleLiveUrl,omitempty" firestore:"appleLiveUrl,omitempty"`
	GoogleLiveURL            string     `json:"googleLiveUrl,omitempty" firestore:"googleLiveUrl,omitempty"`
	AppCost                  float64    `json:"appCost" firestore:"appCost"`
	AmountSpent              float64    `json:"amountSpent" firestore:"amountSpent"`
	DateCreated              *time.Time `json:"dateCreated,omitempty" firestore:"dateCreated,omitempty"`
	RenewalDate              *time.Time `json:"renewalDate,omitempty" firestore:"renewalDate,omitempty"`
	Status                   string     `json:"status,omitempty" firestore:"status,omitempty"`
	Version                  string     `json:"version,omitempty" firestore:"version,omitempty"`
}

func (m *MobileApp) GetID() string               { return m.ID }
func (m *MobileApp) SetID(id string)             { m.ID = id }
func (m *MobileApp) GetTenantID() string         { return m.UserID }
func (m *MobileApp) SetTenantID(tenantID string) { m.UserID = tenantID }

// UsesDeveloperAccount reports whether either store listing is published under accountID.
func (m *MobileApp) UsesDeveloperAccount(accountID string) bool {
	if accountID == "" {
		return false
	}
	return m.IOSDeveloperAccountID == accountID || m.GoogleDeveloperAccountID == accountID
}
