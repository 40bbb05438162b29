package models

import "time"

// Developer account kinds.
const (
	AccountTypeApple  = "apple"
	AccountTypeGoogle = "google"
)

// DeveloperAccountStatusPending is the status of a newly created account.
const DeveloperAccountStatusPending = "pending approval"

// DeveloperAccount is an Apple or Google developer program account.
// MobileAppsCount is derived on every read and never persisted.
type DeveloperAccount struct {
	ID              string     `json:"id" firestore:"-"`
	UserID          string     `json:"userId" firestore:"userId"`
	AccountType     string     `json:"accountType" firestore:"accountType"`
	Email           string     `json:"email" firestore:"email"`
	MobileNumber    string     `json:"mobileNumber,omitempty" firestore:"mobileNumber,omitempty"`
	CompanyName     string     `json:"companyName,omitempty" firestore:"companyName,omitempty"`
	DUNS            string     `json:"duns,omitempty" firestore:"duns,omitempty"`
	ExpiryDate      *time.Time `json:"expiryDate,omitempty" firestore:"expiryDate,omitempty"`
	Status          string     `json:"status" firestore:"status"`
	MobileAppsCount int        `json:"mobileAppsCount" firestore:"-"`
	CreatedAt       time.Time  `json:"createdAt" firestore:"createdAt"`
	LastModified    time.Time  `json:"lastModified" firestore:"lastModified"`
}

func (d *DeveloperAccount) GetID() string               { return d.ID }
func (d *DeveloperAccount) SetID(id string)             { d.ID = id }
func (d *DeveloperAccount) GetTenantID() string         { return d.UserID }
func (d *DeveloperAccount) SetTenantID(tenantID string) { d.UserID = tenantID }
