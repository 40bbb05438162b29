package models

import "time"

// Tenant is the registered agency account. Its document ID is the Firebase Auth UID.
type Tenant struct {
	ID          string    `json:"id" firestore:"-"`
	Email       string    `json:"email" firestore:"email"`
	CompanyName string    `json:"companyName" firestore:"companyName"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt"`
}

// DefaultCompanyName is used when a tenant profile has no company name.
const DefaultCompanyName = "Your Company"

// DisplayCompanyName returns the company name or the fallback used in outgoing emails.
func (t *Tenant) DisplayCompanyName() string {
	if t == nil || t.CompanyName == "" {
		return DefaultCompanyName
	}
	return t.CompanyName
}
