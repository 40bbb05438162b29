package models

import "time"

// SiteTypeMobileApp is the site type recorded for the site created alongside a mobile app.
const SiteTypeMobileApp = "Mobile App"

// Site is a website managed for a client. ClientName and HostName are copies taken at
// write time and are not refreshed when the referenced records change.
type Site struct {
	ID                      string     `json:"id" firestore:"-"`
	UserID                  string     `json:"userId" firestore:"userId"`
	Name                    string     `json:"name" firestore:"name"`
	Type                    string     `json:"type" firestore:"type"`
	URL                     string     `json:"url" firestore:"url"`
	ClientID                string     `json:"clientId,omitempty" firestore:"clientId,omitempty"`
	ClientName              string     `json:"clientName,omitempty" firestore:"clientName,omitempty"`
	HostID                  string     `json:"hostId,omitempty" firestore:"hostId,omitempty"`
	HostName                string     `json:"hostName,omitempty" firestore:"hostName,omitempty"`
	DomainPurchasedFrom     string     `json:"domainPurchasedFrom,omitempty" firestore:"domainPurchasedFrom,omitempty"`
	ExpirationDate          *time.Time `json:"expirationDate,omitempty" firestore:"expirationDate,omitempty"`
	NameChanged             bool       `json:"nameChanged" firestore:"nameChanged"`
	OldDomainName           string     `json:"oldDomainName,omitempty" firestore:"oldDomainName,omitempty"`
	OldDomainExpirationDate *time.Time `json:"oldDomainExpirationDate,omitempty" firestore:"oldDomainExpirationDate,omitempty"`
	AmountPaid              float64    `json:"amountPaid" firestore:"amountPaid"`
	AmountUsedForCreation   float64    `json:"amountUsedForCreation" firestore:"amountUsedForCreation"`
	LastModifiedBy          string     `json:"lastModifiedBy,omitempty" firestore:"lastModifiedBy,omitempty"`
	LastModifiedAt          *time.Time `json:"lastModifiedAt,omitempty" firestore:"lastModifiedAt,omitempty"`
}

func (s *Site) GetID() string               { return s.ID }
func (s *Site) SetID(id string)             { s.ID = id }
func (s *Site) GetTenantID() string         { return s.UserID }
func (s *Site) SetTenantID(tenantID string) { s.UserID = tenantID }
