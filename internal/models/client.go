package models

import "time"

// Client approval states. Self-onboarded clients start pending approval.
const (
	ClientStatusPendingApproval = "pending_approval"
	ClientStatusApproved        = "approved"
	ClientStatusRejected        = "rejected"
)

// Client is a customer of the agency.
type Client struct {
	ID            string     `json:"id" firestore:"-"`
	UserID        string     `json:"userId" firestore:"userId"`
	Name          string     `json:"name" firestore:"name"`
	Email         string     `json:"email" firestore:"email"`
	EmailLower    string     `json:"-" firestore:"emailLower"` // uniqueness key, always strings.ToLower(Email)
	Phone         string     `json:"phone" firestore:"phone"`
	Company       string     `json:"company,omitempty" firestore:"company,omitempty"`
	Address       string     `json:"address,omitempty" firestore:"address,omitempty"`
	Notes         string     `json:"notes,omitempty" firestore:"notes,omitempty"`
	SelfOnboarded bool       `json:"selfOnboarded,omitempty" firestore:"selfOnboarded,omitempty"`
	OnboardedAt   *time.Time `json:"onboardedAt,omitempty" firestore:"onboardedAt,omitempty"`
	Status        string     `json:"status,omitempty" firestore:"status,omitempty"`
	CreatedAt     time.Time  `json:"createdAt" firestore:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt" firestore:"updatedAt"`
}

func (c *Client) GetID() string               { return c.ID }
func (c *Client) SetID(id string)             { c.ID = id }
func (c *Client) GetTenantID() string         { return c.UserID }
func (c *Client) SetTenantID(tenantID string) { c.UserID = tenantID }
