package models

import "time"

// Message is a team chat message inside a tenant.
type Message struct {
	ID          string    `json:"id" firestore:"-"`
	UserID      string    `json:"userId" firestore:"userId"`
	SenderID    string    `json:"senderId" firestore:"senderId"`
	SenderEmail string    `json:"senderEmail" firestore:"senderEmail"`
	Content     string    `json:"content" firestore:"content"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt"`
}

func (m *Message) GetID() string               { return m.ID }
func (m *Message) SetID(id string)             { m.ID = id }
func (m *Message) GetTenantID() string         { return m.UserID }
func (m *Message) SetTenantID(tenantID string) { m.UserID = tenantID }
