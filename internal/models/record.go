package models

// Record is implemented by every document that belongs to exactly one tenant.
// Repositories use it to stamp and verify ownership.
type Record interface {
	GetID() string
	SetID(id string)
	GetTenantID() string
	SetTenantID(tenantID string)
}
