package db

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"stackassist-backend/internal/models"
)

// uniqueKey is a (scope, tenant, value) triple that may be claimed by one record only.
// In Firestore each claimed key is a document in the uniqueKeys collection, written in
// the same transaction as the record so the check and the write are atomic.
type uniqueKey struct {
	Scope    string
	Field    string
	TenantID string
	Value    string
}

// docID hashes the key so arbitrary emails and phone numbers make valid document ids.
func (k uniqueKey) docID() string {
	sum := sha256.Sum256([]byte(k.Scope + "\x00" + k.Field + "\x00" + k.TenantID + "\x00" + k.Value))
	return hex.EncodeToString(sum[:])
}

type uniqueKeyDoc struct {
	UserID    string    `firestore:"userId"`
	Scope     string    `firestore:"scope"`
	Field     string    `firestore:"field"`
	RecordID  string    `firestore:"recordId"`
	CreatedAt time.Time `firestore:"createdAt"`
}

// NormalizeEmail lower-cases and trims an email for uniqueness comparisons.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePhone trims a phone number for uniqueness comparisons.
func NormalizePhone(phone string) string {
	return strings.TrimSpace(phone)
}

// clientKeys returns the uniqueness keys a client claims within its tenant.
func clientKeys(c *models.Client) []uniqueKey {
	var keys []uniqueKey
	if email := NormalizeEmail(c.Email); email != "" {
		keys = append(keys, uniqueKey{Scope: clientsCollection, Field: "email", TenantID: c.UserID, Value: email})
	}
	if phone := NormalizePhone(c.Phone); phone != "" {
		keys = append(keys, uniqueKey{Scope: clientsCollection, Field: "phone", TenantID: c.UserID, Value: phone})
	}
	return keys
}

// memberKey is the key a team member claims within its owner's team.
func memberKey(m *models.TeamMember) uniqueKey {
	return uniqueKey{Scope: teamMembersCollection, Field: "email", TenantID: m.OwnerID, Value: NormalizeEmail(m.Email)}
}

// diffKeys returns the keys present in next but not in prev, and those in prev but not in next.
func diffKeys(prev, next []uniqueKey) (added, removed []uniqueKey) {
	seen := make(map[string]bool, len(prev))
	for _, k := range prev {
		seen[k.docID()] = true
	}
	kept := make(map[string]bool, len(next))
	for _, k := range next {
		kept[k.docID()] = true
		if !seen[k.docID()] {
			added = append(added, k)
		}
	}
	for _, k := range prev {
		if !kept[k.docID()] {
			removed = append(removed, k)
		}
	}
	return added, removed
}
