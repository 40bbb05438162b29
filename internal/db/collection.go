package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"

	"stackassist-backend/internal/models"
)

const (
	usersCollection                = "users"
	clientsCollection              = "clients"
	sitesCollection                = "sites"
	hostingAccountsCollection      = "hostingAccounts"
	mobileAppsCollection           = "mobileApps"
	developerAccountsCollection    = "developerAccounts"
	tasksCollection                = "tasks"
	teamMembersCollection          = "teamMembers"
	teamInvitesCollection          = "teamInvites"
	notificationsCollection        = "notifications"
	notificationSettingsCollection = "notificationSettings"
	messagesCollection             = "messages"
	uniqueKeysCollection           = "uniqueKeys"

	ownerFieldUserID  = "userId"
	ownerFieldOwnerID = "ownerId"
)

// recordPtr constrains P to *T where *T is a tenant-owned record.
type recordPtr[T any] interface {
	*T
	models.Record
}

// firestoreCollection implements Repository[T] for one Firestore collection whose
// documents carry the owning tenant id in ownerField.
type firestoreCollection[T any, P recordPtr[T]] struct {
	client     *firestore.Client
	name       string
	ownerField string
	logger     *zap.Logger
}

func newFirestoreCollection[T any, P recordPtr[T]](client *firestore.Client, name, ownerField string, logger *zap.Logger) *firestoreCollection[T, P] {
	if client == nil {
		panic("Firestore client is not initialized for collection " + name)
	}
	return &firestoreCollection[T, P]{client: client, name: name, ownerField: ownerField, logger: logger}
}

func (c *firestoreCollection[T, P]) doc(id string) *firestore.DocumentRef {
	return c.client.Collection(c.name).Doc(id)
}

// decode converts a snapshot into a record and stamps its id.
func (c *firestoreCollection[T, P]) decode(snap *firestore.DocumentSnapshot) (*T, error) {
	var rec T
	if err := snap.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode %s/%s: %w", c.name, snap.Ref.ID, err)
	}
	P(&rec).SetID(snap.Ref.ID)
	return &rec, nil
}

// owned decodes snap and verifies it belongs to tenantID.
func (c *firestoreCollection[T, P]) owned(snap *firestore.DocumentSnapshot, tenantID string) (*T, error) {
	rec, err := c.decode(snap)
	if err != nil {
		return nil, err
	}
	if P(rec).GetTenantID() != tenantID {
		return nil, fmt.Errorf("%s/%s: %w", c.name, snap.Ref.ID, ErrNotFound)
	}
	return rec, nil
}

// List returns every document of the collection owned by tenantID.
func (c *firestoreCollection[T, P]) List(ctx context.Context, tenantID string) ([]*T, error) {
	if tenantID == "" {
		return nil, ErrMissingTenant
	}
	iter := c.client.Collection(c.name).Where(c.ownerField, "==", tenantID).Documents(ctx)
	defer iter.Stop()

	records := make([]*T, 0)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list %s for tenant '%s': %w", c.name, tenantID, translate(err))
		}
		rec, err := c.decode(snap)
		if err != nil {
			c.logger.Warn("skipping undecodable document", zap.String("collection", c.name), zap.Error(err))
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Get returns one document if it exists and belongs to tenantID.
func (c *firestoreCollection[T, P]) Get(ctx context.Context, tenantID, id string) (*T, error) {
	if tenantID == "" {
		return nil, ErrMissingTenant
	}
	if id == "" {
		return nil, fmt.Errorf("%s: empty id: %w", c.name, ErrNotFound)
	}
	snap, err := c.doc(id).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s/%s: %w", c.name, id, translate(err))
	}
	return c.owned(snap, tenantID)
}

// Create stores rec under a generated id owned by tenantID.
func (c *firestoreCollection[T, P]) Create(ctx context.Context, tenantID string, rec *T) (string, error) {
	if tenantID == "" {
		return "", ErrMissingTenant
	}
	ref := c.client.Collection(c.name).NewDoc()
	P(rec).SetID(ref.ID)
	P(rec).SetTenantID(tenantID)
	if _, err := ref.Create(ctx, rec); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", c.name, translate(err))
	}
	return ref.ID, nil
}

// Update replaces the document after checking ownership inside a transaction.
func (c *firestoreCollection[T, P]) Update(ctx context.Context, tenantID, id string, rec *T) error {
	if tenantID == "" {
		return ErrMissingTenant
	}
	ref := c.doc(id)
	err := c.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return translate(err)
		}
		if _, err := c.owned(snap, tenantID); err != nil {
			return err
		}
		P(rec).SetID(id)
		P(rec).SetTenantID(tenantID)
		return tx.Set(ref, rec)
	})
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", c.name, id, err)
	}
	return nil
}

// Delete removes the document after checking ownership inside a transaction.
func (c *firestoreCollection[T, P]) Delete(ctx context.Context, tenantID, id string) error {
	if tenantID == "" {
		return ErrMissingTenant
	}
	ref := c.doc(id)
	err := c.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return translate(err)
		}
		if _, err := c.owned(snap, tenantID); err != nil {
			return err
		}
		return tx.Delete(ref)
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", c.name, id, err)
	}
	return nil
}
