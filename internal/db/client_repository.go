package db

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"stackassist-backend/internal/models"
)

// firestoreClientRepository adds uniqueness keys to the generic collection.
type firestoreClientRepository struct {
	*firestoreCollection[models.Client, *models.Client]
}

// NewFirestoreClientRepository creates the Firestore-backed ClientRepository.
func NewFirestoreClientRepository(client *firestore.Client, logger *zap.Logger) ClientRepository {
	return &firestoreClientRepository{
		firestoreCollection: newFirestoreCollection[models.Client](client, clientsCollection, ownerFieldUserID, logger),
	}
}

func (r *firestoreClientRepository) keyRef(k uniqueKey) *firestore.DocumentRef {
	return r.client.Collection(uniqueKeysCollection).Doc(k.docID())
}

// claimable reads the key documents inside tx and fails with a ConflictError when a
// key is held by a record other than recordID.
func (r *firestoreClientRepository) claimable(tx *firestore.Transaction, keys []uniqueKey, recordID string) error {
	for _, k := range keys {
		snap, err := tx.Get(r.keyRef(k))
		if err != nil {
			if status.Code(err) == codes.NotFound {
				continue
			}
			return translate(err)
		}
		var held uniqueKeyDoc
		if err := snap.DataTo(&held); err != nil {
			return fmt.Errorf("failed to decode unique key: %w", err)
		}
		if held.RecordID != recordID {
			return &ConflictError{Key: k.Field, Value: k.Value}
		}
	}
	return nil
}

func (r *firestoreClientRepository) claim(tx *firestore.Transaction, keys []uniqueKey, recordID string) error {
	now := time.Now().UTC()
	for _, k := range keys {
		doc := uniqueKeyDoc{UserID: k.TenantID, Scope: k.Scope, Field: k.Field, RecordID: recordID, CreatedAt: now}
		if err := tx.Create(r.keyRef(k), doc); err != nil {
			return err
		}
	}
	return nil
}

func (r *firestoreClientRepository) release(tx *firestore.Transaction, keys []uniqueKey) error {
	for _, k := range keys {
		if err := tx.Delete(r.keyRef(k)); err != nil {
			return err
		}
	}
	return nil
}

// Create inserts the client only if its email and phone are unclaimed in the tenant.
func (r *firestoreClientRepository) Create(ctx context.Context, tenantID string, c *models.Client) (string, error) {
	if tenantID == "" {
		return "", ErrMissingTenant
	}
	ref := r.client.Collection(clientsCollection).NewDoc()
	c.ID = ref.ID
	c.UserID = tenantID
	c.EmailLower = NormalizeEmail(c.Email)
	keys := clientKeys(c)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := r.claimable(tx, keys, ref.ID); err != nil {
			return err
		}
		if err := tx.Create(ref, c); err != nil {
			return err
		}
		return r.claim(tx, keys, ref.ID)
	})
	if err != nil {
		return "", fmt.Errorf("failed to create client: %w", translate(err))
	}
	return ref.ID, nil
}

// Update replaces the client and moves any changed uniqueness keys in one transaction.
func (r *firestoreClientRepository) Update(ctx context.Context, tenantID, id string, c *models.Client) error {
	if tenantID == "" {
		return ErrMissingTenant
	}
	ref := r.doc(id)
	c.ID = id
	c.UserID = tenantID
	c.EmailLower = NormalizeEmail(c.Email)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return translate(err)
		}
		current, err := r.owned(snap, tenantID)
		if err != nil {
			return err
		}
		added, removed := diffKeys(clientKeys(current), clientKeys(c))
		if err := r.claimable(tx, added, id); err != nil {
			return err
		}
		if err := tx.Set(ref, c); err != nil {
			return err
		}
		if err := r.release(tx, removed); err != nil {
			return err
		}
		return r.claim(tx, added, id)
	})
	if err != nil {
		return fmt.Errorf("failed to update client '%s': %w", id, translate(err))
	}
	return nil
}

// Delete removes the client and releases its uniqueness keys.
func (r *firestoreClientRepository) Delete(ctx context.Context, tenantID, id string) error {
	if tenantID == "" {
		return ErrMissingTenant
	}
	ref := r.doc(id)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return translate(err)
		}
		current, err := r.owned(snap, tenantID)
		if err != nil {
			return err
		}
		if err := tx.Delete(ref); err != nil {
			return err
		}
		return r.release(tx, clientKeys(current))
	})
	if err != nil {
		return fmt.Errorf("failed to delete client '%s': %w", id, translate(err))
	}
	return nil
}
