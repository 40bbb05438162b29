package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"stackassist-backend/internal/models"
)

// firestoreUserRepository stores tenant profiles in users/{uid}.
type firestoreUserRepository struct {
	client *firestore.Client
}

// NewFirestoreUserRepository creates the Firestore-backed UserRepository.
func NewFirestoreUserRepository(client *firestore.Client) UserRepository {
	if client == nil {
		panic("Firestore client is not initialized for UserRepository")
	}
	return &firestoreUserRepository{client: client}
}

// Create writes the profile under the identity id. It fails if the profile exists.
func (r *firestoreUserRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	if tenant.ID == "" {
		return errors.New("tenant ID cannot be empty for Create operation")
	}
	if _, err := r.client.Collection(usersCollection).Doc(tenant.ID).Create(ctx, tenant); err != nil {
		return fmt.Errorf("failed to create user '%s': %w", tenant.ID, translate(err))
	}
	return nil
}

// Get returns the tenant profile for userID.
func (r *firestoreUserRepository) Get(ctx context.Context, userID string) (*models.Tenant, error) {
	if userID == "" {
		return nil, fmt.Errorf("users: empty id: %w", ErrNotFound)
	}
	snap, err := r.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get user '%s': %w", userID, translate(err))
	}
	var tenant models.Tenant
	if err := snap.DataTo(&tenant); err != nil {
		return nil, fmt.Errorf("failed to decode user '%s': %w", userID, err)
	}
	tenant.ID = snap.Ref.ID
	return &tenant, nil
}

// ListIDs returns the id of every tenant profile.
func (r *firestoreUserRepository) ListIDs(ctx context.Context) ([]string, error) {
	iter := r.client.Collection(usersCollection).Select().Documents(ctx)
	defer iter.Stop()

	var ids []string
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list users: %w", translate(err))
		}
		ids = append(ids, snap.Ref.ID)
	}
	return ids, nil
}

// firestoreNotificationSettingRepository stores notificationSettings/{tenantId}.
type firestoreNotificationSettingRepository struct {
	client *firestore.Client
}

// NewFirestoreNotificationSettingRepository creates the Firestore-backed settings repository.
func NewFirestoreNotificationSettingRepository(client *firestore.Client) NotificationSettingRepository {
	return &firestoreNotificationSettingRepository{client: client}
}

func (r *firestoreNotificationSettingRepository) Get(ctx context.Context, tenantID string) (*models.NotificationSetting, error) {
	if tenantID == "" {
		return nil, ErrMissingTenant
	}
	snap, err := r.client.Collection(notificationSettingsCollection).Doc(tenantID).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get notification settings '%s': %w", tenantID, translate(err))
	}
	var setting models.NotificationSetting
	if err := snap.DataTo(&setting); err != nil {
		return nil, fmt.Errorf("failed to decode notification settings '%s': %w", tenantID, err)
	}
	setting.UserID = tenantID
	return &setting, nil
}

func (r *firestoreNotificationSettingRepository) Save(ctx context.Context, setting *models.NotificationSetting) error {
	if setting.UserID == "" {
		return ErrMissingTenant
	}
	if _, err := r.client.Collection(notificationSettingsCollection).Doc(setting.UserID).Set(ctx, setting); err != nil {
		return fmt.Errorf("failed to save notification settings '%s': %w", setting.UserID, translate(err))
	}
	return nil
}
