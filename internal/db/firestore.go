package db

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"stackassist-backend/internal/config"
	"stackassist-backend/internal/models"
)

var (
	// fsClient is the process-wide Firestore client.
	fsClient *firestore.Client
	// fbAuthClient is the process-wide Firebase Auth client.
	fbAuthClient *auth.Client
)

// credentialsOption picks the service account source from the config. A nil option
// means Application Default Credentials.
func credentialsOption(appConfig *config.Config, logger *zap.Logger) (option.ClientOption, error) {
	switch {
	case appConfig.GoogleApplicationCredentials != "":
		if _, err := os.Stat(appConfig.GoogleApplicationCredentials); os.IsNotExist(err) {
			logger.Warn("credentials file does not exist, Firebase may fall back to ADC",
				zap.String("path", appConfig.GoogleApplicationCredentials))
		}
		return option.WithCredentialsFile(appConfig.GoogleApplicationCredentials), nil
	case appConfig.FirebaseServiceAccountJSONBase64 != "":
		decoded, err := base64.StdEncoding.DecodeString(appConfig.FirebaseServiceAccountJSONBase64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode FIREBASE_SERVICE_ACCOUNT_JSON_BASE64: %w", err)
		}
		return option.WithCredentialsJSON(decoded), nil
	}
	logger.Info("no explicit Firebase credentials configured, using Application Default Credentials")
	return nil, nil
}

// InitFirestore initializes the Firebase Admin SDK and the Firestore and Auth clients.
func InitFirestore(ctx context.Context, appConfig *config.Config, logger *zap.Logger) error {
	if appConfig == nil {
		return fmt.Errorf("InitFirestore: appConfig cannot be nil")
	}

	credsOption, err := credentialsOption(appConfig, logger)
	if err != nil {
		return err
	}

	var fbConfig *firebase.Config
	if appConfig.FirebaseProjectID != "" {
		fbConfig = &firebase.Config{ProjectID: appConfig.FirebaseProjectID}
	}

	var app *firebase.App
	if credsOption != nil {
		app, err = firebase.NewApp(ctx, fbConfig, credsOption)
	} else {
		app, err = firebase.NewApp(ctx, fbConfig)
	}
	if err != nil {
		return fmt.Errorf("firebase.NewApp: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return fmt.Errorf("app.Firestore: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		client.Close()
		return fmt.Errorf("app.Auth: %w", err)
	}

	fsClient = client
	fbAuthClient = authClient
	logger.Info("Firebase Admin SDK initialized", zap.String("projectID", appConfig.FirebaseProjectID))
	return nil
}

// GetFirestoreClient returns the Firestore client, or nil before InitFirestore succeeds.
func GetFirestoreClient() *firestore.Client {
	return fsClient
}

// GetFirebaseAuthClient returns the Firebase Auth client, or nil before InitFirestore succeeds.
func GetFirebaseAuthClient() *auth.Client {
	return fbAuthClient
}

// CloseFirestore releases the Firestore client.
func CloseFirestore() error {
	if fsClient == nil {
		return nil
	}
	return fsClient.Close()
}

// NewFirestoreStore wires every Firestore-backed repository around one client.
func NewFirestoreStore(client *firestore.Client, logger *zap.Logger) *Store {
	return &Store{
		Users:             NewFirestoreUserRepository(client),
		Clients:           NewFirestoreClientRepository(client, logger),
		Sites:             newFirestoreCollection[models.Site](client, sitesCollection, ownerFieldUserID, logger),
		HostingAccounts:   newFirestoreCollection[models.HostingAccount](client, hostingAccountsCollection, ownerFieldUserID, logger),
		MobileApps:        newFirestoreCollection[models.MobileApp](client, mobileAppsCollection, ownerFieldUserID, logger),
		DeveloperAccounts: newFirestoreCollection[models.DeveloperAccount](client, developerAccountsCollection, ownerFieldUserID, logger),
		Tasks:             newFirestoreCollection[models.Task](client, tasksCollection, ownerFieldUserID, logger),
		Team:              NewFirestoreTeamRepository(client, logger),
		Notifications:     newFirestoreCollection[models.Notification](client, notificationsCollection, ownerFieldUserID, logger),
		Settings:          NewFirestoreNotificationSettingRepository(client),
		Messages:          newFirestoreCollection[models.Message](client, messagesCollection, ownerFieldUserID, logger),
	}
}
