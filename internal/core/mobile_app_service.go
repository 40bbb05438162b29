package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"stackassist-backend/internal/db"
	"stackassist-backend/internal/models"
)

type mobileAppService struct {
	apps    db.MobileAppRepository
	sites   db.SiteRepository
	clients db.ClientRepository
	authz   *Authorizer
	clock   Clock
	logger  *zap.Logger
}

// NewMobileAppService creates a MobileAppService.
func NewMobileAppService(store *db.Store, authz *Authorizer, clock Clock, logger *zap.Logger) MobileAppService {
	return &mobileAppService{
		apps:    store.MobileApps,
		sites:   store.Sites,
		clients: store.Clients,
		authz:   authz,
		clock:   clock,
		logger:  logger,
	}
}

func (s *mobileAppService) List(ctx context.Context, p models.Principal) ([]*models.MobileApp, error) {
	if err := s.authz.Authorize(p, string(models.ModuleMobileApps), ActionRead); err != nil {
		return nil, err
	}
	apps, err := s.apps.List(ctx, p.TenantID)
	if err != nil {
		return nil, storeError("list mobile apps", err)
	}
	return apps, nil
}

func (s *mobileAppService) Get(ctx context.Context, p models.Principal, id string) (*models.MobileApp, error) {
	if err := s.authz.Authorize(p, string(models.ModuleMobileApps), ActionRead); err != nil {
		return nil, err
	}
	app, err := s.apps.Get(ctx, p.TenantID, id)
	if err != nil {
		return nil, storeError("get mobile app", err)
	}
	return app, nil
}

// Create stores the app and a "Mobile App" site for it. If the site cannot be written
// the app is removed again.
func (s *mobileAppService) Create(ctx context.Context, p models.Principal, req models.MobileAppRequest) (*models.MobileApp, error) {
	if err := s.authz.Authorize(p, string(models.ModuleMobileApps), ActionCreate); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	client, err := s.clients.Get(ctx, p.TenantID, req.ClientID)
	if err != nil {
		return nil, referenceError("selected client not found", err)
	}

	app := &models.MobileApp{}
	applyMobileAppRequest(app, req)
	app.ClientName = client.Name
	if _, err := s.apps.Create(ctx, p.TenantID, app); err != nil {
		return nil, storeError("create mobile app", err)
	}

	now := s.clock.Now()
	site := &models.Site{
		Name:           app.AppName,
		URL:            app.AppDomain,
		Type:           models.SiteTypeMobileApp,
		ClientID:       app.ClientID,
		ClientName:     app.ClientName,
		LastModifiedBy: p.Email,
		LastModifiedAt: &now,
	}
	if _, err := s.sites.Create(ctx, p.TenantID, site); err != nil {
		siteErr := storeError("create site for mobile app", err)
		if delErr := s.apps.Delete(ctx, p.TenantID, app.ID); delErr != nil {
			s.logger.Error("orphaned mobile app without site",
				zap.String("tenantId", p.TenantID),
				zap.String("appId", app.ID),
				zap.Error(delErr))
			return nil, errors.Join(siteErr, fmt.Errorf("remove mobile app %s: %w", app.ID, delErr))
		}
		return nil, siteErr
	}
	return app, nil
}

func (s *mobileAppService) Update(ctx context.Context, p models.Principal, id string, req models.MobileAppRequest) (*models.MobileApp, error) {
	if err := s.authz.Authorize(p, string(models.ModuleMobileApps), ActionUpdate); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	app, err := s.apps.Get(ctx, p.TenantID, id)
	if err != nil {
		return nil, storeError("get mobile app", err)
	}
	if req.ClientID != app.ClientID || app.ClientName == "" {
		client, err := s.clients.Get(ctx, p.TenantID, req.ClientID)
		if err != nil {
			return nil, referenceError("selected client not found", err)
		}
		app.ClientName = client.Name
	}
	applyMobileAppRequest(app, req)
	if err := s.apps.Update(ctx, p.TenantID, id, app); err != nil {
		return nil, storeError("update mobile app", err)
	}
	return app, nil
}

func (s *mobileAppService) Delete(ctx context.Context, p models.Principal, id string) error {
	if err := s.authz.Authorize(p, string(models.ModuleMobileApps), ActionDelete); err != nil {
		return err
	}
	if err := s.apps.Delete(ctx, p.TenantID, id); err != nil {
		return storeError("delete mobile app", err)
	}
	return nil
}

func applyMobileAppRequest(app *models.MobileApp, req models.MobileAppRequest) {
	app.AppName = strings.TrimSpace(req.AppName)
	app.Platform = req.Platform
	app.ClientID = req.ClientID
	app.AppDomain = strings.TrimSpace(req.AppDomain)
	app.IOSDeveloperAccountID = req.IOSDeveloperAccountID
	app.GoogleDeveloperAccountID = req.GoogleDeveloperAccountID
	app.AppleLiveURL = req.AppleLiveURL
	app.GoogleLiveURL = req.GoogleLiveURL
	app.AppCost = req.AppCost
	app.AmountSpent = req.AmountSpent
	app.DateCreated = req.DateCreated
	app.RenewalDate = req.RenewalDate
	app.Status = req.Status
	app.Version = req.Version
}
