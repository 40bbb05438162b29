package core

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"stackassist-backend/internal/db"
	"stackassist-backend/internal/models"
)

type developerAccountService struct {
	accounts db.DeveloperAccountRepository
	apps     db.MobileAppRepository
	authz    *Authorizer
	clock    Clock
	logger   *zap.Logger
}

// NewDeveloperAccountService creates a DeveloperAccountService.
func NewDeveloperAccountService(store *db.Store, authz *Authorizer, clock Clock, logger *zap.Logger) DeveloperAccountService {
	return &developerAccountService{
		accounts: store.DeveloperAccounts,
		apps:     store.MobileApps,
		authz:    authz,
		clock:    clock,
		logger:   logger,
	}
}

func (s *developerAccountService) List(ctx context.Context, p models.Principal) ([]*models.DeveloperAccount, error) {
	if err := s.authz.Authorize(p, string(models.ModuleDeveloperAccounts), ActionRead); err != nil {
		return nil, err
	}
	accounts, err := s.accounts.List(ctx, p.TenantID)
	if err != nil {
		return nil, storeError("list developer accounts", err)
	}
	if err := s.countApps(ctx, p.TenantID, accounts...); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (s *developerAccountService) Get(ctx context.Context, p models.Principal, id string) (*models.DeveloperAccount, error) {
	if err := s.authz.Authorize(p, string(models.ModuleDeveloperAccounts), ActionRead); err != nil {
		return nil, err
	}
	account, err := s.accounts.Get(ctx, p.TenantID, id)
	if err != nil {
		return nil, storeError("get developer account", err)
	}
	if err := s.countApps(ctx, p.TenantID, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *developerAccountService) Create(ctx context.Context, p models.Principal, req models.DeveloperAccountRequest) (*models.DeveloperAccount, error) {
	if err := s.authz.Authorize(p, string(models.ModuleDeveloperAccounts), ActionCreate); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	account := &models.DeveloperAccount{CreatedAt: now}
	applyDeveloperAccountRequest(account, req)
	if account.Status == "" {
		account.Status = models.DeveloperAccountStatusPending
	}
	account.LastModified = now
	if _, err := s.accounts.Create(ctx, p.TenantID, account); err != nil {
		return nil, storeError("create developer account", err)
	}
	if err := s.countApps(ctx, p.TenantID, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *developerAccountService) Update(ctx context.Context, p models.Principal, id string, req models.DeveloperAccountRequest) (*models.DeveloperAccount, error) {
	if err := s.authz.Authorize(p, string(models.ModuleDeveloperAccounts), ActionUpdate); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	account, err := s.accounts.Get(ctx, p.TenantID, id)
	if err != nil {
		return nil, storeError("get developer account", err)
	}
	status := account.Status
	applyDeveloperAccountRequest(account, req)
	if account.Status == "" {
		account.Status = status
	}
	account.LastModified = s.clock.Now()
	if err := s.accounts.Update(ctx, p.TenantID, id, account); err != nil {
		return nil, storeError("update developer account", err)
	}
	if err := s.countApps(ctx, p.TenantID, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *developerAccountService) Delete(ctx context.Context, p models.Principal, id string) error {
	if err := s.authz.Authorize(p, string(models.ModuleDeveloperAccounts), ActionDelete); err != nil {
		return err
	}
	if err := s.accounts.Delete(ctx, p.TenantID, id); err != nil {
		return storeError("delete developer account", err)
	}
	return nil
}

// countApps derives MobileAppsCount from the tenant's apps. It is never stored.
func (s *developerAccountService) countApps(ctx context.Context, tenantID string, accounts ...*models.DeveloperAccount) error {
	if len(accounts) == 0 {
		return nil
	}
	apps, err := s.apps.List(ctx, tenantID)
	if err != nil {
		return storeError("count mobile apps", err)
	}
	for _, account := range accounts {
		account.MobileAppsCount = 0
		for _, app := range apps {
			if app.UsesDeveloperAccount(account.ID) {
				account.MobileAppsCount++
			}
		}
	}
	return nil
}

func applyDeveloperAccountRequest(account *models.DeveloperAccount, req models.DeveloperAccountRequest) {
	account.AccountType = req.AccountType
	account.Email = strings.TrimSpace(req.Email)
	account.MobileNumber = req.MobileNumber
	account.CompanyName = req.CompanyName
	account.DUNS = req.DUNS
	account.ExpiryDate = req.ExpiryDate
	account.Status = req.Status
}
