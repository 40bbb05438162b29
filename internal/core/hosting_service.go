package core

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"stackassist-backend/internal/crypto"
	"stackassist-backend/internal/db"
	"stackassist-backend/internal/models"
)

type hostingAccountService struct {
	accounts db.HostingAccountRepository
	sealer   *crypto.Sealer // nil stores hints as given
	authz    *Authorizer
	logger   *zap.Logger
}

// NewHostingAccountService creates a HostingAccountService. Password hints are
// encrypted at rest when sealer is not nil.
func NewHostingAccountService(accounts db.HostingAccountRepository, sealer *crypto.Sealer, authz *Authorizer, logger *zap.Logger) HostingAccountService {
	return &hostingAccountService{accounts: accounts, sealer: sealer, authz: authz, logger: logger}
}

func (s *hostingAccountService) List(ctx context.Context, p models.Principal) ([]*models.HostingAccount, error) {
	if err := s.authz.Authorize(p, string(models.ModuleHosting), ActionRead); err != nil {
		return nil, err
	}
	accounts, err := s.accounts.List(ctx, p.TenantID)
	if err != nil {
		return nil, storeError("list hosting accounts", err)
	}
	for _, a := range accounts {
		s.reveal(a)
	}
	return accounts, nil
}

func (s *hostingAccountService) Get(ctx context.Context, p models.Principal, id string) (*models.HostingAccount, error) {
	if err := s.authz.Authorize(p, string(models.ModuleHosting), ActionRead); err != nil {
		return nil, err
	}
	account, err := s.accounts.Get(ctx, p.TenantID, id)
	if err != nil {
		return nil, storeError("get hosting account", err)
	}
	s.reveal(account)
	return account, nil
}

func (s *hostingAccountService) Create(ctx context.Context, p models.Principal, req models.HostingAccountRequest) (*models.HostingAccount, error) {
	if err := s.authz.Authorize(p, string(models.ModuleHosting), ActionCreate); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	account := &models.HostingAccount{}
	applyHostingRequest(account, req)
	if err := s.persist(account, func(stored *models.HostingAccount) error {
		_, err := s.accounts.Create(ctx, p.TenantID, stored)
		account.ID, account.UserID = stored.ID, stored.UserID
		return err
	}); err != nil {
		return nil, storeError("create hosting account", err)
	}
	return account, nil
}

func (s *hostingAccountService) Update(ctx context.Context, p models.Principal, id string, req models.HostingAccountRequest) (*models.HostingAccount, error) {
	if err := s.authz.Authorize(p, string(models.ModuleHosting), ActionUpdate); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	account, err := s.accounts.Get(ctx, p.TenantID, id)
	if err != nil {
		return nil, storeError("get hosting account", err)
	}
	applyHostingRequest(account, req)
	if err := s.persist(account, func(stored *models.HostingAccount) error {
		return s.accounts.Update(ctx, p.TenantID, id, stored)
	}); err != nil {
		return nil, storeError("update hosting account", err)
	}
	return account, nil
}

func (s *hostingAccountService) Delete(ctx context.Context, p models.Principal, id string) error {
	if err := s.authz.Authorize(p, string(models.ModuleHosting), ActionDelete); err != nil {
		return err
	}
	if err := s.accounts.Delete(ctx, p.TenantID, id); err != nil {
		return storeError("delete hosting account", err)
	}
	return nil
}

// persist writes a copy of account with the password hint sealed. The caller keeps
// the clear value.
func (s *hostingAccountService) persist(account *models.HostingAccount, write func(*models.HostingAccount) error) error {
	stored := *account
	if s.sealer != nil {
		sealed, err := s.sealer.Seal(account.PasswordHint)
		if err != nil {
			return fmt.Errorf("seal password hint: %w", err)
		}
		stored.PasswordHint = sealed
	}
	return write(&stored)
}

func (s *hostingAccountService) reveal(account *models.HostingAccount) {
	if s.sealer == nil || !crypto.IsSealed(account.PasswordHint) {
		return
	}
	hint, err := s.sealer.Open(account.PasswordHint)
	if err != nil {
		s.logger.Warn("failed to open password hint", zap.String("accountId", account.ID), zap.Error(err))
		account.PasswordHint = ""
		return
	}
	account.PasswordHint = hint
}

func applyHostingRequest(account *models.HostingAccount, req models.HostingAccountRequest) {
	account.Provider = strings.TrimSpace(req.Provider)
	account.ServerLoginURL = req.ServerLoginURL
	account.HostType = req.HostType
	account.Username = req.Username
	account.Email = strings.TrimSpace(req.Email)
	account.PasswordHint = req.PasswordHint
	account.ExpirationDate = req.ExpirationDate
	account.Status = req.Status
	if account.Status == "" {
		account.Status = models.HostingStatusActive
	}
}
