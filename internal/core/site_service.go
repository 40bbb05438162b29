package core

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"stackassist-backend/internal/db"
	"stackassist-backend/internal/models"
)

type siteService struct {
	sites   db.SiteRepository
	clients db.ClientRepository
	hosting db.HostingAccountRepository
	authz   *Authorizer
	clock   Clock
	logger  *zap.Logger
}

// NewSiteService creates a SiteService.
func NewSiteService(store *db.Store, authz *Authorizer, clock Clock, logger *zap.Logger) SiteService {
	return &siteService{
		sites:   store.Sites,
		clients: store.Clients,
		hosting: store.HostingAccounts,
		authz:   authz,
		clock:   clock,
		logger:  logger,
	}
}

func (s *siteService) List(ctx context.Context, p models.Principal) ([]*models.Site, error) {
	if err := s.authz.Authorize(p, string(models.ModuleSites), ActionRead); err != nil {
		return nil, err
	}
	sites, err := s.sites.List(ctx, p.TenantID)
	if err != nil {
		return nil, storeError("list sites", err)
	}
	return sites, nil
}

func (s *siteService) Get(ctx context.Context, p models.Principal, id string) (*models.Site, error) {
	if err := s.authz.Authorize(p, string(models.ModuleSites), ActionRead); err != nil {
		return nil, err
	}
	site, err := s.sites.Get(ctx, p.TenantID, id)
	if err != nil {
		return nil, storeError("get site", err)
	}
	return site, nil
}

func (s *siteService) Create(ctx context.Context, p models.Principal, req models.SiteRequest) (*models.Site, error) {
	if err := s.authz.Authorize(p, string(models.ModuleSites), ActionCreate); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	site := &models.Site{}
	if err := s.apply(ctx, p, site, req); err != nil {
		return nil, err
	}
	if _, err := s.sites.Create(ctx, p.TenantID, site); err != nil {
		return nil, storeError("create site", err)
	}
	return site, nil
}

func (s *siteService) Update(ctx context.Context, p models.Principal, id string, req models.SiteRequest) (*models.Site, error) {
	if err := s.authz.Authorize(p, string(models.ModuleSites), ActionUpdate); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	site, err := s.sites.Get(ctx, p.TenantID, id)
	if err != nil {
		return nil, storeError("get site", err)
	}
	if err := s.apply(ctx, p, site, req); err != nil {
		return nil, err
	}
	if err := s.sites.Update(ctx, p.TenantID, id, site); err != nil {
		return nil, storeError("update site", err)
	}
	return site, nil
}

func (s *siteService) Delete(ctx context.Context, p models.Principal, id string) error {
	if err := s.authz.Authorize(p, string(models.ModuleSites), ActionDelete); err != nil {
		return err
	}
	if err := s.sites.Delete(ctx, p.TenantID, id); err != nil {
		return storeError("delete site", err)
	}
	return nil
}

// apply copies the request onto site and snapshots the client and host names.
// The snapshots are not refreshed when the client or host is renamed later.
func (s *siteService) apply(ctx context.Context, p models.Principal, site *models.Site, req models.SiteRequest) error {
	site.Name = strings.TrimSpace(req.Name)
	site.Type = req.Type
	site.URL = strings.TrimSpace(req.URL)
	site.DomainPurchasedFrom = req.DomainPurchasedFrom
	site.ExpirationDate = req.ExpirationDate
	site.NameChanged = req.NameChanged
	site.OldDomainName = req.OldDomainName
	site.OldDomainExpirationDate = req.OldDomainExpirationDate
	site.AmountPaid = req.AmountPaid
	site.AmountUsedForCreation = req.AmountUsedForCreation

	if req.ClientID != site.ClientID || (req.ClientID != "" && site.ClientName == "") {
		site.ClientID, site.ClientName = req.ClientID, ""
		if req.ClientID != "" {
			client, err := s.clients.Get(ctx, p.TenantID, req.ClientID)
			if err != nil {
				return referenceError("selected client not found", err)
			}
			site.ClientName = client.Name
		}
	}
	if req.HostID != site.HostID || (req.HostID != "" && site.HostName == "") {
		site.HostID, site.HostName = req.HostID, ""
		if req.HostID != "" {
			host, err := s.hosting.Get(ctx, p.TenantID, req.HostID)
			if err != nil {
				return referenceError("selected hosting account not found", err)
			}
			site.HostName = host.Provider
		}
	}

	now := s.clock.Now()
	site.LastModifiedBy = p.Email
	site.LastModifiedAt = &now
	return nil
}

// referenceError reports a missing referenced record as a validation failure.
func referenceError(msg string, err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return wrapf(ErrReferenceNotFound, msg)
	}
	return storeError(msg, err)
}
