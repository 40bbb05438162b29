package core

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"stackassist-backend/internal/db"
	"stackassist-backend/internal/models"
)

type clientService struct {
	clients db.ClientRepository
	authz   *Authorizer
	clock   Clock
	logger  *zap.Logger
}

// NewClientService creates a ClientService.
func NewClientService(clients db.ClientRepository, authz *Authorizer, clock Clock, logger *zap.Logger) ClientService {
	return &clientService{clients: clients, authz: authz, clock: clock, logger: logger}
}

func (s *clientService) List(ctx context.Context, p models.Principal) ([]*models.Client, error) {
	if err := s.authz.Authorize(p, string(models.ModuleClients), ActionRead); err != nil {
		return nil, err
	}
	clients, err := s.clients.List(ctx, p.TenantID)
	if err != nil {
		return nil, storeError("list clients", err)
	}
	return clients, nil
}

func (s *clientService) Get(ctx context.Context, p models.Principal, id string) (*models.Client, error) {
	if err := s.authz.Authorize(p, string(models.ModuleClients), ActionRead); err != nil {
		return nil, err
	}
	client, err := s.clients.Get(ctx, p.TenantID, id)
	if err != nil {
		return nil, storeError("get client", err)
	}
	return client, nil
}

func (s *clientService) Create(ctx context.Context, p models.Principal, req models.CreateClientRequest) (*models.Client, error) {
	if err := s.authz.Authorize(p, string(models.ModuleClients), ActionCreate); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	client := &models.Client{
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		Company:   req.Company,
		Address:   req.Address,
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return s.insert(ctx, p.TenantID, client)
}

// insert stores a new client. The repository enforces email and phone uniqueness.
func (s *clientService) insert(ctx context.Context, tenantID string, client *models.Client) (*models.Client, error) {
	if _, err := s.clients.Create(ctx, tenantID, client); err != nil {
		return nil, clientWriteError("create client", err)
	}
	s.logger.Info("client created", zap.String("tenantId", tenantID), zap.String("clientId", client.ID))
	return client, nil
}

func (s *clientService) Update(ctx context.Context, p models.Principal, id string, req models.UpdateClientRequest) (*models.Client, error) {
	if err := s.authz.Authorize(p, string(models.ModuleClients), ActionUpdate); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	client, err := s.clients.Get(ctx, p.TenantID, id)
	if err != nil {
		return nil, storeError("get client", err)
	}
	if req.Name != nil {
		client.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		client.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		client.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Company != nil {
		client.Company = *req.Company
	}
	if req.Address != nil {
		client.Address = *req.Address
	}
	if req.Notes != nil {
		client.Notes = *req.Notes
	}
	if req.Status != nil {
		client.Status = *req.Status
	}
	client.UpdatedAt = s.clock.Now()

	if err := s.clients.Update(ctx, p.TenantID, id, client); err != nil {
		return nil, clientWriteError("update client", err)
	}
	return client, nil
}

func (s *clientService) Delete(ctx context.Context, p models.Principal, id string) error {
	if err := s.authz.Authorize(p, string(models.ModuleClients), ActionDelete); err != nil {
		return err
	}
	if err := s.clients.Delete(ctx, p.TenantID, id); err != nil {
		return storeError("delete client", err)
	}
	return nil
}

// clientWriteError turns a uniqueness conflict into the matching validation error.
func clientWriteError(op string, err error) error {
	var conflict *db.ConflictError
	if errors.As(err, &conflict) {
		switch conflict.Key {
		case "email":
			return ErrDuplicateEmail
		case "phone":
			return ErrDuplicatePhone
		}
	}
	return storeError(op, err)
}
