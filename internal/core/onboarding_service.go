package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"stackassist-backend/internal/db"
	"stackassist-backend/internal/models"
)

const (
	onboardingIssuer   = "stackassist"
	onboardingLinkLife = 14 * 24 * time.Hour
)

// OnboardingInfo is what the public onboarding page shows before submission.
type OnboardingInfo struct {
	CompanyName string `json:"companyName"`
}

type onboardingClaims struct {
	TenantID string `json:"tenantId"`
	jwt.RegisteredClaims
}

type onboardingService struct {
	clients    db.ClientRepository
	users      db.UserRepository
	authz      *Authorizer
	clock      Clock
	signingKey []byte
	clientURL  string
	logger     *zap.Logger
}

// NewOnboardingService creates an OnboardingService. Links are HS256 tokens signed
// with signingKey and carry the tenant id.
func NewOnboardingService(store *db.Store, authz *Authorizer, clock Clock, signingKey []byte, clientURL string, logger *zap.Logger) OnboardingService {
	return &onboardingService{
		clients:    store.Clients,
		users:      store.Users,
		authz:      authz,
		clock:      clock,
		signingKey: signingKey,
		clientURL:  strings.TrimRight(clientURL, "/"),
		logger:     logger,
	}
}

// Link returns the shareable self-onboarding URL of the caller's tenant.
func (s *onboardingService) Link(ctx context.Context, p models.Principal) (string, error) {
	if err := s.authz.Authorize(p, string(models.ModuleClients), ActionCreate); err != nil {
		return "", err
	}
	now := s.clock.Now()
	claims := onboardingClaims{
		TenantID: p.TenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    onboardingIssuer,
			Subject:   p.TenantID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(onboardingLinkLife)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign onboarding token: %w", err)
	}
	return s.clientURL + "/onboard/" + token, nil
}

func (s *onboardingService) tenantFromToken(token string) (string, error) {
	claims := &onboardingClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(onboardingIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil || claims.TenantID == "" {
		return "", ErrInvalidLink
	}
	return claims.TenantID, nil
}

func (s *onboardingService) Describe(ctx context.Context, token string) (*OnboardingInfo, error) {
	tenantID, err := s.tenantFromToken(token)
	if err != nil {
		return nil, err
	}
	tenant, err := s.users.Get(ctx, tenantID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrInvalidLink
		}
		return nil, storeError("get tenant", err)
	}
	return &OnboardingInfo{CompanyName: tenant.DisplayCompanyName()}, nil
}

// Submit records a self-onboarded client pending the agency's approval.
func (s *onboardingService) Submit(ctx context.Context, token string, req models.OnboardClientRequest) (*models.Client, error) {
	tenantID, err := s.tenantFromToken(token)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if _, err := s.users.Get(ctx, tenantID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrInvalidLink
		}
		return nil, storeError("get tenant", err)
	}

	now := s.clock.Now()
	client := &models.Client{
		Name:          strings.TrimSpace(req.Name),
		Email:         strings.TrimSpace(req.Email),
		Phone:         strings.TrimSpace(req.Phone),
		SelfOnboarded: true,
		OnboardedAt:   &now,
		Status:        models.ClientStatusPendingApproval,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := s.clients.Create(ctx, tenantID, client); err != nil {
		return nil, clientWriteError("create onboarded client", err)
	}
	s.logger.Info("client self-onboarded", zap.String("tenantId", tenantID), zap.String("clientId", client.ID))
	return client, nil
}
