package core

import (
	"context"
	"errors"

	"stackassist-backend/internal/db"
	"stackassist-backend/internal/models"
)

// Profile describes the caller and the tenant they act on.
type Profile struct {
	Principal   models.Principal `json:"principal"`
	CompanyName string           `json:"companyName"`
	OwnerEmail  string           `json:"ownerEmail,omitempty"`
}

type accountService struct {
	users db.UserRepository
}

func NewAccountService(users db.UserRepository) AccountService {
	return &accountService{users: users}
}

func (s *accountService) Profile(ctx context.Context, p models.Principal) (*Profile, error) {
	profile := &Profile{Principal: p, CompanyName: models.DefaultCompanyName}
	tenant, err := s.users.Get(ctx, p.TenantID)
	switch {
	case err == nil:
		profile.CompanyName = tenant.DisplayCompanyName()
		profile.OwnerEmail = tenant.Email
	case !errors.Is(err, db.ErrNotFound):
		return nil, storeError("get tenant", err)
	}
	return profile, nil
}
