package core

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"stackassist-backend/internal/db"
	"stackassist-backend/internal/models"
)

// AccessGuard resolves which tenant an authenticated caller acts on.
//
// A caller with an active team membership acts on the owner's tenant with the
// member's permissions. A pending invite matching the caller's email is activated on
// first sign-in, but only for a verified email and a caller without a tenant profile
// of their own. A caller with no membership owns their own tenant. Inactive members
// and lookup failures are denied.
type AccessGuard struct {
	team   db.TeamRepository
	users  db.UserRepository
	clock  Clock
	logger *zap.Logger
}

func NewAccessGuard(team db.TeamRepository, users db.UserRepository, clock Clock, logger *zap.Logger) *AccessGuard {
	return &AccessGuard{team: team, users: users, clock: clock, logger: logger}
}

// Resolve returns the principal for an authenticated identity.
func (g *AccessGuard) Resolve(ctx context.Context, identity models.Identity) (models.Principal, error) {
	userID, email := identity.UserID, identity.Email
	if userID == "" {
		return models.Principal{}, ErrAccessDenied
	}

	members, err := g.team.FindMembersByUserID(ctx, userID)
	if err != nil {
		g.logger.Error("membership lookup failed", zap.String("uid", userID), zap.Error(err))
		return models.Principal{}, fmt.Errorf("%w: membership lookup failed", ErrAccessDenied)
	}
	if len(members) > 0 {
		for _, m := range members {
			if m.Status == models.MemberStatusActive {
				return memberPrincipal(userID, email, m), nil
			}
		}
		g.logger.Info("denied non-active team member",
			zap.String("uid", userID),
			zap.String("status", members[0].Status))
		return models.Principal{}, ErrAccessDenied
	}

	activate, err := g.mayActivate(ctx, identity)
	if err != nil {
		g.logger.Error("tenant profile lookup failed", zap.String("uid", userID), zap.Error(err))
		return models.Principal{}, fmt.Errorf("%w: membership lookup failed", ErrAccessDenied)
	}
	if activate {
		pending, err := g.pendingInvite(ctx, email)
		if err != nil {
			g.logger.Error("pending invite lookup failed", zap.String("uid", userID), zap.Error(err))
			return models.Principal{}, fmt.Errorf("%w: membership lookup failed", ErrAccessDenied)
		}
		if pending != nil {
			if err := g.team.ActivateMember(ctx, pending, userID, g.clock.Now()); err != nil {
				g.logger.Error("failed to activate team member",
					zap.String("uid", userID),
					zap.String("memberId", pending.ID),
					zap.Error(err))
				return models.Principal{}, fmt.Errorf("%w: activation failed", ErrAccessDenied)
			}
			g.logger.Info("activated team member",
				zap.String("uid", userID),
				zap.String("ownerId", pending.OwnerID),
				zap.String("memberId", pending.ID))
			return memberPrincipal(userID, email, pending), nil
		}
	}

	return models.OwnerPrincipal(userID, email), nil
}

// mayActivate reports whether a pending invite may be claimed by identity. Owners of a
// tenant keep it even when another tenant invites their email.
func (g *AccessGuard) mayActivate(ctx context.Context, identity models.Identity) (bool, error) {
	if identity.Email == "" || !identity.EmailVerified {
		return false, nil
	}
	_, err := g.users.Get(ctx, identity.UserID)
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, db.ErrNotFound):
		return true, nil
	default:
		return false, err
	}
}

func (g *AccessGuard) pendingInvite(ctx context.Context, email string) (*models.TeamMember, error) {
	members, err := g.team.FindMembersByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if m.Status == models.MemberStatusPending && m.UserID == "" {
			return m, nil
		}
	}
	return nil, nil
}

func memberPrincipal(userID, email string, m *models.TeamMember) models.Principal {
	return models.Principal{
		UserID:      userID,
		Email:       email,
		TenantID:    m.OwnerID,
		Role:        models.RoleMember,
		MemberID:    m.ID,
		Permissions: m.Permissions,
	}
}
