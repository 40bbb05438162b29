package core

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"stackassist-backend/internal/db"
	"stackassist-backend/internal/metrics"
	"stackassist-backend/internal/models"
	"stackassist-backend/pkg/mailer"
)

type teamService struct {
	team      db.TeamRepository
	users     db.UserRepository
	identity  IdentityProvider
	outbox    Outbox
	authz     *Authorizer
	clock     Clock
	clientURL string
	logger    *zap.Logger
}

// NewTeamService creates a TeamService. clientURL is the dashboard origin used in
// invitation links.
func NewTeamService(store *db.Store, identity IdentityProvider, outbox Outbox, authz *Authorizer, clock Clock, clientURL string, logger *zap.Logger) TeamService {
	return &teamService{
		team:      store.Team,
		users:     store.Users,
		identity:  identity,
		outbox:    outbox,
		authz:     authz,
		clock:     clock,
		clientURL: strings.TrimRight(clientURL, "/"),
		logger:    logger,
	}
}

func (s *teamService) ListMembers(ctx context.Context, p models.Principal) ([]*models.TeamMember, error) {
	if err := s.authz.Authorize(p, ObjectTeam, ActionRead); err != nil {
		return nil, err
	}
	members, err := s.team.ListMembers(ctx, p.TenantID)
	if err != nil {
		return nil, storeError("list team members", err)
	}
	return members, nil
}

func (s *teamService) ListInvites(ctx context.Context, p models.Principal) ([]*models.TeamInvite, error) {
	if err := s.authz.Authorize(p, ObjectTeam, ActionRead); err != nil {
		return nil, err
	}
	invites, err := s.team.ListInvites(ctx, p.TenantID)
	if err != nil {
		return nil, storeError("list team invites", err)
	}
	return invites, nil
}

func (s *teamService) Invite(ctx context.Context, p models.Principal, req models.InviteMemberRequest) (*models.TeamMember, error) {
	if err := s.authz.Authorize(p, ObjectTeam, ActionCreate); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	email := db.NormalizeEmail(req.Email)
	if email == db.NormalizeEmail(p.Email) {
		return nil, wrapf(ErrValidation, "you cannot invite yourself")
	}
	perms := models.DefaultPermissions()
	if req.Permissions != nil {
		perms = *req.Permissions
	}
	companyName := s.companyName(ctx, p.TenantID)

	now := s.clock.Now()
	member := &models.TeamMember{
		OwnerID:      p.TenantID,
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		Role:         req.Role,
		Permissions:  perms,
		Status:       models.MemberStatusPending,
		InvitedBy:    p.Email,
		CreatedAt:    now,
		LastModified: now,
	}
	invite := &models.TeamInvite{
		OwnerID:     p.TenantID,
		OwnerEmail:  p.Email,
		Email:       email,
		CompanyName: companyName,
		Status:      models.InviteStatusPending,
		Permissions: perms,
		CreatedAt:   now,
	}
	if err := s.team.CreateMemberWithInvite(ctx, member, invite); err != nil {
		if errors.Is(err, db.ErrAlreadyExists) {
			return nil, ErrAlreadyTeamMember
		}
		return nil, storeError("create team member", err)
	}
	s.logger.Info("team member invited",
		zap.String("ownerId", p.TenantID),
		zap.String("memberId", member.ID),
		zap.String("email", email))

	delivery, deliveryErr := s.deliverInvitation(ctx, email, p.Email, companyName)
	invite.DeliveryStatus = delivery
	if err := s.team.UpdateInviteDelivery(ctx, p.TenantID, invite.ID, delivery); err != nil {
		s.logger.Warn("failed to record invitation delivery status",
			zap.String("inviteId", invite.ID),
			zap.Error(err))
	}
	switch {
	case deliveryErr == nil:
		metrics.RecordInvitation("delivered")
	case delivery.ResetLinkSent || delivery.InvitationSent:
		metrics.RecordInvitation("partial")
	default:
		metrics.RecordInvitation("failed")
	}
	if deliveryErr != nil {
		s.logger.Warn("invitation stored but not fully delivered",
			zap.String("memberId", member.ID),
			zap.Error(deliveryErr))
	}
	return member, deliveryErr
}

// deliverInvitation sends the password setup link and the invitation email. Each leg
// is attempted regardless of the other; failures are joined under ErrInvitationDelivery.
func (s *teamService) deliverInvitation(ctx context.Context, email, ownerName, companyName string) (models.InviteDelivery, error) {
	var (
		delivery models.InviteDelivery
		errs     []error
	)

	if err := s.sendSetupLink(ctx, email, ownerName, companyName); err != nil {
		errs = append(errs, fmt.Errorf("password setup email: %w", err))
	} else {
		delivery.ResetLinkSent = true
	}
	if err := s.outbox.Deliver(ctx, invitationEmail(email, ownerName, companyName, s.clientURL)); err != nil {
		errs = append(errs, fmt.Errorf("invitation email: %w", err))
	} else {
		delivery.InvitationSent = true
	}

	if len(errs) == 0 {
		return delivery, nil
	}
	legs := make([]string, 0, len(errs))
	for _, err := range errs {
		legs = append(legs, err.Error())
	}
	delivery.LastError = strings.Join(legs, "; ")
	return delivery, errors.Join(append([]error{ErrInvitationDelivery}, errs...)...)
}

func (s *teamService) sendSetupLink(ctx context.Context, email, ownerName, companyName string) error {
	link, err := s.identity.InviteLink(ctx, email, s.invitationContinueURL(email, ownerName, companyName))
	if err != nil {
		return err
	}
	return s.outbox.Deliver(ctx, setupLinkEmail(email, companyName, link))
}

// invitationContinueURL is where the password setup flow returns to. The login page
// reads these parameters to recognise a team invitation.
func (s *teamService) invitationContinueURL(email, ownerName, companyName string) string {
	q := url.Values{}
	q.Set("email", email)
	q.Set("type", "team-invitation")
	q.Set("owner", ownerName)
	q.Set("company", companyName)
	return s.clientURL + "/login?" + q.Encode()
}

func (s *teamService) SendInvitationEmail(ctx context.Context, p models.Principal, req models.SendInvitationEmailRequest) error {
	if err := s.authz.Authorize(p, ObjectTeam, ActionCreate); err != nil {
		return err
	}
	if err := validateRequest(req); err != nil {
		return err
	}
	owner := req.TeamOwnerName
	if owner == "" {
		owner = p.Email
	}
	company := req.CompanyName
	if company == "" {
		company = s.companyName(ctx, p.TenantID)
	}
	if err := s.outbox.Deliver(ctx, invitationEmail(db.NormalizeEmail(req.Email), owner, company, s.clientURL)); err != nil {
		return fmt.Errorf("send invitation email: %w", err)
	}
	return nil
}

func (s *teamService) UpdateMember(ctx context.Context, p models.Principal, id string, req models.UpdateMemberRequest) (*models.TeamMember, error) {
	if err := s.authz.Authorize(p, ObjectTeam, ActionUpdate); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	member, err := s.team.GetMember(ctx, p.TenantID, id)
	if err != nil {
		return nil, storeError("get team member", err)
	}
	if req.Name != nil {
		member.Name = strings.TrimSpace(*req.Name)
	}
	if req.Role != nil {
		member.Role = *req.Role
	}
	if req.Permissions != nil {
		member.Permissions = *req.Permissions
	}
	if req.Status != nil {
		member.Status = *req.Status
	}
	member.LastModified = s.clock.Now()
	member.ModifiedBy = p.UserID

	if err := s.team.UpdateMember(ctx, p.TenantID, id, member); err != nil {
		return nil, storeError("update team member", err)
	}
	return member, nil
}

// RemoveMember deletes the member from teamMembers and drops its cached grants.
func (s *teamService) RemoveMember(ctx context.Context, p models.Principal, id string) error {
	if err := s.authz.Authorize(p, ObjectTeam, ActionDelete); err != nil {
		return err
	}
	member, err := s.team.GetMember(ctx, p.TenantID, id)
	if err != nil {
		return storeError("get team member", err)
	}
	if err := s.team.DeleteMember(ctx, p.TenantID, id); err != nil {
		return storeError("delete team member", err)
	}
	if member.UserID != "" {
		if err := s.authz.Forget(member.UserID, p.TenantID); err != nil {
			s.logger.Warn("failed to drop grants of removed member", zap.String("memberId", id), zap.Error(err))
		}
	}
	return nil
}

func (s *teamService) companyName(ctx context.Context, tenantID string) string {
	tenant, err := s.users.Get(ctx, tenantID)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			s.logger.Warn("failed to load tenant profile", zap.String("tenantId", tenantID), zap.Error(err))
		}
		return models.DefaultCompanyName
	}
	return tenant.DisplayCompanyName()
}

func invitationEmail(to, ownerName, companyName, appURL string) mailer.Message {
	company := html.EscapeString(companyName)
	owner := html.EscapeString(ownerName)
	return mailer.Message{
		To:      to,
		Subject: fmt.Sprintf("Join %s's Team on Stack Assist", companyName),
		Body: fmt.Sprintf(`<h2>Welcome to Stack Assist!</h2>
<p>You've been invited to join %s's team by %s.</p>
<p>You'll receive a separate email with a link to set up your password. Please follow these steps:</p>
<ol>
  <li>Click the password setup link in the other email</li>
  <li>Set your secure password</li>
  <li>Log in at %s</li>
</ol>
<p>If you have any questions, please contact your team owner at %s.</p>
<p>Best regards,<br>The Stack Assist Team</p>`, company, owner, html.EscapeString(appURL), owner),
	}
}

func setupLinkEmail(to, companyName, link string) mailer.Message {
	return mailer.Message{
		To:      to,
		Subject: "Set up your Stack Assist password",
		Body: fmt.Sprintf(`<p>You have been added to %s's team on Stack Assist.</p>
<p><a href="%s">Set your password</a> to activate your account.</p>
<p>If you did not expect this invitation you can ignore this email.</p>`,
			html.EscapeString(companyName), html.EscapeString(link)),
	}
}
