package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stackassist-backend/internal/models"
	"stackassist-backend/pkg/mailer"
)

func newTestTeamService(f *fixture) TeamService {
	return NewTeamService(f.store, f.identity, f.outbox, f.authz, f.clock, "https://app.stackassist.test/", f.logger)
}

func inviteRequest(email string) models.InviteMemberRequest {
	return models.InviteMemberRequest{Email: email, Name: "Dev", Role: "Developer"}
}

func TestTeamService_InviteSendsBothEmails(t *testing.T) {
	f := newFixture(t)
	svc := newTestTeamService(f)

	member, err := svc.Invite(f.ctx, f.owner, inviteRequest("Dev@Agency.test"))
	require.NoError(t, err)
	assert.Equal(t, "dev@agency.test", member.Email)
	assert.Equal(t, models.MemberStatusPending, member.Status)
	assert.Equal(t, models.DefaultPermissions(), member.Permissions)
	assert.Empty(t, member.UserID)

	sent := f.outbox.messages()
	require.Len(t, sent, 2)
	assert.Equal(t, "Set up your Stack Assist password", sent[0].Subject)
	assert.Equal(t, "Join Acme Digital's Team on Stack Assist", sent[1].Subject)
	assert.Equal(t, []string{"dev@agency.test", "dev@agency.test"}, f.outbox.recipients())

	require.Len(t, f.identity.links, 1)
	assert.Contains(t, f.identity.links[0], "https://app.stackassist.test/login?")
	assert.Contains(t, f.identity.links[0], "type=team-invitation")

	invites, err := svc.ListInvites(f.ctx, f.owner)
	require.NoError(t, err)
	require.Len(t, invites, 1)
	assert.Equal(t, models.InviteDelivery{ResetLinkSent: true, InvitationSent: true}, invites[0].DeliveryStatus)
	assert.Equal(t, "Acme Digital", invites[0].CompanyName)
}

func TestTeamService_InvitePartialDelivery(t *testing.T) {
	f := newFixture(t)
	f.outbox.fail = func(msg mailer.Message) error {
		if strings.HasPrefix(msg.Subject, "Join ") {
			return errRelayDown
		}
		return nil
	}
	svc := newTestTeamService(f)

	member, err := svc.Invite(f.ctx, f.owner, inviteRequest("dev@agency.test"))
	require.NotNil(t, member)
	assert.ErrorIs(t, err, ErrInvitationDelivery)
	assert.ErrorIs(t, err, errRelayDown)

	members, err := svc.ListMembers(f.ctx, f.owner)
	require.NoError(t, err)
	assert.Len(t, members, 1)

	invites, err := svc.ListInvites(f.ctx, f.owner)
	require.NoError(t, err)
	require.Len(t, invites, 1)
	delivery := invites[0].DeliveryStatus
	assert.True(t, delivery.ResetLinkSent)
	assert.False(t, delivery.InvitationSent)
	assert.Contains(t, delivery.LastError, "relay down")
}

func TestTeamService_InviteLinkFailure(t *testing.T) {
	f := newFixture(t)
	f.identity.linkErr = errRelayDown
	svc := newTestTeamService(f)

	_, err := svc.Invite(f.ctx, f.owner, inviteRequest("dev@agency.test"))
	assert.ErrorIs(t, err, ErrInvitationDelivery)

	invites, err := svc.ListInvites(f.ctx, f.owner)
	require.NoError(t, err)
	require.Len(t, invites, 1)
	assert.False(t, invites[0].DeliveryStatus.ResetLinkSent)
	assert.True(t, invites[0].DeliveryStatus.InvitationSent)
}

func TestTeamService_RejectsDuplicateAndSelfInvite(t *testing.T) {
	f := newFixture(t)
	svc := newTestTeamService(f)

	_, err := svc.Invite(f.ctx, f.owner, inviteRequest("dev@agency.test"))
	require.NoError(t, err)
	_, err = svc.Invite(f.ctx, f.owner, inviteRequest("DEV@agency.test"))
	assert.ErrorIs(t, err, ErrAlreadyTeamMember)

	_, err = svc.Invite(f.ctx, f.owner, inviteRequest(f.owner.Email))
	assert.ErrorIs(t, err, ErrValidation)

	// Another owner may invite the same person.
	other := models.OwnerPrincipal("owner-2", "two@agency.test")
	_, err = svc.Invite(f.ctx, other, inviteRequest("dev@agency.test"))
	require.NoError(t, err)
}

func TestTeamService_OwnerOnly(t *testing.T) {
	f := newFixture(t)
	svc := newTestTeamService(f)
	member := f.member(models.Permissions{CanCreate: true, CanEdit: true, CanDelete: true, Modules: models.ModulePermissions{Clients: true}})

	_, err := svc.Invite(f.ctx, member, inviteRequest("new@agency.test"))
	assert.ErrorIs(t, err, ErrPermissionDenied)
	_, err = svc.ListMembers(f.ctx, member)
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Empty(t, f.outbox.messages())
}

func TestTeamService_UpdateAndRemoveMember(t *testing.T) {
	f := newFixture(t)
	svc := newTestTeamService(f)
	invited, err := svc.Invite(f.ctx, f.owner, inviteRequest("dev@agency.test"))
	require.NoError(t, err)

	perms := models.Permissions{CanEdit: true, Modules: models.ModulePermissions{Sites: true, Tasks: true}}
	updated, err := svc.UpdateMember(f.ctx, f.owner, invited.ID, models.UpdateMemberRequest{Permissions: &perms})
	require.NoError(t, err)
	assert.Equal(t, perms, updated.Permissions)
	assert.Equal(t, f.owner.UserID, updated.ModifiedBy)

	require.NoError(t, svc.RemoveMember(f.ctx, f.owner, invited.ID))
	members, err := svc.ListMembers(f.ctx, f.owner)
	require.NoError(t, err)
	assert.Empty(t, members)

	// The email can be invited again once removed.
	_, err = svc.Invite(f.ctx, f.owner, inviteRequest("dev@agency.test"))
	require.NoError(t, err)
}

func TestTeamService_InvitationEmailEscapesNames(t *testing.T) {
	msg := invitationEmail("dev@agency.test", "<b>Owner</b>", "Acme & Co", "https://app.test")
	assert.Equal(t, "Join Acme & Co's Team on Stack Assist", msg.Subject)
	assert.Contains(t, msg.Body, "Acme &amp; Co")
	assert.Contains(t, msg.Body, "&lt;b&gt;Owner&lt;/b&gt;")
	assert.True(t, mailer.IsHTML(msg.Body))
}
