package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stackassist-backend/internal/models"
)

func TestMessageService_MembersShareTheTenantChat(t *testing.T) {
	f := newFixture(t)
	svc := NewMessageService(f.store.Messages, f.authz, f.clock, f.logger)
	member := f.member(models.DefaultPermissions())

	_, err := svc.Post(f.ctx, f.owner, models.PostMessageRequest{Content: "  Renewals due this week  "})
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	reply, err := svc.Post(f.ctx, member, models.PostMessageRequest{Content: "On it"})
	require.NoError(t, err)
	assert.Equal(t, member.UserID, reply.SenderID)

	messages, err := svc.List(f.ctx, member)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "Renewals due this week", messages[0].Content)
	assert.Equal(t, "On it", messages[1].Content)

	_, err = svc.Post(f.ctx, f.owner, models.PostMessageRequest{Content: "   "})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAccountService_Profile(t *testing.T) {
	f := newFixture(t)
	svc := NewAccountService(f.store.Users)

	profile, err := svc.Profile(f.ctx, f.member(models.DefaultPermissions()))
	require.NoError(t, err)
	assert.Equal(t, "Acme Digital", profile.CompanyName)
	assert.Equal(t, f.owner.Email, profile.OwnerEmail)

	solo, err := svc.Profile(f.ctx, models.OwnerPrincipal("new-1", "new@agency.test"))
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCompanyName, solo.CompanyName)
}
