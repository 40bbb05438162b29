package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stackassist-backend/internal/models"
)

func TestAuthorizer_OwnerMayDoEverythingInOwnTenant(t *testing.T) {
	f := newFixture(t)

	for _, obj := range []string{string(models.ModuleClients), ObjectTeam, ObjectNotifications} {
		for _, act := range []Action{ActionRead, ActionCreate, ActionUpdate, ActionDelete} {
			assert.NoError(t, f.authz.Authorize(f.owner, obj, act), "%s %s", act, obj)
		}
	}

	foreign := f.owner
	foreign.TenantID = "someone-else"
	allowed, err := f.authz.Check(foreign, string(models.ModuleClients), ActionRead)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestAuthorizer_MemberGrants(t *testing.T) {
	f := newFixture(t)
	member := f.member(models.Permissions{
		CanCreate: true,
		Modules:   models.ModulePermissions{Clients: true, Sites: true},
	})

	assert.NoError(t, f.authz.Authorize(member, string(models.ModuleClients), ActionRead))
	assert.NoError(t, f.authz.Authorize(member, string(models.ModuleSites), ActionCreate))
	assert.ErrorIs(t, f.authz.Authorize(member, string(models.ModuleSites), ActionUpdate), ErrPermissionDenied)
	assert.ErrorIs(t, f.authz.Authorize(member, string(models.ModuleClients), ActionDelete), ErrPermissionDenied)
	assert.ErrorIs(t, f.authz.Authorize(member, string(models.ModuleHosting), ActionRead), ErrPermissionDenied)
	assert.ErrorIs(t, f.authz.Authorize(member, ObjectTeam, ActionRead), ErrPermissionDenied)
	assert.ErrorIs(t, f.authz.Authorize(member, ObjectNotifications, ActionRead), ErrPermissionDenied)
	assert.NoError(t, f.authz.Authorize(member, ObjectMessages, ActionCreate))
}

func TestAuthorizer_CreateFlagNeedsModule(t *testing.T) {
	f := newFixture(t)
	member := f.member(models.DefaultPermissions())

	assert.ErrorIs(t, f.authz.Authorize(member, string(models.ModuleClients), ActionCreate), ErrPermissionDenied)
}

func TestAuthorizer_PermissionChangesApplyImmediately(t *testing.T) {
	f := newFixture(t)
	member := f.member(models.Permissions{Modules: models.ModulePermissions{Tasks: true}})
	require.ErrorIs(t, f.authz.Authorize(member, string(models.ModuleTasks), ActionUpdate), ErrPermissionDenied)

	member.Permissions.CanEdit = true
	assert.NoError(t, f.authz.Authorize(member, string(models.ModuleTasks), ActionUpdate))

	member.Permissions.Modules.Tasks = false
	assert.ErrorIs(t, f.authz.Authorize(member, string(models.ModuleTasks), ActionRead), ErrPermissionDenied)
}

func TestAuthorizer_Forget(t *testing.T) {
	f := newFixture(t)
	member := f.member(models.Permissions{Modules: models.ModulePermissions{Clients: true}})
	require.NoError(t, f.authz.Authorize(member, string(models.ModuleClients), ActionRead))

	require.NoError(t, f.authz.Forget(member.UserID, member.TenantID))
	// The next check reloads the grants from the principal it is given.
	assert.NoError(t, f.authz.Authorize(member, string(models.ModuleClients), ActionRead))
}

func TestAuthorizer_UnknownRoleDenied(t *testing.T) {
	f := newFixture(t)
	p := models.Principal{UserID: "x", TenantID: "owner-1", Role: "guest"}

	allowed, err := f.authz.Check(p, string(models.ModuleClients), ActionRead)
	require.NoError(t, err)
	assert.False(t, allowed)
}
