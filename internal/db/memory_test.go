package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stackassist-backend/internal/models"
)

func TestMemoryCollection_ListIsTenantScoped(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for i := 0; i < 3; i++ {
		_, err := store.Sites.Create(ctx, "tenant-a", &models.Site{Name: "a"})
		require.NoError(t, err)
	}
	for i := 0; i < 2; i++ {
		_, err := store.Sites.Create(ctx, "tenant-b", &models.Site{Name: "b"})
		require.NoError(t, err)
	}

	sitesA, err := store.Sites.List(ctx, "tenant-a")
	require.NoError(t, err)
	sitesB, err := store.Sites.List(ctx, "tenant-b")
	require.NoError(t, err)

	require.Len(t, sitesA, 3)
	require.Len(t, sitesB, 2)
	idsA := map[string]bool{}
	for _, s := range sitesA {
		assert.Equal(t, "tenant-a", s.UserID)
		idsA[s.ID] = true
	}
	for _, s := range sitesB {
		assert.Equal(t, "tenant-b", s.UserID)
		assert.False(t, idsA[s.ID], "site %s leaked across tenants", s.ID)
	}
}

func TestMemoryCollection_ForeignRecordsAreNotFound(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	id, err := store.Tasks.Create(ctx, "tenant-a", &models.Task{Title: "renew"})
	require.NoError(t, err)

	_, err = store.Tasks.Get(ctx, "tenant-b", id)
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.Tasks.Update(ctx, "tenant-b", id, &models.Task{Title: "hijack"})
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.Tasks.Delete(ctx, "tenant-b", id)
	assert.ErrorIs(t, err, ErrNotFound)

	task, err := store.Tasks.Get(ctx, "tenant-a", id)
	require.NoError(t, err)
	assert.Equal(t, "renew", task.Title)
}

func TestMemoryCollection_RequiresTenant(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Sites.List(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingTenant)
}

func TestMemoryClientRepository_Uniqueness(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	firstID, err := store.Clients.Create(ctx, "tenant-a", &models.Client{Name: "Acme", Email: "Owner@Acme.io", Phone: "555-0100"})
	require.NoError(t, err)

	_, err = store.Clients.Create(ctx, "tenant-a", &models.Client{Name: "Dup", Email: "owner@acme.io", Phone: "555-0199"})
	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "email", conflict.Key)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	_, err = store.Clients.Create(ctx, "tenant-a", &models.Client{Name: "Dup", Email: "other@acme.io", Phone: "555-0100"})
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "phone", conflict.Key)

	clients, err := store.Clients.List(ctx, "tenant-a")
	require.NoError(t, err)
	assert.Len(t, clients, 1)

	_, err = store.Clients.Create(ctx, "tenant-b", &models.Client{Name: "Acme B", Email: "owner@acme.io", Phone: "555-0100"})
	assert.NoError(t, err, "the same email is free in another tenant")

	// Updating a client with its own keys does not conflict; freeing a key makes it reusable.
	first, err := store.Clients.Get(ctx, "tenant-a", firstID)
	require.NoError(t, err)
	first.Phone = "555-0200"
	require.NoError(t, store.Clients.Update(ctx, "tenant-a", firstID, first))

	_, err = store.Clients.Create(ctx, "tenant-a", &models.Client{Name: "New", Email: "new@acme.io", Phone: "555-0100"})
	assert.NoError(t, err)

	require.NoError(t, store.Clients.Delete(ctx, "tenant-a", firstID))
	_, err = store.Clients.Create(ctx, "tenant-a", &models.Client{Name: "Again", Email: "owner@acme.io", Phone: "555-0300"})
	assert.NoError(t, err)
}

func TestMemoryTeamRepository_InviteAndActivate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	member := &models.TeamMember{OwnerID: "owner-1", Email: "Dev@Agency.io", Status: models.MemberStatusPending}
	invite := &models.TeamInvite{Status: models.InviteStatusPending}
	require.NoError(t, store.Team.CreateMemberWithInvite(ctx, member, invite))
	assert.Equal(t, "dev@agency.io", member.Email)
	assert.Equal(t, "owner-1", invite.OwnerID)

	err := store.Team.CreateMemberWithInvite(ctx,
		&models.TeamMember{OwnerID: "owner-1", Email: "dev@agency.io"}, &models.TeamInvite{})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	found, err := store.Team.FindMembersByEmail(ctx, "DEV@agency.io")
	require.NoError(t, err)
	require.Len(t, found, 1)

	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.Team.ActivateMember(ctx, found[0], "uid-dev", at))
	assert.Equal(t, models.MemberStatusActive, found[0].Status)

	byUser, err := store.Team.FindMembersByUserID(ctx, "uid-dev")
	require.NoError(t, err)
	require.Len(t, byUser, 1)
	assert.Equal(t, "owner-1", byUser[0].OwnerID)

	invites, err := store.Team.ListInvites(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, invites, 1)
	assert.Equal(t, models.InviteStatusAccepted, invites[0].Status)
	require.NotNil(t, invites[0].AcceptedAt)

	require.NoError(t, store.Team.DeleteMember(ctx, "owner-1", member.ID))
	err = store.Team.CreateMemberWithInvite(ctx,
		&models.TeamMember{OwnerID: "owner-1", Email: "dev@agency.io"}, &models.TeamInvite{})
	assert.NoError(t, err, "deleting a member frees the email")
}

func TestDiffKeys(t *testing.T) {
	email := uniqueKey{Scope: "clients", Field: "email", TenantID: "t", Value: "a@b.c"}
	oldPhone := uniqueKey{Scope: "clients", Field: "phone", TenantID: "t", Value: "1"}
	newPhone := uniqueKey{Scope: "clients", Field: "phone", TenantID: "t", Value: "2"}

	added, removed := diffKeys([]uniqueKey{email, oldPhone}, []uniqueKey{email, newPhone})
	assert.Equal(t, []uniqueKey{newPhone}, added)
	assert.Equal(t, []uniqueKey{oldPhone}, removed)
}
