package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stackassist-backend/internal/models"
)

func newClientRequest(name, email, phone string) models.CreateClientRequest {
	return models.CreateClientRequest{Name: name, Email: email, Phone: phone}
}

func TestClientService_CreateAndList(t *testing.T) {
	f := newFixture(t)
	svc := NewClientService(f.store.Clients, f.authz, f.clock, f.logger)

	client, err := svc.Create(f.ctx, f.owner, models.CreateClientRequest{
		Name:    "  Jane Doe ",
		Email:   "jane@client.test",
		Phone:   "+1 555 0100",
		Company: "Doe Bakery",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, client.ID)
	assert.Equal(t, "Jane Doe", client.Name)
	assert.Equal(t, f.owner.TenantID, client.UserID)
	assert.Equal(t, fixtureNow, client.CreatedAt)

	clients, err := svc.List(f.ctx, f.owner)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "Doe Bakery", clients[0].Company)
}

func TestClientService_RejectsDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	svc := NewClientService(f.store.Clients, f.authz, f.clock, f.logger)

	_, err := svc.Create(f.ctx, f.owner, newClientRequest("Jane", "jane@client.test", "100"))
	require.NoError(t, err)

	_, err = svc.Create(f.ctx, f.owner, newClientRequest("Jane Again", "JANE@client.test", "200"))
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	_, err = svc.Create(f.ctx, f.owner, newClientRequest("Other", "other@client.test", "100"))
	assert.ErrorIs(t, err, ErrDuplicatePhone)

	clients, err := svc.List(f.ctx, f.owner)
	require.NoError(t, err)
	assert.Len(t, clients, 1)
}

func TestClientService_SameEmailAcrossTenants(t *testing.T) {
	f := newFixture(t)
	svc := NewClientService(f.store.Clients, f.authz, f.clock, f.logger)
	other := models.OwnerPrincipal("owner-2", "two@agency.test")

	_, err := svc.Create(f.ctx, f.owner, newClientRequest("Jane", "jane@client.test", "100"))
	require.NoError(t, err)
	_, err = svc.Create(f.ctx, other, newClientRequest("Jane", "jane@client.test", "100"))
	require.NoError(t, err)

	mine, err := svc.List(f.ctx, f.owner)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestClientService_UpdateIntoConflict(t *testing.T) {
	f := newFixture(t)
	svc := NewClientService(f.store.Clients, f.authz, f.clock, f.logger)

	_, err := svc.Create(f.ctx, f.owner, newClientRequest("Jane", "jane@client.test", "100"))
	require.NoError(t, err)
	bob, err := svc.Create(f.ctx, f.owner, newClientRequest("Bob", "bob@client.test", "200"))
	require.NoError(t, err)

	taken := "jane@client.test"
	_, err = svc.Update(f.ctx, f.owner, bob.ID, models.UpdateClientRequest{Email: &taken})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	// Keeping its own email is not a conflict.
	own := "Bob@Client.test"
	updated, err := svc.Update(f.ctx, f.owner, bob.ID, models.UpdateClientRequest{Email: &own})
	require.NoError(t, err)
	assert.Equal(t, "Bob@Client.test", updated.Email)
}

func TestClientService_ForeignRecordIsNotFound(t *testing.T) {
	f := newFixture(t)
	svc := NewClientService(f.store.Clients, f.authz, f.clock, f.logger)
	other := models.OwnerPrincipal("owner-2", "two@agency.test")

	theirs, err := svc.Create(f.ctx, other, newClientRequest("Jane", "jane@client.test", "100"))
	require.NoError(t, err)

	_, err = svc.Get(f.ctx, f.owner, theirs.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	name := "Hijacked"
	_, err = svc.Update(f.ctx, f.owner, theirs.ID, models.UpdateClientRequest{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(f.ctx, f.owner, theirs.ID), ErrNotFound)

	still, err := svc.Get(f.ctx, other, theirs.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane", still.Name)
}

func TestClientService_MemberPermissions(t *testing.T) {
	f := newFixture(t)
	svc := NewClientService(f.store.Clients, f.authz, f.clock, f.logger)
	reader := f.member(models.Permissions{Modules: models.ModulePermissions{Clients: true}})
	outsider := f.member(models.Permissions{CanCreate: true, Modules: models.ModulePermissions{Sites: true}})

	created, err := svc.Create(f.ctx, f.owner, newClientRequest("Jane", "jane@client.test", "100"))
	require.NoError(t, err)

	clients, err := svc.List(f.ctx, reader)
	require.NoError(t, err)
	assert.Len(t, clients, 1)

	_, err = svc.Create(f.ctx, reader, newClientRequest("Bob", "bob@client.test", "200"))
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.ErrorIs(t, svc.Delete(f.ctx, reader, created.ID), ErrPermissionDenied)

	_, err = svc.List(f.ctx, outsider)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestClientService_ValidatesBeforeWriting(t *testing.T) {
	f := newFixture(t)
	svc := NewClientService(f.store.Clients, f.authz, f.clock, f.logger)

	_, err := svc.Create(f.ctx, f.owner, newClientRequest("", "not-an-email", "100"))
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "email")

	clients, err := svc.List(f.ctx, f.owner)
	require.NoError(t, err)
	assert.Empty(t, clients)
}
