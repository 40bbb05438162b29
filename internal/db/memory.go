package db

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"stackassist-backend/internal/models"
)

// memoryCollection is the in-process Repository[T] used by tests and STORE_DRIVER=memory.
// Records are copied on the way in and out so callers never share state with the store.
type memoryCollection[T any, P recordPtr[T]] struct {
	name    string
	mu      sync.RWMutex
	records map[string]T
	order   []string
}

func newMemoryCollection[T any, P recordPtr[T]](name string) *memoryCollection[T, P] {
	return &memoryCollection[T, P]{name: name, records: make(map[string]T)}
}

func (c *memoryCollection[T, P]) List(ctx context.Context, tenantID string) ([]*T, error) {
	if tenantID == "" {
		return nil, ErrMissingTenant
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	records := make([]*T, 0)
	for _, id := range c.order {
		rec := c.records[id]
		if P(&rec).GetTenantID() == tenantID {
			records = append(records, &rec)
		}
	}
	return records, nil
}

func (c *memoryCollection[T, P]) getLocked(tenantID, id string) (*T, error) {
	rec, ok := c.records[id]
	if !ok || P(&rec).GetTenantID() != tenantID {
		return nil, fmt.Errorf("%s/%s: %w", c.name, id, ErrNotFound)
	}
	return &rec, nil
}

func (c *memoryCollection[T, P]) Get(ctx context.Context, tenantID, id string) (*T, error) {
	if tenantID == "" {
		return nil, ErrMissingTenant
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.getLocked(tenantID, id)
}

func (c *memoryCollection[T, P]) insertLocked(tenantID string, rec *T) string {
	id := uuid.NewString()
	P(rec).SetID(id)
	P(rec).SetTenantID(tenantID)
	c.records[id] = *rec
	c.order = append(c.order, id)
	return id
}

func (c *memoryCollection[T, P]) Create(ctx context.Context, tenantID string, rec *T) (string, error) {
	if tenantID == "" {
		return "", ErrMissingTenant
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.insertLocked(tenantID, rec), nil
}

func (c *memoryCollection[T, P]) Update(ctx context.Context, tenantID, id string, rec *T) error {
	if tenantID == "" {
		return ErrMissingTenant
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.getLocked(tenantID, id); err != nil {
		return err
	}
	P(rec).SetID(id)
	P(rec).SetTenantID(tenantID)
	c.records[id] = *rec
	return nil
}

func (c *memoryCollection[T, P]) deleteLocked(id string) {
	delete(c.records, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *memoryCollection[T, P]) Delete(ctx context.Context, tenantID, id string) error {
	if tenantID == "" {
		return ErrMissingTenant
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.getLocked(tenantID, id); err != nil {
		return err
	}
	c.deleteLocked(id)
	return nil
}

// memoryClientRepository enforces the email and phone keys under the collection lock.
type memoryClientRepository struct {
	*memoryCollection[models.Client, *models.Client]
	keys map[string]string // uniqueKey.docID() -> client id
}

func newMemoryClientRepository() *memoryClientRepository {
	return &memoryClientRepository{
		memoryCollection: newMemoryCollection[models.Client](clientsCollection),
		keys:             make(map[string]string),
	}
}

func (r *memoryClientRepository) claimableLocked(keys []uniqueKey, recordID string) error {
	for _, k := range keys {
		if holder, ok := r.keys[k.docID()]; ok && holder != recordID {
			return &ConflictError{Key: k.Field, Value: k.Value}
		}
	}
	return nil
}

func (r *memoryClientRepository) Create(ctx context.Context, tenantID string, c *models.Client) (string, error) {
	if tenantID == "" {
		return "", ErrMissingTenant
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	c.UserID = tenantID
	c.EmailLower = NormalizeEmail(c.Email)
	keys := clientKeys(c)
	if err := r.claimableLocked(keys, ""); err != nil {
		return "", err
	}
	id := r.insertLocked(tenantID, c)
	for _, k := range keys {
		r.keys[k.docID()] = id
	}
	return id, nil
}

func (r *memoryClientRepository) Update(ctx context.Context, tenantID, id string, c *models.Client) error {
	if tenantID == "" {
		return ErrMissingTenant
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.getLocked(tenantID, id)
	if err != nil {
		return err
	}
	c.ID = id
	c.UserID = tenantID
	c.EmailLower = NormalizeEmail(c.Email)
	added, removed := diffKeys(clientKeys(current), clientKeys(c))
	if err := r.claimableLocked(added, id); err != nil {
		return err
	}
	for _, k := range removed {
		delete(r.keys, k.docID())
	}
	for _, k := range added {
		r.keys[k.docID()] = id
	}
	r.records[id] = *c
	return nil
}

func (r *memoryClientRepository) Delete(ctx context.Context, tenantID, id string) error {
	if tenantID == "" {
		return ErrMissingTenant
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.getLocked(tenantID, id)
	if err != nil {
		return err
	}
	for _, k := range clientKeys(current) {
		delete(r.keys, k.docID())
	}
	r.deleteLocked(id)
	return nil
}

// memoryTeamRepository keeps members and invites behind one lock.
type memoryTeamRepository struct {
	mu      sync.RWMutex
	members *memoryCollection[models.TeamMember, *models.TeamMember]
	invites *memoryCollection[models.TeamInvite, *models.TeamInvite]
	keys    map[string]string
}

func newMemoryTeamRepository() *memoryTeamRepository {
	return &memoryTeamRepository{
		members: newMemoryCollection[models.TeamMember](teamMembersCollection),
		invites: newMemoryCollection[models.TeamInvite](teamInvitesCollection),
		keys:    make(map[string]string),
	}
}

func (r *memoryTeamRepository) ListMembers(ctx context.Context, ownerID string) ([]*models.TeamMember, error) {
	return r.members.List(ctx, ownerID)
}

func (r *memoryTeamRepository) GetMember(ctx context.Context, ownerID, memberID string) (*models.TeamMember, error) {
	return r.members.Get(ctx, ownerID, memberID)
}

func (r *memoryTeamRepository) ListInvites(ctx context.Context, ownerID string) ([]*models.TeamInvite, error) {
	return r.invites.List(ctx, ownerID)
}

func (r *memoryTeamRepository) CreateMemberWithInvite(ctx context.Context, member *models.TeamMember, invite *models.TeamInvite) error {
	if member.OwnerID == "" {
		return ErrMissingTenant
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	member.Email = NormalizeEmail(member.Email)
	key := memberKey(member)
	if _, taken := r.keys[key.docID()]; taken {
		return &ConflictError{Key: key.Field, Value: key.Value}
	}
	invite.Email = member.Email
	invite.OwnerID = member.OwnerID

	r.members.mu.Lock()
	id := r.members.insertLocked(member.OwnerID, member)
	r.members.mu.Unlock()
	r.invites.mu.Lock()
	r.invites.insertLocked(member.OwnerID, invite)
	r.invites.mu.Unlock()
	r.keys[key.docID()] = id
	return nil
}

func (r *memoryTeamRepository) UpdateMember(ctx context.Context, ownerID, memberID string, member *models.TeamMember) error {
	return r.members.Update(ctx, ownerID, memberID, member)
}

func (r *memoryTeamRepository) DeleteMember(ctx context.Context, ownerID, memberID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	member, err := r.members.Get(ctx, ownerID, memberID)
	if err != nil {
		return err
	}
	if err := r.members.Delete(ctx, ownerID, memberID); err != nil {
		return err
	}
	delete(r.keys, memberKey(member).docID())
	return nil
}

func (r *memoryTeamRepository) findMembers(match func(*models.TeamMember) bool) []*models.TeamMember {
	r.members.mu.RLock()
	defer r.members.mu.RUnlock()

	found := make([]*models.TeamMember, 0)
	for _, id := range r.members.order {
		m := r.members.records[id]
		if match(&m) {
			found = append(found, &m)
		}
	}
	return found
}

func (r *memoryTeamRepository) FindMembersByUserID(ctx context.Context, userID string) ([]*models.TeamMember, error) {
	return r.findMembers(func(m *models.TeamMember) bool { return userID != "" && m.UserID == userID }), nil
}

func (r *memoryTeamRepository) FindMembersByEmail(ctx context.Context, email string) ([]*models.TeamMember, error) {
	normalized := NormalizeEmail(email)
	return r.findMembers(func(m *models.TeamMember) bool { return normalized != "" && m.Email == normalized }), nil
}

func (r *memoryTeamRepository) ActivateMember(ctx context.Context, member *models.TeamMember, userID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.members.Get(ctx, member.OwnerID, member.ID)
	if err != nil {
		return err
	}
	current.Status = models.MemberStatusActive
	current.UserID = userID
	current.LastModified = at
	if err := r.members.Update(ctx, member.OwnerID, member.ID, current); err != nil {
		return err
	}

	r.invites.mu.Lock()
	for id, inv := range r.invites.records {
		if inv.OwnerID == member.OwnerID && inv.Email == NormalizeEmail(member.Email) && inv.Status == models.InviteStatusPending {
			inv.Status = models.InviteStatusAccepted
			acceptedAt := at
			inv.AcceptedAt = &acceptedAt
			r.invites.records[id] = inv
		}
	}
	r.invites.mu.Unlock()

	*member = *current
	return nil
}

func (r *memoryTeamRepository) UpdateInviteDelivery(ctx context.Context, ownerID, inviteID string, delivery models.InviteDelivery) error {
	invite, err := r.invites.Get(ctx, ownerID, inviteID)
	if err != nil {
		return err
	}
	invite.DeliveryStatus = delivery
	return r.invites.Update(ctx, ownerID, inviteID, invite)
}

// memoryUserRepository keeps tenant profiles keyed by identity id.
type memoryUserRepository struct {
	mu      sync.RWMutex
	tenants map[string]models.Tenant
}

func (r *memoryUserRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tenant.ID == "" {
		return fmt.Errorf("tenant ID cannot be empty for Create operation")
	}
	if _, exists := r.tenants[tenant.ID]; exists {
		return fmt.Errorf("user '%s': %w", tenant.ID, ErrAlreadyExists)
	}
	r.tenants[tenant.ID] = *tenant
	return nil
}

func (r *memoryUserRepository) Get(ctx context.Context, userID string) (*models.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tenant, ok := r.tenants[userID]
	if !ok {
		return nil, fmt.Errorf("user '%s': %w", userID, ErrNotFound)
	}
	return &tenant, nil
}

func (r *memoryUserRepository) ListIDs(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.tenants))
	for id := range r.tenants {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

type memorySettingRepository struct {
	mu       sync.RWMutex
	settings map[string]models.NotificationSetting
}

func (r *memorySettingRepository) Get(ctx context.Context, tenantID string) (*models.NotificationSetting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	setting, ok := r.settings[tenantID]
	if !ok {
		return nil, fmt.Errorf("notification settings '%s': %w", tenantID, ErrNotFound)
	}
	return &setting, nil
}

func (r *memorySettingRepository) Save(ctx context.Context, setting *models.NotificationSetting) error {
	if setting.UserID == "" {
		return ErrMissingTenant
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings[setting.UserID] = *setting
	return nil
}

// NewMemoryStore returns a Store backed entirely by process memory.
func NewMemoryStore() *Store {
	return &Store{
		Users:             &memoryUserRepository{tenants: make(map[string]models.Tenant)},
		Clients:           newMemoryClientRepository(),
		Sites:             newMemoryCollection[models.Site](sitesCollection),
		HostingAccounts:   newMemoryCollection[models.HostingAccount](hostingAccountsCollection),
		MobileApps:        newMemoryCollection[models.MobileApp](mobileAppsCollection),
		DeveloperAccounts: newMemoryCollection[models.DeveloperAccount](developerAccountsCollection),
		Tasks:             newMemoryCollection[models.Task](tasksCollection),
		Team:              newMemoryTeamRepository(),
		Notifications:     newMemoryCollection[models.Notification](notificationsCollection),
		Settings:          &memorySettingRepository{settings: make(map[string]models.NotificationSetting)},
		Messages:          newMemoryCollection[models.Message](messagesCollection),
	}
}
