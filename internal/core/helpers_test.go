package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stackassist-backend/internal/db"
	"stackassist-backend/internal/models"
	"stackassist-backend/pkg/cache"
	"stackassist-backend/pkg/mailer"
)

// manualClock only moves when Advance is called and fires due timers synchronously.
type manualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newManualClock(now time.Time) *manualClock {
	return &manualClock{now: now}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.f()
	}
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// stubIdentity keeps accounts in memory.
type stubIdentity struct {
	mu        sync.Mutex
	passwords map[string]string // email -> password
	uids      map[string]string // email -> uid
	revoked   []string
	deleted   []string
	links     []string
	deleteErr error
	linkErr   error
}

func newStubIdentity() *stubIdentity {
	return &stubIdentity{passwords: map[string]string{}, uids: map[string]string{}}
}

func (s *stubIdentity) addUser(uid, email, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uids[email] = uid
	s.passwords[email] = password
}

func (s *stubIdentity) SignIn(ctx context.Context, email, password string) (*models.AuthTokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pw, ok := s.passwords[email]; !ok || pw != password {
		return nil, ErrInvalidCredentials
	}
	uid := s.uids[email]
	return &models.AuthTokens{UserID: uid, Email: email, IDToken: "id-" + uid, RefreshToken: "refresh-" + uid, ExpiresIn: 3600}, nil
}

func (s *stubIdentity) CreateUser(ctx context.Context, email, password string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.uids[email]; exists {
		return "", ErrEmailInUse
	}
	uid := "uid-" + strings.SplitN(email, "@", 2)[0]
	s.uids[email] = uid
	s.passwords[email] = password
	return uid, nil
}

func (s *stubIdentity) DeleteUser(ctx context.Context, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, uid)
	for email, id := range s.uids {
		if id == uid {
			delete(s.uids, email)
			delete(s.passwords, email)
		}
	}
	return nil
}

func (s *stubIdentity) RevokeSessions(ctx context.Context, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked = append(s.revoked, uid)
	return nil
}

func (s *stubIdentity) InviteLink(ctx context.Context, email, continueURL string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.linkErr != nil {
		return "", s.linkErr
	}
	if _, ok := s.uids[email]; !ok {
		s.uids[email] = "uid-" + strings.SplitN(email, "@", 2)[0]
	}
	link := "https://auth.test/reset?continue=" + continueURL
	s.links = append(s.links, link)
	return link, nil
}

// recordingOutbox keeps delivered messages. fail, when set, decides per message.
type recordingOutbox struct {
	mu   sync.Mutex
	sent []mailer.Message
	fail func(mailer.Message) error
}

func (o *recordingOutbox) Deliver(ctx context.Context, msg mailer.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fail != nil {
		if err := o.fail(msg); err != nil {
			return err
		}
	}
	o.sent = append(o.sent, msg)
	return nil
}

func (o *recordingOutbox) messages() []mailer.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]mailer.Message(nil), o.sent...)
}

func (o *recordingOutbox) recipients() []string {
	var to []string
	for _, m := range o.messages() {
		to = append(to, m.To)
	}
	return to
}

var errRelayDown = errors.New("relay down")

type fixture struct {
	ctx      context.Context
	store    *db.Store
	clock    *manualClock
	authz    *Authorizer
	identity *stubIdentity
	outbox   *recordingOutbox
	cache    *cache.MemoryCache
	logger   *zap.Logger
	owner    models.Principal
}

var fixtureNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	authz, err := NewAuthorizer(zap.NewNop())
	require.NoError(t, err)

	f := &fixture{
		ctx:      context.Background(),
		store:    db.NewMemoryStore(),
		clock:    newManualClock(fixtureNow),
		authz:    authz,
		identity: newStubIdentity(),
		outbox:   &recordingOutbox{},
		cache:    cache.NewMemoryCache(),
		logger:   zap.NewNop(),
		owner:    models.OwnerPrincipal("owner-1", "owner@agency.test"),
	}
	require.NoError(t, f.store.Users.Create(f.ctx, &models.Tenant{
		ID:          f.owner.UserID,
		Email:       f.owner.Email,
		CompanyName: "Acme Digital",
		CreatedAt:   fixtureNow,
	}))
	return f
}

// member returns a principal acting on the fixture owner's tenant.
func (f *fixture) member(perms models.Permissions) models.Principal {
	return models.Principal{
		UserID:      "member-1",
		Email:       "dev@agency.test",
		TenantID:    f.owner.TenantID,
		Role:        models.RoleMember,
		MemberID:    "m-1",
		Permissions: perms,
	}
}

func (f *fixture) at(d time.Duration) *time.Time {
	t := fixtureNow.Add(d)
	return &t
}

const day = 24 * time.Hour
