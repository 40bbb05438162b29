package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stackassist-backend/internal/db"
	"stackassist-backend/internal/models"
)

// DefaultIdleTimeout is how long a session survives without activity.
const DefaultIdleTimeout = 30 * time.Minute

const minPasswordLength = 6

type sessionEntry struct {
	session    models.Session
	timer      Timer
	generation uint64
}

// SessionStore tracks signed-in sessions and logs each one out after a period of
// inactivity. Every session has exactly one armed timer; activity re-arms it.
type SessionStore struct {
	identity IdentityProvider
	users    db.UserRepository
	clock    Clock
	idle     time.Duration
	logger   *zap.Logger

	// OnExpire is called after a session is logged out by its inactivity timer.
	OnExpire func(models.Session)

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

// NewSessionStore creates a store. A zero idle duration means DefaultIdleTimeout.
func NewSessionStore(identity IdentityProvider, users db.UserRepository, clock Clock, idle time.Duration, logger *zap.Logger) *SessionStore {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	return &SessionStore{
		identity: identity,
		users:    users,
		clock:    clock,
		idle:     idle,
		logger:   logger,
		sessions: make(map[string]*sessionEntry),
	}
}

// Login verifies the credentials and opens a session.
func (s *SessionStore) Login(ctx context.Context, req models.LoginRequest) (*models.Session, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	tokens, err := s.identity.SignIn(ctx, strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		return nil, err
	}
	return s.open(tokens), nil
}

// Register creates the identity and the tenant profile, then signs in. When the
// profile cannot be written the identity is deleted again so no half-registered
// account is left behind.
func (s *SessionStore) Register(ctx context.Context, req models.RegisterRequest) (*models.Session, error) {
	if len(req.Password) < minPasswordLength {
		return nil, ErrWeakPassword
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	email := strings.TrimSpace(req.Email)

	uid, err := s.identity.CreateUser(ctx, email, req.Password)
	if err != nil {
		return nil, err
	}

	tenant := &models.Tenant{
		ID:          uid,
		Email:       email,
		CompanyName: strings.TrimSpace(req.CompanyName),
		CreatedAt:   s.clock.Now(),
	}
	if err := s.users.Create(ctx, tenant); err != nil {
		profileErr := storeError("create user profile", err)
		if delErr := s.identity.DeleteUser(ctx, uid); delErr != nil {
			s.logger.Error("orphaned identity after failed registration",
				zap.String("uid", uid),
				zap.String("email", email),
				zap.NamedError("profileError", err),
				zap.NamedError("deleteError", delErr))
			return nil, errors.Join(profileErr, fmt.Errorf("delete identity %s: %w", uid, delErr))
		}
		return nil, profileErr
	}

	tokens, err := s.identity.SignIn(ctx, email, req.Password)
	if err != nil {
		s.logger.Warn("sign-in after registration failed", zap.String("uid", uid), zap.Error(err))
		tokens = &models.AuthTokens{UserID: uid, Email: email}
	}
	return s.open(tokens), nil
}

// Start opens a session for a caller whose ID token was already verified.
func (s *SessionStore) Start(userID, email string) *models.Session {
	return s.open(&models.AuthTokens{UserID: userID, Email: email})
}

func (s *SessionStore) open(tokens *models.AuthTokens) *models.Session {
	now := s.clock.Now()
	entry := &sessionEntry{session: models.Session{
		ID:           uuid.NewString(),
		UserID:       tokens.UserID,
		Email:        tokens.Email,
		IDToken:      tokens.IDToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
		CreatedAt:    now,
		LastActivity: now,
	}}

	s.mu.Lock()
	s.sessions[entry.session.ID] = entry
	s.armLocked(entry)
	s.mu.Unlock()

	session := entry.session
	return &session
}

// armLocked replaces the entry's timer. The generation guards against a timer that
// already fired but has not yet acquired the lock.
func (s *SessionStore) armLocked(entry *sessionEntry) {
	if entry.timer != nil {
		entry.timer.Stop()
	}
	entry.generation++
	id, generation := entry.session.ID, entry.generation
	entry.timer = s.clock.AfterFunc(s.idle, func() { s.expire(id, generation) })
}

// Touch records activity on a session and restarts its countdown.
func (s *SessionStore) Touch(sessionID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[sessionID]
	if !ok || entry.session.UserID != userID {
		return ErrSessionExpired
	}
	entry.session.LastActivity = s.clock.Now()
	s.armLocked(entry)
	return nil
}

// Get returns a copy of a live session.
func (s *SessionStore) Get(sessionID string) (*models.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[sessionID]
	if !ok {
		return nil, false
	}
	session := entry.session
	return &session, true
}

// Logout ends a session. Logging out an unknown session is not an error.
func (s *SessionStore) Logout(ctx context.Context, sessionID string) error {
	session, last, ok := s.remove(sessionID, 0)
	if !ok {
		return nil
	}
	return s.signOut(ctx, session, last)
}

func (s *SessionStore) expire(sessionID string, generation uint64) {
	session, last, ok := s.remove(sessionID, generation)
	if !ok {
		return
	}
	s.logger.Info("session expired after inactivity",
		zap.String("sessionId", sessionID),
		zap.String("uid", session.UserID),
		zap.Duration("idle", s.idle))
	if err := s.signOut(context.Background(), session, last); err != nil {
		s.logger.Warn("failed to revoke tokens of expired session", zap.String("uid", session.UserID), zap.Error(err))
	}
	if s.OnExpire != nil {
		s.OnExpire(session)
	}
}

// remove deletes a session and reports whether it was the user's last one. A non-zero
// generation must match the entry's current one.
func (s *SessionStore) remove(sessionID string, generation uint64) (models.Session, bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[sessionID]
	if !ok || (generation != 0 && entry.generation != generation) {
		return models.Session{}, false, false
	}
	entry.timer.Stop()
	delete(s.sessions, sessionID)

	for _, other := range s.sessions {
		if other.session.UserID == entry.session.UserID {
			return entry.session, false, true
		}
	}
	return entry.session, true, true
}

// signOut revokes the user's refresh tokens once their last session is gone.
func (s *SessionStore) signOut(ctx context.Context, session models.Session, last bool) error {
	if !last || session.UserID == "" {
		return nil
	}
	if err := s.identity.RevokeSessions(ctx, session.UserID); err != nil {
		return fmt.Errorf("revoke sessions of %s: %w", session.UserID, err)
	}
	return nil
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Close stops every timer without logging anyone out.
func (s *SessionStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, entry := range s.sessions {
		entry.timer.Stop()
		delete(s.sessions, id)
	}
}
