package core

import (
	"errors"
	"fmt"

	"stackassist-backend/internal/db"
)

// Authentication errors.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailInUse         = errors.New("email address is already in use")
	ErrWeakPassword       = errors.New("password should be at least 6 characters")
	ErrSessionExpired     = errors.New("session expired due to inactivity")
)

// Validation errors. They are returned before anything is written.
var (
	ErrValidation        = errors.New("validation failed")
	ErrDuplicateEmail    = errors.New("a client with this email already exists")
	ErrDuplicatePhone    = errors.New("a client with this phone number already exists")
	ErrAlreadyTeamMember = errors.New("this email is already part of your team")
	ErrReferenceNotFound = errors.New("referenced record not found")
	ErrInvalidLink       = errors.New("onboarding link is invalid or expired")
)

// Permission errors.
var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrAccessDenied     = errors.New("access denied: team membership is not active")
)

var (
	ErrNotFound    = errors.New("record not found")
	ErrUnavailable = errors.New("backend temporarily unavailable")
	// ErrInvitationDelivery is joined with the error of every invitation email leg
	// that failed. The invite itself is stored.
	ErrInvitationDelivery = errors.New("invitation email delivery failed")
)

// storeError maps repository errors onto the service taxonomy, keeping the underlying
// error in the chain for logging.
func storeError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, db.ErrNotFound):
		return fmt.Errorf("%s: %w (%w)", op, ErrNotFound, err)
	case errors.Is(err, db.ErrUnavailable):
		return fmt.Errorf("%s: %w (%w)", op, ErrUnavailable, err)
	case errors.Is(err, db.ErrPermissionDenied):
		return fmt.Errorf("%s: %w (%w)", op, ErrPermissionDenied, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func wrapf(sentinel error, msg string) error {
	return fmt.Errorf("%w: %s", sentinel, msg)
}
