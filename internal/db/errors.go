package db

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	// ErrNotFound is returned when a document does not exist or belongs to another tenant.
	ErrNotFound = errors.New("document not found")
	// ErrAlreadyExists is returned when a conditional insert finds an existing document.
	ErrAlreadyExists = errors.New("document already exists")
	// ErrUnavailable is returned when the store cannot be reached.
	ErrUnavailable = errors.New("document store unavailable")
	// ErrPermissionDenied is returned when the store rejects the credentials.
	ErrPermissionDenied = errors.New("document store permission denied")
	// ErrMissingTenant is returned when a scoped call is made without a tenant id.
	ErrMissingTenant = errors.New("tenant id is required")
)

// ConflictError reports which uniqueness key rejected a write.
type ConflictError struct {
	Key   string // "email", "phone", ...
	Value string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q is already in use", e.Key, e.Value)
}

// Is lets callers match a ConflictError with errors.Is(err, ErrAlreadyExists).
func (e *ConflictError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// translate maps gRPC status codes returned by Firestore onto the package errors.
func translate(err error) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %v", ErrAlreadyExists, err)
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	case codes.PermissionDenied, codes.Unauthenticated:
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	return err
}
