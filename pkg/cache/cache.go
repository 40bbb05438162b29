package cache

import (
	"context"
	"time"
)

// Cache holds short-lived markers such as notification dedupe keys.
type Cache interface {
	// SetNX stores value only if key is absent and reports whether it did.
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}
