package store

import (
	"context"
	"time"
)

// SessionStore is the key-value surface conversation memory persists
// through. Get reports found=false for missing keys without an error.
type SessionStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}
