package cache

import (
	"context"
	"time"
)

// Store is the key-value persistence port used to warm-start feed and RSVP
// state between sessions. Callers treat read errors and unparseable values
// as cache misses.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
